package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tagscan/internal/config"
	"github.com/gnolang/tagscan/internal/logging"
	"github.com/gnolang/tagscan/rules"
	"github.com/gnolang/tagscan/token"
)

var (
	cfgFile string
	timeout time.Duration

	logLevel         string
	elementOrder     string
	strictAttributes bool
	caseSensitive    bool

	appConfig *config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:               "tagscan",
	Short:             "tagscan - find token patterns in HTML documents",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", rules.DefaultFile, "Rules file")
	flags.DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for the whole run")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&elementOrder, "element-order", "", "Tokens that may be skipped between pattern tags (strict, whitespace, comments, elements)")
	flags.BoolVar(&strictAttributes, "strict-attributes", false, "Require tags to carry exactly the pattern's attributes")
	flags.BoolVar(&caseSensitive, "case-sensitive", false, "Compare names, values and text case-sensitively")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(lexCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(watchCmd)
}

// setup merges the environment configuration with the global flags and
// builds the logger.
func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.LogConfig.Level = logLevel
	}
	if elementOrder != "" {
		order, err := token.ParseElementOrder(elementOrder)
		if err != nil {
			return err
		}
		cfg.MatchConfig.ElementOrder = order
	}
	if strictAttributes {
		cfg.MatchConfig.AttributesStrict = true
	}
	if caseSensitive {
		cfg.MatchConfig.IgnoreCase = false
	}

	l, err := logging.New(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogConfig.Level, err)
	}

	appConfig = cfg
	logger = l
	return nil
}

// loadRules reads the rules file named by --config and compiles it with
// the configured matching options.
func loadRules() ([]rules.Compiled, error) {
	ruleSet, err := rules.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	compiled, err := ruleSet.Compile(appConfig.SearchOptions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cfgFile, err)
	}
	logger.Debug("rules loaded", zap.String("file", cfgFile), zap.Int("count", len(compiled)))
	return compiled, nil
}
