package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tagscan/batch"
	"github.com/gnolang/tagscan/internal/cache"
)

var errNoMatches = errors.New("no matches")

var (
	findJSONOutput bool
	outPath        string
	quiet          bool
	cacheDir       string
	ignorePaths    string
)

var findCmd = &cobra.Command{
	Use:   "find [paths...]",
	Short: "Apply the rules to files and directories",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		compiled, err := loadRules()
		if err != nil {
			return err
		}

		cfg := batch.Config{Workers: appConfig.Workers}
		if ignorePaths != "" {
			cfg.IgnorePaths = strings.Split(ignorePaths, ",")
		}
		if !quiet {
			cfg.Progress = cmd.ErrOrStderr()
		}

		processor := batch.FileProcessor(compiled, logger)
		if cacheDir != "" {
			c, err := cache.New(logger, cacheDir, cfgFile)
			if err != nil {
				return err
			}
			processor = c.Processor(processor)
		}

		results, err := batch.ProcessFiles(ctx, logger, cfg, args, processor)
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
			if ctx.Err() != nil {
				return err
			}
		}

		if err := printResults(cmd.OutOrStdout(), results, findJSONOutput, outPath); err != nil {
			return err
		}
		if len(results) == 0 {
			return errNoMatches
		}
		return nil
	},
}

func init() {
	findCmd.Flags().BoolVar(&findJSONOutput, "json", false, "Output results in JSON format")
	findCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	findCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not show progress")
	findCmd.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of paths to ignore")
	findCmd.Flags().StringVar(&cacheDir, "cache", "", "Directory for caching results between runs")
}
