package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tagscan/batch"
	"github.com/gnolang/tagscan/internal/watch"
)

var watchJSONOutput bool

var watchCmd = &cobra.Command{
	Use:   "watch [dirs...]",
	Short: "Apply the rules to files whenever they change",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compiled, err := loadRules()
		if err != nil {
			return err
		}

		var mu sync.Mutex
		out := cmd.OutOrStdout()
		handler := func(path string) {
			results, err := batch.ScanFile(path, compiled, logger)
			if err != nil {
				logger.Error("Error processing file", zap.String("file", path), zap.Error(err))
				return
			}
			logger.Info("file processed", zap.String("file", path), zap.Int("results", len(results)))

			mu.Lock()
			defer mu.Unlock()
			if err := printResults(out, results, watchJSONOutput, ""); err != nil {
				logger.Error("Error printing results", zap.Error(err))
			}
		}

		w, err := watch.New(logger, args, handler)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchJSONOutput, "json", false, "Output results in JSON format")
}
