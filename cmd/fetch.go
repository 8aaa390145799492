package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tagscan/fetch"
	"github.com/gnolang/tagscan/rules"
	"github.com/gnolang/tagscan/scrape"
)

var (
	postData        string
	referer         string
	savePath        string
	fetchJSONOutput bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a document and apply the rules to it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		url := args[0]
		compiled, err := loadRules()
		if err != nil {
			// saving the page alone does not need rules
			if savePath == "" || !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			logger.Info("no rules file, only saving", zap.String("file", cfgFile))
		}

		client := fetch.New(appConfig.FetchConfig(), logger)
		var s *scrape.Scraper
		if cmd.Flags().Changed("post") {
			s, err = client.ScrapePost(ctx, url, postData, referer)
		} else {
			s, err = client.Scrape(ctx, url)
		}
		if err != nil {
			return err
		}

		if savePath != "" {
			if err := saveTokens(savePath, s); err != nil {
				return err
			}
			logger.Info("saved document", zap.String("file", savePath), zap.Int("tokens", s.Len()))
		}
		if compiled == nil {
			return nil
		}

		results := rules.Apply(s, compiled, logger)
		for i := range results {
			results[i].Source = url
		}
		if err := printResults(cmd.OutOrStdout(), results, fetchJSONOutput, ""); err != nil {
			return err
		}
		if len(results) == 0 {
			return errNoMatches
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&postData, "post", "", "Send a form-encoded POST with this body")
	fetchCmd.Flags().StringVar(&referer, "referer", "", "Referer header for POST requests")
	fetchCmd.Flags().StringVar(&savePath, "save", "", "Write the rendered token stream to this file")
	fetchCmd.Flags().BoolVar(&fetchJSONOutput, "json", false, "Output results in JSON format")
}

func saveTokens(path string, s *scrape.Scraper) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := s.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	return f.Close()
}
