package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/gnolang/tagscan/formatter"
	"github.com/gnolang/tagscan/rules"
)

type jsonResult struct {
	Rule   string `json:"rule"`
	Source string `json:"source,omitempty"`
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Markup string `json:"markup"`
	Text   string `json:"text"`
}

// printResults writes results as text to w, or as JSON to outPath when set
// and to w otherwise.
func printResults(w io.Writer, results []rules.Result, isJSON bool, outPath string) error {
	if !isJSON {
		_, err := io.WriteString(w, formatter.FormatResults(results))
		return err
	}

	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		out = append(out, jsonResult{
			Rule:   r.Rule,
			Source: r.Source,
			Start:  r.Span.Start,
			End:    r.Span.End,
			Markup: r.Markup(),
			Text:   r.Text(),
		})
	}
	d, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling results to JSON: %w", err)
	}
	d = append(d, '\n')

	if outPath == "" {
		_, err = w.Write(d)
		return err
	}
	if err := os.WriteFile(outPath, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}
