package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/tagscan/fetch"
	"github.com/gnolang/tagscan/formatter"
	"github.com/gnolang/tagscan/lexer"
)

var lexJSONOutput bool

var lexCmd = &cobra.Command{
	Use:   "lex [file|-]",
	Short: "Print the tokens of a document",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		return runLex(cmd.InOrStdin(), cmd.OutOrStdout(), path, lexJSONOutput)
	},
}

func init() {
	lexCmd.Flags().BoolVar(&lexJSONOutput, "json", false, "Output tokens in JSON format")
}

type jsonToken struct {
	Index int    `json:"index"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

func runLex(stdin io.Reader, w io.Writer, path string, isJSON bool) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return err
	}

	text, charset, err := fetch.Decode(data, "")
	if err != nil {
		return fmt.Errorf("error decoding %s: %w", path, err)
	}
	logger.Debug("decoded input", zap.String("file", path), zap.String("charset", charset))

	tokens, err := lexer.TokenizeString(text)
	if err != nil {
		return err
	}

	if !isJSON {
		_, err = io.WriteString(w, formatter.FormatTokens(tokens))
		return err
	}

	out := make([]jsonToken, len(tokens))
	for i, tok := range tokens {
		out[i] = jsonToken{Index: i, Kind: tok.Kind().String(), Text: tok.String()}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
