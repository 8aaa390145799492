package scrape

import (
	"bufio"
	"io"
	"strings"

	"github.com/gnolang/tagscan/token"
)

// Render concatenates the markup form of tokens.
func Render(tokens []token.Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.String())
	}
	return sb.String()
}

// WriteTo writes the whole token buffer to w as markup, ignoring the cursor.
func (s *Scraper) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	for _, tok := range s.tokens {
		written, err := bw.WriteString(tok.String())
		n += int64(written)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}
