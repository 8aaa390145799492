package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gnolang/tagscan/token"
)

// FormatTokens renders a numbered listing of tokens, one per line. Text and
// comment bodies are quoted so that whitespace stays visible.
func FormatTokens(tokens []token.Token) string {
	width := len(strconv.Itoa(max(len(tokens)-1, 0)))

	var builder strings.Builder
	for i, tok := range tokens {
		builder.WriteString(lineStyle.Sprintf("%*d ", width, i))
		builder.WriteString(fmt.Sprintf("%-8s ", tok.Kind()))
		builder.WriteString(describe(tok))
		builder.WriteString("\n")
	}
	return builder.String()
}

func describe(tok token.Token) string {
	switch t := tok.(type) {
	case *token.Tag:
		s := tagStyle.Sprint(t.String())
		if names := t.Attributes().Names(); len(names) > 0 {
			s += noStyle.Sprintf(" %s", strings.Join(names, ","))
		}
		return s
	case *token.Comment:
		return commentStyle.Sprint(strconv.Quote(t.Body()))
	case *token.Pattern:
		return patternStyle.Sprintf("/%s/", t.Expression())
	default:
		return noStyle.Sprint(strconv.Quote(tok.String()))
	}
}
