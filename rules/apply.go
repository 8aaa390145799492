package rules

import (
	"cmp"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/gnolang/tagscan/internal/nolint"
	"github.com/gnolang/tagscan/scrape"
	"github.com/gnolang/tagscan/token"
)

// Result is one occurrence of a rule's pattern.
type Result struct {
	Rule   string        `json:"rule"`
	Source string        `json:"source,omitempty"`
	Span   scrape.Span   `json:"span"`
	Tokens []token.Token `json:"-"`
}

// Markup renders the matched tokens.
func (r Result) Markup() string {
	return scrape.Render(r.Tokens)
}

// Text joins the non-blank text tokens of the match, trimmed and separated
// by single spaces.
func (r Result) Text() string {
	var parts []string
	for _, tok := range r.Tokens {
		text, ok := tok.(*token.Text)
		if !ok || text.IsWhitespace() {
			continue
		}
		parts = append(parts, strings.TrimSpace(text.Body()))
	}
	return strings.Join(parts, " ")
}

// Apply searches the session for every rule, starting at the cursor, and
// returns all non-overlapping occurrences ordered by position. Matches
// starting inside the scope of a tagscan:ignore comment are dropped. The
// cursor is left where it was.
func Apply(s *scrape.Scraper, rules []Compiled, logger *zap.Logger) []Result {
	logger = nopIfNil(logger)
	tokens := s.Tokens()
	ignored := nolint.ParseComments(tokens)

	var results []Result
	for _, rule := range rules {
		found := 0
		for start := s.Position(); start < len(tokens); {
			span, ok, err := scrape.SearchSpan(tokens, start, rule.Pattern, rule.Options)
			if err != nil {
				logger.Error("failed to apply rule", zap.String("rule", rule.Name), zap.Error(err))
				break
			}
			if !ok || span.End <= start {
				break
			}
			if ignored.IsNolint(span.Start, rule.Name) {
				logger.Debug("match ignored", zap.String("rule", rule.Name), zap.Int("start", span.Start))
				start = span.End
				continue
			}
			results = append(results, Result{
				Rule:   rule.Name,
				Span:   span,
				Tokens: slices.Clone(tokens[span.Start:span.End]),
			})
			found++
			start = span.End
		}
		logger.Debug("applied rule", zap.String("rule", rule.Name), zap.Int("matches", found))
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(a.Span.Start, b.Span.Start)
	})
	return results
}
