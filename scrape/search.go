package scrape

import (
	"errors"
	"fmt"

	"github.com/gnolang/tagscan/token"
)

// NotFound is returned as the index of a failed search.
const NotFound = -1

// ErrInvalidArgument reports a nil search token or pattern element, or a
// negative start position.
var ErrInvalidArgument = errors.New("scrape: invalid argument")

// Span is the half-open token range [Start, End) covered by a match. Start
// is the index of the token that matched the first pattern element; tokens
// skipped before it are not part of the span.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (s Span) Len() int { return s.End - s.Start }

// IndexOf returns the index of the first token at or after start that
// matches search, or NotFound.
func IndexOf(tokens []token.Token, start int, search token.Token, opts token.Options) (int, error) {
	if search == nil {
		return NotFound, fmt.Errorf("index of: nil search token: %w", ErrInvalidArgument)
	}
	if start < 0 {
		return NotFound, fmt.Errorf("index of: start %d: %w", start, ErrInvalidArgument)
	}
	for i := start; i < len(tokens); i++ {
		if token.Match(tokens[i], search, opts) {
			return i, nil
		}
	}
	return NotFound, nil
}

// Search looks for pattern in tokens starting at start and returns the index
// just past the last matched token, or NotFound. An empty pattern matches at
// start.
func Search(tokens []token.Token, start int, pattern []token.Token, opts token.Options) (int, error) {
	span, ok, err := SearchSpan(tokens, start, pattern, opts)
	if err != nil || !ok {
		return NotFound, err
	}
	return span.End, nil
}

// SearchSpan is like Search but also reports where the match began.
//
// Between two pattern elements, tokens may be skipped as allowed by
// opts.ElementOrder, but only while the element being looked for is a tag.
// When an attempt fails, the next one starts right after the last token
// that matched, not after the first.
func SearchSpan(tokens []token.Token, start int, pattern []token.Token, opts token.Options) (Span, bool, error) {
	if pattern == nil {
		return Span{}, false, fmt.Errorf("search: nil pattern: %w", ErrInvalidArgument)
	}
	for i, p := range pattern {
		if p == nil {
			return Span{}, false, fmt.Errorf("search: nil pattern element %d: %w", i, ErrInvalidArgument)
		}
	}
	if start < 0 {
		return Span{}, false, fmt.Errorf("search: start %d: %w", start, ErrInvalidArgument)
	}
	if len(pattern) == 0 {
		return Span{Start: start, End: start}, true, nil
	}

	var (
		anchor   = start
		position = start
		index    = 0
		first    = start
		started  = false
	)
	for position < len(tokens) && index < len(pattern) {
		here, want := tokens[position], pattern[index]
		switch {
		case token.Match(here, want, opts):
			if !started {
				first = position
			}
			started = true
			anchor = position
			position++
			index++

		case !started || skippable(here, want, opts.ElementOrder):
			position++

		default:
			anchor++
			position = anchor
			index = 0
			started = false
		}
	}

	if index < len(pattern) {
		return Span{}, false, nil
	}
	return Span{Start: first, End: position}, true, nil
}

// skippable reports whether here may be passed over while looking for want.
func skippable(here, want token.Token, order token.ElementOrder) bool {
	if want.Kind() != token.KindTag {
		return false
	}
	switch order {
	case token.OrderWhitespaceAllowed:
		return token.IsWhitespace(here)
	case token.OrderCommentsAllowed:
		return here.Kind() == token.KindComment || token.IsWhitespace(here)
	case token.OrderElementsAllowed:
		return true
	default:
		return false
	}
}
