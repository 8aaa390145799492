package scrape

import (
	"fmt"
	"io"
	"strings"

	"github.com/gnolang/tagscan/lexer"
	"github.com/gnolang/tagscan/token"
)

// Scraper is a search session over the tokens of one document. The token
// slice is owned by the session; only Remove changes it.
type Scraper struct {
	tokens []token.Token
	pos    int
}

// New lexes all of r and returns a session positioned at the first token.
func New(r io.Reader) (*Scraper, error) {
	tokens, err := lexer.Tokenize(r)
	if err != nil {
		return nil, fmt.Errorf("scrape: %w", err)
	}
	return FromTokens(tokens), nil
}

func FromString(s string) (*Scraper, error) {
	return New(strings.NewReader(s))
}

// FromTokens starts a session over tokens. The slice is used as is and must
// not be modified by the caller afterwards.
func FromTokens(tokens []token.Token) *Scraper {
	return &Scraper{tokens: tokens}
}

// Position returns the cursor. It may lie beyond the last token.
func (s *Scraper) Position() int { return s.pos }

// SetPosition moves the cursor. Negative positions are clamped to zero.
func (s *Scraper) SetPosition(pos int) {
	s.pos = max(pos, 0)
}

func (s *Scraper) Reset() { s.pos = 0 }

// Advance moves the cursor n tokens forward, or backward for negative n.
func (s *Scraper) Advance(n int) { s.SetPosition(s.pos + n) }

func (s *Scraper) Len() int { return len(s.tokens) }

// Available returns the number of tokens from the cursor to the end.
func (s *Scraper) Available() int {
	return max(len(s.tokens)-s.pos, 0)
}

func (s *Scraper) HasNext() bool { return s.pos < len(s.tokens) }

// Next returns the token at the cursor and moves past it.
func (s *Scraper) Next() (token.Token, bool) {
	tok, ok := s.Get(s.pos)
	if ok {
		s.pos++
	}
	return tok, ok
}

// Get returns the token at index i, or false if i is out of range.
func (s *Scraper) Get(i int) (token.Token, bool) {
	if i < 0 || i >= len(s.tokens) {
		return nil, false
	}
	return s.tokens[i], true
}

// Tokens returns a copy of the token buffer.
func (s *Scraper) Tokens() []token.Token {
	out := make([]token.Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Remove deletes the token at the cursor, so the cursor then refers to the
// token that followed it. It reports false if the cursor is past the end.
func (s *Scraper) Remove() (token.Token, bool) {
	tok, ok := s.Get(s.pos)
	if !ok {
		return nil, false
	}
	s.tokens = append(s.tokens[:s.pos:s.pos], s.tokens[s.pos+1:]...)
	return tok, true
}

// IndexOf finds the next token matching search, starting at the cursor.
// With opts.Advance the cursor moves to the match.
func (s *Scraper) IndexOf(search token.Token, opts token.Options) (int, error) {
	return s.IndexOfFrom(s.pos, search, opts)
}

func (s *Scraper) IndexOfFrom(start int, search token.Token, opts token.Options) (int, error) {
	i, err := IndexOf(s.tokens, start, search, opts)
	if err == nil && i != NotFound && opts.Advance {
		s.pos = i
	}
	return i, err
}

// Search finds pattern starting at the cursor and returns the index just
// past the match. With opts.Advance the cursor moves there.
func (s *Scraper) Search(pattern []token.Token, opts token.Options) (int, error) {
	return s.SearchFrom(s.pos, pattern, opts)
}

func (s *Scraper) SearchFrom(start int, pattern []token.Token, opts token.Options) (int, error) {
	span, ok, err := s.SearchSpanFrom(start, pattern, opts)
	if err != nil || !ok {
		return NotFound, err
	}
	return span.End, nil
}

// SearchSpanFrom is SearchFrom reporting the whole matched range.
func (s *Scraper) SearchSpanFrom(start int, pattern []token.Token, opts token.Options) (Span, bool, error) {
	span, ok, err := SearchSpan(s.tokens, start, pattern, opts)
	if err == nil && ok && opts.Advance {
		s.pos = span.End
	}
	return span, ok, err
}

// Slice returns the tokens covered by span.
func (s *Scraper) Slice(span Span) []token.Token {
	start := min(max(span.Start, 0), len(s.tokens))
	end := min(max(span.End, start), len(s.tokens))
	out := make([]token.Token, end-start)
	copy(out, s.tokens[start:end])
	return out
}
