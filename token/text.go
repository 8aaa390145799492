package token

import (
	"fmt"
	"regexp"
)

// Text is a run of characters between markup, kept verbatim.
type Text struct {
	body string
}

func NewText(body string) *Text {
	return &Text{body: body}
}

func (t *Text) Kind() Kind { return KindText }
func (t *Text) Body() string { return t.body }
func (t *Text) String() string { return t.body }
func (t *Text) sealed() {}
func (t *Text) IsWhitespace() bool { return IsWhitespace(t) }

func (t *Text) Match(other Token, opts Options) bool {
	return Match(t, other, opts)
}

// Comment is the body of a <!-- --> comment without its markers.
type Comment struct {
	body string
}

func NewComment(body string) *Comment {
	return &Comment{body: body}
}

func (c *Comment) Kind() Kind { return KindComment }
func (c *Comment) Body() string { return c.body }
func (c *Comment) String() string { return "<!--" + c.body + "-->" }
func (c *Comment) sealed() {}

func (c *Comment) Match(other Token, opts Options) bool {
	return Match(c, other, opts)
}

// Pattern stands for "any text matching this expression" in a search
// pattern. The lexer never produces it. The expression must match the whole
// text; case and trim options do not apply.
type Pattern struct {
	expr string
	re   *regexp.Regexp
}

// NewPattern compiles expr with Go's RE2 syntax, anchored at both ends.
func NewPattern(expr string) (*Pattern, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, fmt.Errorf("invalid text pattern %q: %w", expr, err)
	}
	return &Pattern{expr: expr, re: re}, nil
}

// MustPattern is like NewPattern but panics on an invalid expression.
func MustPattern(expr string) *Pattern {
	p, err := NewPattern(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pattern) Kind() Kind { return KindPattern }
func (p *Pattern) Expression() string { return p.expr }
func (p *Pattern) String() string { return p.expr }
func (p *Pattern) sealed() {}

// MatchString reports whether s matches the expression in full.
func (p *Pattern) MatchString(s string) bool {
	return p.re.MatchString(s)
}

func (p *Pattern) Match(other Token, opts Options) bool {
	return Match(p, other, opts)
}
