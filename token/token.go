package token

import "strings"

// Kind identifies the variant of a Token.
type Kind int

const (
	KindTag     Kind = iota // <name attrs>, </name> or <name/>
	KindComment             // <!-- body -->
	KindText                // plain text between markup
	KindPattern             // search-side regular expression over text
)

func (k Kind) String() string {
	switch k {
	case KindTag:
		return "Tag"
	case KindComment:
		return "Comment"
	case KindText:
		return "Text"
	case KindPattern:
		return "Pattern"
	default:
		return "Unknown"
	}
}

// Token is one lexical unit of markup. The set of implementations is closed:
// *Tag, *Comment, *Text and *Pattern.
type Token interface {
	Kind() Kind
	// String renders the token back to markup.
	String() string
	// Match reports whether the receiver, taken from a document, matches
	// the search token other.
	Match(other Token, opts Options) bool

	sealed()
}

var (
	_ Token = (*Tag)(nil)
	_ Token = (*Comment)(nil)
	_ Token = (*Text)(nil)
	_ Token = (*Pattern)(nil)
)

// Match reports whether candidate matches search under opts. Tokens of
// different kinds never match, except that a text candidate is tested
// against a pattern search token by regular expression.
func Match(candidate, search Token, opts Options) bool {
	if candidate == nil || search == nil {
		return false
	}

	switch c := candidate.(type) {
	case *Tag:
		s, ok := search.(*Tag)
		return ok && matchTag(c, s, opts)

	case *Comment:
		s, ok := search.(*Comment)
		return ok && equalFold(c.body, s.body, opts.IgnoreCase)

	case *Text:
		return matchText(c.body, search, opts)

	case *Pattern:
		// a pattern on the document side is compared as plain text
		return matchText(c.expr, search, opts)

	default:
		return false
	}
}

func matchText(body string, search Token, opts Options) bool {
	switch s := search.(type) {
	case *Text:
		a, b := body, s.body
		if opts.TrimText {
			a, b = strings.TrimSpace(a), strings.TrimSpace(b)
		}
		return equalFold(a, b, opts.IgnoreCase)

	case *Pattern:
		return s.MatchString(body)

	default:
		return false
	}
}

func matchTag(candidate, search *Tag, opts Options) bool {
	return equalFold(candidate.name, search.name, opts.IgnoreCase) &&
		candidate.end == search.end &&
		matchAttributes(candidate.attrs, search.attrs, opts)
}

// matchAttributes is asymmetric: the candidate may carry more attributes
// than the search tag unless opts.AttributesStrict is set.
func matchAttributes(candidate, search *Attributes, opts Options) bool {
	if candidate == nil && search == nil {
		return true
	}
	if search == nil {
		return !opts.AttributesStrict || candidate == nil
	}
	if candidate == nil {
		return false
	}

	if opts.AttributesStrict && candidate.Count() != search.Count() {
		return false
	}

	for _, name := range search.Names() {
		want, _ := search.Get(name)
		got, ok := candidate.Get(name)
		if !ok || !equalFold(got, want, opts.IgnoreCase) {
			return false
		}
	}
	return true
}

func equalFold(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// IsWhitespace reports whether t is a text token made only of spaces, tabs,
// carriage returns and newlines.
func IsWhitespace(t Token) bool {
	text, ok := t.(*Text)
	if !ok {
		return false
	}
	for i := 0; i < len(text.body); i++ {
		switch text.body[i] {
		case ' ', '\n', '\r', '\t':
		default:
			return false
		}
	}
	return true
}
