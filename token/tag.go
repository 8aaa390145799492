package token

import "strings"

// Tag is an opening, closing or unary (self-closing) markup tag. There is
// one Tag per tag occurrence; a tag and its closing counterpart are
// unrelated tokens.
type Tag struct {
	name  string
	end   bool
	unary bool
	attrs *Attributes
}

// NewTag builds a tag from the content between '<' and '>', for example
// `body bgcolor=#ffffff` or `/p` or `br/`. Attributes are kept unparsed
// until first use.
func NewTag(content string) *Tag {
	t := &Tag{}

	content = trimControl(content)
	if strings.HasPrefix(content, "/") {
		t.end = true
		content = content[1:]
	}
	if strings.HasSuffix(content, "/") {
		t.unary = true
		content = trimControl(content[:len(content)-1])
	}

	length := len(content)
	if length == 0 {
		return t
	}

	pos := 0
	for pos < length && content[pos] <= ' ' {
		pos++
	}
	end := pos
	for end < length && content[end] > ' ' {
		end++
	}

	t.name = content[pos:end]
	if end < length {
		t.attrs = NewAttributes(content[end:])
	}
	return t
}

func (t *Tag) Kind() Kind { return KindTag }

func (t *Tag) Name() string { return t.name }

// IsEnd reports whether this is a closing tag such as </p>.
func (t *Tag) IsEnd() bool { return t.end }

// IsUnary reports whether the tag closes itself, as in <br/>.
func (t *Tag) IsUnary() bool { return t.unary }

// Attributes returns nil when the tag has no attribute text at all.
func (t *Tag) Attributes() *Attributes { return t.attrs }

// Attr is a shortcut for t.Attributes().Get(name).
func (t *Tag) Attr(name string) (string, bool) {
	return t.attrs.Get(name)
}

// String renders the tag with its attributes exactly as they were given.
// Whitespace around the slashes is normalized.
func (t *Tag) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	if t.end {
		sb.WriteByte('/')
	}
	sb.WriteString(t.name)
	if t.attrs != nil {
		sb.WriteByte(' ')
		sb.WriteString(t.attrs.Raw())
	}
	if t.unary {
		sb.WriteByte('/')
	}
	sb.WriteByte('>')
	return sb.String()
}

func (t *Tag) Match(other Token, opts Options) bool {
	return Match(t, other, opts)
}

func (t *Tag) sealed() {}

// trimControl removes leading and trailing bytes up to and including ' ',
// which covers spaces and all ASCII control characters.
func trimControl(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] <= ' ' {
		start++
	}
	for end > start && s[end-1] <= ' ' {
		end--
	}
	return s[start:end]
}
