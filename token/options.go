package token

import (
	"fmt"
	"strings"
)

// ElementOrder controls which tokens may be skipped between the elements
// of a multi-token search pattern.
type ElementOrder int

const (
	OrderStrict            ElementOrder = iota // nothing may be skipped
	OrderWhitespaceAllowed                     // whitespace-only text may be skipped
	OrderCommentsAllowed                       // whitespace and comments may be skipped
	OrderElementsAllowed                       // any token may be skipped
)

func (o ElementOrder) String() string {
	switch o {
	case OrderStrict:
		return "strict"
	case OrderWhitespaceAllowed:
		return "whitespace"
	case OrderCommentsAllowed:
		return "comments"
	case OrderElementsAllowed:
		return "elements"
	default:
		return "unknown"
	}
}

// ParseElementOrder accepts the short names printed by String as well as
// the long "<name>_allowed" forms.
func ParseElementOrder(s string) (ElementOrder, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.TrimSuffix(name, "_allowed")
	name = strings.TrimSuffix(name, "-allowed")
	switch name {
	case "strict":
		return OrderStrict, nil
	case "whitespace":
		return OrderWhitespaceAllowed, nil
	case "comments":
		return OrderCommentsAllowed, nil
	case "elements":
		return OrderElementsAllowed, nil
	}
	return OrderStrict, fmt.Errorf("unknown element order %q", s)
}

func (o ElementOrder) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *ElementOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseElementOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Options configures every matching operation. The zero value is strict
// and case sensitive; use DefaultOptions for the usual fuzzy settings.
type Options struct {
	ElementOrder ElementOrder `yaml:"element_order"`

	// AttributesStrict rejects candidate tags carrying attributes that the
	// search tag does not name.
	AttributesStrict bool `yaml:"attributes_strict"`

	// IgnoreCase applies to tag names, attribute names and values, comments
	// and text.
	IgnoreCase bool `yaml:"ignore_case"`

	// TrimText trims surrounding whitespace on both sides of a text
	// comparison.
	TrimText bool `yaml:"trim_text"`

	// Advance moves the session cursor after a successful search.
	Advance bool `yaml:"advance"`

	// SearchForward is accepted for compatibility but ignored: every search
	// scans forward.
	SearchForward bool `yaml:"search_forward"`
}

func DefaultOptions() Options {
	return Options{
		ElementOrder:     OrderCommentsAllowed,
		AttributesStrict: false,
		IgnoreCase:       true,
		TrimText:         true,
		Advance:          true,
		SearchForward:    true,
	}
}
