package token

import (
	"strings"
	"sync"
)

const quoteChars = `'"`

// Attributes holds the attribute text of a single tag. The text is parsed
// into name/value pairs on first use and the result is cached. Names are
// case insensitive and stored in lower case; values keep their case.
//
// A nil *Attributes behaves like an empty attribute list.
type Attributes struct {
	raw      string
	rawLower string

	once   sync.Once
	values map[string]string
	names  []string
}

// NewAttributes wraps the attribute text of a tag, e.g. ` class=frame` for
// the tag <div class=frame>.
func NewAttributes(raw string) *Attributes {
	raw = trimControl(raw)
	return &Attributes{
		raw:      raw,
		rawLower: strings.ToLower(raw),
	}
}

// Raw returns the attribute text as it appeared in the tag, without
// surrounding whitespace.
func (a *Attributes) Raw() string {
	if a == nil {
		return ""
	}
	return a.raw
}

// Get returns the value of the named attribute. Valueless attributes such
// as `noshade` yield ("", true); ok is false only if the attribute is absent.
// Quotes around values are removed.
func (a *Attributes) Get(name string) (value string, ok bool) {
	if a == nil {
		return "", false
	}
	key := strings.ToLower(name)
	// a name that does not occur in the text cannot be an attribute
	if !strings.Contains(a.rawLower, key) {
		return "", false
	}
	value, ok = a.parsed()[key]
	return value, ok
}

func (a *Attributes) Exists(name string) bool {
	_, ok := a.Get(name)
	return ok
}

// Count returns the number of distinct attribute names.
func (a *Attributes) Count() int {
	if a == nil {
		return 0
	}
	return len(a.parsed())
}

// Names returns the lower-cased attribute names in order of first
// appearance.
func (a *Attributes) Names() []string {
	if a == nil {
		return nil
	}
	a.parsed()
	names := make([]string, len(a.names))
	copy(names, a.names)
	return names
}

func (a *Attributes) String() string {
	return a.Raw()
}

func (a *Attributes) parsed() map[string]string {
	a.once.Do(func() {
		a.values, a.names = reduceAtoms(splitAtoms(a.raw))
	})
	return a.values
}

// atom is one lexical piece of an attribute list. A separator is the '='
// between a name and its value; its text is "=".
type atom struct {
	text      string
	separator bool
}

// splitAtoms breaks the attribute text into quoted values, separators and
// bare words. Consecutive separators collapse into one, a separator is never
// the first atom, and trailing separators are dropped.
func splitAtoms(input string) []atom {
	var atoms []atom
	length := len(input)

	for i := 0; i < length; {
		c := input[i]
		switch {
		case strings.IndexByte(quoteChars, c) >= 0:
			end := strings.IndexByte(input[i+1:], c)
			if end < 0 {
				atoms = append(atoms, atom{text: input[i+1:]})
				i = length
				continue
			}
			end += i + 1
			atoms = append(atoms, atom{text: input[i+1 : end]})
			i = end + 1

		case c == '=':
			if len(atoms) > 0 && !atoms[len(atoms)-1].separator {
				atoms = append(atoms, atom{text: "=", separator: true})
			}
			i++

		case c > ' ':
			end := i
			for end < length && input[end] > ' ' && input[end] != '=' {
				end++
			}
			atoms = append(atoms, atom{text: input[i:end]})
			i = end

		default:
			i++
		}
	}

	for len(atoms) > 0 && atoms[len(atoms)-1].separator {
		atoms = atoms[:len(atoms)-1]
	}
	return atoms
}

// reduceAtoms folds `name = value` triples into pairs; any other atom is a
// valueless attribute. A repeated name keeps its first position and takes
// the last value.
func reduceAtoms(atoms []atom) (map[string]string, []string) {
	values := make(map[string]string, len(atoms))
	var names []string

	store := func(name, value string) {
		key := strings.ToLower(name)
		if _, seen := values[key]; !seen {
			names = append(names, key)
		}
		values[key] = value
	}

	for i := 0; i < len(atoms); {
		if i+2 < len(atoms) && atoms[i+1].separator {
			store(atoms[i].text, atoms[i+2].text)
			i += 3
			continue
		}
		store(atoms[i].text, "")
		i++
	}
	return values, names
}
