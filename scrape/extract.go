package scrape

import (
	"strings"

	"github.com/gnolang/tagscan/token"
)

var formTags = []string{"form", "input", "select", "option"}

// NextText returns the next text token at or after the cursor and moves the
// cursor past it. With skipWhitespace, whitespace-only text is passed over.
func (s *Scraper) NextText(skipWhitespace bool) (*token.Text, bool) {
	i, text := s.nextText(s.pos, skipWhitespace)
	if text == nil {
		return nil, false
	}
	s.pos = i + 1
	return text, true
}

// NextTextFrom is NextText starting at from, leaving the cursor alone.
func (s *Scraper) NextTextFrom(from int, skipWhitespace bool) (*token.Text, bool) {
	_, text := s.nextText(from, skipWhitespace)
	return text, text != nil
}

func (s *Scraper) nextText(from int, skipWhitespace bool) (int, *token.Text) {
	for i := max(from, 0); i < len(s.tokens); i++ {
		text, ok := s.tokens[i].(*token.Text)
		if !ok {
			continue
		}
		if skipWhitespace && text.IsWhitespace() {
			continue
		}
		return i, text
	}
	return NotFound, nil
}

// NextTag returns the next tag at or after the cursor and moves the cursor
// past it.
func (s *Scraper) NextTag() (*token.Tag, bool) {
	i, tag := s.nextTag(s.pos)
	if tag == nil {
		return nil, false
	}
	s.pos = i + 1
	return tag, true
}

// NextTagFrom is NextTag starting at from, leaving the cursor alone.
func (s *Scraper) NextTagFrom(from int) (*token.Tag, bool) {
	_, tag := s.nextTag(from)
	return tag, tag != nil
}

func (s *Scraper) nextTag(from int) (int, *token.Tag) {
	for i := max(from, 0); i < len(s.tokens); i++ {
		if tag, ok := s.tokens[i].(*token.Tag); ok {
			return i, tag
		}
	}
	return NotFound, nil
}

// NextContent finds the next <tagName> element after the cursor and returns
// the concatenated text up to the following </tagName>. Nested markup is
// dropped, entities are left as they are. The cursor moves to the closing
// tag.
//
// tagName may carry attributes, e.g. `td class="time"`; the closing tag is
// looked up by name only.
func (s *Scraper) NextContent(tagName string) (string, bool) {
	opts := token.DefaultOptions()
	opts.Advance = false

	open := token.NewTag(tagName)
	start, err := IndexOf(s.tokens, s.pos, open, opts)
	if err != nil || start == NotFound {
		return "", false
	}
	end, err := IndexOf(s.tokens, start+1, token.NewTag("/"+open.Name()), opts)
	if err != nil || end == NotFound {
		return "", false
	}

	var sb strings.Builder
	for _, tok := range s.tokens[start+1 : end] {
		if text, ok := tok.(*token.Text); ok {
			sb.WriteString(text.Body())
		}
	}
	s.pos = end
	return sb.String(), true
}

// Forms returns every form, input, select and option tag of the document,
// in document order and regardless of the cursor.
func (s *Scraper) Forms() []*token.Tag {
	var forms []*token.Tag
	for _, tok := range s.tokens {
		tag, ok := tok.(*token.Tag)
		if !ok || tag.IsEnd() {
			continue
		}
		for _, name := range formTags {
			if strings.EqualFold(tag.Name(), name) {
				forms = append(forms, tag)
				break
			}
		}
	}
	return forms
}
