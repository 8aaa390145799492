package nolint

import (
	"fmt"
	"strings"

	"github.com/gnolang/tagscan/token"
)

const nolintPrefix = "tagscan:ignore"

// Manager manages ignore scopes and checks if a token index is covered by
// one of them.
type Manager struct {
	scopes []nolintScope
}

// nolintScope is an inclusive range of token indexes where the listed rules
// are ignored. An empty rule set ignores all rules.
type nolintScope struct {
	rules map[string]struct{}
	start int
	end   int
}

// ParseComments collects the ignore directives of a token stream. A
// directive is a comment of the form
//
//	<!-- tagscan:ignore -->
//	<!-- tagscan:ignore:rule1,rule2 -->
//
// and covers the element that follows it, from the comment through the
// matching end tag.
func ParseComments(tokens []token.Token) *Manager {
	var manager Manager
	for i, tok := range tokens {
		comment, ok := tok.(*token.Comment)
		if !ok {
			continue
		}
		ns, err := parseComment(comment, i, tokens)
		if err != nil {
			// ignore comments that are not directives
			continue
		}
		manager.scopes = append(manager.scopes, ns)
	}
	return &manager
}

// parseComment parses a single directive and determines its scope.
func parseComment(comment *token.Comment, index int, tokens []token.Token) (nolintScope, error) {
	var ns nolintScope
	text := strings.TrimSpace(comment.Body())

	if !strings.HasPrefix(text, nolintPrefix) {
		return ns, fmt.Errorf("invalid ignore comment")
	}
	rest := text[len(nolintPrefix):]

	if len(rest) > 0 && rest[0] != ':' {
		return ns, fmt.Errorf("invalid ignore comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return ns, fmt.Errorf("invalid ignore comment: no rules specified after colon")
		}
	}
	ns.rules = parseIgnoreRuleNames(rest)
	ns.start = index

	next := nextStartTag(tokens, index+1)
	switch {
	case next < 0:
		// nothing follows: apply to the rest of the document
		ns.end = len(tokens) - 1
	case isDeclaration(tokens[next].(*token.Tag)):
		// before the doctype: apply to the entire document
		ns.start = 0
		ns.end = len(tokens) - 1
	default:
		ns.end = elementEnd(tokens, next)
	}
	return ns, nil
}

// parseIgnoreRuleNames parses the rule list of a directive.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

func nextStartTag(tokens []token.Token, from int) int {
	for i := from; i < len(tokens); i++ {
		if tag, ok := tokens[i].(*token.Tag); ok && !tag.IsEnd() {
			return i
		}
	}
	return -1
}

func isDeclaration(tag *token.Tag) bool {
	return strings.HasPrefix(tag.Name(), "!") || strings.HasPrefix(tag.Name(), "?")
}

// elementEnd returns the index of the end tag closing the element opened
// at start, counting nested elements of the same name. Unary and unclosed
// elements end at their start tag.
func elementEnd(tokens []token.Token, start int) int {
	open := tokens[start].(*token.Tag)
	if open.IsUnary() {
		return start
	}
	depth := 0
	for i := start + 1; i < len(tokens); i++ {
		tag, ok := tokens[i].(*token.Tag)
		if !ok || tag.IsUnary() || !strings.EqualFold(tag.Name(), open.Name()) {
			continue
		}
		if !tag.IsEnd() {
			depth++
			continue
		}
		if depth == 0 {
			return i
		}
		depth--
	}
	return start
}

// IsNolint reports whether a match of ruleName starting at index is
// ignored.
func (m *Manager) IsNolint(index int, ruleName string) bool {
	for _, ns := range m.scopes {
		if index < ns.start || index > ns.end {
			continue
		}
		// an empty rule list applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
