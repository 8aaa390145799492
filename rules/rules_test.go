package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tagscan/token"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		yamlContent string
		wantRules   int
		wantErr     bool
	}{
		{
			name: "valid rules",
			yamlContent: `
rules:
  - name: departure
    options: { element_order: whitespace, attributes_strict: true }
    match: '<td rowspan="2"><label for="time">'
    pattern:
      - regex: 'U[a-z]+'
      - tag: '/label'
  - name: banner
    pattern:
      - comment: ' banner '
`,
			wantRules: 2,
		},
		{
			name: "invalid yaml",
			yamlContent: `
rules:
  - name: missing colon
    match "<p>"
`,
			wantErr: true,
		},
		{
			name: "unknown element order",
			yamlContent: `
rules:
  - name: x
    options: { element_order: sometimes }
    match: '<p>'
`,
			wantErr: true,
		},
		{
			name:        "empty file",
			yamlContent: ``,
			wantRules:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg, err := Parse([]byte(tt.yamlContent))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, cfg.Rules, tt.wantRules)
		})
	}
}

func TestRuleCompile(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(`
rules:
  - name: departure
    options: { element_order: whitespace_allowed, ignore_case: false }
    match: '<td rowspan="2"><label for="time">'
    pattern:
      - regex: 'U[a-z]+'
      - tag: '</label>'
      - text: 'x'
`))
	require.NoError(t, err)

	compiled, err := cfg.Compile(token.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, compiled, 1)

	rule := compiled[0]
	assert.Equal(t, "departure", rule.Name)
	assert.Equal(t, token.OrderWhitespaceAllowed, rule.Options.ElementOrder)
	assert.False(t, rule.Options.IgnoreCase)
	assert.True(t, rule.Options.TrimText, "unset options keep the base value")

	kinds := make([]token.Kind, 0, len(rule.Pattern))
	for _, tok := range rule.Pattern {
		kinds = append(kinds, tok.Kind())
	}
	assert.Equal(t, []token.Kind{token.KindTag, token.KindTag, token.KindPattern, token.KindTag, token.KindText}, kinds)

	closing, ok := rule.Pattern[3].(*token.Tag)
	require.True(t, ok)
	assert.True(t, closing.IsEnd())
	assert.Equal(t, "label", closing.Name())
}

func TestRuleCompileErrors(t *testing.T) {
	t.Parallel()

	text := "a"
	regex := "U[a-z"
	tests := []struct {
		name string
		rule Rule
	}{
		{name: "missing name", rule: Rule{Match: "<p>"}},
		{name: "empty pattern", rule: Rule{Name: "empty"}},
		{name: "element without kind", rule: Rule{Name: "x", Pattern: []Element{{}}}},
		{name: "element with two kinds", rule: Rule{Name: "x", Pattern: []Element{{Text: &text, Tag: &text}}}},
		{name: "bad regex", rule: Rule{Name: "x", Pattern: []Element{{Regex: &regex}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.rule.Compile(token.DefaultOptions())
			assert.ErrorIs(t, err, ErrInvalidRule)
		})
	}

	dup := &Config{Rules: []Rule{
		{Name: "a", Match: "<p>"},
		{Name: "a", Match: "<b>"},
	}}
	_, err := dup.Compile(token.DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidRule)
}

func TestLoadAndWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, Write(path, DefaultConfig()))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	compiled, err := cfg.Compile(token.DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, compiled, len(DefaultConfig().Rules))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
