package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/tagscan/lexer"
	"github.com/gnolang/tagscan/token"
)

// DefaultFile is the rules file looked up when none is given.
const DefaultFile = ".tagscan.yaml"

// ErrInvalidRule reports a rule that cannot be compiled into a pattern.
var ErrInvalidRule = errors.New("invalid rule")

// Config is the top level of a rules file.
type Config struct {
	Name  string `yaml:"name,omitempty"`
	Rules []Rule `yaml:"rules"`
}

// Rule names a token pattern. The pattern is the markup in Match, lexed,
// followed by the entries of Pattern.
type Rule struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Options     RuleOptions `yaml:"options,omitempty"`
	Match       string      `yaml:"match,omitempty"`
	Pattern     []Element   `yaml:"pattern,omitempty"`
}

// RuleOptions overrides the matching options for one rule. Unset fields
// keep the value of the options the rule is compiled with.
type RuleOptions struct {
	ElementOrder     *token.ElementOrder `yaml:"element_order,omitempty"`
	AttributesStrict *bool               `yaml:"attributes_strict,omitempty"`
	IgnoreCase       *bool               `yaml:"ignore_case,omitempty"`
	TrimText         *bool               `yaml:"trim_text,omitempty"`
}

// Element is one pattern entry. Exactly one field must be set.
type Element struct {
	Tag     *string `yaml:"tag,omitempty"`
	Text    *string `yaml:"text,omitempty"`
	Comment *string `yaml:"comment,omitempty"`
	Regex   *string `yaml:"regex,omitempty"`
}

// Compiled is a rule ready to be searched for.
type Compiled struct {
	Name    string
	Pattern []token.Token
	Options token.Options
}

// Load reads and parses a rules file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes cfg as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Compile compiles every rule of the file. Rule names must be unique.
func (c *Config) Compile(base token.Options) ([]Compiled, error) {
	seen := make(map[string]bool, len(c.Rules))
	compiled := make([]Compiled, 0, len(c.Rules))
	for _, rule := range c.Rules {
		if seen[rule.Name] {
			return nil, fmt.Errorf("%w: duplicate rule name %q", ErrInvalidRule, rule.Name)
		}
		seen[rule.Name] = true

		cr, err := rule.Compile(base)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, cr)
	}
	return compiled, nil
}

// Compile builds the token pattern of r, with its options applied on top
// of base.
func (r Rule) Compile(base token.Options) (Compiled, error) {
	if strings.TrimSpace(r.Name) == "" {
		return Compiled{}, fmt.Errorf("%w: missing name", ErrInvalidRule)
	}

	var pattern []token.Token
	if r.Match != "" {
		tokens, err := lexer.TokenizeString(r.Match)
		if err != nil {
			return Compiled{}, fmt.Errorf("rule %q: %w", r.Name, err)
		}
		pattern = append(pattern, tokens...)
	}
	for i, el := range r.Pattern {
		tok, err := el.token()
		if err != nil {
			return Compiled{}, fmt.Errorf("rule %q, element %d: %w", r.Name, i, err)
		}
		pattern = append(pattern, tok)
	}
	if len(pattern) == 0 {
		return Compiled{}, fmt.Errorf("%w: rule %q has an empty pattern", ErrInvalidRule, r.Name)
	}

	return Compiled{
		Name:    r.Name,
		Pattern: pattern,
		Options: r.Options.apply(base),
	}, nil
}

func (o RuleOptions) apply(base token.Options) token.Options {
	opts := base
	if o.ElementOrder != nil {
		opts.ElementOrder = *o.ElementOrder
	}
	if o.AttributesStrict != nil {
		opts.AttributesStrict = *o.AttributesStrict
	}
	if o.IgnoreCase != nil {
		opts.IgnoreCase = *o.IgnoreCase
	}
	if o.TrimText != nil {
		opts.TrimText = *o.TrimText
	}
	return opts
}

func (e Element) token() (token.Token, error) {
	var (
		tok token.Token
		set int
	)
	if e.Tag != nil {
		tok = token.NewTag(strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(*e.Tag), "<"), ">"))
		set++
	}
	if e.Text != nil {
		tok = token.NewText(*e.Text)
		set++
	}
	if e.Comment != nil {
		tok = token.NewComment(*e.Comment)
		set++
	}
	if e.Regex != nil {
		p, err := token.NewPattern(*e.Regex)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRule, err)
		}
		tok = p
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: element must set exactly one of tag, text, comment, regex (got %d)", ErrInvalidRule, set)
	}
	return tok, nil
}

// DefaultConfig is the sample written by `tagscan init`.
func DefaultConfig() *Config {
	whitespace := token.OrderWhitespaceAllowed
	pattern := func(s string) *string { return &s }
	return &Config{
		Name: "tagscan",
		Rules: []Rule{
			{
				Name:        "title",
				Description: "document title",
				Match:       "<title>",
				Pattern: []Element{
					{Regex: pattern(`[^<]*`)},
					{Tag: pattern("/title")},
				},
			},
			{
				Name:        "departure",
				Description: "time cell following an Uhrzeit label",
				Options:     RuleOptions{ElementOrder: &whitespace},
				Match:       `<td class="time">Uhrzeit</td><td>`,
				Pattern: []Element{
					{Regex: pattern(`[0-9]{1,2}:[0-9]{2}`)},
				},
			},
		},
	}
}

// Write stores cfg at path, replacing any existing file.
func Write(path string, cfg *Config) error {
	if path == "" {
		path = DefaultFile
	}
	d, err := cfg.Marshal()
	if err != nil {
		return err
	}
	return os.WriteFile(path, d, 0o644)
}

// nopIfNil keeps library entry points usable without a logger.
func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
