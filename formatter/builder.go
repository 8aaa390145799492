package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"unicode"

	"github.com/fatih/color"

	"github.com/gnolang/tagscan/rules"
)

const padding = "  "

var (
	ruleStyle    = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgGreen, color.Bold)
	tagStyle     = color.New(color.FgCyan)
	commentStyle = color.New(color.FgHiBlack)
	patternStyle = color.New(color.FgMagenta)
	noStyle      = color.New(color.FgWhite)
)

const resultTemplate = `{{header .Rule .Source .Start .End -}}
{{snippet .Lines -}}
{{extract .Text}}`

var resultTmpl = template.Must(template.New("result").Funcs(template.FuncMap{
	"header":  header,
	"snippet": snippet,
	"extract": extract,
}).Parse(resultTemplate))

type ResultData struct {
	Rule   string
	Source string
	Start  int
	End    int
	Lines  []string
	Text   string
}

// FormatResults renders matches as human-readable blocks: the rule, where
// it matched, the matched markup and its text content.
func FormatResults(results []rules.Result) string {
	var builder strings.Builder
	for _, result := range results {
		builder.WriteString(buildResult(result))
		builder.WriteString("\n")
	}
	return builder.String()
}

func buildResult(result rules.Result) string {
	lines := trimBlankLines(strings.Split(result.Markup(), "\n"))
	indent := findCommonIndent(lines)
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, indent)
	}

	data := ResultData{
		Rule:   result.Rule,
		Source: result.Source,
		Start:  result.Span.Start,
		End:    result.Span.End,
		Lines:  lines,
		Text:   result.Text(),
	}

	var buf bytes.Buffer
	if err := resultTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting result: %v\n", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(rule, source string, start, end int) string {
	if source == "" {
		source = "-"
	}
	endString := ruleStyle.Sprint("match: ")
	endString += ruleStyle.Sprintf("%s\n", rule)
	endString += lineStyle.Sprint(" --> ")
	endString += fileStyle.Sprintf("%s tokens %d:%d\n", source, start, end)
	return endString
}

func snippet(lines []string) string {
	endString := lineStyle.Sprintf("%s|\n", padding)
	for _, line := range lines {
		endString += lineStyle.Sprintf("%s| ", padding)
		endString += noStyle.Sprintf("%s\n", line)
	}
	return endString
}

func extract(text string) string {
	if text == "" {
		return ""
	}
	endString := lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprintf("%s\n", text)
	return endString
}

func trimBlankLines(lines []string) []string {
	isBlank := func(s string) bool { return strings.TrimSpace(s) == "" }
	for len(lines) > 0 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// findCommonIndent finds the common indent of the non-blank lines.
func findCommonIndent(lines []string) string {
	var common []rune
	found := false
	for _, line := range lines {
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		indent := []rune(line[:len(line)-len(trimmed)])
		if !found {
			common, found = indent, true
			continue
		}
		common = commonPrefix(common, indent)
		if len(common) == 0 {
			break
		}
	}
	return string(common)
}

// commonPrefix finds the common prefix of two strings.
func commonPrefix(a, b []rune) []rune {
	minLen := min(len(a), len(b))
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:minLen]
}
