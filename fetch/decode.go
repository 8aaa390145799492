package fetch

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

const (
	// minConfidence is the chardet confidence below which a guess is ignored.
	minConfidence = 40
	// prescanLen is how far a <meta> charset declaration is looked for.
	prescanLen = 1024
)

// Decode converts a document body to UTF-8 and reports the charset used.
//
// A byte order mark or a charset parameter in contentType decides the
// encoding outright, followed by a <meta> declaration in the document and
// valid UTF-8. Only when none of those apply is the charset guessed from
// the byte statistics, with windows-1252 as the last resort.
func Decode(data []byte, contentType string) (string, string, error) {
	enc, name, certain := charset.DetermineEncoding(data, contentType)
	if !certain && name == "windows-1252" && !declaresCharset(data) {
		if guess, ok := DetectCharset(data); ok {
			if e, n := charset.Lookup(guess); e != nil {
				enc, name = e, n
			}
		}
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", name, fmt.Errorf("decode %s: %w", name, err)
	}
	return strings.TrimPrefix(string(out), "\ufeff"), name, nil
}

// DetectCharset guesses the charset of data from its byte statistics.
func DetectCharset(data []byte) (string, bool) {
	result, err := chardet.NewHtmlDetector().DetectBest(data)
	if err != nil || result == nil || result.Confidence < minConfidence {
		return "", false
	}
	return strings.ToLower(result.Charset), true
}

// declaresCharset reports whether the head of data mentions a charset,
// in which case the <meta> prescan result is trusted.
func declaresCharset(data []byte) bool {
	head := data[:min(len(data), prescanLen)]
	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}
