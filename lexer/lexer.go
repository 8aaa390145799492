package lexer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gnolang/tagscan/token"
)

// ErrRead reports that the underlying reader failed with something other
// than io.EOF.
var ErrRead = errors.New("lexer: read")

const (
	lookahead = 4
	eof       = -1

	commentOpen  = "<!--"
	commentClose = "-->"
)

type tokenType int

const (
	typeText tokenType = iota
	typeTag
	typeComment
)

// Lexer splits a character stream into tag, comment and text tokens. It
// keeps a window of the next four runes so that comment markers can be
// recognized without backtracking.
type Lexer struct {
	r      *bufio.Reader
	window [lookahead]rune
	primed bool
	err    error
}

// New returns a Lexer reading UTF-8 text from r. Nothing is read until the
// first call to Next.
func New(r io.Reader) *Lexer {
	return &Lexer{r: bufio.NewReader(r)}
}

// Tokenize reads all of r and returns its tokens.
func Tokenize(r io.Reader) ([]token.Token, error) {
	return New(r).Tokenize()
}

// TokenizeString is Tokenize over an in-memory string.
func TokenizeString(s string) ([]token.Token, error) {
	return New(strings.NewReader(s)).Tokenize()
}

// Tokenize drains the lexer. On a read error the tokens produced so far are
// returned together with the error.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if errors.Is(err, io.EOF) {
			return tokens, nil
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token, or io.EOF once the input is exhausted.
// Unterminated tags and comments at the end of the input are returned with
// whatever content was read.
func (l *Lexer) Next() (token.Token, error) {
	if err := l.prime(); err != nil {
		return nil, err
	}
	if l.window[0] == eof {
		return nil, io.EOF
	}

	typ, err := l.tokenType()
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for l.window[0] != eof {
		done, err := l.terminated(typ)
		if err != nil {
			return nil, err
		}
		if done {
			break
		}
		sb.WriteRune(l.window[0])
		if err := l.advance(1); err != nil {
			return nil, err
		}
	}

	content := sb.String()
	switch typ {
	case typeTag:
		return token.NewTag(content), nil
	case typeComment:
		return token.NewComment(content), nil
	default:
		return token.NewText(content), nil
	}
}

// tokenType decides what the token starting at the current rune is and
// consumes its opening marker.
func (l *Lexer) tokenType() (tokenType, error) {
	if l.window[0] != '<' {
		return typeText, nil
	}
	if l.matches(commentOpen) {
		return typeComment, l.advance(len(commentOpen))
	}
	return typeTag, l.advance(1)
}

// terminated reports whether the current rune ends a token of type typ,
// consuming the closing marker of tags and comments.
func (l *Lexer) terminated(typ tokenType) (bool, error) {
	switch typ {
	case typeTag:
		if l.window[0] == '>' {
			return true, l.advance(1)
		}
	case typeComment:
		if l.matches(commentClose) {
			return true, l.advance(len(commentClose))
		}
	default:
		return l.window[0] == '<', nil
	}
	return false, nil
}

func (l *Lexer) matches(s string) bool {
	i := 0
	for _, r := range s {
		if i >= lookahead || l.window[i] != r {
			return false
		}
		i++
	}
	return true
}

func (l *Lexer) prime() error {
	if l.primed {
		return l.err
	}
	l.primed = true
	for i := range l.window {
		r, err := l.read()
		if err != nil {
			return err
		}
		l.window[i] = r
	}
	return nil
}

// advance shifts the window by n runes. Once the end of the input reaches
// the front of the window it stays there.
func (l *Lexer) advance(n int) error {
	for ; n > 0 && l.window[0] != eof; n-- {
		copy(l.window[:], l.window[1:])
		r, err := l.read()
		if err != nil {
			return err
		}
		l.window[lookahead-1] = r
	}
	return nil
}

func (l *Lexer) read() (rune, error) {
	if l.err != nil {
		return eof, l.err
	}
	r, _, err := l.r.ReadRune()
	switch {
	case err == nil:
		return r, nil
	case errors.Is(err, io.EOF):
		return eof, nil
	default:
		l.err = fmt.Errorf("%w: %w", ErrRead, err)
		return eof, l.err
	}
}
