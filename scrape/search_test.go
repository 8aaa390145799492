package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/tagscan/lexer"
	"github.com/gnolang/tagscan/token"
)

func mustTokenize(t *testing.T, input string) []token.Token {
	t.Helper()
	tokens, err := lexer.TokenizeString(input)
	require.NoError(t, err)
	return tokens
}

func withOrder(order token.ElementOrder) token.Options {
	opts := token.DefaultOptions()
	opts.ElementOrder = order
	return opts
}

func TestSearchElementOrder(t *testing.T) {
	t.Parallel()

	buffer := []token.Token{
		token.NewTag(`div class=a`),
		token.NewText("\n"),
		token.NewTag(`div class=b`),
	}
	pattern := []token.Token{
		token.NewTag(`div class="a"`),
		token.NewTag(`div class="b"`),
	}

	end, err := Search(buffer, 0, pattern, withOrder(token.OrderWhitespaceAllowed))
	require.NoError(t, err)
	assert.Equal(t, 3, end)

	end, err = Search(buffer, 0, pattern, withOrder(token.OrderStrict))
	require.NoError(t, err)
	assert.Equal(t, NotFound, end)
}

func TestSearchSkipPolicies(t *testing.T) {
	t.Parallel()

	tokens := mustTokenize(t, "<tr>\n<!-- cell --><td>x</td>")
	pattern := []token.Token{token.NewTag("tr"), token.NewTag("td")}
	tests := []struct {
		order token.ElementOrder
		want  int
	}{
		{token.OrderStrict, NotFound},
		{token.OrderWhitespaceAllowed, NotFound},
		{token.OrderCommentsAllowed, 4},
		{token.OrderElementsAllowed, 4},
	}

	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			t.Parallel()
			end, err := Search(tokens, 0, pattern, withOrder(tt.order))
			require.NoError(t, err)
			assert.Equal(t, tt.want, end)
		})
	}
}

func TestSearchSkipsOnlyBeforeTags(t *testing.T) {
	t.Parallel()

	tokens := mustTokenize(t, "<td><b>Uhrzeit</b></td>")
	opts := withOrder(token.OrderElementsAllowed)

	// a text element has to follow its predecessor directly
	end, err := Search(tokens, 0, []token.Token{token.NewTag("td"), token.NewText("Uhrzeit")}, opts)
	require.NoError(t, err)
	assert.Equal(t, NotFound, end)

	end, err = Search(tokens, 0, []token.Token{token.NewTag("td"), token.NewTag("/b")}, opts)
	require.NoError(t, err)
	assert.Equal(t, 4, end)

	end, err = Search(tokens, 0, []token.Token{token.NewTag("b"), token.MustPattern("U[a-z]+")}, opts)
	require.NoError(t, err)
	assert.Equal(t, 3, end)
}

func TestSearchRestartsAfterAnchor(t *testing.T) {
	t.Parallel()

	// the first <a> starts an attempt that fails at the second <a>; the
	// retry must still find the pair starting there
	tokens := mustTokenize(t, "<a><a><b>")
	span, ok, err := SearchSpan(tokens, 0, []token.Token{token.NewTag("a"), token.NewTag("b")}, withOrder(token.OrderStrict))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 1, End: 3}, span)
	assert.Equal(t, 2, span.Len())
}

func TestSearchLeadingTokensSkipped(t *testing.T) {
	t.Parallel()

	tokens := mustTokenize(t, "intro<p>one</p>")
	span, ok, err := SearchSpan(tokens, 0, []token.Token{token.NewTag("p"), token.NewText("one")}, withOrder(token.OrderStrict))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Span{Start: 1, End: 3}, span)
}

func TestSearchMatchAtEnd(t *testing.T) {
	t.Parallel()

	tokens := mustTokenize(t, "<p>x</p>")
	end, err := Search(tokens, 0, []token.Token{token.NewText("x"), token.NewTag("/p")}, token.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, len(tokens), end)
}

func TestSearchMonotonic(t *testing.T) {
	t.Parallel()

	tokens := mustTokenize(t, "<li>a</li> <li>b</li> <li>c</li>")
	pattern := []token.Token{token.NewTag("li"), token.MustPattern("[a-z]")}
	opts := token.DefaultOptions()

	var ends []int
	for start := 0; ; {
		end, err := Search(tokens, start, pattern, opts)
		require.NoError(t, err)
		if end == NotFound {
			break
		}
		require.Greater(t, end, start)
		ends = append(ends, end)
		start = end
	}
	assert.Equal(t, []int{2, 6, 10}, ends)
}

func TestSearchEmptyPattern(t *testing.T) {
	t.Parallel()

	tokens := mustTokenize(t, "<p>x</p>")
	end, err := Search(tokens, 2, []token.Token{}, token.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 2, end)
}

func TestInvalidArguments(t *testing.T) {
	t.Parallel()

	tokens := mustTokenize(t, "<p>x</p>")
	opts := token.DefaultOptions()

	_, err := Search(tokens, 0, nil, opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Search(tokens, 0, []token.Token{token.NewTag("p"), nil}, opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = Search(tokens, -1, []token.Token{token.NewTag("p")}, opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = IndexOf(tokens, 0, nil, opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = IndexOf(tokens, -3, token.NewTag("p"), opts)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIndexOf(t *testing.T) {
	t.Parallel()

	tokens := mustTokenize(t, "<p>Hello</p><!-- x --><P class=x>")
	opts := token.DefaultOptions()
	tests := []struct {
		name   string
		start  int
		search token.Token
		want   int
	}{
		{name: "first tag", start: 0, search: token.NewTag("p"), want: 0},
		{name: "from later start", start: 1, search: token.NewTag("p"), want: 4},
		{name: "closing tag", start: 0, search: token.NewTag("/p"), want: 2},
		{name: "text", start: 0, search: token.NewText(" hello "), want: 1},
		{name: "comment", start: 0, search: token.NewComment(" X "), want: 3},
		{name: "pattern", start: 0, search: token.MustPattern("H.*o"), want: 1},
		{name: "missing", start: 0, search: token.NewTag("div"), want: NotFound},
		{name: "start past end", start: 10, search: token.NewTag("p"), want: NotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := IndexOf(tokens, tt.start, tt.search, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
