// Package scrape locates sequences of markup tokens inside a document.
//
// A Scraper holds the fully lexed token stream of one document together with
// a cursor. Searches start at the cursor and, when Options.Advance is set,
// move it past the match, so that a document can be walked fragment by
// fragment:
//
//	s, err := scrape.FromString(page)
//	if err != nil {
//		return err
//	}
//	opts := token.DefaultOptions()
//	end, err := s.Search([]token.Token{
//		token.NewTag(`td class="time"`),
//		token.MustPattern(`[0-9]{2}:[0-9]{2}`),
//	}, opts)
//
// The package level functions IndexOf, Search and SearchSpan run the same
// algorithms over a plain token slice without any cursor state.
//
// A Scraper is not safe for concurrent use. Tokens themselves are immutable
// and may be shared freely.
package scrape
