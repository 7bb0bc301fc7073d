package transcript

import (
	"regexp"

	"github.com/jchaskell/cr/internal/record"
)

var (
	// Whitespace, escaped newlines and the quote/bracket debris the list
	// rendering leaves between elements.
	leadingDebris = regexp.MustCompile(`\A(?:\s|\\n|['"]\]|['"],[ \t]*)+`)
	// Trailing whitespace and the closing "']" of the scraped list.
	trailingDebris = regexp.MustCompile(`(?:\s|\\n)*(?:['"]\](?:\s|\\n)*)*\z`)
)

// Clean returns a copy of c with scrape debris trimmed from both ends of every
// fragment and turn. Titles, order and counts are unchanged.
func Clean(c *SpeechCollection) *SpeechCollection {
	return c.Map(func(f Fragment) Fragment {
		out := Fragment{Text: CleanText(f.Text)}
		if f.Turns != nil {
			out.Turns = make([]record.Turn, len(f.Turns))
			for i, t := range f.Turns {
				out.Turns[i] = record.Turn{Speaker: t.Speaker, Text: CleanText(t.Text)}
			}
		}
		return out
	})
}

// CleanText trims leading whitespace and debris and the trailing list
// terminator from s.
func CleanText(s string) string {
	s = leadingDebris.ReplaceAllString(s, "")
	return trailingDebris.ReplaceAllString(s, "")
}
