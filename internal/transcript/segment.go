package transcript

import "regexp"

// KeyFunc names the collection key for a block whose captured title is
// title. prev is the key the previous block went to, "" before the first.
type KeyFunc func(title, prev string) string

// TitleKey files every block under its own title; untitled blocks go to "".
func TitleKey(title, _ string) string { return title }

// segmenter is the one title/speech segmentation routine. Page-level grouping
// and compound-section expansion differ only in the blocks they feed it, the
// title pattern, and how keys are named.
type segmenter struct {
	title    *regexp.Regexp
	speakers []*regexp.Regexp // nil leaves turns for a later stage
	key      KeyFunc
}

// run segments blocks in order, starting from key prev, and returns the key
// of the last block emitted. Blocks holding only whitespace or list debris
// are skipped. A block opening on a speaker line has no title.
func (s segmenter) run(blocks []string, prev string, emit func(key string, f Fragment)) string {
	for _, b := range blocks {
		if CleanText(b) == "" {
			continue
		}
		title, body := splitTitle(b, s.title, s.speakers)
		key := s.key(title, prev)

		f := Fragment{Text: body}
		if s.speakers != nil {
			f.Turns = AttributeSpeakers(body, s.speakers)
		}
		emit(key, f)
		prev = key
	}
	return prev
}

// AddTitledSpeeches groups pages under their titles. Untitled pages are filed
// under "", blank pages are skipped, and a title seen again
// accumulates another fragment.
func AddTitledSpeeches(pages []string, titleRe *regexp.Regexp) *SpeechCollection {
	c := NewSpeechCollection()
	addTitledSpeeches(c, pages, titleRe)
	return c
}

func addTitledSpeeches(c *SpeechCollection, pages []string, titleRe *regexp.Regexp) {
	seg := segmenter{title: titleRe, key: TitleKey}
	seg.run(pages, "", func(key string, f Fragment) {
		c.Append(key, f)
	})
}
