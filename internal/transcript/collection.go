package transcript

import (
	"strings"

	"github.com/jchaskell/cr/internal/record"
)

// Fragment is the text one page (or sub-block) contributed to a title, plus
// the speaker turns attributed to it.
type Fragment struct {
	Text  string
	Turns []record.Turn
}

// Entry is the ordered sequence of fragments filed under one title.
type Entry struct {
	Title     string
	Fragments []Fragment
}

// SpeechCollection maps titles to fragment sequences, remembering the order
// in which titles first appeared. Repeated titles accumulate.
type SpeechCollection struct {
	keys    []string
	entries map[string]*Entry
}

// NewSpeechCollection returns an empty collection.
func NewSpeechCollection() *SpeechCollection {
	return &SpeechCollection{entries: make(map[string]*Entry)}
}

// Sequence returns the entry for title, creating it at the end of the key
// order if it does not exist yet. Every mutation of the key set goes through
// here.
func (c *SpeechCollection) Sequence(title string) *Entry {
	if e, ok := c.entries[title]; ok {
		return e
	}
	e := &Entry{Title: title}
	c.entries[title] = e
	c.keys = append(c.keys, title)
	return e
}

// Append adds fragments to the end of title's sequence.
func (c *SpeechCollection) Append(title string, frags ...Fragment) {
	e := c.Sequence(title)
	e.Fragments = append(e.Fragments, frags...)
}

// Has reports whether title has been collected.
func (c *SpeechCollection) Has(title string) bool {
	_, ok := c.entries[title]
	return ok
}

// Get returns the entry for title, or nil.
func (c *SpeechCollection) Get(title string) *Entry {
	return c.entries[title]
}

// Keys returns titles in first-occurrence order.
func (c *SpeechCollection) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len returns the number of titles.
func (c *SpeechCollection) Len() int {
	return len(c.keys)
}

// Entries returns the entries in key order.
func (c *SpeechCollection) Entries() []*Entry {
	out := make([]*Entry, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.entries[k])
	}
	return out
}

// Remove deletes title and its fragments. It reports whether title existed.
func (c *SpeechCollection) Remove(title string) bool {
	if _, ok := c.entries[title]; !ok {
		return false
	}
	delete(c.entries, title)
	for i, k := range c.keys {
		if k == title {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
	return true
}

// Replace swaps title for the entries of derived, placing them where title
// stood. A derived title that already exists elsewhere accumulates in place.
// Replace is a no-op returning false when title is absent.
func (c *SpeechCollection) Replace(title string, derived *SpeechCollection) bool {
	pos := -1
	for i, k := range c.keys {
		if k == title {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}

	keys := make([]string, 0, len(c.keys)+derived.Len())
	keys = append(keys, c.keys[:pos]...)
	delete(c.entries, title)
	for _, k := range derived.keys {
		frags := derived.entries[k].Fragments
		if e, ok := c.entries[k]; ok {
			e.Fragments = append(e.Fragments, frags...)
			continue
		}
		c.entries[k] = &Entry{Title: k, Fragments: append([]Fragment(nil), frags...)}
		keys = append(keys, k)
	}
	keys = append(keys, c.keys[pos+1:]...)
	c.keys = keys
	return true
}

// Map returns a new collection with fn applied to every fragment. Titles,
// order and fragment counts are preserved.
func (c *SpeechCollection) Map(fn func(Fragment) Fragment) *SpeechCollection {
	out := NewSpeechCollection()
	for _, k := range c.keys {
		e := c.entries[k]
		ne := out.Sequence(k)
		ne.Fragments = make([]Fragment, len(e.Fragments))
		for i, f := range e.Fragments {
			ne.Fragments[i] = fn(f)
		}
	}
	return out
}

// Clone returns a deep copy.
func (c *SpeechCollection) Clone() *SpeechCollection {
	return c.Map(func(f Fragment) Fragment {
		f.Turns = append([]record.Turn(nil), f.Turns...)
		return f
	})
}

// Sections flattens the collection into output sections, one per title.
// Unattributed turns with no text are dropped.
func (c *SpeechCollection) Sections() []record.Section {
	sections := make([]record.Section, 0, len(c.keys))
	for _, k := range c.keys {
		s := record.Section{Title: k}
		for _, f := range c.entries[k].Fragments {
			for _, t := range f.Turns {
				if t.Speaker == "" && strings.TrimSpace(t.Text) == "" {
					continue
				}
				s.Turns = append(s.Turns, t)
			}
		}
		sections = append(sections, s)
	}
	return sections
}
