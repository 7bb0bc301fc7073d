package transcript

import "regexp"

// CompoundKey is the key a sub-topic of a compound section is filed under.
func CompoundKey(compound, sub string) string {
	return compound + ": " + sub
}

// ExpandCompound re-segments every fragment filed under compound at its
// minor headings and replaces the compound entry with one entry per
// sub-topic, keyed "<compound>: <sub-title>", in the compound's position.
//
// Untitled sub-blocks continue the previous sub-topic; untitled text ahead of
// the first sub-topic is prepended to it. When compound is absent, or none of
// its fragments carries a minor heading, c is returned untouched. Otherwise
// the result is a new collection and c is not modified.
func ExpandCompound(c *SpeechCollection, compound string, minorRe *regexp.Regexp, speakers []*regexp.Regexp) *SpeechCollection {
	e := c.Get(compound)
	if e == nil {
		return c
	}

	seg := segmenter{
		title:    minorRe,
		speakers: speakers,
		key: func(title, prev string) string {
			if title == "" {
				return prev
			}
			return CompoundKey(compound, title)
		},
	}

	derived := NewSpeechCollection()
	var pending []Fragment
	prev := ""
	for _, f := range e.Fragments {
		blocks := SplitHeadings(f.Text, minorRe, speakers)
		prev = seg.run(blocks, prev, func(key string, frag Fragment) {
			if key == "" {
				pending = append(pending, frag)
				return
			}
			if len(pending) > 0 {
				derived.Append(key, pending...)
				pending = nil
			}
			derived.Append(key, frag)
		})
	}
	if derived.Len() == 0 {
		return c
	}

	out := c.Clone()
	out.Replace(compound, derived)
	return out
}
