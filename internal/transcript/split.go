package transcript

import (
	"regexp"
	"strings"
)

// SplitPages cuts text at every match of breakRe. Delimiters are discarded;
// everything else lands in exactly one page, in document order. A leading
// break yields an empty first page. If breakRe never matches the whole text
// is a single page.
func SplitPages(text string, breakRe *regexp.Regexp) []string {
	if breakRe == nil {
		return []string{text}
	}
	return breakRe.Split(text, -1)
}

// PageBreaks returns the delimiters SplitPages discards, in order. Interleaving
// pages and breaks reconstructs the input.
func PageBreaks(text string, breakRe *regexp.Regexp) []string {
	if breakRe == nil {
		return nil
	}
	return breakRe.FindAllString(text, -1)
}

// SplitHeadings cuts text into blocks that each start at a standalone heading
// line matched by headingRe. A heading qualifies only when it starts the text
// or follows a blank line, and when no speaker pattern claims the line. Text
// before the first heading becomes its own block.
func SplitHeadings(text string, headingRe *regexp.Regexp, speakers []*regexp.Regexp) []string {
	var cuts []int
	prevBlank := true
	for start := 0; start < len(text); {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			end = len(text)
		} else {
			end += start
		}
		line := text[start:end]
		blank := strings.TrimSpace(line) == ""

		if !blank && prevBlank && isHeading(text[start:], line, headingRe, speakers) {
			cuts = append(cuts, start)
		}

		prevBlank = blank
		start = end + 1
	}

	if len(cuts) == 0 {
		return []string{text}
	}

	var blocks []string
	if cuts[0] > 0 {
		blocks = append(blocks, text[:cuts[0]])
	}
	for i, c := range cuts {
		next := len(text)
		if i+1 < len(cuts) {
			next = cuts[i+1]
		}
		blocks = append(blocks, text[c:next])
	}
	return blocks
}

func isHeading(rest, line string, headingRe *regexp.Regexp, speakers []*regexp.Regexp) bool {
	if headingRe == nil || !headingRe.MatchString(rest) {
		return false
	}
	return !isSpeakerLine(line, speakers)
}

func isSpeakerLine(line string, speakers []*regexp.Regexp) bool {
	for _, re := range speakers {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// firstLine returns the first non-blank line of s. Literal "\n" escapes count
// as line breaks, as they do in the title patterns.
func firstLine(s string) string {
	for {
		t := strings.TrimLeft(s, " \t\r\n\f")
		if !strings.HasPrefix(t, `\n`) {
			s = t
			break
		}
		s = t[2:]
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, `\n`); i >= 0 {
		s = s[:i]
	}
	return s
}
