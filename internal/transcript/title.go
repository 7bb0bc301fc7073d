package transcript

import (
	"regexp"
	"strings"
)

// minTitleLen is the shortest heading accepted as a title.
const minTitleLen = 2

// CaptureTitle returns the heading at the start of page, or "" when there is
// none. Internal runs of whitespace are collapsed so a heading wrapped across
// lines yields the same key as an unwrapped one.
func CaptureTitle(page string, titleRe *regexp.Regexp) string {
	title, _ := matchHeadings(page, titleRe, nil)
	return title
}

// RemoveTitle strips the heading CaptureTitle would report, any headings
// stacked directly beneath it, and the whitespace after them. Pages without a
// title are returned unchanged, so a second call is a no-op.
func RemoveTitle(page string, titleRe *regexp.Regexp) string {
	title, end := matchHeadings(page, titleRe, nil)
	if title == "" {
		return page
	}
	return page[end:]
}

// SplitTitle is CaptureTitle and RemoveTitle in one pass.
func SplitTitle(page string, titleRe *regexp.Regexp) (title, body string) {
	return splitTitle(page, titleRe, nil)
}

// splitTitle is SplitTitle that refuses any heading whose first line is a
// speaker line.
func splitTitle(page string, titleRe *regexp.Regexp, speakers []*regexp.Regexp) (string, string) {
	title, end := matchHeadings(page, titleRe, speakers)
	if title == "" {
		return "", page
	}
	return title, page[end:]
}

// matchHeadings matches the heading at the start of page plus every heading
// stacked under it. The first heading is the title; the returned offset is
// past the last one.
func matchHeadings(page string, titleRe *regexp.Regexp, speakers []*regexp.Regexp) (string, int) {
	title, end := matchTitle(page, titleRe, speakers)
	if title == "" {
		return "", 0
	}
	for end < len(page) {
		next, n := matchTitle(page[end:], titleRe, speakers)
		if next == "" {
			break
		}
		end += n
	}
	return title, end
}

func matchTitle(page string, titleRe *regexp.Regexp, speakers []*regexp.Regexp) (string, int) {
	if titleRe == nil {
		return "", 0
	}
	if len(speakers) > 0 && isSpeakerLine(firstLine(page), speakers) {
		return "", 0
	}
	loc := titleRe.FindStringSubmatchIndex(page)
	if loc == nil || loc[0] != 0 || len(loc) < 4 || loc[2] < 0 {
		return "", 0
	}
	title := collapseSpace(strings.ReplaceAll(page[loc[2]:loc[3]], `\n`, " "))
	if len(title) < minTitleLen {
		return "", 0
	}
	return title, loc[1]
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
