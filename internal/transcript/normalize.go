package transcript

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Replacement rewrites every literal occurrence of Old with New.
type Replacement struct {
	Old string
	New string
}

// DefaultReplacements undo the escaping the scraper's list rendering applies.
var DefaultReplacements = []Replacement{
	{Old: `\r\n`, New: "\n"},
	{Old: `\n`, New: "\n"},
	{Old: `\t`, New: "\t"},
	{Old: `\'`, New: "'"},
	{Old: `\"`, New: `"`},
	{Old: `\xa0`, New: " "},
	{Old: "\u00a0", New: " "},
}

// DefaultCitation matches a page citation embedded in the middle of an
// article when the printed page turns.
const DefaultCitation = `\n?\[['"], <a href=['"][^'"]*['"]>Pages? [HS][0-9HS-]+</a>, u?['"]\]\n?`

// breakAttribution follows a citation only when the citation opens a new
// article, i.e. when it is part of a page break.
const breakAttribution = "From the Congressional Record Online"

// Normalizer strips scrape noise from a raw transcript. It must leave page
// breaks intact because splitting runs on its output.
type Normalizer struct {
	Replacements []Replacement
	Citation     *regexp.Regexp
}

// DefaultNormalizer returns the normalizer used for congress.gov scrapes.
func DefaultNormalizer() *Normalizer {
	return &Normalizer{
		Replacements: DefaultReplacements,
		Citation:     regexp.MustCompile(DefaultCitation),
	}
}

// Normalize applies the literal replacements in order, composes Unicode to
// NFC and drops mid-article page citations.
func (n *Normalizer) Normalize(text string) string {
	text = Replace(text, n.Replacements)
	text = norm.NFC.String(text)
	if n.Citation != nil {
		text = n.dropCitations(text)
	}
	return text
}

// Replace rewrites each Old string with its New counterpart, in order.
func Replace(text string, replacements []Replacement) string {
	for _, r := range replacements {
		if r.Old == "" {
			continue
		}
		text = strings.ReplaceAll(text, r.Old, r.New)
	}
	return text
}

func (n *Normalizer) dropCitations(text string) string {
	locs := n.Citation.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	last := 0
	for _, loc := range locs {
		rest := strings.TrimLeft(text[loc[1]:], "\n")
		if strings.HasPrefix(rest, breakAttribution) {
			continue
		}
		sb.WriteString(text[last:loc[0]])
		sb.WriteString("\n")
		last = loc[1]
	}
	sb.WriteString(text[last:])
	return sb.String()
}
