package transcript

import (
	"errors"
	"fmt"
	"regexp"
)

// Default pattern sources. They are compiled per Patterns value so callers can
// override any of them without touching shared state.
const (
	// The scrape footer that opens every article: a page citation followed by
	// the GPO attribution line. Accepts both the escaped "\n" of the raw
	// scrape and a real newline, so it matches before and after normalization.
	// A form feed (the PDF loader's page separator) also breaks a page.
	DefaultPageBreak = `\f|\[['"](?:\\n|\r?\n)\[['"], <a href=['"]/congressional-record/volume-\d+/(?:senate|house)-section/page/[SH]\d+['"]>Pages? [HS][0-9HS-]+</a>, u?['"]\](?:\\n|\r?\n)From the Congressional Record Online through the Government Publishing Office \[www\.gpo\.gov\]`

	// An upper-case heading of at least two characters on its own line(s) at
	// the start of the page.
	DefaultTitle = `^(?:\s|\\n)*([A-Z0-9][A-Z0-9 .,\-!?;:'"()&/$%]+(?:[ \t]*(?:\r?\n|\\n)[ \t]*[A-Z0-9][A-Z0-9 .,\-!?;:'"()&/$%]*)*)[ \t]*(?:\r?\n|\\n|\z)(?:\s|\\n)*`

	// A short mixed-case heading line followed by a blank line, used inside
	// compound sections where sub-topics are not capitalised.
	DefaultMinorTitle = `^(?:\s|\\n)*([A-Z0-9][^\n]{0,118}[A-Za-z0-9)?!'"])[ \t]*(?:\r?\n[ \t]*(?:\r?\n|\z)|\r?\n?\z)(?:\s|\\n)*`
)

// DefaultSpeakers lists speaker introductions in priority order: procedural
// roles first, then courtesy-titled surnames. Group 1 is the speaker label.
var DefaultSpeakers = []string{
	`(?m)^[ \t]*(The (?:ACTING )?PRESIDING OFFICER(?: \((?:Mr|Ms|Mrs|Miss|Dr)\. [A-Z][A-Za-z'\- ]+\))?)\.[ \t]*`,
	`(?m)^[ \t]*(The (?:ACTING )?PRESIDENT pro tempore)\.[ \t]*`,
	`(?m)^[ \t]*(The (?:VICE )?PRESIDENT)\.[ \t]*`,
	`(?m)^[ \t]*(The (?:ACTING )?SPEAKER pro tempore(?: \((?:Mr|Ms|Mrs|Miss|Dr)\. [A-Z][A-Za-z'\- ]+\))?)\.[ \t]*`,
	`(?m)^[ \t]*(The SPEAKER)\.[ \t]*`,
	`(?m)^[ \t]*(The (?:CHAIRMAN|CHAIRWOMAN|CHAIR|CHIEF JUSTICE))\.[ \t]*`,
	`(?m)^[ \t]*((?:Mr|Ms|Mrs|Miss|Dr)\. (?:Mc|Mac|De|Di|La|Le)?[A-Z][A-Z'\-]+(?: (?:of [A-Z][a-z]+(?: [A-Z][a-z]+)?|(?:Mc|Mac)?[A-Z][A-Z'\-]+))?)\.[ \t]*`,
}

// DefaultCompoundTitles are headings known to bundle unrelated sub-topics.
var DefaultCompoundTitles = []string{
	"EXECUTIVE SESSION",
	"MORNING BUSINESS",
	"ADDITIONAL STATEMENTS",
}

// ErrInvalidPatterns is returned when a pattern set cannot drive the parser.
var ErrInvalidPatterns = errors.New("invalid pattern set")

// Patterns is the immutable configuration the parser runs with. Compiled
// regexps are safe for concurrent use, so one Patterns value can be shared by
// any number of parsers.
type Patterns struct {
	PageBreak      *regexp.Regexp
	Title          *regexp.Regexp
	MinorTitle     *regexp.Regexp
	Speakers       []*regexp.Regexp
	CompoundTitles []string
}

// PatternSource is the uncompiled, serialisable form of Patterns. Empty fields
// fall back to the defaults.
type PatternSource struct {
	PageBreak      string   `yaml:"page_break" toml:"page_break"`
	Title          string   `yaml:"title" toml:"title"`
	MinorTitle     string   `yaml:"minor_title" toml:"minor_title"`
	Speakers       []string `yaml:"speakers" toml:"speakers"`
	CompoundTitles []string `yaml:"compound_titles" toml:"compound_titles"`
}

// DefaultPatterns compiles the built-in pattern set.
func DefaultPatterns() Patterns {
	p, err := Compile(PatternSource{})
	if err != nil {
		panic(err)
	}
	return p
}

// Compile builds a Patterns value from src.
func Compile(src PatternSource) (Patterns, error) {
	var p Patterns
	var err error

	if p.PageBreak, err = compileOr(src.PageBreak, DefaultPageBreak, "page_break"); err != nil {
		return Patterns{}, err
	}
	if p.Title, err = compileOr(src.Title, DefaultTitle, "title"); err != nil {
		return Patterns{}, err
	}
	if p.MinorTitle, err = compileOr(src.MinorTitle, DefaultMinorTitle, "minor_title"); err != nil {
		return Patterns{}, err
	}

	speakers := src.Speakers
	if len(speakers) == 0 {
		speakers = DefaultSpeakers
	}
	for i, s := range speakers {
		re, err := regexp.Compile(s)
		if err != nil {
			return Patterns{}, fmt.Errorf("compile speakers[%d]: %w", i, err)
		}
		p.Speakers = append(p.Speakers, re)
	}

	p.CompoundTitles = src.CompoundTitles
	if len(p.CompoundTitles) == 0 {
		p.CompoundTitles = append([]string(nil), DefaultCompoundTitles...)
	}

	if err := p.Validate(); err != nil {
		return Patterns{}, err
	}
	return p, nil
}

// Validate checks that every pattern is present and that title and speaker
// patterns expose the capture group the parser reads.
func (p Patterns) Validate() error {
	if p.PageBreak == nil || p.Title == nil || p.MinorTitle == nil {
		return fmt.Errorf("%w: page break, title and minor title are required", ErrInvalidPatterns)
	}
	if p.Title.NumSubexp() < 1 || p.MinorTitle.NumSubexp() < 1 {
		return fmt.Errorf("%w: title patterns need a capture group", ErrInvalidPatterns)
	}
	if len(p.Speakers) == 0 {
		return fmt.Errorf("%w: at least one speaker pattern is required", ErrInvalidPatterns)
	}
	for i, re := range p.Speakers {
		if re == nil || re.NumSubexp() < 1 {
			return fmt.Errorf("%w: speakers[%d] needs a capture group", ErrInvalidPatterns, i)
		}
	}
	return nil
}

// IsCompound reports whether title is configured as a compound heading.
func (p Patterns) IsCompound(title string) bool {
	for _, c := range p.CompoundTitles {
		if c == title {
			return true
		}
	}
	return false
}

func compileOr(expr, fallback, name string) (*regexp.Regexp, error) {
	if expr == "" {
		expr = fallback
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return re, nil
}
