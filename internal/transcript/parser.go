package transcript

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/jchaskell/cr/internal/record"
)

// Stage is a step of the per-transcript state machine.
type Stage int

const (
	StageRaw Stage = iota
	StageSplit
	StageGrouped
	StageAttributed
	StageExpanded
	StageCleaned
)

func (s Stage) String() string {
	switch s {
	case StageRaw:
		return "raw"
	case StageSplit:
		return "split"
	case StageGrouped:
		return "titled_and_grouped"
	case StageAttributed:
		return "speaker_attributed"
	case StageExpanded:
		return "section_expanded"
	case StageCleaned:
		return "cleaned"
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// ErrStageOrder is returned when a stage is run before its predecessor.
var ErrStageOrder = errors.New("stage out of order")

// Parser segments transcripts into titled speaker turns. It holds only
// immutable configuration and may be shared across goroutines; each call to
// Start or Parse owns its own state.
type Parser struct {
	patterns   Patterns
	normalizer *Normalizer
	log        *logrus.Entry
}

// Option configures a Parser.
type Option func(*Parser)

// WithPatterns replaces the default pattern set.
func WithPatterns(p Patterns) Option {
	return func(ps *Parser) { ps.patterns = p }
}

// WithNormalizer replaces the default normalizer. nil disables normalization.
func WithNormalizer(n *Normalizer) Option {
	return func(ps *Parser) { ps.normalizer = n }
}

// WithCompoundTitles overrides which headings are expanded into sub-topics.
func WithCompoundTitles(titles ...string) Option {
	return func(ps *Parser) {
		ps.patterns.CompoundTitles = append([]string(nil), titles...)
	}
}

// WithLogger sets the logger stage transitions are reported to (debug level).
func WithLogger(l *logrus.Entry) Option {
	return func(ps *Parser) { ps.log = l }
}

// New builds a parser, validating the configured patterns.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{
		patterns:   DefaultPatterns(),
		normalizer: DefaultNormalizer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		base := logrus.New()
		base.SetOutput(io.Discard)
		p.log = logrus.NewEntry(base)
	}
	if err := p.patterns.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Patterns returns the parser's pattern set.
func (p *Parser) Patterns() Patterns {
	return p.patterns
}

// Parse runs every stage over text and returns the resulting sections.
func (p *Parser) Parse(text string) *record.Record {
	r := p.Start(text)
	if err := r.All(); err != nil {
		p.log.WithError(err).Error("parse stopped early")
	}
	return &record.Record{Sections: r.Sections()}
}

// Start begins a staged run over text.
func (p *Parser) Start(text string) *Run {
	return &Run{p: p, text: text}
}

// Run is one transcript moving through the stages. It is not safe for
// concurrent use.
type Run struct {
	p     *Parser
	stage Stage
	text  string
	pages []string
	coll  *SpeechCollection
}

// Stage reports the last completed stage.
func (r *Run) Stage() Stage { return r.stage }

// Pages returns the pages produced by Split.
func (r *Run) Pages() []string { return r.pages }

// Collection returns the current speech collection, nil before Group.
func (r *Run) Collection() *SpeechCollection { return r.coll }

// Sections returns the collection flattened for output.
func (r *Run) Sections() []record.Section {
	if r.coll == nil {
		return nil
	}
	return r.coll.Sections()
}

// Split normalizes the transcript and cuts it into pages.
func (r *Run) Split() error {
	return r.advance(StageSplit, func() {
		text := r.text
		if r.p.normalizer != nil {
			text = r.p.normalizer.Normalize(text)
		}
		r.pages = SplitPages(text, r.p.patterns.PageBreak)
	})
}

// Group files every page under its title.
func (r *Run) Group() error {
	return r.advance(StageGrouped, func() {
		r.coll = AddTitledSpeeches(r.pages, r.p.patterns.Title)
	})
}

// Attribute splits every fragment into speaker turns.
func (r *Run) Attribute() error {
	return r.advance(StageAttributed, func() {
		speakers := r.p.patterns.Speakers
		r.coll = r.coll.Map(func(f Fragment) Fragment {
			f.Turns = AttributeSpeakers(f.Text, speakers)
			return f
		})
	})
}

// Expand replaces each configured compound title with its sub-topics.
func (r *Run) Expand() error {
	return r.advance(StageExpanded, func() {
		for _, title := range r.p.patterns.CompoundTitles {
			had := r.coll.Has(title)
			r.coll = ExpandCompound(r.coll, title, r.p.patterns.MinorTitle, r.p.patterns.Speakers)
			if had && !r.coll.Has(title) {
				r.p.log.WithField("title", title).Debug("expanded compound section")
			}
		}
	})
}

// Clean trims debris from every fragment and turn.
func (r *Run) Clean() error {
	return r.advance(StageCleaned, func() {
		r.coll = Clean(r.coll)
	})
}

// All runs every remaining stage in order, stopping at the first error.
func (r *Run) All() error {
	for _, step := range []func() error{r.Split, r.Group, r.Attribute, r.Expand, r.Clean} {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// advance runs fn if the run sits exactly one stage before to. Re-running a
// completed stage is a no-op.
func (r *Run) advance(to Stage, fn func()) error {
	if r.stage >= to {
		return nil
	}
	if r.stage != to-1 {
		return fmt.Errorf("%w: %s requires %s, run is at %s", ErrStageOrder, to, to-1, r.stage)
	}
	fn()
	r.stage = to

	titles := 0
	if r.coll != nil {
		titles = r.coll.Len()
	}
	r.p.log.WithFields(logrus.Fields{
		"stage":  to.String(),
		"pages":  len(r.pages),
		"titles": titles,
	}).Debug("stage complete")
	return nil
}
