package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jchaskell/cr/internal/parser"
	"github.com/jchaskell/cr/internal/record"
	"github.com/jchaskell/cr/internal/scrape"
	"github.com/jchaskell/cr/internal/transcript"
)

// Fetcher downloads the raw transcript of one chamber-day.
type Fetcher interface {
	Day(ctx context.Context, c scrape.Chamber, day time.Time) (string, error)
	BaseURL() string
}

// RecordStore persists parsed records.
type RecordStore interface {
	Save(ctx context.Context, rec *record.Record) (int64, error)
}

// Worker processes a single parse job.
type Worker struct {
	fetcher     Fetcher
	parser      *transcript.Parser
	store       RecordStore
	log         *logrus.Entry
	pdfFallback bool
}

func NewWorker(f Fetcher, p *transcript.Parser, s RecordStore, log *logrus.Entry, pdfFallback bool) *Worker {
	return &Worker{
		fetcher:     f,
		parser:      p,
		store:       s,
		log:         log,
		pdfFallback: pdfFallback,
	}
}

// Process runs fetch or load, parse and store for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.WithFields(logrus.Fields{
		"job_id":  job.ID,
		"kind":    string(job.Kind),
		"chamber": string(job.Chamber),
		"date":    job.Date.Format("2006-01-02"),
	})

	// Phase 1: Fetch or load
	var (
		text   string
		source string
		phase  = "loading"
		err    error
	)
	switch job.Kind {
	case KindDay:
		phase = "fetching"
		job.SetStatus(StatusFetching, phase)
		source = scrape.DayURL(w.fetcher.BaseURL(), job.Chamber, job.Date)
		text, err = w.fetcher.Day(ctx, job.Chamber, job.Date)
		if errors.Is(err, scrape.ErrNoContent) {
			log.Info("no content for day")
			job.SetStatus(StatusNoContent, "fetching")
			return
		}
	case KindUpload:
		job.SetStatus(StatusParsing, phase)
		source = job.Filename
		text, err = w.load(job)
		job.releaseFileData()
	default:
		err = fmt.Errorf("unknown job kind %q", job.Kind)
	}
	if err != nil {
		log.WithError(err).Error("loading transcript failed")
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return
	}
	job.SetContentHash(ContentHashHex([]byte(text)))

	// Phase 2: Parse
	job.SetStatus(StatusParsing, "parsing")
	rec, pages, err := w.parse(text)
	if err != nil {
		log.WithError(err).Error("parse failed")
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	rec.Chamber = string(job.Chamber)
	rec.Date = job.Date
	rec.Source = source
	job.SetCounts(pages, rec)
	log.WithFields(logrus.Fields{
		"pages":    pages,
		"sections": len(rec.Sections),
		"turns":    rec.TurnCount(),
	}).Info("parsed transcript")

	// Phase 3: Store
	job.SetStatus(StatusStoring, "storing")
	if _, err := w.store.Save(ctx, rec); err != nil {
		log.WithError(err).Error("store failed")
		job.AddError(fmt.Sprintf("store: %s", err))
		job.SetStatus(StatusFailed, "storing")
		return
	}

	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) load(job *Job) (string, error) {
	l, err := parser.ForFile(job.Filename, w.pdfFallback)
	if err != nil {
		return "", err
	}
	return l.Load(bytes.NewReader(job.FileData()), job.Filename)
}

// parse runs every stage and reports the page count alongside the record.
func (w *Worker) parse(text string) (*record.Record, int, error) {
	run := w.parser.Start(text)
	if err := run.All(); err != nil {
		return nil, 0, err
	}
	return &record.Record{Sections: run.Sections()}, len(run.Pages()), nil
}
