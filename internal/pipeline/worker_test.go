package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jchaskell/cr/internal/config"
	"github.com/jchaskell/cr/internal/logger"
	"github.com/jchaskell/cr/internal/record"
	"github.com/jchaskell/cr/internal/scrape"
	"github.com/jchaskell/cr/internal/transcript"
)

const testBreak = `['\n[', <a href='/congressional-record/volume-165/senate-section/page/S3001'>Page S3001</a>, ']\nFrom the Congressional Record Online through the Government Publishing Office [www.gpo.gov]`

const testTranscript = testBreak + `\n\nRECESS\n\nMr. THUNE. Mr. President, I suggest the absence of a quorum.\n\nThe PRESIDING OFFICER. The clerk will call the roll.\n']`

type fakeFetcher struct {
	text string
	err  error
}

func (f *fakeFetcher) Day(ctx context.Context, c scrape.Chamber, day time.Time) (string, error) {
	return f.text, f.err
}

func (f *fakeFetcher) BaseURL() string { return "http://example.test" }

type fakeStore struct {
	mu    sync.Mutex
	saved []*record.Record
	err   error
}

func (s *fakeStore) Save(ctx context.Context, rec *record.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.saved = append(s.saved, rec)
	return int64(len(s.saved)), nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func newTestWorker(t *testing.T, f Fetcher, s RecordStore) *Worker {
	t.Helper()
	p, err := transcript.New()
	if err != nil {
		t.Fatalf("transcript.New: %v", err)
	}
	return NewWorker(f, p, s, logger.Discard().Entry, false)
}

func TestWorker_DayJob(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(t, &fakeFetcher{text: testTranscript}, store)
	day := time.Date(2019, 5, 22, 0, 0, 0, 0, time.UTC)
	job := NewDayJob(scrape.Senate, day)

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected status %q, got %q (errors %v)", StatusCompleted, snap.Status, snap.Progress.Errors)
	}
	if snap.Progress.Pages != 1 || snap.Progress.Sections != 1 || snap.Progress.Turns != 2 {
		t.Errorf("unexpected progress %+v", snap.Progress)
	}
	if snap.ContentHash != ContentHashHex([]byte(testTranscript)) {
		t.Errorf("unexpected content hash %q", snap.ContentHash)
	}
	if store.count() != 1 {
		t.Fatalf("expected 1 saved record, got %d", store.count())
	}
	rec := store.saved[0]
	if rec.Chamber != "s" || !rec.Date.Equal(day) {
		t.Errorf("unexpected record identity %q %v", rec.Chamber, rec.Date)
	}
	if rec.Source != "http://example.test/congressional-record/2019/05/22/senate-section" {
		t.Errorf("unexpected source %q", rec.Source)
	}
	if rec.Sections[0].Title != "RECESS" || rec.Sections[0].Turns[0].Speaker != "Mr. THUNE" {
		t.Errorf("unexpected sections %+v", rec.Sections)
	}
}

func TestWorker_NoContent(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(t, &fakeFetcher{err: fmt.Errorf("day: %w", scrape.ErrNoContent)}, store)
	job := NewDayJob(scrape.House, time.Date(2019, 5, 25, 0, 0, 0, 0, time.UTC))

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusNoContent {
		t.Errorf("expected status %q, got %q", StatusNoContent, job.Snapshot().Status)
	}
	if store.count() != 0 {
		t.Error("expected nothing stored")
	}
}

func TestWorker_FetchError(t *testing.T) {
	w := newTestWorker(t, &fakeFetcher{err: errors.New("connection refused")}, &fakeStore{})
	job := NewDayJob(scrape.Senate, time.Now())

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "connection refused" {
		t.Errorf("unexpected errors %v", snap.Progress.Errors)
	}
}

func TestWorker_StoreError(t *testing.T) {
	w := newTestWorker(t, &fakeFetcher{text: testTranscript}, &fakeStore{err: errors.New("disk full")})
	job := NewDayJob(scrape.Senate, time.Now())

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "storing" {
		t.Errorf("expected failure while storing, got %q/%q", snap.Status, snap.Phase)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "store: disk full" {
		t.Errorf("unexpected errors %v", snap.Progress.Errors)
	}
}

func TestWorker_UploadJob(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(t, &fakeFetcher{}, store)
	job := NewUploadJob("S2019-05-22.txt", []byte(testTranscript), scrape.Senate, time.Date(2019, 5, 22, 0, 0, 0, 0, time.UTC))

	w.Process(context.Background(), job)

	if s := job.Snapshot().Status; s != StatusCompleted {
		t.Fatalf("expected status %q, got %q", StatusCompleted, s)
	}
	if job.FileData() != nil {
		t.Error("expected upload bytes to be released")
	}
	if store.count() != 1 || store.saved[0].Source != "S2019-05-22.txt" {
		t.Errorf("unexpected saved records %+v", store.saved)
	}
}

func TestWorker_UploadUnsupported(t *testing.T) {
	w := newTestWorker(t, &fakeFetcher{}, &fakeStore{})
	job := NewUploadJob("record.docx", []byte("x"), scrape.Senate, time.Now())

	w.Process(context.Background(), job)

	if s := job.Snapshot().Status; s != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, s)
	}
}

func testConfig(queue int) config.Config {
	return config.Config{WorkerCount: 2, MaxQueueSize: queue, JobTTL: time.Hour}
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := job.Snapshot(); snap.Status.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_SubmitRange(t *testing.T) {
	store := &fakeStore{}
	w := newTestWorker(t, &fakeFetcher{text: testTranscript}, store)
	o := NewOrchestrator(testConfig(10), w, logger.Discard().Entry)
	o.Start(context.Background())
	defer o.Stop()

	days := scrape.DateRange(time.Date(2019, 5, 20, 0, 0, 0, 0, time.UTC), time.Date(2019, 5, 22, 0, 0, 0, 0, time.UTC))
	jobs, err := o.SubmitRange(scrape.Senate, days)
	if err != nil {
		t.Fatalf("SubmitRange: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(jobs))
	}
	for _, j := range jobs {
		if snap := waitDone(t, j); snap.Status != StatusCompleted {
			t.Errorf("job %s: expected %q, got %q", j.ID, StatusCompleted, snap.Status)
		}
		if o.GetJob(j.ID) != j {
			t.Errorf("expected GetJob to return job %s", j.ID)
		}
	}
	if store.count() != 3 {
		t.Errorf("expected 3 saved records, got %d", store.count())
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	w := newTestWorker(t, &fakeFetcher{text: testTranscript}, &fakeStore{})
	// Not started: nothing drains the queue.
	o := NewOrchestrator(testConfig(1), w, logger.Discard().Entry)

	if err := o.Submit(NewDayJob(scrape.Senate, time.Now())); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
	rejected := NewDayJob(scrape.Senate, time.Now())
	err := o.Submit(rejected)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if rejected.Snapshot().Status != StatusFailed {
		t.Errorf("expected rejected job to be failed, got %q", rejected.Snapshot().Status)
	}
}
