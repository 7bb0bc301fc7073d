package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jchaskell/cr/internal/record"
	"github.com/jchaskell/cr/internal/scrape"
)

// JobKind says where a job's transcript comes from.
type JobKind string

const (
	// KindDay fetches one chamber-day from congress.gov.
	KindDay JobKind = "day"
	// KindUpload parses a file submitted by the caller.
	KindUpload JobKind = "upload"
)

// JobStatus represents the state of a parse job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusFetching  JobStatus = "fetching"
	StatusParsing   JobStatus = "parsing"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusNoContent JobStatus = "no_content"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusNoContent
}

// Job tracks the state of one chamber-day or uploaded transcript.
type Job struct {
	mu sync.Mutex

	ID      string         `json:"job_id"`
	Kind    JobKind        `json:"kind"`
	Chamber scrape.Chamber `json:"chamber"`
	Date    time.Time      `json:"date"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename,omitempty"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress counts what the parser produced.
type Progress struct {
	Pages    int      `json:"pages"`
	Sections int      `json:"sections"`
	Turns    int      `json:"turns"`
	Errors   []string `json:"errors"`
}

// NewDayJob creates a queued job fetching one chamber-day.
func NewDayJob(c scrape.Chamber, day time.Time) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.New().String(),
		Kind:      KindDay,
		Chamber:   c,
		Date:      day,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewUploadJob creates a queued job parsing data. Chamber and date identify
// the stored record.
func NewUploadJob(filename string, data []byte, c scrape.Chamber, day time.Time) *Job {
	j := NewDayJob(c, day)
	j.Kind = KindUpload
	j.Filename = filename
	j.fileData = data
	return j
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs not updated within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetCounts records the shape of the parsed record.
func (j *Job) SetCounts(pages int, rec *record.Record) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Pages = pages
	j.Progress.Sections = len(rec.Sections)
	j.Progress.Turns = rec.TurnCount()
	j.UpdatedAt = time.Now()
}

// SetContentHash records the hash of the raw transcript.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// releaseFileData drops the upload once it has been parsed.
func (j *Job) releaseFileData() {
	j.SetFileData(nil)
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string         `json:"job_id"`
	Kind        JobKind        `json:"kind"`
	Chamber     scrape.Chamber `json:"chamber"`
	Date        string         `json:"date"`
	Status      JobStatus      `json:"status"`
	Phase       string         `json:"phase"`
	Filename    string         `json:"filename,omitempty"`
	ContentHash string         `json:"content_hash,omitempty"`
	Progress    Progress       `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	date := ""
	if !j.Date.IsZero() {
		date = j.Date.Format("2006-01-02")
	}
	return JobSnapshot{
		ID:          j.ID,
		Kind:        j.Kind,
		Chamber:     j.Chamber,
		Date:        date,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Progress: Progress{
			Pages:    j.Progress.Pages,
			Sections: j.Progress.Sections,
			Turns:    j.Progress.Turns,
			Errors:   append([]string{}, j.Progress.Errors...),
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
