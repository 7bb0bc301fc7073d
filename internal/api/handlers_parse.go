package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/jchaskell/cr/internal/parser"
	"github.com/jchaskell/cr/internal/pipeline"
	"github.com/jchaskell/cr/internal/record"
	"github.com/jchaskell/cr/internal/scrape"
	"github.com/jchaskell/cr/internal/writer"
)

// upload is a transcript read from a request body.
type upload struct {
	filename string
	data     []byte
	chamber  scrape.Chamber
	date     time.Time
}

// readUpload accepts a multipart "file" field or a raw text body. Chamber
// and date come from the "chamber" and "date" values, falling back to a
// scraper file name such as S2019-05-22.txt.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (*upload, int, error) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	u := &upload{filename: "body.txt"}
	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, http.StatusBadRequest, fmt.Errorf("file is required: %w", err)
		}
		defer file.Close()
		u.filename = sanitizeFilename(header.Filename)
		src = file
	}

	if !parser.IsSupportedExtension(u.filename) {
		return nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %s", filepath.Ext(u.filename))
	}

	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	u.data = data

	if c, d, err := scrape.ParseFilename(u.filename); err == nil {
		u.chamber, u.date = c, d
	}
	if v := r.FormValue("chamber"); v != "" {
		c, err := scrape.ParseChamber(v)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		u.chamber = c
	}
	if v := r.FormValue("date"); v != "" {
		d, err := scrape.ParseDate(v)
		if err != nil {
			return nil, http.StatusBadRequest, err
		}
		u.date = d
	}
	return u, 0, nil
}

// handleParse segments a transcript synchronously and returns the record.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	u, code, err := s.readUpload(w, r)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	loader, err := parser.ForFile(u.filename, s.cfg.PDFFallbackPdftotext)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	text, err := loader.Load(bytes.NewReader(u.data), u.filename)
	if err != nil {
		jsonError(w, "failed to load transcript: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	rec := s.parser.Parse(text)
	rec.Chamber = string(u.chamber)
	rec.Date = u.date
	rec.Source = u.filename
	s.writeRecord(w, r, rec)
}

// handleUpload queues an uploaded transcript for parsing into the store.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, code, err := s.readUpload(w, r)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if u.chamber == "" || u.date.IsZero() {
		jsonError(w, "chamber and date are required unless the file name carries them", http.StatusBadRequest)
		return
	}

	job := pipeline.NewUploadJob(u.filename, u.data, u.chamber, u.date)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(jobResponse(job))
}

// writeRecord encodes rec as JSON, or as an HTML page with ?format=html.
func (s *Server) writeRecord(w http.ResponseWriter, r *http.Request, rec *record.Record) {
	if r.URL.Query().Get("format") == "html" {
		page, err := writer.RenderHTML(rec)
		if err != nil {
			jsonError(w, "failed to render record", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func jobResponse(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":   snap.ID,
		"chamber":  snap.Chamber,
		"date":     snap.Date,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s", snap.ID),
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
