package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jchaskell/cr/internal/pipeline"
	"github.com/jchaskell/cr/internal/scrape"
)

type scrapeRequest struct {
	Chamber string `json:"chamber"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// handleScrape queues one fetch job per day of the requested range.
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	chamber, err := scrape.ParseChamber(req.Chamber)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	start, err := scrape.ParseDate(req.Start)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	end := start
	if req.End != "" {
		if end, err = scrape.ParseDate(req.End); err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	days := scrape.DateRange(start, end)
	if len(days) == 0 {
		jsonError(w, "end is before start", http.StatusBadRequest)
		return
	}
	if len(days) > s.cfg.MaxQueueSize {
		jsonError(w, fmt.Sprintf("range of %d days exceeds queue size %d", len(days), s.cfg.MaxQueueSize), http.StatusBadRequest)
		return
	}

	jobs, err := s.orchestrator.SubmitRange(chamber, days)
	results := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		results = append(results, jobResponse(job))
	}

	status := http.StatusAccepted
	body := map[string]any{"jobs": results}
	if err != nil {
		s.log.Component("api").WithError(err).Warn("scrape range partially queued")
		body["error"] = err.Error()
		status = http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrQueueFull) {
			status = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}
