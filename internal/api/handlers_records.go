package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jchaskell/cr/internal/scrape"
	"github.com/jchaskell/cr/internal/store"
)

// handleListDates lists the stored days of a chamber.
func (s *Server) handleListDates(w http.ResponseWriter, r *http.Request) {
	chamber, err := scrape.ParseChamber(chi.URLParam(r, "chamber"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	days, err := s.records.Dates(r.Context(), string(chamber))
	if err != nil {
		jsonError(w, "failed to list dates: "+err.Error(), http.StatusInternalServerError)
		return
	}

	dates := make([]string, 0, len(days))
	for _, d := range days {
		dates = append(dates, d.Format(scrape.DateLayout))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"chamber": chamber,
		"dates":   dates,
	})
}

// handleGetRecord returns one stored chamber-day. The date is MM-DD-YYYY.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	chamber, err := scrape.ParseChamber(chi.URLParam(r, "chamber"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	day, err := scrape.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	rec, err := s.records.Get(r.Context(), string(chamber), day)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, "failed to load record: "+err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeRecord(w, r, rec)
}

// handleSpeakers ranks speakers by stored turn count.
func (s *Server) handleSpeakers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	chamber := ""
	if v := q.Get("chamber"); v != "" {
		c, err := scrape.ParseChamber(v)
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		chamber = string(c)
	}
	limit := 20
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	speakers, err := s.records.SpeakerTurns(r.Context(), chamber, limit)
	if err != nil {
		jsonError(w, "failed to count speakers: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if speakers == nil {
		speakers = []store.SpeakerCount{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"speakers": speakers})
}

