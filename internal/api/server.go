package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jchaskell/cr/internal/config"
	"github.com/jchaskell/cr/internal/logger"
	"github.com/jchaskell/cr/internal/pipeline"
	"github.com/jchaskell/cr/internal/record"
	"github.com/jchaskell/cr/internal/scrape"
	"github.com/jchaskell/cr/internal/store"
	"github.com/jchaskell/cr/internal/transcript"
)

// RecordStore is the read side of the record database.
type RecordStore interface {
	Get(ctx context.Context, chamber string, day time.Time) (*record.Record, error)
	Dates(ctx context.Context, chamber string) ([]time.Time, error)
	SpeakerTurns(ctx context.Context, chamber string, limit int) ([]store.SpeakerCount, error)
}

// Server is the HTTP API server for the Congressional Record parser.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	parser       *transcript.Parser
	records      RecordStore
	fetchStats   *scrape.Stats
	log          *logger.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. fetchStats may be nil.
func NewServer(orch *pipeline.Orchestrator, p *transcript.Parser, records RecordStore, fetchStats *scrape.Stats, log *logger.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		parser:       p,
		records:      records,
		fetchStats:   fetchStats,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log.Component("auth")))

		r.Post("/api/parse", s.handleParse)
		r.Post("/api/upload", s.handleUpload)
		r.Post("/api/scrape", s.handleScrape)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)

		r.Get("/api/records/{chamber}", s.handleListDates)
		r.Get("/api/records/{chamber}/{date}", s.handleGetRecord)
		r.Get("/api/speakers", s.handleSpeakers)

		r.Get("/api/stats/fetch", s.handleFetchStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
