package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jchaskell/cr/internal/api"
	"github.com/jchaskell/cr/internal/config"
	"github.com/jchaskell/cr/internal/logger"
	"github.com/jchaskell/cr/internal/pipeline"
	"github.com/jchaskell/cr/internal/scrape"
	"github.com/jchaskell/cr/internal/store"
	"github.com/jchaskell/cr/internal/transcript"
)

func main() {
	log := logger.New()

	if err := config.LoadDotEnv(); err != nil {
		log.WithError(err).Error("loading .env")
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("invalid configuration")
		os.Exit(1)
	}

	patterns, err := config.LoadPatterns(cfg.PatternsFile)
	if err != nil {
		log.WithError(err).Error("loading patterns")
		os.Exit(1)
	}
	p, err := transcript.New(
		transcript.WithPatterns(patterns),
		transcript.WithLogger(log.Component("transcript")),
	)
	if err != nil {
		log.WithError(err).Error("building parser")
		os.Exit(1)
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		log.WithError(err).Error("opening store")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	fetcher := scrape.NewClient(scrape.Options{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.FetchTimeout,
		Rate:       cfg.FetchRate,
		MaxElapsed: cfg.FetchMaxElapsed,
		Log:        log.Component("scrape"),
	})

	// Initialize pipeline.
	worker := pipeline.NewWorker(fetcher, p, st, log.Component("worker"), cfg.PDFFallbackPdftotext)
	orch := pipeline.NewOrchestrator(cfg, worker, log.Component("pipeline"))
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, p, st, fetcher.Stats(), log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		st.Close()
	}()

	log.WithField("port", cfg.Port).Info("starting congressional record server")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Error("server error")
		os.Exit(1)
	}
}
