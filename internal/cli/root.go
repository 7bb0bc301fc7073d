// Package cli implements the crecord command line.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jchaskell/cr/internal/config"
	"github.com/jchaskell/cr/internal/logger"
	"github.com/jchaskell/cr/internal/scrape"
	"github.com/jchaskell/cr/internal/transcript"
)

// version is set at build time with -ldflags "-X".
var version = "dev"

// Persistent flags.
var (
	patternsFile string
	logLevel     string
	baseURL      string
)

// cfg holds environment defaults; flags override it.
var cfg = loadConfig()

var rootCmd = &cobra.Command{
	Use:   "crecord",
	Short: "Scrape and segment Congressional Record transcripts",
	Long: `crecord downloads daily Congressional Record transcripts from congress.gov
and splits them into debate sections and speaker turns.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&patternsFile, "patterns", cfg.PatternsFile, "YAML or TOML pattern override file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envLogLevel(), "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", cfg.BaseURL, "congress.gov origin")
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig() config.Config {
	// A malformed .env is reported by the server; the CLI runs on defaults.
	_ = config.LoadDotEnv()
	return config.Load()
}

func envLogLevel() string {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		return v
	}
	return "info"
}

func newLogger(cmd *cobra.Command) *logger.Logger {
	return logger.NewWithOutput(cmd.ErrOrStderr(), os.Getenv("ENVIRONMENT"), logLevel)
}

func newParser(log *logger.Logger) (*transcript.Parser, error) {
	patterns, err := config.LoadPatterns(patternsFile)
	if err != nil {
		return nil, err
	}
	return transcript.New(
		transcript.WithPatterns(patterns),
		transcript.WithLogger(log.Component("transcript")),
	)
}

func newClient(log *logger.Logger) *scrape.Client {
	return scrape.NewClient(scrape.Options{
		BaseURL:    baseURL,
		Timeout:    cfg.FetchTimeout,
		Rate:       cfg.FetchRate,
		MaxElapsed: cfg.FetchMaxElapsed,
		Log:        log.Component("scrape"),
	})
}

// dirArg returns the optional directory argument, defaulting to DATA_DIR.
func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.DataDir
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
