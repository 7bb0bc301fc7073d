package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jchaskell/cr/internal/parser"
	"github.com/jchaskell/cr/internal/record"
	"github.com/jchaskell/cr/internal/scrape"
	"github.com/jchaskell/cr/internal/store"
	"github.com/jchaskell/cr/internal/transcript"
	"github.com/jchaskell/cr/internal/writer"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>...",
	Short: "Segment transcripts into titled speaker turns",
	Long: `Parses saved transcripts (.txt scrapes, saved .html article pages or .pdf
files) and writes one row per speaker turn. Turns without a speaker go to
--other when it is set. With --db the records are also saved to SQLite.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

// Parse flags.
var (
	parseOut     string
	parseOther   string
	parseFormat  string
	parseAppend  bool
	parseDB      string
	parseChamber string
	parseDate    string
)

func init() {
	parseCmd.Flags().StringVarP(&parseOut, "out", "o", "", "Output file (required unless --db is set)")
	parseCmd.Flags().StringVar(&parseOther, "other", "", "Output file for turns without a speaker")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", cfg.OutputFormat, "Output format: csv, json, xlsx, html or docx")
	parseCmd.Flags().BoolVarP(&parseAppend, "append", "a", false, "Append to existing output instead of replacing it")
	parseCmd.Flags().StringVar(&parseDB, "db", "", "SQLite database to save records to")
	parseCmd.Flags().StringVar(&parseChamber, "chamber", "", "Chamber (s or h) when the file name does not carry it")
	parseCmd.Flags().StringVar(&parseDate, "date", "", "Date (MM-DD-YYYY) when the file name does not carry it")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseOut == "" && parseDB == "" {
		return errors.New("one of --out or --db is required")
	}
	log := newLogger(cmd)
	p, err := newParser(log)
	if err != nil {
		return err
	}

	var w writer.Writer
	if parseOut != "" {
		w, err = writer.ForFormat(parseFormat, parseOut, writer.Options{Append: parseAppend, OtherPath: parseOther})
		if err != nil {
			return err
		}
	}
	var st *store.Store
	if parseDB != "" {
		if st, err = store.Open(parseDB); err != nil {
			return err
		}
		defer st.Close()
	}

	var errs []error
	for _, path := range args {
		rec, err := loadRecord(path, p, cfg.PDFFallbackPdftotext, parseChamber, parseDate)
		if err == nil {
			err = emit(commandContext(cmd), rec, w, st)
		}
		if err != nil {
			log.WithError(err).WithField("file", path).Error("parse failed")
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		log.WithField("file", path).WithField("turns", rec.TurnCount()).Info("parsed transcript")
		cmd.Printf("%s: %d sections, %d turns\n", path, len(rec.Sections), rec.TurnCount())
	}

	if w != nil {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func emit(ctx context.Context, rec *record.Record, w writer.Writer, st *store.Store) error {
	if w != nil {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	if st != nil {
		if rec.Chamber == "" || rec.Date.IsZero() {
			return errors.New("chamber and date are required to save to the database")
		}
		if _, err := st.Save(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// loadRecord reads and segments one transcript file. Chamber and date come
// from the file name unless chamberArg or dateArg is set.
func loadRecord(path string, p *transcript.Parser, pdfFallback bool, chamberArg, dateArg string) (*record.Record, error) {
	loader, err := parser.ForFile(path, pdfFallback)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open transcript: %w", err)
	}
	defer f.Close()
	text, err := loader.Load(f, path)
	if err != nil {
		return nil, err
	}

	rec := p.Parse(text)
	rec.Source = path
	chamber, day, _ := scrape.ParseFilename(path)
	if chamberArg != "" {
		if chamber, err = scrape.ParseChamber(chamberArg); err != nil {
			return nil, err
		}
	}
	if dateArg != "" {
		if day, err = scrape.ParseDate(dateArg); err != nil {
			return nil, err
		}
	}
	rec.Chamber = string(chamber)
	rec.Date = day
	return rec, nil
}

