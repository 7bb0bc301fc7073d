package writer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/jchaskell/cr/internal/record"
)

// Header is the column layout of CSV and XLSX output.
var Header = []string{"chamber", "date", "title", "speaker", "speech"}

type csvFile struct {
	f *os.File
	w *csv.Writer
}

func openCSV(path string, appendMode bool) (*csvFile, error) {
	f, hasData, err := openOutput(path, appendMode)
	if err != nil {
		return nil, err
	}
	cf := &csvFile{f: f, w: csv.NewWriter(f)}
	if !hasData {
		if err := cf.w.Write(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}
	return cf, nil
}

func (cf *csvFile) write(rows []record.Row) error {
	for _, r := range rows {
		if err := cf.w.Write(rowValues(r)); err != nil {
			return err
		}
	}
	cf.w.Flush()
	return cf.w.Error()
}

func (cf *csvFile) close() error {
	cf.w.Flush()
	return errors.Join(cf.w.Error(), cf.f.Close())
}

// CSVWriter writes one row per turn. In append mode the header is only
// written to files that are still empty.
type CSVWriter struct {
	main  *csvFile
	other *csvFile
}

func NewCSV(path string, opts Options) (*CSVWriter, error) {
	main, err := openCSV(path, opts.Append)
	if err != nil {
		return nil, err
	}
	w := &CSVWriter{main: main}
	if opts.OtherPath != "" {
		other, err := openCSV(opts.OtherPath, opts.Append)
		if err != nil {
			main.close()
			return nil, err
		}
		w.other = other
	}
	return w, nil
}

func (w *CSVWriter) Write(rec *record.Record) error {
	if w.other == nil {
		if err := w.main.write(rec.Rows()); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	}

	speeches, other := rec.Partition()
	if err := w.main.write(speeches); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err := w.other.write(other); err != nil {
		return fmt.Errorf("write other csv: %w", err)
	}
	return nil
}

func (w *CSVWriter) Close() error {
	err := w.main.close()
	if w.other != nil {
		err = errors.Join(err, w.other.close())
	}
	return err
}

func rowValues(r record.Row) []string {
	date := ""
	if !r.Date.IsZero() {
		date = r.Date.Format("2006-01-02")
	}
	return []string{r.Chamber, date, r.Title, r.Speaker, r.Text}
}
