package writer

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jchaskell/cr/internal/record"
)

// ErrUnknownFormat is returned by ForFormat for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Writer serializes parsed records to a sink.
type Writer interface {
	Write(rec *record.Record) error
	Close() error
}

// Options controls how a writer opens its output.
type Options struct {
	// Append adds to an existing file instead of truncating it.
	Append bool
	// OtherPath, when set, receives turns without a speaker (votes, inserted
	// material, untitled continuation) instead of the main output. Writers
	// with a single file ignore it; the XLSX writer uses a second sheet.
	OtherPath string
}

// Formats lists the names ForFormat accepts.
var Formats = []string{"csv", "json", "xlsx", "html", "docx"}

// ForFormat returns the writer for format, writing to path.
func ForFormat(format, path string, opts Options) (Writer, error) {
	switch strings.ToLower(format) {
	case "csv":
		return NewCSV(path, opts)
	case "json", "ndjson":
		return NewJSON(path, opts)
	case "xlsx":
		return NewXLSX(path, opts)
	case "html":
		return NewHTML(path, opts)
	case "docx":
		return NewDOCX(path, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// openOutput opens path for writing and reports whether it already held data.
func openOutput(path string, appendMode bool) (*os.File, bool, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if appendMode {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}
	return f, info.Size() > 0, nil
}
