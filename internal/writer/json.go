package writer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jchaskell/cr/internal/record"
)

// JSONWriter writes one JSON document per record, newline-delimited.
type JSONWriter struct {
	f   *os.File
	enc *json.Encoder
}

func NewJSON(path string, opts Options) (*JSONWriter, error) {
	f, _, err := openOutput(path, opts.Append)
	if err != nil {
		return nil, err
	}
	return &JSONWriter{f: f, enc: json.NewEncoder(f)}, nil
}

func (w *JSONWriter) Write(rec *record.Record) error {
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func (w *JSONWriter) Close() error {
	return w.f.Close()
}
