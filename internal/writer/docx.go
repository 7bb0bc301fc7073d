package writer

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/jchaskell/cr/internal/record"
)

// Paragraph styles for record and section headings.
const (
	recordStyle  = "Heading1"
	sectionStyle = "Heading2"
)

// DOCXWriter builds a Word document saved on Close: a heading per record, a
// sub-heading per section and a paragraph per turn, led by the speaker in
// bold. With Options.Append an existing document is extended.
type DOCXWriter struct {
	path string
	doc  *docx.Docx
}

func NewDOCX(path string, opts Options) (*DOCXWriter, error) {
	w := &DOCXWriter{path: path}
	if opts.Append {
		doc, err := openDOCX(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		w.doc = doc
	}
	if w.doc == nil {
		w.doc = docx.New().WithDefaultTheme()
	}
	return w, nil
}

func openDOCX(path string) (*docx.Docx, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func (w *DOCXWriter) Write(rec *record.Record) error {
	w.doc.AddParagraph().Style(recordStyle).AddText(recordHeading(rec))
	for _, s := range rec.Sections {
		w.doc.AddParagraph().Style(sectionStyle).AddText(sectionHeading(s))
		for _, t := range s.Turns {
			para := w.doc.AddParagraph()
			if t.Speaker != "" {
				para.AddText(t.Speaker + ". ").Bold()
			}
			para.AddText(strings.TrimSpace(t.Text))
		}
	}
	return nil
}

func (w *DOCXWriter) Close() error {
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", w.path, err)
	}
	if _, err := w.doc.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", w.path, err)
	}
	return f.Close()
}
