package writer

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/jchaskell/cr/internal/record"
)

const htmlHead = `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>Congressional Record</title></head><body>
`

const htmlTail = "</body></html>\n"

// HTMLWriter renders records as a readable HTML document, one article per
// record.
type HTMLWriter struct {
	f       *os.File
	started bool
}

func NewHTML(path string, opts Options) (*HTMLWriter, error) {
	// Appending to a closed document would produce invalid HTML.
	f, _, err := openOutput(path, false)
	if err != nil {
		return nil, err
	}
	return &HTMLWriter{f: f}, nil
}

func (w *HTMLWriter) Write(rec *record.Record) error {
	if !w.started {
		if _, err := w.f.WriteString(htmlHead); err != nil {
			return fmt.Errorf("write html: %w", err)
		}
		w.started = true
	}
	body, err := RenderHTML(rec)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.f, "<article>\n%s</article>\n", body); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

func (w *HTMLWriter) Close() error {
	if w.started {
		if _, err := w.f.WriteString(htmlTail); err != nil {
			w.f.Close()
			return fmt.Errorf("write html: %w", err)
		}
	}
	return w.f.Close()
}

// RenderHTML renders rec through Markdown: a heading per record and section,
// and a paragraph per turn led by the speaker in bold.
func RenderHTML(rec *record.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(rec)), &buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// Markdown renders rec as Markdown.
func Markdown(rec *record.Record) string {
	var sb strings.Builder

	sb.WriteString("# " + escapeMarkdown(recordHeading(rec)) + "\n\n")

	for _, s := range rec.Sections {
		sb.WriteString("## " + escapeMarkdown(sectionHeading(s)) + "\n\n")
		for _, t := range s.Turns {
			text := escapeMarkdown(strings.TrimSpace(t.Text))
			if t.Speaker != "" {
				sb.WriteString("**" + escapeMarkdown(t.Speaker) + ".** ")
			}
			sb.WriteString(text + "\n\n")
		}
	}
	return sb.String()
}

func recordHeading(rec *record.Record) string {
	heading := "Congressional Record"
	switch rec.Chamber {
	case "s":
		heading += ", Senate"
	case "h":
		heading += ", House"
	}
	if d := rec.DateString(); d != "" {
		heading += ", " + d
	}
	return heading
}

func sectionHeading(s record.Section) string {
	if s.Title == "" {
		return "Untitled"
	}
	return s.Title
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`<`, `\<`,
	`>`, `\>`,
	`#`, `\#`,
	`|`, `\|`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
