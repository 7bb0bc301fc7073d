package writer

import (
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/jchaskell/cr/internal/record"
)

const (
	speechSheet = "Speeches"
	otherSheet  = "Other"
)

// XLSXWriter collects rows into a workbook saved on Close. With
// Options.OtherPath set, turns without a speaker go to a second sheet.
type XLSXWriter struct {
	path       string
	f          *excelize.File
	splitOther bool
	next       map[string]int // next free row per sheet
}

func NewXLSX(path string, opts Options) (*XLSXWriter, error) {
	w := &XLSXWriter{
		path:       path,
		splitOther: opts.OtherPath != "",
		next:       make(map[string]int),
	}

	if opts.Append {
		if f, err := excelize.OpenFile(path); err == nil {
			w.f = f
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
	}
	if w.f == nil {
		w.f = excelize.NewFile()
		if err := w.f.SetSheetName("Sheet1", speechSheet); err != nil {
			return nil, fmt.Errorf("create workbook: %w", err)
		}
	}
	if err := w.prepare(speechSheet); err != nil {
		return nil, err
	}
	if w.splitOther {
		if err := w.prepare(otherSheet); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// prepare makes sure sheet exists with a header and finds its next free row.
func (w *XLSXWriter) prepare(sheet string) error {
	idx, err := w.f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := w.f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
	}

	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		if err := w.setRow(sheet, 1, toAny(Header)); err != nil {
			return err
		}
		w.next[sheet] = 2
		return nil
	}
	w.next[sheet] = len(rows) + 1
	return nil
}

func (w *XLSXWriter) Write(rec *record.Record) error {
	if !w.splitOther {
		return w.appendRows(speechSheet, rec.Rows())
	}
	speeches, other := rec.Partition()
	if err := w.appendRows(speechSheet, speeches); err != nil {
		return err
	}
	return w.appendRows(otherSheet, other)
}

func (w *XLSXWriter) appendRows(sheet string, rows []record.Row) error {
	for _, r := range rows {
		r.Text = fitCell(r.Text)
		if err := w.setRow(sheet, w.next[sheet], toAny(rowValues(r))); err != nil {
			return err
		}
		w.next[sheet]++
	}
	return nil
}

func (w *XLSXWriter) setRow(sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func (w *XLSXWriter) Close() error {
	err := w.f.SaveAs(w.path)
	if err != nil {
		err = fmt.Errorf("save %s: %w", w.path, err)
	}
	return errors.Join(err, w.f.Close())
}

// fitCell truncates s to the characters one cell can hold.
func fitCell(s string) string {
	if utf8.RuneCountInString(s) <= excelize.TotalCellChars {
		return s
	}
	return string([]rune(s)[:excelize.TotalCellChars])
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
