// Package xlsxlog appends audit entries to a sheet of an Excel workbook
// using excelize.
//
// The workbook is opened, extended and saved on every Append. A header
// row is written when the workbook or the sheet is new.
package xlsxlog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/aanand-mishra/student-records/internal/audit"
	"github.com/xuri/excelize/v2"
)

// DefaultSheet is used when no sheet name is configured.
const DefaultSheet = "Students"

// Compile-time check.
var _ audit.Sink = (*Log)(nil)

// Log is an Excel audit sink.
type Log struct {
	path  string
	sheet string
	mu    sync.Mutex
}

// New returns a sink writing to sheet in the workbook at path.
func New(path, sheet string) (*Log, error) {
	if path == "" {
		return nil, errors.New("xlsxlog.New: path is empty")
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &Log{path: path, sheet: sheet}, nil
}

// Append writes one row below the last used row of the sheet.
func (l *Log) Append(ctx context.Context, entry audit.Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("xlsxlog.Append: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, isNew, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(l.sheet)
	if err != nil {
		return fmt.Errorf("xlsxlog.Append: get rows: %w", err)
	}

	next := len(rows) + 1
	if len(rows) == 0 {
		if err := writeRow(f, l.sheet, next, audit.Header); err != nil {
			return err
		}
		next++
	}
	if err := writeRow(f, l.sheet, next, entry.Row()); err != nil {
		return err
	}

	if isNew {
		err = f.SaveAs(l.path)
	} else {
		err = f.Save()
	}
	if err != nil {
		return fmt.Errorf("xlsxlog.Append: save: %w", err)
	}
	return nil
}

// Close is a no-op; the workbook is never held open between appends.
func (l *Log) Close() error { return nil }

// open loads the workbook, creating it (and the sheet) when missing.
func (l *Log) open() (*excelize.File, bool, error) {
	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), l.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("xlsxlog.Append: name sheet: %w", err)
		}
		return f, true, nil
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, false, fmt.Errorf("xlsxlog.Append: open: %w", err)
	}
	idx, err := f.GetSheetIndex(l.sheet)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("xlsxlog.Append: sheet index: %w", err)
	}
	if idx == -1 {
		if _, err := f.NewSheet(l.sheet); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("xlsxlog.Append: new sheet: %w", err)
		}
	}
	return f, false, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsxlog.Append: cell name: %w", err)
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("xlsxlog.Append: set row %d: %w", row, err)
	}
	return nil
}
