// Package csvlog appends audit entries to a CSV file.
//
// The file is opened in append mode for every entry and closed again, so
// an operator can rotate or delete it while the server runs; the next add
// simply starts a fresh file with a header row.
//
// encoding/csv is used directly: none of the libraries in use here offers
// a CSV writer, and the standard one handles quoting correctly.
package csvlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/aanand-mishra/student-records/internal/audit"
)

// Compile-time check.
var _ audit.Sink = (*Log)(nil)

// Log is a CSV audit sink.
type Log struct {
	path string
	mu   sync.Mutex
}

// New returns a sink writing to path. The file is created on first Append.
func New(path string) (*Log, error) {
	if path == "" {
		return nil, errors.New("csvlog.New: path is empty")
	}
	return &Log{path: path}, nil
}

// Append writes one row, preceded by the header if the file is new.
func (l *Log) Append(ctx context.Context, entry audit.Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("csvlog.Append: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(l.path)
	exists := !errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("csvlog.Append: open: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if !exists {
		if err := w.Write(audit.Header); err != nil {
			return fmt.Errorf("csvlog.Append: header: %w", err)
		}
	}
	if err := w.Write(entry.Row()); err != nil {
		return fmt.Errorf("csvlog.Append: row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvlog.Append: flush: %w", err)
	}
	return nil
}

// Close is a no-op; the file is never held open between appends.
func (l *Log) Close() error { return nil }
