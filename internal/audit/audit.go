// Package audit defines the audit sink: an append-only log that receives
// one row per successfully added student.
//
// The log is write-only from the application's point of view. Nothing
// ever reads it back, so restarting the process still starts with an
// empty registry.
//
// Concrete sinks live in sub-packages (csvlog, xlsxlog, sqlitelog, pglog,
// redislog). They all write the same four columns, and a header row (or
// its equivalent) only when the log does not exist yet.
package audit

import (
	"context"

	"github.com/aanand-mishra/student-records/internal/types"
)

// Header is the column row written once per new log.
var Header = []string{"Student ID", "Name", "Year", "Department"}

// Entry is one audit row.
type Entry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Year       string `json:"year"`
	Department string `json:"department"`
}

// FromStudent builds the row for a newly added record.
func FromStudent(s types.Student) Entry {
	return Entry{ID: s.ID, Name: s.Name, Year: s.Year, Department: s.Department}
}

// Row returns the entry in Header column order.
func (e Entry) Row() []string {
	return []string{e.ID, e.Name, e.Year, e.Department}
}

// Sink is an append-only destination for entries.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
	Close() error
}

// Nop discards every entry. Used when audit.sink is "none".
type Nop struct{}

func (Nop) Append(context.Context, Entry) error { return nil }
func (Nop) Close() error                        { return nil }
