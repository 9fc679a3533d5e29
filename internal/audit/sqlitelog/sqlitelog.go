// Package sqlitelog provides a SQLite-backed audit sink using Go's
// standard database/sql package.
//
// WHY SQLite?
// ───────────
// SQLite stores everything in a single file on disk with no server
// process, which suits an append-only audit trail. The table is only
// ever INSERTed into: the application never SELECTs from it, so the
// registry still starts empty on every restart.
//
// The blank import below registers the sqlite3 driver with database/sql.
package sqlitelog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/audit"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// Compile-time check.
var _ audit.Sink = (*SQLite)(nil)

// SQLite is the concrete audit sink. Db is a connection pool managed by
// database/sql and is safe for concurrent use.
type SQLite struct {
	Db *sql.DB
}

// New opens the SQLite database at path and creates the audit table if it
// does not already exist. Creating the table is the SQL equivalent of
// writing the header row once.
func New(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("sqlitelog.New: path is empty")
	}

	// sql.Open does NOT open a real connection yet: it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sqlitelog.New: open db: %w", err)
	}

	// Schema:
	//   seq        : insertion sequence, auto-incremented by SQLite
	//   student_id : the record's opaque id (not unique: an id can be
	//                 added again after a delete)
	//   recorded_at: when the row was appended
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_students (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			student_id  TEXT NOT NULL,
			name        TEXT NOT NULL,
			year        TEXT NOT NULL,
			department  TEXT NOT NULL,
			recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlitelog.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Append inserts one row. Placeholders (?) keep the values out of the
// SQL text, so names like "O'Brien" need no escaping.
func (s *SQLite) Append(ctx context.Context, entry audit.Entry) error {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO audit_students (student_id, name, year, department) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("sqlitelog.Append: prepare: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.ExecContext(ctx, entry.ID, entry.Name, entry.Year, entry.Department); err != nil {
		return fmt.Errorf("sqlitelog.Append: exec: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *SQLite) Close() error {
	return s.Db.Close()
}
