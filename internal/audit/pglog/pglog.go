// Package pglog is the Postgres audit sink. It applies its one-table
// schema on startup and then only ever inserts.
package pglog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aanand-mishra/student-records/internal/audit"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_students (
	seq         BIGSERIAL PRIMARY KEY,
	student_id  TEXT NOT NULL,
	name        TEXT NOT NULL,
	year        TEXT NOT NULL,
	department  TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertEntry = `
INSERT INTO audit_students (student_id, name, year, department)
VALUES ($1, $2, $3, $4)`

// Compile-time check.
var _ audit.Sink = (*Log)(nil)

// Log writes entries through a pgx connection pool.
type Log struct {
	pool *pgxpool.Pool
}

// New connects to dsn, pings the server and creates the table.
func New(ctx context.Context, dsn string) (*Log, error) {
	if dsn == "" {
		return nil, errors.New("pglog.New: dsn is empty")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pglog.New: parse dsn: %w", err)
	}
	cfg.MaxConns = 4
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pglog.New: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pglog.New: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pglog.New: create table: %w", err)
	}
	return &Log{pool: pool}, nil
}

// Append inserts one row.
func (l *Log) Append(ctx context.Context, entry audit.Entry) error {
	if _, err := l.pool.Exec(ctx, insertEntry, entry.ID, entry.Name, entry.Year, entry.Department); err != nil {
		return fmt.Errorf("pglog.Append: %w", err)
	}
	return nil
}

// Close releases the pool.
func (l *Log) Close() error {
	l.pool.Close()
	return nil
}
