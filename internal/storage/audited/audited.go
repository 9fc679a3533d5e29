// Package audited wraps a storage.Storage so that every successful Add is
// also appended to an audit sink. Every other method passes straight
// through.
package audited

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aanand-mishra/student-records/internal/audit"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
)

// ErrAudit is returned when the record was added but the audit sink
// could not take the row. The record stays in the registry.
var ErrAudit = errors.New("audit append failed")

// appendTimeout bounds one sink write. Add itself takes no context.
const appendTimeout = 5 * time.Second

// Registry is the decorator. The embedded Storage supplies every method
// except Add.
type Registry struct {
	storage.Storage
	sink audit.Sink
	log  *slog.Logger
}

// Compile-time check.
var _ storage.Storage = (*Registry)(nil)

// New wraps inner. A nil logger falls back to slog.Default().
func New(inner storage.Storage, sink audit.Sink, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{Storage: inner, sink: sink, log: log}
}

// Add inserts into the inner registry and, on success only, appends the
// audit row.
func (r *Registry) Add(student types.Student) error {
	if err := r.Storage.Add(student); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := r.sink.Append(ctx, audit.FromStudent(student)); err != nil {
		r.log.Error("failed to append audit row",
			slog.String("id", student.ID),
			slog.String("error", err.Error()))
		return fmt.Errorf("Add: id %s: %w: %w", student.ID, ErrAudit, err)
	}

	r.log.Debug("audit row appended", slog.String("id", student.ID))
	return nil
}
