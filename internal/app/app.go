// Package app wires the pieces together for both front ends: it opens
// the configured audit sink, builds the audited registry and assembles
// the HTTP router.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aanand-mishra/student-records/internal/audit"
	"github.com/aanand-mishra/student-records/internal/audit/csvlog"
	"github.com/aanand-mishra/student-records/internal/audit/pglog"
	"github.com/aanand-mishra/student-records/internal/audit/redislog"
	"github.com/aanand-mishra/student-records/internal/audit/sqlitelog"
	"github.com/aanand-mishra/student-records/internal/audit/xlsxlog"
	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records/internal/http/handlers/web"
	"github.com/aanand-mishra/student-records/internal/http/middleware"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/storage/audited"
	"github.com/aanand-mishra/student-records/internal/storage/memory"
)

// OpenAuditSink returns the sink selected by cfg.Sink.
func OpenAuditSink(ctx context.Context, cfg config.Audit) (audit.Sink, error) {
	var (
		sink audit.Sink
		err  error
	)

	// Each constructor returns a concrete pointer; assign through err so a
	// failed open never yields a non-nil interface holding a nil pointer.
	switch cfg.Sink {
	case config.SinkCSV:
		var l *csvlog.Log
		if l, err = csvlog.New(cfg.Path); err == nil {
			sink = l
		}
	case config.SinkXLSX:
		var l *xlsxlog.Log
		if l, err = xlsxlog.New(cfg.Path, cfg.Sheet); err == nil {
			sink = l
		}
	case config.SinkSQLite:
		var l *sqlitelog.SQLite
		if l, err = sqlitelog.New(cfg.Path); err == nil {
			sink = l
		}
	case config.SinkPostgres:
		var l *pglog.Log
		if l, err = pglog.New(ctx, cfg.DSN); err == nil {
			sink = l
		}
	case config.SinkRedis:
		var l *redislog.Log
		if l, err = redislog.New(ctx, cfg.RedisAddr, cfg.RedisKey); err == nil {
			sink = l
		}
	case config.SinkNone, "":
		sink = audit.Nop{}
	default:
		err = fmt.Errorf("unknown sink %q", cfg.Sink)
	}

	if err != nil {
		return nil, fmt.Errorf("app.OpenAuditSink: %w", err)
	}
	return sink, nil
}

// NewRegistry returns an empty in-memory registry whose adds are
// recorded in sink. State lives only as long as the process.
func NewRegistry(sink audit.Sink, log *slog.Logger) storage.Storage {
	return audited.New(memory.New(), sink, log)
}

// NewRouter registers the JSON API and the HTML UI on one mux.
//
// Route table (JSON API):
//
//	POST   /api/students                  → create a student
//	GET    /api/students                  → list / search students
//	GET    /api/students/{id}             → get one student
//	PATCH  /api/students/{id}             → partial details update
//	DELETE /api/students/{id}             → delete a student
//	POST   /api/students/{id}/courses     → assign a course
//	PUT    /api/students/{id}/marks       → set a mark
//	PUT    /api/students/{id}/attendance  → set attendance
//	GET    /healthz                       → liveness
//
// The HTML routes are listed in web.UI.Register.
func NewRouter(registry storage.Storage, log *slog.Logger) (http.Handler, error) {
	router := http.NewServeMux()

	router.HandleFunc("POST /api/students", student.New(registry))
	router.HandleFunc("GET /api/students", student.GetList(registry))
	router.HandleFunc("GET /api/students/{id}", student.GetByID(registry))
	router.HandleFunc("PATCH /api/students/{id}", student.Update(registry))
	router.HandleFunc("DELETE /api/students/{id}", student.Delete(registry))
	router.HandleFunc("POST /api/students/{id}/courses", student.AssignCourse(registry))
	router.HandleFunc("PUT /api/students/{id}/marks", student.UpdateMarks(registry))
	router.HandleFunc("PUT /api/students/{id}/attendance", student.UpdateAttendance(registry))
	router.HandleFunc("GET /healthz", student.Health())

	ui, err := web.New(registry)
	if err != nil {
		return nil, fmt.Errorf("app.NewRouter: %w", err)
	}
	ui.Register(router)

	return middleware.Logging(log, router), nil
}

// SetupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func SetupLogger(env string, w io.Writer) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case "staging":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default: // "dev" and anything unrecognised
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
