// main runs the interactive console front end over stdin/stdout.
//
//	go run ./cmd/students-console --config=config/local.yaml
//
// It shares the configuration file and the audit sink with the web server
// but has its own registry: the two front ends never see each other's
// records.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aanand-mishra/student-records/internal/app"
	"github.com/aanand-mishra/student-records/internal/config"
	"github.com/aanand-mishra/student-records/internal/console"
)

func main() {
	cfg := config.MustLoad()

	// Logs go to stderr so they never interleave with the menu.
	log := app.SetupLogger(cfg.Env, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	sink, err := app.OpenAuditSink(ctx, cfg.Audit)
	cancel()
	if err != nil {
		log.Error("failed to open audit sink",
			slog.String("sink", cfg.Audit.Sink),
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer sink.Close()

	registry := app.NewRegistry(sink, log)

	if err := console.New(registry, os.Stdin, os.Stdout, log).Run(); err != nil {
		log.Error("console stopped", slog.String("error", err.Error()))
		sink.Close()
		os.Exit(1)
	}
}
