package main

import (
	"context"
	"fmt"
	"os"

	"github.com/RowanDark/esdes/internal/config"
	"github.com/RowanDark/esdes/internal/esdes"
	"github.com/RowanDark/esdes/internal/logging"
	"github.com/RowanDark/esdes/internal/observability/metrics"
	"github.com/RowanDark/esdes/internal/observability/tracing"
)

// session holds the process wide sinks a command writes to.
type session struct {
	audit    *logging.AuditLogger
	shutdown func(context.Context) error
}

func openSession(ctx context.Context, cfg config.Config, auditPath string, showKeys bool) (*session, error) {
	s := &session{shutdown: func(context.Context) error { return nil }}

	if cfg.Tracing.File != "" {
		shutdown, err := tracing.Setup(ctx, tracing.Config{
			ServiceName: cfg.Tracing.ServiceName,
			SampleRatio: cfg.Tracing.SampleRatio,
			FilePath:    cfg.Tracing.File,
		})
		if err != nil {
			return nil, fmt.Errorf("setup tracing: %w", err)
		}
		s.shutdown = shutdown
	}

	if auditPath != "" {
		opts := []logging.Option{logging.WithoutStdout(), logging.WithFile(auditPath)}
		if showKeys {
			opts = append(opts, logging.WithKeyMaterial())
		}
		logger, err := logging.NewAuditLogger("esdesctl", opts...)
		if err != nil {
			_ = s.shutdown(ctx)
			return nil, fmt.Errorf("open audit log: %w", err)
		}
		s.audit = logger
	}
	return s, nil
}

func (s *session) close(ctx context.Context) {
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "close audit log: %v\n", err)
		}
	}
	if err := s.shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "flush traces: %v\n", err)
	}
}

// pipeline wires the console trace and the audit log into a Pipeline. The
// audit log needs at least normal events even when no trace is printed.
func (s *session) pipeline(level esdes.Level, workers int, showKeys bool) *esdes.Pipeline {
	var observers []esdes.Observer
	if level > esdes.LevelNone {
		observers = append(observers, esdes.ConsoleObserver(os.Stderr, showKeys))
	}
	if s.audit != nil {
		observers = append(observers, esdes.LoggingObserver(s.audit))
		if level == esdes.LevelNone {
			level = esdes.LevelNormal
		}
	}

	opts := esdes.Options{Level: level, Workers: workers}
	if len(observers) > 0 {
		opts.Observer = esdes.Observers(observers...)
	}
	return esdes.New(opts)
}

func (s *session) emit(event logging.AuditEvent) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(event); err != nil {
		fmt.Fprintf(os.Stderr, "write audit log: %v\n", err)
	}
}

func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create metrics file: %w", err)
	}
	if err := metrics.Write(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("write metrics: %w", err)
	}
	return f.Close()
}
