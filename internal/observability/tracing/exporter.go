package tracing

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FileExporter writes finished spans to a file, one JSON document per line.
type FileExporter struct {
	mu     sync.Mutex
	fw     *os.File
	enc    *json.Encoder
	closed bool
}

var _ sdktrace.SpanExporter = (*FileExporter)(nil)

// NewFileExporter opens path for appending, creating parent directories as needed.
func NewFileExporter(path string) (*FileExporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &FileExporter{fw: f, enc: enc}, nil
}

// ExportSpans writes each valid span as a SpanSnapshot line.
func (f *FileExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("trace file exporter is shut down")
	}
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		snapshot := spanSnapshotFromReadOnly(span)
		if snapshot == nil {
			continue
		}
		if err := f.enc.Encode(snapshot); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown closes the underlying file. It is safe to call more than once.
func (f *FileExporter) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.fw.Close()
}
