// Package metrics keeps process-wide counters and histograms for cipher runs
// and renders them in the Prometheus text exposition format.
package metrics

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/RowanDark/esdes/internal/observability/tracing"
)

type collector interface {
	write(sb *strings.Builder)
	reset()
}

type counterVec struct {
	name   string
	help   string
	labels []string

	mu     sync.RWMutex
	values map[string]float64
}

type histogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64

	mu     sync.RWMutex
	values map[string]*histogramValue
}

type histogramValue struct {
	counts   []uint64
	sum      float64
	total    uint64
	exemplar *metricExemplar
}

type metricExemplar struct {
	traceID string
	value   float64
}

var (
	operations = newCounterVec("esdes_operations_total", "Number of pipeline operations by outcome.", []string{"operation", "status"})
	blocks     = newCounterVec("esdes_blocks_total", "Number of 8-bit blocks processed by the block cipher stage.", []string{"direction"})
	duration   = newHistogramVec("esdes_operation_duration_seconds", "Wall time of pipeline operations.", []string{"operation"})
	audits     = newCounterVec("esdes_audit_write_failures_total", "Number of audit events that could not be written.", []string{"event_type"})

	collectors = []collector{operations, blocks, duration, audits}
)

func newCounterVec(name, help string, labels []string) *counterVec {
	return &counterVec{name: name, help: help, labels: labels, values: make(map[string]float64)}
}

func newHistogramVec(name, help string, labels []string) *histogramVec {
	return &histogramVec{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		values:  make(map[string]*histogramValue),
	}
}

func (cv *counterVec) add(delta float64, values ...string) {
	if len(values) != len(cv.labels) {
		panic(fmt.Sprintf("expected %d labels, got %d", len(cv.labels), len(values)))
	}
	key := strings.Join(values, ",")
	cv.mu.Lock()
	cv.values[key] += delta
	cv.mu.Unlock()
}

func (cv *counterVec) value(values ...string) float64 {
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	return cv.values[strings.Join(values, ",")]
}

func (cv *counterVec) reset() {
	cv.mu.Lock()
	cv.values = make(map[string]float64)
	cv.mu.Unlock()
}

func (cv *counterVec) write(sb *strings.Builder) {
	writeHeader(sb, cv.name, cv.help, "counter")
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	for _, key := range sortedKeys(cv.values) {
		sb.WriteString(cv.name)
		writeLabels(sb, cv.labels, strings.Split(key, ","), "")
		fmt.Fprintf(sb, " %g\n", cv.values[key])
	}
}

func (hv *histogramVec) observe(ctx context.Context, sample float64, values ...string) {
	if len(values) != len(hv.labels) {
		panic(fmt.Sprintf("expected %d labels, got %d", len(hv.labels), len(values)))
	}
	key := strings.Join(values, ",")
	hv.mu.Lock()
	defer hv.mu.Unlock()
	entry, ok := hv.values[key]
	if !ok {
		entry = &histogramValue{counts: make([]uint64, len(hv.buckets)+1)}
		hv.values[key] = entry
	}
	entry.sum += sample
	entry.total++
	idx := sort.SearchFloat64s(hv.buckets, sample)
	entry.counts[idx]++
	if traceID := tracing.TraceIDFromContext(ctx); traceID != "" {
		entry.exemplar = &metricExemplar{traceID: traceID, value: sample}
	}
}

func (hv *histogramVec) reset() {
	hv.mu.Lock()
	hv.values = make(map[string]*histogramValue)
	hv.mu.Unlock()
}

func (hv *histogramVec) write(sb *strings.Builder) {
	writeHeader(sb, hv.name, hv.help, "histogram")
	hv.mu.RLock()
	defer hv.mu.RUnlock()
	for _, key := range sortedKeys(hv.values) {
		entry := hv.values[key]
		parts := strings.Split(key, ",")
		var cumulative uint64
		for i, upper := range hv.buckets {
			cumulative += entry.counts[i]
			sb.WriteString(hv.name + "_bucket")
			writeLabels(sb, hv.labels, parts, fmt.Sprintf("le=%q", fmt.Sprintf("%g", upper)))
			fmt.Fprintf(sb, " %d\n", cumulative)
		}
		cumulative += entry.counts[len(hv.buckets)]
		sb.WriteString(hv.name + "_bucket")
		writeLabels(sb, hv.labels, parts, `le="+Inf"`)
		fmt.Fprintf(sb, " %d\n", cumulative)

		sb.WriteString(hv.name + "_sum")
		writeLabels(sb, hv.labels, parts, "")
		fmt.Fprintf(sb, " %g", entry.sum)
		if entry.exemplar != nil {
			fmt.Fprintf(sb, " # {trace_id=\"%s\"} %g", escapeLabel(entry.exemplar.traceID), entry.exemplar.value)
		}
		sb.WriteString("\n")

		sb.WriteString(hv.name + "_count")
		writeLabels(sb, hv.labels, parts, "")
		fmt.Fprintf(sb, " %d\n", entry.total)
	}
}

func writeHeader(sb *strings.Builder, name, help, metricType string) {
	fmt.Fprintf(sb, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, metricType)
}

func writeLabels(sb *strings.Builder, labels, values []string, extra string) {
	if len(labels) == 0 && extra == "" {
		return
	}
	pairs := make([]string, 0, len(labels)+1)
	for i, label := range labels {
		pairs = append(pairs, label+"=\""+escapeLabel(values[i])+"\"")
	}
	if extra != "" {
		pairs = append(pairs, extra)
	}
	sb.WriteString("{" + strings.Join(pairs, ",") + "}")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\n", "\\n")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// Write renders every metric in the Prometheus text format.
func Write(w io.Writer) error {
	var sb strings.Builder
	for _, c := range collectors {
		c.write(&sb)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Reset clears all recorded values.
func Reset() {
	for _, c := range collectors {
		c.reset()
	}
}

// RecordOperation counts one pipeline operation and records its duration.
// status is "ok" or "error".
func RecordOperation(ctx context.Context, operation, status string, dur time.Duration) {
	operations.add(1, operation, status)
	duration.observe(ctx, dur.Seconds(), operation)
}

// RecordBlocks counts blocks pushed through the block cipher in one direction.
func RecordBlocks(direction string, n int) {
	if n <= 0 {
		return
	}
	blocks.add(float64(n), direction)
}

// OperationCount returns the current value of the operations counter.
func OperationCount(operation, status string) float64 {
	return operations.value(operation, status)
}

// BlockCount returns the number of blocks recorded for direction.
func BlockCount(direction string) float64 {
	return blocks.value(direction)
}

// RecordAuditFailure counts an audit event of eventType that was dropped.
func RecordAuditFailure(eventType string) {
	audits.add(1, eventType)
}

// AuditFailureCount returns the dropped audit events of eventType.
func AuditFailureCount(eventType string) float64 {
	return audits.value(eventType)
}
