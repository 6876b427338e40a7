package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	assemblyStartedTotal   atomic.Uint64
	assemblySatisfiedTotal atomic.Uint64
	assemblyShortfallTotal atomic.Uint64
	sourceFetchFailedTotal atomic.Uint64
	imageSkippedTotal      atomic.Uint64

	renderDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncAssemblyStarted increments the started counter.
func IncAssemblyStarted() {
	assemblyStartedTotal.Add(1)
}

// IncAssemblySatisfied increments the satisfied counter.
func IncAssemblySatisfied() {
	assemblySatisfiedTotal.Add(1)
}

// IncAssemblyShortfall increments the shortfall counter.
func IncAssemblyShortfall() {
	assemblyShortfallTotal.Add(1)
}

// IncSourceFetchFailed increments the failed question-source fetch counter.
func IncSourceFetchFailed() {
	sourceFetchFailedTotal.Add(1)
}

// IncImageSkipped increments the counter of images skipped during rendering.
func IncImageSkipped() {
	imageSkippedTotal.Add(1)
}

// ObserveRenderDurationMs records a document render duration in milliseconds.
func ObserveRenderDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	renderDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "assembly_started_total", "Total exam assemblies started", assemblyStartedTotal.Load())
	writeCounter(&buf, "assembly_satisfied_total", "Total assemblies that met the requested quantity", assemblySatisfiedTotal.Load())
	writeCounter(&buf, "assembly_shortfall_total", "Total assemblies that ended with fewer questions than requested", assemblyShortfallTotal.Load())
	writeCounter(&buf, "source_fetch_failed_total", "Total failed fetches against the question source", sourceFetchFailedTotal.Load())
	writeCounter(&buf, "render_image_skipped_total", "Total remote images skipped during rendering", imageSkippedTotal.Load())
	writeHistogram(&buf, "render_duration_ms", "Document render duration in milliseconds", renderDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
