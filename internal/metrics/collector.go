package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// windowSpan bounds the rolling window used for the instantaneous rate.
const windowSpan = 30 * time.Second

type sample struct {
	at    time.Time
	bytes int
}

// Collector records per-chunk transfer metrics in a thread-safe manner.
// Cumulative bytes only ever grow.
type Collector struct {
	mu           sync.Mutex
	hist         *hdrhistogram.Histogram
	bytesTotal   int64
	chunks       int64
	attempts     int64
	failures     int64
	errorsByType map[string]int64
	window       []sample
	start        time.Time
}

// Stats represents aggregated transfer metrics.
type Stats struct {
	BytesTotal int64         `json:"bytes_total"`
	Chunks     int64         `json:"chunks"`
	Attempts   int64         `json:"attempts"`
	Failures   int64         `json:"failures"`
	Duration   time.Duration `json:"-"`

	// Average over the whole run and over the trailing window.
	AvgBytesPerSec    float64 `json:"avg_bytes_per_sec"`
	WindowBytesPerSec float64 `json:"window_bytes_per_sec"`

	// Chunk read latency.
	MinRead  time.Duration `json:"-"`
	MaxRead  time.Duration `json:"-"`
	MeanRead time.Duration `json:"-"`
	P50Read  time.Duration `json:"-"`
	P90Read  time.Duration `json:"-"`
	P99Read  time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	DurationMs float64        `json:"duration_ms"`
	MinReadMs  float64        `json:"min_read_ms"`
	MaxReadMs  float64        `json:"max_read_ms"`
	MeanReadMs float64        `json:"mean_read_ms"`
	P50ReadMs  float64        `json:"p50_read_ms"`
	P90ReadMs  float64        `json:"p90_read_ms"`
	P99ReadMs  float64        `json:"p99_read_ms"`
	Errors     map[string]int `json:"errors,omitempty"`
}

func NewCollector() *Collector {
	// Track chunk reads from 1µs up to 60s with 3 significant figures.
	h := hdrhistogram.New(1, 60_000_000, 3)
	return &Collector{
		hist:         h,
		errorsByType: make(map[string]int64),
		start:        time.Now(),
	}
}

// Start marks the actual beginning of the run so rate calculations exclude
// setup time spent before the loop started.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.start = time.Now()
}

// RecordAttempt counts one connection attempt to a source.
func (c *Collector) RecordAttempt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts++
}

// RecordChunk records a successful chunk read of n bytes and its latency.
func (c *Collector) RecordChunk(n int, latency time.Duration) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bytesTotal += int64(n)
	c.chunks++

	if latency > 0 {
		us := latency.Microseconds()
		if us < c.hist.LowestTrackableValue() {
			us = c.hist.LowestTrackableValue()
		}
		if us > c.hist.HighestTrackableValue() {
			us = c.hist.HighestTrackableValue()
		}
		_ = c.hist.RecordValue(us)
	}

	now := time.Now()
	c.window = append(c.window, sample{at: now, bytes: n})
	c.pruneWindow(now)
}

// RecordFailure counts a failed source attempt by error type.
func (c *Collector) RecordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failures++
	errorType := fmt.Sprintf("%T", err)
	if len(errorType) > 30 {
		errorType = errorType[len(errorType)-30:]
	}
	c.errorsByType[errorType]++
}

// BytesTotal returns the cumulative byte count.
func (c *Collector) BytesTotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytesTotal
}

// pruneWindow drops samples older than the window span. Callers hold c.mu.
func (c *Collector) pruneWindow(now time.Time) {
	cutoff := now.Add(-windowSpan)
	keep := 0
	for keep < len(c.window) && c.window[keep].at.Before(cutoff) {
		keep++
	}
	if keep > 0 {
		c.window = append(c.window[:0], c.window[keep:]...)
	}
}

// Stats computes and returns current aggregated statistics.
func (c *Collector) Stats(elapsed time.Duration) Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		BytesTotal: c.bytesTotal,
		Chunks:     c.chunks,
		Attempts:   c.attempts,
		Failures:   c.failures,
		Duration:   elapsed,
	}

	if c.hist.TotalCount() > 0 {
		stats.MinRead = time.Duration(c.hist.Min()) * time.Microsecond
		stats.MaxRead = time.Duration(c.hist.Max()) * time.Microsecond
		stats.MeanRead = time.Duration(c.hist.Mean()) * time.Microsecond
		stats.P50Read = time.Duration(c.hist.ValueAtQuantile(50)) * time.Microsecond
		stats.P90Read = time.Duration(c.hist.ValueAtQuantile(90)) * time.Microsecond
		stats.P99Read = time.Duration(c.hist.ValueAtQuantile(99)) * time.Microsecond
	}

	if elapsed > 0 {
		stats.AvgBytesPerSec = float64(c.bytesTotal) / elapsed.Seconds()
	}

	now := time.Now()
	c.pruneWindow(now)
	if len(c.window) > 0 {
		span := now.Sub(c.window[0].at)
		if span < time.Millisecond {
			span = time.Millisecond
		}
		var winBytes int64
		for _, s := range c.window {
			winBytes += int64(s.bytes)
		}
		stats.WindowBytesPerSec = float64(winBytes) / span.Seconds()
	}

	stats.DurationMs = float64(elapsed) / float64(time.Millisecond)
	stats.MinReadMs = float64(stats.MinRead) / float64(time.Millisecond)
	stats.MaxReadMs = float64(stats.MaxRead) / float64(time.Millisecond)
	stats.MeanReadMs = float64(stats.MeanRead) / float64(time.Millisecond)
	stats.P50ReadMs = float64(stats.P50Read) / float64(time.Millisecond)
	stats.P90ReadMs = float64(stats.P90Read) / float64(time.Millisecond)
	stats.P99ReadMs = float64(stats.P99Read) / float64(time.Millisecond)

	if len(c.errorsByType) > 0 {
		stats.Errors = make(map[string]int, len(c.errorsByType))
		for k, v := range c.errorsByType {
			stats.Errors[k] = int(v)
		}
	}

	return stats
}

// GetErrorBreakdown returns a map of error types to their counts.
func (c *Collector) GetErrorBreakdown() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[string]int)
	for k, v := range c.errorsByType {
		result[k] = int(v)
	}
	return result
}
