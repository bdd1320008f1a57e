package output

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"netburn/internal/metrics"
)

// StatusReporter prints a periodic status line for the run.
type StatusReporter struct {
	collector *metrics.Collector
	ticker    *time.Ticker
	done      chan struct{}
	finished  chan struct{}
	writer    io.Writer
	active    int32
	start     time.Time
	duration  time.Duration
}

// NewStatusReporter creates a reporter that writes one line per interval.
// duration is the configured run length, used for the remaining-time field.
func NewStatusReporter(collector *metrics.Collector, interval, duration time.Duration, writer io.Writer) *StatusReporter {
	if writer == nil {
		writer = io.Discard
	}
	return &StatusReporter{
		collector: collector,
		ticker:    time.NewTicker(interval),
		done:      make(chan struct{}),
		finished:  make(chan struct{}),
		writer:    writer,
		start:     time.Now(),
		duration:  duration,
	}
}

// Start begins printing status lines in a background goroutine.
func (s *StatusReporter) Start() {
	if !atomic.CompareAndSwapInt32(&s.active, 0, 1) {
		return // already running
	}
	s.start = time.Now()
	go s.run()
}

// Stop halts status updates.
func (s *StatusReporter) Stop() {
	if atomic.CompareAndSwapInt32(&s.active, 1, 0) {
		close(s.done)
		s.ticker.Stop()
		<-s.finished
	}
}

func (s *StatusReporter) run() {
	defer close(s.finished)
	for {
		select {
		case <-s.ticker.C:
			elapsed := time.Since(s.start)
			stats := s.collector.Stats(elapsed)
			remain := s.duration - elapsed
			if remain < 0 {
				remain = 0
			}
			fmt.Fprintf(s.writer, "[stat] elapsed=%.1fs remain=%.1fs used=%s speed~%s/s\n",
				elapsed.Seconds(),
				remain.Seconds(),
				humanize.Bytes(uint64(stats.BytesTotal)),
				humanize.Bytes(uint64(stats.WindowBytesPerSec)),
			)
		case <-s.done:
			return
		}
	}
}
