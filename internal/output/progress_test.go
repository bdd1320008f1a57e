package output

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"netburn/internal/metrics"
)

// syncBuffer guards the buffer against the reporter goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestStatusReporterEmitsStatLines(t *testing.T) {
	collector := metrics.NewCollector()
	collector.RecordChunk(64*1024, time.Millisecond)

	buf := &syncBuffer{}
	reporter := NewStatusReporter(collector, 20*time.Millisecond, time.Hour, buf)
	reporter.Start()
	time.Sleep(70 * time.Millisecond)
	reporter.Stop()

	out := buf.String()
	if !strings.Contains(out, "[stat] elapsed=") {
		t.Fatalf("no stat line emitted:\n%s", out)
	}
	if !strings.Contains(out, "remain=") || !strings.Contains(out, "speed~") {
		t.Fatalf("stat line missing fields:\n%s", out)
	}
}

func TestStatusReporterStopIsIdempotent(t *testing.T) {
	reporter := NewStatusReporter(metrics.NewCollector(), time.Millisecond, time.Hour, nil)
	reporter.Start()
	reporter.Stop()
	reporter.Stop() // second stop must not panic or block
}

func TestStatusReporterDoubleStart(t *testing.T) {
	reporter := NewStatusReporter(metrics.NewCollector(), time.Millisecond, time.Hour, nil)
	reporter.Start()
	reporter.Start() // no second goroutine
	reporter.Stop()
}
