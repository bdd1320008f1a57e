package runner

import (
	"context"
	"io"
	"time"

	"netburn/internal/metrics"
)

// Fetcher opens one streaming attempt against a source URL. The returned
// reader yields the response body; read errors end the attempt.
type Fetcher interface {
	Open(ctx context.Context, url string) (io.ReadCloser, error)
}

// FailureLogger logs failed source attempts.
type FailureLogger interface {
	LogFailure(url string, err error)
}

// Options configure the Runner.
type Options struct {
	Sources        []string           // ordered download URLs (required, non-empty)
	BytesPerSecond float64            // target transfer rate (required, > 0)
	ChunkSize      int                // bytes per read
	Duration       time.Duration      // overall run length (0 means no cap)
	StopFile       string             // sentinel path checked every iteration ("" disables)
	PaceModel      PaceModel          // pacing strategy
	Fetcher        Fetcher            // source opener (required)
	Collector      *metrics.Collector // optional metrics sink
	Logger         FailureLogger      // optional failure logger
	Backoff        Backoff            // full-rotation backoff policy

	// PacerFactory and SleepFunc are optional injection points for tests.
	PacerFactory func(model PaceModel, bytesPerSec float64, burst int) Pacer
	SleepFunc    func(ctx context.Context, d time.Duration) error
}

func (o *Options) normalize() {
	if o.ChunkSize <= 0 {
		o.ChunkSize = 64 * 1024
	}
	if o.PaceModel == "" {
		o.PaceModel = PaceModelDeficit
	}
	if o.PacerFactory == nil {
		o.PacerFactory = newPacer
	}
	if o.SleepFunc == nil {
		o.SleepFunc = sleepContext
	}
	o.Backoff.normalize()
}

// sleepContext sleeps for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
