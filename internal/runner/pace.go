package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// PaceModel selects the pacing strategy.
type PaceModel string

const (
	// PaceModelDeficit tracks the target as a long-run average: after each
	// chunk it sleeps off the difference between the ideal elapsed time
	// implied by the cumulative byte count and the actual elapsed time.
	PaceModelDeficit PaceModel = "deficit"
	// PaceModelBucket is a token bucket refilled at the target rate.
	PaceModelBucket PaceModel = "bucket"
)

// Pacer throttles the download loop. Wait blocks until n more bytes fit the
// target rate, or the context is done.
type Pacer interface {
	Wait(ctx context.Context, n int) error
}

func newPacer(model PaceModel, bytesPerSec float64, burst int) Pacer {
	if bytesPerSec <= 0 {
		bytesPerSec = 1
	}
	switch model {
	case PaceModelBucket:
		// Allow roughly 1.5 seconds of burst, never less than one chunk.
		capacity := int(bytesPerSec * 1.5)
		if capacity < burst {
			capacity = burst
		}
		return &bucketPace{limiter: rate.NewLimiter(rate.Limit(bytesPerSec), capacity)}
	default:
		return &deficitPace{
			bytesPerSec: bytesPerSec,
			now:         time.Now,
			sleep:       sleepContext,
		}
	}
}

type bucketPace struct {
	limiter *rate.Limiter
}

func (b *bucketPace) Wait(ctx context.Context, n int) error {
	// WaitN rejects n > burst, so oversized chunks are consumed in slices.
	for n > 0 {
		take := n
		if burst := b.limiter.Burst(); take > burst {
			take = burst
		}
		if err := b.limiter.WaitN(ctx, take); err != nil {
			return err
		}
		n -= take
	}
	return nil
}

// deficitPace implements average-rate pacing: cumulative bytes divided by the
// target rate gives the ideal elapsed time; any surplus over the wall clock
// is slept off. The sleep is clamped at zero, so a loop running behind target
// proceeds at natural speed with no catch-up burst.
type deficitPace struct {
	bytesPerSec float64
	total       int64
	start       time.Time
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func (d *deficitPace) Wait(ctx context.Context, n int) error {
	if d.start.IsZero() {
		d.start = d.now()
	}
	d.total += int64(n)

	ideal := time.Duration(float64(d.total) / d.bytesPerSec * float64(time.Second))
	pause := ideal - d.now().Sub(d.start)
	if pause <= 0 {
		return ctx.Err()
	}
	return d.sleep(ctx, pause)
}
