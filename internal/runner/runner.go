package runner

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"netburn/internal/source"
)

// StopReason records why a run ended.
type StopReason string

const (
	StopReasonDuration StopReason = "duration elapsed"
	StopReasonSignal   StopReason = "interrupted"
	StopReasonStopFile StopReason = "stop file detected"
)

// Result captures the run summary.
type Result struct {
	Bytes    int64
	Duration time.Duration
	Attempts int64
	Failures int64
	Reason   StopReason
}

// Runner drives the paced download loop over a rotating source list.
type Runner struct {
	opt   Options
	rotor *source.Rotor
	pacer Pacer
}

// New validates the source list and builds a Runner. An empty list is a
// configuration error surfaced before any network activity.
func New(opt Options) (*Runner, error) {
	opt.normalize()
	rotor, err := source.NewRotor(opt.Sources)
	if err != nil {
		return nil, err
	}
	pacer := opt.PacerFactory(opt.PaceModel, opt.BytesPerSecond, opt.ChunkSize)
	return &Runner{opt: opt, rotor: rotor, pacer: pacer}, nil
}

// Run executes the loop until the duration elapses, the stop file appears, or
// the context is canceled. Network failures rotate the source and are never
// fatal; the run always ends with a Result.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if r.opt.Duration > 0 {
		deadlineCtx, deadlineCancel := context.WithTimeout(ctx, r.opt.Duration)
		ctx = deadlineCtx
		defer deadlineCancel()
	}

	buf := make([]byte, r.opt.ChunkSize)
	var stream io.ReadCloser
	var attempts, failures, total int64
	reason := StopReasonSignal

	for {
		if ctx.Err() != nil {
			reason = r.stopReason(start)
			break
		}
		if r.stopFileExists() {
			reason = StopReasonStopFile
			break
		}

		if stream == nil {
			url := r.rotor.Current()
			attempts++
			if r.opt.Collector != nil {
				r.opt.Collector.RecordAttempt()
			}
			s, err := r.opt.Fetcher.Open(ctx, url)
			if err != nil {
				if ctx.Err() != nil {
					reason = r.stopReason(start)
					break
				}
				failures++
				r.onFailure(ctx, url, err)
				continue
			}
			stream = s
		}

		url := r.rotor.Current()
		readStart := time.Now()
		n, err := stream.Read(buf)
		if n > 0 {
			total += int64(n)
			if r.opt.Collector != nil {
				r.opt.Collector.RecordChunk(n, time.Since(readStart))
			}
			r.rotor.MarkSuccess()
			if werr := r.pacer.Wait(ctx, n); werr != nil {
				reason = r.stopReason(start)
				break
			}
		}
		if err != nil {
			_ = stream.Close()
			stream = nil
			if ctx.Err() != nil {
				reason = r.stopReason(start)
				break
			}
			failures++
			r.onFailure(ctx, url, err)
		}
	}

	if stream != nil {
		_ = stream.Close()
	}

	return Result{
		Bytes:    total,
		Duration: time.Since(start),
		Attempts: attempts,
		Failures: failures,
		Reason:   reason,
	}
}

// onFailure counts the failure, rotates to the next source, and sleeps the
// backoff once an entire rotation has failed consecutively. Stream
// exhaustion arrives here as io.EOF and rotates like any other failure, but
// the reads that preceded it have already cleared the rotation streak, so a
// finite source that merely ran out never triggers a backoff on its own.
func (r *Runner) onFailure(ctx context.Context, url string, err error) {
	if r.opt.Collector != nil {
		r.opt.Collector.RecordFailure(err)
	}
	if r.opt.Logger != nil && !errors.Is(err, io.EOF) {
		r.opt.Logger.LogFailure(url, err)
	}
	if fullRotation := r.rotor.MarkFailure(); fullRotation {
		_ = r.opt.SleepFunc(ctx, r.opt.Backoff.Delay(r.rotor.FailedRotations()))
	}
}

func (r *Runner) stopFileExists() bool {
	if r.opt.StopFile == "" {
		return false
	}
	_, err := os.Stat(r.opt.StopFile)
	return err == nil
}

// stopReason distinguishes the duration deadline from an external cancel.
func (r *Runner) stopReason(start time.Time) StopReason {
	if r.opt.Duration > 0 && time.Since(start) >= r.opt.Duration {
		return StopReasonDuration
	}
	return StopReasonSignal
}
