// Package runner implements the paced download loop at the heart of netburn.
//
// A [Runner] owns one run: it opens a streaming GET against the current
// source, reads fixed-size chunks, records them, and asks its [Pacer] to
// sleep off any surplus over the target rate. Failures rotate to the next
// source round-robin; once a full rotation has failed consecutively the loop
// sleeps a capped exponential [Backoff] so a dead network is not hammered.
//
// Termination is cooperative. The loop checks, once per chunk, for a
// canceled context (interrupt signal or the duration deadline) and for the
// stop-sentinel file. Blocking reads regain control within the fetch layer's
// read timeout, which bounds how long a stop request can go unobserved. A
// run never fails: it always ends with a [Result] carrying the byte count
// and the [StopReason].
//
// Two pacing models are available:
//
//   - [PaceModelDeficit] (default) holds the long-run average at the target
//     by sleeping off the difference between ideal and actual elapsed time,
//     clamped at zero so there is no catch-up burst.
//   - [PaceModelBucket] is a token bucket on golang.org/x/time/rate, closer
//     to a smooth instantaneous cap.
//
// The [Options.PacerFactory] and [Options.SleepFunc] fields exist so tests
// can observe pacing and backoff decisions without real sleeps.
package runner
