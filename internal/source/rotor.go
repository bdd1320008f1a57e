package source

import "errors"

// ErrNoSources is returned when a Rotor is built from an empty URL list.
var ErrNoSources = errors.New("source list is empty")

// nextIndex is the whole rotation policy: simple round-robin with wraparound.
func nextIndex(current, n int) int {
	return (current + 1) % n
}

// Rotor walks the source list round-robin and tracks consecutive failures.
// It is not safe for concurrent use; the runner owns it for the whole run.
type Rotor struct {
	urls     []string
	index    int
	failures []int // consecutive failures per source, reset on success
	streak   int   // consecutive failures across the whole rotation
}

// NewRotor builds a rotor over the given URL list.
func NewRotor(urls []string) (*Rotor, error) {
	if len(urls) == 0 {
		return nil, ErrNoSources
	}
	return &Rotor{
		urls:     append([]string(nil), urls...),
		failures: make([]int, len(urls)),
	}, nil
}

// Current returns the URL the next attempt should use.
func (r *Rotor) Current() string {
	return r.urls[r.index]
}

// Index returns the current position in the source list.
func (r *Rotor) Index() int {
	return r.index
}

// Len returns the number of sources.
func (r *Rotor) Len() int {
	return len(r.urls)
}

// MarkSuccess resets the failure state for the current source. A single good
// read clears the rotation streak: the network is evidently up again.
func (r *Rotor) MarkSuccess() {
	r.failures[r.index] = 0
	r.streak = 0
}

// MarkFailure counts a failure for the current source and advances to the
// next one. It reports whether a full rotation has now failed consecutively,
// which is the signal to back off before hammering the list again.
func (r *Rotor) MarkFailure() (fullRotation bool) {
	r.failures[r.index]++
	r.streak++
	r.index = nextIndex(r.index, len(r.urls))
	return r.streak%len(r.urls) == 0
}

// FailedRotations returns how many complete rotations have failed in a row.
func (r *Rotor) FailedRotations() int {
	return r.streak / len(r.urls)
}

// Failures returns the consecutive failure count for the given source index.
func (r *Rotor) Failures(i int) int {
	return r.failures[i]
}
