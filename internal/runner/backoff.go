package runner

import (
	"math/rand"
	"sync"
	"time"
)

const (
	defaultBackoffBase = 1 * time.Second
	defaultBackoffCap  = 8 * time.Second
)

// Backoff computes the delay applied after every full failed rotation of the
// source list: doubling from Base up to Cap, plus jitter so restarts across
// machines don't align.
type Backoff struct {
	Base   time.Duration
	Cap    time.Duration
	Jitter func(max time.Duration) time.Duration // nil gets a seeded default
}

func (b *Backoff) normalize() {
	if b.Base <= 0 {
		b.Base = defaultBackoffBase
	}
	if b.Cap < b.Base {
		b.Cap = defaultBackoffCap
	}
	if b.Jitter == nil {
		source := &jitterSource{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
		b.Jitter = source.jitter
	}
}

// Delay returns the backoff for the given number of consecutive failed
// rotations (1-based).
func (b Backoff) Delay(rotations int) time.Duration {
	if rotations < 1 {
		rotations = 1
	}
	// Shifting past the cap is pointless and can overflow.
	shift := uint(rotations - 1)
	if shift > 6 {
		shift = 6
	}
	delay := b.Base << shift
	if delay > b.Cap || delay <= 0 {
		delay = b.Cap
	}
	if b.Jitter != nil {
		delay += b.Jitter(delay / 2)
	}
	return delay
}

type jitterSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func (j *jitterSource) jitter(max time.Duration) time.Duration {
	if j == nil || max <= 0 {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return time.Duration(j.rnd.Int63n(int64(max)))
}
