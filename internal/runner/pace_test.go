package runner

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives deficitPace deterministically. Sleeps advance the clock
// instead of blocking.
type fakeClock struct {
	at     time.Time
	sleeps []time.Duration
}

func (c *fakeClock) now() time.Time { return c.at }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.at = c.at.Add(d)
	return nil
}

func TestDeficitPaceSleepsOffSurplus(t *testing.T) {
	clock := &fakeClock{at: time.Unix(0, 0)}
	p := &deficitPace{
		bytesPerSec: 1000,
		now:         clock.now,
		sleep:       clock.sleep,
	}

	// 500 bytes at 1000 B/s with zero wall time elapsed: pause 500ms.
	if err := p.Wait(context.Background(), 500); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(clock.sleeps) != 1 || clock.sleeps[0] != 500*time.Millisecond {
		t.Fatalf("sleeps = %v, want [500ms]", clock.sleeps)
	}

	// Another 500 bytes: ideal is now 1s total, clock already at 500ms.
	if err := p.Wait(context.Background(), 500); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(clock.sleeps) != 2 || clock.sleeps[1] != 500*time.Millisecond {
		t.Fatalf("sleeps = %v, want second 500ms", clock.sleeps)
	}
}

func TestDeficitPaceNeverSleepsWhenBehind(t *testing.T) {
	clock := &fakeClock{at: time.Unix(0, 0)}
	p := &deficitPace{
		bytesPerSec: 1000,
		now:         clock.now,
		sleep:       clock.sleep,
	}

	// First call pins the start time.
	if err := p.Wait(context.Background(), 100); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	clock.sleeps = nil

	// Jump the wall clock far past the ideal schedule.
	clock.at = clock.at.Add(time.Minute)
	if err := p.Wait(context.Background(), 100); err != nil {
		t.Fatalf("Wait while behind: %v", err)
	}
	if len(clock.sleeps) != 0 {
		t.Fatalf("expected no sleep while behind schedule, got %v", clock.sleeps)
	}
}

func TestDeficitPaceReturnsContextError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	clock := &fakeClock{at: time.Unix(0, 0)}
	p := &deficitPace{
		bytesPerSec: 1000,
		now:         clock.now,
		sleep:       sleepContext,
	}
	if err := p.Wait(ctx, 500); err != context.Canceled {
		t.Fatalf("Wait on canceled ctx = %v, want context.Canceled", err)
	}
}

func TestBucketPaceSlicesOversizedChunks(t *testing.T) {
	// A very high rate keeps WaitN from actually blocking; the point is that
	// n larger than the bucket capacity does not error out.
	p := newPacer(PaceModelBucket, 1e9, 10)
	b, ok := p.(*bucketPace)
	if !ok {
		t.Fatalf("expected bucketPace, got %T", p)
	}
	n := b.limiter.Burst()*3 + 7
	if err := p.Wait(context.Background(), n); err != nil {
		t.Fatalf("Wait(%d) with burst %d: %v", n, b.limiter.Burst(), err)
	}
}

func TestNewPacerBucketCapacityAtLeastChunk(t *testing.T) {
	p := newPacer(PaceModelBucket, 4, 64*1024)
	b := p.(*bucketPace)
	if got := b.limiter.Burst(); got < 64*1024 {
		t.Fatalf("burst = %d, want at least one chunk", got)
	}
}

func TestNewPacerDefaultsToDeficit(t *testing.T) {
	if _, ok := newPacer("", 1000, 64).(*deficitPace); !ok {
		t.Fatal("empty model should select deficit pacing")
	}
}
