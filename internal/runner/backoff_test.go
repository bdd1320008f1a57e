package runner

import (
	"testing"
	"time"
)

func noJitter(time.Duration) time.Duration { return 0 }

func TestBackoffDoublesToCap(t *testing.T) {
	b := Backoff{Base: time.Second, Cap: 8 * time.Second, Jitter: noJitter}

	cases := []struct {
		rotations int
		want      time.Duration
	}{
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 8 * time.Second},
		{100, 8 * time.Second},
	}
	for _, tc := range cases {
		if got := b.Delay(tc.rotations); got != tc.want {
			t.Errorf("Delay(%d) = %v, want %v", tc.rotations, got, tc.want)
		}
	}
}

func TestBackoffClampsNonPositiveRotations(t *testing.T) {
	b := Backoff{Base: time.Second, Cap: 8 * time.Second, Jitter: noJitter}
	if got := b.Delay(0); got != time.Second {
		t.Errorf("Delay(0) = %v, want 1s", got)
	}
	if got := b.Delay(-3); got != time.Second {
		t.Errorf("Delay(-3) = %v, want 1s", got)
	}
}

func TestBackoffJitterBounded(t *testing.T) {
	var b Backoff
	b.normalize()
	if b.Base != defaultBackoffBase || b.Cap != defaultBackoffCap {
		t.Fatalf("normalize defaults = %v/%v", b.Base, b.Cap)
	}

	for i := 0; i < 100; i++ {
		d := b.Delay(2)
		base := 2 * time.Second
		if d < base || d > base+base/2 {
			t.Fatalf("Delay(2) = %v, want within [%v, %v]", d, base, base+base/2)
		}
	}
}

func TestJitterSourceZeroMax(t *testing.T) {
	var j jitterSource
	if got := j.jitter(0); got != 0 {
		t.Fatalf("jitter(0) = %v, want 0", got)
	}
}
