package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"
	"go.opentelemetry.io/otel/trace/noop"

	"netburn/internal/config"
	"netburn/internal/runner"
)

func TestRunHelpIsNotAnError(t *testing.T) {
	if err := run([]string{"--help"}); err != nil {
		t.Fatalf("run --help: %v", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := run([]string{"--rate", "-1"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verr config.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %T (%v), want ValidationError", err, err)
	}
}

func TestRunRejectsUnknownFlag(t *testing.T) {
	if err := run([]string{"--bogus"}); err == nil {
		t.Fatal("expected flag parse error")
	}
}

func TestRunFailsWhenLockHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netburn.lock")
	held := flock.New(path)
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("pre-lock: locked=%v err=%v", locked, err)
	}
	defer func() { _ = held.Unlock() }()

	err = run([]string{"--lock-file", path})
	if err == nil || !strings.Contains(err.Error(), "another instance") {
		t.Fatalf("err = %v, want lock contention error", err)
	}
}

func TestToRunnerPaceModel(t *testing.T) {
	if got := toRunnerPaceModel(config.PaceModelBucket); got != runner.PaceModelBucket {
		t.Errorf("bucket mapped to %q", got)
	}
	if got := toRunnerPaceModel(config.PaceModelDeficit); got != runner.PaceModelDeficit {
		t.Errorf("deficit mapped to %q", got)
	}
	if got := toRunnerPaceModel(""); got != runner.PaceModelDeficit {
		t.Errorf("empty model mapped to %q, want deficit", got)
	}
}

type staticFetcher struct {
	rc  io.ReadCloser
	err error
}

func (f staticFetcher) Open(context.Context, string) (io.ReadCloser, error) {
	return f.rc, f.err
}

func TestTracedFetcherCountsBytes(t *testing.T) {
	payload := bytes.Repeat([]byte("x"), 2048)
	tf := &tracedFetcher{
		inner:  staticFetcher{rc: io.NopCloser(bytes.NewReader(payload))},
		tracer: noop.NewTracerProvider().Tracer("test"),
	}

	rc, err := tf.Open(context.Background(), "https://example.com/a.bin")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	n, err := io.Copy(io.Discard, rc)
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("copied %d bytes, want %d", n, len(payload))
	}

	ts := rc.(*tracedStream)
	if ts.bytes != int64(len(payload)) {
		t.Fatalf("counted %d bytes, want %d", ts.bytes, len(payload))
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	// Double close must not end the span twice.
	_ = rc.Close()
}

func TestTracedFetcherPropagatesOpenError(t *testing.T) {
	boom := errors.New("refused")
	tf := &tracedFetcher{
		inner:  staticFetcher{err: boom},
		tracer: noop.NewTracerProvider().Tracer("test"),
	}
	if _, err := tf.Open(context.Background(), "https://example.com/a.bin"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped open failure", err)
	}
}

func TestStderrFailureLoggerIgnoresNil(t *testing.T) {
	l := &stderrFailureLogger{}
	l.LogFailure("https://example.com/a.bin", nil)
}
