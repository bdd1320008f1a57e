package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"netburn/internal/config"
	"netburn/internal/dashboard"
	"netburn/internal/fetch"
	"netburn/internal/metrics"
	"netburn/internal/output"
	"netburn/internal/runner"
	"netburn/internal/tracing"
)

type stderrFailureLogger struct {
	mu sync.Mutex
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.LockFile != "" {
		lock := flock.New(cfg.LockFile)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("lock file: %w", err)
		}
		if !locked {
			return fmt.Errorf("another instance holds %s", cfg.LockFile)
		}
		defer func() { _ = lock.Unlock() }()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	client := fetch.NewClient(cfg.ConnectTimeout, cfg.ReadTimeout)
	collector := metrics.NewCollector()

	var fetcher runner.Fetcher = client
	if provider.Enabled() {
		client.Decorate = func(req *http.Request) {
			tracing.InjectHTTPHeaders(req.Context(), req.Header)
		}
		fetcher = &tracedFetcher{inner: client, tracer: provider.Tracer()}
	}

	var logger runner.FailureLogger
	if cfg.LogErrors {
		logger = &stderrFailureLogger{}
	}

	opts := runner.Options{
		Sources:        cfg.URLs,
		BytesPerSecond: cfg.TargetBytesPerSec(),
		ChunkSize:      cfg.ChunkSize(),
		Duration:       cfg.Duration(),
		StopFile:       cfg.StopFile,
		PaceModel:      toRunnerPaceModel(cfg.PaceModel),
		Fetcher:        fetcher,
		Collector:      collector,
		Logger:         logger,
	}

	r, err := runner.New(opts)
	if err != nil {
		return err
	}

	runID := ulid.Make().String()

	var dash *dashboard.Dashboard
	if cfg.Dashboard {
		dash, err = dashboard.New(collector, dashboard.RunConfig{
			Sources:        len(cfg.URLs),
			BytesPerSecond: cfg.TargetBytesPerSec(),
			Duration:       cfg.Duration(),
			ChunkSize:      cfg.ChunkSize(),
			StopFile:       cfg.StopFile,
			PaceModel:      string(cfg.PaceModel),
			ConfigFile:     cfg.ConfigFile,
		}, cancel)
		if err != nil {
			return err
		}
		dash.Start()
	}

	var status *output.StatusReporter
	if !cfg.JSONOutput && !cfg.Dashboard {
		fmt.Fprintf(os.Stdout, "[start] run=%s rate=%.3f MB/s (%s/s) duration=%.3f h chunk=%d KB sources=%d\n",
			runID,
			cfg.RateMBps,
			humanize.Bytes(uint64(cfg.TargetBytesPerSec())),
			cfg.Hours,
			cfg.ChunkKB,
			len(cfg.URLs),
		)
		status = output.NewStatusReporter(collector, cfg.LogInterval, cfg.Duration(), os.Stdout)
		status.Start()
	}

	collector.Start()
	result := r.Run(ctx)

	if status != nil {
		status.Stop()
	}
	if dash != nil {
		dash.Stop()
	}

	rep := output.Report{
		RunID:      runID,
		StopReason: string(result.Reason),
		Stats:      collector.Stats(result.Duration),
	}

	if cfg.JSONOutput {
		return output.PrintJSONReport(os.Stdout, rep)
	}
	output.PrintReport(os.Stdout, rep)
	return nil
}

func toRunnerPaceModel(model config.PaceModel) runner.PaceModel {
	switch model {
	case config.PaceModelBucket:
		return runner.PaceModelBucket
	default:
		return runner.PaceModelDeficit
	}
}

func (l *stderrFailureLogger) LogFailure(url string, err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, "[netburn] source failed: %s (%v)\n", url, err)
}

// tracedFetcher wraps a Fetcher so every source attempt becomes a client
// span; the span ends when the stream closes, carrying the byte count.
type tracedFetcher struct {
	inner  runner.Fetcher
	tracer trace.Tracer
}

func (t *tracedFetcher) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	ctx, span := tracing.StartFetchSpan(ctx, t.tracer, url)
	rc, err := t.inner.Open(ctx, url)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, err
	}
	return &tracedStream{inner: rc, span: span}, nil
}

type tracedStream struct {
	inner io.ReadCloser
	span  trace.Span
	bytes int64
	once  sync.Once
}

func (s *tracedStream) Read(p []byte) (int, error) {
	n, err := s.inner.Read(p)
	s.bytes += int64(n)
	return n, err
}

func (s *tracedStream) Close() error {
	err := s.inner.Close()
	s.once.Do(func() {
		tracing.EndSpan(s.span, nil, tracing.BytesAttr(s.bytes))
	})
	return err
}
