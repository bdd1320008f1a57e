package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Hours != 1.0 {
		t.Errorf("hours = %g, want 1.0", cfg.Hours)
	}
	if cfg.RateMBps != 0.5 {
		t.Errorf("rate = %g, want 0.5", cfg.RateMBps)
	}
	if cfg.ChunkKB != 64 {
		t.Errorf("chunk-kb = %d, want 64", cfg.ChunkKB)
	}
	if cfg.ConnectTimeout != 10*time.Second || cfg.ReadTimeout != 20*time.Second {
		t.Errorf("timeouts = %v/%v, want 10s/20s", cfg.ConnectTimeout, cfg.ReadTimeout)
	}
	if cfg.LogInterval != 5*time.Second {
		t.Errorf("log-interval = %v, want 5s", cfg.LogInterval)
	}
	if cfg.StopFile != "stop.flag" {
		t.Errorf("stop-file = %q, want stop.flag", cfg.StopFile)
	}
	if cfg.PaceModel != PaceModelDeficit {
		t.Errorf("pace-model = %q, want deficit", cfg.PaceModel)
	}
	if len(cfg.URLs) == 0 {
		t.Error("default URL list must not be empty")
	}
	if cfg.Tracing.Enabled() {
		t.Error("tracing must be disabled by default")
	}
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"--hours", "0.25",
		"-r", "2.5",
		"--chunk-kb", "128",
		"--connect-timeout", "3.5",
		"--read-timeout", "7",
		"--log-interval", "1",
		"--stop-file", "halt.now",
		"--pace-model", "BUCKET",
		"--json-output",
		"--log-errors",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Hours != 0.25 || cfg.RateMBps != 2.5 || cfg.ChunkKB != 128 {
		t.Errorf("pacing flags = %g/%g/%d", cfg.Hours, cfg.RateMBps, cfg.ChunkKB)
	}
	// Timeout flags take seconds, including fractions.
	if cfg.ConnectTimeout != 3500*time.Millisecond {
		t.Errorf("connect-timeout = %v, want 3.5s", cfg.ConnectTimeout)
	}
	if cfg.ReadTimeout != 7*time.Second {
		t.Errorf("read-timeout = %v, want 7s", cfg.ReadTimeout)
	}
	if cfg.LogInterval != time.Second {
		t.Errorf("log-interval = %v, want 1s", cfg.LogInterval)
	}
	if cfg.StopFile != "halt.now" {
		t.Errorf("stop-file = %q", cfg.StopFile)
	}
	if cfg.PaceModel != PaceModelBucket {
		t.Errorf("pace-model = %q, want bucket (case folded)", cfg.PaceModel)
	}
	if !cfg.JSONOutput || !cfg.LogErrors {
		t.Error("boolean flags not applied")
	}
}

func TestLoadURLsFile(t *testing.T) {
	path := writeFile(t, "urls.txt", "https://example.com/a.bin\nhttps://example.com/b.bin\n")

	cfg, err := NewLoader().Load([]string{"--urls-file", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.URLs) != 2 || cfg.URLs[0] != "https://example.com/a.bin" {
		t.Fatalf("urls = %v", cfg.URLs)
	}
}

func TestLoadMissingURLsFileIsError(t *testing.T) {
	if _, err := NewLoader().Load([]string{"--urls-file", "/nonexistent/urls.txt"}); err == nil {
		t.Fatal("expected error for missing urls file")
	}
}

func TestLoadConfigFileWithFlagOverride(t *testing.T) {
	path := writeFile(t, "config.yaml", `
hours: 2.0
rate: 1.25
chunk_kb: 256
stop_file: from-config.flag
urls:
  - https://example.com/cfg.bin
tracing:
  endpoint: collector:4317
  protocol: http
  insecure: true
  sample_rate: 0.5
`)

	cfg, err := NewLoader().Load([]string{"--config", path, "--rate", "4.0"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Hours != 2.0 {
		t.Errorf("hours = %g, want 2.0 from config file", cfg.Hours)
	}
	// Flags win over the config file.
	if cfg.RateMBps != 4.0 {
		t.Errorf("rate = %g, want flag value 4.0", cfg.RateMBps)
	}
	if cfg.ChunkKB != 256 {
		t.Errorf("chunk_kb = %d, want 256", cfg.ChunkKB)
	}
	if cfg.StopFile != "from-config.flag" {
		t.Errorf("stop_file = %q", cfg.StopFile)
	}
	if len(cfg.URLs) != 1 || cfg.URLs[0] != "https://example.com/cfg.bin" {
		t.Errorf("urls = %v", cfg.URLs)
	}
	if !cfg.Tracing.Enabled() || cfg.Tracing.Protocol != "http" || !cfg.Tracing.Insecure {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
	if cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("sample_rate = %g, want 0.5", cfg.Tracing.SampleRate)
	}
}

func TestLoadConfigFileDurationsAcceptBareSeconds(t *testing.T) {
	path := writeFile(t, "config.yaml", `
connect_timeout: 4
read_timeout: 2.5
log_interval: 10s
`)

	cfg, err := NewLoader().Load([]string{"--config", path})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ConnectTimeout != 4*time.Second {
		t.Errorf("connect_timeout = %v, want 4s", cfg.ConnectTimeout)
	}
	if cfg.ReadTimeout != 2500*time.Millisecond {
		t.Errorf("read_timeout = %v, want 2.5s", cfg.ReadTimeout)
	}
	if cfg.LogInterval != 10*time.Second {
		t.Errorf("log_interval = %v, want 10s", cfg.LogInterval)
	}
}

func TestLoadOTLPFlags(t *testing.T) {
	cfg, err := NewLoader().Load([]string{
		"--otlp-endpoint", "localhost:4317",
		"--otlp-protocol", "http",
		"--otlp-insecure",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Tracing.Enabled() {
		t.Fatal("tracing should be enabled via flags")
	}
	if cfg.Tracing.Protocol != "http" || !cfg.Tracing.Insecure {
		t.Errorf("tracing = %+v", cfg.Tracing)
	}
}

func TestLoadHelp(t *testing.T) {
	if _, err := NewLoader().Load([]string{"--help"}); !errors.Is(err, ErrHelpRequested) {
		t.Fatalf("err = %v, want ErrHelpRequested", err)
	}
}

func TestLoadUnknownFlagIsError(t *testing.T) {
	if _, err := NewLoader().Load([]string{"--no-such-flag"}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadMissingConfigFileIsError(t *testing.T) {
	if _, err := NewLoader().Load([]string{"--config", "/nonexistent/config.yaml"}); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
