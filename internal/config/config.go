package config

import (
	"fmt"
	"strings"
	"time"
)

// bytesPerMB is the decimal megabyte used for the --rate flag, matching the
// common convention for quoting network speeds.
const bytesPerMB = 1_000_000

type PaceModel string

const (
	// PaceModelDeficit sleeps off the difference between the ideal elapsed
	// time implied by the byte count and the actual elapsed time.
	PaceModelDeficit PaceModel = "deficit"
	// PaceModelBucket is a token bucket refilled at the target rate.
	PaceModelBucket PaceModel = "bucket"
)

type Config struct {
	Hours          float64       `mapstructure:"hours"`
	RateMBps       float64       `mapstructure:"rate"`
	ChunkKB        int           `mapstructure:"chunk_kb"`
	URLsFile       string        `mapstructure:"urls_file"`
	URLs           []string      `mapstructure:"urls"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	LogInterval    time.Duration `mapstructure:"log_interval"`
	StopFile       string        `mapstructure:"stop_file"`
	PaceModel      PaceModel     `mapstructure:"pace_model"`
	JSONOutput     bool          `mapstructure:"json_output"`
	Dashboard      bool          `mapstructure:"dashboard"`
	LogErrors      bool          `mapstructure:"log_errors"`
	LockFile       string        `mapstructure:"lock_file"`
	Tracing        TracingConfig `mapstructure:"tracing"`
	ConfigFile     string        `mapstructure:"-"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Enabled reports whether an OTLP exporter should be configured.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != ""
}

// Duration returns the configured run length.
func (c Config) Duration() time.Duration {
	return time.Duration(c.Hours * float64(time.Hour))
}

// TargetBytesPerSec converts the MB/s rate into bytes per second.
func (c Config) TargetBytesPerSec() float64 {
	return c.RateMBps * bytesPerMB
}

// ChunkSize returns the read chunk size in bytes.
func (c Config) ChunkSize() int {
	return c.ChunkKB * 1024
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

// Validate checks the configuration before any network activity happens.
func (c Config) Validate() error {
	var issues []string

	if c.Hours <= 0 {
		issues = append(issues, "hours must be > 0")
	}
	if c.RateMBps <= 0 {
		issues = append(issues, "rate must be > 0")
	}
	if c.ChunkKB <= 0 {
		issues = append(issues, "chunk-kb must be > 0")
	}
	if c.ConnectTimeout < 0 {
		issues = append(issues, "connect-timeout must be >= 0")
	}
	if c.ReadTimeout < 0 {
		issues = append(issues, "read-timeout must be >= 0")
	}
	if c.LogInterval <= 0 {
		issues = append(issues, "log-interval must be > 0")
	}
	if len(c.URLs) == 0 {
		issues = append(issues, "at least one download URL is required")
	}
	for idx, u := range c.URLs {
		trimmed := strings.TrimSpace(u)
		if trimmed == "" {
			issues = append(issues, fmt.Sprintf("urls[%d]: URL cannot be empty", idx))
			continue
		}
		if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
			issues = append(issues, fmt.Sprintf("urls[%d]: %q is not an absolute http(s) URL", idx, trimmed))
		}
	}

	switch c.PaceModel {
	case "", PaceModelDeficit, PaceModelBucket:
	default:
		issues = append(issues, fmt.Sprintf("pace model %q is not supported", c.PaceModel))
	}

	if c.Dashboard && c.JSONOutput {
		issues = append(issues, "dashboard and json-output are mutually exclusive")
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		issues = append(issues, "tracing sample_rate must be between 0.0 and 1.0")
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}
