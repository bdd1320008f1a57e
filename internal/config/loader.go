package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"netburn/internal/source"
)

// Loader handles loading configuration from files and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments and configuration files to produce a
// Config. Precedence is flags over config file over defaults. The resolved
// URL list (file, config entries, or built-in defaults) is filled into
// Config.URLs so callers never touch the file again.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	configPath := flagSet.Lookup("config").Value.String()
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		Hours:          1.0,
		RateMBps:       0.5,
		ChunkKB:        64,
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    20 * time.Second,
		LogInterval:    5 * time.Second,
		StopFile:       "stop.flag",
		PaceModel:      PaceModelDeficit,
		ConfigFile:     configPath,
		Tracing:        TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.URLsFile = strings.TrimSpace(cfg.URLsFile)
	cfg.StopFile = strings.TrimSpace(cfg.StopFile)
	cfg.PaceModel = PaceModel(strings.ToLower(strings.TrimSpace(string(cfg.PaceModel))))

	if err := resolveURLs(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveURLs fills cfg.URLs from the urls file, explicit config entries, or
// the built-in default list, in that order.
func resolveURLs(cfg *Config) error {
	if cfg.URLsFile != "" {
		urls, err := source.LoadFile(cfg.URLsFile)
		if err != nil {
			return fmt.Errorf("load URLs: %w", err)
		}
		cfg.URLs = urls
		return nil
	}
	if len(cfg.URLs) > 0 {
		return nil
	}
	cfg.URLs = source.DefaultURLs()
	return nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "hours"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("hours: %w", err)
		}
		cfg.Hours = val
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.RateMBps = val
	}

	if raw, ok := lookupSetting(settings, "chunkkb", "chunk_kb", "chunk-kb"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("chunkKB: %w", err)
		}
		cfg.ChunkKB = val
	}

	if raw, ok := lookupSetting(settings, "pacemodel", "pace_model", "pace-model"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("paceModel: %w", err)
		}
		if val != "" {
			cfg.PaceModel = PaceModel(val)
		}
	}

	if raw, ok := lookupSetting(settings, "urlsfile", "urls_file", "urls-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("urlsFile: %w", err)
		}
		cfg.URLsFile = val
	}

	if raw, ok := lookupSetting(settings, "urls"); ok {
		vals, err := asStringSlice(raw)
		if err != nil {
			return fmt.Errorf("urls: %w", err)
		}
		cfg.URLs = vals
	}

	if raw, ok := lookupSetting(settings, "connecttimeout", "connect_timeout", "connect-timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("connectTimeout: %w", err)
		}
		cfg.ConnectTimeout = dur
	}

	if raw, ok := lookupSetting(settings, "readtimeout", "read_timeout", "read-timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("readTimeout: %w", err)
		}
		cfg.ReadTimeout = dur
	}

	if raw, ok := lookupSetting(settings, "loginterval", "log_interval", "log-interval"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("logInterval: %w", err)
		}
		cfg.LogInterval = dur
	}

	if raw, ok := lookupSetting(settings, "stopfile", "stop_file", "stop-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("stopFile: %w", err)
		}
		cfg.StopFile = val
	}

	if raw, ok := lookupSetting(settings, "lockfile", "lock_file", "lock-file"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("lockFile: %w", err)
		}
		cfg.LockFile = val
	}

	if raw, ok := lookupSetting(settings, "jsonoutput", "json_output", "json-output"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("jsonOutput: %w", err)
		}
		cfg.JSONOutput = val
	}

	if raw, ok := lookupSetting(settings, "dashboard"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		cfg.Dashboard = val
	}

	if raw, ok := lookupSetting(settings, "logerrors", "log_errors", "log-errors"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("logErrors: %w", err)
		}
		cfg.LogErrors = val
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(cfg, raw); err != nil {
			return err
		}
	}

	return nil
}

func applyTracingSettings(cfg *Config, raw interface{}) error {
	section, err := toStringKeyMap(raw)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}

	if v, ok := lookupSetting(section, "endpoint"); ok {
		val, err := asString(v)
		if err != nil {
			return fmt.Errorf("tracing.endpoint: %w", err)
		}
		cfg.Tracing.Endpoint = val
	}
	if v, ok := lookupSetting(section, "protocol"); ok {
		val, err := asString(v)
		if err != nil {
			return fmt.Errorf("tracing.protocol: %w", err)
		}
		if val != "" {
			cfg.Tracing.Protocol = val
		}
	}
	if v, ok := lookupSetting(section, "insecure"); ok {
		val, err := asBool(v)
		if err != nil {
			return fmt.Errorf("tracing.insecure: %w", err)
		}
		cfg.Tracing.Insecure = val
	}
	if v, ok := lookupSetting(section, "servicename", "service_name", "service-name"); ok {
		val, err := asString(v)
		if err != nil {
			return fmt.Errorf("tracing.service_name: %w", err)
		}
		cfg.Tracing.ServiceName = val
	}
	if v, ok := lookupSetting(section, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(v)
		if err != nil {
			return fmt.Errorf("tracing.sample_rate: %w", err)
		}
		cfg.Tracing.SampleRate = val
	}
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
