package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "netburn",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
// Timeout-style flags take plain seconds rather than duration strings so the
// command line stays compatible with the historical interface.
func configureFlags(flags *pflag.FlagSet) {
	// Pacing flags
	flags.Float64("hours", 1.0, "Run duration in hours")
	flags.Float64P("rate", "r", 0.5, "Target download rate in MB/s (decimal MB)")
	flags.Int("chunk-kb", 64, "Read chunk size in KB")
	flags.String("pace-model", string(PaceModelDeficit), "Pacing model: 'deficit' or 'bucket'")

	// Source flags
	flags.String("urls-file", "", "Path to text file with download URLs, one per line")

	// Network flags
	flags.Float64("connect-timeout", 10, "Connect timeout in seconds")
	flags.Float64("read-timeout", 20, "Per-chunk read timeout in seconds")

	// Shutdown flags
	flags.String("stop-file", "stop.flag", "Exit gracefully when this file exists")
	flags.String("lock-file", "", "Optional lock file preventing a second concurrent run")

	// Output flags
	flags.Float64("log-interval", 5, "Seconds between status lines")
	flags.Bool("json-output", false, "Emit the final summary as JSON")
	flags.Bool("dashboard", false, "Show live terminal dashboard")
	flags.Bool("log-errors", false, "Log each source failure to stderr")
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.String("otlp-endpoint", "", "OTLP endpoint for trace export (empty disables tracing)")
	flags.String("otlp-protocol", "grpc", "OTLP transport: 'grpc' or 'http'")
	flags.Bool("otlp-insecure", false, "Disable TLS for the OTLP exporter")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("hours") {
		val, err := fs.GetFloat64("hours")
		if err != nil {
			return err
		}
		cfg.Hours = val
	}
	if fs.Changed("rate") {
		val, err := fs.GetFloat64("rate")
		if err != nil {
			return err
		}
		cfg.RateMBps = val
	}
	if fs.Changed("chunk-kb") {
		val, err := fs.GetInt("chunk-kb")
		if err != nil {
			return err
		}
		cfg.ChunkKB = val
	}
	if fs.Changed("pace-model") {
		val, err := fs.GetString("pace-model")
		if err != nil {
			return err
		}
		cfg.PaceModel = PaceModel(val)
	}
	if fs.Changed("urls-file") {
		val, err := fs.GetString("urls-file")
		if err != nil {
			return err
		}
		cfg.URLsFile = val
	}
	if fs.Changed("connect-timeout") {
		val, err := fs.GetFloat64("connect-timeout")
		if err != nil {
			return err
		}
		cfg.ConnectTimeout = secondsToDuration(val)
	}
	if fs.Changed("read-timeout") {
		val, err := fs.GetFloat64("read-timeout")
		if err != nil {
			return err
		}
		cfg.ReadTimeout = secondsToDuration(val)
	}
	if fs.Changed("log-interval") {
		val, err := fs.GetFloat64("log-interval")
		if err != nil {
			return err
		}
		cfg.LogInterval = secondsToDuration(val)
	}
	if fs.Changed("stop-file") {
		val, err := fs.GetString("stop-file")
		if err != nil {
			return err
		}
		cfg.StopFile = val
	}
	if fs.Changed("lock-file") {
		val, err := fs.GetString("lock-file")
		if err != nil {
			return err
		}
		cfg.LockFile = val
	}
	if fs.Changed("json-output") {
		val, err := fs.GetBool("json-output")
		if err != nil {
			return err
		}
		cfg.JSONOutput = val
	}
	if fs.Changed("dashboard") {
		val, err := fs.GetBool("dashboard")
		if err != nil {
			return err
		}
		cfg.Dashboard = val
	}
	if fs.Changed("log-errors") {
		val, err := fs.GetBool("log-errors")
		if err != nil {
			return err
		}
		cfg.LogErrors = val
	}
	if fs.Changed("otlp-endpoint") {
		val, err := fs.GetString("otlp-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = val
	}
	if fs.Changed("otlp-protocol") {
		val, err := fs.GetString("otlp-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = val
	}
	if fs.Changed("otlp-insecure") {
		val, err := fs.GetBool("otlp-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}

	return nil
}
