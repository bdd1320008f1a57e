// Package output renders periodic status lines and the end-of-run summary.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"

	"netburn/internal/metrics"
)

// Report is the end-of-run summary.
type Report struct {
	RunID      string `json:"run_id"`
	StopReason string `json:"stop_reason"`
	metrics.Stats
}

// PrintReport outputs a human-readable summary.
func PrintReport(w io.Writer, rep Report) {
	fmt.Fprintln(w, "\n--- Transfer Summary ---")
	if rep.RunID != "" {
		fmt.Fprintf(w, "Run ID:            %s\n", rep.RunID)
	}
	fmt.Fprintf(w, "Stopped:           %s\n", rep.StopReason)
	fmt.Fprintf(w, "Total Downloaded:  %s\n", humanize.Bytes(uint64(rep.BytesTotal)))
	fmt.Fprintf(w, "Elapsed:           %.1fs\n", rep.Duration.Seconds())
	fmt.Fprintf(w, "Average Rate:      %s/s\n", humanize.Bytes(uint64(rep.AvgBytesPerSec)))
	fmt.Fprintf(w, "Chunks:            %d\n", rep.Chunks)
	fmt.Fprintf(w, "Attempts:          %d\n", rep.Attempts)
	fmt.Fprintf(w, "Failures:          %d\n", rep.Failures)
	if rep.Chunks > 0 {
		fmt.Fprintln(w, "\nChunk Read Latency:")
		fmt.Fprintf(w, "  Min:             %s\n", rep.MinRead)
		fmt.Fprintf(w, "  Max:             %s\n", rep.MaxRead)
		fmt.Fprintf(w, "  Mean:            %s\n", rep.MeanRead)
		fmt.Fprintf(w, "  P50:             %s\n", rep.P50Read)
		fmt.Fprintf(w, "  P90:             %s\n", rep.P90Read)
		fmt.Fprintf(w, "  P99:             %s\n", rep.P99Read)
	}
	if len(rep.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		types := make([]string, 0, len(rep.Errors))
		for t := range rep.Errors {
			types = append(types, t)
		}
		sort.Strings(types)
		for _, t := range types {
			fmt.Fprintf(w, "  %s: %d\n", t, rep.Errors[t])
		}
	}
}

// PrintJSONReport outputs a JSON-formatted summary.
func PrintJSONReport(w io.Writer, rep Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
