// Package metrics provides thread-safe collection of transfer metrics for
// the download loop.
//
// The [Collector] tracks cumulative bytes (monotonically non-decreasing for
// the life of the run), chunk read latencies in an HDR histogram, a rolling
// 30-second window for the instantaneous rate shown in status lines, and
// failure counts grouped by error type.
//
// The runner records into the collector from the download loop while the
// status reporter and dashboard read snapshots from their own goroutines, so
// every entry point takes the collector mutex.
//
//	collector := metrics.NewCollector()
//	collector.Start()
//	collector.RecordChunk(n, latency)
//	stats := collector.Stats(time.Since(start))
package metrics
