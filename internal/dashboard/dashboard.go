// Package dashboard renders a live terminal UI for a running transfer.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"

	"github.com/dustin/go-humanize"

	"netburn/internal/metrics"
)

// RunConfig holds run parameters for display.
type RunConfig struct {
	Sources        int           // number of configured sources
	BytesPerSecond float64       // target rate
	Duration       time.Duration // run length
	ChunkSize      int           // read chunk size in bytes
	StopFile       string        // sentinel path
	PaceModel      string        // pacing strategy
	ConfigFile     string        // path to config file if used
}

// Dashboard renders live transfer metrics.
type Dashboard struct {
	collector    *metrics.Collector
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownFunc func()
	wg           sync.WaitGroup
	mu           sync.Mutex

	grid          *ui.Grid
	rateSparkle   *widgets.SparklineGroup
	rateGauge     *widgets.Gauge
	latencyPara   *widgets.Paragraph
	transferPara  *widgets.Paragraph
	summaryPara   *widgets.Paragraph
	errorList     *widgets.List
	rateHistory   []float64
	startTime     time.Time
	finalDuration time.Duration
	runConfig     RunConfig
}

// New creates a Dashboard. shutdownFunc is invoked when the user quits.
func New(collector *metrics.Collector, cfg RunConfig, shutdownFunc func()) (*Dashboard, error) {
	if err := ui.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize termui: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	d := &Dashboard{
		collector:    collector,
		ctx:          ctx,
		cancel:       cancel,
		shutdownFunc: shutdownFunc,
		rateHistory:  make([]float64, 0, 100),
		startTime:    time.Now(),
		runConfig:    cfg,
	}

	d.initWidgets()
	d.setupGrid()

	return d, nil
}

func (d *Dashboard) initWidgets() {
	sparkline := widgets.NewSparkline()
	sparkline.Title = "Throughput"
	sparkline.LineColor = ui.ColorGreen
	sparkline.Data = []float64{0}

	d.rateSparkle = widgets.NewSparklineGroup(sparkline)
	d.rateSparkle.Title = "Throughput (trailing window)"
	d.rateSparkle.BorderStyle.Fg = ui.ColorCyan

	d.rateGauge = widgets.NewGauge()
	d.rateGauge.Title = "Rate vs Target"
	d.rateGauge.Percent = 0
	d.rateGauge.BarColor = ui.ColorBlue
	d.rateGauge.BorderStyle.Fg = ui.ColorCyan
	d.rateGauge.LabelStyle = ui.NewStyle(ui.ColorWhite)

	d.latencyPara = widgets.NewParagraph()
	d.latencyPara.Title = "Chunk Read Latency"
	d.latencyPara.Text = "Min: 0ms\nMean: 0ms\nP50: 0ms\nP90: 0ms\nP99: 0ms"
	d.latencyPara.BorderStyle.Fg = ui.ColorCyan

	d.transferPara = widgets.NewParagraph()
	d.transferPara.Title = "Transfer"
	d.transferPara.Text = "Waiting for data..."
	d.transferPara.BorderStyle.Fg = ui.ColorCyan

	d.summaryPara = widgets.NewParagraph()
	d.summaryPara.Title = "Run"
	d.summaryPara.Text = "Initializing..."
	d.summaryPara.BorderStyle.Fg = ui.ColorCyan

	d.errorList = widgets.NewList()
	d.errorList.Title = "Failures"
	d.errorList.Rows = []string{"No failures"}
	d.errorList.TextStyle = ui.NewStyle(ui.ColorYellow)
	d.errorList.BorderStyle.Fg = ui.ColorCyan
}

func (d *Dashboard) setupGrid() {
	termWidth, termHeight := ui.TerminalDimensions()

	d.grid = ui.NewGrid()
	d.grid.SetRect(0, 0, termWidth, termHeight)

	d.grid.Set(
		ui.NewRow(0.18,
			ui.NewCol(1.0, d.summaryPara),
		),
		ui.NewRow(0.20,
			ui.NewCol(0.5, d.rateGauge),
			ui.NewCol(0.5, d.transferPara),
		),
		ui.NewRow(0.32,
			ui.NewCol(0.65, d.rateSparkle),
			ui.NewCol(0.35, d.latencyPara),
		),
		ui.NewRow(0.30,
			ui.NewCol(1.0, d.errorList),
		),
	)
}

// Start begins the dashboard update loop.
func (d *Dashboard) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop stops the dashboard and restores the terminal.
func (d *Dashboard) Stop() {
	d.cancel()
	d.wg.Wait()
	d.finalDuration = time.Since(d.startTime)
	ui.Close()
	// Give terminal time to restore
	time.Sleep(100 * time.Millisecond)
}

// FinalStats returns the statistics as of the dashboard stopping.
func (d *Dashboard) FinalStats() metrics.Stats {
	return d.collector.Stats(d.finalDuration)
}

func (d *Dashboard) run() {
	defer d.wg.Done()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	uiEvents := ui.PollEvents()

	d.render()

	for {
		select {
		case <-d.ctx.Done():
			for len(uiEvents) > 0 {
				<-uiEvents
			}
			return
		case e := <-uiEvents:
			select {
			case <-d.ctx.Done():
				return
			default:
			}

			switch e.ID {
			case "q", "<C-c>":
				if d.shutdownFunc != nil {
					d.shutdownFunc()
				}
				// Wait for Stop() to cancel the context
			case "<Resize>":
				payload := e.Payload.(ui.Resize)
				d.grid.SetRect(0, 0, payload.Width, payload.Height)
				ui.Clear()
				d.render()
			}
		case <-ticker.C:
			d.update()
			d.render()
		}
	}
}

func (d *Dashboard) update() {
	d.mu.Lock()
	defer d.mu.Unlock()

	elapsed := time.Since(d.startTime)
	stats := d.collector.Stats(elapsed)

	current := stats.WindowBytesPerSec
	d.rateHistory = append(d.rateHistory, current)
	if len(d.rateHistory) > 100 {
		d.rateHistory = d.rateHistory[1:]
	}
	d.rateSparkle.Sparklines[0].Data = d.rateHistory
	d.rateSparkle.Title = fmt.Sprintf(
		"Throughput | Now: %s/s | Avg: %s/s",
		humanize.Bytes(uint64(current)),
		humanize.Bytes(uint64(stats.AvgBytesPerSec)),
	)

	percent := 0
	if d.runConfig.BytesPerSecond > 0 {
		percent = int((current / d.runConfig.BytesPerSecond) * 100)
	}
	if percent > 100 {
		percent = 100
	}
	d.rateGauge.Percent = percent
	d.rateGauge.Label = fmt.Sprintf("%s/s of %s/s",
		humanize.Bytes(uint64(current)),
		humanize.Bytes(uint64(d.runConfig.BytesPerSecond)))

	remain := d.runConfig.Duration - elapsed
	if remain < 0 {
		remain = 0
	}
	d.summaryPara.Text = fmt.Sprintf(
		"%s\nElapsed: %s | Remaining: %s | Press q to stop",
		d.formatRunParams(),
		elapsed.Round(time.Second),
		remain.Round(time.Second),
	)

	d.transferPara.Text = fmt.Sprintf(
		"Downloaded:   %s\nChunks:       %d\nAttempts:     %d\nFailures:     %d",
		humanize.Bytes(uint64(stats.BytesTotal)),
		stats.Chunks,
		stats.Attempts,
		stats.Failures,
	)

	d.latencyPara.Text = fmt.Sprintf(
		"Min:  %.2fms\nMean: %.2fms\nP50:  %.2fms\nP90:  %.2fms\nP99:  %.2fms",
		stats.MinReadMs,
		stats.MeanReadMs,
		stats.P50ReadMs,
		stats.P90ReadMs,
		stats.P99ReadMs,
	)

	d.errorList.Rows = formatErrorRows(stats.Errors)
}

func (d *Dashboard) render() {
	d.mu.Lock()
	defer d.mu.Unlock()

	ui.Render(d.grid)
}

func formatErrorRows(errors map[string]int) []string {
	if len(errors) == 0 {
		return []string{"[No failures](fg:green)"}
	}
	types := make([]string, 0, len(errors))
	for t := range errors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if errors[types[i]] == errors[types[j]] {
			return types[i] < types[j]
		}
		return errors[types[i]] > errors[types[j]]
	})
	if len(types) > 10 {
		types = types[:10]
	}
	rows := make([]string, 0, len(types))
	for _, t := range types {
		rows = append(rows, fmt.Sprintf("[%s](fg:red) x%d", t, errors[t]))
	}
	return rows
}

// formatRunParams formats the run configuration for display.
func (d *Dashboard) formatRunParams() string {
	var parts []string

	parts = append(parts, fmt.Sprintf("Target: %s/s", humanize.Bytes(uint64(d.runConfig.BytesPerSecond))))
	parts = append(parts, fmt.Sprintf("Sources: %d", d.runConfig.Sources))

	if d.runConfig.Duration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", d.runConfig.Duration.Round(time.Second)))
	}
	if d.runConfig.ChunkSize > 0 {
		parts = append(parts, fmt.Sprintf("Chunk: %s", humanize.Bytes(uint64(d.runConfig.ChunkSize))))
	}
	if d.runConfig.PaceModel != "" {
		parts = append(parts, fmt.Sprintf("Pacing: %s", d.runConfig.PaceModel))
	}
	if d.runConfig.StopFile != "" {
		parts = append(parts, fmt.Sprintf("Stop file: %s", d.runConfig.StopFile))
	}
	if d.runConfig.ConfigFile != "" {
		parts = append(parts, fmt.Sprintf("Config: %s", d.runConfig.ConfigFile))
	}

	return strings.Join(parts, " | ")
}
