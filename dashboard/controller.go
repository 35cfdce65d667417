// Package dashboard owns the metric windows and the rate estimator, turns
// incoming snapshots into buffer updates, and drives the gauge and chart
// renderers against injected drawing targets.
//
// A Controller is not safe for concurrent use. It is meant to be owned by a
// single event loop (the TUI update loop or the headless runner) that calls
// one handler at a time.
package dashboard

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/pulse-view/display/chart"
	"gitlab.com/tinyland/lab/pulse-view/display/gauge"
	"gitlab.com/tinyland/lab/pulse-view/display/surface"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

// Metric names used in logs and Frame error maps.
const (
	MetricCPU         = "cpu"
	MetricMemory      = "memory"
	MetricDisk        = "disk"
	MetricTemperature = "temperature"
	MetricNetwork     = "network"
)

// Colors are the series colors of the three charts.
type Colors struct {
	CPU         string `yaml:"cpu"`
	Temperature string `yaml:"temperature"`
	Rx          string `yaml:"rx"`
	Tx          string `yaml:"tx"`
}

// DefaultColors returns the stock chart palette.
func DefaultColors() Colors {
	return Colors{
		CPU:         "#667eea",
		Temperature: "#ff6b6b",
		Rx:          "#51cf66",
		Tx:          "#ff6b6b",
	}
}

// Config controls window sizes, rate units and rendering parameters.
type Config struct {
	// Capacity is the number of samples kept per chart.
	Capacity int
	// RateUnit divides byte deltas; the default reports MiB per interval.
	RateUnit float64
	// StaleAfter resets the rate estimator when consecutive snapshots are
	// further apart than this. Zero disables the check.
	StaleAfter time.Duration
	// Thresholds color the circular gauges.
	Thresholds gauge.Thresholds
	// Colors are the chart series colors.
	Colors Colors
	// Logger receives render and update failures. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns a Config matching the one-second reporting interval.
func DefaultConfig() Config {
	return Config{
		Capacity:   metrics.DefaultWindowCapacity,
		RateUnit:   metrics.MiB,
		StaleAfter: 10 * time.Second,
		Thresholds: gauge.DefaultThresholds(),
		Colors:     DefaultColors(),
	}
}

// Targets are the drawing surfaces of the three charts. A nil target is
// skipped like any other unavailable surface.
type Targets struct {
	CPU         surface.Surface
	Temperature surface.Surface
	Network     surface.Surface
}

// Gauges holds the latest gauge parameters.
type Gauges struct {
	CPU         gauge.CircularGauge `json:"cpu"`
	Memory      gauge.CircularGauge `json:"memory"`
	Disk        gauge.CircularGauge `json:"disk"`
	Temperature gauge.LinearFill    `json:"temperature"`
}

// Frame is what the display layer needs after a handler ran: gauge
// parameters, the snapshot they came from, the connection state, and the
// per-metric failures of this pass.
type Frame struct {
	Snapshot   *metrics.Snapshot       `json:"snapshot,omitempty"`
	Gauges     Gauges                  `json:"gauges"`
	Connection metrics.ConnectionState `json:"-"`
	Status     string                  `json:"status"`
	Errors     map[string]error        `json:"-"`
}

// Controller holds all buffered dashboard state.
type Controller struct {
	cfg    Config
	logger *slog.Logger
	ring   gauge.Ring

	cpu         *metrics.Window[float64]
	temperature *metrics.Window[float64]
	rates       *metrics.Window[metrics.RateSample]
	estimator   *metrics.RateEstimator

	targets Targets
	visible bool

	last   *metrics.Snapshot
	gauges Gauges
	state  metrics.ConnectionState
}

// New creates a Controller with empty windows drawing into targets.
func New(cfg Config, targets Targets) *Controller {
	if cfg.Capacity < 2 {
		cfg.Capacity = metrics.DefaultWindowCapacity
	}
	if cfg.Thresholds == (gauge.Thresholds{}) {
		cfg.Thresholds = gauge.DefaultThresholds()
	}
	defaults := DefaultColors()
	if cfg.Colors.CPU == "" {
		cfg.Colors.CPU = defaults.CPU
	}
	if cfg.Colors.Temperature == "" {
		cfg.Colors.Temperature = defaults.Temperature
	}
	if cfg.Colors.Rx == "" {
		cfg.Colors.Rx = defaults.Rx
	}
	if cfg.Colors.Tx == "" {
		cfg.Colors.Tx = defaults.Tx
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Controller{
		cfg:         cfg,
		logger:      logger,
		ring:        gauge.Ring{Radius: gauge.DefaultRadius, Thresholds: cfg.Thresholds},
		cpu:         metrics.NewWindow[float64](cfg.Capacity),
		temperature: metrics.NewWindow[float64](cfg.Capacity),
		rates:       metrics.NewWindow[metrics.RateSample](cfg.Capacity),
		estimator:   metrics.NewRateEstimator(cfg.RateUnit),
		targets:     targets,
		visible:     true,
		state:       metrics.StateConnecting,
	}
}

// OnSnapshot folds one snapshot into the windows, recomputes the gauges,
// and redraws the charts. Each metric is handled in isolation: a failure in
// one is logged and recorded in Frame.Errors while the rest proceed.
func (c *Controller) OnSnapshot(s metrics.Snapshot) Frame {
	errs := make(map[string]error)
	run := func(metric string, fn func() error) {
		if err := c.isolate(metric, fn); err != nil {
			errs[metric] = err
		}
	}

	if c.staleGap(s) {
		c.logger.Debug("snapshot gap exceeds stale window, resetting rate estimator",
			"gap", s.Timestamp.Sub(c.last.Timestamp),
		)
		c.estimator.Reset()
	}
	snap := s
	c.last = &snap

	// Buffers first.
	run(MetricCPU, func() error { return pushSample(c.cpu, s.CPUPercent) })
	run(MetricTemperature, func() error { return pushSample(c.temperature, s.TemperatureCelsius) })
	run(MetricNetwork, func() error {
		if sample, ok := c.estimator.Observe(s.NetworkRxBytes, s.NetworkTxBytes); ok {
			c.rates.Push(sample)
		}
		return nil
	})

	// Gauges: cpu, memory, disk, temperature.
	run(MetricCPU, func() error { return c.setCircular(&c.gauges.CPU, s.CPUPercent) })
	run(MetricMemory, func() error { return c.setCircular(&c.gauges.Memory, s.MemoryPercent) })
	run(MetricDisk, func() error { return c.setCircular(&c.gauges.Disk, s.DiskPercent) })
	run(MetricTemperature, func() error {
		v, ok := metrics.Sanitize(s.TemperatureCelsius)
		if !ok {
			return ErrNonFinite
		}
		c.gauges.Temperature = gauge.RenderLinearFill(v)
		return nil
	})

	// Charts: cpu, temperature, network.
	if c.visible {
		for metric, err := range c.drawCharts() {
			if _, seen := errs[metric]; !seen {
				errs[metric] = err
			}
		}
	}

	return c.frame(errs)
}

// OnConnectionStateChange records the connection state for the status
// indicator. Buffers are not touched.
func (c *Controller) OnConnectionStateChange(state metrics.ConnectionState) Frame {
	if state != c.state {
		c.logger.Info("connection state changed", "from", c.state.String(), "state", state.String())
	}
	c.state = state
	return c.frame(nil)
}

// OnStreamReset forgets the previous counter pair so the first snapshot of
// a new connection does not produce a rate spanning the outage.
func (c *Controller) OnStreamReset() {
	c.estimator.Reset()
}

// OnViewportChange redraws every chart from buffered data. Call it after the
// targets changed size.
func (c *Controller) OnViewportChange() Frame {
	if !c.visible {
		return c.frame(nil)
	}
	return c.frame(c.drawCharts())
}

// OnVisibilityRestore marks the dashboard visible again and redraws.
func (c *Controller) OnVisibilityRestore() Frame {
	c.visible = true
	return c.frame(c.drawCharts())
}

// OnVisibilityLost pauses chart drawing. Snapshots keep updating the windows
// and gauges while hidden.
func (c *Controller) OnVisibilityLost() {
	c.visible = false
}

// SetTargets swaps the drawing targets, typically after the layout changed.
// It does not redraw; follow it with OnViewportChange.
func (c *Controller) SetTargets(t Targets) {
	c.targets = t
}

// Targets returns the current drawing targets.
func (c *Controller) Targets() Targets { return c.targets }

// Visible reports whether charts are being drawn.
func (c *Controller) Visible() bool { return c.visible }

// Frame returns the current display state without changing anything.
func (c *Controller) Frame() Frame { return c.frame(nil) }

// CPUValues returns the buffered CPU series, oldest first.
func (c *Controller) CPUValues() []float64 { return c.cpu.Values() }

// TemperatureValues returns the buffered temperature series, oldest first.
func (c *Controller) TemperatureValues() []float64 { return c.temperature.Values() }

// RateValues returns the buffered network rate samples, oldest first.
func (c *Controller) RateValues() []metrics.RateSample { return c.rates.Values() }

// Capacity returns the window capacity charts are scaled against.
func (c *Controller) Capacity() int { return c.cfg.Capacity }

// Colors returns the chart series colors in use.
func (c *Controller) Colors() Colors { return c.cfg.Colors }

// ErrNonFinite is recorded when a snapshot field is NaN or infinite. The
// sample is dropped and the previous gauge value stays.
var ErrNonFinite = errors.New("dashboard: non-finite metric value")

func (c *Controller) drawCharts() map[string]error {
	errs := make(map[string]error)
	draws := []struct {
		metric string
		fn     func() error
	}{
		{MetricCPU, func() error {
			return chart.RenderLine(c.targets.CPU, c.cpu.Values(), c.cfg.Colors.CPU, c.cfg.Capacity)
		}},
		{MetricTemperature, func() error {
			return chart.RenderLine(c.targets.Temperature, c.temperature.Values(), c.cfg.Colors.Temperature, c.cfg.Capacity)
		}},
		{MetricNetwork, func() error {
			rx, tx := metrics.SplitRates(c.rates.Values())
			return chart.RenderDualSeries(c.targets.Network, rx, tx, c.cfg.Colors.Rx, c.cfg.Colors.Tx, c.cfg.Capacity)
		}},
	}
	for _, d := range draws {
		err := c.isolate(d.metric, d.fn)
		switch {
		case err == nil:
		case errors.Is(err, chart.ErrSurfaceUnavailable):
			// Zero-sized or missing target; the next event retries.
			c.logger.Debug("chart skipped", "metric", d.metric, "error", err)
			errs[d.metric] = err
		default:
			errs[d.metric] = err
		}
	}
	return errs
}

func (c *Controller) setCircular(dst *gauge.CircularGauge, percent float64) error {
	v, ok := metrics.Sanitize(percent)
	if !ok {
		return ErrNonFinite
	}
	*dst = c.ring.Render(v)
	return nil
}

func pushSample(w *metrics.Window[float64], v float64) error {
	v, ok := metrics.Sanitize(v)
	if !ok {
		return ErrNonFinite
	}
	w.Push(v)
	return nil
}

// isolate runs fn and converts a panic into an error so one metric cannot
// take down the rest of the pass.
func (c *Controller) isolate(metric string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("dashboard: %s: panic: %v", metric, r)
		}
		if err != nil && !errors.Is(err, chart.ErrSurfaceUnavailable) {
			c.logger.Warn("metric update failed", "metric", metric, "error", err)
		}
	}()
	return fn()
}

func (c *Controller) staleGap(s metrics.Snapshot) bool {
	if c.cfg.StaleAfter <= 0 || c.last == nil {
		return false
	}
	prev, cur := c.last.TimestampMillis(), s.TimestampMillis()
	if prev == 0 || cur == 0 {
		return false
	}
	return time.Duration(cur-prev)*time.Millisecond > c.cfg.StaleAfter
}

func (c *Controller) frame(errs map[string]error) Frame {
	if len(errs) == 0 {
		errs = nil
	}
	return Frame{
		Snapshot:   c.last,
		Gauges:     c.gauges,
		Connection: c.state,
		Status:     c.state.String(),
		Errors:     errs,
	}
}
