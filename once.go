package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"

	"gitlab.com/tinyland/lab/pulse-view/dashboard"
	"gitlab.com/tinyland/lab/pulse-view/display/render"
	"gitlab.com/tinyland/lab/pulse-view/display/surface"
	"gitlab.com/tinyland/lab/pulse-view/display/tui"
	"gitlab.com/tinyland/lab/pulse-view/display/widgets"
	"gitlab.com/tinyland/lab/pulse-view/internal/format"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
	"gitlab.com/tinyland/lab/pulse-view/transport"
)

// errStreamClosed is returned when the source stops before enough
// snapshots arrived.
var errStreamClosed = errors.New("stream closed before enough snapshots arrived")

// Pixels per terminal cell assumed when sizing rasters for inline image
// protocols.
const (
	cellPixelWidth  = 8
	cellPixelHeight = 16
)

type onceOptions struct {
	Dashboard  dashboard.Config
	Samples    int
	Width      int
	Height     int
	Color      bool
	Oversample int
	Theme      tui.ThemePreset
	Source     string
	Protocol   render.Protocol
}

// terminalSize returns the size of stdout, or 80x24 when it is not a
// terminal.
func terminalSize() (int, int) {
	w, h, err := term.GetSize(os.Stdout.Fd())
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// runOnce applies events until opts.Samples snapshots arrived, then writes
// one rendered frame to w.
func runOnce(ctx context.Context, w io.Writer, events <-chan transport.Event, opts onceOptions) error {
	cols := max(opts.Width, 20)
	chartRows := max((opts.Height-8)/3, 3)

	pw, ph := cols, chartRows*2
	if opts.Protocol != render.ProtocolUnicode {
		pw, ph = cols*cellPixelWidth, chartRows*cellPixelHeight
	}
	bg := string(opts.Theme.Palette.Background)
	rasters := map[string]*surface.Raster{
		dashboard.MetricCPU:         surface.NewRaster(pw, ph, opts.Oversample, bg),
		dashboard.MetricTemperature: surface.NewRaster(pw, ph, opts.Oversample, bg),
		dashboard.MetricNetwork:     surface.NewRaster(pw, ph, opts.Oversample, bg),
	}
	var targets dashboard.Targets
	if opts.Color {
		targets = dashboard.Targets{
			CPU:         rasters[dashboard.MetricCPU],
			Temperature: rasters[dashboard.MetricTemperature],
			Network:     rasters[dashboard.MetricNetwork],
		}
	}
	ctrl := dashboard.New(opts.Dashboard, targets)

	frame := ctrl.Frame()
	for seen := 0; seen < opts.Samples; {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return errStreamClosed
			}
			frame = ctrl.Apply(ev)
			if ev.Kind == transport.EventSnapshot {
				seen++
			}
		}
	}

	return writeFrame(w, ctrl, frame, rasters, opts, cols, chartRows)
}

func writeFrame(w io.Writer, ctrl *dashboard.Controller, frame dashboard.Frame, rasters map[string]*surface.Raster, opts onceOptions, cols, rows int) error {
	p := opts.Theme.Palette
	title := lipgloss.NewStyle().Bold(true).Foreground(p.Accent)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", title.Render("pulse-view · "+opts.Source), widgets.RenderConnection(frame.Connection, p))

	gw := min(max(cols-13, 5), 40)
	g := frame.Gauges
	fmt.Fprintln(&b, widgets.CircularBar("CPU ", g.CPU, gw, p))
	fmt.Fprintln(&b, widgets.CircularBar("MEM ", g.Memory, gw, p))
	fmt.Fprintln(&b, widgets.CircularBar("DISK", g.Disk, gw, p))
	fmt.Fprintln(&b, widgets.TemperatureBar("TEMP", g.Temperature, opts.Dashboard.Thresholds, gw, p))

	colors := ctrl.Colors()
	rx, tx := metrics.SplitRates(ctrl.RateValues())
	charts := []struct {
		metric string
		title  string
		values []float64
	}{
		{dashboard.MetricCPU, "CPU", ctrl.CPUValues()},
		{dashboard.MetricTemperature, "Temperature", ctrl.TemperatureValues()},
		{dashboard.MetricNetwork, "Network (rx/tx)", rx},
	}
	for _, c := range charts {
		fmt.Fprintln(&b, title.Render(c.title))
		if len(c.values) < 2 {
			fmt.Fprintln(&b, "(not enough samples)")
			continue
		}
		if opts.Color {
			out, err := render.Encode(rasters[c.metric].Image(), opts.Protocol, cols, rows)
			if err == nil {
				fmt.Fprintln(&b, out)
				continue
			}
		}
		switch c.metric {
		case dashboard.MetricNetwork:
			fmt.Fprintln(&b, widgets.RenderDualFallback(rx, tx, cols, lipgloss.Color(colors.Rx), lipgloss.Color(colors.Tx)))
		case dashboard.MetricCPU:
			fmt.Fprintln(&b, widgets.RenderChartFallback(c.values, cols, lipgloss.Color(colors.CPU)))
		default:
			fmt.Fprintln(&b, widgets.RenderChartFallback(c.values, cols, lipgloss.Color(colors.Temperature)))
		}
	}

	if s := frame.Snapshot; s != nil {
		fmt.Fprintf(&b, "MEM %s/%s  DISK %s/%s  NET ↓%s ↑%s  UP %s  LOAD %.2f\n",
			format.MiB(s.MemoryUsedBytes), format.MiB(s.MemoryTotalBytes),
			format.GiB(s.DiskUsedBytes), format.GiB(s.DiskTotalBytes),
			format.Bytes(s.NetworkRxBytes), format.Bytes(s.NetworkTxBytes),
			format.Uptime(s.UptimeSeconds), s.LoadAverage)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
