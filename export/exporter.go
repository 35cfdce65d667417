package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"gitlab.com/tinyland/lab/pulse-view/dashboard"
	"gitlab.com/tinyland/lab/pulse-view/display/surface"
	"gitlab.com/tinyland/lab/pulse-view/transport"
)

// File names written per snapshot.
const (
	FileCPU         = "cpu.png"
	FileTemperature = "temperature.png"
	FileNetwork     = "network.png"
	FileFrame       = "frame.json"
)

// Options configures an Exporter.
type Options struct {
	Dashboard  dashboard.Config
	Width      int
	Height     int
	Oversample int
	Background string
	Logger     *slog.Logger
}

// Document is the content of frame.json.
type Document struct {
	dashboard.Frame
	UpdatedAt time.Time         `json:"updated_at"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Exporter drives a dashboard controller from transport events and writes
// every snapshot's charts and gauges to a Store.
type Exporter struct {
	store   *Store
	ctrl    *dashboard.Controller
	rasters map[string]*surface.Raster
	logger  *slog.Logger
	now     func() time.Time
	written int
}

// NewExporter creates an Exporter with rasters of opts.Width x opts.Height.
func NewExporter(store *Store, opts Options) *Exporter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Dashboard.Logger == nil {
		opts.Dashboard.Logger = logger
	}
	if opts.Width <= 0 {
		opts.Width = 600
	}
	if opts.Height <= 0 {
		opts.Height = 200
	}

	rasters := map[string]*surface.Raster{
		dashboard.MetricCPU:         surface.NewRaster(opts.Width, opts.Height, opts.Oversample, opts.Background),
		dashboard.MetricTemperature: surface.NewRaster(opts.Width, opts.Height, opts.Oversample, opts.Background),
		dashboard.MetricNetwork:     surface.NewRaster(opts.Width, opts.Height, opts.Oversample, opts.Background),
	}
	ctrl := dashboard.New(opts.Dashboard, dashboard.Targets{
		CPU:         rasters[dashboard.MetricCPU],
		Temperature: rasters[dashboard.MetricTemperature],
		Network:     rasters[dashboard.MetricNetwork],
	})

	return &Exporter{
		store:   store,
		ctrl:    ctrl,
		rasters: rasters,
		logger:  logger,
		now:     time.Now,
	}
}

// Controller returns the controller the exporter drives.
func (e *Exporter) Controller() *dashboard.Controller { return e.ctrl }

// Written returns the number of snapshots exported so far.
func (e *Exporter) Written() int { return e.written }

// Handle applies one event. Snapshots are exported; a failed write is
// returned but leaves the controller state updated. Per-metric update
// failures do not stop the export and are listed in frame.json.
func (e *Exporter) Handle(ev transport.Event) error {
	frame := e.ctrl.Apply(ev)
	if ev.Kind != transport.EventSnapshot {
		return nil
	}
	return e.write(frame)
}

// Run handles events until ctx is done or events is closed.
func (e *Exporter) Run(ctx context.Context, events <-chan transport.Event) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := e.Handle(ev); err != nil {
				e.logger.Warn("export failed", "error", err)
			}
		}
	}
}

func (e *Exporter) write(frame dashboard.Frame) error {
	files := []struct {
		metric string
		name   string
	}{
		{dashboard.MetricCPU, FileCPU},
		{dashboard.MetricTemperature, FileTemperature},
		{dashboard.MetricNetwork, FileNetwork},
	}

	var errs []error
	for _, f := range files {
		if err := e.store.WritePNG(f.name, e.rasters[f.metric].Image()); err != nil {
			errs = append(errs, err)
		}
	}

	doc := Document{Frame: frame, UpdatedAt: e.now().UTC()}
	if len(frame.Errors) > 0 {
		doc.Errors = make(map[string]string, len(frame.Errors))
		for metric, err := range frame.Errors {
			doc.Errors[metric] = err.Error()
		}
	}
	if err := e.store.WriteJSON(FileFrame, doc); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("export: snapshot %d: %w", e.written+1, err)
	}
	e.written++
	return nil
}
