package sysmetrics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"

	"gitlab.com/tinyland/lab/pulse-view/collectors"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
)

const samplerName = "sysmetrics"

// ErrNoReadings is returned when every source failed.
var ErrNoReadings = errors.New("sysmetrics: no readings available")

// Sampler reads host metrics. CPU usage is measured between consecutive
// calls, so the first sample reports usage since boot.
type Sampler struct {
	logger   *slog.Logger
	diskPath string
	now      func() time.Time

	// Overridable sources for testing.
	readCPU      cpuFunc
	readMem      memFunc
	readDisk     diskFunc
	readTemps    tempFunc
	readNet      netFunc
	readUptime   uptimeFunc
	readLoad     loadFunc
	numGoroutine routineFunc

	// Last good network counters, repeated when a read fails so clients
	// never see the cumulative counters drop to zero.
	mu     sync.Mutex
	lastRx uint64
	lastTx uint64
}

// NewSampler creates a sampler reporting disk usage for diskPath ("/" when
// empty). If logger is nil, a no-op logger is used.
func NewSampler(diskPath string, logger *slog.Logger) *Sampler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if diskPath == "" {
		diskPath = "/"
	}
	s := &Sampler{
		logger:       logger,
		diskPath:     diskPath,
		now:          time.Now,
		numGoroutine: runtime.NumGoroutine,
	}
	s.bindHost()
	return s
}

// bindHost points every source at gopsutil.
func (s *Sampler) bindHost() {
	s.readCPU = func(ctx context.Context) (float64, error) {
		pcts, err := cpu.PercentWithContext(ctx, 0, false)
		if err != nil {
			return 0, err
		}
		if len(pcts) == 0 {
			return 0, errors.New("no cpu readings")
		}
		return pcts[0], nil
	}
	s.readMem = func(ctx context.Context) (uint64, uint64, float64, error) {
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return 0, 0, 0, err
		}
		return vm.Used, vm.Total, vm.UsedPercent, nil
	}
	s.readDisk = func(ctx context.Context, path string) (uint64, uint64, float64, error) {
		u, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			return 0, 0, 0, err
		}
		return u.Used, u.Total, u.UsedPercent, nil
	}
	s.readTemps = func(ctx context.Context) ([]Sensor, error) {
		temps, err := host.SensorsTemperaturesWithContext(ctx)
		// Partial results come with a warnings error; keep what was read.
		out := make([]Sensor, 0, len(temps))
		for _, t := range temps {
			out = append(out, Sensor{Key: t.SensorKey, Celsius: t.Temperature})
		}
		if len(out) > 0 {
			return out, nil
		}
		return nil, err
	}
	s.readNet = func(ctx context.Context) (uint64, uint64, error) {
		counters, err := net.IOCountersWithContext(ctx, false)
		if err != nil {
			return 0, 0, err
		}
		var rx, tx uint64
		for _, c := range counters {
			rx += c.BytesRecv
			tx += c.BytesSent
		}
		return rx, tx, nil
	}
	s.readUptime = func(ctx context.Context) (uint64, error) {
		return host.UptimeWithContext(ctx)
	}
	s.readLoad = func(ctx context.Context) (float64, error) {
		avg, err := load.AvgWithContext(ctx)
		if err != nil {
			return 0, err
		}
		return avg.Load1, nil
	}
}

// Name returns the sampler's identifier.
func (s *Sampler) Name() string { return samplerName }

// Sample reads every source once. A failing source leaves its fields at
// zero and is logged; the sample fails only when nothing could be read.
// Network counters are the exception: a failed read repeats the last good
// counters, so the failure shows as a zero rate instead of a spike.
func (s *Sampler) Sample(ctx context.Context) (metrics.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return metrics.Snapshot{}, err
	}

	snap := metrics.Snapshot{Timestamp: s.now()}
	var failed []error
	note := func(source string, err error) {
		failed = append(failed, fmt.Errorf("%s: %w", source, err))
		s.logger.Debug("source unavailable", "source", source, "error", err)
	}

	if v, err := s.readCPU(ctx); err != nil {
		note("cpu", err)
	} else {
		snap.CPUPercent = v
	}
	if used, total, pct, err := s.readMem(ctx); err != nil {
		note("memory", err)
	} else {
		snap.MemoryUsedBytes, snap.MemoryTotalBytes, snap.MemoryPercent = used, total, pct
	}
	if used, total, pct, err := s.readDisk(ctx, s.diskPath); err != nil {
		note("disk", err)
	} else {
		snap.DiskUsedBytes, snap.DiskTotalBytes, snap.DiskPercent = used, total, pct
	}
	if sensors, err := s.readTemps(ctx); err != nil {
		note("temperature", err)
	} else {
		snap.TemperatureCelsius = PickTemperature(sensors)
	}
	if rx, tx, err := s.readNet(ctx); err != nil {
		note("network", err)
		snap.NetworkRxBytes, snap.NetworkTxBytes = s.lastNet()
	} else {
		snap.NetworkRxBytes, snap.NetworkTxBytes = rx, tx
		s.storeNet(rx, tx)
	}
	if up, err := s.readUptime(ctx); err != nil {
		note("uptime", err)
	} else {
		snap.UptimeSeconds = up
	}
	if l, err := s.readLoad(ctx); err != nil {
		note("load", err)
	} else {
		snap.LoadAverage = l
	}
	snap.ConcurrencyCount = s.numGoroutine()

	if len(failed) == 7 {
		return metrics.Snapshot{}, fmt.Errorf("%w: %w", ErrNoReadings, errors.Join(failed...))
	}

	s.logger.Debug("sampled",
		"cpu", fmt.Sprintf("%.1f%%", snap.CPUPercent),
		"mem", fmt.Sprintf("%.1f%%", snap.MemoryPercent),
		"disk", fmt.Sprintf("%.1f%%", snap.DiskPercent),
		"temp", snap.TemperatureCelsius,
		"failed", len(failed),
	)
	return snap, nil
}

func (s *Sampler) lastNet() (rx, tx uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRx, s.lastTx
}

func (s *Sampler) storeNet(rx, tx uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRx, s.lastTx = rx, tx
}

// Compile-time interface compliance check.
var _ collectors.Sampler = (*Sampler)(nil)
