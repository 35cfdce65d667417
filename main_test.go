package main

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"gitlab.com/tinyland/lab/pulse-view/dashboard"
	"gitlab.com/tinyland/lab/pulse-view/display/color"
	"gitlab.com/tinyland/lab/pulse-view/display/render"
	"gitlab.com/tinyland/lab/pulse-view/display/tui"
	"gitlab.com/tinyland/lab/pulse-view/metrics"
	"gitlab.com/tinyland/lab/pulse-view/transport"
)

func TestMain(m *testing.M) {
	color.ForceDisable()
	os.Exit(m.Run())
}

func queue(n int) chan transport.Event {
	events := make(chan transport.Event, n+3)
	events <- transport.Event{Kind: transport.EventState, State: metrics.StateConnected}
	events <- transport.Event{Kind: transport.EventStreamReset}
	for i := range n {
		events <- transport.Event{Kind: transport.EventSnapshot, Snapshot: metrics.Snapshot{
			Timestamp:          time.Unix(1700000000+int64(i), 0),
			CPUPercent:         float64(30 + i),
			MemoryPercent:      45,
			MemoryUsedBytes:    512 << 20,
			MemoryTotalBytes:   1024 << 20,
			DiskPercent:        70,
			TemperatureCelsius: 52,
			NetworkRxBytes:     uint64(i) << 20,
			NetworkTxBytes:     uint64(i) << 18,
			UptimeSeconds:      3700,
			LoadAverage:        1.5,
		}}
	}
	return events
}

func testOptions(withColor bool) onceOptions {
	return onceOptions{
		Dashboard:  dashboard.DefaultConfig(),
		Samples:    3,
		Width:      60,
		Height:     26,
		Color:      withColor,
		Oversample: 1,
		Theme:      tui.DefaultTheme,
		Source:     "local",
		Protocol:   render.ProtocolUnicode,
	}
}

func TestRunOnce_SparklineFallback(t *testing.T) {
	var out strings.Builder
	if err := runOnce(context.Background(), &out, queue(3), testOptions(false)); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{
		"pulse-view · local",
		"Connected",
		" 32%",
		"DISK",
		" 52°C",
		"Network (rx/tx)",
		"MEM 512 MiB/1024 MiB",
		"UP 1h 1m",
		"LOAD 1.50",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "▀") {
		t.Error("expected no half-block output without color")
	}
}

func TestRunOnce_HalfBlock(t *testing.T) {
	var out strings.Builder
	if err := runOnce(context.Background(), &out, queue(3), testOptions(true)); err != nil {
		t.Fatal(err)
	}
	// 60 columns per chart row.
	if n := strings.Count(out.String(), "▀"); n < 60*3 {
		t.Errorf("expected half-block charts, got %d cells", n)
	}
}

func TestRunOnce_KittyProtocol(t *testing.T) {
	opts := testOptions(true)
	opts.Protocol = render.ProtocolKitty
	var out strings.Builder
	if err := runOnce(context.Background(), &out, queue(3), opts); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "\033_Gf=100"); n != 3 {
		t.Errorf("expected three kitty images, got %d", n)
	}
}

func TestRunOnce_NotEnoughSamples(t *testing.T) {
	opts := testOptions(false)
	opts.Samples = 1
	var out strings.Builder
	if err := runOnce(context.Background(), &out, queue(1), opts); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(out.String(), "(not enough samples)"); n != 3 {
		t.Errorf("expected three placeholders, got %d", n)
	}
}

func TestRunOnce_StreamClosed(t *testing.T) {
	events := queue(1)
	close(events)
	err := runOnce(context.Background(), &strings.Builder{}, events, testOptions(false))
	if !errors.Is(err, errStreamClosed) {
		t.Errorf("expected errStreamClosed, got %v", err)
	}
}

func TestRunOnce_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runOnce(ctx, &strings.Builder{}, make(chan transport.Event), testOptions(false))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
