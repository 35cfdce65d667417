// pulse-view is a live terminal dashboard for a system metrics stream.
//
// It connects to a pulse-agent websocket (or samples the local host),
// keeps a sliding window of recent samples, and renders gauges plus CPU,
// temperature and network charts.
//
// Usage:
//
//	pulse-view [flags]
//
// Flags:
//
//	-config string   Path to configuration file (default: ~/.config/pulse-view/config.yaml)
//	-url string      Websocket endpoint override (default from config or PULSE_URL)
//	-local           Sample this host instead of connecting to an agent
//	-export string   Headless: write chart PNGs and frame.json to this directory
//	-once            Headless: print one rendered frame and exit
//	-samples int     Snapshots to collect before -once prints (default 3)
//	-verbose         Enable debug logging
//	-version         Print version and exit
//	-man             Print man page to stdout in roff format
//	-man-dir string  Write all man pages to directory (e.g., /usr/share/man)
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/pulse-view/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulse-view/config"
	"gitlab.com/tinyland/lab/pulse-view/display/color"
	"gitlab.com/tinyland/lab/pulse-view/display/render"
	"gitlab.com/tinyland/lab/pulse-view/display/tui"
	"gitlab.com/tinyland/lab/pulse-view/docs/manpage"
	"gitlab.com/tinyland/lab/pulse-view/export"
	"gitlab.com/tinyland/lab/pulse-view/internal/logging"
	"gitlab.com/tinyland/lab/pulse-view/transport"
)

// eventBuffer is the capacity of the channel between the source and the
// goroutine that owns the dashboard.
const eventBuffer = 64

// source is a snapshot stream: a websocket client or the local sampler.
type source interface {
	Run(ctx context.Context) error
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.config/pulse-view/config.yaml)")
		urlFlag     = flag.String("url", "", "Websocket endpoint override")
		local       = flag.Bool("local", false, "Sample this host instead of connecting to an agent")
		exportDir   = flag.String("export", "", "Headless: write chart PNGs and frame.json to this directory")
		once        = flag.Bool("once", false, "Headless: print one rendered frame and exit")
		samples     = flag.Int("samples", 3, "Snapshots to collect before -once prints")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
		showMan     = flag.Bool("man", false, "Print man page to stdout in roff format")
		manDir      = flag.String("man-dir", "", "Write all man pages to directory (e.g., /usr/share/man)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pulse-view %s (%s) built %s\n", version, commit, date)
		os.Exit(0)
	}

	if *showMan {
		fmt.Print(manpage.Generate(version, commit, date))
		os.Exit(0)
	}

	if *manDir != "" {
		n, err := manpage.WriteAll(*manDir, version, commit, date)
		if err != nil {
			fmt.Fprintf(os.Stderr, "man page generation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "wrote %d man pages to %s\n", n, *manDir)
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// Configuration
	// ---------------------------------------------------------------

	path := *configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
		os.Exit(1)
	}
	if *urlFlag != "" {
		cfg.Server.URL = *urlFlag
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	if *once && *samples < 1 {
		fmt.Fprintln(os.Stderr, "-samples must be at least 1")
		os.Exit(1)
	}

	colorOn := color.Apply(cfg.Display.Color)

	// ---------------------------------------------------------------
	// Logging: headless modes log to stderr, the TUI to a file.
	// ---------------------------------------------------------------

	headless := *exportDir != "" || *once
	logger := logging.New(os.Stderr, cfg.Log.Level, *verbose)
	if !headless {
		logger = logging.Discard()
		if cfg.Log.File != "" {
			f, err := logging.OpenFile(cfg.Log.File)
			if err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v (logging disabled)\n", err)
			} else {
				defer f.Close()
				logger = logging.New(f, cfg.Log.Level, *verbose)
			}
		}
	}
	slog.SetDefault(logger)

	// ---------------------------------------------------------------
	// Context with signal handling
	// ---------------------------------------------------------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// ---------------------------------------------------------------
	// Snapshot source
	// ---------------------------------------------------------------

	events := transport.NewEvents(eventBuffer)
	var src source
	label := cfg.Server.URL
	if *local {
		label = "local"
		sampler := sysmetrics.NewSampler(cfg.Agent.DiskPath, logger.With("component", "sampler"))
		src = transport.NewLocal(sampler, cfg.SampleInterval(), logger.With("component", "local"), events)
	} else {
		src = transport.New(transport.Options{
			URL:      cfg.Server.URL,
			Retry:    cfg.RetryPolicy(),
			PongWait: cfg.PongWait(),
			Logger:   logger.With("component", "transport"),
		}, events)
	}
	go func() {
		if err := src.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("source stopped", "error", err)
		}
	}()

	dash := cfg.DashboardConfig()
	dash.Logger = logger.With("component", "dashboard")

	// ---------------------------------------------------------------
	// Export mode
	// ---------------------------------------------------------------

	if *exportDir != "" {
		store, err := export.NewStore(*exportDir, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			os.Exit(1)
		}
		exporter := export.NewExporter(store, export.Options{
			Dashboard:  dash,
			Width:      cfg.Display.ExportWidth,
			Height:     cfg.Display.ExportHeight,
			Oversample: cfg.Display.Oversample,
			Background: string(tui.GetThemePreset(cfg.Display.Theme).Palette.Background),
			Logger:     logger,
		})
		logger.Info("exporting", "dir", store.Dir(), "source", label)
		if err := exporter.Run(ctx, events); err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			os.Exit(1)
		}
		logger.Info("export stopped", "snapshots", exporter.Written())
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// One-shot mode
	// ---------------------------------------------------------------

	if *once {
		opts := onceOptions{
			Dashboard:  dash,
			Samples:    *samples,
			Color:      colorOn,
			Oversample: cfg.Display.Oversample,
			Theme:      tui.GetThemePreset(cfg.Display.Theme),
			Source:     label,
			Protocol:   render.Detect(),
		}
		opts.Width, opts.Height = terminalSize()
		if err := runOnce(ctx, os.Stdout, events, opts); err != nil {
			fmt.Fprintf(os.Stderr, "pulse-view: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// ---------------------------------------------------------------
	// TUI mode
	// ---------------------------------------------------------------

	defer func() {
		if r := recover(); r != nil {
			// Attempt to restore terminal from alt-screen before printing error.
			fmt.Print("\x1b[?1049l\x1b[?25h")
			fmt.Fprintf(os.Stderr, "pulse-view: TUI panic: %v\n", r)
			os.Exit(1)
		}
	}()

	model := tui.NewModel(tui.Options{
		Dashboard:  dash,
		Events:     events,
		Theme:      tui.GetThemePreset(cfg.Display.Theme),
		Color:      colorOn,
		Oversample: cfg.Display.Oversample,
		Source:     label,
		Logger:     logger,
	})
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		os.Exit(1)
	}
}
