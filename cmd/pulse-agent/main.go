// pulse-agent samples this host and streams snapshots to pulse-view
// clients over a websocket.
//
// Usage:
//
//	pulse-agent [flags]
//
// Flags:
//
//	-config string   Path to configuration file (default: ~/.config/pulse-view/config.yaml)
//	-listen string   Listen address or bare port (default from config or PORT)
//	-verbose         Enable debug logging
//	-version         Print version and exit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"gitlab.com/tinyland/lab/pulse-view/agent"
	"gitlab.com/tinyland/lab/pulse-view/collectors/sysmetrics"
	"gitlab.com/tinyland/lab/pulse-view/config"
	"gitlab.com/tinyland/lab/pulse-view/internal/logging"
)

var version = "0.3.0"

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		listen      = flag.String("listen", "", "Listen address or bare port")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
		showVersion = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pulse-agent %s\n", version)
		os.Exit(0)
	}

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
	if *listen != "" {
		cfg.Agent.Listen = *listen
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, cfg.Log.Level, *verbose)
	if !*verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sampler := sysmetrics.NewSampler(cfg.Agent.DiskPath, logger.With("component", "sampler"))
	srv := agent.NewServer(sampler, cfg.SampleInterval(), logger.With("component", "agent"))

	addr := agent.NormalizeAddr(cfg.Agent.Listen)
	logger.Info("pulse-agent starting", "addr", addr, "interval", cfg.SampleInterval(), "version", version)
	if err := srv.Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("agent stopped", "error", err)
		os.Exit(1)
	}
}
