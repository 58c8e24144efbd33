package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sysmon/internal/collector"
	"sysmon/internal/config"
	"sysmon/internal/display"
	"sysmon/internal/logger"
	"sysmon/internal/monitor"
	"sysmon/internal/reporter"
)

const version = "1.0.0"

func main() {
	var (
		configPath  string
		interval    string
		endpoint    string
		noDisplay   bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to optional config.yaml")
	flag.StringVar(&interval, "interval", "", "refresh interval in seconds")
	flag.StringVar(&interval, "i", "", "refresh interval in seconds (shorthand)")
	flag.StringVar(&endpoint, "endpoint", "", "URL receiving the snapshot JSON")
	flag.StringVar(&endpoint, "e", "", "URL receiving the snapshot JSON (shorthand)")
	flag.BoolVar(&noDisplay, "no-display", false, "suppress terminal output, only send data")
	flag.BoolVar(&showVersion, "version", false, "show version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("sysmon v%s\n", version)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.ApplyFlags(interval, endpoint, noDisplay)

	appLog := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mon := monitor.New(collector.New())
	rep := reporter.New(cfg.Endpoint, cfg.AgentID, cfg.Hostname, cfg.AuthSecret, appLog)

	var rend *display.Renderer
	if !cfg.NoDisplay {
		rend = display.New()
	}

	appLog.Info("sysmon starting",
		"interval", cfg.Interval(),
		"endpoint", cfg.Endpoint,
		"agent_id", cfg.AgentID,
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return run(gCtx, cfg, mon, rep, rend, appLog)
	})

	err = g.Wait()

	// Let an in-flight delivery finish; at most one can be lost.
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rep.Close(closeCtx)

	if err != nil && err != context.Canceled {
		appLog.Error("monitor stopped unexpectedly", "error", err)
		os.Exit(1)
	}

	appLog.Info("sysmon stopped")
}

func run(
	ctx context.Context,
	cfg *config.Config,
	mon *monitor.Monitor,
	rep *reporter.Reporter,
	rend *display.Renderer,
	log logger.Logger,
) error {
	// The first reading only establishes the baseline; nothing is emitted
	// until a second reading exists to rate against.
	if err := mon.Init(ctx); err != nil {
		return fmt.Errorf("init metrics source: %w", err)
	}

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			snap, err := mon.Tick(ctx)
			if err != nil {
				log.Error("tick skipped", "error", err)
				continue
			}

			rep.Report(snap)

			if rend != nil {
				rend.Render(snap)
			}
		}
	}
}
