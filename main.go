package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gr-butler/windmeter/config"
	"github.com/gr-butler/windmeter/connectivity"
	"github.com/gr-butler/windmeter/display"
	"github.com/gr-butler/windmeter/env"
	"github.com/gr-butler/windmeter/pipeline"
	"github.com/gr-butler/windmeter/scheduler"
	"github.com/gr-butler/windmeter/sensors"
	"github.com/gr-butler/windmeter/status"
	"github.com/gr-butler/windmeter/telemetry"
	"github.com/jonboulle/clockwork"
	logger "github.com/sirupsen/logrus"
)

const version = "GRB-Windmeter-1.0.0"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.Errorf("Bad configuration [%v]", err)
		logger.Exit(2)
	}
	if cfg.DumpConfig {
		if err := config.Dump(os.Stdout, cfg); err != nil {
			logger.Errorf("Failed to dump config [%v]", err)
			logger.Exit(1)
		}
		return
	}

	level, _ := logger.ParseLevel(cfg.LogLevel) // checked by config
	logger.SetLevel(level)

	hostname := env.Hostname(cfg.DeviceID)
	logger.Infof("Starting wind meter [%v] as [%v]", version, hostname)
	if cfg.Test {
		logger.Info("TEST MODE")
	}

	hw, err := sensors.Open(cfg.Hardware)
	if err != nil {
		logger.Errorf("Failed to initialise hardware!! [%v]", err)
		logger.Exit(1)
	}
	defer hw.Close()

	clock := clockwork.NewRealClock()
	renderer := display.NewRenderer(hw.Display)
	monitor := connectivity.NewMonitor(cfg.Connectivity, hw.ConnectionLed, clock)

	boot(renderer, monitor, clock, hw.TelemetryLed, hw.ConnectionLed)

	uploader, err := telemetry.NewUploader(cfg.Telemetry, hostname, cfg.Test)
	if err != nil {
		logger.Errorf("Failed to create uploader [%v]", err)
		logger.Exit(1)
	}
	if c, ok := uploader.(io.Closer); ok {
		defer c.Close()
	}

	// average and gust over one report interval
	store := pipeline.NewStore(int(cfg.Schedule.ReportInterval / cfg.Schedule.SampleInterval))
	p := pipeline.New(hw.Loop, renderer, cfg.Calibration, store, cfg.Debug.Sensor)
	reporter := telemetry.NewReporter(uploader, hw.TelemetryLed, cfg.Telemetry)
	server := status.NewServer(store, monitor, hostname, cfg.HTTP.Metrics, cfg.HTTP.Timeout, clock)
	sched := scheduler.New(p, reporter, monitor, server, cfg.Schedule, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := server.ListenAndServe(ctx, cfg.HTTP.Listen); err != nil {
			logger.Errorf("Status server failed [%v]", err)
		}
	}()

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("Scheduler stopped [%v]", err)
	}
	renderer.RenderText("")
	logger.Info("Wind meter stopped")
}
