// Command driveguard runs the driver distraction monitoring daemon:
// paced webcam capture, face landmark classification, time-integrated
// distraction scoring, and escalating alerts.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"driveguard/internal/config"
	"driveguard/internal/log"
	"driveguard/pkg/alert"
	"driveguard/pkg/analysis"
	"driveguard/pkg/capture"
	"driveguard/pkg/capture/webcam"
	"driveguard/pkg/hub"
	"driveguard/pkg/metrics"
	"driveguard/pkg/monitor"
	"driveguard/pkg/vision"
	"driveguard/pkg/vision/facemesh"
	"driveguard/pkg/web"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *writeConfig {
		if err := config.Save(config.Default(), *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("wrote default configuration to %s\n", *configPath)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.LogLevel
	if *debug {
		level = "debug"
	}
	log.Init(level)
	log.Info("driveguard starting",
		"config", *configPath,
		"device", cfg.Camera.Device,
		"target_fps", cfg.Camera.TargetFPS,
		"web", cfg.Web.Enabled,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Info("shutdown signal received", "signal", sig.String())
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		log.Error("daemon failed", "err", err)
		os.Exit(1)
	}
	log.Info("driveguard stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Capture side.
	source, err := webcam.Open(webcam.Config{
		Device: cfg.Camera.Device,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
	})
	if err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer source.Close()

	var transform capture.Transform
	if cfg.Camera.Recompress {
		transform = webcam.Recompress(cfg.Camera.RecompressQuality)
	}

	buffer := capture.NewFrameBuffer()
	pacer := capture.NewPacer(capture.PacerConfig{
		Interval:  cfg.Camera.FrameInterval(),
		FrameSkip: cfg.Camera.FrameSkip,
		Transform: transform,
	}, source, buffer)

	// Vision side.
	detector, err := facemesh.New(facemesh.Config{ModelPath: cfg.Vision.ModelPath})
	if err != nil {
		return fmt.Errorf("load landmark model: %w", err)
	}
	defer detector.Close()

	classifier := vision.NewClassifier(vision.Config{
		YawThreshold:   cfg.Vision.YawThreshold,
		PitchThreshold: cfg.Vision.PitchThreshold,
		RollThreshold:  cfg.Vision.RollThreshold,
		GazeXThreshold: cfg.Vision.GazeXThreshold,
		GazeYThreshold: cfg.Vision.GazeYThreshold,
	})

	analyzer := analysis.NewAnalyzer(analysis.Config{
		Thresholds: analysis.Thresholds{
			Warning:  cfg.Analysis.WarningThreshold,
			Critical: cfg.Analysis.CriticalThreshold,
			Severe:   cfg.Analysis.SevereThreshold,
		},
		HistoryWindow: cfg.Analysis.HistoryWindow(),
		MaxEvents:     cfg.Analysis.MaxEventsBuffer,
	})

	dispatcher := alert.NewDispatcher(
		alert.Config{Enabled: cfg.Alerting.Enabled, Cooldown: cfg.Alerting.Cooldown()},
		visualHandler(cfg),
		audibleHandler(cfg),
		systemHandler(cfg),
		alert.NewSpawner(),
	)
	defer dispatcher.Close()

	var recorder *metrics.Recorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
		defer func() {
			path, err := recorder.Export(cfg.Metrics.OutputDir)
			if err != nil {
				log.Warn("metrics export failed", "err", err)
				return
			}
			log.Info("metrics session exported", "path", path)
		}()
	}

	statusHub := hub.New("status")
	alertHub := hub.New("alerts")
	frameHub := hub.New("frames")

	mon, err := monitor.New(monitor.Options{
		FrameTimeout: cfg.Camera.FrameTimeout(),
		Buffer:       buffer,
		Detector:     detector,
		Classifier:   classifier,
		Analyzer:     analyzer,
		Dispatcher:   dispatcher,
		Recorder:     recorder,
		StatusHub:    statusHub,
		AlertHub:     alertHub,
		FrameHub:     frameHub,
	})
	if err != nil {
		return err
	}

	go pacer.Run(ctx)
	go mon.Run(ctx)

	if cfg.Web.Enabled {
		server := web.NewServer(web.Options{
			Port:       cfg.Web.Port,
			Monitor:    mon,
			StatusHub:  statusHub,
			AlertHub:   alertHub,
			FrameHub:   frameHub,
			Recorder:   recorder,
			ConfigView: cfg,
		})
		go func() {
			if err := server.Run(ctx); err != nil {
				log.Error("web server stopped", "err", err)
			}
		}()
	} else {
		// The hubs still run so the monitor's broadcasts don't back up.
		go statusHub.Run(ctx)
		go alertHub.Run(ctx)
		go frameHub.Run(ctx)
	}

	<-ctx.Done()

	// Bounded shutdown: wait briefly for the loops, then leave. Alert
	// tasks already in flight are abandoned by the dispatcher.
	if !pacer.WaitDone(2 * time.Second) {
		log.Warn("capture loop did not stop in time")
	}
	if !mon.WaitDone(2 * time.Second) {
		log.Warn("analysis loop did not stop in time")
	}
	return nil
}

// visualHandler shows the warning on whatever display surface exists;
// headless deployments get a prominent log line.
func visualHandler(cfg *config.Config) alert.Handler {
	return &alert.VisualHandler{
		Enabled: cfg.Alerting.VisualEnabled,
		Show: func(d alert.Details) error {
			log.Warn("DRIVER ALERT: keep your eyes on the road", "details", d)
			return nil
		},
	}
}

// audibleHandler plays the alert sample. Audio output is delegated to
// the platform; the handler records the intent and the sample path.
func audibleHandler(cfg *config.Config) alert.Handler {
	return &alert.AudibleHandler{
		Enabled:   cfg.Alerting.AudibleEnabled,
		SoundPath: cfg.Alerting.SoundPath,
		Play: func(path string, d alert.Details) error {
			log.Warn("AUDIBLE ALERT", "sound", path, "details", d)
			return nil
		},
	}
}

// systemHandler appends the incident to a durable log before any
// intervention hook runs.
func systemHandler(cfg *config.Config) alert.Handler {
	incidentPath := filepath.Join(cfg.Metrics.OutputDir, "incidents.jsonl")
	return &alert.SystemHandler{
		Enabled: cfg.Alerting.SystemEnabled,
		LogIncident: func(d alert.Details) error {
			return appendIncident(incidentPath, d)
		},
		Intervene: func(d alert.Details) error {
			log.Error("EMERGENCY INTERVENTION ACTIVE", "details", d)
			return nil
		},
	}
}

func appendIncident(path string, d alert.Details) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	record := map[string]any{
		"timestamp": time.Now().Format(time.RFC3339),
		"details":   d,
	}
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}
