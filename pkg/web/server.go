// Package web exposes the monitoring state over HTTP and websocket
// feeds for dashboards and the watch CLI.
package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"driveguard/internal/log"
	"driveguard/pkg/analysis"
	"driveguard/pkg/hub"
	"driveguard/pkg/metrics"
	"driveguard/pkg/monitor"
)

// Monitor is the read/control surface the server needs from the
// analysis loop.
type Monitor interface {
	Snapshot() monitor.Snapshot
	Stats() analysis.Stats
	Events() []analysis.Event
	Reset()
}

// Options wires the server. Monitor, StatusHub, and AlertHub are
// required; Recorder and ConfigView are optional.
type Options struct {
	Port    string
	Monitor Monitor

	// StatusHub, AlertHub, and FrameHub are the feeds the analysis
	// loop publishes to; the server attaches websocket subscribers.
	StatusHub *hub.Hub
	AlertHub  *hub.Hub
	FrameHub  *hub.Hub

	// Recorder backs the /api/metrics endpoint when set.
	Recorder *metrics.Recorder

	// ConfigView is returned verbatim by /api/config.
	ConfigView any
}

// Server is the HTTP and websocket front of the daemon.
type Server struct {
	app  *fiber.App
	opts Options
}

// NewServer builds the fiber app and its routes.
func NewServer(opts Options) *Server {
	s := &Server{opts: opts}

	app := fiber.New(fiber.Config{
		AppName:               "driveguard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/stats", s.handleStats)
	api.Get("/events", s.handleEvents)
	api.Get("/config", s.handleConfig)
	api.Get("/metrics", s.handleMetrics)
	api.Post("/reset", s.handleReset)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/alerts", websocket.New(s.handleAlertsWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// Run starts the hubs and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.opts.StatusHub.Run(ctx)
	go s.opts.AlertHub.Run(ctx)
	go s.opts.FrameHub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		log.Info("web server listening", "port", s.opts.Port)
		errc <- s.app.Listen(":" + s.opts.Port)
	}()

	select {
	case <-ctx.Done():
		return s.app.Shutdown()
	case err := <-errc:
		return err
	}
}
