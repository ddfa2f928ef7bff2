package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"driveguard/pkg/analysis"
	"driveguard/pkg/hub"
)

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.opts.Monitor.Snapshot())
}

func (s *Server) handleStats(c *fiber.Ctx) error {
	return c.JSON(s.opts.Monitor.Stats())
}

func (s *Server) handleEvents(c *fiber.Ctx) error {
	events := s.opts.Monitor.Events()
	if events == nil {
		events = []analysis.Event{}
	}
	return c.JSON(events)
}

func (s *Server) handleConfig(c *fiber.Ctx) error {
	if s.opts.ConfigView == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "configuration view not available",
		})
	}
	return c.JSON(s.opts.ConfigView)
}

func (s *Server) handleMetrics(c *fiber.Ctx) error {
	if s.opts.Recorder == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "metrics recording disabled",
		})
	}
	return c.JSON(s.opts.Recorder.Summary())
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	s.opts.Monitor.Reset()
	return c.JSON(fiber.Map{"status": "reset requested"})
}

// handleStatusWS attaches a subscriber to the status feed. The current
// snapshot is sent immediately so clients render without waiting for
// the next frame.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	c.WriteJSON(s.opts.Monitor.Snapshot())
	hub.NewClient(s.opts.StatusHub, c).Run()
}

// handleAlertsWS attaches a subscriber to the alerts feed.
func (s *Server) handleAlertsWS(c *websocket.Conn) {
	hub.NewClient(s.opts.AlertHub, c).Run()
}

// handleFramesWS attaches a subscriber to the live JPEG frame feed.
// Frames are only broadcast while at least one subscriber is attached.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	hub.NewClient(s.opts.FrameHub, c).Run()
}
