// Package monitor runs the analysis loop: it consumes frames from the
// capture buffer, classifies driver attention, folds failures into the
// distraction analyzer, and drives alert escalation.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"driveguard/internal/log"
	"driveguard/pkg/alert"
	"driveguard/pkg/analysis"
	"driveguard/pkg/capture"
	"driveguard/pkg/hub"
	"driveguard/pkg/metrics"
	"driveguard/pkg/vision"
)

// Snapshot is the externally visible monitoring state. It is a value
// copy; readers never touch live analyzer state.
type Snapshot struct {
	Timestamp       time.Time         `json:"timestamp"`
	FrameSeq        uint64            `json:"frame_seq"`
	Pose            vision.PoseResult `json:"pose"`
	Level           string            `json:"level"`
	FaceFailures    int               `json:"face_failures"`
	EyeFailures     int               `json:"eye_failures"`
	TotalFailures   int               `json:"total_failures"`
	Consequence     string            `json:"consequence"`
	Recommendation  string            `json:"recommendation"`
	FramesProcessed uint64            `json:"frames_processed"`
	FramesDropped   uint64            `json:"frames_dropped"`
}

// alertNotice is what the alerts feed broadcasts on escalation.
type alertNotice struct {
	Timestamp      time.Time `json:"timestamp"`
	Level          string    `json:"level"`
	TotalFailures  int       `json:"total_failures"`
	Consequence    string    `json:"consequence"`
	Recommendation string    `json:"recommendation"`
}

// Options wires the monitor's collaborators. Buffer, Detector,
// Classifier, Analyzer, and Dispatcher are required; the rest are
// optional.
type Options struct {
	// FrameTimeout bounds each wait on the frame buffer. It also
	// bounds how stale the loop's reaction to shutdown and reset
	// requests can be.
	FrameTimeout time.Duration

	Buffer     *capture.FrameBuffer
	Detector   vision.LandmarkDetector
	Classifier *vision.Classifier
	Analyzer   *analysis.Analyzer
	Dispatcher *alert.Dispatcher

	Recorder  *metrics.Recorder
	StatusHub *hub.Hub
	AlertHub  *hub.Hub

	// FrameHub receives the raw JPEG of each processed frame, but
	// only while someone is watching the feed.
	FrameHub *hub.Hub
}

// Monitor owns the analysis loop. The loop goroutine is the only
// writer of analyzer state; concurrent readers see cached snapshots.
type Monitor struct {
	opts Options

	mu       sync.RWMutex
	snapshot Snapshot
	stats    analysis.Stats
	events   []analysis.Event

	resetReq chan struct{}
	done     chan struct{}

	framesProcessed uint64
	lastLevel       analysis.Level
}

// New validates the wiring and creates a monitor.
func New(opts Options) (*Monitor, error) {
	switch {
	case opts.Buffer == nil:
		return nil, fmt.Errorf("monitor: frame buffer is required")
	case opts.Detector == nil:
		return nil, fmt.Errorf("monitor: landmark detector is required")
	case opts.Classifier == nil:
		return nil, fmt.Errorf("monitor: classifier is required")
	case opts.Analyzer == nil:
		return nil, fmt.Errorf("monitor: analyzer is required")
	case opts.Dispatcher == nil:
		return nil, fmt.Errorf("monitor: dispatcher is required")
	}
	if opts.FrameTimeout <= 0 {
		opts.FrameTimeout = time.Second
	}

	return &Monitor{
		opts:     opts,
		snapshot: Snapshot{Level: analysis.LevelSafe.String()},
		stats:    analysis.Stats{Level: analysis.LevelSafe.String()},
		resetReq: make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Run drives the analysis loop until ctx is cancelled. Blocks; call it
// on its own goroutine.
func (m *Monitor) Run(ctx context.Context) {
	defer close(m.done)
	log.Info("analysis loop started", "frame_timeout", m.opts.FrameTimeout)

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.resetReq:
			m.applyReset()
		default:
		}

		frame, ok := m.opts.Buffer.Take(m.opts.FrameTimeout)
		if !ok {
			// An empty tick at low frame rates is routine; the loop
			// just comes back around to re-check shutdown and reset.
			continue
		}
		m.process(frame)
	}
}

// process runs one frame through detection, classification, analysis,
// and alerting.
func (m *Monitor) process(frame capture.Frame) {
	start := time.Now()

	landmarks, err := m.opts.Detector.DetectLandmarks(frame.Data)
	if err != nil {
		// A failed inference counts the same as no face: the driver
		// state is unknown, which is itself an attention failure.
		log.Warn("landmark detection failed", "seq", frame.Seq, "err", err)
		landmarks = nil
	}
	detectDur := time.Since(start)

	pose := m.opts.Classifier.Classify(landmarks, frame.Timestamp)
	result := m.opts.Analyzer.Observe(pose.FaceForward(), pose.EyesForward(), frame.Timestamp)

	m.opts.Dispatcher.Process(result.Level, alert.Details{
		"level":          result.Level.String(),
		"total_failures": result.TotalFailures,
		"consequence":    result.Consequence,
		"recommendation": result.Recommendation,
	})

	m.framesProcessed++
	m.publish(frame, pose, result)

	if m.opts.Recorder != nil {
		m.opts.Recorder.Record(metrics.FrameRecord{
			Seq:          frame.Seq,
			Timestamp:    frame.Timestamp,
			DetectTime:   detectDur,
			AnalyzeTime:  time.Since(start) - detectDur,
			TotalTime:    time.Since(start),
			FaceDetected: pose.FaceDetected,
			Level:        result.Level.String(),
		})
	}
}

// publish refreshes the cached snapshot and pushes updates to the
// websocket feeds.
func (m *Monitor) publish(frame capture.Frame, pose vision.PoseResult, result analysis.Result) {
	snap := Snapshot{
		Timestamp:       result.Timestamp,
		FrameSeq:        frame.Seq,
		Pose:            pose,
		Level:           result.Level.String(),
		FaceFailures:    result.FaceFailures,
		EyeFailures:     result.EyeFailures,
		TotalFailures:   result.TotalFailures,
		Consequence:     result.Consequence,
		Recommendation:  result.Recommendation,
		FramesProcessed: m.framesProcessed,
		FramesDropped:   m.opts.Buffer.Dropped(),
	}

	m.mu.Lock()
	m.snapshot = snap
	m.stats = m.opts.Analyzer.Stats()
	m.events = result.Events
	m.mu.Unlock()

	if m.opts.StatusHub != nil {
		if err := m.opts.StatusHub.BroadcastJSON(snap); err != nil {
			log.Warn("status broadcast failed", "err", err)
		}
	}

	if m.opts.FrameHub != nil && m.opts.FrameHub.ClientCount() > 0 {
		m.opts.FrameHub.BroadcastBinary(frame.Data)
	}

	if result.Level > m.lastLevel && m.opts.AlertHub != nil {
		m.opts.AlertHub.BroadcastJSON(alertNotice{
			Timestamp:      result.Timestamp,
			Level:          result.Level.String(),
			TotalFailures:  result.TotalFailures,
			Consequence:    result.Consequence,
			Recommendation: result.Recommendation,
		})
	}
	m.lastLevel = result.Level
}

// applyReset clears analyzer state from inside the loop goroutine and
// releases any alert surfaces still showing.
func (m *Monitor) applyReset() {
	m.opts.Analyzer.Reset()
	m.opts.Dispatcher.Silence()
	m.lastLevel = analysis.LevelSafe

	m.mu.Lock()
	m.snapshot = Snapshot{
		Level:           analysis.LevelSafe.String(),
		FramesProcessed: m.framesProcessed,
		FramesDropped:   m.opts.Buffer.Dropped(),
	}
	m.stats = m.opts.Analyzer.Stats()
	m.events = nil
	m.mu.Unlock()
}

// Reset requests a counter reset. The loop applies it before the next
// frame; at most one request is pending at a time.
func (m *Monitor) Reset() {
	select {
	case m.resetReq <- struct{}{}:
	default:
	}
}

// Snapshot returns the latest monitoring state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Stats returns the latest analyzer counters.
func (m *Monitor) Stats() analysis.Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stats
}

// Events returns the recent distraction events.
func (m *Monitor) Events() []analysis.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]analysis.Event, len(m.events))
	copy(out, m.events)
	return out
}

// Done is closed when the analysis loop has exited.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// WaitDone blocks until the loop exits or the timeout passes.
func (m *Monitor) WaitDone(timeout time.Duration) bool {
	select {
	case <-m.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
