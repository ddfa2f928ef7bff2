package analysis

import (
	"fmt"
	"time"

	"driveguard/internal/log"
)

// Config holds the analyzer thresholds and event log bounds.
type Config struct {
	Thresholds    Thresholds
	HistoryWindow time.Duration
	MaxEvents     int
}

// DefaultConfig returns the recommended analyzer configuration.
func DefaultConfig() Config {
	return Config{
		Thresholds:    Thresholds{Warning: 5, Critical: 10, Severe: 20},
		HistoryWindow: 2 * time.Minute,
		MaxEvents:     100,
	}
}

// Validate checks the configuration invariants.
func (c Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.HistoryWindow <= 0 {
		return fmt.Errorf("analysis: history window must be > 0")
	}
	if c.MaxEvents < 1 {
		return fmt.Errorf("analysis: max events must be >= 1")
	}
	return nil
}

// Result is the per-observation analysis snapshot. The event list is a
// copy, never a live reference into analyzer state.
type Result struct {
	Level          Level     `json:"level"`
	FaceFailures   int       `json:"face_failures"`
	EyeFailures    int       `json:"eye_failures"`
	TotalFailures  int       `json:"total_failures"`
	Consequence    string    `json:"consequence"`
	Recommendation string    `json:"recommendation"`
	Events         []Event   `json:"events"`
	Timestamp      time.Time `json:"timestamp"`
}

// Stats is a lightweight counters summary for diagnostics endpoints.
type Stats struct {
	FaceFailures  int    `json:"face_failures"`
	EyeFailures   int    `json:"eye_failures"`
	TotalFailures int    `json:"total_failures"`
	RecentEvents  int    `json:"recent_events"`
	Level         string `json:"level"`
}

// Analyzer tracks attention failures over time and derives the current
// distraction level.
//
// The analyzer is owned exclusively by the analysis loop: it is not
// goroutine-safe, and all reads of its state flow through the Result
// returned by Observe.
type Analyzer struct {
	cfg Config

	faceFailures  int
	eyeFailures   int
	totalFailures int

	events *eventLog
}

// NewAnalyzer creates an analyzer. The configuration must have been
// validated at startup.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		events: newEventLog(cfg.MaxEvents, cfg.HistoryWindow),
	}
}

// Observe folds one frame's attention checks into the running state
// and returns the resulting snapshot. Callers invoke it at most once
// per admitted frame with strictly increasing timestamps.
func (a *Analyzer) Observe(faceForward, eyesForward bool, ts time.Time) Result {
	if !faceForward {
		a.faceFailures++
		a.totalFailures++
		a.events.add(newEvent(EventFaceFailure, ts, a.level(), map[string]any{
			"reason": "face not pointing towards road",
		}))
		log.Warn("face failure detected", "total", a.totalFailures)
	}

	if !eyesForward {
		a.eyeFailures++
		a.totalFailures++
		a.events.add(newEvent(EventEyeFailure, ts, a.level(), map[string]any{
			"reason": "eyes not looking forward",
		}))
		log.Warn("eye failure detected", "total", a.totalFailures)
	}

	a.events.prune(ts)

	level := a.level()
	return Result{
		Level:          level,
		FaceFailures:   a.faceFailures,
		EyeFailures:    a.eyeFailures,
		TotalFailures:  a.totalFailures,
		Consequence:    Consequence(level),
		Recommendation: Recommendation(level),
		Events:         a.events.snapshot(),
		Timestamp:      ts,
	}
}

// level recomputes the current level from the cumulative count.
func (a *Analyzer) level() Level {
	return a.cfg.Thresholds.LevelForCount(a.totalFailures)
}

// Reset clears the failure counters and the event log. Only an
// explicit operator or test reset does this; the counters never decay
// on their own.
func (a *Analyzer) Reset() {
	a.faceFailures = 0
	a.eyeFailures = 0
	a.totalFailures = 0
	a.events.clear()
	log.Info("distraction counters reset")
}

// Stats returns the current counters summary.
func (a *Analyzer) Stats() Stats {
	return Stats{
		FaceFailures:  a.faceFailures,
		EyeFailures:   a.eyeFailures,
		TotalFailures: a.totalFailures,
		RecentEvents:  a.events.len(),
		Level:         a.level().String(),
	}
}
