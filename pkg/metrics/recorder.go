// Package metrics records per-frame pipeline timings and exports
// session summaries for offline tuning.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxRecords bounds the in-memory per-frame history.
const maxRecords = 10000

// FrameRecord captures the cost and outcome of one processed frame.
type FrameRecord struct {
	Seq          uint64        `json:"seq"`
	Timestamp    time.Time     `json:"timestamp"`
	DetectTime   time.Duration `json:"detect_ns"`
	AnalyzeTime  time.Duration `json:"analyze_ns"`
	TotalTime    time.Duration `json:"total_ns"`
	FaceDetected bool          `json:"face_detected"`
	Level        string        `json:"level"`
}

// Summary aggregates a session's records.
type Summary struct {
	SessionID      string         `json:"session_id"`
	StartedAt      time.Time      `json:"started_at"`
	EndedAt        time.Time      `json:"ended_at"`
	FramesTotal    int            `json:"frames_total"`
	FramesWithFace int            `json:"frames_with_face"`
	AvgDetect      time.Duration  `json:"avg_detect_ns"`
	MaxDetect      time.Duration  `json:"max_detect_ns"`
	AvgTotal       time.Duration  `json:"avg_total_ns"`
	MaxTotal       time.Duration  `json:"max_total_ns"`
	LevelCounts    map[string]int `json:"level_counts"`
}

// Recorder accumulates frame records for one monitoring session.
// Goroutine-safe; the analysis loop records while the web layer reads.
type Recorder struct {
	mu        sync.Mutex
	sessionID string
	startedAt time.Time
	records   []FrameRecord
	truncated int
}

// NewRecorder starts a fresh session.
func NewRecorder() *Recorder {
	return &Recorder{
		sessionID: uuid.NewString(),
		startedAt: time.Now(),
		records:   make([]FrameRecord, 0, 256),
	}
}

// SessionID identifies this session in exported files.
func (r *Recorder) SessionID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionID
}

// Record appends one frame's timings. Oldest records are dropped once
// the history bound is hit; the summary still counts them.
func (r *Recorder) Record(rec FrameRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	r.records = append(r.records, rec)
	if len(r.records) > maxRecords {
		drop := len(r.records) - maxRecords
		r.records = r.records[drop:]
		r.truncated += drop
	}
}

// Summary computes aggregates over everything recorded so far.
func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		SessionID:   r.sessionID,
		StartedAt:   r.startedAt,
		EndedAt:     time.Now(),
		FramesTotal: len(r.records) + r.truncated,
		LevelCounts: make(map[string]int),
	}
	if len(r.records) == 0 {
		return s
	}

	var sumDetect, sumTotal time.Duration
	for _, rec := range r.records {
		if rec.FaceDetected {
			s.FramesWithFace++
		}
		sumDetect += rec.DetectTime
		sumTotal += rec.TotalTime
		if rec.DetectTime > s.MaxDetect {
			s.MaxDetect = rec.DetectTime
		}
		if rec.TotalTime > s.MaxTotal {
			s.MaxTotal = rec.TotalTime
		}
		if rec.Level != "" {
			s.LevelCounts[rec.Level]++
		}
	}
	n := time.Duration(len(r.records))
	s.AvgDetect = sumDetect / n
	s.AvgTotal = sumTotal / n
	return s
}

// sessionExport is the on-disk shape of a finished session.
type sessionExport struct {
	Summary Summary       `json:"summary"`
	Records []FrameRecord `json:"records"`
}

// Export writes the session summary and records as JSON into dir. The
// filename embeds the session id and start time so repeated runs never
// collide. Returns the written path.
func (r *Recorder) Export(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("metrics: create output dir: %w", err)
	}

	r.mu.Lock()
	records := make([]FrameRecord, len(r.records))
	copy(records, r.records)
	sessionID := r.sessionID
	startedAt := r.startedAt
	r.mu.Unlock()

	export := sessionExport{
		Summary: r.Summary(),
		Records: records,
	}

	name := fmt.Sprintf("session_%s_%s.json",
		startedAt.Format("20060102-150405"), sessionID[:8])
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("metrics: marshal session: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("metrics: write session file: %w", err)
	}
	return path, nil
}
