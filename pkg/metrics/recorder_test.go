package metrics

import (
	"encoding/json"
	"os"
	"testing"
	"time"
)

func TestRecorder_SummaryAggregates(t *testing.T) {
	r := NewRecorder()

	r.Record(FrameRecord{Seq: 1, DetectTime: 10 * time.Millisecond, TotalTime: 20 * time.Millisecond, FaceDetected: true, Level: "SAFE"})
	r.Record(FrameRecord{Seq: 2, DetectTime: 30 * time.Millisecond, TotalTime: 40 * time.Millisecond, FaceDetected: true, Level: "WARNING"})
	r.Record(FrameRecord{Seq: 3, DetectTime: 20 * time.Millisecond, TotalTime: 30 * time.Millisecond, FaceDetected: false, Level: "WARNING"})

	s := r.Summary()
	if s.FramesTotal != 3 {
		t.Errorf("frames: got %d, want 3", s.FramesTotal)
	}
	if s.FramesWithFace != 2 {
		t.Errorf("frames with face: got %d, want 2", s.FramesWithFace)
	}
	if s.AvgDetect != 20*time.Millisecond {
		t.Errorf("avg detect: got %v", s.AvgDetect)
	}
	if s.MaxDetect != 30*time.Millisecond {
		t.Errorf("max detect: got %v", s.MaxDetect)
	}
	if s.MaxTotal != 40*time.Millisecond {
		t.Errorf("max total: got %v", s.MaxTotal)
	}
	if s.LevelCounts["WARNING"] != 2 || s.LevelCounts["SAFE"] != 1 {
		t.Errorf("level counts: %v", s.LevelCounts)
	}
}

func TestRecorder_EmptySummary(t *testing.T) {
	r := NewRecorder()
	s := r.Summary()
	if s.FramesTotal != 0 || s.AvgTotal != 0 {
		t.Errorf("empty summary not zeroed: %+v", s)
	}
	if s.SessionID == "" {
		t.Error("missing session id")
	}
}

func TestRecorder_HistoryBoundKeepsTotals(t *testing.T) {
	r := NewRecorder()
	for i := 0; i < maxRecords+50; i++ {
		r.Record(FrameRecord{Seq: uint64(i)})
	}

	s := r.Summary()
	if s.FramesTotal != maxRecords+50 {
		t.Errorf("total frames: got %d, want %d", s.FramesTotal, maxRecords+50)
	}

	r.mu.Lock()
	held := len(r.records)
	oldest := r.records[0].Seq
	r.mu.Unlock()
	if held != maxRecords {
		t.Errorf("held records: got %d, want %d", held, maxRecords)
	}
	if oldest != 50 {
		t.Errorf("oldest kept seq: got %d, want 50", oldest)
	}
}

func TestRecorder_Export(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder()
	r.Record(FrameRecord{Seq: 1, FaceDetected: true, Level: "SAFE"})

	path, err := r.Export(dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}

	var export struct {
		Summary Summary       `json:"summary"`
		Records []FrameRecord `json:"records"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		t.Fatalf("unmarshal export: %v", err)
	}
	if export.Summary.SessionID != r.SessionID() {
		t.Error("exported session id mismatch")
	}
	if len(export.Records) != 1 || export.Records[0].Seq != 1 {
		t.Errorf("exported records: %+v", export.Records)
	}
}

func TestRecorder_UniqueSessions(t *testing.T) {
	if NewRecorder().SessionID() == NewRecorder().SessionID() {
		t.Error("two sessions share an id")
	}
}
