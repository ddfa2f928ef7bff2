package alert

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSpawner_RunsTasks(t *testing.T) {
	s := NewSpawner()
	var ran atomic.Bool

	if ok := s.Go("test", func() { ran.Store(true) }); !ok {
		t.Fatal("spawn rejected")
	}
	waitFor(t, ran.Load)
}

func TestSpawner_RecoversPanics(t *testing.T) {
	s := NewSpawner()
	var after atomic.Bool

	s.Go("panics", func() { panic("boom") })
	// A panicking task must not take the process down; a later task
	// still runs.
	s.Go("after", func() { after.Store(true) })
	waitFor(t, after.Load)
}

func TestSpawner_ClosedRejectsTasks(t *testing.T) {
	s := NewSpawner()
	s.Close()

	if ok := s.Go("late", func() {}); ok {
		t.Error("closed spawner accepted a task")
	}
}

func TestSpawner_CloseDoesNotWait(t *testing.T) {
	s := NewSpawner()
	release := make(chan struct{})
	s.Go("stuck", func() { <-release })

	start := time.Now()
	s.Close()
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Close waited %v for an in-flight task", elapsed)
	}
	close(release)
}

func TestSpawner_TracksActive(t *testing.T) {
	s := NewSpawner()
	release := make(chan struct{})

	s.Go("a", func() { <-release })
	s.Go("b", func() { <-release })
	waitFor(t, func() bool { return s.Active() == 2 })

	close(release)
	waitFor(t, func() bool { return s.Active() == 0 })
}

func TestSpawner_NilTask(t *testing.T) {
	s := NewSpawner()
	if ok := s.Go("nil", nil); ok {
		t.Error("nil task accepted")
	}
}
