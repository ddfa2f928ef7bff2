package alert

import (
	"sync"
	"sync/atomic"

	"driveguard/internal/log"
)

// Spawner runs alert tasks on independent goroutines with an
// abandon-on-shutdown policy: tasks are fire-and-forget, panics are
// contained, and Close never waits for in-flight work. Shutdown
// abandons running tasks by design; they hold no analyzer state.
type Spawner struct {
	mu     sync.Mutex
	closed bool
	active atomic.Int64
}

// NewSpawner creates a task spawner.
func NewSpawner() *Spawner {
	return &Spawner{}
}

// Go runs fn on its own goroutine. Returns false if the spawner is
// closed or fn is nil; the task is then not run.
func (s *Spawner) Go(name string, fn func()) bool {
	if fn == nil {
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.active.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.active.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				log.Error("alert task panicked", "task", name, "panic", r)
			}
		}()
		fn()
	}()
	return true
}

// Active returns the number of tasks currently running.
func (s *Spawner) Active() int {
	return int(s.active.Load())
}

// Close stops accepting new tasks. In-flight tasks are abandoned, not
// awaited.
func (s *Spawner) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}
