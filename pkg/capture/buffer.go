package capture

import (
	"sync/atomic"
	"time"
)

// FrameBuffer is the bounded handoff between the capture context and
// the analysis context. Capacity is exactly one frame: submitting to a
// full buffer atomically replaces the held frame (newest wins), so a
// slow consumer sees the freshest image instead of a growing queue.
//
// Safe for single-producer/single-consumer concurrent use.
type FrameBuffer struct {
	slot    chan Frame
	dropped atomic.Uint64
}

// NewFrameBuffer creates an empty one-slot buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		slot: make(chan Frame, 1),
	}
}

// Submit hands a frame to the consumer. Never blocks, never fails: if
// the slot is occupied the stale frame is discarded first. The retry
// loop runs at most twice with a single producer.
func (b *FrameBuffer) Submit(f Frame) {
	for {
		select {
		case b.slot <- f:
			return
		default:
			select {
			case <-b.slot:
				b.dropped.Add(1)
			default:
			}
		}
	}
}

// Take blocks up to timeout for a frame. Returns ok=false on timeout;
// an empty buffer is an expected, non-exceptional condition at 1 Hz
// rates.
func (b *FrameBuffer) Take(timeout time.Duration) (Frame, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case f := <-b.slot:
		return f, true
	case <-timer.C:
		return Frame{}, false
	}
}

// Dropped returns how many frames were replaced before consumption.
func (b *FrameBuffer) Dropped() uint64 {
	return b.dropped.Load()
}
