package capture

import (
	"context"
	"errors"
	"time"

	"driveguard/internal/log"
)

// PacerConfig governs how often frames are pulled from the source.
type PacerConfig struct {
	// Interval is the paced capture period (1/target fps).
	Interval time.Duration

	// FrameSkip submits only every Nth paced frame. 1 means every
	// frame.
	FrameSkip int

	// Transform, if set, is applied before submission (typically
	// lossy recompression). A transform failure skips the tick.
	Transform Transform
}

// Pacer runs the capture context: it pulls frames from a Source at the
// configured rate and submits them to the buffer. It is the only
// producer for its buffer.
type Pacer struct {
	cfg    PacerConfig
	source Source
	buffer *FrameBuffer

	done chan struct{}
	seq  uint64
}

// NewPacer creates a pacer feeding the given buffer.
func NewPacer(cfg PacerConfig, source Source, buffer *FrameBuffer) *Pacer {
	if cfg.FrameSkip < 1 {
		cfg.FrameSkip = 1
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Pacer{
		cfg:    cfg,
		source: source,
		buffer: buffer,
		done:   make(chan struct{}),
	}
}

// Run drives the capture loop until ctx is cancelled. Blocks; call it
// on its own goroutine.
func (p *Pacer) Run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

// tick pulls, transforms, and submits one frame. Every failure mode is
// a silent or logged skip: the next tick's availability matters more
// than any single frame.
func (p *Pacer) tick() {
	p.seq++
	if p.seq%uint64(p.cfg.FrameSkip) != 0 {
		return
	}

	frame, err := p.source.Capture()
	if err != nil {
		if !errors.Is(err, ErrNoFrame) {
			log.Warn("frame capture failed", "err", err)
		}
		return
	}
	if frame.Empty() {
		return
	}

	frame.Seq = p.seq
	if frame.Timestamp.IsZero() {
		frame.Timestamp = time.Now()
	}

	if p.cfg.Transform != nil {
		frame, err = p.cfg.Transform(frame)
		if err != nil {
			log.Warn("frame transform failed, skipping tick", "err", err)
			return
		}
	}

	p.buffer.Submit(frame)
}

// Done is closed when the capture loop has exited.
func (p *Pacer) Done() <-chan struct{} {
	return p.done
}

// WaitDone blocks until the loop exits or the timeout passes. Returns
// false on timeout; shutdown must never wait indefinitely.
func (p *Pacer) WaitDone(timeout time.Duration) bool {
	select {
	case <-p.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
