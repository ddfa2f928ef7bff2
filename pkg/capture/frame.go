// Package capture moves frames from a paced camera source to the
// analysis loop through a bounded single-slot buffer.
package capture

import (
	"errors"
	"time"
)

// ErrNoFrame signals a transient frame absence from a source. It is an
// expected condition at low frame rates, not a failure; the pacer
// skips the tick silently.
var ErrNoFrame = errors.New("capture: no frame available")

// Frame is one encoded camera image. Data is a JPEG buffer owned by
// the frame; it must not be modified after submission.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Seq       uint64
	Timestamp time.Time
}

// Empty reports whether the frame carries no image.
func (f Frame) Empty() bool {
	return len(f.Data) == 0
}

// Source produces raw frames on demand. Implementations wrap a camera
// or a test feed; a tick with nothing to give returns ErrNoFrame.
type Source interface {
	// Capture grabs the next frame.
	Capture() (Frame, error)

	// Close releases the device.
	Close() error
}

// Transform is a pure frame-to-frame conversion applied before
// submission, e.g. lossy recompression to bound peak memory. A failed
// transform means no frame is produced for that tick; there is no
// retry.
type Transform func(Frame) (Frame, error)
