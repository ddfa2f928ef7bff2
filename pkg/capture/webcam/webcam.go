// Package webcam implements a capture.Source backed by a local camera
// device through OpenCV.
package webcam

import (
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"driveguard/pkg/capture"
)

// Config selects and shapes the camera device.
type Config struct {
	// Device is the OpenCV device index (0 for the default camera).
	Device int

	// Width and Height request a capture resolution. The driver may
	// pick the nearest supported mode.
	Width  int
	Height int

	// Quality is the JPEG encode quality (1-100) for captured frames.
	Quality int
}

// Source wraps a gocv VideoCapture and yields JPEG frames.
type Source struct {
	cfg Config

	mu  sync.Mutex // protects cap across Capture/Close
	cap *gocv.VideoCapture
	img gocv.Mat
}

// Open acquires the camera device.
func Open(cfg Config) (*Source, error) {
	cap, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("webcam: open device %d: %w", cfg.Device, err)
	}
	if cfg.Width > 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	}
	if cfg.Height > 0 {
		cap.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	}
	if cfg.Quality <= 0 || cfg.Quality > 100 {
		cfg.Quality = 90
	}

	return &Source{
		cfg: cfg,
		cap: cap,
		img: gocv.NewMat(),
	}, nil
}

// Capture grabs one frame and encodes it as JPEG. A transiently empty
// read (camera warming up, dropped driver frame) is reported as
// capture.ErrNoFrame.
func (s *Source) Capture() (capture.Frame, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap == nil {
		return capture.Frame{}, fmt.Errorf("webcam: source closed")
	}
	if ok := s.cap.Read(&s.img); !ok || s.img.Empty() {
		return capture.Frame{}, capture.ErrNoFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, s.img,
		[]int{gocv.IMWriteJpegQuality, s.cfg.Quality})
	if err != nil {
		return capture.Frame{}, fmt.Errorf("webcam: encode: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())

	return capture.Frame{
		Data:      data,
		Width:     s.img.Cols(),
		Height:    s.img.Rows(),
		Timestamp: time.Now(),
	}, nil
}

// Close releases the camera device. Safe to call more than once.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cap == nil {
		return nil
	}
	err := s.cap.Close()
	s.cap = nil
	s.img.Close()
	return err
}

// Recompress returns a Transform that re-encodes the frame's JPEG at
// the given quality to bound the bytes held in the buffer slot.
func Recompress(quality int) capture.Transform {
	if quality <= 0 || quality > 100 {
		quality = 70
	}
	return func(f capture.Frame) (capture.Frame, error) {
		img, err := gocv.IMDecode(f.Data, gocv.IMReadColor)
		if err != nil {
			return capture.Frame{}, fmt.Errorf("webcam: recompress decode: %w", err)
		}
		defer img.Close()
		if img.Empty() {
			return capture.Frame{}, fmt.Errorf("webcam: recompress: empty image")
		}

		buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, img,
			[]int{gocv.IMWriteJpegQuality, quality})
		if err != nil {
			return capture.Frame{}, fmt.Errorf("webcam: recompress encode: %w", err)
		}
		defer buf.Close()

		data := make([]byte, len(buf.GetBytes()))
		copy(data, buf.GetBytes())
		f.Data = data
		return f, nil
	}
}
