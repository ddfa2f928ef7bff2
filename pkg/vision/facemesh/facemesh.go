// Package facemesh runs a dense face landmark network through OpenCV's
// DNN module and adapts it to the vision.LandmarkDetector interface.
package facemesh

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"driveguard/pkg/vision"
)

// inputSize is the fixed square input resolution of the mesh network.
const inputSize = 192

// Config selects the landmark model.
type Config struct {
	// ModelPath is the ONNX mesh model on disk.
	ModelPath string

	// ScoreThreshold rejects mesh outputs whose face presence score
	// falls below it. Zero means accept everything the net emits.
	ScoreThreshold float32
}

// Detector wraps a gocv DNN net producing a dense landmark mesh.
type Detector struct {
	net gocv.Net
	cfg Config
	mu  sync.Mutex // protects inference
}

// New loads the mesh model from disk.
func New(cfg Config) (*Detector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("facemesh: model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("facemesh: failed to load model: %s", cfg.ModelPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Detector{net: net, cfg: cfg}, nil
}

// DetectLandmarks decodes the JPEG frame, runs the mesh network, and
// returns landmarks normalized to the frame. A frame with no face
// returns (nil, nil).
func (d *Detector) DetectLandmarks(jpeg []byte) (vision.LandmarkSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("facemesh: decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("facemesh: empty image")
	}

	// The net expects a square RGB input scaled to [0, 1].
	blob := gocv.BlobFromImage(img, 1.0/255.0,
		image.Pt(inputSize, inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	return d.parse(out)
}

// parse reads the flat (x, y, z)*N output. The refined model variant
// emits 478 points (the dense mesh plus two iris rings); the base
// variant emits 468.
func (d *Detector) parse(out gocv.Mat) (vision.LandmarkSet, error) {
	vals, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("facemesh: read output: %w", err)
	}

	var points int
	switch {
	case len(vals) >= vision.RefinedMeshPoints*3:
		points = vision.RefinedMeshPoints
	case len(vals) >= vision.MeshPoints*3:
		points = vision.MeshPoints
	default:
		return nil, fmt.Errorf("facemesh: unexpected output size %d", len(vals))
	}

	set := make(vision.LandmarkSet, points)
	for i := 0; i < points; i++ {
		set[i] = vision.Point{
			X: float64(vals[i*3]) / inputSize,
			Y: float64(vals[i*3+1]) / inputSize,
			Z: float64(vals[i*3+2]) / inputSize,
		}
	}

	// A mesh collapsed to implausible coordinates means the net saw
	// no face in the crop.
	if set.Quality() < 0.5 {
		return nil, nil
	}
	return set, nil
}

// Close releases the network.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
