package vision

import (
	"math"
	"time"
)

// Direction is a discrete orientation label for head pose or eye gaze.
type Direction string

const (
	DirForward Direction = "forward"
	DirLeft    Direction = "left"
	DirRight   Direction = "right"
	DirUp      Direction = "up"
	DirDown    Direction = "down"
	DirNone    Direction = "none"
)

// Config holds the classification thresholds.
type Config struct {
	// Head orientation thresholds in degrees.
	YawThreshold   float64
	PitchThreshold float64
	RollThreshold  float64

	// Gaze thresholds in eye-box units.
	GazeXThreshold float64
	GazeYThreshold float64
}

// DefaultConfig returns thresholds tuned for a dash-mounted camera.
func DefaultConfig() Config {
	return Config{
		YawThreshold:   20,
		PitchThreshold: 15,
		RollThreshold:  20,
		GazeXThreshold: 0.25,
		GazeYThreshold: 0.25,
	}
}

// PoseResult is the per-frame classification snapshot. It is immutable
// once produced; consumers may retain it transiently for diagnostics.
type PoseResult struct {
	FaceDetected bool      `json:"face_detected"`
	Timestamp    time.Time `json:"timestamp"`

	Pose HeadPose `json:"pose"`
	Gaze Gaze     `json:"gaze"`

	FaceOrientation Direction `json:"face_orientation"`
	EyeGaze         Direction `json:"eye_gaze"`

	// Confidence reflects landmark completeness and plausibility in
	// [0,1]. Diagnostic only: any FaceDetected result is usable
	// downstream regardless of confidence.
	Confidence float64 `json:"confidence"`
}

// FaceForward reports whether the face is oriented toward the road.
// A missed face counts as not forward.
func (r PoseResult) FaceForward() bool {
	return r.FaceDetected && r.FaceOrientation == DirForward
}

// EyesForward reports whether the eyes are looking at the road.
func (r PoseResult) EyesForward() bool {
	return r.FaceDetected && r.EyeGaze == DirForward
}

// Classifier converts landmark sets into orientation classifications.
// It is stateless apart from its thresholds and safe for reuse across
// frames; Classify never blocks.
type Classifier struct {
	cfg Config
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(cfg Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify produces a PoseResult for one frame's landmark set.
//
// A nil or incomplete set is the common "no face in frame" outcome,
// not an error: the result has FaceDetected=false and zero confidence.
// Degenerate geometry falls back to a neutral forward classification
// with zero confidence rather than propagating undefined angles.
func (c *Classifier) Classify(ls LandmarkSet, ts time.Time) PoseResult {
	if !ls.Complete() {
		return PoseResult{
			FaceDetected:    false,
			Timestamp:       ts,
			FaceOrientation: DirNone,
			EyeGaze:         DirNone,
		}
	}

	res := PoseResult{
		FaceDetected: true,
		Timestamp:    ts,
		Confidence:   ls.Quality(),
	}

	pose, poseOK := EstimateHeadPose(ls)
	if poseOK {
		res.Pose = pose
		res.FaceOrientation = c.classifyOrientation(pose)
	} else {
		res.FaceOrientation = DirForward
		res.Confidence = 0
	}

	gaze, gazeOK := EstimateGaze(ls)
	if gazeOK {
		res.Gaze = gaze
		res.EyeGaze = c.classifyGaze(gaze)
	} else {
		res.EyeGaze = DirForward
		res.Confidence = 0
	}

	return res
}

// classifyOrientation maps head pose angles to a discrete label.
// Yaw is checked before pitch: when both exceed threshold, yaw wins,
// since lateral inattention is the primary safety signal.
func (c *Classifier) classifyOrientation(p HeadPose) Direction {
	if math.Abs(p.Yaw) > c.cfg.YawThreshold {
		if p.Yaw > 0 {
			return DirRight
		}
		return DirLeft
	}
	if math.Abs(p.Pitch) > c.cfg.PitchThreshold {
		if p.Pitch > 0 {
			return DirDown
		}
		return DirUp
	}
	return DirForward
}

// classifyGaze applies the same horizontal-before-vertical pattern to
// the gaze components.
func (c *Classifier) classifyGaze(g Gaze) Direction {
	if math.Abs(g.X) > c.cfg.GazeXThreshold {
		if g.X > 0 {
			return DirRight
		}
		return DirLeft
	}
	if math.Abs(g.Y) > c.cfg.GazeYThreshold {
		if g.Y > 0 {
			return DirDown
		}
		return DirUp
	}
	return DirForward
}
