// Package vision classifies head pose and eye gaze from facial landmarks.
//
// The landmark set is produced by an external detection model (see the
// LandmarkDetector interface); this package is pure geometry on top of it
// and never blocks, allocates heavily, or panics on degenerate input.
package vision

import "math"

// Mesh sizes for the face landmark topology.
// A refined mesh carries ten extra iris points after the base set.
const (
	MeshPoints        = 468
	RefinedMeshPoints = 478
)

// Stable reference landmark indices within the mesh.
// These are the points used for the rigid head-pose fit.
const (
	IdxNoseTip       = 1
	IdxChin          = 152
	IdxLeftEyeOuter  = 33
	IdxRightEyeOuter = 263
	IdxMouthLeft     = 61
	IdxMouthRight    = 291
)

// Eye geometry indices (subject's left and right).
const (
	IdxLeftEyeInner  = 133
	IdxLeftEyeTop    = 159
	IdxLeftEyeBottom = 145

	IdxRightEyeInner  = 362
	IdxRightEyeTop    = 386
	IdxRightEyeBottom = 374
)

// Iris center indices, present only in a refined mesh.
const (
	IdxLeftIris  = 468
	IdxRightIris = 473
)

// Point is a single 3-D landmark in normalized image coordinates.
// X and Y are in [0,1] across the frame; Z is depth relative to the
// face plane, negative toward the camera.
type Point struct {
	X, Y, Z float64
}

// LandmarkSet is an ordered, fixed-topology sequence of mesh points.
// It is owned by the call that produced it and must not be retained
// past classification.
type LandmarkSet []Point

// Refined reports whether the set carries iris landmarks.
func (ls LandmarkSet) Refined() bool {
	return len(ls) >= RefinedMeshPoints
}

// Complete reports whether the set carries at least the base mesh.
func (ls LandmarkSet) Complete() bool {
	return len(ls) >= MeshPoints
}

// plausible reports whether a point is finite and near the frame.
// Landmarks slightly outside [0,1] are normal for a face at the edge.
func (p Point) plausible() bool {
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		return false
	}
	if math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) || math.IsInf(p.Z, 0) {
		return false
	}
	return p.X > -0.5 && p.X < 1.5 && p.Y > -0.5 && p.Y < 1.5
}

// Quality returns the fraction of landmarks that are present and
// plausible, in [0,1]. Used as the classifier confidence signal.
func (ls LandmarkSet) Quality() float64 {
	if len(ls) == 0 {
		return 0
	}
	good := 0
	for _, p := range ls {
		if p.plausible() {
			good++
		}
	}
	completeness := float64(len(ls)) / float64(MeshPoints)
	if completeness > 1 {
		completeness = 1
	}
	return completeness * float64(good) / float64(len(ls))
}
