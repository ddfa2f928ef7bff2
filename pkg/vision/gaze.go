package vision

import "math"

// Gaze is the eye-direction offset, independent of head pose.
// Components are normalized to the eye box, so they are scale-invariant
// across face distance: X positive toward the classifier's right,
// Y positive downward. Forward gaze is near (0,0).
type Gaze struct {
	X float64
	Y float64
}

// eyeGeometry names the landmarks bounding one eye.
type eyeGeometry struct {
	inner, outer, top, bottom int
	iris                      int
}

var (
	leftEye  = eyeGeometry{IdxLeftEyeInner, IdxLeftEyeOuter, IdxLeftEyeTop, IdxLeftEyeBottom, IdxLeftIris}
	rightEye = eyeGeometry{IdxRightEyeInner, IdxRightEyeOuter, IdxRightEyeTop, IdxRightEyeBottom, IdxRightIris}
)

// EstimateGaze derives the horizontal and vertical gaze components from
// the position of the iris within each eye's bounding geometry, averaged
// over both eyes. Sets without iris landmarks fall back to eye-corner
// symmetry with the lid midpoint as a pseudo-pupil.
//
// Degenerate geometry (zero-width or zero-height eye box) contributes a
// neutral reading rather than an undefined ratio.
func EstimateGaze(ls LandmarkSet) (Gaze, bool) {
	if !ls.Complete() {
		return Gaze{}, false
	}

	gl, okL := singleEyeGaze(ls, leftEye)
	gr, okR := singleEyeGaze(ls, rightEye)

	switch {
	case okL && okR:
		return Gaze{X: (gl.X + gr.X) / 2, Y: (gl.Y + gr.Y) / 2}, true
	case okL:
		return gl, true
	case okR:
		return gr, true
	default:
		return Gaze{}, false
	}
}

func singleEyeGaze(ls LandmarkSet, eye eyeGeometry) (Gaze, bool) {
	inner, outer := ls[eye.inner], ls[eye.outer]
	top, bottom := ls[eye.top], ls[eye.bottom]

	if !inner.plausible() || !outer.plausible() || !top.plausible() || !bottom.plausible() {
		return Gaze{}, false
	}

	width := math.Abs(outer.X - inner.X)
	height := math.Abs(bottom.Y - top.Y)
	if width < 1e-6 || height < 1e-6 {
		return Gaze{}, false
	}

	centerX := (inner.X + outer.X) / 2
	centerY := (top.Y + bottom.Y) / 2

	var pupilX, pupilY float64
	if ls.Refined() && ls[eye.iris].plausible() {
		pupilX = ls[eye.iris].X
		pupilY = ls[eye.iris].Y
	} else {
		// No iris points: the lid midpoint tracks the pupil closely
		// enough for the coarse forward/away classification.
		pupilX = (top.X + bottom.X) / 2
		pupilY = (top.Y + bottom.Y) / 2
	}

	return Gaze{
		X: (pupilX - centerX) / width,
		Y: (pupilY - centerY) / height,
	}, true
}
