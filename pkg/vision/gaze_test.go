package vision

import (
	"math"
	"testing"
)

// faceWithEyes extends a frontal synthetic face with explicit eye
// geometry. Iris offsets are in eye-box units.
func faceWithEyes(irisOffsetX, irisOffsetY float64) LandmarkSet {
	ls := syntheticFace(0, 0, 0)

	// Left eye box: width 0.10, height 0.04, centered at (0.40, 0.50).
	ls[IdxLeftEyeOuter] = Point{X: 0.35, Y: 0.50}
	ls[IdxLeftEyeInner] = Point{X: 0.45, Y: 0.50}
	ls[IdxLeftEyeTop] = Point{X: 0.40, Y: 0.48}
	ls[IdxLeftEyeBottom] = Point{X: 0.40, Y: 0.52}
	ls[IdxLeftIris] = Point{X: 0.40 + irisOffsetX*0.10, Y: 0.50 + irisOffsetY*0.04}

	// Right eye box: width 0.10, height 0.04, centered at (0.60, 0.50).
	ls[IdxRightEyeInner] = Point{X: 0.55, Y: 0.50}
	ls[IdxRightEyeOuter] = Point{X: 0.65, Y: 0.50}
	ls[IdxRightEyeTop] = Point{X: 0.60, Y: 0.48}
	ls[IdxRightEyeBottom] = Point{X: 0.60, Y: 0.52}
	ls[IdxRightIris] = Point{X: 0.60 + irisOffsetX*0.10, Y: 0.50 + irisOffsetY*0.04}

	return ls
}

func TestEstimateGaze_Centered(t *testing.T) {
	g, ok := EstimateGaze(faceWithEyes(0, 0))
	if !ok {
		t.Fatal("gaze estimation failed")
	}
	if math.Abs(g.X) > 0.01 || math.Abs(g.Y) > 0.01 {
		t.Errorf("centered iris: got (%.3f, %.3f), want ~(0, 0)", g.X, g.Y)
	}
}

func TestEstimateGaze_Offsets(t *testing.T) {
	cases := []struct {
		name           string
		offX, offY     float64
		wantX, wantY   float64
	}{
		{"looking right", 0.3, 0, 0.3, 0},
		{"looking left", -0.3, 0, -0.3, 0},
		{"looking down", 0, 0.4, 0, 0.4},
		{"looking up", 0, -0.4, 0, -0.4},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, ok := EstimateGaze(faceWithEyes(tc.offX, tc.offY))
			if !ok {
				t.Fatal("gaze estimation failed")
			}
			if math.Abs(g.X-tc.wantX) > 0.02 {
				t.Errorf("X: got %.3f, want %.3f", g.X, tc.wantX)
			}
			if math.Abs(g.Y-tc.wantY) > 0.02 {
				t.Errorf("Y: got %.3f, want %.3f", g.Y, tc.wantY)
			}
		})
	}
}

func TestEstimateGaze_EyeCornerFallback(t *testing.T) {
	// Base mesh only: no iris landmarks, lid midpoint stands in.
	ls := faceWithEyes(0, 0)[:MeshPoints]
	g, ok := EstimateGaze(ls)
	if !ok {
		t.Fatal("fallback gaze estimation failed")
	}
	if math.Abs(g.X) > 0.01 || math.Abs(g.Y) > 0.01 {
		t.Errorf("fallback neutral gaze: got (%.3f, %.3f), want ~(0, 0)", g.X, g.Y)
	}
}

func TestEstimateGaze_DegenerateEyeBox(t *testing.T) {
	ls := faceWithEyes(0, 0)
	// Collapse both eye boxes to a point.
	for _, idx := range []int{
		IdxLeftEyeOuter, IdxLeftEyeInner, IdxLeftEyeTop, IdxLeftEyeBottom,
		IdxRightEyeOuter, IdxRightEyeInner, IdxRightEyeTop, IdxRightEyeBottom,
	} {
		ls[idx] = Point{X: 0.5, Y: 0.5}
	}
	if _, ok := EstimateGaze(ls); ok {
		t.Error("expected failure for zero-size eye boxes")
	}
}

func TestEstimateGaze_OneGoodEye(t *testing.T) {
	ls := faceWithEyes(0.3, 0)
	// Break only the left eye; the right eye should carry the reading.
	ls[IdxLeftEyeOuter] = Point{X: 0.45, Y: 0.50}
	g, ok := EstimateGaze(ls)
	if !ok {
		t.Fatal("gaze estimation failed with one good eye")
	}
	if math.Abs(g.X-0.3) > 0.02 {
		t.Errorf("X from right eye: got %.3f, want 0.3", g.X)
	}
}
