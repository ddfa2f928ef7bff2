package vision

import (
	"math"
	"testing"
)

const angleTolerance = 0.5 // degrees

// syntheticFace builds a full refined landmark set whose reference
// points are the canonical face rotated by the given angles (degrees)
// and projected into normalized image coordinates. Non-reference
// landmarks sit at the frame center.
func syntheticFace(pitch, yaw, roll float64) LandmarkSet {
	ls := make(LandmarkSet, RefinedMeshPoints)
	for i := range ls {
		ls[i] = Point{X: 0.5, Y: 0.5, Z: 0}
	}

	r := rotationZYX(roll*math.Pi/180, yaw*math.Pi/180, pitch*math.Pi/180)
	const scale = 0.003
	for i, idx := range referenceIndices {
		v := matVec(r, canonicalFace[i])
		ls[idx] = Point{
			X: 0.5 + scale*v.x,
			Y: 0.5 - scale*v.y,
			Z: -scale * v.z,
		}
	}
	return ls
}

// rotationZYX returns Rz(roll) * Ry(yaw) * Rx(pitch).
func rotationZYX(roll, yaw, pitch float64) [3][3]float64 {
	cr, sr := math.Cos(roll), math.Sin(roll)
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)

	return [3][3]float64{
		{cr * cy, cr*sy*sp - sr*cp, cr*sy*cp + sr*sp},
		{sr * cy, sr*sy*sp + cr*cp, sr*sy*cp - cr*sp},
		{-sy, cy * sp, cy * cp},
	}
}

func matVec(m [3][3]float64, v vec3) vec3 {
	return vec3{
		m[0][0]*v.x + m[0][1]*v.y + m[0][2]*v.z,
		m[1][0]*v.x + m[1][1]*v.y + m[1][2]*v.z,
		m[2][0]*v.x + m[2][1]*v.y + m[2][2]*v.z,
	}
}

func TestEstimateHeadPose_RecoversAngles(t *testing.T) {
	cases := []struct {
		name              string
		pitch, yaw, roll  float64
	}{
		{"frontal", 0, 0, 0},
		{"yaw right", 0, 30, 0},
		{"yaw left", 0, -30, 0},
		{"pitch down", 25, 0, 0},
		{"pitch up", -25, 0, 0},
		{"roll", 0, 0, 15},
		{"combined", 10, -20, 5},
		{"extreme yaw", 0, 60, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ls := syntheticFace(tc.pitch, tc.yaw, tc.roll)
			pose, ok := EstimateHeadPose(ls)
			if !ok {
				t.Fatal("pose fit failed")
			}
			if math.Abs(pose.Pitch-tc.pitch) > angleTolerance {
				t.Errorf("pitch: got %.2f, want %.2f", pose.Pitch, tc.pitch)
			}
			if math.Abs(pose.Yaw-tc.yaw) > angleTolerance {
				t.Errorf("yaw: got %.2f, want %.2f", pose.Yaw, tc.yaw)
			}
			if math.Abs(pose.Roll-tc.roll) > angleTolerance {
				t.Errorf("roll: got %.2f, want %.2f", pose.Roll, tc.roll)
			}
		})
	}
}

func TestEstimateHeadPose_ScaleInvariant(t *testing.T) {
	ls := syntheticFace(0, 25, 0)
	// Shrink the face to a quarter of its size around the frame center.
	for i, idx := range referenceIndices {
		_ = i
		p := ls[idx]
		ls[idx] = Point{
			X: 0.5 + (p.X-0.5)/4,
			Y: 0.5 + (p.Y-0.5)/4,
			Z: p.Z / 4,
		}
	}

	pose, ok := EstimateHeadPose(ls)
	if !ok {
		t.Fatal("pose fit failed")
	}
	if math.Abs(pose.Yaw-25) > angleTolerance {
		t.Errorf("yaw after scaling: got %.2f, want 25", pose.Yaw)
	}
}

func TestEstimateHeadPose_Degenerate(t *testing.T) {
	t.Run("incomplete set", func(t *testing.T) {
		if _, ok := EstimateHeadPose(make(LandmarkSet, 10)); ok {
			t.Error("expected failure for incomplete set")
		}
	})

	t.Run("collapsed points", func(t *testing.T) {
		ls := make(LandmarkSet, MeshPoints)
		for i := range ls {
			ls[i] = Point{X: 0.5, Y: 0.5, Z: 0}
		}
		if _, ok := EstimateHeadPose(ls); ok {
			t.Error("expected failure for collapsed reference points")
		}
	})

	t.Run("non-finite landmark", func(t *testing.T) {
		ls := syntheticFace(0, 0, 0)
		ls[IdxNoseTip] = Point{X: math.NaN(), Y: 0.5, Z: 0}
		if _, ok := EstimateHeadPose(ls); ok {
			t.Error("expected failure for NaN landmark")
		}
	})
}
