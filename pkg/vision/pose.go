package vision

import "math"

// HeadPose is the head orientation in degrees.
// Yaw is positive when the face turns toward the classifier's right,
// pitch is positive when the face tilts down, roll is positive for a
// clockwise tilt as seen by the classifier.
type HeadPose struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// vec3 is a small 3-vector used by the pose fit.
type vec3 struct{ x, y, z float64 }

func (v vec3) sub(o vec3) vec3 { return vec3{v.x - o.x, v.y - o.y, v.z - o.z} }

func (v vec3) scale(s float64) vec3 { return vec3{v.x * s, v.y * s, v.z * s} }

func (v vec3) norm() float64 { return math.Sqrt(v.x*v.x + v.y*v.y + v.z*v.z) }

// canonicalFace is the frontal reference configuration for the six
// stable landmarks, in a metric frame: x right, y up, z toward the
// camera. Values are the widely used generic head model (millimetres);
// only the shape matters since the fit is scale-normalized.
var canonicalFace = [6]vec3{
	{0.0, 0.0, 0.0},        // nose tip
	{0.0, -63.6, -12.5},    // chin
	{-43.3, 32.7, -26.0},   // left eye outer corner
	{43.3, 32.7, -26.0},    // right eye outer corner
	{-28.9, -28.9, -24.1},  // mouth left corner
	{28.9, -28.9, -24.1},   // mouth right corner
}

// referenceIndices pairs each canonical point with its mesh index,
// in the same order as canonicalFace.
var referenceIndices = [6]int{
	IdxNoseTip, IdxChin, IdxLeftEyeOuter, IdxRightEyeOuter, IdxMouthLeft, IdxMouthRight,
}

// EstimateHeadPose fits the rigid rotation that best aligns the
// canonical frontal face to the detected reference landmarks and
// returns the resulting Euler angles in degrees.
//
// The fit is a least-squares absolute-orientation solve (Horn's
// quaternion method); both point sets are centered and scale-normalized
// first, so the result is invariant to face distance. Returns ok=false
// for degenerate configurations (collapsed or collinear points) rather
// than producing undefined angles.
func EstimateHeadPose(ls LandmarkSet) (HeadPose, bool) {
	if !ls.Complete() {
		return HeadPose{}, false
	}

	var detected [6]vec3
	for i, idx := range referenceIndices {
		p := ls[idx]
		if !p.plausible() {
			return HeadPose{}, false
		}
		// Image coordinates grow down and into the scene; flip to the
		// canonical frame (y up, z toward camera).
		detected[i] = vec3{p.X, -p.Y, -p.Z}
	}

	r, ok := fitRotation(canonicalFace, detected)
	if !ok {
		return HeadPose{}, false
	}

	pitch, yaw, roll := eulerAngles(r)
	return HeadPose{
		Pitch: pitch * 180 / math.Pi,
		Yaw:   yaw * 180 / math.Pi,
		Roll:  roll * 180 / math.Pi,
	}, true
}

// fitRotation solves for the rotation R minimizing Σ|b_i - R a_i|²
// over centered, scale-normalized copies of a and b.
func fitRotation(a, b [6]vec3) ([3][3]float64, bool) {
	ca, okA := centerAndNormalize(a)
	cb, okB := centerAndNormalize(b)
	if !okA || !okB {
		return [3][3]float64{}, false
	}

	// Cross-covariance of the two point sets.
	var m [3][3]float64
	for i := range ca {
		p, q := ca[i], cb[i]
		m[0][0] += p.x * q.x
		m[0][1] += p.x * q.y
		m[0][2] += p.x * q.z
		m[1][0] += p.y * q.x
		m[1][1] += p.y * q.y
		m[1][2] += p.y * q.z
		m[2][0] += p.z * q.x
		m[2][1] += p.z * q.y
		m[2][2] += p.z * q.z
	}

	q, ok := dominantQuaternion(m)
	if !ok {
		return [3][3]float64{}, false
	}
	return quaternionToMatrix(q), true
}

// centerAndNormalize subtracts the centroid and divides by the RMS
// radius. A near-zero radius means the points are collapsed.
func centerAndNormalize(pts [6]vec3) ([6]vec3, bool) {
	var c vec3
	for _, p := range pts {
		c.x += p.x
		c.y += p.y
		c.z += p.z
	}
	c = c.scale(1.0 / float64(len(pts)))

	var out [6]vec3
	var sum float64
	for i, p := range pts {
		out[i] = p.sub(c)
		sum += out[i].norm() * out[i].norm()
	}
	rms := math.Sqrt(sum / float64(len(pts)))
	if rms < 1e-9 {
		return out, false
	}
	inv := 1.0 / rms
	for i := range out {
		out[i] = out[i].scale(inv)
	}
	return out, true
}

// dominantQuaternion finds the unit quaternion maximizing the Horn
// alignment criterion: the dominant eigenvector of the symmetric 4x4
// matrix built from the cross-covariance. Power iteration with a
// positive shift is sufficient here; the matrix is tiny and the
// iteration count is fixed, so the cost is bounded.
func dominantQuaternion(m [3][3]float64) ([4]float64, bool) {
	sxx, sxy, sxz := m[0][0], m[0][1], m[0][2]
	syx, syy, syz := m[1][0], m[1][1], m[1][2]
	szx, szy, szz := m[2][0], m[2][1], m[2][2]

	n := [4][4]float64{
		{sxx + syy + szz, syz - szy, szx - sxz, sxy - syx},
		{syz - szy, sxx - syy - szz, sxy + syx, szx + sxz},
		{szx - sxz, sxy + syx, -sxx + syy - szz, syz + szy},
		{sxy - syx, szx + sxz, syz + szy, -sxx - syy + szz},
	}

	// Shift so the largest eigenvalue is also largest in magnitude.
	var shift float64
	for i := 0; i < 4; i++ {
		row := 0.0
		for j := 0; j < 4; j++ {
			row += math.Abs(n[i][j])
		}
		if row > shift {
			shift = row
		}
	}
	for i := 0; i < 4; i++ {
		n[i][i] += shift
	}

	q := [4]float64{1, 0, 0, 0}
	for iter := 0; iter < 100; iter++ {
		var next [4]float64
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				next[i] += n[i][j] * q[j]
			}
		}
		norm := math.Sqrt(next[0]*next[0] + next[1]*next[1] + next[2]*next[2] + next[3]*next[3])
		if norm < 1e-12 {
			return q, false
		}
		for i := range next {
			next[i] /= norm
		}
		q = next
	}
	return q, true
}

// quaternionToMatrix converts a unit quaternion (w,x,y,z) to the
// rotation matrix mapping reference coordinates to detected ones.
func quaternionToMatrix(q [4]float64) [3][3]float64 {
	w, x, y, z := q[0], q[1], q[2], q[3]
	return [3][3]float64{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}

// eulerAngles decomposes R = Rz(roll) * Ry(yaw) * Rx(pitch) in the
// canonical camera frame (x right, y up, z toward camera). Angles are
// in radians.
func eulerAngles(r [3][3]float64) (pitch, yaw, roll float64) {
	sinYaw := -r[2][0]
	if sinYaw > 1 {
		sinYaw = 1
	} else if sinYaw < -1 {
		sinYaw = -1
	}
	yaw = math.Asin(sinYaw)

	// Near gimbal lock pitch and roll are coupled; fold everything
	// into pitch and report zero roll.
	if math.Abs(sinYaw) > 0.9999 {
		pitch = math.Atan2(r[0][1], r[1][1])
		roll = 0
		return pitch, yaw, roll
	}

	pitch = math.Atan2(r[2][1], r[2][2])
	roll = math.Atan2(r[1][0], r[0][0])
	return pitch, yaw, roll
}
