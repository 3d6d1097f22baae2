package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	n := Quat{X: 1, Y: 2, Z: 3, W: 4}.Normalize()
	if !ApproxEqual(n.Length(), 1, 1e-5) {
		t.Errorf("Normalized quaternion length should be 1, got %v", n.Length())
	}
	if got := (Quat{}).Normalize(); got != QuatIdentity() {
		t.Errorf("zero quaternion should normalize to identity, got %v", got)
	}
}

func TestQuatInverse(t *testing.T) {
	quats := []Quat{
		QuatFromAxisAngle(Vec3{1, 2, 3}, 0.8),
		{X: 0.5, Y: -1, Z: 2, W: 3},
		QuatFromEulerYXZ(1, -2, 0.5),
	}
	for _, q := range quats {
		if got := q.Mul(q.Inverse()); !got.ApproxEqual(QuatIdentity(), 1e-5) {
			t.Errorf("q * q^-1 for %v = %v, want identity", q, got)
		}
	}
}

func TestQuatSlerp(t *testing.T) {
	q1 := QuatIdentity()
	q2 := QuatFromAxisAngle(Vec3UnitY, float32(math.Pi/2))

	// Endpoints are returned exactly.
	if got := q1.Slerp(q2, 0); got != q1 {
		t.Errorf("Slerp at t=0 should equal q1, got %v", got)
	}
	if got := q1.Slerp(q2, 1); got != q2 {
		t.Errorf("Slerp at t=1 should equal q2, got %v", got)
	}

	// For 90 degree rotation, halfway should be 45 degrees
	result5 := q1.Slerp(q2, 0.5)
	expectedW := float32(math.Cos(math.Pi / 8))
	if !ApproxEqual(result5.W, expectedW, 1e-4) {
		t.Errorf("Slerp at t=0.5: expected W ~%v, got %v", expectedW, result5.W)
	}
}

func TestQuatToMat4(t *testing.T) {
	if m := QuatIdentity().ToMat4(); m != Identity() {
		t.Errorf("Identity quat should produce identity matrix, got %v", m)
	}

	axis := Vec3{1, -1, 2}
	q := QuatFromAxisAngle(axis, 1.3)
	if !q.ToMat4().ApproxEqual(RotateAxis(axis, 1.3), tol) {
		t.Errorf("ToMat4 disagrees with RotateAxis")
	}
	if back := QuatFromMat4(q.ToMat4()); !back.ApproxEqual(q, 1e-5) {
		t.Errorf("QuatFromMat4 round trip: got %v, want %v", back, q)
	}
}

func TestQuatFromMat4AllBranches(t *testing.T) {
	// Near-180 degree rotations exercise each diagonal branch.
	for _, axis := range []Vec3{Vec3UnitX, Vec3UnitY, Vec3UnitZ} {
		q := QuatFromAxisAngle(axis, 3.1)
		if back := QuatFromMat4(q.ToMat4()); !back.ApproxEqual(q, 1e-4) {
			t.Errorf("axis %v: got %v, want %v", axis, back, q)
		}
	}
}

func TestQuatRotateVec(t *testing.T) {
	q := QuatFromAxisAngle(Vec3UnitY, float32(math.Pi/2))
	if got := q.RotateVec(Vec3{1, 0, 0}); !got.ApproxEqual(Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("RotateVec: got %v, want (0, 0, -1)", got)
	}

	q = QuatFromEulerYXZ(0.4, 1.2, -0.7)
	v := Vec3{3, -2, 5}
	want := q.ToMat4().TransformDirection(v)
	if got := q.RotateVec(v); !got.ApproxEqual(want, 1e-5) {
		t.Errorf("RotateVec: got %v, matrix gives %v", got, want)
	}
}

func TestQuatEulerRoundTrip(t *testing.T) {
	cases := []Vec3{
		{0.1, 0.2, 0.3},
		{-1.0, 2.5, -0.4},
		{1.2, -3.0, 2.9},
	}
	for _, e := range cases {
		q := QuatFromEulerYXZ(e.X, e.Y, e.Z)
		got := q.EulerYXZ()
		back := QuatFromEulerYXZ(got.X, got.Y, got.Z)
		if !back.ApproxEqual(q, 1e-5) {
			t.Errorf("euler %v: round trip %v -> %v", e, q, back)
		}
		if !q.ToMat4().ApproxEqual(RotationYXZ(e.X, e.Y, e.Z), tol) {
			t.Errorf("euler %v: quaternion and matrix disagree", e)
		}
	}
}

func TestQuatAxisAngleRoundTrip(t *testing.T) {
	axis := Vec3{2, 3, -6}.Normalize()
	for _, deg := range []float32{1, 45, 90, 135, 179} {
		q := QuatFromAxisAngle(axis, DegToRad(deg))
		gotAxis, gotAngle := q.ToAxisAngle()
		if !gotAxis.ApproxEqual(axis, 1e-4) {
			t.Errorf("%v deg: axis %v, want %v", deg, gotAxis, axis)
		}
		if !ApproxEqual(RadToDeg(gotAngle), deg, 1e-2) {
			t.Errorf("%v deg: angle %v", deg, RadToDeg(gotAngle))
		}
	}

	a, angle := QuatIdentity().ToAxisAngle()
	if !a.IsZero() || angle != 0 {
		t.Errorf("identity should give zero axis and angle, got %v %v", a, angle)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 2, 0}, float32(math.Pi/2))
	expected := float32(math.Sin(math.Pi / 4))
	if !ApproxEqual(q.Y, expected, 1e-6) || !ApproxEqual(q.W, expected, 1e-6) {
		t.Errorf("QuatFromAxisAngle: got %v", q)
	}
	if got := QuatFromAxisAngle(Vec3{}, 1); got != QuatIdentity() {
		t.Errorf("zero axis should give identity, got %v", got)
	}
}
