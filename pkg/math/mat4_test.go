package math

import (
	"math"
	"testing"
)

const tol = 1e-5

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	result := m.Mul(Identity())
	if result != m {
		t.Errorf("M * I should equal M: got %v, want %v", result, m)
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(Vec3{5, 10, 15})

	// Translation should be in column 4 (indices 12, 13, 14)
	if got := m.Translation(); got != (Vec3{5, 10, 15}) {
		t.Errorf("Translate: got %v, want (5, 10, 15)", got)
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(Vec3{10, 20, 30})
	if got := m.TransformPoint(Vec3{1, 2, 3}); got != (Vec3{11, 22, 33}) {
		t.Errorf("TransformPoint: got %v, want (11, 22, 33)", got)
	}

	s := Scale(Vec3{2, 2, 2})
	if got := s.TransformPoint(Vec3{1, 2, 3}); got != (Vec3{2, 4, 6}) {
		t.Errorf("TransformPoint with scale: got %v, want (2, 4, 6)", got)
	}

	// Directions ignore translation.
	if got := m.TransformDirection(Vec3{1, 0, 0}); got != (Vec3{1, 0, 0}) {
		t.Errorf("TransformDirection: got %v, want (1, 0, 0)", got)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2))
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if !result.ApproxEqual(Vec3{0, 0, -1}, 1e-6) {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestRotateAxisMatchesRotateX(t *testing.T) {
	a := RotateAxis(Vec3UnitX, 0.7)
	b := RotateX(0.7)
	if !a.ApproxEqual(b, tol) {
		t.Errorf("RotateAxis(X) = %v, RotateX = %v", a, b)
	}
}

func TestRotationYXZ(t *testing.T) {
	x, y, z := float32(0.3), float32(-1.1), float32(2.0)
	want := RotateY(y).Mul(RotateX(x)).Mul(RotateZ(z))
	got := RotationYXZ(x, y, z)
	if !got.ApproxEqual(want, tol) {
		t.Errorf("RotationYXZ:\n got %v\nwant %v", got, want)
	}

	e := got.EulerYXZ()
	if !e.ApproxEqual(Vec3{x, y, z}, 1e-4) {
		t.Errorf("EulerYXZ round trip: got %v, want (%v, %v, %v)", e, x, y, z)
	}
}

func TestEulerYXZGimbalLock(t *testing.T) {
	m := RotationYXZ(Pi/2, 0.4, 0)
	e := m.EulerYXZ()
	if !RotationYXZ(e.X, e.Y, e.Z).ApproxEqual(m, 1e-4) {
		t.Errorf("gimbal lock extraction %v does not rebuild the rotation", e)
	}
	if e.Z != 0 {
		t.Errorf("roll should fold into yaw at gimbal lock, got %v", e.Z)
	}
}

func TestInverse(t *testing.T) {
	m := Transformation(Vec3{1, -2, 3}, RotationYXZ(0.2, 0.5, -0.3), Vec3{2, 3, 0.5})
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported singular matrix")
	}
	if !m.Mul(inv).ApproxEqual(Identity(), 1e-4) {
		t.Errorf("M * M^-1 should be identity, got %v", m.Mul(inv))
	}

	_, ok = Scale(Vec3{1, 0, 1}).Inverse()
	if ok {
		t.Error("Inverse of a singular matrix should report !ok")
	}
}

func TestInverseRigid(t *testing.T) {
	m := Translate(Vec3{4, 5, 6}).Mul(RotateAxis(Vec3{1, 1, 0}, 1.2))
	general, _ := m.Inverse()
	if rigid := m.InverseRigid(); !rigid.ApproxEqual(general, 1e-5) {
		t.Errorf("InverseRigid:\n got %v\nwant %v", rigid, general)
	}
}

func TestTransformation(t *testing.T) {
	loc := Vec3{1, 2, 3}
	rot := RotateZ(0.9)
	scale := Vec3{2, 3, 4}
	want := Translate(loc).Mul(rot).Mul(Scale(scale))
	if got := Transformation(loc, rot, scale); !got.ApproxEqual(want, tol) {
		t.Errorf("Transformation:\n got %v\nwant %v", got, want)
	}
	if got := want.ScaleFactors(); !got.ApproxEqual(scale, 1e-5) {
		t.Errorf("ScaleFactors: got %v, want %v", got, scale)
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(Vec3{1, 2, 3})
	tr := m.Transpose()
	if tr[3] != 1 || tr[7] != 2 || tr[11] != 3 {
		t.Errorf("Transpose: got %v", tr)
	}
	if tr.Transpose() != m {
		t.Error("Transpose twice should return the original")
	}
}

func TestOrthonormalizeRotation(t *testing.T) {
	m := RotateY(0.5)
	m[0] *= 1.01
	m[4] += 0.02
	o := m.OrthonormalizeRotation(0)
	for i := 0; i < 3; i++ {
		c := o.Column(i).XYZ()
		if !ApproxEqual(c.Length(), 1, 1e-5) {
			t.Errorf("column %d length %v", i, c.Length())
		}
	}
	c0, c1, c2 := o.Column(0).XYZ(), o.Column(1).XYZ(), o.Column(2).XYZ()
	if abs(c0.Dot(c1)) > 1e-5 || abs(c1.Dot(c2)) > 1e-5 || abs(c0.Dot(c2)) > 1e-5 {
		t.Error("columns should be mutually perpendicular")
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1, 0.1, 100)

	// Element [15] should be 0 for perspective projection
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// Element [11] should be -1 for perspective projection
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}

	// The near plane center maps to NDC z = -1.
	p := m.TransformPoint(Vec3{0, 0, -0.1})
	if !ApproxEqual(p.Z, -1, 1e-4) {
		t.Errorf("near plane maps to z=%v, want -1", p.Z)
	}
}

func TestFrustumMatchesPerspective(t *testing.T) {
	near, far := float32(1), float32(50)
	top := near * float32(math.Tan(math.Pi/8))
	f := Frustum(-top, top, -top, top, near, far)
	p := Perspective(float32(math.Pi/4), 1, near, far)
	if !f.ApproxEqual(p, 1e-4) {
		t.Errorf("Frustum:\n got %v\nwant %v", f, p)
	}
}

func TestLookAt(t *testing.T) {
	eye := Vec3{0, 0, 5}
	m := LookAt(eye, Vec3{}, Vec3UnitY)

	if got := m.TransformPoint(eye); !got.ApproxEqual(Vec3{}, 1e-6) {
		t.Errorf("eye should map to origin, got %v", got)
	}
	if got := m.TransformPoint(Vec3{}); !got.ApproxEqual(Vec3{0, 0, -5}, 1e-6) {
		t.Errorf("target should lie down -Z, got %v", got)
	}
}

func TestFromMat3x3(t *testing.T) {
	m3 := [9]float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}
	m4 := FromMat3x3(m3)

	if m4[0] != 1 || m4[1] != 2 || m4[2] != 3 {
		t.Error("FromMat3x3 column 0 incorrect")
	}
	if m4[4] != 4 || m4[5] != 5 || m4[6] != 6 {
		t.Error("FromMat3x3 column 1 incorrect")
	}
	if m4[15] != 1 {
		t.Errorf("FromMat3x3 [15] should be 1, got %f", m4[15])
	}
	if m4.Mat3x3() != m3 {
		t.Error("Mat3x3 should return the original 3x3")
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
