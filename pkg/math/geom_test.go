package math

import "testing"

func TestRayIntersectBox(t *testing.T) {
	box := NewBox(Vec3{-1, -1, -1}, Vec3{1, 1, 1})
	ray := Ray{Start: Vec3{0, 0, -5}, Direction: Vec3{0, 0, 1}}

	hit := ray.IntersectBox(box)
	if hit != (Vec3{0, 0, -1}) {
		t.Fatalf("hit: got %v, want (0, 0, -1)", hit)
	}
	if d := hit.Distance(ray.Start); d != 4 {
		t.Errorf("distance: got %v, want 4", d)
	}

	behind := Ray{Start: Vec3{0, 0, 5}, Direction: Vec3{0, 0, 1}}
	if got := behind.IntersectBox(box); !got.IsNull() {
		t.Errorf("box behind the ray should miss, got %v", got)
	}

	inside := Ray{Start: Vec3{0, 0, 0}, Direction: Vec3{1, 0, 0}}
	if got := inside.IntersectBox(box); got != (Vec3{1, 0, 0}) {
		t.Errorf("ray from inside should return the exit, got %v", got)
	}

	miss := Ray{Start: Vec3{5, 0, -5}, Direction: Vec3{0, 0, 1}}
	if got := miss.IntersectBox(box); !got.IsNull() {
		t.Errorf("parallel ray outside the slab should miss, got %v", got)
	}
}

func TestRayIntersectSphere(t *testing.T) {
	s := Sphere{Center: Vec3{0, 0, -10}, Radius: 2}

	outside := Ray{Start: Vec3{}, Direction: Vec3{0, 0, -1}}
	if got := outside.IntersectSphere(s); !got.ApproxEqual(Vec3{0, 0, -8}, 1e-5) {
		t.Errorf("near root: got %v, want (0, 0, -8)", got)
	}

	// A ray starting inside returns the exit point.
	inside := Ray{Start: Vec3{0, 0, -10}, Direction: Vec3{0, 1, 0}}
	if got := inside.IntersectSphere(s); !got.ApproxEqual(Vec3{0, 2, -10}, 1e-5) {
		t.Errorf("exit point: got %v, want (0, 2, -10)", got)
	}

	away := Ray{Start: Vec3{}, Direction: Vec3{0, 0, 1}}
	if got := away.IntersectSphere(s); !got.IsNull() {
		t.Errorf("sphere behind the start should miss, got %v", got)
	}
}

func TestPlaneIntersectRay(t *testing.T) {
	p := PlaneFromNormalAndPoint(Vec3UnitY, Vec3{0, 2, 0})

	r := Ray{Start: Vec3{1, 10, 3}, Direction: Vec3{0, -2, 0}}
	hit := p.IntersectRay(r)
	if hit.XYZ() != (Vec3{1, 2, 3}) || hit.W != 4 {
		t.Errorf("IntersectRay: got %v, want location (1,2,3) at t=4", hit)
	}

	parallel := Ray{Start: Vec3{0, 5, 0}, Direction: Vec3{1, 0, 0}}
	if got := p.IntersectRay(parallel); !got.IsNull() {
		t.Errorf("parallel ray should return null, got %v", got)
	}
}

func TestPlaneFromPoints(t *testing.T) {
	p := PlaneFromPoints(Vec3{0, 0, 0}, Vec3{1, 0, 0}, Vec3{0, 1, 0})
	if p.Normal() != Vec3UnitZ {
		t.Errorf("CCW triangle in XY should face +Z, got %v", p.Normal())
	}
	if d := p.Distance(Vec3{5, 5, 3}); d != 3 {
		t.Errorf("Distance: got %v, want 3", d)
	}
}

func TestIntersectPlanes(t *testing.T) {
	px := PlaneFromNormalAndPoint(Vec3UnitX, Vec3{1, 0, 0})
	py := PlaneFromNormalAndPoint(Vec3UnitY, Vec3{0, 2, 0})
	pz := PlaneFromNormalAndPoint(Vec3UnitZ, Vec3{0, 0, 3})
	if got := IntersectPlanes(px, py, pz); !got.ApproxEqual(Vec3{1, 2, 3}, 1e-6) {
		t.Errorf("IntersectPlanes: got %v, want (1, 2, 3)", got)
	}

	px2 := PlaneFromNormalAndPoint(Vec3UnitX, Vec3{4, 0, 0})
	if got := IntersectPlanes(px, px2, pz); !got.IsNull() {
		t.Errorf("parallel planes should return null, got %v", got)
	}
}

func TestBarycentric(t *testing.T) {
	f := Face{A: Vec3{0, 0, 0}, B: Vec3{4, 0, 0}, C: Vec3{0, 4, 0}}

	points := []struct {
		p      Vec3
		inside bool
	}{
		{Vec3{1, 1, 0}, true},
		{Vec3{0, 0, 0}, true},
		{Vec3{2, 2, 0}, true},
		{Vec3{3, 3, 0}, false},
		{Vec3{-1, 1, 0}, false},
	}
	for _, c := range points {
		w := f.Barycentric(c.p)
		if sum := w.X + w.Y + w.Z; !ApproxEqual(sum, 1, 1e-6) {
			t.Errorf("%v: weights %v sum to %v", c.p, w, sum)
		}
		if got := f.Contains(c.p); got != c.inside {
			t.Errorf("%v: Contains = %v, want %v", c.p, got, c.inside)
		}
		if back := f.FromBarycentric(w); !back.ApproxEqual(c.p, 1e-5) {
			t.Errorf("%v: FromBarycentric gives %v", c.p, back)
		}
	}
}

func TestRayIntersectFace(t *testing.T) {
	f := Face{A: Vec3{-1, -1, 0}, B: Vec3{1, -1, 0}, C: Vec3{0, 1, 0}}

	front := Ray{Start: Vec3{0, 0, 5}, Direction: Vec3{0, 0, -1}}
	loc, dist, ok := front.IntersectFace(f, false, false)
	if !ok || loc != (Vec3{0, 0, 0}) || dist != 5 {
		t.Errorf("front hit: got %v %v %v", loc, dist, ok)
	}

	back := Ray{Start: Vec3{0, 0, -5}, Direction: Vec3{0, 0, 1}}
	if _, _, ok := back.IntersectFace(f, false, false); ok {
		t.Error("back face should be rejected")
	}
	if _, _, ok := back.IntersectFace(f, true, false); !ok {
		t.Error("back face should be accepted when requested")
	}

	behind := Ray{Start: Vec3{0, 0, -5}, Direction: Vec3{0, 0, -1}}
	if _, _, ok := behind.IntersectFace(f, false, false); ok {
		t.Error("hit behind the start should be rejected")
	}
	if _, d, ok := behind.IntersectFace(f, false, true); !ok || d != -5 {
		t.Errorf("hit behind the start: got %v %v", d, ok)
	}
}

func TestBoxTransform(t *testing.T) {
	b := NewBox(Vec3{1, 1, 1}, Vec3{-1, -1, -1})
	if b.Min != (Vec3{-1, -1, -1}) {
		t.Errorf("NewBox should order corners, got %v", b)
	}

	moved := b.Transform(Translate(Vec3{10, 0, 0}))
	if moved.Min != (Vec3{9, -1, -1}) || moved.Max != (Vec3{11, 1, 1}) {
		t.Errorf("Transform: got %v", moved)
	}

	rot := b.Transform(RotateZ(Pi / 4))
	if !ApproxEqual(rot.Max.X, 1.41421, 1e-4) {
		t.Errorf("rotated box should enclose all corners, got %v", rot)
	}

	if !NullBox.Expand(Vec3{1, 2, 3}).Contains(Vec3{1, 2, 3}) {
		t.Error("expanding the null box should contain the point")
	}
	if got := b.Pad(0.5).Max; got != (Vec3{1.5, 1.5, 1.5}) {
		t.Errorf("Pad: got %v", got)
	}
}

func TestSphereUnion(t *testing.T) {
	a := Sphere{Center: Vec3{0, 0, 0}, Radius: 1}
	b := Sphere{Center: Vec3{4, 0, 0}, Radius: 1}
	u := a.Union(b)
	if !u.Center.ApproxEqual(Vec3{2, 0, 0}, 1e-6) || u.Radius != 3 {
		t.Errorf("Union: got %v", u)
	}
	if got := u.Union(a); got != u {
		t.Error("union with an enclosed sphere should not change it")
	}
}
