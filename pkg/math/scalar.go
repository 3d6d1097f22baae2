package math

import (
	gomath "math"

	"github.com/chewxy/math32"
)

// ScaleEpsilon is the smallest scale magnitude used when building a
// transform. Smaller components are clamped to keep matrices invertible.
const ScaleEpsilon float32 = 1e-9

// Pi as a float32.
const Pi = float32(gomath.Pi)

// DegToRad converts degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * (Pi / 180)
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float32) float32 {
	return rad * (180 / Pi)
}

// WrapDegrees360 returns angle modulo 360, keeping the sign of angle.
// The result lies in (-360, 360).
func WrapDegrees360(angle float32) float32 {
	if angle > -360 && angle < 360 {
		return angle
	}
	return math32.Mod(angle, 360)
}

// WrapDegrees180 returns angle normalized to (-180, 180].
func WrapDegrees180(angle float32) float32 {
	a := WrapDegrees360(angle)
	if a > 180 {
		a -= 360
	} else if a <= -180 {
		a += 360
	}
	return a
}

// CyclicDifference returns the smallest signed difference between two angles
// in degrees, taking the 360 degree period into account. The result lies in
// [-180, 180]. For example, CyclicDifference(350, 10) is -20.
func CyclicDifference(minuend, subtrahend float32) float32 {
	d := WrapDegrees360(minuend - subtrahend)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// ClampMagnitude returns v unless its magnitude is below min, in which case
// it returns min with the sign of v. Zero is treated as positive.
func ClampMagnitude(v, min float32) float32 {
	if v >= 0 && v < min {
		return min
	}
	if v < 0 && v > -min {
		return -min
	}
	return v
}

// ApproxEqual reports whether a and b differ by no more than tol.
func ApproxEqual(a, b, tol float32) bool {
	return math32.Abs(a-b) <= tol
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float32) float32 {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return a + t*(b-a)
}

func sqrt(x float32) float32 { return math32.Sqrt(x) }
