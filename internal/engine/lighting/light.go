// Package lighting describes the lights a scene reports to shader programs.
package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/retain3d/pkg/math"
)

// Kind is the light model.
type Kind uint8

const (
	Directional Kind = iota
	Point
	Spot
)

func (k Kind) String() string {
	return [...]string{"directional", "point", "spot"}[k]
}

// Attenuation holds the constant, linear and quadratic distance
// coefficients.
type Attenuation struct {
	Constant  float32
	Linear    float32
	Quadratic float32
}

// NoAttenuation keeps full intensity at any distance.
var NoAttenuation = Attenuation{Constant: 1}

// Light is one light source. Position and Direction are global and are
// kept current by the node carrying the light.
type Light struct {
	Kind Kind
	// Position is homogeneous: W is 0 for directional lights, whose XYZ is
	// the direction towards the light.
	Position  math.Vec4
	Direction math.Vec3

	Ambient  math.Color
	Diffuse  math.Color
	Specular math.Color

	Attenuation Attenuation
	// SpotCutoff is the half-angle of the spot cone in degrees.
	SpotCutoff   float32
	SpotExponent float32

	Enabled bool
}

// New returns an enabled white light of the given kind.
func New(kind Kind) *Light {
	l := &Light{
		Kind:        kind,
		Position:    math.Vec4{Z: 1},
		Direction:   math.Vec3{Z: -1},
		Ambient:     math.Color{A: 1},
		Diffuse:     math.ColorWhite,
		Specular:    math.ColorWhite,
		Attenuation: NoAttenuation,
		SpotCutoff:  180,
		Enabled:     true,
	}
	if kind != Directional {
		l.Position.W = 1
	}
	if kind == Spot {
		l.SpotCutoff = 45
	}
	return l
}

// IsDirectional reports whether the light is infinitely far away.
func (l *Light) IsDirectional() bool {
	return l.Kind == Directional
}

// Attenuate returns the intensity factor at distance d.
func (l *Light) Attenuate(d float32) float32 {
	if l.IsDirectional() {
		return 1
	}
	a := l.Attenuation
	denom := a.Constant + a.Linear*d + a.Quadratic*d*d
	if denom <= 0 {
		return 1
	}
	return math32.Min(1/denom, 1)
}

// SetGlobalPose updates the global position and direction from a node's
// global location and forward vector.
func (l *Light) SetGlobalPose(location, forward math.Vec3) {
	l.Direction = forward.Normalize()
	if l.IsDirectional() {
		l.Position = l.Direction.Negate().Vec4(0)
		return
	}
	l.Position = location.Vec4(1)
}

// Illuminates reports whether the light reaches point p with non-zero
// intensity, honoring the spot cone.
func (l *Light) Illuminates(p math.Vec3) bool {
	if !l.Enabled {
		return false
	}
	if l.Kind != Spot || l.SpotCutoff >= 180 {
		return true
	}
	toPoint := p.Sub(l.Position.XYZ()).Normalize()
	return toPoint.Dot(l.Direction.Normalize()) >= math32.Cos(math.DegToRad(l.SpotCutoff))
}
