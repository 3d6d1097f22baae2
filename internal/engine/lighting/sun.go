package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/retain3d/pkg/math"
)

// SunDirection converts a longitude (rotation about Y, 0-360) and a
// latitude (elevation above the horizon, 0-90) in degrees to the unit
// vector pointing towards the sun.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lon := math.DegToRad(longitude)
	lat := math.DegToRad(latitude)
	return math.Vec3{
		X: math32.Cos(lat) * math32.Sin(lon),
		Y: math32.Sin(lat),
		Z: math32.Cos(lat) * math32.Cos(lon),
	}
}

// NewSun returns a directional light shining from the given angles.
func NewSun(longitude, latitude float32) *Light {
	l := New(Directional)
	l.SetGlobalPose(math.Vec3{}, SunDirection(longitude, latitude).Negate())
	return l
}
