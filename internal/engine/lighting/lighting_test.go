package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/retain3d/pkg/math"
)

const tol = 1e-5

func TestAttenuate(t *testing.T) {
	l := New(Point)
	assert.Equal(t, float32(1), l.Attenuate(100))

	l.Attenuation = Attenuation{Constant: 1, Linear: 0.5, Quadratic: 0.25}
	assert.InDelta(t, 1.0/(1+1+1), l.Attenuate(2), tol)

	sun := New(Directional)
	sun.Attenuation = l.Attenuation
	assert.Equal(t, float32(1), sun.Attenuate(2))
}

func TestSetGlobalPose(t *testing.T) {
	l := New(Point)
	l.SetGlobalPose(math.Vec3{X: 1, Y: 2, Z: 3}, math.Vec3{Z: -2})
	assert.Equal(t, math.Vec4{X: 1, Y: 2, Z: 3, W: 1}, l.Position)
	assert.Equal(t, math.Vec3{Z: -1}, l.Direction)

	d := New(Directional)
	d.SetGlobalPose(math.Vec3{X: 5}, math.Vec3{Y: -1})
	assert.Equal(t, math.Vec4{Y: 1}, d.Position)
}

func TestSpotCone(t *testing.T) {
	l := New(Spot)
	l.SpotCutoff = 30
	l.SetGlobalPose(math.Vec3{}, math.Vec3{Z: -1})

	assert.True(t, l.Illuminates(math.Vec3{Z: -10}))
	assert.True(t, l.Illuminates(math.Vec3{X: 5, Z: -10}))
	assert.False(t, l.Illuminates(math.Vec3{X: 10, Z: -1}))

	l.Enabled = false
	assert.False(t, l.Illuminates(math.Vec3{Z: -10}))
}

func TestSunDirection(t *testing.T) {
	assert.True(t, SunDirection(0, 90).ApproxEqual(math.Vec3UnitY, tol))
	assert.True(t, SunDirection(90, 0).ApproxEqual(math.Vec3UnitX, tol))

	sun := NewSun(0, 45)
	assert.True(t, sun.IsDirectional())
	assert.InDelta(t, 1, sun.Position.XYZ().Length(), tol)
	assert.Greater(t, sun.Position.Y, float32(0))
}

func TestBuffer(t *testing.T) {
	b := NewBuffer()
	off := New(Point)
	off.Enabled = false
	assert.False(t, b.Add(off))

	ls := make([]*Light, MaxLights+2)
	for i := range ls {
		ls[i] = New(Point)
		ls[i].SetGlobalPose(math.Vec3{X: float32(i)}, math.Vec3{Z: -1})
	}
	b.Set(ls)
	assert.Equal(t, MaxLights, b.Len())

	pos := b.Positions()
	assert.Len(t, pos, MaxLights*4)
	assert.Equal(t, []float32{1, 0, 0, 1}, pos[4:8])
	assert.Len(t, b.Diffuse(), MaxLights*3)
	assert.Equal(t, []float32{1, 0, 0}, b.Attenuations()[:3])

	b.Clear()
	assert.Zero(t, b.Len())
}
