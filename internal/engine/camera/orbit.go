package camera

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/pkg/math"
)

// OrbitController moves a node on a sphere around a center point, always
// looking at the center. Attach it to a camera with AddBehavior; it
// positions the node in the pre-transform hook.
type OrbitController struct {
	Center math.Vec3

	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians about +Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32

	// AutoYaw turns the orbit by this many radians per second.
	AutoYaw float32
}

// NewOrbitController returns a controller with default limits.
func NewOrbitController() *OrbitController {
	return &OrbitController{
		Distance:        10,
		Pitch:           0.5,
		MinDistance:     1,
		MaxDistance:     500,
		MinPitch:        -1.5,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the orbit position in the parent's frame.
func (c *OrbitController) Position() math.Vec3 {
	cosPitch := math32.Cos(c.Pitch)
	return c.Center.Add(math.Vec3{
		X: c.Distance * cosPitch * math32.Sin(c.Yaw),
		Y: c.Distance * math32.Sin(c.Pitch),
		Z: c.Distance * cosPitch * math32.Cos(c.Yaw),
	})
}

// HandleDrag turns the orbit by a pointer drag in pixels.
func (c *OrbitController) HandleDrag(dx, dy float32) {
	c.Yaw -= dx * c.DragSensitivity
	c.Pitch = math.Clamp(c.Pitch+dy*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom moves toward the center for positive wheel deltas.
func (c *OrbitController) HandleZoom(delta float32) {
	c.Distance = math.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center on the horizontal plane relative to the
// view direction, and vertically by up.
func (c *OrbitController) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01
	sin, cos := math32.Sin(c.Yaw), math32.Cos(c.Yaw)
	c.Center.X += (-sin*forward + cos*right) * speed
	c.Center.Z += (-cos*forward - sin*right) * speed
	c.Center.Y += up * speed
}

// FitToBox centers the orbit on b at a distance that shows all of it.
func (c *OrbitController) FitToBox(b math.Box) {
	if b.IsNull() {
		return
	}
	c.Center = b.Center()
	c.Distance = math.Clamp(b.Radius()*2.5, c.MinDistance, c.MaxDistance)
}

// Apply places n on the orbit, facing the center.
func (c *OrbitController) Apply(n *node.Node) {
	n.SetLocation(c.Position())
	n.LookAt(c.Center, math.Vec3UnitY)
}

func (c *OrbitController) PreTransform(n *node.Node, ctx node.Context) {
	if c.AutoYaw != 0 && n.AnimationEnabled() {
		c.Yaw += c.AutoYaw * ctx.DeltaTime()
	}
	c.Apply(n)
}

func (c *OrbitController) PostTransform(*node.Node, node.Context) {}
