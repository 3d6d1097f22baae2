package main

import (
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/engine/camera"
	"github.com/Faultbox/retain3d/internal/engine/lighting"
	"github.com/Faultbox/retain3d/internal/engine/material"
	"github.com/Faultbox/retain3d/internal/engine/mesh"
	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/internal/engine/scene"
	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Demo scene layout.
const (
	gridSize    = 3
	gridSpacing = 3
	groundSize  = 24
	spinSpeed   = 45 // degrees per second
	lampRadius  = 8
	lampSpeed   = 0.6 // radians per second
)

var (
	colorSelected = math.Color{R: 1, G: 0.8, B: 0.2, A: 1}
	colorPickable = math.Color{R: 0.3, G: 0.6, B: 0.9, A: 1}
)

// demo is the content of the viewer's scene.
type demo struct {
	orbit  *camera.OrbitController
	picked *node.Node
}

// buildDemo fills s with a textured ground, a grid of spinning boxes, a
// translucent box, a pickable group and two lights. texturePath replaces
// the ground's checker pattern when set.
func buildDemo(s *scene.Scene, texturePath string) (*demo, error) {
	d := &demo{}
	root := s.Root()

	box, err := s.Meshes.GetOrLoad("unit-box", func() (*mesh.Mesh, error) {
		return mesh.NewBox("unit-box", math.NewBox(math.Vec3{X: -0.5, Y: -0.5, Z: -0.5}, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5})), nil
	})
	if err != nil {
		return nil, fmt.Errorf("box mesh: %w", err)
	}

	ground, err := d.ground(s, texturePath)
	if err != nil {
		return nil, err
	}
	var errs error
	errs = multierr.Append(errs, s.Add(ground, nil))

	grid := node.New("grid")
	errs = multierr.Append(errs, s.Add(grid, nil))
	for i := range gridSize * gridSize {
		x := float32(i%gridSize-gridSize/2) * gridSpacing
		z := float32(i/gridSize-gridSize/2) * gridSpacing
		n := node.NewMeshNode(fmt.Sprintf("box-%d", i), box)
		n.SetLocation(math.Vec3{X: x, Y: 0.5, Z: z})
		n.Drawable().SetMaterial(d.material(s, i))
		speed := float32(spinSpeed * (1 + i%3))
		n.AddBehavior(node.BehaviorFuncs{Pre: func(n *node.Node, ctx node.Context) {
			n.RotateBy(math.Vec3{Y: speed * ctx.DeltaTime()})
		}})
		errs = multierr.Append(errs, s.Add(n, grid))
	}

	glass := node.NewMeshNode("glass", box)
	glass.SetLocation(math.Vec3{Y: 2.5})
	glass.SetUniformScale(2)
	glass.Drawable().SetOwnedMaterial(material.NewWithColor("glass", math.Color{R: 0.6, G: 0.9, B: 1, A: 0.35}))
	errs = multierr.Append(errs, s.Add(glass, nil))

	errs = multierr.Append(errs, d.pickables(s, box))
	errs = multierr.Append(errs, d.lights(s))
	if errs != nil {
		return nil, errs
	}

	d.orbit = camera.NewOrbitController()
	d.orbit.FitToBox(node.Box(root))
	d.orbit.AutoYaw = 0.1
	cam := s.ActiveCamera()
	cam.AddBehavior(d.orbit)
	d.orbit.Apply(cam.Node)

	logger.Info("demo scene built",
		zap.Int("meshes", s.Meshes.Len()),
		zap.Int("materials", s.Materials.Len()),
		zap.Float32("distance", d.orbit.Distance),
	)
	return d, nil
}

func (d *demo) ground(s *scene.Scene, texturePath string) (*node.Node, error) {
	var (
		tex *material.Texture
		err error
	)
	if texturePath != "" {
		tex, err = s.Textures.GetOrLoad(texturePath, func() (*material.Texture, error) {
			t, err := material.LoadTexture(texturePath)
			if err != nil {
				return nil, err
			}
			// Magenta marks transparent pixels in paletted art.
			t.ApplyColorKey(color.RGBA{R: 255, B: 255, A: 255}, 4)
			return t, nil
		})
		if err != nil {
			return nil, fmt.Errorf("ground texture: %w", err)
		}
	} else {
		tex, err = s.Textures.GetOrLoad("checker", func() (*material.Texture, error) {
			return material.NewTexture("checker", checker(64, 8)), nil
		})
		if err != nil {
			return nil, err
		}
	}

	m := material.New("ground")
	m.Diffuse = math.ColorWhite
	m.AddTexture(tex)
	if _, err := s.Materials.Add("ground", m); err != nil {
		return nil, err
	}

	n := node.NewMeshNode("ground", mesh.NewRectangle("ground", math.Vec2{X: groundSize, Y: groundSize}, math.Vec2{X: 0.5, Y: 0.5}))
	n.SetRotation(math.Vec3{X: -90})
	n.Drawable().SetMaterial(m)
	return n, nil
}

// material returns the shared material of grid box i. Boxes in the same
// column share one.
func (d *demo) material(s *scene.Scene, i int) *material.Material {
	name := fmt.Sprintf("grid-%d", i%gridSize)
	m, err := s.Materials.GetOrLoad(name, func() (*material.Material, error) {
		hue := float32(i%gridSize) / gridSize
		return material.NewWithColor(name, math.Color{R: 0.4 + 0.6*hue, G: 0.8 - 0.5*hue, B: 0.3, A: 1}), nil
	})
	if err != nil {
		logger.Warn("material not cached", zap.String("material", name), zap.Error(err))
		return material.NewWithColor(name, math.ColorGray)
	}
	return m
}

// pickables adds a touch-enabled group whose boxes change color when
// picked. The handler sits on the group; the boxes inherit touchability.
func (d *demo) pickables(s *scene.Scene, box *mesh.Mesh) error {
	group := node.New("pickables")
	group.SetTouchEnabled(true)
	group.SetLocation(math.Vec3{X: -6, Y: 0.75, Z: 6})
	group.SetPickHandler(node.PickHandlerFunc(func(_ *node.Node, hit node.PickHit) {
		if d.picked != nil {
			d.picked.Drawable().Material().Diffuse = colorPickable
		}
		d.picked = hit.Node
		hit.Node.Drawable().Material().Diffuse = colorSelected
		logger.Info("picked", zap.Stringer("node", hit.Node), zap.Float32("distance", hit.Distance))
	}))
	if err := s.Add(group, nil); err != nil {
		return err
	}
	var err error
	for i := range 3 {
		n := node.NewMeshNode(fmt.Sprintf("pickable-%d", i), box)
		n.SetLocation(math.Vec3{X: float32(i) * 1.5})
		n.SetUniformScale(1.2)
		n.Drawable().SetOwnedMaterial(material.NewWithColor(n.Name(), colorPickable))
		err = multierr.Append(err, s.Add(n, group))
	}
	return err
}

func (d *demo) lights(s *scene.Scene) error {
	sun := node.NewLightNode("sun", lighting.NewSun(30, 45))
	// The light follows its node, so the node must face the sun's way.
	sun.SetForwardDirection(lighting.SunDirection(30, 45).Negate(), math.Vec3UnitY)
	lamp := lighting.New(lighting.Point)
	lamp.Diffuse = math.Color{R: 1, G: 0.7, B: 0.4, A: 1}
	lamp.Attenuation = lighting.Attenuation{Constant: 1, Linear: 0.05, Quadratic: 0.01}
	lampNode := node.NewLightNode("lamp", lamp)
	lampNode.SetLocation(math.Vec3{X: lampRadius, Y: 4})

	var angle float32
	lampNode.AddBehavior(node.BehaviorFuncs{Pre: func(n *node.Node, ctx node.Context) {
		angle += lampSpeed * ctx.DeltaTime()
		n.SetLocation(math.Vec3{X: lampRadius * math32.Cos(angle), Y: 4, Z: lampRadius * math32.Sin(angle)})
	}})
	return multierr.Append(s.Add(sun, nil), s.Add(lampNode, nil))
}

// checker returns a size x size image of cells x cells light and dark
// squares.
func checker(size, cells int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	light := color.RGBA{R: 200, G: 200, B: 190, A: 255}
	dark := color.RGBA{R: 90, G: 100, B: 90, A: 255}
	cell := size / cells
	for y := range size {
		for x := range size {
			c := dark
			if (x/cell+y/cell)%2 == 0 {
				c = light
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}
