package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/retain3d/internal/engine/mesh"
	"github.com/Faultbox/retain3d/internal/engine/node"
	"github.com/Faultbox/retain3d/pkg/math"
)

func TestBoxLines(t *testing.T) {
	b := math.NewBox(math.Vec3{}, math.Vec3{X: 1, Y: 2, Z: 3})
	pts := BoxLines(b)
	require.Len(t, pts, 24)
	for i := 0; i < len(pts); i += 2 {
		d := pts[i+1].Sub(pts[i])
		axes := 0
		for _, c := range []float32{d.X, d.Y, d.Z} {
			if c != 0 {
				axes++
			}
		}
		assert.Equal(t, 1, axes, "edge %d must follow one axis", i/2)
	}
}

func TestBoundsRebuild(t *testing.T) {
	root := node.New("root")
	unit := mesh.NewBox("box", math.NewBox(math.Vec3{X: -1, Y: -1, Z: -1}, math.Vec3{X: 1, Y: 1, Z: 1}))

	a := node.NewMeshNode("a", unit)
	a.SetLocation(math.Vec3{X: 5})
	hidden := node.NewMeshNode("hidden", unit)
	hidden.SetVisible(false)
	require.NoError(t, root.AddChild(a))
	require.NoError(t, root.AddChild(hidden))

	b := NewBounds(math.ColorGreen)
	require.NoError(t, root.AddChild(b.Node))

	assert.Equal(t, 1, b.Rebuild(root))
	m := b.Node.Drawable().Mesh()
	assert.Equal(t, 24, m.VertexCount())
	box := m.BoundingBox()
	assert.InDelta(t, 4, box.Min.X, 1e-4)
	assert.InDelta(t, 6, box.Max.X, 1e-4)
	assert.True(t, b.Node.Visible())

	a.SetVisible(false)
	assert.Zero(t, b.Rebuild(root))
	assert.False(t, b.Node.Visible())
}

func TestScreenshotFlipsRows(t *testing.T) {
	// Bottom row red, top row blue.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	img, err := FromPixels(pixels, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), img.Pix[2], "top row comes first")
	assert.Equal(t, uint8(255), img.Pix[4])

	_, err = FromPixels(pixels, 2, 2)
	assert.Error(t, err)
}

func TestScreenshotSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshots(dir, "frame")
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	path, err := s.SavePixels(make([]byte, 4*4), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "frame_2024-05-01_12-00-00.000.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Width)
}
