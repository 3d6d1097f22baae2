// Package ui draws the viewer's Dear ImGui panels over the scene.
package ui

import (
	"fmt"
	"os"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/pkg/math"
)

// fontPaths are tried in order for a UI font; ImGui's built-in font is
// used when none exists.
var fontPaths = []string{
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"C:\\Windows\\Fonts\\segoeui.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

// Backend owns an ImGui SDL window with a current OpenGL context.
type Backend struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
}

// NewBackend creates the window. The GL context is current once it
// returns.
func NewBackend(title string, width, height int) (*Backend, error) {
	b := &Backend{}

	var err error
	b.backend, err = backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create backend: %w", err)
	}
	b.backend.SetAfterCreateContextHook(loadFont)
	b.backend.SetBgColor(imgui.NewVec4(0.1, 0.1, 0.12, 1.0))
	b.backend.CreateWindow(title, width, height)
	return b, nil
}

func loadFont() {
	for _, path := range fontPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg := imgui.NewFontConfig()
		defer cfg.Destroy()
		imgui.CurrentIO().Fonts().AddFontFromFileTTFV(path, 15.0, cfg, nil)
		logger.Debug("ui font loaded", zap.String("path", path))
		return
	}
}

// Run calls frame once per displayed frame until the window closes.
func (b *Backend) Run(frame func()) {
	b.backend.Run(frame)
}

// SetWindowTitle updates the window title.
func (b *Backend) SetWindowTitle(title string) {
	b.backend.SetWindowTitle(title)
}

// Viewport returns the framebuffer area of the main viewport in pixels.
func (b *Backend) Viewport() math.Viewport {
	vp := imgui.MainViewport()
	size := vp.Size()
	scale := imgui.CurrentIO().DisplayFramebufferScale()
	return math.Viewport{Width: int32(size.X * scale.X), Height: int32(size.Y * scale.Y)}
}

// Close makes Run return after the current frame.
func (b *Backend) Close() {
	b.backend.SetShouldClose(true)
}
