package main

import (
	"context"
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/config"
	"github.com/Faultbox/retain3d/internal/engine/debug"
	"github.com/Faultbox/retain3d/internal/engine/gpu"
	"github.com/Faultbox/retain3d/internal/engine/gpu/glbackend"
	"github.com/Faultbox/retain3d/internal/engine/material"
	"github.com/Faultbox/retain3d/internal/engine/scene"
	"github.com/Faultbox/retain3d/internal/engine/ui"
	"github.com/Faultbox/retain3d/internal/engine/visitor"
	"github.com/Faultbox/retain3d/internal/engine/window"
	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/pkg/math"
)

const (
	windowTitle = "retain3d sceneview"
	// headlessFrames is drawn when no frame limit is configured.
	headlessFrames = 120
	defaultFPS     = 60
	// pixelsPerZoom converts wheel steps to orbit zoom.
	pixelsPerZoom = 1
	screenshotDir = "screenshots"
)

type viewer struct {
	cfg         *config.Config
	texturePath string
	// changes carries reloaded configs from the watcher to the drawing
	// goroutine, which owns the scene.
	changes chan *config.Config
}

// queueConfig keeps only the newest pending config.
func (v *viewer) queueConfig(cfg *config.Config) {
	for {
		select {
		case v.changes <- cfg:
			return
		default:
		}
		select {
		case <-v.changes:
		default:
		}
	}
}

// applyConfig applies a pending reload, if any. It must run on the
// goroutine that owns s.
func (v *viewer) applyConfig(s *scene.Scene) {
	select {
	case cfg := <-v.changes:
		v.cfg.Scene = cfg.Scene
		v.cfg.Logging.Level = cfg.Logging.Level
		s.SetConfig(cfg.Scene)
		logger.SetLevel(cfg.Logging.Level)
		logger.Info("config applied",
			zap.Float64("max_update_interval", cfg.Scene.MaxUpdateInterval),
			zap.Bool("preload", cfg.Scene.PreloadResources),
			zap.String("log_level", cfg.Logging.Level),
		)
	default:
	}
}

func (v *viewer) newScene(backend gpu.Backend, program material.Program, vp math.Viewport) (*scene.Scene, *demo, error) {
	s := scene.New(v.cfg.Scene, gpu.NewContext(backend), program)
	s.SetViewport(vp)
	d, err := buildDemo(s, v.texturePath)
	if err != nil {
		s.Close()
		return nil, nil, fmt.Errorf("build demo: %w", err)
	}
	if err := s.Upload(); err != nil {
		logger.Warn("some resources stay in client memory", zap.Error(err))
	}
	return s, d, nil
}

func (v *viewer) frameInterval() time.Duration {
	fps := v.cfg.Graphics.FPSLimit
	if fps <= 0 {
		fps = defaultFPS
	}
	return time.Second / time.Duration(fps)
}

// runHeadless draws into the in-memory backend with synthetic frame times.
func (v *viewer) runHeadless(ctx context.Context) error {
	rec := gpu.NewRecorder()
	vp := math.Viewport{Width: int32(v.cfg.Graphics.Width), Height: int32(v.cfg.Graphics.Height)}
	s, _, err := v.newScene(rec, material.NewBasicProgram("default", 1), vp)
	if err != nil {
		return err
	}
	defer s.Close()

	frames := v.cfg.Viewer.Frames
	if frames <= 0 {
		frames = headlessFrames
	}
	var total visitor.DrawStats
	s.OnDrawn = func(st visitor.DrawStats) {
		v.applyConfig(s)
		total.Drawn += st.Drawn
		total.Culled += st.Culled
		total.Failed += st.Failed
		total.DrawCalls += st.DrawCalls
		total.Vertices += st.Vertices
		rec.Reset()
	}

	ticks := make(chan time.Time)
	go func() {
		defer close(ticks)
		now := time.Now()
		step := v.frameInterval()
		for range frames {
			select {
			case ticks <- now:
			case <-ctx.Done():
				return
			}
			now = now.Add(step)
		}
	}()

	start := time.Now()
	err = s.Loop(ctx, ticks)
	logger.Info("headless run finished",
		zap.Uint64("frames", s.Frames()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("drawn", total.Drawn),
		zap.Int("culled", total.Culled),
		zap.Int("failed", total.Failed),
		zap.Int("draw_calls", total.DrawCalls),
		zap.Int("vertices", total.Vertices),
		zap.Int("buffers", rec.BufferCount()),
		zap.Int("textures", rec.TextureCount()),
	)
	return err
}

// runWindowed draws into an SDL window. Drawing stays on the calling
// goroutine, which holds the GL context.
func (v *viewer) runWindowed(ctx context.Context) error {
	win, err := window.New(windowTitle, v.cfg.Graphics)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer win.Close()

	backend, err := glbackend.New()
	if err != nil {
		return fmt.Errorf("init OpenGL: %w", err)
	}
	defer backend.Close()

	program, err := glbackend.NewDefaultProgram()
	if err != nil {
		return fmt.Errorf("default program: %w", err)
	}
	defer glbackend.DeleteProgram(program)

	s, d, err := v.newScene(backend, program, win.Viewport())
	if err != nil {
		return err
	}
	defer s.Close()

	tools := &windowTools{
		backend: backend,
		bounds:  debug.NewBounds(math.ColorGreen),
		shots:   debug.NewScreenshots(screenshotDir, "sceneview"),
	}
	tools.bounds.Node.SetVisible(false)
	if err := s.Add(tools.bounds.Node, nil); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lastTitle := time.Now()
	s.OnDrawn = func(st visitor.DrawStats) {
		v.applyConfig(s)
		if tools.capture {
			tools.capture = false
			tools.screenshot(s)
		}
		v.handleEvents(win, s, d, tools, cancel)
		if tools.showBounds {
			tools.bounds.Rebuild(s.Root())
		}
		win.SwapBuffers()
		if frames := v.cfg.Viewer.Frames; frames > 0 && s.Frames() >= uint64(frames) {
			cancel()
		}
		if time.Since(lastTitle) >= time.Second {
			lastTitle = time.Now()
			win.SetTitle(fmt.Sprintf("%s - %d drawn, %d culled, %d calls",
				windowTitle, st.Drawn, st.Culled, st.DrawCalls))
		}
	}

	ticker := time.NewTicker(v.frameInterval())
	defer ticker.Stop()
	return s.Loop(ctx, ticker.C)
}

// windowTools are the debugging aids bound to keys in windowed mode.
type windowTools struct {
	backend    *glbackend.Backend
	bounds     *debug.Bounds
	shots      *debug.Screenshots
	showBounds bool
	capture    bool
}

func (t *windowTools) screenshot(s *scene.Scene) {
	vp := s.ActiveCamera().Viewport()
	path, err := t.shots.SavePixels(t.backend.ReadPixels(vp), int(vp.Width), int(vp.Height))
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (t *windowTools) toggleBounds() {
	t.showBounds = !t.showBounds
	if !t.showBounds {
		t.bounds.Node.SetVisible(false)
	}
}

func (v *viewer) handleEvents(win *window.Window, s *scene.Scene, d *demo, tools *windowTools, quit func()) {
	scale := win.PixelScale()
	for _, e := range win.PollEvents() {
		switch e.Type {
		case window.EventQuit:
			quit()
		case window.EventResize:
			s.SetViewport(win.Viewport())
		case window.EventDrag:
			d.orbit.HandleDrag(float32(e.DX), float32(e.DY))
		case window.EventWheel:
			d.orbit.HandleZoom(e.Wheel * pixelsPerZoom)
		case window.EventClick:
			vp := s.ActiveCamera().Viewport()
			x := float32(e.X) * scale
			y := float32(vp.Height) - float32(e.Y)*scale
			if _, ok := s.PickAt(x, y); !ok {
				logger.Debug("nothing picked", zap.Float32("x", x), zap.Float32("y", y))
			}
		case window.EventKeyDown:
			switch e.Key {
			case sdl.K_ESCAPE:
				quit()
			case sdl.K_b:
				tools.toggleBounds()
			case sdl.K_F12:
				// Read back before the next swap.
				tools.capture = true
			case sdl.K_SPACE:
				d.orbit.AutoYaw = 0.1 - d.orbit.AutoYaw
			}
		}
	}
}

// runOverlay draws the scene under the ImGui panels. The ImGui backend
// owns the window and the frame loop, so frames are driven by its
// callback instead of Loop.
func (v *viewer) runOverlay(ctx context.Context) error {
	ub, err := ui.NewBackend(windowTitle, v.cfg.Graphics.Width, v.cfg.Graphics.Height)
	if err != nil {
		return fmt.Errorf("create ui: %w", err)
	}

	backend, err := glbackend.New()
	if err != nil {
		return fmt.Errorf("init OpenGL: %w", err)
	}
	defer backend.Close()

	program, err := glbackend.NewDefaultProgram()
	if err != nil {
		return fmt.Errorf("default program: %w", err)
	}
	defer glbackend.DeleteProgram(program)

	s, d, err := v.newScene(backend, program, ub.Viewport())
	if err != nil {
		return err
	}
	defer s.Close()

	overlay := ui.NewOverlay(d.orbit)
	s.OnDrawn = func(st visitor.DrawStats) {
		overlay.Stats = st
		if d.picked != nil {
			overlay.Picked = d.picked.Name()
		}
	}

	last := time.Now()
	ub.Run(func() {
		if ctx.Err() != nil {
			ub.Close()
			return
		}
		now := time.Now()
		// ImGui changes GL state behind the context's cache.
		s.Context().Invalidate()
		s.SetViewport(ub.Viewport())
		s.SetCulling(overlay.Culling)
		v.applyConfig(s)

		var ferr error
		if overlay.Paused {
			_, ferr = s.Draw()
			s.Tick(now)
		} else {
			ferr = s.Frame(now)
		}
		if ferr != nil {
			logger.Debug("frame finished with errors", zap.Error(ferr))
		}

		overlay.Update(float64(now.Sub(last).Microseconds()) / 1000)
		last = now
		overlay.Render()

		if frames := v.cfg.Viewer.Frames; frames > 0 && s.Frames() >= uint64(frames) {
			ub.Close()
		}
	})
	return nil
}
