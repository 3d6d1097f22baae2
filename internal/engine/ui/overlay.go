package ui

import (
	"fmt"
	"runtime"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/retain3d/internal/engine/camera"
	"github.com/Faultbox/retain3d/internal/engine/visitor"
)

// Overlay shows frame statistics and the viewer controls.
type Overlay struct {
	frameCount    int
	fps           float64
	frameTime     float64 // ms
	fpsUpdateTime float64 // seconds since last FPS update
	frameAccum    int

	memStats      runtime.MemStats
	memUpdateTime float64

	Stats  visitor.DrawStats
	Picked string

	// Controls edited by the settings panel.
	Culling bool
	Paused  bool
	Orbit   *camera.OrbitController

	ShowRender bool
	ShowMemory bool
	Enabled    bool
}

// NewOverlay returns an enabled overlay steering orbit.
func NewOverlay(orbit *camera.OrbitController) *Overlay {
	return &Overlay{
		Culling:    true,
		Orbit:      orbit,
		ShowRender: true,
		Enabled:    true,
	}
}

// Update advances the frame timers by deltaMs milliseconds.
func (o *Overlay) Update(deltaMs float64) {
	o.frameCount++
	o.frameTime = deltaMs
	o.frameAccum++
	o.fpsUpdateTime += deltaMs / 1000.0
	if o.fpsUpdateTime >= 0.5 {
		o.fps = float64(o.frameAccum) / o.fpsUpdateTime
		o.frameAccum = 0
		o.fpsUpdateTime = 0
	}

	o.memUpdateTime += deltaMs / 1000.0
	if o.memUpdateTime >= 2.0 {
		runtime.ReadMemStats(&o.memStats)
		o.memUpdateTime = 0
	}
}

// Render draws the statistics window and the settings panel.
func (o *Overlay) Render() {
	if !o.Enabled {
		return
	}

	imgui.SetNextWindowPos(imgui.NewVec2(10, 10))
	imgui.SetNextWindowSize(imgui.NewVec2(240, 0))
	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoSavedSettings | imgui.WindowFlagsNoFocusOnAppearing |
		imgui.WindowFlagsNoInputs
	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(8, 8))
	imgui.SetNextWindowBgAlpha(0.6)
	if imgui.BeginV("##SceneStats", nil, flags) {
		o.renderFPS()
		if o.ShowRender {
			o.renderStats()
		}
		if o.ShowMemory {
			o.renderMemory()
		}
	}
	imgui.End()
	imgui.PopStyleVar()

	if imgui.Begin("Viewer") {
		o.renderSettings()
	}
	imgui.End()
}

func (o *Overlay) renderFPS() {
	col := imgui.NewVec4(0.2, 1.0, 0.2, 1.0)
	if o.fps < 30 {
		col = imgui.NewVec4(1.0, 0.2, 0.2, 1.0)
	} else if o.fps < 60 {
		col = imgui.NewVec4(1.0, 1.0, 0.2, 1.0)
	}
	imgui.TextColored(col, fmt.Sprintf("FPS: %.1f", o.fps))
	imgui.SameLine()
	imgui.TextDisabled(fmt.Sprintf("(%.2f ms)", o.frameTime))
}

func (o *Overlay) renderStats() {
	s := o.Stats
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Nodes: %d visited", s.Visited))
	imgui.Text(fmt.Sprintf("  Drawn: %d  Culled: %d", s.Drawn, s.Culled))
	if s.Failed > 0 {
		imgui.TextColored(imgui.NewVec4(1.0, 0.4, 0.2, 1.0), fmt.Sprintf("  Failed: %d", s.Failed))
	}
	imgui.Text(fmt.Sprintf("Draw calls: %d", s.DrawCalls))
	imgui.Text(fmt.Sprintf("Vertices: %d", s.Vertices))
	imgui.Text(fmt.Sprintf("Lights: %d", s.Lights))
	if o.Picked != "" {
		imgui.Text("Picked: " + o.Picked)
	}
}

func (o *Overlay) renderMemory() {
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Alloc: %s", formatBytes(o.memStats.Alloc)))
	imgui.Text(fmt.Sprintf("Sys: %s", formatBytes(o.memStats.Sys)))
	imgui.Text(fmt.Sprintf("GC: %d", o.memStats.NumGC))
}

func (o *Overlay) renderSettings() {
	imgui.Checkbox("Frustum culling", &o.Culling)
	imgui.Checkbox("Pause updates", &o.Paused)
	if o.Orbit != nil && imgui.CollapsingHeaderTreeNodeFlagsV("Camera", imgui.TreeNodeFlagsDefaultOpen) {
		imgui.SliderFloat("Distance", &o.Orbit.Distance, o.Orbit.MinDistance, o.Orbit.MaxDistance)
		imgui.SliderFloat("Pitch", &o.Orbit.Pitch, o.Orbit.MinPitch, o.Orbit.MaxPitch)
		imgui.SliderFloat("Yaw", &o.Orbit.Yaw, -3.1416, 3.1416)
		imgui.SliderFloat("Auto yaw", &o.Orbit.AutoYaw, -2, 2)
	}
	if imgui.CollapsingHeaderTreeNodeFlagsV("Overlay", 0) {
		imgui.Checkbox("Show render stats", &o.ShowRender)
		imgui.Checkbox("Show memory", &o.ShowMemory)
	}
}

func formatBytes(n uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)
	switch {
	case n >= gb:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	case n >= mb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	case n >= kb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
