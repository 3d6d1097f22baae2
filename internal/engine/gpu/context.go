package gpu

import (
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/internal/logger"
	"github.com/Faultbox/retain3d/internal/metrics"
	"github.com/Faultbox/retain3d/pkg/math"
)

// Stats counts work submitted through a Context since the last ResetFrame.
type Stats struct {
	DrawCalls      int
	Vertices       int
	BufferBinds    int
	AttributeBinds int
	StateChanges   int
}

type tristate int8

const (
	unknown tristate = iota
	off
	on
)

func tri(b bool) tristate {
	if b {
		return on
	}
	return off
}

// Context tracks the state last sent to a Backend and drops redundant
// calls. It also holds the per-frame caches of the draw pipeline: which
// vertex array was last bound for each semantic, and which programs have
// current scene-scope uniforms.
//
// A Context belongs to the goroutine that owns the graphics API.
type Context struct {
	backend Backend

	caps       [numCapabilities]tristate
	depthMask  tristate
	cullFace   Face
	cullKnown  bool
	frontFace  Winding
	frontKnown bool
	lineWidth  float32
	offset     DecalOffset
	offsetSet  bool
	blendSrc   BlendFactor
	blendDst   BlendFactor
	blendKnown bool
	program    uint32
	progKnown  bool
	textures   [MaxTextureUnits]uint32
	texKnown   [MaxTextureUnits]bool
	buffers    [2]uint32
	enabled    uint32
	viewport   math.Viewport
	vpKnown    bool

	lastBound  [NumSemantics]uint64
	sceneClean map[uint32]bool

	stats Stats
}

// NewContext wraps backend. The backend is assumed to be in its initial
// state: no buffers bound and no attributes enabled.
func NewContext(backend Backend) *Context {
	return &Context{
		backend:    backend,
		sceneClean: make(map[uint32]bool),
	}
}

// Backend returns the wrapped backend.
func (c *Context) Backend() Backend {
	return c.backend
}

// Stats returns the counters of the current frame.
func (c *Context) Stats() Stats {
	return c.stats
}

// ResetFrame starts a new frame: the per-semantic bound-array cache and the
// scene uniform flags are cleared, and the counters reset.
func (c *Context) ResetFrame() {
	c.lastBound = [NumSemantics]uint64{}
	clear(c.sceneClean)
	c.stats = Stats{}
}

// Invalidate forgets all cached pipeline state. Call it after code outside
// the Context has touched the backend.
func (c *Context) Invalidate() {
	c.caps = [numCapabilities]tristate{}
	c.depthMask = unknown
	c.cullKnown, c.frontKnown, c.blendKnown = false, false, false
	c.lineWidth = 0
	c.offsetSet = false
	c.progKnown = false
	c.texKnown = [MaxTextureUnits]bool{}
	c.vpKnown = false
	c.ResetFrame()
}

// BoundArray returns the id of the vertex array last bound for s in this
// frame, or 0.
func (c *Context) BoundArray(s Semantic) uint64 {
	return c.lastBound[s]
}

// SetBoundArray records id as the array bound for s.
func (c *Context) SetBoundArray(s Semantic, id uint64) {
	c.lastBound[s] = id
}

// ForgetArray drops id from the bound-array cache, forcing the next bind.
func (c *Context) ForgetArray(id uint64) {
	for i, b := range c.lastBound {
		if b == id {
			c.lastBound[i] = 0
		}
	}
}

// SceneUniformsDirty reports whether program still needs its scene-scope
// uniforms (view, projection, lights) this frame.
func (c *Context) SceneUniformsDirty(program uint32) bool {
	return !c.sceneClean[program]
}

// MarkSceneUniformsClean records that program has current scene uniforms.
func (c *Context) MarkSceneUniformsClean(program uint32) {
	c.sceneClean[program] = true
}

// UploadBuffer creates a buffer for target and fills it with data. A
// failure is returned as an errs.ErrResource error and leaves no buffer
// behind.
func (c *Context) UploadBuffer(target BufferTarget, data []byte, usage Usage) (uint32, error) {
	id, err := c.backend.GenBuffer()
	if err != nil {
		return 0, errs.New(errs.ErrResource, "gpu.UploadBuffer", "gen buffer: %v", err)
	}
	c.BindBuffer(target, id)
	if err := c.backend.BufferData(target, data, usage); err != nil {
		c.DeleteBuffer(id)
		return 0, errs.New(errs.ErrResource, "gpu.UploadBuffer", "buffer data (%d bytes): %v", len(data), err)
	}
	metrics.AddUploadBytes(len(data))
	logger.Debug("buffer uploaded",
		zap.Uint32("buffer", id),
		zap.Stringer("target", target),
		zap.Int("bytes", len(data)),
	)
	return id, nil
}

// RespecifyBuffer replaces the whole content of buffer id, resizing it to
// len(data).
func (c *Context) RespecifyBuffer(target BufferTarget, id uint32, data []byte, usage Usage) error {
	c.BindBuffer(target, id)
	if err := c.backend.BufferData(target, data, usage); err != nil {
		return errs.New(errs.ErrResource, "gpu.RespecifyBuffer", "buffer data (%d bytes): %v", len(data), err)
	}
	metrics.AddUploadBytes(len(data))
	return nil
}

// UpdateBuffer replaces part of buffer id starting at offset bytes.
func (c *Context) UpdateBuffer(target BufferTarget, id uint32, offset int, data []byte) {
	c.BindBuffer(target, id)
	c.backend.BufferSubData(target, offset, data)
	metrics.AddUploadBytes(len(data))
}

// BindBuffer binds id to target unless it is already bound.
func (c *Context) BindBuffer(target BufferTarget, id uint32) {
	if c.buffers[target] == id {
		return
	}
	c.buffers[target] = id
	c.backend.BindBuffer(target, id)
	c.stats.BufferBinds++
}

// DeleteBuffer releases buffer id.
func (c *Context) DeleteBuffer(id uint32) {
	if id == 0 {
		return
	}
	for t := range c.buffers {
		if c.buffers[t] == id {
			c.buffers[t] = 0
		}
	}
	c.backend.DeleteBuffer(id)
}

// EnableAttribute enables the attribute slot.
func (c *Context) EnableAttribute(slot uint32) {
	bit := uint32(1) << slot
	if c.enabled&bit != 0 {
		return
	}
	c.enabled |= bit
	c.backend.EnableVertexAttribute(slot)
}

// DisableAttribute disables the attribute slot.
func (c *Context) DisableAttribute(slot uint32) {
	bit := uint32(1) << slot
	if c.enabled&bit == 0 {
		return
	}
	c.enabled &^= bit
	c.backend.DisableVertexAttribute(slot)
}

// DisableAttributesExcept disables every enabled slot not set in keep.
func (c *Context) DisableAttributesExcept(keep uint32) {
	for slot := uint32(0); slot < uint32(Index); slot++ {
		if keep&(1<<slot) == 0 {
			c.DisableAttribute(slot)
		}
	}
}

// EnabledAttributes returns the bitmask of enabled slots.
func (c *Context) EnabledAttributes() uint32 {
	return c.enabled
}

// AttributePointer enables slot and points it at vertex data, either client
// memory (data != nil) or offset bytes into the bound array buffer.
func (c *Context) AttributePointer(slot uint32, size int32, typ ElementType, normalized bool, stride int32, offset int, data []byte) {
	c.EnableAttribute(slot)
	c.backend.VertexAttribPointer(slot, size, typ, normalized, stride, offset, data)
	c.stats.AttributeBinds++
}

// DrawArrays draws count vertices starting at first.
func (c *Context) DrawArrays(mode DrawMode, first, count int32) {
	if count <= 0 {
		return
	}
	c.backend.DrawArrays(mode, first, count)
	c.stats.DrawCalls++
	c.stats.Vertices += int(count)
}

// DrawElements draws count indices of type typ, from client memory or from
// offset bytes into the bound element buffer.
func (c *Context) DrawElements(mode DrawMode, count int32, typ ElementType, offset int, data []byte) {
	if count <= 0 {
		return
	}
	c.backend.DrawElements(mode, count, typ, offset, data)
	c.stats.DrawCalls++
	c.stats.Vertices += int(count)
}

// UseProgram makes id the current program.
func (c *Context) UseProgram(id uint32) {
	if c.progKnown && c.program == id {
		return
	}
	c.program, c.progKnown = id, true
	c.backend.UseProgram(id)
	c.stats.StateChanges++
}

// Program returns the current program id.
func (c *Context) Program() uint32 {
	return c.program
}

// BindTexture binds texture id to unit.
func (c *Context) BindTexture(unit int, id uint32) {
	if unit < 0 || unit >= MaxTextureUnits {
		errs.Precondition("gpu.BindTexture", "texture unit %d out of range", unit)
	}
	if c.texKnown[unit] && c.textures[unit] == id {
		return
	}
	c.textures[unit], c.texKnown[unit] = id, true
	c.backend.BindTexture(uint32(unit), id)
	c.stats.StateChanges++
}

// UploadTexture creates a texture from RGBA8 pixels. A failure is returned
// as an errs.ErrResource error.
func (c *Context) UploadTexture(width, height int, rgba []byte) (uint32, error) {
	if width <= 0 || height <= 0 || len(rgba) < width*height*4 {
		return 0, errs.New(errs.ErrPrecondition, "gpu.UploadTexture",
			"%d bytes do not hold %dx%d RGBA pixels", len(rgba), width, height)
	}
	id, err := c.backend.CreateTexture(int32(width), int32(height), rgba)
	if err != nil {
		return 0, errs.New(errs.ErrResource, "gpu.UploadTexture", "create texture %dx%d: %v", width, height, err)
	}
	metrics.AddUploadBytes(width * height * 4)
	logger.Debug("texture uploaded", zap.Uint32("texture", id), zap.Int("width", width), zap.Int("height", height))
	return id, nil
}

// DeleteTexture releases texture id and unbinds it from every unit.
func (c *Context) DeleteTexture(id uint32) {
	if id == 0 {
		return
	}
	for u := range c.textures {
		if c.textures[u] == id {
			c.texKnown[u] = false
		}
	}
	c.backend.DeleteTexture(id)
}

// SetUniformMat4 sets a matrix uniform of the current program.
func (c *Context) SetUniformMat4(name string, m math.Mat4) {
	c.backend.SetUniformMat4(c.program, name, m)
}

// SetUniformVec3 sets a vector uniform of the current program.
func (c *Context) SetUniformVec3(name string, v math.Vec3) {
	c.backend.SetUniformVec3(c.program, name, v)
}

// SetUniformVec4 sets a vector uniform of the current program.
func (c *Context) SetUniformVec4(name string, v math.Vec4) {
	c.backend.SetUniformVec4(c.program, name, v)
}

// SetUniformColor sets a color uniform of the current program.
func (c *Context) SetUniformColor(name string, col math.Color) {
	c.backend.SetUniformVec4(c.program, name, col.Vec4())
}

// SetUniformFloat sets a scalar uniform of the current program.
func (c *Context) SetUniformFloat(name string, f float32) {
	c.backend.SetUniformFloat(c.program, name, f)
}

// SetUniformInt sets an integer uniform of the current program.
func (c *Context) SetUniformInt(name string, i int32) {
	c.backend.SetUniformInt(c.program, name, i)
}

// SetUniformFloats sets a float array uniform of the current program.
func (c *Context) SetUniformFloats(name string, v []float32) {
	c.backend.SetUniformFloats(c.program, name, v)
}

// SetViewport sets the viewport.
func (c *Context) SetViewport(vp math.Viewport) {
	if c.vpKnown && c.viewport == vp {
		return
	}
	c.viewport, c.vpKnown = vp, true
	c.backend.Viewport(vp)
}

// SetCapability switches a pipeline capability.
func (c *Context) SetCapability(cp Capability, enabled bool) {
	if c.caps[cp] == tri(enabled) {
		return
	}
	c.caps[cp] = tri(enabled)
	c.backend.SetCapability(cp, enabled)
	c.stats.StateChanges++
}

// SetDepthMask enables or disables depth writes.
func (c *Context) SetDepthMask(write bool) {
	if c.depthMask == tri(write) {
		return
	}
	c.depthMask = tri(write)
	c.backend.DepthMask(write)
	c.stats.StateChanges++
}

// SetCullFace selects the culled faces.
func (c *Context) SetCullFace(f Face) {
	if c.cullKnown && c.cullFace == f {
		return
	}
	c.cullFace, c.cullKnown = f, true
	c.backend.CullFace(f)
	c.stats.StateChanges++
}

// SetFrontFace selects the front face winding.
func (c *Context) SetFrontFace(w Winding) {
	if c.frontKnown && c.frontFace == w {
		return
	}
	c.frontFace, c.frontKnown = w, true
	c.backend.FrontFace(w)
	c.stats.StateChanges++
}

// SetLineWidth sets the rasterized line width.
func (c *Context) SetLineWidth(w float32) {
	if w <= 0 || c.lineWidth == w {
		return
	}
	c.lineWidth = w
	c.backend.LineWidth(w)
	c.stats.StateChanges++
}

// SetBlendFunc sets the blend factors.
func (c *Context) SetBlendFunc(src, dst BlendFactor) {
	if c.blendKnown && c.blendSrc == src && c.blendDst == dst {
		return
	}
	c.blendSrc, c.blendDst, c.blendKnown = src, dst, true
	c.backend.BlendFunc(src, dst)
	c.stats.StateChanges++
}

// SetDecalOffset enables polygon offset fill for a non-zero offset.
func (c *Context) SetDecalOffset(d DecalOffset) {
	c.SetCapability(PolygonOffsetFill, !d.IsZero())
	if d.IsZero() || (c.offsetSet && c.offset == d) {
		return
	}
	c.offset, c.offsetSet = d, true
	c.backend.PolygonOffset(d.Factor, d.Units)
	c.stats.StateChanges++
}

// ApplyRenderState pushes the backend-visible parts of rs. Smooth shading
// and normal scaling are program inputs and are reported through the
// drawing environment instead.
func (c *Context) ApplyRenderState(rs RenderState) {
	c.SetCapability(DepthTest, rs.DepthTest)
	c.SetDepthMask(rs.DepthMask)
	c.SetCapability(CullFace, rs.CullFaces)
	if rs.CullFaces {
		c.SetCullFace(rs.CullFace)
	}
	c.SetFrontFace(rs.FrontFace)
	c.SetLineWidth(rs.LineWidth)
	c.SetDecalOffset(rs.Decal)
}

// Clear clears the color and depth buffers.
func (c *Context) Clear(color math.Color) {
	c.backend.ClearColor(color)
	// Depth writes must be on for the depth clear to take effect.
	c.SetDepthMask(true)
	c.backend.Clear(true, true)
}
