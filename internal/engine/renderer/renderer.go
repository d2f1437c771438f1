// Package renderer draws indexed images through the palette lookup shader.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/palshade/internal/engine/framebuffer"
	"github.com/Faultbox/palshade/internal/engine/shader"
	"github.com/Faultbox/palshade/internal/engine/texture"
	"github.com/Faultbox/palshade/internal/logger"
	"github.com/Faultbox/palshade/pkg/palshader"
)

// Texture units the shader samples from, matching the bytecode's s0 and s1.
const (
	ImageUnit   = 0
	PaletteUnit = 1
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config

	program *shader.Program
	remap   palshader.Remap

	quadVAO uint32
	quadVBO uint32

	locRect  int32
	locRemap int32
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		config: cfg,
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	rendererName := gl.GoStr(gl.GetString(gl.RENDERER))
	logger.Info("OpenGL initialized",
		zap.String("version", version),
		zap.String("renderer", rendererName),
	)

	// The bytecode is the reference contract; the GLSL port is only drawn
	// once the blob it mirrors has validated.
	sh, err := palshader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading palette shader: %w", err)
	}
	r.remap = sh.Remap

	r.program, err = shader.CompileProgram(palshader.GLVertexSource, palshader.GLFragmentSource)
	if err != nil {
		return nil, fmt.Errorf("failed to create shader program: %w", err)
	}
	r.program.Use()
	gl.Uniform1i(r.program.MustUniform("uImage"), ImageUnit)
	gl.Uniform1i(r.program.MustUniform("uPalette"), PaletteUnit)
	r.locRect = r.program.MustUniform("uRect")
	r.locRemap = r.program.MustUniform("uRemap")

	r.createQuad()

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.ClearColor(0.1, 0.1, 0.15, 1.0)

	return r, nil
}

// Close cleans up renderer resources.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.quadVAO != 0 {
		gl.DeleteVertexArrays(1, &r.quadVAO)
	}
	if r.quadVBO != 0 {
		gl.DeleteBuffers(1, &r.quadVBO)
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	logger.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Size returns the viewport size.
func (r *Renderer) Size() (int, int) {
	return r.config.Width, r.config.Height
}

// SetRemap replaces the compiled c0 remap, for example with
// palshader.TexelCenterRemap to address a flat 256-entry palette.
func (r *Renderer) SetRemap(m palshader.Remap) {
	r.remap = m
}

// Remap returns the remap in use.
func (r *Renderer) Remap() palshader.Remap {
	return r.remap
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

// DrawPalette draws img through pal into rect, given in clip space.
func (r *Renderer) DrawPalette(img, pal *texture.Texture, rect Rect) {
	r.program.Use()
	img.Bind(ImageUnit)
	pal.Bind(PaletteUnit)
	gl.Uniform4f(r.locRect, rect.X, rect.Y, rect.W, rect.H)
	gl.Uniform2f(r.locRemap, r.remap.Scale, r.remap.Offset)

	gl.BindVertexArray(r.quadVAO)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)
}

// RenderImage draws img through pal into an offscreen target the size of
// img and reads the result back.
func (r *Renderer) RenderImage(img, pal *texture.Texture) (*image.NRGBA, error) {
	w, h := img.Size()
	fb, err := framebuffer.New(w, h)
	if err != nil {
		return nil, err
	}
	defer fb.Destroy()

	restore := fb.BindWithViewport()
	fb.Clear(0, 0, 0, 0)
	// Blending would mix in the cleared target; the readback wants the
	// shader output unchanged.
	gl.Disable(gl.BLEND)
	r.DrawPalette(img, pal, FullRect)
	gl.Enable(gl.BLEND)
	out, err := fb.ReadImage()
	restore()
	return out, err
}

// createQuad builds a unit quad. Texture v runs top to bottom so that an
// image uploaded top row first appears upright.
func (r *Renderer) createQuad() {
	vertices := []float32{
		// Position   // TexCoord
		0, 0, 0, 1,
		1, 0, 1, 1,
		0, 1, 0, 0,
		1, 1, 1, 0,
	}

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.BindVertexArray(r.quadVAO)

	gl.GenBuffers(1, &r.quadVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, nil)
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, unsafe.Pointer(uintptr(2*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	logger.Debug("quad created",
		zap.Uint32("vao", r.quadVAO),
		zap.Uint32("vbo", r.quadVBO),
	)
}
