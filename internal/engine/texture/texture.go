// Package texture uploads the palette shader's two inputs to the GPU: an
// 8-bit index texture for slot 0 and a 256-texel 1D palette for slot 1.
package texture

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/palshade/internal/logger"
	"github.com/Faultbox/palshade/pkg/formats"
	"github.com/Faultbox/palshade/pkg/raster"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("empty index image")

// Texture is a GL texture object and the target it was created for.
type Texture struct {
	id     uint32
	target uint32
	width  int32
	height int32
}

// ID returns the GL texture name.
func (t *Texture) ID() uint32 {
	return t.id
}

// Size returns the texture dimensions. 1D textures have height 1.
func (t *Texture) Size() (width, height int32) {
	return t.width, t.height
}

// Bind binds the texture to the given texture unit.
func (t *Texture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(t.target, t.id)
}

// SetSampler updates filter and address state.
func (t *Texture) SetSampler(s raster.Sampler) {
	gl.BindTexture(t.target, t.id)
	ParamsFor(s).apply(t.target)
}

// Delete releases the texture.
func (t *Texture) Delete() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// NewIndexTexture uploads img's indices as a single-channel R8 texture, top
// row first. The palette attached to img is ignored.
func NewIndexTexture(img *image.Paletted, s raster.Sampler) (*Texture, error) {
	indices, w, h := packIndices(img)
	if w == 0 || h == 0 {
		return nil, ErrEmptyImage
	}

	t := &Texture{target: gl.TEXTURE_2D, width: int32(w), height: int32(h)}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.R8, t.width, t.height, 0, gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(indices))
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	ParamsFor(s).apply(gl.TEXTURE_2D)

	if code := gl.GetError(); code != gl.NO_ERROR {
		t.Delete()
		return nil, fmt.Errorf("uploading index texture: gl error 0x%x", code)
	}

	logger.Debug("index texture uploaded",
		zap.Uint32("id", t.id),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return t, nil
}

// NewPaletteTexture uploads p as a 256x1 RGBA8 1D texture.
func NewPaletteTexture(p *formats.Palette, opts raster.PaletteOptions, s raster.Sampler) (*Texture, error) {
	t := &Texture{target: gl.TEXTURE_1D, width: formats.PaletteSize, height: 1}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_1D, t.id)
	data := packPalette(p, opts)
	gl.TexImage1D(gl.TEXTURE_1D, 0, gl.RGBA8, t.width, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
	ParamsFor(s).apply(gl.TEXTURE_1D)

	if code := gl.GetError(); code != gl.NO_ERROR {
		t.Delete()
		return nil, fmt.Errorf("uploading palette texture: gl error 0x%x", code)
	}

	logger.Debug("palette texture uploaded", zap.Uint32("id", t.id), zap.String("palette", p.Name))
	return t, nil
}

// UpdatePalette replaces the texels of a palette texture in place.
func (t *Texture) UpdatePalette(p *formats.Palette, opts raster.PaletteOptions) {
	gl.BindTexture(gl.TEXTURE_1D, t.id)
	data := packPalette(p, opts)
	gl.TexSubImage1D(gl.TEXTURE_1D, 0, 0, t.width, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data))
}

func packIndices(img *image.Paletted) ([]byte, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, 0, w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+w]...)
	}
	return out, w, h
}

func packPalette(p *formats.Palette, opts raster.PaletteOptions) []byte {
	out := make([]byte, formats.PaletteSize*4)
	for i, c := range p.Colors {
		out[i*4] = c.R
		out[i*4+1] = c.G
		out[i*4+2] = c.B
		out[i*4+3] = c.A
	}
	if opts.TransparentZero {
		out[3] = 0
	}
	return out
}
