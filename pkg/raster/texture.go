// Package raster is a CPU reference implementation of the palette lookup
// pixel shader: textures, sampler state and a parallel full-image pass.
package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/Faultbox/palshade/pkg/d3d9"
	"github.com/Faultbox/palshade/pkg/formats"
)

// Texture errors.
var (
	ErrInvalidSize    = errors.New("invalid texture size")
	ErrPixelCount     = errors.New("pixel data does not match texture size")
	ErrPaletteTooLong = errors.New("palette texture too long")
)

// Texture2D is a read-only 2D texture.
type Texture2D interface {
	Size() (width, height int)
	Texel(x, y int) d3d9.Vec4
}

// Texture1D is a read-only 1D texture.
type Texture1D interface {
	Len() int
	Texel(i int) d3d9.Vec4
}

// IndexTexture is a single-channel 8-bit texture of palette indices.
// Lookups return (i/255, i/255, i/255, 1), as a luminance format does.
type IndexTexture struct {
	width   int
	height  int
	indices []byte
}

// NewIndexTexture wraps indices, stored row by row, top row first.
func NewIndexTexture(width, height int, indices []byte) (*IndexTexture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	if len(indices) != width*height {
		return nil, fmt.Errorf("%w: %d indices for %dx%d", ErrPixelCount, len(indices), width, height)
	}
	return &IndexTexture{width: width, height: height, indices: indices}, nil
}

// IndexTextureFromImage builds an index texture from a paletted image.
func IndexTextureFromImage(img *image.Paletted) (*IndexTexture, error) {
	b := img.Bounds()
	indices := make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):]
		indices = append(indices, row[:b.Dx()]...)
	}
	return NewIndexTexture(b.Dx(), b.Dy(), indices)
}

// Size returns the texture dimensions.
func (t *IndexTexture) Size() (int, int) {
	return t.width, t.height
}

// Index returns the raw index at (x, y).
func (t *IndexTexture) Index(x, y int) byte {
	return t.indices[y*t.width+x]
}

// Texel returns the normalized index at (x, y).
func (t *IndexTexture) Texel(x, y int) d3d9.Vec4 {
	v := float32(t.indices[y*t.width+x]) / 255
	return d3d9.Vec4{v, v, v, 1}
}

// RGBATexture is an 8-bit RGBA texture. Only its red channel matters to
// the palette shader; the others are carried so that can be checked.
type RGBATexture struct {
	img *image.NRGBA
}

// NewRGBATexture wraps img without copying.
func NewRGBATexture(img *image.NRGBA) (*RGBATexture, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, b.Dx(), b.Dy())
	}
	return &RGBATexture{img: img}, nil
}

// Size returns the texture dimensions.
func (t *RGBATexture) Size() (int, int) {
	b := t.img.Bounds()
	return b.Dx(), b.Dy()
}

// Texel returns the normalized color at (x, y).
func (t *RGBATexture) Texel(x, y int) d3d9.Vec4 {
	b := t.img.Bounds()
	i := t.img.PixOffset(b.Min.X+x, b.Min.Y+y)
	p := t.img.Pix[i : i+4 : i+4]
	return d3d9.Vec4{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

// PaletteTexture is a 1D RGBA lookup table.
type PaletteTexture struct {
	texels []d3d9.Vec4
}

// PaletteOptions controls how a palette becomes a texture.
type PaletteOptions struct {
	// TransparentZero forces entry 0 to alpha 0, the sprite convention.
	TransparentZero bool
}

// NewPaletteTexture converts a palette into a 256-texel lookup table.
func NewPaletteTexture(p *formats.Palette, opts PaletteOptions) *PaletteTexture {
	t := &PaletteTexture{texels: make([]d3d9.Vec4, len(p.Colors))}
	for i, c := range p.Colors {
		t.texels[i] = d3d9.Vec4{
			float32(c.R) / 255,
			float32(c.G) / 255,
			float32(c.B) / 255,
			float32(c.A) / 255,
		}
	}
	if opts.TransparentZero {
		t.texels[0][3] = 0
	}
	return t
}

// NewBankTexture converts sub-palette bank of p into a 16-texel lookup
// table, the layout the compiled remap addresses directly.
func NewBankTexture(p *formats.Palette, bank int, opts PaletteOptions) (*PaletteTexture, error) {
	colors, err := p.Bank(bank)
	if err != nil {
		return nil, err
	}
	sub := &formats.Palette{Name: p.Name}
	copy(sub.Colors[:], colors)
	t := NewPaletteTexture(sub, opts)
	t.texels = t.texels[:len(colors)]
	return t, nil
}

// NewPaletteTextureFromTexels wraps raw texels. At most 4096 texels are
// accepted, the 1D texture width limit of the targeted hardware.
func NewPaletteTextureFromTexels(texels []d3d9.Vec4) (*PaletteTexture, error) {
	if len(texels) == 0 {
		return nil, fmt.Errorf("%w: empty palette", ErrInvalidSize)
	}
	if len(texels) > 4096 {
		return nil, fmt.Errorf("%w: %d texels", ErrPaletteTooLong, len(texels))
	}
	return &PaletteTexture{texels: texels}, nil
}

// Len returns the number of texels.
func (t *PaletteTexture) Len() int {
	return len(t.texels)
}

// Texel returns texel i.
func (t *PaletteTexture) Texel(i int) d3d9.Vec4 {
	return t.texels[i]
}
