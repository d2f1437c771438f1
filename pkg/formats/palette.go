package formats

import (
	"errors"
	"fmt"
	"image/color"
)

// PaletteSize is the number of entries in a palette.
const PaletteSize = 256

// BankSize is the number of colors in one sub-palette bank.
const BankSize = 16

// Palette errors.
var (
	ErrPaletteIndex = errors.New("palette index out of range")
	ErrPaletteBank  = errors.New("palette bank out of range")
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// BGRA packs the color the way D3D9 A8R8G8B8 textures store it.
func (c Color) BGRA() uint32 {
	return uint32(c.A)<<24 | uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// ColorFromBGRA unpacks an A8R8G8B8 value.
func ColorFromBGRA(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}
}

// String returns the color as #rrggbbaa.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Palette is a 256-color lookup table. Count tracks how many leading
// entries are in use.
type Palette struct {
	Name   string
	Colors [PaletteSize]Color
	Count  int
}

// NewPalette returns an empty palette.
func NewPalette(name string) *Palette {
	return &Palette{Name: name}
}

// GetColor returns entry index.
func (p *Palette) GetColor(index int) (Color, error) {
	if index < 0 || index >= PaletteSize {
		return Color{}, fmt.Errorf("%w: %d", ErrPaletteIndex, index)
	}
	return p.Colors[index], nil
}

// SetColor sets entry index, growing Count to cover it.
func (p *Palette) SetColor(index int, c Color) error {
	if index < 0 || index >= PaletteSize {
		return fmt.Errorf("%w: %d", ErrPaletteIndex, index)
	}
	p.Colors[index] = c
	if index >= p.Count {
		p.Count = index + 1
	}
	return nil
}

// LookupColor returns the first index in [start, start+count) holding c,
// or -1.
func (p *Palette) LookupColor(c Color, start, count int) int {
	if start < 0 {
		start = 0
	}
	end := start + count
	if end > PaletteSize {
		end = PaletteSize
	}
	for i := start; i < end; i++ {
		if p.Colors[i] == c {
			return i
		}
	}
	return -1
}

// Bank returns the 16 colors of sub-palette bank.
func (p *Palette) Bank(bank int) ([]Color, error) {
	if bank < 0 || bank >= PaletteSize/BankSize {
		return nil, fmt.Errorf("%w: %d", ErrPaletteBank, bank)
	}
	out := make([]Color, BankSize)
	copy(out, p.Colors[bank*BankSize:(bank+1)*BankSize])
	return out, nil
}

// SetBank replaces sub-palette bank with colors (at most 16).
func (p *Palette) SetBank(bank int, colors []Color) error {
	if bank < 0 || bank >= PaletteSize/BankSize {
		return fmt.Errorf("%w: %d", ErrPaletteBank, bank)
	}
	if len(colors) > BankSize {
		colors = colors[:BankSize]
	}
	for i, c := range colors {
		if err := p.SetColor(bank*BankSize+i, c); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (p *Palette) Clone() *Palette {
	c := *p
	return &c
}

// ImagePalette converts to a color.Palette of all 256 entries.
func (p *Palette) ImagePalette() color.Palette {
	out := make(color.Palette, PaletteSize)
	for i, c := range p.Colors {
		out[i] = color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
	}
	return out
}

// PaletteFromImage converts a color.Palette; missing entries stay zero.
func PaletteFromImage(name string, pal color.Palette) *Palette {
	p := NewPalette(name)
	for i, c := range pal {
		if i >= PaletteSize {
			break
		}
		n := color.NRGBAModel.Convert(c).(color.NRGBA)
		p.Colors[i] = Color{R: n.R, G: n.G, B: n.B, A: n.A}
	}
	p.Count = min(len(pal), PaletteSize)
	return p
}

// Gradient builds a palette ramping linearly from a to b.
func Gradient(name string, a, b Color) *Palette {
	p := NewPalette(name)
	lerp := func(x, y uint8, i int) uint8 {
		return uint8((int(x)*(PaletteSize-1-i) + int(y)*i + (PaletteSize-1)/2) / (PaletteSize - 1))
	}
	for i := 0; i < PaletteSize; i++ {
		p.Colors[i] = Color{
			R: lerp(a.R, b.R, i),
			G: lerp(a.G, b.G, i),
			B: lerp(a.B, b.B, i),
			A: lerp(a.A, b.A, i),
		}
	}
	p.Count = PaletteSize
	return p
}
