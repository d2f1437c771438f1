package palshader

import "github.com/chewxy/math32"

// Palette geometry.
const (
	PaletteSize = 256
	BankSize    = 16 // colors per sub-palette
	Banks       = PaletteSize / BankSize
)

// Remap is the multiply-add that turns a normalized index sample into a
// palette texture coordinate.
type Remap struct {
	Scale  float32
	Offset float32
}

// ShaderRemap is the remap compiled into the bytecode's c0 register. Index i,
// sampled as i/255, lands on (i+0.5)/16: the center of texel i of a 16-texel
// bank. Indices past 15 give coordinates above 1, resolved by the palette
// sampler's addressing mode.
var ShaderRemap = Remap{Scale: 15.9375, Offset: 0.03125}

// TexelCenterRemap maps index i onto the center of texel i of a flat
// 256-texel palette. It is never the compiled default and has to be
// selected explicitly.
var TexelCenterRemap = RemapFor(PaletteSize)

// RemapFor derives the remap for an n-entry palette under the texel-center
// convention: index i, sampled as i/(n-1), lands on (i+0.5)/n.
func RemapFor(n int) Remap {
	f := float32(n)
	return Remap{
		Scale:  (f - 1) / f,
		Offset: 0.5 / f,
	}
}

// Apply maps a normalized index sample to a palette coordinate.
func (r Remap) Apply(x float32) float32 {
	return float32(x*r.Scale) + r.Offset
}

// Flat rescales a bank remap onto the whole 256-texel palette.
// ShaderRemap.Flat() is TexelCenterRemap.
func (r Remap) Flat() Remap {
	return Remap{Scale: r.Scale / Banks, Offset: r.Offset / Banks}
}

// SplitBank splits a coordinate produced by ShaderRemap into the number of
// whole banks it passed and the entry inside its bank, clamped to the
// palette. Under wrap addressing on a 16-texel bank, entry is the texel read.
func SplitBank(coord float32) (bank, entry int) {
	idx := clampInt(int(math32.Floor(coord*BankSize)), 0, PaletteSize-1)
	return idx / BankSize, idx % BankSize
}

// Index returns the texel point sampling with clamp addressing selects from
// a 256-texel palette for the normalized sample x.
func (r Remap) Index(x float32) int {
	return clampInt(int(math32.Floor(r.Apply(x)*PaletteSize)), 0, PaletteSize-1)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
