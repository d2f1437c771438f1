package raster

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/Faultbox/palshade/pkg/d3d9"
)

// Filter selects how texels are combined for a lookup.
type Filter uint8

// Filter modes.
const (
	FilterPoint Filter = iota
	FilterLinear
)

// String returns the config name of the filter.
func (f Filter) String() string {
	switch f {
	case FilterPoint:
		return "point"
	case FilterLinear:
		return "linear"
	}
	return fmt.Sprintf("filter(%d)", uint8(f))
}

// ParseFilter parses "point" or "linear".
func ParseFilter(s string) (Filter, error) {
	switch s {
	case "point", "nearest":
		return FilterPoint, nil
	case "linear":
		return FilterLinear, nil
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

// AddressMode resolves texel indices outside the texture.
type AddressMode uint8

// Address modes.
const (
	AddressClamp AddressMode = iota
	AddressWrap
	AddressMirror
	AddressBorder
)

// String returns the config name of the address mode.
func (a AddressMode) String() string {
	switch a {
	case AddressClamp:
		return "clamp"
	case AddressWrap:
		return "wrap"
	case AddressMirror:
		return "mirror"
	case AddressBorder:
		return "border"
	}
	return fmt.Sprintf("address(%d)", uint8(a))
}

// ParseAddressMode parses "clamp", "wrap", "mirror" or "border".
func ParseAddressMode(s string) (AddressMode, error) {
	switch s {
	case "clamp":
		return AddressClamp, nil
	case "wrap", "repeat":
		return AddressWrap, nil
	case "mirror":
		return AddressMirror, nil
	case "border":
		return AddressBorder, nil
	}
	return 0, fmt.Errorf("unknown address mode %q", s)
}

// Sampler is the caller-owned state of one sampler slot.
type Sampler struct {
	Filter   Filter
	AddressU AddressMode
	AddressV AddressMode
	Border   d3d9.Vec4
}

// PointClamp is the state the engine uses for sprites drawn once.
var PointClamp = Sampler{Filter: FilterPoint, AddressU: AddressClamp, AddressV: AddressClamp}

// PointWrap is the state the engine uses for repeated sprites.
var PointWrap = Sampler{Filter: FilterPoint, AddressU: AddressWrap, AddressV: AddressWrap}

// address maps texel index i into [0, n). ok is false when the border color
// applies.
func address(i, n int, mode AddressMode) (int, bool) {
	switch mode {
	case AddressWrap:
		i %= n
		if i < 0 {
			i += n
		}
		return i, true
	case AddressMirror:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i, true
	case AddressBorder:
		return i, i >= 0 && i < n
	default:
		if i < 0 {
			return 0, true
		}
		if i >= n {
			return n - 1, true
		}
		return i, true
	}
}

// Sample1D looks up t at normalized coordinate u. Texel i covers
// [i/n, (i+1)/n) and has its center at (i+0.5)/n.
func (s Sampler) Sample1D(t Texture1D, u float32) d3d9.Vec4 {
	n := t.Len()
	if n == 0 {
		return s.Border
	}
	fetch := func(i int) d3d9.Vec4 {
		i, ok := address(i, n, s.AddressU)
		if !ok {
			return s.Border
		}
		return t.Texel(i)
	}

	if s.Filter == FilterPoint {
		return fetch(int(math32.Floor(u * float32(n))))
	}

	x := u*float32(n) - 0.5
	x0 := math32.Floor(x)
	a := x - x0
	i := int(x0)
	return lerp(fetch(i), fetch(i+1), a)
}

// Sample2D looks up t at normalized coordinate (u, v).
func (s Sampler) Sample2D(t Texture2D, u, v float32) d3d9.Vec4 {
	w, h := t.Size()
	if w == 0 || h == 0 {
		return s.Border
	}
	fetch := func(x, y int) d3d9.Vec4 {
		x, okx := address(x, w, s.AddressU)
		y, oky := address(y, h, s.AddressV)
		if !okx || !oky {
			return s.Border
		}
		return t.Texel(x, y)
	}

	if s.Filter == FilterPoint {
		return fetch(int(math32.Floor(u*float32(w))), int(math32.Floor(v*float32(h))))
	}

	x := u*float32(w) - 0.5
	y := v*float32(h) - 0.5
	x0, y0 := math32.Floor(x), math32.Floor(y)
	ax, ay := x-x0, y-y0
	ix, iy := int(x0), int(y0)
	top := lerp(fetch(ix, iy), fetch(ix+1, iy), ax)
	bottom := lerp(fetch(ix, iy+1), fetch(ix+1, iy+1), ax)
	return lerp(top, bottom, ay)
}

func lerp(a, b d3d9.Vec4, t float32) d3d9.Vec4 {
	if t == 0 {
		return a
	}
	var out d3d9.Vec4
	for i := range out {
		out[i] = a[i] + (b[i]-a[i])*t
	}
	return out
}
