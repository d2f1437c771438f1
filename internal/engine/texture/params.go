package texture

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/palshade/pkg/raster"
)

// Params is a sampler state expressed as GL texture parameters.
type Params struct {
	MinFilter int32
	MagFilter int32
	WrapS     int32
	WrapT     int32
	Border    [4]float32
}

// ParamsFor maps a CPU sampler state onto GL. No mipmaps are ever
// allocated, so the min filter never selects a mip level.
func ParamsFor(s raster.Sampler) Params {
	filter := int32(gl.NEAREST)
	if s.Filter == raster.FilterLinear {
		filter = gl.LINEAR
	}
	return Params{
		MinFilter: filter,
		MagFilter: filter,
		WrapS:     wrapFor(s.AddressU),
		WrapT:     wrapFor(s.AddressV),
		Border:    s.Border,
	}
}

func wrapFor(a raster.AddressMode) int32 {
	switch a {
	case raster.AddressWrap:
		return gl.REPEAT
	case raster.AddressMirror:
		return gl.MIRRORED_REPEAT
	case raster.AddressBorder:
		return gl.CLAMP_TO_BORDER
	}
	return gl.CLAMP_TO_EDGE
}

// apply sets p on the texture bound to target.
func (p Params) apply(target uint32) {
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, p.MinFilter)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, p.MagFilter)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, p.WrapS)
	if target != gl.TEXTURE_1D {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_T, p.WrapT)
	}
	if p.WrapS == gl.CLAMP_TO_BORDER || p.WrapT == gl.CLAMP_TO_BORDER {
		gl.TexParameterfv(target, gl.TEXTURE_BORDER_COLOR, &p.Border[0])
	}
}
