package raster

import (
	"fmt"

	"github.com/Faultbox/palshade/pkg/d3d9"
	"github.com/Faultbox/palshade/pkg/palshader"
)

// Pipeline holds everything bound for a palette draw: both textures, their
// sampler states and the remap constants.
type Pipeline struct {
	Image          Texture2D
	ImageSampler   Sampler
	Palette        Texture1D
	PaletteSampler Sampler
	Remap          palshader.Remap
}

// NewPipeline binds image and palette with point/clamp sampling. remap is
// normally the c0 of the loaded shader (palshader.Shader.Remap).
func NewPipeline(image Texture2D, palette Texture1D, remap palshader.Remap) *Pipeline {
	return &Pipeline{
		Image:          image,
		ImageSampler:   PointClamp,
		Palette:        palette,
		PaletteSampler: PointClamp,
		Remap:          remap,
	}
}

// Shade evaluates the palette lookup for one fragment at (u, v).
func (p *Pipeline) Shade(u, v float32) d3d9.Vec4 {
	raw := p.ImageSampler.Sample2D(p.Image, u, v)
	return p.PaletteSampler.Sample1D(p.Palette, p.Remap.Apply(raw[0]))
}

// PaletteCoord returns the palette coordinate the fragment at (u, v) reads.
func (p *Pipeline) PaletteCoord(u, v float32) float32 {
	raw := p.ImageSampler.Sample2D(p.Image, u, v)
	return p.Remap.Apply(raw[0])
}

// ImageBinding adapts the image slot for the bytecode interpreter.
func (p *Pipeline) ImageBinding() d3d9.Sampler {
	return d3d9.SamplerFunc(func(c d3d9.Vec4) d3d9.Vec4 {
		return p.ImageSampler.Sample2D(p.Image, c[0], c[1])
	})
}

// PaletteBinding adapts the palette slot for the bytecode interpreter.
// Only the x coordinate is used.
func (p *Pipeline) PaletteBinding() d3d9.Sampler {
	return d3d9.SamplerFunc(func(c d3d9.Vec4) d3d9.Vec4 {
		return p.PaletteSampler.Sample1D(p.Palette, c[0])
	})
}

// Fragment returns the pipeline's shading function.
func (p *Pipeline) Fragment() FragmentFunc {
	return func(u, v float32) (d3d9.Vec4, error) {
		return p.Shade(u, v), nil
	}
}

// MachineFragment returns a shading function that runs the compiled
// bytecode through the interpreter with this pipeline's slots bound. The
// pipeline's remap is loaded into c0, replacing the compiled constant.
func (p *Pipeline) MachineFragment(s *palshader.Shader) (FragmentFunc, error) {
	m, err := s.NewMachine(p.ImageBinding(), p.PaletteBinding())
	if err != nil {
		return nil, fmt.Errorf("preparing interpreter: %w", err)
	}
	if err := m.SetConstant(0, d3d9.Vec4{p.Remap.Scale, p.Remap.Offset, 0, 0}); err != nil {
		return nil, fmt.Errorf("loading remap: %w", err)
	}
	return func(u, v float32) (d3d9.Vec4, error) {
		var in d3d9.Inputs
		in.TexCoords[0] = d3d9.Vec4{u, v, 0, 1}
		out, err := m.Run(in)
		if err != nil {
			return d3d9.Vec4{}, err
		}
		return out.Colors[0], nil
	}, nil
}
