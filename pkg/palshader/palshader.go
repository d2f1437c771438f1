// Package palshader carries the precompiled palette lookup pixel shader.
//
// The shader samples an index texture bound to slot 0, remaps the sampled
// red channel with the c0 multiply-add (x*15.9375 + 0.03125, the texel
// centers of a 16-entry bank) and samples the 1D palette texture bound to
// slot 1. Load checks that the embedded bytecode declares exactly that
// binding contract before anything is bound to it.
package palshader

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/Faultbox/palshade/pkg/d3d9"
)

// Binding contract of the shader.
const (
	ImageSampler   = "image"
	PaletteSampler = "palette"
	ImageSlot      = 0
	PaletteSlot    = 1
)

// Contract errors.
var (
	ErrUnsupportedModel  = errors.New("unsupported shader model")
	ErrMissingConstants  = errors.New("shader has no constant table")
	ErrMissingSampler    = errors.New("missing sampler")
	ErrUnexpectedSampler = errors.New("unexpected sampler")
	ErrMissingRemap      = errors.New("missing remap constant c0")
	ErrUnknownRemap      = errors.New("unknown remap")
)

// Remap selectors accepted by SelectRemap.
const (
	RemapShader = "shader" // c0 as compiled
	RemapTexel  = "texel"  // TexelCenterRemap, for flat 256-texel palettes
)

// Source is the HLSL the bytecode was compiled from.
//
//go:embed palette.hlsl
var Source string

// GLVertexSource is the GLSL 4.1 vertex stage used by the OpenGL port.
//
//go:embed palette.vert
var GLVertexSource string

// GLFragmentSource is the GLSL 4.1 port of the pixel shader. The remap
// constants are a uniform rather than literals.
//
//go:embed palette.frag
var GLFragmentSource string

// Bytecode returns a copy of the compiled ps_2_0 program.
func Bytecode() []byte {
	out := make([]byte, len(bytecode))
	copy(out, bytecode[:])
	return out
}

// Binding is one sampler slot the shader expects to be bound.
type Binding struct {
	Slot int
	Name string
	Type d3d9.ParameterType
}

func (b Binding) String() string {
	return fmt.Sprintf("s%d %s (%s)", b.Slot, b.Name, b.Type)
}

// Expected is the binding contract the bytecode must declare.
var Expected = [2]Binding{
	{Slot: ImageSlot, Name: ImageSampler, Type: d3d9.TypeSampler2D},
	{Slot: PaletteSlot, Name: PaletteSampler, Type: d3d9.TypeSampler1D},
}

// Shader is a validated palette lookup program.
type Shader struct {
	Program  *d3d9.Shader
	Bindings [2]Binding
	Remap    Remap
}

var loadEmbedded = sync.OnceValues(func() (*Shader, error) {
	return LoadBytecode(bytecode[:])
})

// Load decodes and validates the embedded bytecode. The result is shared
// and must not be modified.
func Load() (*Shader, error) {
	return loadEmbedded()
}

// LoadBytecode decodes data and checks it against the binding contract.
func LoadBytecode(data []byte) (*Shader, error) {
	prog, err := d3d9.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding bytecode: %w", err)
	}

	if !prog.Version.IsPixelShader() || prog.Version.Major != 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedModel, prog.Version)
	}
	if prog.Constants == nil {
		return nil, ErrMissingConstants
	}

	s := &Shader{Program: prog}

	samplers := prog.Constants.Samplers()
	declared := prog.SamplerDeclarations()
	for i, want := range Expected {
		got, ok := prog.Constants.Lookup(want.Name)
		if !ok || got.RegisterSet != d3d9.RegisterSetSampler {
			return nil, fmt.Errorf("%w: %s", ErrMissingSampler, want.Name)
		}
		if int(got.RegisterIndex) != want.Slot || got.Type != want.Type {
			return nil, fmt.Errorf("%w: %s is s%d %s, want s%d %s",
				ErrUnexpectedSampler, got.Name, got.RegisterIndex, got.Type, want.Slot, want.Type)
		}
		if _, ok := declared[uint16(want.Slot)]; !ok {
			return nil, fmt.Errorf("%w: s%d is not declared", ErrMissingSampler, want.Slot)
		}
		s.Bindings[i] = want
	}
	if len(samplers) != len(Expected) {
		return nil, fmt.Errorf("%w: shader declares %d samplers", ErrUnexpectedSampler, len(samplers))
	}

	c0, ok := prog.Definitions()[0]
	if !ok {
		return nil, ErrMissingRemap
	}
	s.Remap = Remap{Scale: c0[0], Offset: c0[1]}

	return s, nil
}

// SelectRemap returns the remap named by mode. An empty mode is RemapShader.
func (s *Shader) SelectRemap(mode string) (Remap, error) {
	switch mode {
	case "", RemapShader:
		return s.Remap, nil
	case RemapTexel:
		return TexelCenterRemap, nil
	}
	return Remap{}, fmt.Errorf("%w %q (want %s or %s)", ErrUnknownRemap, mode, RemapShader, RemapTexel)
}

// NewMachine returns an interpreter for the shader with both slots bound.
func (s *Shader) NewMachine(image, palette d3d9.Sampler) (*d3d9.Machine, error) {
	m, err := d3d9.NewMachine(s.Program)
	if err != nil {
		return nil, err
	}
	if err := m.BindSampler(ImageSlot, image); err != nil {
		return nil, err
	}
	if err := m.BindSampler(PaletteSlot, palette); err != nil {
		return nil, err
	}
	return m, nil
}
