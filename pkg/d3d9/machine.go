package d3d9

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Machine errors.
var (
	ErrNotPixelShader  = errors.New("not a pixel shader")
	ErrUnboundSampler  = errors.New("sampler not bound")
	ErrInvalidRegister = errors.New("invalid register for operation")
)

// Vec4 is one four-component shader register.
type Vec4 [4]float32

// Sampler resolves a texture lookup for one sampler slot.
// Implementations must be safe for concurrent use when a Machine is run
// from several goroutines.
type Sampler interface {
	Sample(coord Vec4) Vec4
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(coord Vec4) Vec4

// Sample calls f(coord).
func (f SamplerFunc) Sample(coord Vec4) Vec4 {
	return f(coord)
}

// Inputs are the interpolated per-pixel inputs.
type Inputs struct {
	TexCoords [8]Vec4 // t#
	Colors    [2]Vec4 // v#
}

// Outputs are the pixel shader results.
type Outputs struct {
	Colors [4]Vec4 // oC#
	Depth  float32
	Killed bool
}

const (
	maxTemps     = 32
	maxConstants = 256
	maxSamplers  = 16
)

var supportedOps = map[Opcode]bool{
	OpNop: true, OpMov: true, OpAdd: true, OpSub: true, OpMad: true,
	OpMul: true, OpRcp: true, OpRsq: true, OpDp3: true, OpDp4: true,
	OpMin: true, OpMax: true, OpSlt: true, OpSge: true, OpExp: true,
	OpLog: true, OpLrp: true, OpFrc: true, OpDcl: true, OpPow: true,
	OpAbs: true, OpNrm: true, OpTexKill: true, OpTexLd: true,
	OpDef: true, OpCmp: true, OpDp2Add: true,
}

// Machine interprets a decoded pixel shader on the CPU.
//
// Constants and samplers are set up front; Run keeps all per-pixel state on
// its own stack, so one Machine may shade pixels concurrently.
type Machine struct {
	shader   *Shader
	consts   [maxConstants]Vec4
	samplers [maxSamplers]Sampler
}

// NewMachine prepares s for execution and loads its def constants.
func NewMachine(s *Shader) (*Machine, error) {
	if !s.Version.IsPixelShader() {
		return nil, errors.Wrapf(ErrNotPixelShader, "%s", s.Version)
	}
	m := &Machine{shader: s}
	for _, inst := range s.Instructions {
		if !supportedOps[inst.Opcode] {
			return nil, errors.Wrapf(ErrUnsupportedOpcode, "%s at token %d", inst.Opcode, inst.Offset)
		}
		if inst.Predicated {
			return nil, errors.Wrapf(ErrUnsupportedOpcode, "predicated %s at token %d", inst.Opcode, inst.Offset)
		}
		if inst.Opcode == OpDef {
			if int(inst.Dst.Num) >= maxConstants {
				return nil, errors.Wrapf(ErrInvalidRegister, "c%d", inst.Dst.Num)
			}
			m.consts[inst.Dst.Num] = Vec4(inst.Value)
		}
	}
	return m, nil
}

// Shader returns the program being executed.
func (m *Machine) Shader() *Shader {
	return m.shader
}

// SetConstant overrides float constant register c#reg.
func (m *Machine) SetConstant(reg int, v Vec4) error {
	if reg < 0 || reg >= maxConstants {
		return errors.Wrapf(ErrInvalidRegister, "c%d", reg)
	}
	m.consts[reg] = v
	return nil
}

// Constant returns float constant register c#reg.
func (m *Machine) Constant(reg int) Vec4 {
	if reg < 0 || reg >= maxConstants {
		return Vec4{}
	}
	return m.consts[reg]
}

// BindSampler attaches a sampler to slot s#slot.
func (m *Machine) BindSampler(slot int, s Sampler) error {
	if slot < 0 || slot >= maxSamplers {
		return errors.Wrapf(ErrInvalidRegister, "s%d", slot)
	}
	m.samplers[slot] = s
	return nil
}

type registers struct {
	r  [maxTemps]Vec4
	t  [8]Vec4
	v  [2]Vec4
	oC [4]Vec4
	oD float32
}

// Run executes the shader for a single pixel.
func (m *Machine) Run(in Inputs) (Outputs, error) {
	var regs registers
	regs.t = in.TexCoords
	regs.v = in.Colors

	for i := range m.shader.Instructions {
		inst := &m.shader.Instructions[i]
		switch inst.Opcode {
		case OpNop, OpDcl, OpDef:
			continue

		case OpTexKill:
			v, err := m.read(&regs, SrcParam{Type: inst.Dst.Type, Num: inst.Dst.Num, Swizzle: SwizzleIdentity})
			if err != nil {
				return Outputs{}, errors.Wrapf(err, "token %d", inst.Offset)
			}
			for c := 0; c < 3; c++ {
				if inst.Dst.WriteMask&(1<<uint(c)) != 0 && v[c] < 0 {
					return Outputs{Killed: true}, nil
				}
			}
			continue

		case OpTexLd:
			if len(inst.Src) != 2 || inst.Src[1].Type != RegSampler {
				return Outputs{}, errors.Wrapf(ErrInvalidRegister, "texld at token %d", inst.Offset)
			}
			coord, err := m.read(&regs, inst.Src[0])
			if err != nil {
				return Outputs{}, errors.Wrapf(err, "token %d", inst.Offset)
			}
			slot := int(inst.Src[1].Num)
			if slot >= maxSamplers || m.samplers[slot] == nil {
				return Outputs{}, errors.Wrapf(ErrUnboundSampler, "s%d", slot)
			}
			if err := regs.write(inst.Dst, m.samplers[slot].Sample(coord)); err != nil {
				return Outputs{}, errors.Wrapf(err, "token %d", inst.Offset)
			}
			continue
		}

		var src [3]Vec4
		for j, p := range inst.Src {
			if j >= len(src) {
				break
			}
			v, err := m.read(&regs, p)
			if err != nil {
				return Outputs{}, errors.Wrapf(err, "%s at token %d", inst.Opcode, inst.Offset)
			}
			src[j] = v
		}
		if err := regs.write(inst.Dst, alu(inst.Opcode, src)); err != nil {
			return Outputs{}, errors.Wrapf(err, "%s at token %d", inst.Opcode, inst.Offset)
		}
	}

	return Outputs{Colors: regs.oC, Depth: regs.oD}, nil
}

func (m *Machine) read(regs *registers, p SrcParam) (Vec4, error) {
	var raw Vec4
	switch p.Type {
	case RegTemp:
		if int(p.Num) >= maxTemps {
			return Vec4{}, errors.Wrapf(ErrInvalidRegister, "r%d", p.Num)
		}
		raw = regs.r[p.Num]
	case RegConst:
		if int(p.Num) >= maxConstants {
			return Vec4{}, errors.Wrapf(ErrInvalidRegister, "c%d", p.Num)
		}
		raw = m.consts[p.Num]
	case RegTexture:
		if int(p.Num) >= len(regs.t) {
			return Vec4{}, errors.Wrapf(ErrInvalidRegister, "t%d", p.Num)
		}
		raw = regs.t[p.Num]
	case RegInput:
		if int(p.Num) >= len(regs.v) {
			return Vec4{}, errors.Wrapf(ErrInvalidRegister, "v%d", p.Num)
		}
		raw = regs.v[p.Num]
	default:
		return Vec4{}, errors.Wrapf(ErrInvalidRegister, "read from %s%d", p.Type, p.Num)
	}

	var out Vec4
	for i := 0; i < 4; i++ {
		out[i] = raw[p.Swizzle.Component(i)]
	}
	switch p.Modifier {
	case SrcModNone:
	case SrcModNeg:
		for i := range out {
			out[i] = -out[i]
		}
	case SrcModAbs:
		for i := range out {
			out[i] = math32.Abs(out[i])
		}
	case SrcModAbsNeg:
		for i := range out {
			out[i] = -math32.Abs(out[i])
		}
	default:
		return Vec4{}, errors.Wrapf(ErrUnsupportedOpcode, "source modifier %d", p.Modifier)
	}
	return out, nil
}

func (regs *registers) write(d *DstParam, v Vec4) error {
	if d == nil {
		return errors.Wrap(ErrInvalidRegister, "missing destination")
	}
	if d.Shift != 0 {
		scale := math32.Ldexp(1, int(d.Shift))
		for i := range v {
			v[i] *= scale
		}
	}
	if d.Modifiers&ModSaturate != 0 {
		for i := range v {
			v[i] = saturate(v[i])
		}
	}

	var dst *Vec4
	switch d.Type {
	case RegTemp:
		if int(d.Num) >= maxTemps {
			return errors.Wrapf(ErrInvalidRegister, "r%d", d.Num)
		}
		dst = &regs.r[d.Num]
	case RegColorOut:
		if int(d.Num) >= len(regs.oC) {
			return errors.Wrapf(ErrInvalidRegister, "oC%d", d.Num)
		}
		dst = &regs.oC[d.Num]
	case RegDepthOut:
		regs.oD = v[0]
		return nil
	default:
		return errors.Wrapf(ErrInvalidRegister, "write to %s%d", d.Type, d.Num)
	}

	for i := 0; i < 4; i++ {
		if d.WriteMask&(1<<uint(i)) != 0 {
			dst[i] = v[i]
		}
	}
	return nil
}

func alu(op Opcode, s [3]Vec4) Vec4 {
	a, b, c := s[0], s[1], s[2]
	var out Vec4
	switch op {
	case OpMov:
		out = a
	case OpAdd:
		for i := range out {
			out[i] = a[i] + b[i]
		}
	case OpSub:
		for i := range out {
			out[i] = a[i] - b[i]
		}
	case OpMul:
		for i := range out {
			out[i] = a[i] * b[i]
		}
	case OpMad:
		for i := range out {
			out[i] = float32(a[i]*b[i]) + c[i]
		}
	case OpMin:
		for i := range out {
			out[i] = math32.Min(a[i], b[i])
		}
	case OpMax:
		for i := range out {
			out[i] = math32.Max(a[i], b[i])
		}
	case OpSlt:
		for i := range out {
			out[i] = boolf(a[i] < b[i])
		}
	case OpSge:
		for i := range out {
			out[i] = boolf(a[i] >= b[i])
		}
	case OpFrc:
		for i := range out {
			out[i] = a[i] - math32.Floor(a[i])
		}
	case OpAbs:
		for i := range out {
			out[i] = math32.Abs(a[i])
		}
	case OpCmp:
		for i := range out {
			if a[i] >= 0 {
				out[i] = b[i]
			} else {
				out[i] = c[i]
			}
		}
	case OpLrp:
		for i := range out {
			out[i] = a[i]*(b[i]-c[i]) + c[i]
		}
	case OpRcp:
		out = splat(1 / a[0])
	case OpRsq:
		out = splat(1 / math32.Sqrt(math32.Abs(a[0])))
	case OpExp:
		out = splat(math32.Exp2(a[0]))
	case OpLog:
		out = splat(math32.Log2(math32.Abs(a[0])))
	case OpPow:
		out = splat(math32.Pow(math32.Abs(a[0]), b[0]))
	case OpDp3:
		out = splat(a[0]*b[0] + a[1]*b[1] + a[2]*b[2])
	case OpDp4:
		out = splat(a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3])
	case OpDp2Add:
		out = splat(a[0]*b[0] + a[1]*b[1] + c[0])
	case OpNrm:
		l := math32.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2])
		if l != 0 {
			out = Vec4{a[0] / l, a[1] / l, a[2] / l, a[3] / l}
		}
	}
	return out
}

func splat(v float32) Vec4 {
	return Vec4{v, v, v, v}
}

func boolf(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func saturate(v float32) float32 {
	if v < 0 || math32.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
