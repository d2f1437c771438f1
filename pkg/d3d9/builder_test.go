package d3d9

import (
	"encoding/binary"
	"math"
)

// program assembles a token stream for tests.
type program struct {
	tokens []uint32
}

func newPixelProgram(major, minor uint8) *program {
	v := Version{Type: PixelShader, Major: major, Minor: minor}
	return &program{tokens: []uint32{v.Token()}}
}

func (p *program) inst(op Opcode, params ...uint32) *program {
	p.tokens = append(p.tokens, uint32(op)|uint32(len(params))<<24)
	p.tokens = append(p.tokens, params...)
	return p
}

func (p *program) def(reg uint16, x, y, z, w float32) *program {
	return p.inst(OpDef, dst(RegConst, reg, MaskAll),
		math.Float32bits(x), math.Float32bits(y), math.Float32bits(z), math.Float32bits(w))
}

func (p *program) dclTexCoord(reg uint16, mask uint8) *program {
	return p.inst(OpDcl, 1<<31|5, dst(RegTexture, reg, mask))
}

func (p *program) dclSampler(slot uint16, tt TextureType) *program {
	return p.inst(OpDcl, 1<<31|uint32(tt)<<27, dst(RegSampler, slot, MaskAll))
}

func (p *program) comment(payload []byte) *program {
	n := (len(payload) + 3) / 4
	p.tokens = append(p.tokens, uint32(OpComment)|uint32(n)<<16)
	padded := make([]byte, n*4)
	copy(padded, payload)
	for i := 0; i < n; i++ {
		p.tokens = append(p.tokens, binary.LittleEndian.Uint32(padded[i*4:]))
	}
	return p
}

func (p *program) raw(tokens ...uint32) *program {
	p.tokens = append(p.tokens, tokens...)
	return p
}

// bytes returns the stream with an end token appended.
func (p *program) bytes() []byte {
	return p.encode(uint32(OpEnd))
}

func (p *program) encode(tail ...uint32) []byte {
	all := append(append([]uint32(nil), p.tokens...), tail...)
	out := make([]byte, len(all)*4)
	for i, t := range all {
		binary.LittleEndian.PutUint32(out[i*4:], t)
	}
	return out
}

func dst(typ RegisterType, num uint16, mask uint8) uint32 {
	return DstParam{Type: typ, Num: num, WriteMask: mask}.Token()
}

func dstSat(typ RegisterType, num uint16, mask uint8) uint32 {
	return DstParam{Type: typ, Num: num, WriteMask: mask, Modifiers: ModSaturate}.Token()
}

func src(typ RegisterType, num uint16, sw Swizzle) uint32 {
	return SrcParam{Type: typ, Num: num, Swizzle: sw}.Token()
}

func srcMod(typ RegisterType, num uint16, sw Swizzle, mod SrcModifier) uint32 {
	return SrcParam{Type: typ, Num: num, Swizzle: sw, Modifier: mod}.Token()
}

// replicate returns the swizzle that broadcasts component c.
func replicate(c int) Swizzle {
	s := Swizzle(c)
	return s | s<<2 | s<<4 | s<<6
}
