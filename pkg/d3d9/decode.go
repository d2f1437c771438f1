package d3d9

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// TextureType is the sampler texture type carried by a dcl instruction.
type TextureType uint8

// Sampler texture types. Shader model 2 has no 1D sampler declaration;
// 1D textures are declared as 2D and distinguished only by the constant table.
const (
	TextureUnknown TextureType = 0
	Texture2D      TextureType = 2
	TextureCube    TextureType = 3
	TextureVolume  TextureType = 4
)

func (t TextureType) String() string {
	switch t {
	case Texture2D:
		return "2d"
	case TextureCube:
		return "cube"
	case TextureVolume:
		return "volume"
	}
	return "unknown"
}

// Declaration is the usage token of a dcl instruction.
type Declaration struct {
	Usage       uint8
	UsageIndex  uint8
	TextureType TextureType
}

// Instruction is one decoded instruction.
type Instruction struct {
	Opcode     Opcode
	Offset     int // token index within the stream
	Predicated bool
	Dst        *DstParam
	Src        []SrcParam
	Decl       *Declaration
	Value      [4]float32 // def operands
}

// Comment is a raw comment block.
type Comment struct {
	Offset int
	FourCC uint32
	Data   []byte
}

// Shader is a decoded bytecode stream.
type Shader struct {
	Version      Version
	Instructions []Instruction
	Comments     []Comment
	Constants    *ConstantTable // nil when the stream carries no CTAB
	Size         int            // in bytes, including the end token
}

// Parse decodes a shader bytecode blob.
func Parse(data []byte) (*Shader, error) {
	if len(data)%4 != 0 {
		return nil, ErrMisaligned
	}
	if len(data) < 8 {
		return nil, ErrTruncated
	}

	tokens := make([]uint32, len(data)/4)
	for i := range tokens {
		tokens[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	version, err := ParseVersion(tokens[0])
	if err != nil {
		return nil, err
	}
	if version.Major < 2 {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "%s", version)
	}

	s := &Shader{Version: version}
	for pos := 1; pos < len(tokens); {
		tok := tokens[pos]
		op := Opcode(tok & 0xFFFF)

		switch op {
		case OpEnd:
			s.Size = (pos + 1) * 4
			return s, nil

		case OpComment:
			n := int((tok >> 16) & 0x7FFF)
			if pos+1+n > len(tokens) {
				return nil, errors.Wrapf(ErrTruncated, "comment at token %d", pos)
			}
			c := Comment{Offset: pos, Data: data[(pos+1)*4 : (pos+1+n)*4]}
			if n > 0 {
				c.FourCC = tokens[pos+1]
			}
			if c.FourCC == ctabFourCC && s.Constants == nil {
				s.Constants, err = parseConstantTable(c.Data[4:])
				if err != nil {
					return nil, errors.Wrapf(err, "comment at token %d", pos)
				}
			}
			s.Comments = append(s.Comments, c)
			pos += 1 + n
			continue
		}

		n := int((tok >> 24) & 0xF)
		if pos+1+n > len(tokens) {
			return nil, errors.Wrapf(ErrTruncated, "%s at token %d", op, pos)
		}
		inst, err := decodeInstruction(op, tok, tokens[pos+1:pos+1+n])
		if err != nil {
			return nil, errors.Wrapf(err, "%s at token %d", op, pos)
		}
		inst.Offset = pos
		s.Instructions = append(s.Instructions, inst)
		pos += 1 + n
	}

	return nil, ErrMissingEnd
}

func decodeInstruction(op Opcode, tok uint32, params []uint32) (Instruction, error) {
	inst := Instruction{
		Opcode:     op,
		Predicated: tok&(1<<28) != 0,
	}

	switch op {
	case OpDcl:
		if len(params) != 2 {
			return inst, errors.Errorf("dcl expects 2 parameters, got %d", len(params))
		}
		decl := params[0]
		inst.Decl = &Declaration{
			Usage:       uint8(decl & 0x1F),
			UsageIndex:  uint8((decl >> 16) & 0xF),
			TextureType: TextureType((decl >> 27) & 0xF),
		}
		dst, err := decodeDst(params[1])
		if err != nil {
			return inst, err
		}
		inst.Dst = &dst
		return inst, nil

	case OpDef:
		if len(params) != 5 {
			return inst, errors.Errorf("def expects 5 parameters, got %d", len(params))
		}
		dst, err := decodeDst(params[0])
		if err != nil {
			return inst, err
		}
		inst.Dst = &dst
		for i := 0; i < 4; i++ {
			inst.Value[i] = math.Float32frombits(params[1+i])
		}
		return inst, nil

	case OpDefI, OpDefB:
		// Integer and boolean constants are kept raw in Value bits.
		dst, err := decodeDst(params[0])
		if err != nil {
			return inst, err
		}
		inst.Dst = &dst
		for i := 1; i < len(params) && i <= 4; i++ {
			inst.Value[i-1] = float32(int32(params[i]))
		}
		return inst, nil
	}

	if op.hasDst() && len(params) > 0 {
		dst, err := decodeDst(params[0])
		if err != nil {
			return inst, err
		}
		inst.Dst = &dst
		params = params[1:]
	}
	if inst.Predicated && len(params) > 0 {
		// The predicate register follows the destination.
		params = params[1:]
	}
	for _, p := range params {
		src, err := decodeSrc(p)
		if err != nil {
			return inst, err
		}
		inst.Src = append(inst.Src, src)
	}
	return inst, nil
}

// Definitions returns the def instructions keyed by constant register.
func (s *Shader) Definitions() map[uint16][4]float32 {
	defs := make(map[uint16][4]float32)
	for _, inst := range s.Instructions {
		if inst.Opcode == OpDef && inst.Dst != nil {
			defs[inst.Dst.Num] = inst.Value
		}
	}
	return defs
}

// SamplerDeclarations returns the dcl'd samplers keyed by slot.
func (s *Shader) SamplerDeclarations() map[uint16]TextureType {
	out := make(map[uint16]TextureType)
	for _, inst := range s.Instructions {
		if inst.Opcode == OpDcl && inst.Dst != nil && inst.Dst.Type == RegSampler {
			out[inst.Dst.Num] = inst.Decl.TextureType
		}
	}
	return out
}
