package d3d9

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ctabFourCC is "CTAB" read as a little-endian token.
const ctabFourCC = 0x42415443

// ctabHeaderSize is sizeof(D3DXSHADER_CONSTANTTABLE).
const ctabHeaderSize = 28

// RegisterSet is the register file a constant is bound to.
type RegisterSet uint16

// Register sets.
const (
	RegisterSetBool    RegisterSet = 0
	RegisterSetInt4    RegisterSet = 1
	RegisterSetFloat4  RegisterSet = 2
	RegisterSetSampler RegisterSet = 3
)

// String returns the register prefix used by the set.
func (s RegisterSet) String() string {
	switch s {
	case RegisterSetBool:
		return "b"
	case RegisterSetInt4:
		return "i"
	case RegisterSetFloat4:
		return "c"
	case RegisterSetSampler:
		return "s"
	}
	return "?"
}

// ParameterClass is D3DXPARAMETER_CLASS.
type ParameterClass uint16

// Parameter classes.
const (
	ClassScalar        ParameterClass = 0
	ClassVector        ParameterClass = 1
	ClassMatrixRows    ParameterClass = 2
	ClassMatrixColumns ParameterClass = 3
	ClassObject        ParameterClass = 4
	ClassStruct        ParameterClass = 5
)

// ParameterType is D3DXPARAMETER_TYPE.
type ParameterType uint16

// Parameter types.
const (
	TypeVoid        ParameterType = 0
	TypeBool        ParameterType = 1
	TypeInt         ParameterType = 2
	TypeFloat       ParameterType = 3
	TypeString      ParameterType = 4
	TypeTexture     ParameterType = 5
	TypeTexture1D   ParameterType = 6
	TypeTexture2D   ParameterType = 7
	TypeTexture3D   ParameterType = 8
	TypeTextureCube ParameterType = 9
	TypeSampler     ParameterType = 10
	TypeSampler1D   ParameterType = 11
	TypeSampler2D   ParameterType = 12
	TypeSampler3D   ParameterType = 13
	TypeSamplerCube ParameterType = 14
)

var parameterTypeNames = map[ParameterType]string{
	TypeVoid:        "void",
	TypeBool:        "bool",
	TypeInt:         "int",
	TypeFloat:       "float",
	TypeString:      "string",
	TypeTexture:     "texture",
	TypeTexture1D:   "texture1D",
	TypeTexture2D:   "texture2D",
	TypeTexture3D:   "texture3D",
	TypeTextureCube: "textureCUBE",
	TypeSampler:     "sampler",
	TypeSampler1D:   "sampler1D",
	TypeSampler2D:   "sampler2D",
	TypeSampler3D:   "sampler3D",
	TypeSamplerCube: "samplerCUBE",
}

func (t ParameterType) String() string {
	if name, ok := parameterTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsSampler reports whether the type is one of the sampler types.
func (t ParameterType) IsSampler() bool {
	return t >= TypeSampler && t <= TypeSamplerCube
}

// Constant is one entry of the constant table.
type Constant struct {
	Name          string
	RegisterSet   RegisterSet
	RegisterIndex uint16
	RegisterCount uint16
	Class         ParameterClass
	Type          ParameterType
	Rows          uint16
	Columns       uint16
	Elements      uint16
	Default       []float32
}

// ConstantTable is the CTAB comment emitted by the HLSL compiler.
type ConstantTable struct {
	Creator   string
	Target    string
	Version   Version
	Flags     uint32
	Constants []Constant
}

// Lookup returns the constant with the given name.
func (t *ConstantTable) Lookup(name string) (Constant, bool) {
	for _, c := range t.Constants {
		if c.Name == name {
			return c, true
		}
	}
	return Constant{}, false
}

// Samplers returns the sampler constants ordered as declared.
func (t *ConstantTable) Samplers() []Constant {
	var out []Constant
	for _, c := range t.Constants {
		if c.RegisterSet == RegisterSetSampler {
			out = append(out, c)
		}
	}
	return out
}

// parseConstantTable decodes a CTAB payload. data starts right after the
// FourCC; all offsets inside the table are relative to that point.
func parseConstantTable(data []byte) (*ConstantTable, error) {
	if len(data) < ctabHeaderSize {
		return nil, errors.Wrap(ErrInvalidCTAB, "header truncated")
	}
	le := binary.LittleEndian
	size := le.Uint32(data[0:])
	creator := le.Uint32(data[4:])
	version := le.Uint32(data[8:])
	count := le.Uint32(data[12:])
	infoOffset := le.Uint32(data[16:])
	flags := le.Uint32(data[20:])
	target := le.Uint32(data[24:])

	if size != ctabHeaderSize {
		return nil, errors.Wrapf(ErrInvalidCTAB, "header size %d", size)
	}

	v, err := ParseVersion(version)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidCTAB, err.Error())
	}

	t := &ConstantTable{
		Version:   v,
		Flags:     flags,
		Constants: make([]Constant, 0, count),
	}
	if t.Creator, err = ctabString(data, creator); err != nil {
		return nil, errors.Wrap(err, "creator")
	}
	if t.Target, err = ctabString(data, target); err != nil {
		return nil, errors.Wrap(err, "target")
	}

	const infoSize = 20
	for i := uint32(0); i < count; i++ {
		off := infoOffset + i*infoSize
		if uint64(off)+infoSize > uint64(len(data)) {
			return nil, errors.Wrapf(ErrInvalidCTAB, "constant %d info out of range", i)
		}
		c, err := parseConstant(data, data[off:off+infoSize])
		if err != nil {
			return nil, errors.Wrapf(err, "constant %d", i)
		}
		t.Constants = append(t.Constants, c)
	}

	return t, nil
}

func parseConstant(table, info []byte) (Constant, error) {
	le := binary.LittleEndian
	name, err := ctabString(table, le.Uint32(info[0:]))
	if err != nil {
		return Constant{}, err
	}
	c := Constant{
		Name:          name,
		RegisterSet:   RegisterSet(le.Uint16(info[4:])),
		RegisterIndex: le.Uint16(info[6:]),
		RegisterCount: le.Uint16(info[8:]),
	}

	typeOffset := le.Uint32(info[12:])
	if uint64(typeOffset)+16 > uint64(len(table)) {
		return Constant{}, errors.Wrapf(ErrInvalidCTAB, "type info offset 0x%x out of range", typeOffset)
	}
	ti := table[typeOffset:]
	c.Class = ParameterClass(le.Uint16(ti[0:]))
	c.Type = ParameterType(le.Uint16(ti[2:]))
	c.Rows = le.Uint16(ti[4:])
	c.Columns = le.Uint16(ti[6:])
	c.Elements = le.Uint16(ti[8:])

	if defOffset := le.Uint32(info[16:]); defOffset != 0 {
		n := uint64(c.RegisterCount) * 4
		if uint64(defOffset)+n*4 > uint64(len(table)) {
			return Constant{}, errors.Wrapf(ErrInvalidCTAB, "default value of %q out of range", name)
		}
		c.Default = make([]float32, n)
		for i := range c.Default {
			c.Default[i] = math.Float32frombits(le.Uint32(table[defOffset+uint32(i)*4:]))
		}
	}
	return c, nil
}

func ctabString(data []byte, offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(data)) {
		return "", errors.Wrapf(ErrInvalidCTAB, "string offset 0x%x out of range", offset)
	}
	s := data[offset:]
	end := bytes.IndexByte(s, 0)
	if end < 0 {
		return "", errors.Wrapf(ErrInvalidCTAB, "unterminated string at 0x%x", offset)
	}
	return string(s[:end]), nil
}
