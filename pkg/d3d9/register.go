package d3d9

import (
	"fmt"
	"strings"
)

// RegisterType identifies a register file.
type RegisterType uint8

// Register types. Values match D3DSHADER_PARAM_REGISTER_TYPE.
const (
	RegTemp       RegisterType = 0
	RegInput      RegisterType = 1
	RegConst      RegisterType = 2
	RegTexture    RegisterType = 3 // t# in pixel shaders, a0 in vertex shaders
	RegRastOut    RegisterType = 4
	RegAttrOut    RegisterType = 5
	RegOutput     RegisterType = 6
	RegConstInt   RegisterType = 7
	RegColorOut   RegisterType = 8
	RegDepthOut   RegisterType = 9
	RegSampler    RegisterType = 10
	RegConstBool  RegisterType = 14
	RegLoop       RegisterType = 15
	RegMisc       RegisterType = 17
	RegPredicate  RegisterType = 19
	registerTypes              = 20
)

var registerPrefixes = [registerTypes]string{
	RegTemp:      "r",
	RegInput:     "v",
	RegConst:     "c",
	RegTexture:   "t",
	RegRastOut:   "oPos",
	RegAttrOut:   "oD",
	RegOutput:    "o",
	RegConstInt:  "i",
	RegColorOut:  "oC",
	RegDepthOut:  "oDepth",
	RegSampler:   "s",
	RegConstBool: "b",
	RegLoop:      "aL",
	RegMisc:      "vPos",
	RegPredicate: "p",
}

// String returns the assembly register prefix.
func (t RegisterType) String() string {
	if int(t) < len(registerPrefixes) && registerPrefixes[t] != "" {
		return registerPrefixes[t]
	}
	return fmt.Sprintf("reg%d", uint8(t))
}

// registerFromToken extracts the split register type and number.
func registerFromToken(token uint32) (RegisterType, uint16) {
	typ := (token>>28)&0x7 | (token>>8)&0x18
	return RegisterType(typ), uint16(token & 0x7FF)
}

func registerToken(typ RegisterType, num uint16) uint32 {
	t := uint32(typ)
	return 1<<31 | (t&0x7)<<28 | (t&0x18)<<8 | uint32(num&0x7FF)
}

// Write mask bits.
const (
	MaskX   uint8 = 1 << 0
	MaskY   uint8 = 1 << 1
	MaskZ   uint8 = 1 << 2
	MaskW   uint8 = 1 << 3
	MaskAll       = MaskX | MaskY | MaskZ | MaskW
)

// Result modifier bits.
const (
	ModSaturate         uint8 = 1 << 0
	ModPartialPrecision uint8 = 1 << 1
	ModCentroid         uint8 = 1 << 2
)

// DstParam is a decoded destination parameter token.
type DstParam struct {
	Type      RegisterType
	Num       uint16
	WriteMask uint8
	Modifiers uint8
	Shift     int8
}

func decodeDst(token uint32) (DstParam, error) {
	if token&(1<<13) != 0 {
		return DstParam{}, ErrRelativeAddressing
	}
	typ, num := registerFromToken(token)
	shift := int8((token >> 24) & 0xF)
	if shift > 7 {
		shift -= 16
	}
	return DstParam{
		Type:      typ,
		Num:       num,
		WriteMask: uint8((token >> 16) & 0xF),
		Modifiers: uint8((token >> 20) & 0xF),
		Shift:     shift,
	}, nil
}

// Token encodes the parameter.
func (d DstParam) Token() uint32 {
	return registerToken(d.Type, d.Num) |
		uint32(d.WriteMask&0xF)<<16 |
		uint32(d.Modifiers&0xF)<<20 |
		uint32(uint8(d.Shift)&0xF)<<24
}

// String returns the assembly form, e.g. "r0.xy".
func (d DstParam) String() string {
	s := registerName(d.Type, d.Num)
	if d.WriteMask != MaskAll && d.WriteMask != 0 {
		s += "." + maskString(d.WriteMask)
	}
	return s
}

// SrcModifier is a source parameter modifier.
type SrcModifier uint8

// Source modifiers. Values match D3DSHADER_PARAM_SRCMOD_TYPE.
const (
	SrcModNone   SrcModifier = 0
	SrcModNeg    SrcModifier = 1
	SrcModAbs    SrcModifier = 11
	SrcModAbsNeg SrcModifier = 12
)

// Swizzle is the 8-bit source swizzle; two bits per output component.
type Swizzle uint8

// SwizzleIdentity is .xyzw.
const SwizzleIdentity Swizzle = 0xE4

// Component returns the source component selected for output component i.
func (s Swizzle) Component(i int) int {
	return int(s>>(2*uint(i))) & 3
}

// String returns the swizzle suffix, empty for identity.
func (s Swizzle) String() string {
	if s == SwizzleIdentity {
		return ""
	}
	var b strings.Builder
	var comps [4]byte
	for i := 0; i < 4; i++ {
		comps[i] = "xyzw"[s.Component(i)]
	}
	// Replicate swizzles print as a single component.
	if comps[0] == comps[1] && comps[1] == comps[2] && comps[2] == comps[3] {
		return string(comps[0])
	}
	b.Write(comps[:])
	return b.String()
}

// SrcParam is a decoded source parameter token.
type SrcParam struct {
	Type     RegisterType
	Num      uint16
	Swizzle  Swizzle
	Modifier SrcModifier
}

func decodeSrc(token uint32) (SrcParam, error) {
	if token&(1<<13) != 0 {
		return SrcParam{}, ErrRelativeAddressing
	}
	typ, num := registerFromToken(token)
	return SrcParam{
		Type:     typ,
		Num:      num,
		Swizzle:  Swizzle(token >> 16),
		Modifier: SrcModifier((token >> 24) & 0xF),
	}, nil
}

// Token encodes the parameter.
func (s SrcParam) Token() uint32 {
	return registerToken(s.Type, s.Num) |
		uint32(s.Swizzle)<<16 |
		uint32(s.Modifier&0xF)<<24
}

// String returns the assembly form, e.g. "-c0.y".
func (s SrcParam) String() string {
	name := registerName(s.Type, s.Num)
	if sw := s.Swizzle.String(); sw != "" {
		name += "." + sw
	}
	switch s.Modifier {
	case SrcModNeg:
		return "-" + name
	case SrcModAbs:
		return name + "_abs"
	case SrcModAbsNeg:
		return "-" + name + "_abs"
	}
	return name
}

func registerName(typ RegisterType, num uint16) string {
	switch typ {
	case RegDepthOut, RegLoop, RegRastOut:
		return typ.String()
	}
	return fmt.Sprintf("%s%d", typ, num)
}

func maskString(mask uint8) string {
	var b strings.Builder
	for i := 0; i < 4; i++ {
		if mask&(1<<uint(i)) != 0 {
			b.WriteByte("xyzw"[i])
		}
	}
	return b.String()
}
