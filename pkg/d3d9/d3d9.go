// Package d3d9 decodes and executes Direct3D 9 shader bytecode.
//
// The bytecode is a little-endian stream of 32-bit tokens: a version token,
// followed by instructions and comment blocks, terminated by an end token.
// Only shader model 2.0 and later streams are decoded, since earlier models
// do not encode instruction lengths.
package d3d9

import (
	"fmt"

	"github.com/pkg/errors"
)

// Decoder errors.
var (
	ErrTruncated          = errors.New("truncated shader bytecode")
	ErrMisaligned         = errors.New("shader bytecode length is not a multiple of 4")
	ErrInvalidVersion     = errors.New("invalid shader version token")
	ErrUnsupportedVersion = errors.New("unsupported shader version")
	ErrMissingEnd         = errors.New("shader bytecode has no end token")
	ErrInvalidCTAB        = errors.New("invalid constant table")
	ErrUnsupportedOpcode  = errors.New("unsupported opcode")
	ErrRelativeAddressing = errors.New("relative addressing is not supported")
)

// ShaderType is the high word of the version token.
type ShaderType uint16

// Shader types.
const (
	VertexShader ShaderType = 0xFFFE
	PixelShader  ShaderType = 0xFFFF
)

// Version identifies the shader type and model.
type Version struct {
	Type  ShaderType
	Major uint8
	Minor uint8
}

// ParseVersion decodes a version token.
func ParseVersion(token uint32) (Version, error) {
	v := Version{
		Type:  ShaderType(token >> 16),
		Major: uint8(token >> 8),
		Minor: uint8(token),
	}
	if v.Type != PixelShader && v.Type != VertexShader {
		return Version{}, errors.Wrapf(ErrInvalidVersion, "token 0x%08x", token)
	}
	return v, nil
}

// Token encodes the version back into its token form.
func (v Version) Token() uint32 {
	return uint32(v.Type)<<16 | uint32(v.Major)<<8 | uint32(v.Minor)
}

// IsPixelShader reports whether the version belongs to a pixel shader.
func (v Version) IsPixelShader() bool {
	return v.Type == PixelShader
}

// String returns the profile name, e.g. "ps_2_0".
func (v Version) String() string {
	prefix := "vs"
	if v.IsPixelShader() {
		prefix = "ps"
	}
	if v.Major == 2 && v.Minor == 1 {
		return prefix + "_2_x"
	}
	return fmt.Sprintf("%s_%d_%d", prefix, v.Major, v.Minor)
}

// AtLeast reports whether the version is major.minor or newer.
func (v Version) AtLeast(major, minor uint8) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}
