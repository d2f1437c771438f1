package d3d9

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Minimal(t *testing.T) {
	data := newPixelProgram(2, 0).
		def(0, 1, 0.5, 0.25, 0).
		inst(OpMov, dst(RegColorOut, 0, MaskAll), src(RegConst, 0, SwizzleIdentity)).
		bytes()

	s, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "ps_2_0", s.Version.String())
	assert.True(t, s.Version.IsPixelShader())
	assert.Equal(t, len(data), s.Size)
	require.Len(t, s.Instructions, 2)

	def := s.Instructions[0]
	assert.Equal(t, OpDef, def.Opcode)
	assert.Equal(t, [4]float32{1, 0.5, 0.25, 0}, def.Value)
	assert.Equal(t, 1, def.Offset)

	mov := s.Instructions[1]
	assert.Equal(t, OpMov, mov.Opcode)
	require.NotNil(t, mov.Dst)
	assert.Equal(t, RegColorOut, mov.Dst.Type)
	require.Len(t, mov.Src, 1)
	assert.Equal(t, RegConst, mov.Src[0].Type)
	assert.Equal(t, 7, mov.Offset)

	assert.Equal(t, map[uint16][4]float32{0: {1, 0.5, 0.25, 0}}, s.Definitions())
}

func TestParse_TrailingBytesIgnored(t *testing.T) {
	p := newPixelProgram(2, 0).inst(OpNop)
	data := p.encode(uint32(OpEnd), 0xDEADBEEF)

	s, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, len(data)-4, s.Size)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncated},
		{"misaligned", []byte{0, 2, 0xFF, 0xFF, 0}, ErrMisaligned},
		{"bad version", (&program{tokens: []uint32{0x12340200}}).bytes(), ErrInvalidVersion},
		{"shader model 1", newPixelProgram(1, 4).bytes(), ErrUnsupportedVersion},
		{"no end", newPixelProgram(2, 0).inst(OpNop).encode(), ErrMissingEnd},
		{"truncated instruction", newPixelProgram(2, 0).encode(uint32(OpMov) | 2<<24), ErrTruncated},
		{"truncated comment", newPixelProgram(2, 0).encode(uint32(OpComment) | 10<<16), ErrTruncated},
		{"relative addressing", newPixelProgram(2, 0).
			inst(OpMov, dst(RegTemp, 0, MaskAll), src(RegConst, 0, SwizzleIdentity)|1<<13).
			bytes(), ErrRelativeAddressing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.Equal(t, tt.want, errors.Cause(err))
		})
	}
}

func TestParse_Declarations(t *testing.T) {
	data := newPixelProgram(2, 0).
		dclTexCoord(0, MaskX|MaskY).
		dclSampler(0, Texture2D).
		dclSampler(3, TextureCube).
		bytes()

	s, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, s.Instructions, 3)

	tc := s.Instructions[0]
	require.NotNil(t, tc.Decl)
	assert.Equal(t, uint8(5), tc.Decl.Usage)
	assert.Equal(t, MaskX|MaskY, tc.Dst.WriteMask)

	assert.Equal(t, map[uint16]TextureType{0: Texture2D, 3: TextureCube}, s.SamplerDeclarations())
}

func TestParse_PredicatedSkipsPredicateToken(t *testing.T) {
	pred := src(RegPredicate, 0, SwizzleIdentity)
	data := newPixelProgram(2, 1).
		raw(uint32(OpAdd)|4<<24|1<<28,
			dst(RegTemp, 0, MaskAll), pred,
			src(RegTemp, 1, SwizzleIdentity), src(RegTemp, 2, SwizzleIdentity)).
		bytes()

	s, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, s.Instructions, 1)
	inst := s.Instructions[0]
	assert.True(t, inst.Predicated)
	require.Len(t, inst.Src, 2)
	assert.Equal(t, uint16(1), inst.Src[0].Num)
	assert.Equal(t, uint16(2), inst.Src[1].Num)
}

func TestParse_CommentWithoutCTAB(t *testing.T) {
	data := newPixelProgram(2, 0).comment([]byte("XYZWhello")).bytes()

	s, err := Parse(data)
	require.NoError(t, err)
	assert.Nil(t, s.Constants)
	require.Len(t, s.Comments, 1)
	assert.Len(t, s.Comments[0].Data, 12)
}

func TestParse_InvalidCTAB(t *testing.T) {
	payload := []byte("CTAB")
	payload = append(payload, make([]byte, 28)...)
	payload[4] = 12 // header size must be 28

	_, err := Parse(newPixelProgram(2, 0).comment(payload).bytes())
	require.Error(t, err)
	assert.Equal(t, ErrInvalidCTAB, errors.Cause(err))
}

func TestRegisterToken_SplitType(t *testing.T) {
	for _, typ := range []RegisterType{RegTemp, RegConst, RegColorOut, RegDepthOut, RegSampler, RegConstBool, RegPredicate} {
		d := DstParam{Type: typ, Num: 1234 & 0x7FF, WriteMask: MaskX | MaskW, Modifiers: ModSaturate, Shift: -1}
		got, err := decodeDst(d.Token())
		require.NoError(t, err)
		assert.Equal(t, d, got, "register type %s", typ)
	}

	s := SrcParam{Type: RegSampler, Num: 15, Swizzle: 0x1B, Modifier: SrcModAbsNeg}
	got, err := decodeSrc(s.Token())
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestVersion(t *testing.T) {
	v, err := ParseVersion(0xFFFF0201)
	require.NoError(t, err)
	assert.Equal(t, "ps_2_x", v.String())
	assert.True(t, v.AtLeast(2, 0))
	assert.False(t, v.AtLeast(3, 0))
	assert.Equal(t, uint32(0xFFFF0201), v.Token())

	v, err = ParseVersion(0xFFFE0300)
	require.NoError(t, err)
	assert.Equal(t, "vs_3_0", v.String())
	assert.False(t, v.IsPixelShader())
}
