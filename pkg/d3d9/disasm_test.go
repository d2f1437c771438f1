package d3d9

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstruction_String(t *testing.T) {
	s, err := Parse(newPixelProgram(2, 0).
		def(1, 0.5, -2, 0, 1e-3).
		dclTexCoord(0, MaskX|MaskY).
		dclSampler(0, Texture2D).
		inst(OpTexLd, dst(RegTemp, 0, MaskAll), src(RegTexture, 0, SwizzleIdentity), src(RegSampler, 0, SwizzleIdentity)).
		inst(OpMad, dstSat(RegTemp, 1, MaskX|MaskY),
			srcMod(RegTemp, 0, replicate(0), SrcModNeg), src(RegConst, 1, replicate(1)), src(RegConst, 1, 0x1B)).
		inst(OpAdd, dst(RegTemp, 2, MaskAll), srcMod(RegTemp, 1, SwizzleIdentity, SrcModAbs), src(RegTemp, 0, SwizzleIdentity)).
		inst(OpMov, dst(RegColorOut, 0, MaskAll), src(RegTemp, 2, SwizzleIdentity)).
		bytes())
	require.NoError(t, err)

	want := []string{
		"def c1, 0.5, -2, 0, 0.001",
		"dcl t0.xy",
		"dcl_2d s0",
		"texld r0, t0, s0",
		"mad_sat r1.xy, -r0.x, c1.y, c1.wzyx",
		"add r2, r1_abs, r0",
		"mov oC0, r2",
	}
	require.Len(t, s.Instructions, len(want))
	for i, inst := range s.Instructions {
		assert.Equal(t, want[i], inst.String())
	}
}

func TestDisassemble_NoConstantTable(t *testing.T) {
	s, err := Parse(newPixelProgram(2, 0).
		inst(OpMov, dst(RegColorOut, 0, MaskAll), src(RegConst, 0, SwizzleIdentity)).
		bytes())
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, s.Disassemble(&b))
	assert.Equal(t, "    ps_2_0\n    mov oC0, c0\n", b.String())
}

func TestSwizzle_String(t *testing.T) {
	assert.Equal(t, "", SwizzleIdentity.String())
	assert.Equal(t, "x", replicate(0).String())
	assert.Equal(t, "w", replicate(3).String())
	assert.Equal(t, "wzyx", Swizzle(0x1B).String())
	assert.Equal(t, "xyxy", Swizzle(0x44).String())
}
