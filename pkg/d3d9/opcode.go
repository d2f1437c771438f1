package d3d9

import "fmt"

// Opcode is the low word of an instruction token.
type Opcode uint16

// Known opcodes. Values match D3DSHADER_INSTRUCTION_OPCODE_TYPE.
const (
	OpNop     Opcode = 0
	OpMov     Opcode = 1
	OpAdd     Opcode = 2
	OpSub     Opcode = 3
	OpMad     Opcode = 4
	OpMul     Opcode = 5
	OpRcp     Opcode = 6
	OpRsq     Opcode = 7
	OpDp3     Opcode = 8
	OpDp4     Opcode = 9
	OpMin     Opcode = 10
	OpMax     Opcode = 11
	OpSlt     Opcode = 12
	OpSge     Opcode = 13
	OpExp     Opcode = 14
	OpLog     Opcode = 15
	OpLrp     Opcode = 18
	OpFrc     Opcode = 19
	OpDcl     Opcode = 31
	OpPow     Opcode = 32
	OpAbs     Opcode = 35
	OpNrm     Opcode = 36
	OpDefB    Opcode = 47
	OpDefI    Opcode = 48
	OpTexKill Opcode = 65
	OpTexLd   Opcode = 66
	OpDef     Opcode = 81
	OpCmp     Opcode = 88
	OpDp2Add  Opcode = 90
	OpPhase   Opcode = 0xFFFD
	OpComment Opcode = 0xFFFE
	OpEnd     Opcode = 0xFFFF
)

var opcodeNames = map[Opcode]string{
	OpNop:     "nop",
	OpMov:     "mov",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMad:     "mad",
	OpMul:     "mul",
	OpRcp:     "rcp",
	OpRsq:     "rsq",
	OpDp3:     "dp3",
	OpDp4:     "dp4",
	OpMin:     "min",
	OpMax:     "max",
	OpSlt:     "slt",
	OpSge:     "sge",
	OpExp:     "exp",
	OpLog:     "log",
	OpLrp:     "lrp",
	OpFrc:     "frc",
	OpDcl:     "dcl",
	OpPow:     "pow",
	OpAbs:     "abs",
	OpNrm:     "nrm",
	OpDefB:    "defb",
	OpDefI:    "defi",
	OpTexKill: "texkill",
	OpTexLd:   "texld",
	OpDef:     "def",
	OpCmp:     "cmp",
	OpDp2Add:  "dp2add",
	OpPhase:   "phase",
	OpComment: "comment",
	OpEnd:     "end",
}

// String returns the assembly mnemonic.
func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("op%d", uint16(o))
}

// Known reports whether the opcode has a mnemonic in this package.
func (o Opcode) Known() bool {
	_, ok := opcodeNames[o]
	return ok
}

// hasDst reports whether the first parameter of the opcode is a destination.
func (o Opcode) hasDst() bool {
	switch o {
	case OpNop, OpPhase, OpEnd, OpComment:
		return false
	}
	return true
}
