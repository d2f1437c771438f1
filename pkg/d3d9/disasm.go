package d3d9

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Disassemble writes an fxc-style listing of the shader to w.
func (s *Shader) Disassemble(w io.Writer) error {
	var b strings.Builder

	if t := s.Constants; t != nil {
		b.WriteString("//\n")
		fmt.Fprintf(&b, "// Generated by %s\n", t.Creator)
		b.WriteString("//\n")
		if len(t.Constants) > 0 {
			b.WriteString("// Registers:\n//\n")
			b.WriteString("//   Name         Reg   Size\n")
			b.WriteString("//   ------------ ----- ----\n")
			for _, c := range t.Constants {
				reg := fmt.Sprintf("%s%d", c.RegisterSet, c.RegisterIndex)
				fmt.Fprintf(&b, "//   %-12s %-5s %4d\n", c.Name, reg, c.RegisterCount)
			}
			b.WriteString("//\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("    " + s.Version.String() + "\n")
	for _, inst := range s.Instructions {
		b.WriteString("    " + inst.String() + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// String returns the instruction in assembly syntax.
func (inst Instruction) String() string {
	switch inst.Opcode {
	case OpDcl:
		return declString(inst)
	case OpDef:
		vals := make([]string, 4)
		for i, v := range inst.Value {
			vals[i] = formatFloat(v)
		}
		return fmt.Sprintf("def %s, %s", inst.Dst, strings.Join(vals, ", "))
	}

	name := inst.Opcode.String()
	if inst.Dst != nil {
		if inst.Dst.Modifiers&ModSaturate != 0 {
			name += "_sat"
		}
		if inst.Dst.Modifiers&ModPartialPrecision != 0 {
			name += "_pp"
		}
	}

	var ops []string
	if inst.Dst != nil {
		ops = append(ops, inst.Dst.String())
	}
	for _, src := range inst.Src {
		ops = append(ops, src.String())
	}
	if len(ops) == 0 {
		return name
	}
	return name + " " + strings.Join(ops, ", ")
}

func declString(inst Instruction) string {
	if inst.Dst == nil || inst.Decl == nil {
		return "dcl"
	}
	if inst.Dst.Type == RegSampler {
		return fmt.Sprintf("dcl_%s %s", inst.Decl.TextureType, inst.Dst)
	}
	return fmt.Sprintf("dcl %s", inst.Dst)
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
