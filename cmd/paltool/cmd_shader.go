package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/palshade/pkg/palshader"
)

var infoCmd = &cobra.Command{
	Use:   "info [bytecode-file]",
	Short: "Show the shader's bindings and remap constants",
	Long: `Validates the shader bytecode against the palette lookup contract and
prints its model, sampler bindings and remap constants. Without an argument
the embedded shader is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInfo,
}

var disasmCmd = &cobra.Command{
	Use:   "disasm [bytecode-file]",
	Short: "Disassemble the shader bytecode",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDisasm,
}

var disasmSource bool

func init() {
	disasmCmd.Flags().BoolVar(&disasmSource, "source", false, "print the HLSL source and GLSL port instead")
}

func loadShader(args []string) (*palshader.Shader, error) {
	if len(args) == 0 {
		return palshader.Load()
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading bytecode: %w", err)
	}
	return palshader.LoadBytecode(data)
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, err := loadShader(args)
	if err != nil {
		return err
	}
	printInfo(cmd.OutOrStdout(), s)
	return nil
}

func printInfo(w io.Writer, s *palshader.Shader) {
	prog := s.Program
	fmt.Fprintf(w, "Model:        %s\n", prog.Version)
	fmt.Fprintf(w, "Size:         %d bytes\n", prog.Size)
	fmt.Fprintf(w, "Instructions: %d\n", len(prog.Instructions))
	if ct := prog.Constants; ct != nil {
		fmt.Fprintf(w, "Creator:      %s\n", ct.Creator)
		fmt.Fprintf(w, "Target:       %s\n", ct.Target)
	}

	fmt.Fprintln(w, "\nBindings:")
	for _, b := range s.Bindings {
		fmt.Fprintf(w, "  %s\n", b)
	}

	flat := s.Remap.Flat()
	fmt.Fprintln(w, "\nRemap:")
	fmt.Fprintf(w, "  c0          scale=%g offset=%g\n", s.Remap.Scale, s.Remap.Offset)
	fmt.Fprintf(w, "  flat (%s)  scale=%g offset=%g\n", palshader.RemapTexel, flat.Scale, flat.Offset)
	fmt.Fprintf(w, "  index 0 -> %g, index 255 -> %g\n", s.Remap.Apply(0), s.Remap.Apply(1))
}

func runDisasm(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if disasmSource {
		_, err := fmt.Fprintf(w, "// HLSL\n%s\n// GLSL vertex\n%s\n// GLSL fragment\n%s",
			palshader.Source, palshader.GLVertexSource, palshader.GLFragmentSource)
		return err
	}
	s, err := loadShader(args)
	if err != nil {
		return err
	}
	return s.Program.Disassemble(w)
}
