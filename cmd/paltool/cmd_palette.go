package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/palshade/pkg/formats"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "Inspect and convert palettes",
	Long: `Palettes are read from PAL files, paletted PNG/BMP images or the palette
block of SPR sprites.

Subcommands:
  show   - Print a palette as 16 banks of 16 colors
  export - Write a palette as a PAL file
  import - Replace an indexed image's palette
  swatch - Draw a palette as a 16x16 indexed image`,
}

var paletteShowCmd = &cobra.Command{
	Use:   "show <palette>",
	Short: "Print a palette as 16 banks of 16 colors",
	Args:  cobra.ExactArgs(1),
	RunE:  runPaletteShow,
}

var paletteExportCmd = &cobra.Command{
	Use:   "export <source> <out.pal>",
	Short: "Write the palette of a PAL, PNG, BMP or SPR file as PAL",
	Args:  cobra.ExactArgs(2),
	RunE:  runPaletteExport,
}

var paletteImportCmd = &cobra.Command{
	Use:   "import <palette> <image> <out>",
	Short: "Write image with its palette replaced; indices are kept",
	Args:  cobra.ExactArgs(3),
	RunE:  runPaletteImport,
}

var paletteSwatchCmd = &cobra.Command{
	Use:   "swatch <palette> <out>",
	Short: "Draw a palette as a 16x16 grid",
	Args:  cobra.ExactArgs(2),
	RunE:  runPaletteSwatch,
}

var (
	importFrame int
	swatchCell  int
	showBank    int
)

func init() {
	paletteImportCmd.Flags().IntVar(&importFrame, "frame", 0, "sprite frame when image is an SPR")
	paletteSwatchCmd.Flags().IntVar(&swatchCell, "cell", 8, "cell size in pixels")
	paletteShowCmd.Flags().IntVar(&showBank, "bank", -1, "print only this bank")

	paletteCmd.AddCommand(paletteShowCmd, paletteExportCmd, paletteImportCmd, paletteSwatchCmd)
}

func runPaletteShow(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	defer m.Close()

	pal, err := m.LoadPalette(args[0])
	if err != nil {
		return err
	}
	return printPalette(cmd.OutOrStdout(), pal, showBank)
}

func printPalette(w io.Writer, pal *formats.Palette, only int) error {
	fmt.Fprintf(w, "%s: %d colors\n", pal.Name, pal.Count)
	first, last := 0, formats.PaletteSize/formats.BankSize-1
	if only >= 0 {
		first, last = only, only
	}
	for bank := first; bank <= last; bank++ {
		colors, err := pal.Bank(bank)
		if err != nil {
			return err
		}
		cells := make([]string, len(colors))
		for i, c := range colors {
			cells[i] = c.String()
		}
		fmt.Fprintf(w, "%2d  %s\n", bank, strings.Join(cells, " "))
	}
	return nil
}

func runPaletteExport(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	defer m.Close()

	pal, err := m.LoadPalette(args[0])
	if err != nil {
		return err
	}
	return formats.WritePALFile(args[1], pal)
}

func runPaletteImport(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	defer m.Close()

	pal, err := m.LoadPalette(args[0])
	if err != nil {
		return err
	}
	img, err := m.LoadImage(args[1], importFrame)
	if err != nil {
		return err
	}
	img.Palette = pal.ImagePalette()
	return formats.SaveIndexed(args[2], img)
}

func runPaletteSwatch(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	defer m.Close()

	pal, err := m.LoadPalette(args[0])
	if err != nil {
		return err
	}
	return formats.SaveIndexed(args[1], formats.Swatch(pal, swatchCell))
}
