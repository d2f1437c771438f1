package main

import (
	"github.com/spf13/cobra"

	"github.com/Faultbox/palshade/pkg/formats"
)

var rampCmd = &cobra.Command{
	Use:   "ramp <out>",
	Short: "Write a test image stepping through all 256 indices",
	Long: `Writes a grayscale-paletted image whose columns step through indices
0..255 left to right. Rendering it through a palette shows every entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runRamp,
}

var rampWidth, rampHeight int

func init() {
	rampCmd.Flags().IntVar(&rampWidth, "width", 256, "image width")
	rampCmd.Flags().IntVar(&rampHeight, "height", 16, "image height")
}

func runRamp(cmd *cobra.Command, args []string) error {
	return formats.SaveIndexed(args[0], formats.Ramp(max(rampWidth, 1), max(rampHeight, 1)))
}
