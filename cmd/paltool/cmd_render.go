package main

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/palshade/internal/assets"
	"github.com/Faultbox/palshade/internal/logger"
	"github.com/Faultbox/palshade/pkg/encoding"
	"github.com/Faultbox/palshade/pkg/formats"
	"github.com/Faultbox/palshade/pkg/palshader"
	"github.com/Faultbox/palshade/pkg/raster"
)

var renderCmd = &cobra.Command{
	Use:   "render <image>",
	Short: "Render an indexed image through a palette to PNG",
	Long: `Renders an indexed image through the palette lookup shader on the CPU.

The palette defaults to the configured one, then to the image's own palette.
The compiled remap centers index i on texel i of a 16-entry bank; indices
past 15 resolve through the palette address mode. Use --bank to bind one
16-entry bank, or --remap texel to address a flat 256-entry palette.
With --interpret the compiled bytecode is executed instruction by instruction
instead of the direct Go implementation; both produce the same pixels.

Examples:
  paltool render hero.spr --frame 3 --palette hero_red.pal -o hero.png
  paltool render tiles.png --repeat --scale 4 -o - > tiles_x4.png
  paltool render tile.png --bank 2 --palette-address wrap -o tile.png`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

type renderOptions struct {
	palette         string
	frame           int
	out             string
	filter          string
	address         string
	paletteAddress  string
	remap           string
	bank            int
	repeat          bool
	interpret       bool
	transparentZero bool
	scale           int
}

var renderOpts renderOptions

func init() {
	f := renderCmd.Flags()
	f.StringVarP(&renderOpts.palette, "palette", "p", "", "palette file (pal, png, bmp or spr)")
	f.IntVar(&renderOpts.frame, "frame", 0, "sprite frame")
	f.StringVarP(&renderOpts.out, "out", "o", "", `output PNG ("-" for stdout, default <image>_render.png)`)
	f.StringVar(&renderOpts.filter, "filter", "", "image filter: point or linear (default from config)")
	f.StringVar(&renderOpts.address, "address", "", "image address mode: clamp, wrap, mirror or border")
	f.StringVar(&renderOpts.paletteAddress, "palette-address", "", "palette address mode: clamp, wrap, mirror or border")
	f.StringVar(&renderOpts.remap, "remap", "", "index remap: shader or texel (default from config)")
	f.IntVar(&renderOpts.bank, "bank", -1, "bind only 16-entry bank N of the palette (-1 = whole palette)")
	f.BoolVar(&renderOpts.repeat, "repeat", false, "tile the image (forces wrap addressing)")
	f.BoolVar(&renderOpts.interpret, "interpret", false, "run the shader bytecode interpreter")
	f.BoolVar(&renderOpts.transparentZero, "transparent-zero", false, "treat palette entry 0 as transparent")
	f.IntVar(&renderOpts.scale, "scale", 1, "output size as a multiple of the image size")
}

func runRender(cmd *cobra.Command, args []string) error {
	m, err := newManager()
	if err != nil {
		return err
	}
	defer m.Close()

	img, pal, err := loadInputs(m, args[0], renderOpts.frame, renderOpts.palette)
	if err != nil {
		return err
	}

	sh, err := palshader.Load()
	if err != nil {
		return err
	}
	p, err := buildPipeline(sh, img, pal, renderOpts)
	if err != nil {
		return err
	}

	frag := p.Fragment()
	if renderOpts.interpret {
		if frag, err = p.MachineFragment(sh); err != nil {
			return err
		}
	}

	scale := max(renderOpts.scale, 1)
	w, h := p.Image.Size()
	dst := image.NewNRGBA(image.Rect(0, 0, w*scale, h*scale))

	start := time.Now()
	if err := raster.Render(contextOf(cmd), dst, frag); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	logger.Debug("rendered",
		zap.String("image", args[0]),
		zap.String("palette", pal.Name),
		zap.Int("width", w*scale),
		zap.Int("height", h*scale),
		zap.Float32("remap_scale", p.Remap.Scale),
		zap.Float32("remap_offset", p.Remap.Offset),
		zap.Bool("interpret", renderOpts.interpret),
		zap.Duration("elapsed", time.Since(start)),
	)

	out := renderOpts.out
	if out == "" {
		out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "_render.png"
	}
	return writePNG(cmd.OutOrStdout(), out, dst)
}

// loadInputs loads the index image and picks its palette: palName, then the
// configured palette, then the image's own.
func loadInputs(m *assets.Manager, name string, frame int, palName string) (*image.Paletted, *formats.Palette, error) {
	img, err := m.LoadImage(name, frame)
	if err != nil {
		return nil, nil, err
	}
	if palName == "" {
		palName = cfg.Data.Palette
	}
	if palName != "" {
		pal, err := m.LoadPalette(palName)
		if err != nil {
			return nil, nil, err
		}
		return img, pal, nil
	}
	pal, err := formats.PaletteOf(encoding.BaseName(name), img)
	if err != nil {
		return nil, nil, err
	}
	return img, pal, nil
}

func buildPipeline(sh *palshader.Shader, img *image.Paletted, pal *formats.Palette, opts renderOptions) (*raster.Pipeline, error) {
	sc := cfg.Sampler
	if opts.filter != "" {
		sc.Filter = opts.filter
	}
	if opts.address != "" {
		sc.AddressU, sc.AddressV = opts.address, opts.address
	}
	if opts.paletteAddress != "" {
		sc.PaletteAddress = opts.paletteAddress
	}
	if opts.remap != "" {
		sc.Remap = opts.remap
	}
	sc.Repeat = sc.Repeat || opts.repeat

	remap, err := sh.SelectRemap(sc.Remap)
	if err != nil {
		return nil, err
	}

	imageSampler, err := sc.ImageSampler()
	if err != nil {
		return nil, err
	}
	paletteSampler, err := sc.PaletteSampler()
	if err != nil {
		return nil, err
	}

	tex, err := raster.IndexTextureFromImage(img)
	if err != nil {
		return nil, err
	}
	palOpts := raster.PaletteOptions{TransparentZero: opts.transparentZero}
	var palTex raster.Texture1D = raster.NewPaletteTexture(pal, palOpts)
	if opts.bank >= 0 {
		if palTex, err = raster.NewBankTexture(pal, opts.bank, palOpts); err != nil {
			return nil, err
		}
	}
	p := raster.NewPipeline(tex, palTex, remap)
	p.ImageSampler = imageSampler
	p.PaletteSampler = paletteSampler
	return p, nil
}

// writePNG encodes img to path, or to stdout when path is "-".
func writePNG(stdout io.Writer, path string, img image.Image) error {
	if path == "-" {
		return raster.EncodePNG(stdout, img)
	}
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, img); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	logger.Info("wrote image", zap.String("path", path))
	return nil
}
