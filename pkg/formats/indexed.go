package formats

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// Indexed image errors.
var (
	ErrNotPaletted       = errors.New("image is not paletted")
	ErrUnknownImageType  = errors.New("unknown image file type")
	ErrPaletteFromSource = errors.New("source image carries no palette")
)

// ImageFormat names an on-disk indexed image encoding.
type ImageFormat string

// Supported image formats.
const (
	FormatPNG ImageFormat = "png"
	FormatBMP ImageFormat = "bmp"
	FormatSPR ImageFormat = "spr"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".spr":
		return FormatSPR, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownImageType, path)
}

// DecodeIndexed decodes a paletted PNG or 8-bit BMP. Images that decode to a
// non-paletted model are rejected: re-quantizing would change the indices.
func DecodeIndexed(r io.Reader, format ImageFormat) (*image.Paletted, error) {
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownImageType, format)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}
	p, ok := img.(*image.Paletted)
	if !ok {
		return nil, fmt.Errorf("%w: decoded as %T", ErrNotPaletted, img)
	}
	return p, nil
}

// EncodeIndexed writes img in format, keeping indices and palette.
func EncodeIndexed(w io.Writer, img *image.Paletted, format ImageFormat) error {
	switch format {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %s", ErrUnknownImageType, format)
}

// LoadIndexed reads an indexed image from disk. For SPR files frame selects
// the indexed frame; it is ignored for other formats.
func LoadIndexed(path string, frame int) (*image.Paletted, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image file: %w", err)
	}
	if format == FormatSPR {
		spr, err := ParseSPR(data)
		if err != nil {
			return nil, err
		}
		return spr.Paletted(frame)
	}
	return DecodeIndexed(bytes.NewReader(data), format)
}

// SaveIndexed writes img to path in the format named by its extension.
func SaveIndexed(path string, img *image.Paletted) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeIndexed(&buf, img, format); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// PaletteOf extracts the palette embedded in img.
func PaletteOf(name string, img *image.Paletted) (*Palette, error) {
	if len(img.Palette) == 0 {
		return nil, ErrPaletteFromSource
	}
	return PaletteFromImage(name, img.Palette), nil
}

// Swatch renders p as a 16x16 grid of cells, one per entry, with each
// cell's pixels holding that entry's index.
func Swatch(p *Palette, cell int) *image.Paletted {
	if cell < 1 {
		cell = 1
	}
	side := BankSize * cell
	img := image.NewPaletted(image.Rect(0, 0, side, side), p.ImagePalette())
	for y := 0; y < side; y++ {
		for x := 0; x < side; x++ {
			img.SetColorIndex(x, y, uint8((y/cell)*BankSize+x/cell))
		}
	}
	return img
}

// Ramp returns a width x height indexed image whose columns step through all
// 256 indices left to right.
func Ramp(width, height int) *image.Paletted {
	gray := make(color.Palette, PaletteSize)
	for i := range gray {
		gray[i] = color.Gray{Y: uint8(i)}
	}
	img := image.NewPaletted(image.Rect(0, 0, width, height), gray)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetColorIndex(x, y, uint8(x*PaletteSize/width))
		}
	}
	return img
}
