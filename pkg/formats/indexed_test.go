package formats

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want ImageFormat
		err  bool
	}{
		{"a.png", FormatPNG, false},
		{"dir/B.BMP", FormatBMP, false},
		{"c.spr", FormatSPR, false},
		{"d.tga", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.err {
			if !errors.Is(err, ErrUnknownImageType) {
				t.Errorf("%s: expected ErrUnknownImageType, got %v", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("%s: got %q, %v", tt.path, got, err)
		}
	}
}

func TestIndexed_RoundTrip(t *testing.T) {
	src := Ramp(256, 4)

	for _, format := range []ImageFormat{FormatPNG, FormatBMP} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := EncodeIndexed(&buf, src, format); err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := DecodeIndexed(&buf, format)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Bounds() != src.Bounds() {
				t.Fatalf("bounds: expected %v, got %v", src.Bounds(), got.Bounds())
			}
			for x := 0; x < 256; x++ {
				if got.ColorIndexAt(x, 2) != uint8(x) {
					t.Fatalf("index at x=%d: got %d", x, got.ColorIndexAt(x, 2))
				}
			}
		})
	}
}

func TestDecodeIndexed_RejectsTrueColor(t *testing.T) {
	var buf bytes.Buffer
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeIndexed(&buf, FormatPNG); !errors.Is(err, ErrNotPaletted) {
		t.Errorf("expected ErrNotPaletted, got %v", err)
	}
}

func TestLoadIndexed_SPR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sprite.spr")
	if err := os.WriteFile(path, buildSyntheticSPR(2, 0, 1, 0, false), 0644); err != nil {
		t.Fatal(err)
	}
	img, err := LoadIndexed(path, 0)
	if err != nil {
		t.Fatalf("LoadIndexed: %v", err)
	}
	if img.ColorIndexAt(0, 1) != 2 {
		t.Errorf("expected index 2 at (0,1), got %d", img.ColorIndexAt(0, 1))
	}
}

func TestSaveIndexed_PNG(t *testing.T) {
	pal := Gradient("g", Color{A: 255}, Color{R: 255, A: 255})
	src := Swatch(pal, 2)
	path := filepath.Join(t.TempDir(), "swatch.png")

	if err := SaveIndexed(path, src); err != nil {
		t.Fatalf("SaveIndexed: %v", err)
	}
	got, err := LoadIndexed(path, 0)
	if err != nil {
		t.Fatalf("LoadIndexed: %v", err)
	}

	extracted, err := PaletteOf("swatch", got)
	if err != nil {
		t.Fatalf("PaletteOf: %v", err)
	}
	if extracted.Colors != pal.Colors {
		t.Error("palette changed through PNG round trip")
	}
}

func TestSwatch_Layout(t *testing.T) {
	img := Swatch(NewPalette("empty"), 3)
	if img.Bounds().Dx() != 48 || img.Bounds().Dy() != 48 {
		t.Fatalf("expected 48x48, got %v", img.Bounds())
	}
	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 0},
		{2, 2, 0},
		{3, 0, 1},
		{0, 3, 16},
		{47, 47, 255},
		{24, 24, 136},
	}
	for _, tt := range tests {
		if got := img.ColorIndexAt(tt.x, tt.y); got != tt.want {
			t.Errorf("(%d,%d): expected %d, got %d", tt.x, tt.y, tt.want, got)
		}
	}
}

func TestRamp(t *testing.T) {
	img := Ramp(512, 1)
	if img.ColorIndexAt(0, 0) != 0 || img.ColorIndexAt(511, 0) != 255 || img.ColorIndexAt(256, 0) != 128 {
		t.Errorf("unexpected ramp indices: %d %d %d",
			img.ColorIndexAt(0, 0), img.ColorIndexAt(256, 0), img.ColorIndexAt(511, 0))
	}
}
