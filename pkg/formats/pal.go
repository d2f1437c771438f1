package formats

import (
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/palshade/pkg/encoding"
)

// PAL format errors.
var ErrInvalidPALSize = errors.New("invalid PAL size: expected 1024 bytes")

// palSize is 256 entries of R, G, B and one reserved byte.
const palSize = PaletteSize * 4

// ParsePAL parses a raw palette file. The fourth byte of each entry is
// reserved and ignored; every entry is opaque.
func ParsePAL(name string, data []byte) (*Palette, error) {
	if len(data) != palSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPALSize, len(data))
	}
	p := NewPalette(name)
	for i := 0; i < PaletteSize; i++ {
		off := i * 4
		p.Colors[i] = Color{R: data[off], G: data[off+1], B: data[off+2], A: 255}
	}
	p.Count = PaletteSize
	return p, nil
}

// ParsePALFile parses a palette file from disk, naming it after the file.
// EUC-KR file names are decoded.
func ParsePALFile(path string) (*Palette, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading PAL file: %w", err)
	}
	return ParsePAL(encoding.BaseName(path), data)
}

// EncodePAL serializes p in the raw palette layout.
func EncodePAL(p *Palette) []byte {
	out := make([]byte, palSize)
	for i, c := range p.Colors {
		off := i * 4
		out[off] = c.R
		out[off+1] = c.G
		out[off+2] = c.B
	}
	return out
}

// WritePALFile writes p to path.
func WritePALFile(path string, p *Palette) error {
	return os.WriteFile(path, EncodePAL(p), 0644)
}
