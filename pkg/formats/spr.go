package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
)

// SPR format errors.
var (
	ErrInvalidSPRMagic       = errors.New("invalid SPR magic: expected 'SP'")
	ErrUnsupportedSPRVersion = errors.New("unsupported SPR version")
	ErrTruncatedSPRData      = errors.New("truncated SPR data")
	ErrInvalidImageSize      = errors.New("invalid image dimensions")
	ErrNotIndexed            = errors.New("sprite frame is not indexed")
)

// SPRVersion represents the SPR file version.
type SPRVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v SPRVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// SPRImage is one sprite frame. Indexed frames keep their raw palette
// indices so they can be recolored on the GPU; Pixels is always the RGBA
// expansion through the file's own palette.
type SPRImage struct {
	Width   uint16
	Height  uint16
	Indices []byte // nil for true-color frames
	Pixels  []byte // RGBA, 4 bytes per pixel
}

// Indexed reports whether the frame carries palette indices.
func (img SPRImage) Indexed() bool {
	return img.Indices != nil
}

// SPR represents a parsed sprite file.
type SPR struct {
	Version SPRVersion
	Images  []SPRImage
	Palette *Palette
}

// IndexedCount returns the number of leading indexed frames.
func (s *SPR) IndexedCount() int {
	n := 0
	for _, img := range s.Images {
		if img.Indexed() {
			n++
		}
	}
	return n
}

// Paletted returns frame i as an indexed image carrying the sprite palette.
func (s *SPR) Paletted(i int) (*image.Paletted, error) {
	if i < 0 || i >= len(s.Images) {
		return nil, fmt.Errorf("frame %d out of range [0,%d)", i, len(s.Images))
	}
	img := s.Images[i]
	if !img.Indexed() {
		return nil, fmt.Errorf("%w: frame %d", ErrNotIndexed, i)
	}
	out := image.NewPaletted(image.Rect(0, 0, int(img.Width), int(img.Height)), s.Palette.ImagePalette())
	copy(out.Pix, img.Indices)
	return out, nil
}

// ParseSPR parses an SPR file from raw bytes.
func ParseSPR(data []byte) (*SPR, error) {
	if len(data) < 4 {
		return nil, ErrTruncatedSPRData
	}

	if data[0] != 'S' || data[1] != 'P' {
		return nil, ErrInvalidSPRMagic
	}

	// Version is stored as Minor, Major
	version := SPRVersion{
		Major: data[3],
		Minor: data[2],
	}

	if version.Major < 1 || version.Major > 2 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSPRVersion, version)
	}
	if version.Major == 1 && version.Minor < 1 {
		return nil, fmt.Errorf("%w: %s (system palette not supported)", ErrUnsupportedSPRVersion, version)
	}

	r := bytes.NewReader(data[4:])

	var indexedCount uint16
	if err := binary.Read(r, binary.LittleEndian, &indexedCount); err != nil {
		return nil, fmt.Errorf("%w: reading indexed count", ErrTruncatedSPRData)
	}

	var trueColorCount uint16
	if version.Major >= 2 {
		if err := binary.Read(r, binary.LittleEndian, &trueColorCount); err != nil {
			return nil, fmt.Errorf("%w: reading true-color count", ErrTruncatedSPRData)
		}
	}

	spr := &SPR{
		Version: version,
		Images:  make([]SPRImage, 0, int(indexedCount)+int(trueColorCount)),
	}

	// Palette is the trailing 1024 bytes
	if len(data) < palSize {
		return nil, ErrTruncatedSPRData
	}
	spr.Palette = parseSPRPalette(data[len(data)-palSize:])

	imageDataEnd := int64(len(data) - palSize - 4)

	useRLE := version.Major == 2 && version.Minor >= 1
	for i := uint16(0); i < indexedCount; i++ {
		img, err := parseIndexedImage(r, spr.Palette, useRLE)
		if err != nil {
			return nil, fmt.Errorf("parsing indexed image %d: %w", i, err)
		}
		spr.Images = append(spr.Images, img)
	}

	for i := uint16(0); i < trueColorCount; i++ {
		pos, _ := r.Seek(0, io.SeekCurrent)
		if pos >= imageDataEnd {
			break
		}

		img, err := parseTrueColorImage(r)
		if err != nil {
			return nil, fmt.Errorf("parsing true-color image %d: %w", i, err)
		}
		spr.Images = append(spr.Images, img)
	}

	return spr, nil
}

// ParseSPRFile parses an SPR file from disk.
func ParseSPRFile(path string) (*SPR, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SPR file: %w", err)
	}
	return ParseSPR(data)
}

// parseSPRPalette parses 256 colors from 1024 bytes. The stored alpha byte
// is unused by the format; entry 0 is the transparent key, all others are
// opaque.
func parseSPRPalette(data []byte) *Palette {
	p := NewPalette("")
	for i := 0; i < PaletteSize; i++ {
		offset := i * 4
		p.Colors[i] = Color{
			R: data[offset],
			G: data[offset+1],
			B: data[offset+2],
			A: 255,
		}
	}
	p.Colors[0].A = 0
	p.Count = PaletteSize
	return p
}

// parseIndexedImage parses an indexed-color image, keeping its indices and
// expanding them to RGBA.
func parseIndexedImage(r *bytes.Reader, palette *Palette, useRLE bool) (SPRImage, error) {
	var width, height uint16
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return SPRImage{}, fmt.Errorf("%w: reading width", ErrTruncatedSPRData)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return SPRImage{}, fmt.Errorf("%w: reading height", ErrTruncatedSPRData)
	}

	if width == 0 || height == 0 || width == 0xFFFF || height == 0xFFFF {
		return SPRImage{
			Width:   1,
			Height:  1,
			Indices: []byte{0},
			Pixels:  []byte{0, 0, 0, 0},
		}, nil
	}

	pixelCount := int(width) * int(height)
	var indices []byte

	if useRLE {
		var compressedSize uint16
		if err := binary.Read(r, binary.LittleEndian, &compressedSize); err != nil {
			return SPRImage{}, fmt.Errorf("%w: reading compressed size", ErrTruncatedSPRData)
		}

		compressed := make([]byte, compressedSize)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return SPRImage{}, fmt.Errorf("%w: reading compressed data", ErrTruncatedSPRData)
		}

		indices = decompressRLE(compressed, pixelCount)
	} else {
		indices = make([]byte, pixelCount)
		if _, err := io.ReadFull(r, indices); err != nil {
			return SPRImage{}, fmt.Errorf("%w: reading pixel indices", ErrTruncatedSPRData)
		}
	}

	return SPRImage{
		Width:   width,
		Height:  height,
		Indices: indices,
		Pixels:  ExpandIndices(indices, palette),
	}, nil
}

// ExpandIndices converts palette indices to RGBA. Index 0 is transparent.
func ExpandIndices(indices []byte, palette *Palette) []byte {
	pixels := make([]byte, len(indices)*4)
	for i, idx := range indices {
		if idx == 0 {
			continue
		}
		c := palette.Colors[idx]
		offset := i * 4
		pixels[offset] = c.R
		pixels[offset+1] = c.G
		pixels[offset+2] = c.B
		pixels[offset+3] = 255
	}
	return pixels
}

// decompressRLE decompresses RLE-encoded pixel data.
// Format: 0x00 0xNN = NN zeros, 0x00 0x00 = single zero, other = literal
func decompressRLE(compressed []byte, targetSize int) []byte {
	result := make([]byte, 0, targetSize)

	for i := 0; i < len(compressed) && len(result) < targetSize; {
		b := compressed[i]
		i++

		if b == 0 {
			if i >= len(compressed) {
				break
			}
			count := compressed[i]
			i++

			if count == 0 {
				result = append(result, 0)
			} else {
				for j := uint8(0); j < count && len(result) < targetSize; j++ {
					result = append(result, 0)
				}
			}
		} else {
			result = append(result, b)
		}
	}

	for len(result) < targetSize {
		result = append(result, 0)
	}

	return result
}

// parseTrueColorImage parses an ABGR true-color image and converts to RGBA.
func parseTrueColorImage(r *bytes.Reader) (SPRImage, error) {
	var width, height uint16
	if err := binary.Read(r, binary.LittleEndian, &width); err != nil {
		return SPRImage{}, fmt.Errorf("%w: reading width", ErrTruncatedSPRData)
	}
	if err := binary.Read(r, binary.LittleEndian, &height); err != nil {
		return SPRImage{}, fmt.Errorf("%w: reading height", ErrTruncatedSPRData)
	}

	if width == 0 || height == 0 || width == 0xFFFF || height == 0xFFFF {
		return SPRImage{
			Width:  1,
			Height: 1,
			Pixels: []byte{0, 0, 0, 0},
		}, nil
	}

	pixelCount := int(width) * int(height)
	abgr := make([]byte, pixelCount*4)
	if _, err := io.ReadFull(r, abgr); err != nil {
		return SPRImage{}, fmt.Errorf("%w: reading ABGR data", ErrTruncatedSPRData)
	}

	pixels := make([]byte, pixelCount*4)
	for i := 0; i < pixelCount; i++ {
		off := i * 4
		pixels[off] = abgr[off+3]
		pixels[off+1] = abgr[off+2]
		pixels[off+2] = abgr[off+1]
		pixels[off+3] = abgr[off]
	}

	return SPRImage{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}, nil
}
