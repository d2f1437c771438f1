package main

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/palshade/pkg/formats"
	"github.com/Faultbox/palshade/pkg/grf"
)

// writeGRF writes an archive holding files uncompressed and returns its path.
func writeGRF(t *testing.T, files map[string][]byte) string {
	t.Helper()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var body, table bytes.Buffer
	for _, name := range names {
		data := files[name]
		offset := uint32(body.Len())
		body.Write(data)
		table.WriteString(name)
		table.WriteByte(0)
		for i := 0; i < 3; i++ {
			binary.Write(&table, binary.LittleEndian, uint32(len(data)))
		}
		table.WriteByte(1)
		binary.Write(&table, binary.LittleEndian, offset)
	}

	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	_, err := zw.Write(table.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	header := grf.Header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(files)) + 7,
		Version:     0x200,
	}
	copy(header.Magic[:], "Master of Magic")

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, header)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(packed.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(packed.Bytes())

	path := filepath.Join(t.TempDir(), "data.grf")
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0644))
	return path
}

func sampleGRF(t *testing.T) string {
	t.Helper()
	blue := formats.Gradient("blue", formats.Color{A: 255}, formats.Color{B: 255, A: 255})
	return writeGRF(t, map[string][]byte{
		`data\palette\blue.pal`:      formats.EncodePAL(blue),
		`data\palette\body\Hair.pal`: make([]byte, 1024),
		`data\sprite\poring.spr`:     []byte("SP"),
	})
}

func TestGRFList(t *testing.T) {
	path := sampleGRF(t)

	cmd, buf := testCmd()
	require.NoError(t, runGRFList(cmd, []string{path}))
	assert.Equal(t, "data/palette/blue.pal\ndata/palette/body/hair.pal\ndata/sprite/poring.spr\n", buf.String())

	cmd, buf = testCmd()
	require.NoError(t, runGRFList(cmd, []string{path, "*.PAL"}))
	assert.Equal(t, "data/palette/blue.pal\ndata/palette/body/hair.pal\n", buf.String())

	listLimit = 1
	defer func() { listLimit = 0 }()
	cmd, buf = testCmd()
	require.NoError(t, runGRFList(cmd, []string{path}))
	assert.Equal(t, "data/palette/blue.pal\n", buf.String())
}

func TestGRFExtract(t *testing.T) {
	path := sampleGRF(t)
	extractOut = filepath.Join(t.TempDir(), "out")
	defer func() { extractOut = "." }()

	cmd, buf := testCmd()
	require.NoError(t, runGRFExtract(cmd, []string{path, "*.pal"}))
	assert.Contains(t, buf.String(), "data/palette/body/hair.pal -> ")

	pal, err := formats.ParsePALFile(filepath.Join(extractOut, "blue.pal"))
	require.NoError(t, err)
	assert.Equal(t, uint8(255), pal.Colors[255].B)
	assert.FileExists(t, filepath.Join(extractOut, "hair.pal"))
	assert.NoFileExists(t, filepath.Join(extractOut, "poring.spr"))

	cmd, _ = testCmd()
	err = runGRFExtract(cmd, []string{path, "*.act"})
	assert.ErrorIs(t, err, grf.ErrNotFound)
}

func TestRender_PaletteFromArchive(t *testing.T) {
	setup(t)
	grfPaths = []string{sampleGRF(t)}
	renderOpts.palette = "data/palette/blue.pal"
	renderOpts.out = "-"
	renderOpts.remap = "texel"

	cmd, buf := testCmd()
	require.NoError(t, runRender(cmd, []string{"ramp.png"}))

	img := decodePNG(t, buf.Bytes())
	r, _, b, _ := img.At(128, 0).RGBA()
	assert.Zero(t, r)
	assert.Equal(t, uint32(128), b>>8)
}
