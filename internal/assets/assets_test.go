package assets

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/palshade/pkg/formats"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

// tinySPR returns a v2.0 sprite with one 2x1 indexed frame [1, 2].
func tinySPR() []byte {
	var buf bytes.Buffer
	buf.WriteString("SP")
	buf.WriteByte(0)
	buf.WriteByte(2)
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	buf.Write([]byte{1, 2})
	pal := make([]byte, 1024)
	pal[4], pal[8] = 255, 128
	buf.Write(pal)
	return buf.Bytes()
}

func TestManager_ResolvePriority(t *testing.T) {
	base := t.TempDir()
	low := filepath.Join(base, "low")
	high := filepath.Join(base, "high")
	writeFile(t, filepath.Join(low, "a.pal"), []byte("low"))
	writeFile(t, filepath.Join(low, "only_low.pal"), []byte("low"))
	writeFile(t, filepath.Join(high, "a.pal"), []byte("high"))

	m := NewManager()
	require.NoError(t, m.AddDir(low))
	require.NoError(t, m.AddDir(high))
	assert.Equal(t, []string{high, low}, m.Dirs())

	data, err := m.Load("a.pal")
	require.NoError(t, err)
	assert.Equal(t, "high", string(data))

	data, err = m.Load("only_low.pal")
	require.NoError(t, err)
	assert.Equal(t, "low", string(data))

	_, err = m.Load("missing.pal")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestManager_AddDirErrors(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.AddDir(filepath.Join(t.TempDir(), "nope")))

	file := filepath.Join(t.TempDir(), "file.pal")
	writeFile(t, file, nil)
	assert.Error(t, m.AddDir(file))
}

func TestManager_CacheAndInvalidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.pal")
	writeFile(t, path, []byte("one"))

	m := NewManager()
	require.NoError(t, m.AddDir(dir))

	_, err := m.Load("x.pal")
	require.NoError(t, err)
	writeFile(t, path, []byte("two"))

	data, err := m.Load("x.pal")
	require.NoError(t, err)
	assert.Equal(t, "one", string(data), "second load should hit the cache")

	hits, misses := m.cache.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	m.Invalidate(path)
	data, err = m.Load("x.pal")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestManager_LoadPalette(t *testing.T) {
	dir := t.TempDir()
	src := formats.Gradient("g", formats.Color{A: 255}, formats.Color{R: 255, G: 255, B: 255, A: 255})
	writeFile(t, filepath.Join(dir, "gray.pal"), formats.EncodePAL(src))
	require.NoError(t, formats.SaveIndexed(filepath.Join(dir, "swatch.png"), formats.Swatch(src, 1)))
	writeFile(t, filepath.Join(dir, "hero.spr"), tinySPR())

	m := NewManager()
	require.NoError(t, m.AddDir(dir))

	pal, err := m.LoadPalette("gray.pal")
	require.NoError(t, err)
	assert.Equal(t, "gray", pal.Name)
	assert.Equal(t, src.Colors, pal.Colors)

	pal, err = m.LoadPalette("swatch.png")
	require.NoError(t, err)
	assert.Equal(t, src.Colors, pal.Colors)

	pal, err = m.LoadPalette("hero.spr")
	require.NoError(t, err)
	assert.Equal(t, "hero", pal.Name)
	assert.Equal(t, formats.Color{R: 255, A: 255}, pal.Colors[1])
	assert.Equal(t, uint8(0), pal.Colors[0].A)
}

func TestManager_LoadImage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hero.spr"), tinySPR())
	require.NoError(t, formats.SaveIndexed(filepath.Join(dir, "ramp.bmp"), formats.Ramp(16, 2)))

	m := NewManager()
	require.NoError(t, m.AddDir(dir))

	img, err := m.LoadImage("hero.spr", 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), img.ColorIndexAt(1, 0))

	img, err = m.LoadImage("ramp.bmp", 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(15*16), img.ColorIndexAt(15, 1))

	_, err = m.LoadImage("hero.spr", 4)
	assert.Error(t, err)
	_, err = m.LoadImage("notes.txt", 0)
	assert.True(t, errors.Is(err, formats.ErrUnknownImageType))
}

func TestManager_FrameCount(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hero.spr"), tinySPR())
	require.NoError(t, formats.SaveIndexed(filepath.Join(dir, "ramp.png"), formats.Ramp(4, 1)))

	m := NewManager()
	require.NoError(t, m.AddDir(dir))

	n, err := m.FrameCount("hero.spr")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = m.FrameCount("ramp.png")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = m.FrameCount("gone.spr")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestManager_Palettes(t *testing.T) {
	base := t.TempDir()
	a := filepath.Join(base, "a")
	b := filepath.Join(base, "b")
	writeFile(t, filepath.Join(a, "red.pal"), make([]byte, 1024))
	writeFile(t, filepath.Join(a, "blue.pal"), make([]byte, 1024))
	writeFile(t, filepath.Join(a, "notes.txt"), []byte("x"))
	writeFile(t, filepath.Join(b, "red.pal"), make([]byte, 1024))
	writeFile(t, filepath.Join(b, "green.pal"), make([]byte, 1024))

	m := NewManager()
	require.NoError(t, m.AddDir(a))
	require.NoError(t, m.AddDir(b))

	assert.Equal(t, []string{"blue.pal", "green.pal", "red.pal"}, m.Palettes())
}

// writeGRF writes a version 0x200 archive holding files uncompressed.
func writeGRF(t *testing.T, path string, files map[string][]byte) {
	t.Helper()

	var body, table bytes.Buffer
	for name, data := range files {
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

	var out bytes.Buffer
	magic := make([]byte, 30)
	copy(magic, "Master of Magic")
	out.Write(magic)
	binary.Write(&out, binary.LittleEndian, uint32(body.Len())) // table offset
	binary.Write(&out, binary.LittleEndian, uint32(0))          // seed
	binary.Write(&out, binary.LittleEndian, uint32(len(files)+7))
	binary.Write(&out, binary.LittleEndian, uint32(0x200))
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, uint32(packed.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(table.Len()))
	out.Write(packed.Bytes())
	writeFile(t, path, out.Bytes())
}

func TestManager_Archive(t *testing.T) {
	base := t.TempDir()
	dir := filepath.Join(base, "dir")
	grfPath := filepath.Join(base, "data.grf")

	blue := formats.Gradient("b", formats.Color{A: 255}, formats.Color{B: 255, A: 255})
	writeFile(t, filepath.Join(dir, "data", "palette", "red.pal"), []byte("disk"))
	writeGRF(t, grfPath, map[string][]byte{
		`data\palette\red.pal`:  []byte("archived"),
		`data\palette\blue.pal`: formats.EncodePAL(blue),
		`data\sprite\hero.spr`:  tinySPR(),
	})

	m := NewManager()
	require.NoError(t, m.AddDir(dir))
	require.NoError(t, m.AddArchive(grfPath))

	data, err := m.Load("data/palette/red.pal")
	require.NoError(t, err)
	assert.Equal(t, "disk", string(data), "directories win over archives")

	pal, err := m.LoadPalette("data/palette/blue.pal")
	require.NoError(t, err)
	assert.Equal(t, "blue", pal.Name)
	assert.Equal(t, blue.Colors[200], pal.Colors[200])

	img, err := m.LoadImage(`data\sprite\HERO.spr`, 0)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), img.ColorIndexAt(1, 0))

	assert.Equal(t, []string{"data/palette/blue.pal", "data/palette/red.pal"}, m.Palettes())

	_, err = m.Load("data/palette/gone.pal")
	assert.True(t, errors.Is(err, ErrNotFound))

	m.Close()
	_, err = m.Load("data/palette/blue.pal")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestManager_AddArchiveErrors(t *testing.T) {
	m := NewManager()
	assert.Error(t, m.AddArchive(filepath.Join(t.TempDir(), "missing.grf")))

	bad := filepath.Join(t.TempDir(), "bad.grf")
	writeFile(t, bad, make([]byte, 64))
	assert.Error(t, m.AddArchive(bad))
}

func TestWatcher_ReportsSettledChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "live.pal")
	writeFile(t, path, make([]byte, 1024))

	m := NewManager()
	require.NoError(t, m.AddDir(dir))
	_, err := m.Load("live.pal")
	require.NoError(t, err)

	w, err := NewWatcher(m, 20*time.Millisecond)
	require.NoError(t, err)
	w.Start(context.Background())
	defer w.Stop()

	// Several quick writes settle into one change.
	for i := 0; i < 3; i++ {
		writeFile(t, path, bytes.Repeat([]byte{byte(i + 1)}, 1024))
	}
	writeFile(t, filepath.Join(dir, "ignored.txt"), []byte("x"))

	resolved, err := filepath.EvalSymlinks(path)
	require.NoError(t, err)

	select {
	case c := <-w.Changes():
		got, err := filepath.EvalSymlinks(c.Path)
		require.NoError(t, err)
		assert.Equal(t, resolved, got)
		assert.False(t, c.Removed)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	data, err := m.Load("live.pal")
	require.NoError(t, err)
	assert.Equal(t, byte(3), data[0], "cache should have been invalidated")
}

func TestWatcher_FlushInvalidatesWholeBatch(t *testing.T) {
	dir := t.TempDir()
	m := NewManager()
	require.NoError(t, m.AddDir(dir))

	var batch []Change
	for _, name := range []string{"a.pal", "b.pal", "c.pal"} {
		writeFile(t, filepath.Join(dir, name), []byte("old"))
		_, err := m.Load(name)
		require.NoError(t, err)
		path, err := m.Resolve(name)
		require.NoError(t, err)
		batch = append(batch, Change{Path: path})
	}

	w, err := NewWatcher(m, time.Millisecond)
	require.NoError(t, err)
	defer w.watcher.Close()

	// No reader and a canceled context: delivery stops at the first change.
	w.changes = make(chan Change)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, w.flush(ctx, batch))

	for _, name := range []string{"a.pal", "b.pal", "c.pal"} {
		writeFile(t, filepath.Join(dir, name), []byte("new"))
		data, err := m.Load(name)
		require.NoError(t, err)
		assert.Equal(t, "new", string(data), "%s still cached", name)
	}

	w.changes = make(chan Change, len(batch))
	assert.True(t, w.flush(context.Background(), batch))
	assert.Len(t, w.changes, len(batch))
}

func TestWatcher_StopClosesChanges(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddDir(t.TempDir()))

	w, err := NewWatcher(m, time.Millisecond)
	require.NoError(t, err)
	w.Start(context.Background())
	w.Stop()
	w.Stop()

	_, ok := <-w.Changes()
	assert.False(t, ok)
}

func TestWatcher_ContextCancel(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.AddDir(t.TempDir()))

	w, err := NewWatcher(m, time.Millisecond)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()

	select {
	case _, ok := <-w.Changes():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
	w.Stop()
}
