// Package assets loads index images and palettes from asset directories
// and GRF archives, and caches them.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/palshade/internal/logger"
	"github.com/Faultbox/palshade/pkg/encoding"
	"github.com/Faultbox/palshade/pkg/formats"
	"github.com/Faultbox/palshade/pkg/grf"
)

// ErrNotFound is returned when no asset directory holds the file.
var ErrNotFound = errors.New("asset not found")

// Manager resolves asset names against a list of directories, then a list
// of archives. Both are searched in reverse order (last added = highest
// priority).
type Manager struct {
	dirs     []string
	archives []archive
	cache    *Cache
	mu       sync.RWMutex
}

type archive struct {
	path string
	*grf.Archive
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddDir adds an asset directory.
func (m *Manager) AddDir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving asset dir %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("opening asset dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("asset dir %s is not a directory", dir)
	}

	m.mu.Lock()
	m.dirs = append(m.dirs, abs)
	m.mu.Unlock()

	logger.Debug("asset dir added", zap.String("dir", abs))
	return nil
}

// AddArchive opens a GRF archive and adds it to the search list.
func (m *Manager) AddArchive(path string) error {
	a, err := grf.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", path, err)
	}

	m.mu.Lock()
	m.archives = append(m.archives, archive{path: path, Archive: a})
	m.mu.Unlock()

	logger.Debug("archive added", zap.String("path", path), zap.Int("files", len(a.List())))
	return nil
}

// Dirs returns the asset directories in search order.
func (m *Manager) Dirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.dirs))
	for i := len(m.dirs) - 1; i >= 0; i-- {
		out = append(out, m.dirs[i])
	}
	return out
}

// Resolve returns the on-disk path of name. Absolute paths and paths that
// exist relative to the working directory are used as is.
func (m *Manager) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return name, nil
	}

	for _, dir := range m.Dirs() {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	if _, err := os.Stat(name); err == nil {
		return filepath.Abs(name)
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Load reads a file, caching it by resolved path. Names no directory
// holds are looked up in the archives.
func (m *Manager) Load(name string) ([]byte, error) {
	path, err := m.Resolve(name)
	if errors.Is(err, ErrNotFound) {
		return m.loadArchived(name)
	}
	if err != nil {
		return nil, err
	}
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading asset %s: %w", name, err)
	}
	m.cache.Set(path, data)
	return data, nil
}

func (m *Manager) loadArchived(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.archives) - 1; i >= 0; i-- {
		a := m.archives[i]
		key := a.path + "!" + name
		if data, ok := m.cache.Get(key); ok {
			return data, nil
		}
		data, err := a.Read(name)
		if errors.Is(err, grf.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s from %s: %w", name, a.path, err)
		}
		m.cache.Set(key, data)
		return data, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Invalidate drops a cached file so the next Load rereads it.
func (m *Manager) Invalidate(path string) {
	m.cache.Delete(path)
}

// LoadImage loads an indexed image. frame selects the sprite frame for SPR
// files.
func (m *Manager) LoadImage(name string, frame int) (*image.Paletted, error) {
	data, format, err := m.loadTyped(name)
	if err != nil {
		return nil, err
	}
	if format == formats.FormatSPR {
		spr, err := formats.ParseSPR(data)
		if err != nil {
			return nil, fmt.Errorf("parsing sprite %s: %w", name, err)
		}
		return spr.Paletted(frame)
	}
	img, err := formats.DecodeIndexed(bytes.NewReader(data), format)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return img, nil
}

// LoadPalette loads a palette from a PAL file, from a paletted PNG or BMP,
// or from the palette block of an SPR file.
func (m *Manager) LoadPalette(name string) (*formats.Palette, error) {
	base := encoding.BaseName(name)

	if strings.EqualFold(filepath.Ext(name), ".pal") {
		data, err := m.Load(name)
		if err != nil {
			return nil, err
		}
		return formats.ParsePAL(base, data)
	}

	data, format, err := m.loadTyped(name)
	if err != nil {
		return nil, err
	}
	if format == formats.FormatSPR {
		spr, err := formats.ParseSPR(data)
		if err != nil {
			return nil, fmt.Errorf("parsing sprite %s: %w", name, err)
		}
		p := spr.Palette.Clone()
		p.Name = base
		return p, nil
	}
	img, err := formats.DecodeIndexed(bytes.NewReader(data), format)
	if err != nil {
		return nil, err
	}
	return formats.PaletteOf(base, img)
}

// FrameCount returns the number of indexed frames in name: the SPR indexed
// frame count, or 1 for other images.
func (m *Manager) FrameCount(name string) (int, error) {
	data, format, err := m.loadTyped(name)
	if err != nil {
		return 0, err
	}
	if format != formats.FormatSPR {
		return 1, nil
	}
	spr, err := formats.ParseSPR(data)
	if err != nil {
		return 0, fmt.Errorf("parsing sprite %s: %w", name, err)
	}
	return spr.IndexedCount(), nil
}

// Palettes lists the PAL files in all asset directories by name and in all
// archives by archive path, in sorted order. A name present in several
// places is listed once.
func (m *Manager) Palettes() []string {
	seen := make(map[string]bool)
	var out []string
	m.mu.RLock()
	for _, a := range m.archives {
		for _, name := range a.Glob("*.pal") {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	m.mu.RUnlock()
	for _, dir := range m.Dirs() {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.pal"))
		upper, _ := filepath.Glob(filepath.Join(dir, "*.PAL"))
		for _, path := range append(matches, upper...) {
			name := filepath.Base(path)
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

func (m *Manager) loadTyped(name string) ([]byte, formats.ImageFormat, error) {
	format, err := formats.FormatFromPath(name)
	if err != nil {
		return nil, "", err
	}
	data, err := m.Load(name)
	if err != nil {
		return nil, "", err
	}
	return data, format, nil
}

// Close closes all archives and drops all directories and cached data.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.archives {
		if err := a.Close(); err != nil {
			logger.Warn("closing archive", zap.String("path", a.path), zap.Error(err))
		}
	}
	m.archives = nil
	m.dirs = nil
	m.cache.Clear()
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Delete removes an item from cache.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
