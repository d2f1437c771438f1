package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/palshade/pkg/palshader"
	"github.com/Faultbox/palshade/pkg/raster"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graphics.Width != 1024 {
		t.Errorf("expected width 1024, got %d", cfg.Graphics.Width)
	}
	if cfg.Graphics.Height != 768 {
		t.Errorf("expected height 768, got %d", cfg.Graphics.Height)
	}
	if cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Graphics.VSync {
		t.Error("expected vsync to be true by default")
	}
	if cfg.Graphics.Scale != 2 {
		t.Errorf("expected scale 2, got %d", cfg.Graphics.Scale)
	}

	// Sprites are drawn once with point sampling unless configured otherwise
	img, err := cfg.Sampler.ImageSampler()
	if err != nil {
		t.Fatalf("ImageSampler: %v", err)
	}
	if img != raster.PointClamp {
		t.Errorf("expected point/clamp image sampler, got %+v", img)
	}
	pal, err := cfg.Sampler.PaletteSampler()
	if err != nil {
		t.Fatalf("PaletteSampler: %v", err)
	}
	if pal != raster.PointClamp {
		t.Errorf("expected point/clamp palette sampler, got %+v", pal)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
graphics:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  scale: 4

sampler:
  filter: linear
  address_u: mirror
  address_v: border
  palette_address: wrap
  remap: texel

data:
  asset_dirs: ["assets", "/opt/sprites"]
  grf_paths: ["data.grf"]
  image: "poring.spr"
  frame: 3
  palette: "poring_red.pal"
  watch: false

logging:
  level: "debug"
  log_file: "palview.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Graphics.Width != 1920 || cfg.Graphics.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
	}
	if !cfg.Graphics.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Graphics.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Graphics.Scale != 4 {
		t.Errorf("expected scale 4, got %d", cfg.Graphics.Scale)
	}

	img, err := cfg.Sampler.ImageSampler()
	if err != nil {
		t.Fatalf("ImageSampler: %v", err)
	}
	want := raster.Sampler{Filter: raster.FilterLinear, AddressU: raster.AddressMirror, AddressV: raster.AddressBorder}
	if img != want {
		t.Errorf("expected %+v, got %+v", want, img)
	}
	pal, err := cfg.Sampler.PaletteSampler()
	if err != nil {
		t.Fatalf("PaletteSampler: %v", err)
	}
	if pal.AddressU != raster.AddressWrap || pal.Filter != raster.FilterPoint {
		t.Errorf("unexpected palette sampler %+v", pal)
	}
	if cfg.Sampler.Remap != "texel" {
		t.Errorf("expected remap 'texel', got %q", cfg.Sampler.Remap)
	}

	if len(cfg.Data.AssetDirs) != 2 || cfg.Data.AssetDirs[1] != "/opt/sprites" {
		t.Errorf("unexpected asset dirs %v", cfg.Data.AssetDirs)
	}
	if len(cfg.Data.GRFPaths) != 1 || cfg.Data.GRFPaths[0] != "data.grf" {
		t.Errorf("unexpected grf paths %v", cfg.Data.GRFPaths)
	}
	if cfg.Data.Image != "poring.spr" || cfg.Data.Frame != 3 {
		t.Errorf("unexpected image %q frame %d", cfg.Data.Image, cfg.Data.Frame)
	}
	if cfg.Data.Palette != "poring_red.pal" {
		t.Errorf("unexpected palette %q", cfg.Data.Palette)
	}
	if cfg.Data.Watch {
		t.Error("expected watch to be false")
	}

	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "palview.log" {
		t.Errorf("expected log file 'palview.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
graphics:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestLoadFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("graphics:\n  scale: 5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Graphics.Scale != 5 {
		t.Errorf("expected scale 5, got %d", cfg.Graphics.Scale)
	}
	// Unset keys keep their defaults
	if cfg.Graphics.Width != 1024 {
		t.Errorf("expected default width, got %d", cfg.Graphics.Width)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Graphics.Width = 0 }},
		{"zero scale", func(c *Config) { c.Graphics.Scale = 0 }},
		{"bad filter", func(c *Config) { c.Sampler.Filter = "cubic" }},
		{"bad address", func(c *Config) { c.Sampler.AddressV = "tile" }},
		{"bad palette address", func(c *Config) { c.Sampler.PaletteAddress = "none" }},
		{"bad remap", func(c *Config) { c.Sampler.Remap = "normalized" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPaletteRemap(t *testing.T) {
	sh, err := palshader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := Default()
	r, err := cfg.Sampler.PaletteRemap(sh)
	if err != nil {
		t.Fatalf("PaletteRemap: %v", err)
	}
	if r != sh.Remap {
		t.Errorf("expected compiled remap %+v by default, got %+v", sh.Remap, r)
	}

	cfg.Sampler.Remap = "texel"
	if r, _ = cfg.Sampler.PaletteRemap(sh); r != palshader.TexelCenterRemap {
		t.Errorf("expected texel-center remap, got %+v", r)
	}

	cfg.Sampler.Remap = "bank"
	if _, err := cfg.Sampler.PaletteRemap(sh); !errors.Is(err, palshader.ErrUnknownRemap) {
		t.Errorf("expected ErrUnknownRemap, got %v", err)
	}
}

func TestRepeatForcesWrap(t *testing.T) {
	cfg := Default()
	cfg.Sampler.Repeat = true
	cfg.Sampler.AddressU = "bogus" // ignored when repeating

	s, err := cfg.Sampler.ImageSampler()
	if err != nil {
		t.Fatalf("ImageSampler: %v", err)
	}
	if s != raster.PointWrap {
		t.Errorf("expected point/wrap, got %+v", s)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "palshade.yaml")
	if err := os.WriteFile(configPath, []byte("graphics:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find palshade.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(cfg *Config) {
				if cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(cfg *Config) {
				if !cfg.Graphics.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "size and scale flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
				*flagScale = 3
			},
			verify: func(cfg *Config) {
				if cfg.Graphics.Width != 2560 || cfg.Graphics.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Graphics.Width, cfg.Graphics.Height)
				}
				if cfg.Graphics.Scale != 3 {
					t.Errorf("expected scale 3, got %d", cfg.Graphics.Scale)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
				*flagScale = 0
			},
		},
		{
			name: "asset flags",
			setup: func() {
				*flagImage = "hero.spr"
				*flagPalette = "hero_blue.pal"
			},
			verify: func(cfg *Config) {
				if cfg.Data.Image != "hero.spr" || cfg.Data.Palette != "hero_blue.pal" {
					t.Errorf("unexpected data config %+v", cfg.Data)
				}
			},
			teardown: func() {
				*flagImage = ""
				*flagPalette = ""
			},
		},
		{
			name: "sampler flags",
			setup: func() {
				*flagFilter = "linear"
				*flagRepeat = true
			},
			verify: func(cfg *Config) {
				if cfg.Sampler.Filter != "linear" || !cfg.Sampler.Repeat {
					t.Errorf("unexpected sampler config %+v", cfg.Sampler)
				}
			},
			teardown: func() {
				*flagFilter = ""
				*flagRepeat = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Graphics.Scale = 6
	cfg.Sampler.Filter = "linear"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("loading saved config: %v", err)
	}
	if loaded.Graphics.Scale != 6 || loaded.Sampler.Filter != "linear" {
		t.Errorf("saved values not restored: %+v", loaded)
	}
}
