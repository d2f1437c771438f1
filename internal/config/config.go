// Package config handles palette viewer configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/palshade/pkg/palshader"
	"github.com/Faultbox/palshade/pkg/raster"
)

// Config holds all settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Sampler  SamplerConfig  `yaml:"sampler"`
	Data     DataConfig     `yaml:"data"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig holds asset locations.
type DataConfig struct {
	AssetDirs []string `yaml:"asset_dirs"` // Searched in order
	GRFPaths  []string `yaml:"grf_paths"`  // Archives searched after AssetDirs
	Image     string   `yaml:"image"`      // Index image shown at startup
	Frame     int      `yaml:"frame"`      // SPR frame when Image is a sprite
	Palette   string   `yaml:"palette"`    // Empty uses the image's own palette
	Watch     bool     `yaml:"watch"`      // Reload palettes when they change on disk
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	Scale      int  `yaml:"scale"` // Integer zoom of the index image
}

// SamplerConfig holds the sampler state of both shader slots.
type SamplerConfig struct {
	Filter         string `yaml:"filter"`          // point or linear, image slot
	AddressU       string `yaml:"address_u"`       // clamp, wrap, mirror or border
	AddressV       string `yaml:"address_v"`       //
	PaletteFilter  string `yaml:"palette_filter"`  // point or linear, palette slot
	PaletteAddress string `yaml:"palette_address"` // clamp, wrap, mirror or border
	Remap          string `yaml:"remap"`           // shader (compiled c0) or texel
	Repeat         bool   `yaml:"repeat"`          // Tile the image; forces wrap on the image slot
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
			Scale:      2,
		},
		Sampler: SamplerConfig{
			Filter:         "point",
			AddressU:       "clamp",
			AddressV:       "clamp",
			PaletteFilter:  "point",
			PaletteAddress: "clamp",
			Remap:          palshader.RemapShader,
		},
		Data: DataConfig{
			AssetDirs: []string{"data"},
			Watch:     true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ImageSampler returns the sampler state of the index image slot.
func (s SamplerConfig) ImageSampler() (raster.Sampler, error) {
	filter, err := raster.ParseFilter(s.Filter)
	if err != nil {
		return raster.Sampler{}, fmt.Errorf("sampler.filter: %w", err)
	}
	if s.Repeat {
		return raster.Sampler{Filter: filter, AddressU: raster.AddressWrap, AddressV: raster.AddressWrap}, nil
	}
	u, err := raster.ParseAddressMode(s.AddressU)
	if err != nil {
		return raster.Sampler{}, fmt.Errorf("sampler.address_u: %w", err)
	}
	v, err := raster.ParseAddressMode(s.AddressV)
	if err != nil {
		return raster.Sampler{}, fmt.Errorf("sampler.address_v: %w", err)
	}
	return raster.Sampler{Filter: filter, AddressU: u, AddressV: v}, nil
}

// PaletteSampler returns the sampler state of the palette slot.
func (s SamplerConfig) PaletteSampler() (raster.Sampler, error) {
	filter, err := raster.ParseFilter(s.PaletteFilter)
	if err != nil {
		return raster.Sampler{}, fmt.Errorf("sampler.palette_filter: %w", err)
	}
	a, err := raster.ParseAddressMode(s.PaletteAddress)
	if err != nil {
		return raster.Sampler{}, fmt.Errorf("sampler.palette_address: %w", err)
	}
	return raster.Sampler{Filter: filter, AddressU: a, AddressV: a}, nil
}

// PaletteRemap resolves the configured remap against the loaded shader.
func (s SamplerConfig) PaletteRemap(sh *palshader.Shader) (palshader.Remap, error) {
	r, err := sh.SelectRemap(s.Remap)
	if err != nil {
		return palshader.Remap{}, fmt.Errorf("sampler.remap: %w", err)
	}
	return r, nil
}

// Validate checks values that cannot be fixed up silently.
func (c *Config) Validate() error {
	if c.Graphics.Width <= 0 || c.Graphics.Height <= 0 {
		return fmt.Errorf("graphics: invalid window size %dx%d", c.Graphics.Width, c.Graphics.Height)
	}
	if c.Graphics.Scale < 1 {
		return fmt.Errorf("graphics: scale must be at least 1, got %d", c.Graphics.Scale)
	}
	if _, err := c.Sampler.ImageSampler(); err != nil {
		return err
	}
	if _, err := c.Sampler.PaletteSampler(); err != nil {
		return err
	}
	sh, err := palshader.Load()
	if err != nil {
		return err
	}
	if _, err := c.Sampler.PaletteRemap(sh); err != nil {
		return err
	}
	return nil
}
