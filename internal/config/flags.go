package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagScale      = flag.Int("scale", 0, "Image zoom factor")
	flagImage      = flag.String("image", "", "Index image to show (png, bmp or spr)")
	flagPalette    = flag.String("palette", "", "Palette file (pal, png or bmp)")
	flagFilter     = flag.String("filter", "", "Image filter: point or linear")
	flagRepeat     = flag.Bool("repeat", false, "Tile the image with wrap addressing")
	flagGRF        = flag.String("grf", "", "GRF archive searched after the asset dirs")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
	if *flagScale > 0 {
		cfg.Graphics.Scale = *flagScale
	}
	if *flagImage != "" {
		cfg.Data.Image = *flagImage
	}
	if *flagPalette != "" {
		cfg.Data.Palette = *flagPalette
	}
	if *flagFilter != "" {
		cfg.Sampler.Filter = *flagFilter
	}
	if *flagRepeat {
		cfg.Sampler.Repeat = true
	}
	if *flagGRF != "" {
		cfg.Data.GRFPaths = append(cfg.Data.GRFPaths, *flagGRF)
	}
}
