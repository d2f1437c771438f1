// Package viewer implements the interactive palette viewer loop.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/palshade/internal/assets"
	"github.com/Faultbox/palshade/internal/config"
	"github.com/Faultbox/palshade/internal/engine/debug"
	"github.com/Faultbox/palshade/internal/engine/input"
	"github.com/Faultbox/palshade/internal/engine/renderer"
	"github.com/Faultbox/palshade/internal/engine/texture"
	"github.com/Faultbox/palshade/internal/engine/window"
	"github.com/Faultbox/palshade/internal/logger"
	"github.com/Faultbox/palshade/pkg/encoding"
	"github.com/Faultbox/palshade/pkg/formats"
	"github.com/Faultbox/palshade/pkg/palshader"
	"github.com/Faultbox/palshade/pkg/raster"
)

// ErrNoImage is returned when no image was configured.
var ErrNoImage = errors.New("no image configured (set data.image or pass -image)")

// Viewer is the palette viewer instance.
type Viewer struct {
	cfg      *config.Config
	running  bool
	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input

	assets  *assets.Manager
	watcher *assets.Watcher
	shots   *debug.ScreenshotCapture

	state     State
	imageName string

	image          *image.Paletted
	palette        *formats.Palette
	paletteSampler raster.Sampler
	paletteOpts    raster.PaletteOptions
	remap          palshader.Remap
	stretchBanks   bool // bank view spreads each entry over 16 texels

	imageTex   *texture.Texture
	paletteTex *texture.Texture
}

// New creates the window, the GL pipeline and loads the configured image.
func New(cfg *config.Config) (*Viewer, error) {
	if cfg.Data.Image == "" {
		return nil, ErrNoImage
	}

	imageSampler, err := cfg.Sampler.ImageSampler()
	if err != nil {
		return nil, err
	}
	paletteSampler, err := cfg.Sampler.PaletteSampler()
	if err != nil {
		return nil, err
	}
	sh, err := palshader.Load()
	if err != nil {
		return nil, err
	}
	remap, err := cfg.Sampler.PaletteRemap(sh)
	if err != nil {
		return nil, err
	}

	v := &Viewer{
		cfg:            cfg,
		assets:         assets.NewManager(),
		shots:          debug.NewScreenshotCapture("screenshots", "palview"),
		imageName:      cfg.Data.Image,
		paletteSampler: paletteSampler,
		paletteOpts:    raster.PaletteOptions{TransparentZero: true},
		remap:          remap,
		stretchBanks:   remap == sh.Remap,
		state: State{
			Bank:    NoBank,
			Filter:  imageSampler.Filter,
			Address: imageSampler.AddressU,
			Repeat:  cfg.Sampler.Repeat,
			Scale:   cfg.Graphics.Scale,
		},
	}
	for _, dir := range cfg.Data.AssetDirs {
		if err := v.assets.AddDir(dir); err != nil {
			logger.Warn("skipping asset dir", zap.String("dir", dir), zap.Error(err))
		}
	}
	for _, path := range cfg.Data.GRFPaths {
		if err := v.assets.AddArchive(path); err != nil {
			logger.Warn("skipping archive", zap.String("path", path), zap.Error(err))
		}
	}
	v.state.Palettes = append([]string{""}, v.assets.Palettes()...)
	if cfg.Data.Palette != "" {
		v.state.SelectPalette(cfg.Data.Palette)
	}
	v.state.Frame = cfg.Data.Frame

	v.window, err = window.New(window.Config{
		Title:      "palview",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer must come after the window, which owns the GL context.
	dw, dh := v.window.DrawableSize()
	v.renderer, err = renderer.New(renderer.Config{Width: dw, Height: dh})
	if err != nil {
		v.window.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer.Resize(dw, dh)
	v.renderer.SetRemap(v.remap)

	v.input = input.New()

	if err := v.loadImage(); err != nil {
		v.Close()
		return nil, err
	}
	if err := v.loadPalette(); err != nil {
		v.Close()
		return nil, err
	}

	if cfg.Data.Watch {
		v.watcher, err = assets.NewWatcher(v.assets, 100*time.Millisecond)
		if err != nil {
			logger.Warn("hot reload disabled", zap.Error(err))
		}
	}

	logger.Info("viewer initialized",
		zap.String("image", v.imageName),
		zap.Int("palettes", len(v.state.Palettes)-1),
	)
	return v, nil
}

// Run runs the viewer loop until the window is closed or ctx is done.
func (v *Viewer) Run(ctx context.Context) error {
	v.running = true
	if v.watcher != nil {
		v.watcher.Start(ctx)
	}

	frameCount := 0
	fpsTimer := time.Now()
	v.updateTitle()

	logger.Info("starting viewer loop")

	for v.running {
		if ctx.Err() != nil {
			break
		}

		if v.input.Update() {
			break
		}
		if err := v.handleEvents(); err != nil {
			return err
		}
		if err := v.drainChanges(); err != nil {
			return err
		}

		v.render()
		v.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close releases GL and file watching resources.
func (v *Viewer) Close() {
	logger.Info("closing viewer")

	if v.watcher != nil {
		v.watcher.Stop()
	}
	if v.imageTex != nil {
		v.imageTex.Delete()
	}
	if v.paletteTex != nil {
		v.paletteTex.Delete()
	}
	if v.renderer != nil {
		v.renderer.Close()
	}
	if v.window != nil {
		v.window.Close()
	}
	v.assets.Close()
}

func (v *Viewer) handleEvents() error {
	for _, e := range v.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			v.renderer.Resize(v.window.DrawableSize())
		case input.EventDrop:
			if err := v.open(e.Path); err != nil {
				logger.Warn("cannot open dropped file", zap.String("path", e.Path), zap.Error(err))
			}
		}
	}

	for _, a := range v.input.Actions() {
		change := v.state.Apply(a)
		logger.Debug("action", zap.Stringer("action", a))
		if err := v.applyChange(change); err != nil {
			return err
		}
	}
	return nil
}

func (v *Viewer) applyChange(change Change) error {
	if change&ChangeQuit != 0 {
		v.running = false
		return nil
	}
	if change&ChangeFrame != 0 {
		if err := v.loadImage(); err != nil {
			return err
		}
	}
	if change&ChangePalette != 0 {
		if err := v.loadPalette(); err != nil {
			// A broken palette file must not end the session.
			logger.Warn("palette not loaded", zap.String("palette", v.state.Palette()), zap.Error(err))
		}
	}
	if change&ChangeSampler != 0 {
		v.imageTex.SetSampler(v.state.ImageSampler())
	}
	if change&ChangeScreenshot != 0 {
		v.screenshot()
	}
	if change != 0 {
		v.updateTitle()
	}
	return nil
}

// open loads a dropped file: palettes are added to the palette list,
// anything else replaces the image.
func (v *Viewer) open(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".pal") {
		v.state.SelectPalette(path)
		return v.applyChange(ChangePalette)
	}
	prev := v.imageName
	v.imageName = path
	v.state.Frame = 0
	if err := v.loadImage(); err != nil {
		v.imageName = prev
		return err
	}
	if v.state.Palette() == "" {
		if err := v.loadPalette(); err != nil {
			return err
		}
	}
	v.updateTitle()
	return nil
}

// drainChanges reloads the image or palette when the watcher reports
// their files changed.
func (v *Viewer) drainChanges() error {
	if v.watcher == nil {
		return nil
	}
	for {
		select {
		case c, ok := <-v.watcher.Changes():
			if !ok {
				v.watcher = nil
				return nil
			}
			if err := v.reloadChanged(c); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (v *Viewer) reloadChanged(c assets.Change) error {
	if c.Removed {
		return nil
	}
	if v.isFile(v.imageName, c.Path) {
		logger.Info("image changed, reloading", zap.String("path", c.Path))
		if err := v.loadImage(); err != nil {
			logger.Warn("image not reloaded", zap.Error(err))
		}
	}
	pal := v.state.Palette()
	if (pal == "" && v.isFile(v.imageName, c.Path)) || (pal != "" && v.isFile(pal, c.Path)) {
		logger.Info("palette changed, reloading", zap.String("path", c.Path))
		if err := v.loadPalette(); err != nil {
			logger.Warn("palette not reloaded", zap.Error(err))
		}
	}
	return nil
}

func (v *Viewer) isFile(name, path string) bool {
	resolved, err := v.assets.Resolve(name)
	return err == nil && resolved == path
}

func (v *Viewer) loadImage() error {
	frames, err := v.assets.FrameCount(v.imageName)
	if err != nil {
		return err
	}
	if frames == 0 {
		return fmt.Errorf("%s has no indexed frames", v.imageName)
	}
	v.state.Frames = frames
	if v.state.Frame >= frames {
		v.state.Frame = 0
	}

	img, err := v.assets.LoadImage(v.imageName, v.state.Frame)
	if err != nil {
		return err
	}
	tex, err := texture.NewIndexTexture(img, v.state.ImageSampler())
	if err != nil {
		return err
	}
	if v.imageTex != nil {
		v.imageTex.Delete()
	}
	v.image = img
	v.imageTex = tex
	return nil
}

func (v *Viewer) loadPalette() error {
	var (
		pal *formats.Palette
		err error
	)
	if name := v.state.Palette(); name != "" {
		pal, err = v.assets.LoadPalette(name)
	} else {
		pal, err = formats.PaletteOf(encoding.BaseName(v.imageName), v.image)
	}
	if err != nil {
		return err
	}
	if v.stretchBanks {
		pal, err = StretchBank(pal, v.state.Bank)
	} else {
		pal, err = BankPalette(pal, v.state.Bank)
	}
	if err != nil {
		return err
	}

	v.palette = pal
	if v.paletteTex == nil {
		v.paletteTex, err = texture.NewPaletteTexture(pal, v.paletteOpts, v.paletteSampler)
		return err
	}
	v.paletteTex.UpdatePalette(pal, v.paletteOpts)
	return nil
}

func (v *Viewer) render() {
	v.renderer.Begin()

	iw, ih := v.imageTex.Size()
	vw, vh := v.renderer.Size()
	rect := renderer.Fit(int(iw), int(ih), vw, vh, float32(v.state.Scale))
	if rect.W <= 0 || rect.H <= 0 {
		return
	}

	if !v.state.Repeat {
		v.renderer.DrawPalette(v.imageTex, v.paletteTex, rect)
		return
	}
	// Tile outward from the centered copy until the viewport is covered.
	nx := int(1/rect.W) + 1
	ny := int(1/rect.H) + 1
	for ty := -ny; ty <= ny; ty++ {
		for tx := -nx; tx <= nx; tx++ {
			tile := rect
			tile.X += float32(tx) * rect.W
			tile.Y += float32(ty) * rect.H
			v.renderer.DrawPalette(v.imageTex, v.paletteTex, tile)
		}
	}
}

func (v *Viewer) screenshot() {
	img, err := v.renderer.RenderImage(v.imageTex, v.paletteTex)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	path, err := v.shots.Capture(img)
	if err != nil {
		logger.Warn("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("path", path))
}

func (v *Viewer) updateTitle() {
	v.window.SetTitle(v.state.Title(v.imageName))
}
