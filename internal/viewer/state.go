package viewer

import (
	"fmt"
	"path/filepath"

	"github.com/Faultbox/palshade/internal/engine/input"
	"github.com/Faultbox/palshade/pkg/encoding"
	"github.com/Faultbox/palshade/pkg/formats"
	"github.com/Faultbox/palshade/pkg/raster"
)

// Change is a set of things an action invalidated.
type Change uint8

const (
	ChangePalette Change = 1 << iota
	ChangeFrame
	ChangeSampler
	ChangeView
	ChangeQuit
	ChangeScreenshot
)

const maxScale = 32

// NoBank means the palette is used as loaded.
const NoBank = -1

// State is what the viewer shows, independent of GL.
type State struct {
	// Palettes are the selectable palette names. An empty name selects the
	// image's own palette.
	Palettes   []string
	PaletteIdx int

	Frame  int
	Frames int

	// Bank, when not NoBank, moves that 16-color bank into entries 0-15 so
	// that a 16-color sprite can be recolored through any bank.
	Bank int

	Filter  raster.Filter
	Address raster.AddressMode
	Repeat  bool

	// Scale is the integer zoom; 0 fits the image to the window.
	Scale int
}

// Palette returns the selected palette name.
func (s *State) Palette() string {
	if len(s.Palettes) == 0 {
		return ""
	}
	return s.Palettes[s.PaletteIdx]
}

// SelectPalette selects name, adding it to the list if needed.
func (s *State) SelectPalette(name string) {
	for i, p := range s.Palettes {
		if p == name {
			s.PaletteIdx = i
			return
		}
	}
	s.Palettes = append(s.Palettes, name)
	s.PaletteIdx = len(s.Palettes) - 1
}

// ImageSampler returns the sampler state of the image slot. Repeating
// images always wrap.
func (s *State) ImageSampler() raster.Sampler {
	a := s.Address
	if s.Repeat {
		a = raster.AddressWrap
	}
	return raster.Sampler{Filter: s.Filter, AddressU: a, AddressV: a}
}

// Apply updates the state for a and reports what changed.
func (s *State) Apply(a input.Action) Change {
	switch a {
	case input.ActionQuit:
		return ChangeQuit
	case input.ActionScreenshot:
		return ChangeScreenshot

	case input.ActionNextPalette, input.ActionPrevPalette:
		if len(s.Palettes) < 2 {
			return 0
		}
		step := 1
		if a == input.ActionPrevPalette {
			step = -1
		}
		s.PaletteIdx = wrap(s.PaletteIdx+step, len(s.Palettes))
		return ChangePalette

	case input.ActionNextFrame, input.ActionPrevFrame:
		if s.Frames < 2 {
			return 0
		}
		step := 1
		if a == input.ActionPrevFrame {
			step = -1
		}
		s.Frame = wrap(s.Frame+step, s.Frames)
		return ChangeFrame

	case input.ActionNextBank:
		s.Bank++
		if s.Bank >= formats.PaletteSize/formats.BankSize {
			s.Bank = NoBank
		}
		return ChangePalette

	case input.ActionToggleFilter:
		if s.Filter == raster.FilterPoint {
			s.Filter = raster.FilterLinear
		} else {
			s.Filter = raster.FilterPoint
		}
		return ChangeSampler

	case input.ActionCycleAddress:
		s.Address = (s.Address + 1) % (raster.AddressBorder + 1)
		if s.Repeat {
			// Wrap is forced while repeating; the new mode shows once
			// repeat is off.
			return 0
		}
		return ChangeSampler

	case input.ActionToggleRepeat:
		s.Repeat = !s.Repeat
		return ChangeSampler | ChangeView

	case input.ActionZoomIn:
		s.Scale = min(s.Scale+1, maxScale)
		return ChangeView
	case input.ActionZoomOut:
		if s.Scale > 1 {
			s.Scale--
		} else {
			s.Scale = 1
		}
		return ChangeView
	case input.ActionZoomFit:
		s.Scale = 0
		return ChangeView
	}
	return 0
}

// Title formats the window title for image.
func (s *State) Title(image string) string {
	pal := encoding.DisplayName(filepath.Base(s.Palette()))
	if s.Palette() == "" {
		pal = "own"
	}
	title := fmt.Sprintf("palview - %s", encoding.DisplayName(filepath.Base(image)))
	if s.Frames > 1 {
		title += fmt.Sprintf(" [%d/%d]", s.Frame+1, s.Frames)
	}
	title += fmt.Sprintf(" | palette %s", pal)
	if s.Bank != NoBank {
		title += fmt.Sprintf(" bank %d", s.Bank)
	}
	sampler := s.ImageSampler()
	title += fmt.Sprintf(" | %s/%s", sampler.Filter, sampler.AddressU)
	if s.Scale == 0 {
		title += " | fit"
	} else {
		title += fmt.Sprintf(" | x%d", s.Scale)
	}
	return title
}

// BankPalette returns p with bank moved into entries 0-15. p is not
// modified.
func BankPalette(p *formats.Palette, bank int) (*formats.Palette, error) {
	if bank == NoBank {
		return p, nil
	}
	colors, err := p.Bank(bank)
	if err != nil {
		return nil, err
	}
	out := p.Clone()
	if err := out.SetBank(0, colors); err != nil {
		return nil, err
	}
	return out, nil
}

// StretchBank returns a palette whose texels 16k to 16k+15 all hold entry k
// of bank. Point sampled, it reads like a 16-texel bank texture, which is
// what the compiled remap addresses. p is not modified.
func StretchBank(p *formats.Palette, bank int) (*formats.Palette, error) {
	if bank == NoBank {
		return p, nil
	}
	colors, err := p.Bank(bank)
	if err != nil {
		return nil, err
	}
	out := p.Clone()
	for i := range out.Colors {
		out.Colors[i] = colors[i/formats.BankSize]
	}
	return out, nil
}

func wrap(i, n int) int {
	return ((i % n) + n) % n
}
