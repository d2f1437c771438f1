package input

import "github.com/veandco/go-sdl2/sdl"

// Action is a viewer command bound to a key or the mouse wheel.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionNextPalette
	ActionPrevPalette
	ActionNextFrame
	ActionPrevFrame
	ActionNextBank
	ActionToggleFilter
	ActionCycleAddress
	ActionToggleRepeat
	ActionZoomIn
	ActionZoomOut
	ActionZoomFit
	ActionScreenshot
)

var actionNames = map[Action]string{
	ActionNone:         "none",
	ActionQuit:         "quit",
	ActionNextPalette:  "next-palette",
	ActionPrevPalette:  "prev-palette",
	ActionNextFrame:    "next-frame",
	ActionPrevFrame:    "prev-frame",
	ActionNextBank:     "next-bank",
	ActionToggleFilter: "toggle-filter",
	ActionCycleAddress: "cycle-address",
	ActionToggleRepeat: "toggle-repeat",
	ActionZoomIn:       "zoom-in",
	ActionZoomOut:      "zoom-out",
	ActionZoomFit:      "zoom-fit",
	ActionScreenshot:   "screenshot",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

var keyActions = map[sdl.Scancode]Action{
	sdl.SCANCODE_ESCAPE:      ActionQuit,
	sdl.SCANCODE_Q:           ActionQuit,
	sdl.SCANCODE_RIGHT:       ActionNextPalette,
	sdl.SCANCODE_LEFT:        ActionPrevPalette,
	sdl.SCANCODE_DOWN:        ActionNextFrame,
	sdl.SCANCODE_UP:          ActionPrevFrame,
	sdl.SCANCODE_B:           ActionNextBank,
	sdl.SCANCODE_F:           ActionToggleFilter,
	sdl.SCANCODE_A:           ActionCycleAddress,
	sdl.SCANCODE_R:           ActionToggleRepeat,
	sdl.SCANCODE_EQUALS:      ActionZoomIn,
	sdl.SCANCODE_KP_PLUS:     ActionZoomIn,
	sdl.SCANCODE_MINUS:       ActionZoomOut,
	sdl.SCANCODE_KP_MINUS:    ActionZoomOut,
	sdl.SCANCODE_0:           ActionZoomFit,
	sdl.SCANCODE_F12:         ActionScreenshot,
	sdl.SCANCODE_PRINTSCREEN: ActionScreenshot,
}

// ActionFor maps a single event to its action.
func ActionFor(e Event) Action {
	switch e.Type {
	case EventQuit:
		return ActionQuit
	case EventKeyDown:
		return keyActions[e.Key]
	case EventWheel:
		if e.Wheel > 0 {
			return ActionZoomIn
		}
		return ActionZoomOut
	}
	return ActionNone
}
