package effects

import (
	"fmt"
	"strings"
)

// SlideOffsetPx is how far slide presets start from the rest position.
const SlideOffsetPx = 20.0

// DefaultPreset is used when a run names none.
const DefaultPreset = "shrink"

// Names lists every registered preset.
var Names = []string{
	"fade", "slide-top", "slide-bottom", "slide-left", "slide-right",
	"scale", "shrink", "typewriter",
}

// NewEffect creates the reveal preset with the given name. "fade in" and
// "slide top" spellings are accepted as aliases.
func NewEffect(name string) (Effect, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
	switch n {
	case "fade", "fade-in":
		return basicEffect{name: "fade", from: State{Opacity: 0, Scale: 1}}, nil
	case "slide-top":
		return basicEffect{name: n, from: State{Opacity: 0, DY: SlideOffsetPx, Scale: 1}}, nil
	case "slide-bottom":
		return basicEffect{name: n, from: State{Opacity: 0, DY: -SlideOffsetPx, Scale: 1}}, nil
	case "slide-left":
		return basicEffect{name: n, from: State{Opacity: 0, DX: SlideOffsetPx, Scale: 1}}, nil
	case "slide-right":
		return basicEffect{name: n, from: State{Opacity: 0, DX: -SlideOffsetPx, Scale: 1}}, nil
	case "scale":
		return basicEffect{name: n, from: State{Opacity: 0, Scale: 0}}, nil
	case "shrink", "":
		return basicEffect{name: "shrink", from: State{Opacity: 0, Scale: 3}}, nil
	case "typewriter":
		return Typewriter{}, nil
	default:
		return nil, fmt.Errorf("unknown reveal preset: %s", name)
	}
}
