package animtext

import (
	"image/color"
	"math"

	"github.com/ivlev/lyricsync/internal/renderer"
)

// BlendTowards moves fill towards target as importance rises above 0.5.
// Importance at or below 0.5 leaves the colour unchanged.
func BlendTowards(fill, target string, importance float64) (string, error) {
	from, err := renderer.ParseColor(fill)
	if err != nil {
		return fill, err
	}
	if importance <= 0.5 {
		return renderer.HexColor(from), nil
	}
	to, err := renderer.ParseColor(target)
	if err != nil {
		return fill, err
	}

	t := (importance - 0.5) / 0.5
	blended := color.RGBA{
		R: channel(from.R, to.R, t),
		G: channel(from.G, to.G, t),
		B: channel(from.B, to.B, t),
		A: 0xff,
	}
	return renderer.HexColor(blended), nil
}

func channel(a, b uint8, t float64) uint8 {
	v := renderer.Lerp(float64(a), float64(b), t)
	return uint8(math.Round(math.Max(0, math.Min(255, v))))
}
