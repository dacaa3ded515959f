package renderer

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontMeasurer measures text with a fixed bitmap face and scales the result
// to the requested font size. Widths are deterministic, which keeps layout
// reproducible between the in-memory canvas and tests.
type FontMeasurer struct {
	face   font.Face
	basePx float64
}

// NewFontMeasurer uses basicfont.Face7x13 (7px advance, 13px line).
func NewFontMeasurer() *FontMeasurer {
	return &FontMeasurer{face: basicfont.Face7x13, basePx: 13}
}

// Width returns the advance width of text in pixels at f.Size.
func (m *FontMeasurer) Width(text string, f Font) float64 {
	if text == "" {
		return 0
	}
	adv := font.MeasureString(m.face, text)
	w := float64(adv) / 64
	size := f.Size
	if size <= 0 {
		size = m.basePx
	}
	return w * size / m.basePx
}
