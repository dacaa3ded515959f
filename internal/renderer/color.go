package renderer

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor accepts "#RRGGBB", "#RGB" or an SVG colour name ("crimson").
func ParseColor(s string) (color.RGBA, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return color.RGBA{}, fmt.Errorf("empty colour")
	}
	if !strings.HasPrefix(v, "#") {
		c, ok := colornames.Map[strings.ToLower(v)]
		if !ok {
			return color.RGBA{}, fmt.Errorf("unknown colour name: %s", s)
		}
		return c, nil
	}

	hex := v[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("malformed hex colour: %s", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed hex colour %s: %w", s, err)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}

// HexColor formats c as lowercase "#rrggbb". Alpha is dropped.
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NormalizeColor parses s and re-formats it as hex.
func NormalizeColor(s string) (string, error) {
	c, err := ParseColor(s)
	if err != nil {
		return "", err
	}
	return HexColor(c), nil
}
