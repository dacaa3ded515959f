package renderer

import (
	"errors"
	"image/color"
	"testing"
)

func TestEasingEndpoints(t *testing.T) {
	for name, ease := range easings {
		t.Run(name, func(t *testing.T) {
			if got := ease(0); abs(got) > 1e-9 {
				t.Errorf("%s(0) = %.4f, want 0", name, got)
			}
			if got := ease(1); abs(got-1) > 1e-9 {
				t.Errorf("%s(1) = %.4f, want 1", name, got)
			}
		})
	}
}

func TestEasingMidpoints(t *testing.T) {
	tests := []struct {
		name     string
		ease     Easing
		t        float64
		expected float64
	}{
		{"linear", Linear, 0.5, 0.5},
		{"easeInQuad", EaseInQuad, 0.5, 0.25},
		{"easeOutQuad", EaseOutQuad, 0.5, 0.75},
		{"easeInOutCubic", EaseInOutCubic, 0.5, 0.5},
		{"easeInOutCubic quarter", EaseInOutCubic, 0.25, 0.0625},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.ease(tt.t)
			tolerance := 1e-9
			if abs(got-tt.expected) > tolerance {
				t.Errorf("at %.2f: expected %.4f, got %.4f", tt.t, tt.expected, got)
			}
		})
	}
}

func TestEasingByName(t *testing.T) {
	e, err := EasingByName("")
	if err != nil {
		t.Fatalf("default easing: %v", err)
	}
	if e(0.5) != 0.25 {
		t.Errorf("default easing should be easeInQuad, got %.4f at 0.5", e(0.5))
	}
	if _, err := EasingByName("bounce"); err == nil {
		t.Error("expected error for unknown easing")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		elapsed, dur, expected float64
	}{
		{-10, 100, 0},
		{0, 100, 0},
		{50, 100, 0.5},
		{150, 100, 1},
		{0, 0, 1},
		{-1, 0, 0},
	}
	for _, tt := range tests {
		if got := Progress(tt.elapsed, tt.dur); got != tt.expected {
			t.Errorf("Progress(%v, %v) = %v, want %v", tt.elapsed, tt.dur, got, tt.expected)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"#0f0", color.RGBA{0, 255, 0, 255}, false},
		{"white", color.RGBA{255, 255, 255, 255}, false},
		{"Crimson", color.RGBA{220, 20, 60, 255}, false},
		{"#12345", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
		{"notacolour", color.RGBA{}, true},
		{"", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if got := HexColor(color.RGBA{R: 0xAB, G: 0x01, B: 0xFF}); got != "#ab01ff" {
		t.Errorf("HexColor = %s", got)
	}
}

func TestFontMeasurer(t *testing.T) {
	m := NewFontMeasurer()
	if got := m.Width("Hello", Font{Size: 13}); abs(got-35) > 1e-9 {
		t.Errorf("Width(Hello, 13px) = %.2f, want 35", got)
	}
	if got := m.Width("Hello", Font{Size: 26}); abs(got-70) > 1e-9 {
		t.Errorf("Width(Hello, 26px) = %.2f, want 70", got)
	}
	if got := m.Width("", Font{Size: 40}); got != 0 {
		t.Errorf("empty width = %.2f", got)
	}
}

func TestMemoryCanvas(t *testing.T) {
	c := NewMemoryCanvas(1280, 720)
	h, err := c.Create(KindText, Props{PropText: "hi", PropLeft: 10.0})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if v, _ := Float(c, h, PropLeft); v != 10 {
		t.Errorf("left = %v, want 10", v)
	}
	if v, _ := Float(c, h, PropScaleX); v != 1 {
		t.Errorf("scaleX default = %v, want 1", v)
	}
	if err := c.Set(h, PropOpacity, 0.5); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if v, _ := Float(c, h, PropOpacity); v != 0.5 {
		t.Errorf("opacity = %v, want 0.5", v)
	}

	c.RequestRender()
	c.RequestRender()
	if c.Renders() != 2 {
		t.Errorf("Renders() = %d, want 2", c.Renders())
	}

	if err := c.Remove(h); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := c.Set(h, PropLeft, 1.0); !errors.Is(err, ErrUnknownHandle) {
		t.Errorf("Set after Remove: got %v, want ErrUnknownHandle", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after remove", c.Len())
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
