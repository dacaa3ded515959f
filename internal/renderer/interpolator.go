package renderer

import (
	"fmt"
	"math"
)

// Easing maps normalized progress t in [0,1] onto eased progress.
type Easing func(t float64) float64

var easings = map[string]Easing{
	"linear":         Linear,
	"easeInQuad":     EaseInQuad,
	"easeOutQuad":    EaseOutQuad,
	"easeInOutQuad":  EaseInOutQuad,
	"easeInCubic":    EaseInCubic,
	"easeOutCubic":   EaseOutCubic,
	"easeInOutCubic": EaseInOutCubic,
}

// EasingByName returns the easing registered under name. An empty name
// selects easeInQuad.
func EasingByName(name string) (Easing, error) {
	if name == "" {
		return EaseInQuad, nil
	}
	e, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing: %s", name)
	}
	return e, nil
}

// Lerp performs linear interpolation between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp01 limits t to [0,1]. NaN becomes 0.
func Clamp01(t float64) float64 {
	if math.IsNaN(t) || t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Progress returns how far elapsed is into a span of length dur, clamped to
// [0,1]. A non-positive span is complete as soon as it starts.
func Progress(elapsed, dur float64) float64 {
	if dur <= 0 {
		if elapsed >= 0 {
			return 1
		}
		return 0
	}
	return Clamp01(elapsed / dur)
}

func Linear(t float64) float64 { return t }

func EaseInQuad(t float64) float64 { return t * t }

func EaseOutQuad(t float64) float64 { return 1 - (1-t)*(1-t) }

func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return 1 - pow(-2*t+2, 2)/2
}

func EaseInCubic(t float64) float64 { return pow(t, 3) }

func EaseOutCubic(t float64) float64 { return 1 - pow(1-t, 3) }

// EaseInOutCubic applies smooth easing function
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - pow(-2*t+2, 3)/2
}

// pow calculates x^n
func pow(x float64, n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= x
	}
	return result
}
