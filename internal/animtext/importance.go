package animtext

import "math"

// DefaultImportance is the neutral importance every run starts with.
const DefaultImportance = 0.5

// Emphasis holds the session-wide parameters of the importance model.
type Emphasis struct {
	EnlargeFactor  float64
	SlowFactor     float64
	BaseDurationMs float64
	TargetColor    string
	BoldThreshold  float64
	ColorCutpoints []Cutpoint
}

// DefaultEmphasis returns the built-in model parameters.
func DefaultEmphasis() Emphasis {
	return Emphasis{
		EnlargeFactor:  1.5,
		SlowFactor:     2,
		BaseDurationMs: 500,
		TargetColor:    "#ff0000",
		BoldThreshold:  0.8,
	}
}

// LerpImportance maps importance onto a value around base. At 0.5 it
// returns base; towards 1 it approaches base*k and towards 0 base/k.
// A factor that is not positive leaves base unchanged.
func LerpImportance(base, k, importance float64) float64 {
	switch {
	case importance == 0.5, !(k > 0):
		return base
	case importance > 0.5:
		return base + (importance-0.5)/0.5*(base*k-base)
	default:
		return base + (0.5-importance)/0.5*(base/k-base)
	}
}

// clampImportance limits v to [0,1]. The second result is false for NaN,
// in which case the neutral importance is returned.
func clampImportance(v float64) (float64, bool) {
	if math.IsNaN(v) {
		return DefaultImportance, false
	}
	return math.Max(0, math.Min(1, v)), true
}
