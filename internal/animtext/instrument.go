package animtext

import (
	"fmt"
	"sort"
)

// FunctionType is one emphasis channel an instrument can drive.
type FunctionType string

const (
	SizeScaling           FunctionType = "sizeScaling"
	BoldThreshold         FunctionType = "boldThreshold"
	AnimationSpeedScaling FunctionType = "animationSpeedScaling"
	ColorChange           FunctionType = "colorChange"
)

// Cutpoint switches the fill to Color once importance reaches Threshold.
type Cutpoint struct {
	Threshold float64 `yaml:"threshold" toml:"threshold"`
	Color     string  `yaml:"color" toml:"color"`
}

// Function is one channel of an instrument. Value is the factor for the
// scaling channels and the threshold for bold.
type Function struct {
	Type      FunctionType `yaml:"type"`
	Value     float64      `yaml:"value,omitempty"`
	Cutpoints []Cutpoint   `yaml:"cutpoints,omitempty"`
}

// Instrument decides which channels importance drives on a run.
type Instrument struct {
	Name      string     `yaml:"name"`
	Functions []Function `yaml:"functions"`
}

// emphasis is the derived look of a run.
type emphasis struct {
	scale      float64
	durationMs float64
	fill       string
	bold       bool
}

// NewInstrument builds one of the single-channel instruments from the
// session parameters.
func NewInstrument(name string, e Emphasis) (*Instrument, error) {
	var fn Function
	switch FunctionType(name) {
	case SizeScaling:
		fn = Function{Type: SizeScaling, Value: e.EnlargeFactor}
	case BoldThreshold:
		fn = Function{Type: BoldThreshold, Value: e.BoldThreshold}
	case AnimationSpeedScaling:
		fn = Function{Type: AnimationSpeedScaling, Value: e.SlowFactor}
	case ColorChange:
		fn = Function{Type: ColorChange, Cutpoints: e.ColorCutpoints}
	default:
		return nil, fmt.Errorf("unknown instrument: %s", name)
	}
	return &Instrument{Name: name, Functions: []Function{fn}}, nil
}

// Validate checks function types and factors.
func (in *Instrument) Validate() error {
	if in.Name == "" {
		return fmt.Errorf("instrument without name")
	}
	for i, f := range in.Functions {
		switch f.Type {
		case SizeScaling, AnimationSpeedScaling:
			if f.Value <= 0 {
				return fmt.Errorf("instrument %s function %d: factor must be positive", in.Name, i)
			}
		case BoldThreshold, ColorChange:
		default:
			return fmt.Errorf("instrument %s function %d: unknown type %q", in.Name, i, f.Type)
		}
	}
	return nil
}

// apply derives the look for importance starting from the base look.
func (in *Instrument) apply(base emphasis, baseDurationMs, importance float64) emphasis {
	out := base
	for _, f := range in.Functions {
		switch f.Type {
		case SizeScaling:
			out.scale = LerpImportance(base.scale, f.Value, importance)
		case BoldThreshold:
			out.bold = importance >= f.Value
		case AnimationSpeedScaling:
			out.durationMs = LerpImportance(baseDurationMs, f.Value, importance)
		case ColorChange:
			if c, ok := cutpointColor(f.Cutpoints, importance); ok {
				out.fill = c
			}
		}
	}
	return out
}

// cutpointColor returns the colour of the highest threshold not above
// importance.
func cutpointColor(cutpoints []Cutpoint, importance float64) (string, bool) {
	sorted := append([]Cutpoint(nil), cutpoints...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })
	for i := len(sorted) - 1; i >= 0; i-- {
		if importance >= sorted[i].Threshold {
			return sorted[i].Color, true
		}
	}
	return "", false
}
