package effects

import (
	"math"

	"github.com/ivlev/lyricsync/internal/renderer"
)

// MinUnitMs is the shortest tween any unit may have.
const MinUnitMs = 20.0

// WordGapMs is the extra delay added at each word boundary in word mode.
const WordGapMs = 500.0

// TypeAnim selects how a run is split into animated units.
type TypeAnim string

const (
	Letter TypeAnim = "letter"
	Word   TypeAnim = "word"
)

// Order is the direction of the stagger.
type Order string

const (
	Forward  Order = "forward"
	Backward Order = "backward"
)

// State is a unit's pose relative to its resting pose: offsets in pixels, a
// scale multiplier and an absolute opacity.
type State struct {
	Opacity float64
	DX      float64
	DY      float64
	Scale   float64
}

// Rest is the end state of every reveal.
var Rest = State{Opacity: 1, Scale: 1}

// Timing places one unit's tween on the run's local clock.
type Timing struct {
	DelayMs    float64
	DurationMs float64
}

// End is the local time at which the unit reaches Rest.
func (t Timing) End() float64 {
	return t.DelayMs + t.DurationMs
}

// Effect is a reveal preset: the pose a unit starts from.
type Effect interface {
	Name() string
	From() State
}

// Pacer is implemented by effects that replace the default unit timing.
type Pacer interface {
	Pace(index int, unitMs float64) Timing
}

type basicEffect struct {
	name string
	from State
}

func (e basicEffect) Name() string { return e.name }
func (e basicEffect) From() State  { return e.from }

// Typewriter shows each letter at its stagger slot with a minimal tween.
type Typewriter struct{}

func (Typewriter) Name() string { return "typewriter" }
func (Typewriter) From() State  { return State{Opacity: 0, Scale: 1} }

func (Typewriter) Pace(index int, unitMs float64) Timing {
	return Timing{DelayMs: float64(index) * unitMs, DurationMs: MinUnitMs}
}

// Schedule computes the timing of each unit of a run whose reveal lasts
// totalMs. Letter units are staggered by index; word units by a cumulative
// gap at each word boundary.
func Schedule(e Effect, mode TypeAnim, order Order, n int, totalMs float64) []Timing {
	if n <= 0 {
		return nil
	}
	unitMs := totalMs
	if mode != Word {
		unitMs = totalMs / float64(n)
	}

	timings := make([]Timing, n)
	for i := 0; i < n; i++ {
		slot := i
		if order == Backward {
			slot = n - 1 - i
		}

		var tm Timing
		if p, ok := e.(Pacer); ok {
			tm = p.Pace(slot, unitMs)
		} else if mode == Word {
			tm = Timing{DelayMs: float64(slot) * WordGapMs, DurationMs: unitMs}
		} else {
			tm = Timing{DelayMs: float64(slot) * unitMs, DurationMs: unitMs}
		}
		tm.DelayMs = math.Max(0, tm.DelayMs)
		tm.DurationMs = math.Max(MinUnitMs, tm.DurationMs)
		timings[i] = tm
	}
	return timings
}

// Span is the local time at which every unit is at rest.
func Span(timings []Timing) float64 {
	var end float64
	for _, t := range timings {
		end = math.Max(end, t.End())
	}
	return end
}

// StateAt evaluates a unit's pose at local time localMs.
func StateAt(from State, tm Timing, localMs float64, ease renderer.Easing) State {
	p := renderer.Progress(localMs-tm.DelayMs, tm.DurationMs)
	if p <= 0 {
		return from
	}
	if p >= 1 {
		return Rest
	}
	k := ease(p)
	return State{
		Opacity: renderer.Lerp(from.Opacity, Rest.Opacity, k),
		DX:      renderer.Lerp(from.DX, Rest.DX, k),
		DY:      renderer.Lerp(from.DY, Rest.DY, k),
		Scale:   renderer.Lerp(from.Scale, Rest.Scale, k),
	}
}
