package index

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ivlev/lyricsync/internal/animtext"
)

// ErrKeyOrder is returned when a key does not follow the last one.
var ErrKeyOrder = errors.New("sentence keys must be strictly increasing")

// Active maps sentence-end times to their lines. Keys are kept strictly
// increasing so lookups are a binary search.
type Active struct {
	keys  []float64
	lines []*animtext.Line
}

func NewActive() *Active {
	return &Active{}
}

// Insert appends a line under keyMs.
func (a *Active) Insert(keyMs float64, line *animtext.Line) error {
	if n := len(a.keys); n > 0 && keyMs <= a.keys[n-1] {
		return fmt.Errorf("insert %v after %v: %w", keyMs, a.keys[n-1], ErrKeyOrder)
	}
	a.keys = append(a.keys, keyMs)
	a.lines = append(a.lines, line)
	return nil
}

// Build replaces the contents with lines. Lines that share a key are merged
// into the first of them. Input already in key order is not re-sorted.
func (a *Active) Build(lines []*animtext.Line) error {
	sorted := lines
	if !sort.SliceIsSorted(lines, func(i, j int) bool { return lines[i].KeyMs < lines[j].KeyMs }) {
		sorted = append([]*animtext.Line(nil), lines...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].KeyMs < sorted[j].KeyMs })
	}

	a.keys, a.lines = nil, nil
	for _, ln := range sorted {
		if n := len(a.keys); n > 0 && a.keys[n-1] == ln.KeyMs {
			a.lines[n-1].Merge(ln)
			continue
		}
		if err := a.Insert(ln.KeyMs, ln); err != nil {
			return err
		}
	}
	return nil
}

// FindActiveAndNext returns the runs of the first sentence ending at or
// after t followed by the runs of the sentence after it. Past the last
// sentence the result is empty.
func (a *Active) FindActiveAndNext(t float64) []*animtext.Run {
	i := sort.SearchFloat64s(a.keys, t)
	if i == len(a.keys) {
		return []*animtext.Run{}
	}
	out := append([]*animtext.Run(nil), a.lines[i].Runs...)
	if i+1 < len(a.lines) {
		out = append(out, a.lines[i+1].Runs...)
	}
	return out
}

// Line returns the line stored under keyMs.
func (a *Active) Line(keyMs float64) (*animtext.Line, bool) {
	i := sort.SearchFloat64s(a.keys, keyMs)
	if i == len(a.keys) || a.keys[i] != keyMs {
		return nil, false
	}
	return a.lines[i], true
}

// At returns the i-th line in key order.
func (a *Active) At(i int) (*animtext.Line, bool) {
	if i < 0 || i >= len(a.lines) {
		return nil, false
	}
	return a.lines[i], true
}

// Keys returns a copy of the keys.
func (a *Active) Keys() []float64 {
	return append([]float64(nil), a.keys...)
}

// Lines returns the lines in key order.
func (a *Active) Lines() []*animtext.Line {
	return append([]*animtext.Line(nil), a.lines...)
}

// Runs returns every run in key order.
func (a *Active) Runs() []*animtext.Run {
	var out []*animtext.Run
	for _, ln := range a.lines {
		out = append(out, ln.Runs...)
	}
	return out
}

// Len returns the number of keys.
func (a *Active) Len() int {
	return len(a.keys)
}
