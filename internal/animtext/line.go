package animtext

import (
	"errors"
	"fmt"
	"strings"
)

// Line is a sentence group: the runs sharing one sentence-end time, laid
// out centred on CenterX.
type Line struct {
	KeyMs     float64
	Index     int
	CenterX   float64
	Y         float64
	SpacingPx float64
	Runs      []*Run
}

func NewLine(keyMs float64, index int, centerX, y, spacingPx float64) *Line {
	return &Line{KeyMs: keyMs, Index: index, CenterX: centerX, Y: y, SpacingPx: spacingPx}
}

// Add appends r to the line.
func (l *Line) Add(r *Run) {
	r.Line = l
	l.Runs = append(l.Runs, r)
}

// Remove detaches r from the line. It reports whether r was part of it.
func (l *Line) Remove(r *Run) bool {
	for i, cand := range l.Runs {
		if cand == r {
			l.Runs = append(l.Runs[:i], l.Runs[i+1:]...)
			r.Line = nil
			return true
		}
	}
	return false
}

// Merge moves every run of other onto l.
func (l *Line) Merge(other *Line) {
	for _, r := range other.Runs {
		l.Add(r)
	}
	other.Runs = nil
}

// Text joins the words of the line.
func (l *Line) Text() string {
	words := make([]string, len(l.Runs))
	for i, r := range l.Runs {
		words[i] = r.Text
	}
	return strings.Join(words, " ")
}

// Layout places boxes of the given widths left to right, centred on
// centerX with spacing between neighbours. It returns each box centre and
// the total width.
func Layout(widths []float64, centerX, spacing float64) ([]float64, float64) {
	if len(widths) == 0 {
		return nil, 0
	}
	total := spacing * float64(len(widths)-1)
	for _, w := range widths {
		total += w
	}
	centers := make([]float64, len(widths))
	cursor := centerX - total/2
	for i, w := range widths {
		cursor += w / 2
		centers[i] = cursor
		cursor += w/2 + spacing
	}
	return centers, total
}

// Realign recentres the line using each run's width at its current scale.
// Drawables are not touched until the runs are seeked.
func (l *Line) Realign() {
	widths := make([]float64, len(l.Runs))
	for i, r := range l.Runs {
		widths[i] = r.Width()
	}
	centers, _ := Layout(widths, l.CenterX, l.SpacingPx)
	for i, r := range l.Runs {
		r.MoveTo(centers[i], l.Y)
	}
}

// SetImportances applies one importance per run, in word order. Missing
// trailing values leave their runs untouched; extra values are an error.
func (l *Line) SetImportances(values []float64) error {
	if len(values) > len(l.Runs) {
		return fmt.Errorf("line %d: %d importances for %d words", l.Index, len(values), len(l.Runs))
	}
	for i, v := range values {
		r := l.Runs[i]
		imp, ok := clampImportance(v)
		if !ok {
			r.log.WithField("text", r.Text).Warn("[!] NaN importance, using 0.5")
		}
		r.importance = imp
		r.recompute()
	}
	l.Realign()
	return l.redraw()
}

// redraw re-seeks every run at the session time so the drawables follow
// the realigned positions.
func (l *Line) redraw() error {
	var errs []error
	for _, r := range l.Runs {
		if err := r.Seek(r.env.Session.Now()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Importances returns the importance of each run.
func (l *Line) Importances() []float64 {
	out := make([]float64, len(l.Runs))
	for i, r := range l.Runs {
		out[i] = r.importance
	}
	return out
}
