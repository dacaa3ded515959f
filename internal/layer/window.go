package layer

// Window is the visibility interval of one layer, in milliseconds.
type Window struct {
	LayerID   string
	Start     float64
	End       float64
	TrimStart float64
	TrimEnd   float64
}

// EffectiveStart is the first visible instant.
func (w Window) EffectiveStart() float64 {
	return w.Start + w.TrimStart
}

// VisibleAt reports whether the layer shows at t on a timeline of the given
// duration. Both ends are inclusive. TrimEnd is not consulted.
func (w Window) VisibleAt(t, durationMs float64) bool {
	return t >= w.EffectiveStart() && t <= w.End && t <= durationMs
}

// Span is the visible length.
func (w Window) Span() float64 {
	if d := w.End - w.EffectiveStart(); d > 0 {
		return d
	}
	return 0
}
