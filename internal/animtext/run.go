package animtext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/lyricsync/internal/effects"
	"github.com/ivlev/lyricsync/internal/layer"
	"github.com/ivlev/lyricsync/internal/renderer"
	"github.com/ivlev/lyricsync/internal/timeline"
)

// ErrUnknownRun is returned when a run id is not part of the project.
var ErrUnknownRun = errors.New("unknown run")

// Env carries the session collaborators every run needs.
type Env struct {
	Session  *timeline.Session
	Canvas   renderer.Canvas
	Registry *layer.Registry
	Emphasis Emphasis
	Font     renderer.Font
}

// Style is the reveal configuration of a run.
type Style struct {
	Preset   string
	TypeAnim effects.TypeAnim
	Order    effects.Order
	Easing   string
	Fill     string
}

// unit is one animated piece of a run: a letter or a word.
type unit struct {
	handle renderer.Handle
	text   string
	offset float64 // rest centre relative to the run centre, unscaled
}

// Run is a word with an importance-driven look and a staggered reveal. Its
// group drawable is registered as an "AnimText" layer; the units are child
// drawables positioned by the run.
type Run struct {
	ID    string
	Text  string
	Style Style
	X, Y  float64
	Line  *Line
	Layer *layer.Layer

	BaseScale      float64
	BaseDurationMs float64

	env        *Env
	log        logrus.FieldLogger
	effect     effects.Effect
	ease       renderer.Easing
	instrument *Instrument

	importance float64
	look       emphasis
	units      []unit
	timings    []effects.Timing

	playing   bool
	playStart float64
}

// NewRun creates the drawables of a run and registers it on the timeline
// with the window [startMs, endMs].
func NewRun(env *Env, text string, startMs, endMs float64, style Style) (*Run, error) {
	if style.Fill == "" {
		style.Fill = "#ffffff"
	}
	if style.TypeAnim == "" {
		style.TypeAnim = effects.Letter
	}
	if style.Order == "" {
		style.Order = effects.Forward
	}
	fill, err := renderer.NormalizeColor(style.Fill)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", text, err)
	}
	style.Fill = fill

	eff, err := effects.NewEffect(style.Preset)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", text, err)
	}
	ease, err := renderer.EasingByName(style.Easing)
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", text, err)
	}

	r := &Run{
		ID:             env.Session.NewID("AnimText"),
		Text:           text,
		Style:          style,
		BaseScale:      1,
		BaseDurationMs: env.Emphasis.BaseDurationMs,
		env:            env,
		effect:         eff,
		ease:           ease,
		importance:     DefaultImportance,
	}
	r.log = env.Session.Log().WithField("run", r.ID)

	h, err := env.Canvas.Create(renderer.KindGroup, renderer.Props{
		renderer.PropText:       text,
		renderer.PropFill:       style.Fill,
		renderer.PropFontFamily: env.Font.Family,
		renderer.PropFontSize:   env.Font.Size,
	})
	if err != nil {
		return nil, fmt.Errorf("run %q: %w", text, err)
	}
	r.Layer, err = env.Registry.Register(h, layer.Text{Content: text}, startMs,
		layer.WithSpan(startMs, endMs), layer.WithID(r.ID))
	if err != nil {
		_ = env.Canvas.Remove(h)
		return nil, fmt.Errorf("run %q: %w", text, err)
	}

	if err := r.buildUnits(); err != nil {
		return nil, err
	}
	r.recompute()
	return r, nil
}

func (r *Run) buildUnits() error {
	var pieces []string
	gap := 0.0
	if r.Style.TypeAnim == effects.Word {
		pieces = strings.Fields(r.Text)
		gap = r.env.Canvas.MeasureTextWidth(" ", r.env.Font)
	} else {
		for _, c := range r.Text {
			pieces = append(pieces, string(c))
		}
	}

	widths := make([]float64, len(pieces))
	total := gap * float64(max(len(pieces)-1, 0))
	for i, p := range pieces {
		widths[i] = r.env.Canvas.MeasureTextWidth(p, r.env.Font)
		total += widths[i]
	}

	cursor := -total / 2
	r.units = make([]unit, 0, len(pieces))
	for i, p := range pieces {
		h, err := r.env.Canvas.Create(renderer.KindText, renderer.Props{
			renderer.PropText:       p,
			renderer.PropFill:       r.Style.Fill,
			renderer.PropFontFamily: r.env.Font.Family,
			renderer.PropFontSize:   r.env.Font.Size,
			renderer.PropOpacity:    0.0,
		})
		if err != nil {
			return fmt.Errorf("run %s unit %d: %w", r.ID, i, err)
		}
		r.units = append(r.units, unit{handle: h, text: p, offset: cursor + widths[i]/2})
		cursor += widths[i] + gap
	}
	return nil
}

func (r *Run) removeUnits() error {
	var errs []error
	for _, u := range r.units {
		if err := r.env.Canvas.Remove(u.handle); err != nil {
			errs = append(errs, err)
		}
	}
	r.units = nil
	return errors.Join(errs...)
}

// recompute derives scale, duration and fill from importance, then
// reschedules the units.
func (r *Run) recompute() {
	base := emphasis{scale: r.BaseScale, durationMs: r.BaseDurationMs, fill: r.Style.Fill}
	e := r.env.Emphasis

	if r.instrument != nil {
		r.look = r.instrument.apply(base, r.BaseDurationMs, r.importance)
	} else {
		r.look = emphasis{
			scale:      LerpImportance(base.scale, e.EnlargeFactor, r.importance),
			durationMs: LerpImportance(base.durationMs, e.SlowFactor, r.importance),
			fill:       base.fill,
		}
		fill, err := BlendTowards(base.fill, e.TargetColor, r.importance)
		if err != nil {
			r.log.WithError(err).Warn("[!] colour blend skipped")
		} else {
			r.look.fill = fill
		}
	}
	r.timings = effects.Schedule(r.effect, r.Style.TypeAnim, r.Style.Order, len(r.units), r.look.durationMs)
}

// Importance returns the current importance.
func (r *Run) Importance() float64 { return r.importance }

func (r *Run) EffectiveScale() float64      { return r.look.scale }
func (r *Run) EffectiveDurationMs() float64 { return r.look.durationMs }
func (r *Run) EffectiveFill() string        { return r.look.fill }
func (r *Run) Bold() bool                   { return r.look.bold }

// RevealSpanMs is the local time at which every unit is at rest.
func (r *Run) RevealSpanMs() float64 { return effects.Span(r.timings) }

// Instrument returns the active instrument, nil for the default model.
func (r *Run) Instrument() *Instrument { return r.instrument }

// Width is the rendered width at the current scale.
func (r *Run) Width() float64 {
	return r.env.Canvas.MeasureTextWidth(r.Text, r.env.Font) * r.look.scale
}

// SetImportance stores v clamped to [0,1], recomputes the look, realigns
// the run's line and redraws it at the session time.
func (r *Run) SetImportance(v float64) error {
	imp, ok := clampImportance(v)
	if !ok {
		r.log.WithField("text", r.Text).Warn("[!] NaN importance, using 0.5")
	}
	r.importance = imp
	return r.refresh()
}

// SetInstrument switches the emphasis channels; nil restores the default
// model.
func (r *Run) SetInstrument(in *Instrument) error {
	if in != nil {
		if err := in.Validate(); err != nil {
			return err
		}
	}
	r.instrument = in
	return r.refresh()
}

// SetText replaces the word and rebuilds its units. Position, window and
// importance are kept.
func (r *Run) SetText(text string) error {
	if err := r.removeUnits(); err != nil {
		r.log.WithError(err).Warn("[!] stale units on reset")
	}
	r.Text = text
	if r.Layer != nil {
		r.Layer.Asset = layer.Text{Content: text}
		if err := r.env.Canvas.Set(r.Layer.Handle, renderer.PropText, text); err != nil {
			return fmt.Errorf("run %s: %w", r.ID, err)
		}
	}
	if err := r.buildUnits(); err != nil {
		return err
	}
	return r.refresh()
}

func (r *Run) refresh() error {
	r.recompute()
	if r.Line != nil {
		r.Line.Realign()
		return r.Line.redraw()
	}
	return r.Seek(r.env.Session.Now())
}

// MoveTo sets the run centre.
func (r *Run) MoveTo(x, y float64) {
	r.X, r.Y = x, y
}

// Seek draws the run as it looks at timeline time t.
func (r *Run) Seek(t float64) error {
	w, ok := r.env.Registry.Window(r.ID)
	visible := ok && w.VisibleAt(t, r.env.Session.Duration())
	return r.draw(t-w.EffectiveStart(), visible)
}

// Play starts the reveal as a free-running tween from local time 0.
func (r *Run) Play(nowMs float64) error {
	r.playing = true
	r.playStart = nowMs
	return r.draw(0, true)
}

// Advance moves a playing reveal to nowMs. It reports whether the reveal
// has finished.
func (r *Run) Advance(nowMs float64) (bool, error) {
	if !r.playing {
		return true, nil
	}
	local := nowMs - r.playStart
	err := r.draw(local, true)
	if local >= r.RevealSpanMs() {
		r.playing = false
	}
	return !r.playing, err
}

// Playing reports whether a free-running reveal is active.
func (r *Run) Playing() bool { return r.playing }

func (r *Run) draw(local float64, visible bool) error {
	c := r.env.Canvas
	scale := r.look.scale
	weight := "normal"
	if r.look.bold {
		weight = "bold"
	}

	var errs []error
	set := func(h renderer.Handle, prop string, v any) {
		if err := c.Set(h, prop, v); err != nil {
			errs = append(errs, err)
		}
	}

	if r.Layer != nil {
		g := r.Layer.Handle
		set(g, renderer.PropLeft, r.X)
		set(g, renderer.PropTop, r.Y)
		set(g, renderer.PropScaleX, scale)
		set(g, renderer.PropScaleY, scale)
		set(g, renderer.PropFill, r.look.fill)
		set(g, renderer.PropFontWeight, weight)
	}

	from := r.effect.From()
	for i, u := range r.units {
		set(u.handle, renderer.PropVisible, visible)
		if !visible {
			continue
		}
		st := effects.StateAt(from, r.timings[i], local, r.ease)
		set(u.handle, renderer.PropLeft, r.X+u.offset*scale+st.DX)
		set(u.handle, renderer.PropTop, r.Y+st.DY)
		set(u.handle, renderer.PropScaleX, scale*st.Scale)
		set(u.handle, renderer.PropScaleY, scale*st.Scale)
		set(u.handle, renderer.PropOpacity, st.Opacity)
		set(u.handle, renderer.PropFill, r.look.fill)
		set(u.handle, renderer.PropFontWeight, weight)
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("draw %s: %w", r.ID, err)
	}
	return nil
}

// UnitHandles returns the drawables of the run's letters or words.
func (r *Run) UnitHandles() []renderer.Handle {
	out := make([]renderer.Handle, len(r.units))
	for i, u := range r.units {
		out[i] = u.handle
	}
	return out
}

// Remove deletes the run's drawables and unregisters its layer.
func (r *Run) Remove() error {
	err := r.removeUnits()
	if rerr := r.env.Registry.Remove(r.ID); rerr != nil {
		err = errors.Join(err, rerr)
	}
	return err
}
