package layer

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/lyricsync/internal/renderer"
	"github.com/ivlev/lyricsync/internal/timeline"
)

var (
	// ErrUnknownLayer is returned for ids that are not registered.
	ErrUnknownLayer = errors.New("unknown layer")
	// ErrInvalidWindow is returned for windows that cannot exist on the timeline.
	ErrInvalidWindow = errors.New("invalid window")
)

// DefaultSpanMs is the window length of instantaneous layers inserted
// without an explicit span.
const DefaultSpanMs = 5000.0

type registerOptions struct {
	id       string
	span     bool
	start    float64
	end      float64
	captured []string
}

// Option customises Register.
type Option func(*registerOptions)

// WithSpan sets an explicit window, as parsed lyrics do.
func WithSpan(startMs, endMs float64) Option {
	return func(o *registerOptions) {
		o.span = true
		o.start = startMs
		o.end = endMs
	}
}

// WithID uses id instead of the kind-derived one.
func WithID(id string) Option {
	return func(o *registerOptions) { o.id = id }
}

// WithProps overrides the property set captured as defaults.
func WithProps(props ...string) Option {
	return func(o *registerOptions) { o.captured = props }
}

// Registry holds every layer of a session in registration order together
// with its window and override timeline.
type Registry struct {
	session       *timeline.Session
	canvas        renderer.Canvas
	defaultSpanMs float64
	log           logrus.FieldLogger

	layers    []*Layer
	byID      map[string]*Layer
	windows   map[string]Window
	overrides *Overrides
}

func NewRegistry(s *timeline.Session, c renderer.Canvas, defaultSpanMs float64) *Registry {
	if defaultSpanMs <= 0 {
		defaultSpanMs = DefaultSpanMs
	}
	return &Registry{
		session:       s,
		canvas:        c,
		defaultSpanMs: defaultSpanMs,
		log:           s.Log().WithField("component", "registry"),
		byID:          make(map[string]*Layer),
		windows:       make(map[string]Window),
		overrides:     NewOverrides(),
	}
}

// Register adds a layer for the drawable h inserted at insertionMs.
func (r *Registry) Register(h renderer.Handle, asset Asset, insertionMs float64, opts ...Option) (*Layer, error) {
	if asset == nil {
		return nil, fmt.Errorf("register: nil asset")
	}
	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	kind := asset.Kind()
	w, err := r.initialWindow(kind, asset, insertionMs, o)
	if err != nil {
		return nil, err
	}

	id := o.id
	if id == "" {
		id = r.session.NewID(kind.idPrefix())
	}
	if _, dup := r.byID[id]; dup {
		return nil, fmt.Errorf("register %s: duplicate id", id)
	}
	w.LayerID = id

	l := &Layer{
		ID:       id,
		Asset:    asset,
		Color:    kind.TagColor(),
		Handle:   h,
		Defaults: r.captureDefaults(kind, h, o.captured),
	}
	r.layers = append(r.layers, l)
	r.byID[id] = l
	r.windows[id] = w

	r.log.WithFields(logrus.Fields{
		"layer": id, "kind": kind.String(), "start_ms": w.Start, "end_ms": w.End,
	}).Debug("layer registered")
	return l, nil
}

func (r *Registry) initialWindow(kind Kind, asset Asset, insertionMs float64, o registerOptions) (Window, error) {
	duration := r.session.Duration()

	if kind.DurationBound() {
		if math.IsNaN(insertionMs) || insertionMs < 0 || insertionMs > duration {
			return Window{}, fmt.Errorf("insertion at %v outside [0, %v]: %w", insertionMs, duration, ErrInvalidWindow)
		}
		var media float64
		switch a := asset.(type) {
		case Audio:
			media = a.DurationMs
		case Video:
			media = a.DurationMs
		}
		if media <= 0 || math.IsNaN(media) {
			return Window{}, fmt.Errorf("%s media duration %v: %w", kind, media, ErrInvalidWindow)
		}
		end := insertionMs + math.Min(media, duration-insertionMs)
		return Window{Start: insertionMs, End: end, TrimEnd: end}, nil
	}

	start, end := insertionMs, insertionMs+r.defaultSpanMs
	if o.span {
		start, end = o.start, o.end
	}
	if math.IsNaN(start) || math.IsNaN(end) || start < 0 || end < start {
		return Window{}, fmt.Errorf("span [%v, %v]: %w", start, end, ErrInvalidWindow)
	}
	return Window{Start: start, End: end, TrimEnd: end}, nil
}

func (r *Registry) captureDefaults(kind Kind, h renderer.Handle, props []string) []Default {
	if kind == KindAudio {
		return []Default{{Property: renderer.PropVolume, Value: 1.0}}
	}
	if props == nil {
		props = renderer.VisualProps
		if kind == KindText {
			props = renderer.TextProps
		}
	}
	defaults := make([]Default, 0, len(props))
	for _, p := range props {
		v, ok := r.canvas.Get(h, p)
		if !ok {
			continue
		}
		defaults = append(defaults, Default{Property: p, Value: v})
	}
	return defaults
}

// Layer looks up a layer by id.
func (r *Registry) Layer(id string) (*Layer, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// Window looks up the window of a layer.
func (r *Registry) Window(id string) (Window, bool) {
	w, ok := r.windows[id]
	return w, ok
}

// SetWindow replaces a layer's window.
func (r *Registry) SetWindow(id string, w Window) error {
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("set window %s: %w", id, ErrUnknownLayer)
	}
	if w.End < w.Start || w.Start < 0 || w.TrimStart < 0 {
		return fmt.Errorf("set window %s [%v, %v]: %w", id, w.Start, w.End, ErrInvalidWindow)
	}
	w.LayerID = id
	r.windows[id] = w
	return nil
}

// DetachWindow drops a layer's window. The layer stays registered and is
// skipped by evaluation until SetWindow is called again.
func (r *Registry) DetachWindow(id string) {
	delete(r.windows, id)
}

// Trim sets the trim offsets of a layer.
func (r *Registry) Trim(id string, trimStart, trimEnd float64) error {
	w, ok := r.windows[id]
	if !ok {
		return fmt.Errorf("trim %s: %w", id, ErrUnknownLayer)
	}
	if trimStart < 0 || w.Start+trimStart > w.End || trimEnd < w.Start+trimStart {
		return fmt.Errorf("trim %s (%v, %v): %w", id, trimStart, trimEnd, ErrInvalidWindow)
	}
	w.TrimStart = trimStart
	w.TrimEnd = trimEnd
	r.windows[id] = w
	return nil
}

// Layers returns the layers in registration order.
func (r *Registry) Layers() []*Layer {
	return append([]*Layer(nil), r.layers...)
}

// Len returns the number of registered layers.
func (r *Registry) Len() int {
	return len(r.layers)
}

// Overrides exposes the override timeline.
func (r *Registry) Overrides() *Overrides {
	return r.overrides
}

// Remove unregisters the layer and deletes its drawable.
func (r *Registry) Remove(id string) error {
	l, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrUnknownLayer)
	}
	if l.Handle != 0 {
		if err := r.canvas.Remove(l.Handle); err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
	}
	for i, cand := range r.layers {
		if cand == l {
			r.layers = append(r.layers[:i], r.layers[i+1:]...)
			break
		}
	}
	delete(r.byID, id)
	delete(r.windows, id)
	r.overrides.RemoveLayer(id)
	return nil
}
