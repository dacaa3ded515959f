package engine

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/lyricsync/internal/animtext"
	"github.com/ivlev/lyricsync/internal/index"
	"github.com/ivlev/lyricsync/internal/layer"
	"github.com/ivlev/lyricsync/internal/lyrics"
	"github.com/ivlev/lyricsync/internal/renderer"
	"github.com/ivlev/lyricsync/internal/script"
	"github.com/ivlev/lyricsync/internal/timeline"
)

// Options configures a project.
type Options struct {
	DurationMs    float64
	Width         float64
	Height        float64
	Font          renderer.Font
	LineY         float64 // 0 centres lines vertically
	SpacingPx     float64
	Style         animtext.Style
	Emphasis      animtext.Emphasis
	DefaultSpanMs float64
	Log           logrus.FieldLogger
}

func (o *Options) applyDefaults() {
	if o.Width <= 0 {
		o.Width = 1920
	}
	if o.Height <= 0 {
		o.Height = 1080
	}
	if o.Font.Size <= 0 {
		o.Font.Size = 40
	}
	if o.LineY <= 0 {
		o.LineY = o.Height / 2
	}
	if o.SpacingPx <= 0 {
		o.SpacingPx = 10
	}
	if o.Emphasis.BaseDurationMs <= 0 {
		o.Emphasis = animtext.DefaultEmphasis()
	}
}

// Project wires one editing session: the clock, the layer registry, the
// lyrics index and the scheduler that drives them onto a canvas.
type Project struct {
	Session   *timeline.Session
	Registry  *layer.Registry
	Index     *index.Active
	Scheduler *Scheduler
	Canvas    renderer.Canvas

	opts Options
	env  *animtext.Env
	runs map[string]*animtext.Run
	log  logrus.FieldLogger
}

func NewProject(c renderer.Canvas, opts Options) (*Project, error) {
	opts.applyDefaults()
	s, err := timeline.NewSession(opts.DurationMs, opts.Log)
	if err != nil {
		return nil, fmt.Errorf("new project: %w", err)
	}
	reg := layer.NewRegistry(s, c, opts.DefaultSpanMs)
	idx := index.NewActive()

	p := &Project{
		Session:   s,
		Registry:  reg,
		Index:     idx,
		Scheduler: NewScheduler(s, reg, idx, c),
		Canvas:    c,
		opts:      opts,
		env: &animtext.Env{
			Session:  s,
			Canvas:   c,
			Registry: reg,
			Emphasis: opts.Emphasis,
			Font:     opts.Font,
		},
		runs: make(map[string]*animtext.Run),
		log:  s.Log().WithField("component", "project"),
	}
	return p, nil
}

// LoadLyrics turns parsed records into layers. Enhanced records become
// animated runs grouped by sentence and indexed by sentence end; basic
// records become plain text layers. The timeline grows to the last sentence
// end when it is shorter.
func (p *Project) LoadLyrics(res lyrics.Result) error {
	if endMs := math.Round(res.EndSec() * 1000); endMs > p.Session.Duration() {
		if err := p.Session.SetDuration(endMs); err != nil {
			return err
		}
		p.log.WithField("duration_ms", endMs).Info("[*] timeline extended to fit lyrics")
	}

	if res.Mode == lyrics.ModeBasic {
		for _, rec := range res.Records {
			if _, err := p.addTextSpan(rec.Text, rec.StartMs(), rec.SentenceEndMs()); err != nil {
				return err
			}
		}
		p.Scheduler.Refresh()
		return nil
	}

	byOrdinal := make(map[int]*animtext.Line)
	var lines []*animtext.Line
	for _, rec := range res.Records {
		ln, ok := byOrdinal[rec.Line]
		if !ok {
			ln = animtext.NewLine(rec.SentenceEndMs(), len(lines), p.opts.Width/2, p.opts.LineY, p.opts.SpacingPx)
			byOrdinal[rec.Line] = ln
			lines = append(lines, ln)
		}
		r, err := animtext.NewRun(p.env, rec.Text, rec.StartMs(), rec.SentenceEndMs(), p.opts.Style)
		if err != nil {
			return err
		}
		ln.Add(r)
		p.runs[r.ID] = r
	}
	for _, ln := range lines {
		ln.Realign()
	}

	if err := p.Index.Build(append(p.Index.Lines(), lines...)); err != nil {
		return err
	}
	p.renumber()
	p.log.WithFields(logrus.Fields{"lines": len(lines), "runs": len(res.Records)}).Info("[+] lyrics loaded")
	p.Scheduler.Refresh()
	return nil
}

// AddText adds a text layer centred on the canvas at insertionMs.
func (p *Project) AddText(content string, insertionMs float64) (*layer.Layer, error) {
	return p.addText(content, insertionMs)
}

func (p *Project) addTextSpan(content string, startMs, endMs float64) (*layer.Layer, error) {
	return p.addText(content, startMs, layer.WithSpan(startMs, endMs))
}

func (p *Project) addText(content string, insertionMs float64, opts ...layer.Option) (*layer.Layer, error) {
	fill := p.opts.Style.Fill
	if fill == "" {
		fill = "#ffffff"
	}
	h, err := p.Canvas.Create(renderer.KindText, renderer.Props{
		renderer.PropText:       content,
		renderer.PropLeft:       p.opts.Width / 2,
		renderer.PropTop:        p.opts.Height / 2,
		renderer.PropFontFamily: p.opts.Font.Family,
		renderer.PropFontSize:   p.opts.Font.Size,
		renderer.PropFill:       fill,
	})
	if err != nil {
		return nil, err
	}
	return p.register(h, layer.Text{Content: content}, insertionMs, opts...)
}

// AddShape adds a shape drawable of kind at insertionMs.
func (p *Project) AddShape(name string, kind renderer.Kind, props renderer.Props, insertionMs float64) (*layer.Layer, error) {
	switch kind {
	case renderer.KindRect, renderer.KindCircle, renderer.KindTriangle, renderer.KindImage:
	default:
		return nil, fmt.Errorf("add shape %q: unsupported kind %q", name, kind)
	}
	h, err := p.Canvas.Create(kind, props)
	if err != nil {
		return nil, err
	}
	return p.register(h, layer.Shape{Name: name}, insertionMs)
}

// AddAudio adds an audio layer. Audio has no drawable; the player is driven
// by the scheduler during playback.
func (p *Project) AddAudio(durationMs, insertionMs float64, player AudioPlayer) (*layer.Layer, error) {
	return p.register(0, layer.Audio{DurationMs: durationMs, Player: player}, insertionMs)
}

// AddVideo adds a video drawable whose window is bounded by its media
// duration.
func (p *Project) AddVideo(durationMs, insertionMs float64) (*layer.Layer, error) {
	h, err := p.Canvas.Create(renderer.KindVideo, nil)
	if err != nil {
		return nil, err
	}
	return p.register(h, layer.Video{DurationMs: durationMs}, insertionMs)
}

func (p *Project) register(h renderer.Handle, asset layer.Asset, insertionMs float64, opts ...layer.Option) (*layer.Layer, error) {
	l, err := p.Registry.Register(h, asset, insertionMs, opts...)
	if err != nil {
		if h != 0 {
			_ = p.Canvas.Remove(h)
		}
		return nil, err
	}
	p.refresh()
	return l, nil
}

// Run looks up an animated run by id.
func (p *Project) Run(id string) (*animtext.Run, error) {
	r, ok := p.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, animtext.ErrUnknownRun)
	}
	return r, nil
}

// Runs returns every animated run in timeline order.
func (p *Project) Runs() []*animtext.Run {
	return p.Index.Runs()
}

// Line returns the i-th lyric line in timeline order.
func (p *Project) Line(i int) (*animtext.Line, bool) {
	return p.Index.At(i)
}

// Lines returns the lyric lines in timeline order.
func (p *Project) Lines() []*animtext.Line {
	return p.Index.Lines()
}

// SetImportance changes the importance of one run.
func (p *Project) SetImportance(id string, v float64) error {
	r, err := p.Run(id)
	if err != nil {
		return err
	}
	return r.SetImportance(v)
}

// SetInstrument attaches an instrument to one run; nil restores the default
// emphasis model.
func (p *Project) SetInstrument(id string, in *animtext.Instrument) error {
	r, err := p.Run(id)
	if err != nil {
		return err
	}
	return r.SetInstrument(in)
}

// ApplyImportances sets per-line importance arrays by line index. Lines
// past the end of the project are reported and skipped.
func (p *Project) ApplyImportances(lines [][]float64) error {
	var errs []error
	for i, values := range lines {
		ln, ok := p.Line(i)
		if !ok {
			errs = append(errs, fmt.Errorf("line %d: no such line", i))
			continue
		}
		if err := ln.SetImportances(values); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ApplyScript applies an importance script. A line instrument replaces the
// emphasis model of every run on that line before the curve is applied.
func (p *Project) ApplyScript(s *script.Script) error {
	if err := s.Validate(); err != nil {
		return err
	}
	var errs []error
	for _, sl := range s.Lines {
		ln, ok := p.Line(sl.Index)
		if !ok {
			errs = append(errs, fmt.Errorf("line %d: no such line", sl.Index))
			continue
		}
		if sl.Instrument != "" {
			in, err := animtext.NewInstrument(sl.Instrument, p.opts.Emphasis)
			if err != nil {
				errs = append(errs, fmt.Errorf("line %d: %w", sl.Index, err))
				continue
			}
			for _, r := range ln.Runs {
				if err := r.SetInstrument(in); err != nil {
					errs = append(errs, err)
				}
			}
		}
		if err := ln.SetImportances(sl.Importance); err != nil {
			errs = append(errs, err)
		}
	}
	p.log.WithField("lines", len(s.Lines)).Debug("importance script applied")
	return errors.Join(errs...)
}

// Script builds a neutral importance script for the loaded lyrics.
func (p *Project) Script(source string) *script.Script {
	lines := p.Lines()
	words := make([][]string, len(lines))
	for i, ln := range lines {
		for _, r := range ln.Runs {
			words[i] = append(words[i], r.Text)
		}
	}
	return script.Generate(source, words)
}

// SetOverride adds a step override for a layer property from atMs on.
func (p *Project) SetOverride(id, prop string, atMs float64, v any) error {
	if _, ok := p.Registry.Layer(id); !ok {
		return fmt.Errorf("override %s.%s: %w", id, prop, layer.ErrUnknownLayer)
	}
	if math.IsNaN(atMs) || atMs < 0 {
		return fmt.Errorf("override %s.%s at %v: %w", id, prop, atMs, layer.ErrInvalidWindow)
	}
	p.Registry.Overrides().Set(id, prop, atMs, v)
	p.refresh()
	return nil
}

// ClearOverride removes the step at atMs. It reports whether one existed.
func (p *Project) ClearOverride(id, prop string, atMs float64) (bool, error) {
	if _, ok := p.Registry.Layer(id); !ok {
		return false, fmt.Errorf("clear override %s.%s: %w", id, prop, layer.ErrUnknownLayer)
	}
	ok := p.Registry.Overrides().ClearAt(id, prop, atMs)
	p.refresh()
	return ok, nil
}

// Trim sets the trim offsets of a layer.
func (p *Project) Trim(id string, trimStart, trimEnd float64) error {
	if err := p.Registry.Trim(id, trimStart, trimEnd); err != nil {
		return err
	}
	p.refresh()
	return nil
}

// RemoveLayer deletes a layer. Removing a run detaches it from its line,
// which is realigned; a line left empty leaves the index.
func (p *Project) RemoveLayer(id string) error {
	r, isRun := p.runs[id]
	if !isRun {
		if err := p.Registry.Remove(id); err != nil {
			return err
		}
		p.refresh()
		return nil
	}

	ln := r.Line
	if err := r.Remove(); err != nil {
		return err
	}
	delete(p.runs, id)
	if ln != nil {
		ln.Remove(r)
		ln.Realign()
		if len(ln.Runs) == 0 {
			if err := p.rebuildIndex(); err != nil {
				return err
			}
		}
	}
	p.refresh()
	return nil
}

func (p *Project) rebuildIndex() error {
	var keep []*animtext.Line
	for _, ln := range p.Index.Lines() {
		if len(ln.Runs) > 0 {
			keep = append(keep, ln)
		}
	}
	if err := p.Index.Build(keep); err != nil {
		return err
	}
	p.renumber()
	return nil
}

func (p *Project) renumber() {
	for i, ln := range p.Index.Lines() {
		ln.Index = i
	}
}

// SeekTo moves the clock and redraws.
func (p *Project) SeekTo(t float64) error {
	return p.Scheduler.SeekTo(t)
}

func (p *Project) refresh() {
	if !p.Scheduler.Playing() {
		p.Scheduler.Refresh()
	}
}
