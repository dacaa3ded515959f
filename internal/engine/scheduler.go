package engine

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/lyricsync/internal/animtext"
	"github.com/ivlev/lyricsync/internal/index"
	"github.com/ivlev/lyricsync/internal/layer"
	"github.com/ivlev/lyricsync/internal/renderer"
	"github.com/ivlev/lyricsync/internal/timeline"
)

// TickFunc receives the floored timeline time of every played frame.
type TickFunc func(ms int64)

// Scheduler derives the whole scene from the session clock. Seeks evaluate
// once; Play hands the clock to a frame driver that calls Frame on every
// animation frame. All methods must be called from one goroutine (see Loop).
type Scheduler struct {
	session *timeline.Session
	reg     *layer.Registry
	idx     *index.Active
	canvas  renderer.Canvas
	audio   *audioSync
	log     logrus.FieldLogger

	playing    bool
	onTick     TickFunc
	done       chan struct{}
	anchored   bool
	anchorWall float64
	anchorT    float64
	active     []*animtext.Run
}

func NewScheduler(s *timeline.Session, reg *layer.Registry, idx *index.Active, c renderer.Canvas) *Scheduler {
	log := s.Log().WithField("component", "scheduler")
	return &Scheduler{
		session: s,
		reg:     reg,
		idx:     idx,
		canvas:  c,
		audio:   newAudioSync(reg, log),
		log:     log,
	}
}

// Playing reports whether a frame driver is running.
func (s *Scheduler) Playing() bool {
	return s.playing
}

// SeekTo moves the clock to t and evaluates the scene there. A running
// driver is paused first.
func (s *Scheduler) SeekTo(t float64) error {
	if s.playing {
		s.session.Pause()
		s.stop()
	}
	if err := s.session.Seek(t); err != nil {
		return err
	}
	s.Evaluate(t)
	return nil
}

// Refresh re-evaluates the scene at the current time.
func (s *Scheduler) Refresh() {
	s.Evaluate(s.session.Now())
}

// Evaluate applies every layer's state for time t and re-seeks every run.
// It does not move the clock.
func (s *Scheduler) Evaluate(t float64) {
	s.evaluateLayers(t)
	s.active = nil
	for _, r := range s.idx.Runs() {
		s.seekRun(r, t)
	}
	s.canvas.RequestRender()
}

// evaluateFrame is the per-frame pass while playing: layers are all
// evaluated, runs only around t plus the ones drawn on the previous frame.
func (s *Scheduler) evaluateFrame(t float64) {
	s.evaluateLayers(t)
	next := s.idx.FindActiveAndNext(t)
	seen := make(map[*animtext.Run]bool, len(next))
	for _, r := range next {
		seen[r] = true
		s.seekRun(r, t)
	}
	for _, r := range s.active {
		if !seen[r] {
			s.seekRun(r, t)
		}
	}
	s.active = next
	s.canvas.RequestRender()
}

func (s *Scheduler) evaluateLayers(t float64) {
	duration := s.session.Duration()
	for _, l := range s.reg.Layers() {
		if err := s.evaluateLayer(l, t, duration); err != nil {
			s.log.WithError(err).WithField("layer", l.ID).Warn("[!] layer skipped")
		}
	}
}

func (s *Scheduler) evaluateLayer(l *layer.Layer, t, duration float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	w, ok := s.reg.Window(l.ID)
	if !ok {
		return fmt.Errorf("no window for %s: %w", l.ID, layer.ErrUnknownLayer)
	}
	if l.Handle == 0 {
		return nil
	}

	visible := w.VisibleAt(t, duration)
	if err := s.canvas.Set(l.Handle, renderer.PropVisible, visible); err != nil {
		return err
	}
	if !visible {
		return nil
	}
	overrides := s.reg.Overrides()
	for _, d := range l.Defaults {
		v, _ := overrides.ValueAt(l, d.Property, t)
		if err := s.canvas.Set(l.Handle, d.Property, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) seekRun(r *animtext.Run, t float64) {
	defer func() {
		if p := recover(); p != nil {
			s.log.WithField("run", r.ID).Errorf("[!] run seek panicked: %v", p)
		}
	}()
	if err := r.Seek(t); err != nil {
		s.log.WithError(err).WithField("run", r.ID).Warn("[!] run skipped")
	}
}

// Play resumes the session and starts the frame driver. The returned
// channel is closed when the driver stops, either paused or at the end of
// the timeline. Calling Play while playing returns the running driver's
// channel; a pause requested since the last frame is withdrawn.
func (s *Scheduler) Play(onTick TickFunc) <-chan struct{} {
	if s.playing {
		if s.session.Paused() {
			s.session.Resume()
		}
		return s.done
	}
	s.session.Resume()
	s.playing = true
	s.onTick = onTick
	s.anchored = false
	s.anchorT = s.session.Now()
	s.done = make(chan struct{})
	s.audio.sync(s.anchorT, s.session.Duration(), true)
	s.log.WithField("from_ms", s.anchorT).Debug("playback started")
	return s.done
}

// Pause flags the session as paused. The driver stops on its next frame.
func (s *Scheduler) Pause() {
	s.session.Pause()
}

// Frame is the animation-frame callback. nowMs is a monotonic wall-clock
// reading; elapsed wall time maps 1:1 onto timeline time.
func (s *Scheduler) Frame(nowMs float64) {
	if !s.playing {
		return
	}
	if s.session.Paused() {
		s.stop()
		return
	}
	if !s.anchored {
		s.anchored = true
		s.anchorWall = nowMs
	}

	duration := s.session.Duration()
	t := s.anchorT + (nowMs - s.anchorWall)
	if t >= duration {
		s.session.AdvanceTo(duration)
		s.evaluateFrame(duration)
		s.tick(duration)
		s.session.Pause()
		s.stop()
		s.session.AdvanceTo(0)
		s.Evaluate(0)
		return
	}

	s.session.AdvanceTo(t)
	s.evaluateFrame(t)
	s.audio.sync(t, duration, true)
	s.tick(t)
}

func (s *Scheduler) tick(t float64) {
	if s.onTick != nil {
		s.onTick(int64(math.Floor(t)))
	}
}

// stop tears the driver down. The clock keeps the last frame's time.
func (s *Scheduler) stop() {
	s.playing = false
	s.onTick = nil
	s.audio.stopAll()
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
	s.log.WithField("at_ms", s.session.Now()).Debug("playback stopped")
}
