package engine

import (
	"context"
	"errors"
	"io"
	"math"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ivlev/lyricsync/internal/layer"
	"github.com/ivlev/lyricsync/internal/lyrics"
	"github.com/ivlev/lyricsync/internal/renderer"
	"github.com/ivlev/lyricsync/internal/timeline"
)

const twoLines = "[00:01.00] <00:01.00> Hello <00:01.50> world <00:02.00>\n" +
	"[00:03.00] <00:03.00> Second <00:03.40> line <00:04.00>"

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestProject(t *testing.T, durationMs float64) (*Project, *renderer.MemoryCanvas) {
	t.Helper()
	c := renderer.NewMemoryCanvas(1280, 720)
	p, err := NewProject(c, Options{DurationMs: durationMs, Width: 1280, Height: 720, Log: quietLogger()})
	if err != nil {
		t.Fatalf("NewProject failed: %v", err)
	}
	return p, c
}

func loadTwoLines(t *testing.T, p *Project) {
	t.Helper()
	res := lyrics.NewParser(lyrics.Options{}, quietLogger()).ParseString(twoLines)
	if err := p.LoadLyrics(res); err != nil {
		t.Fatalf("LoadLyrics failed: %v", err)
	}
}

func visible(t *testing.T, c renderer.Canvas, h renderer.Handle) bool {
	t.Helper()
	v, ok := c.Get(h, renderer.PropVisible)
	if !ok {
		t.Fatalf("handle %d has no visible prop", h)
	}
	return v.(bool)
}

// shown reduces a snapshot to what is on screen: hidden drawables only
// contribute their visibility.
func shown(c *renderer.MemoryCanvas) map[renderer.Handle]renderer.Props {
	out := make(map[renderer.Handle]renderer.Props)
	for _, obj := range c.Snapshot() {
		if v, _ := obj.Props[renderer.PropVisible].(bool); !v {
			out[obj.Handle] = renderer.Props{renderer.PropVisible: false}
			continue
		}
		out[obj.Handle] = obj.Props
	}
	return out
}

type audioCall struct {
	play     bool
	offsetMs float64
	volume   float64
}

type recordingPlayer struct {
	calls []audioCall
}

func (r *recordingPlayer) PlayFrom(offsetMs, volume float64) error {
	r.calls = append(r.calls, audioCall{play: true, offsetMs: offsetMs, volume: volume})
	return nil
}

func (r *recordingPlayer) Pause() error {
	r.calls = append(r.calls, audioCall{})
	return nil
}

func TestLoadLyricsBuildsRuns(t *testing.T) {
	p, _ := newTestProject(t, 10000)
	loadTwoLines(t, p)

	if p.Index.Len() != 2 {
		t.Fatalf("Index.Len() = %d, want 2", p.Index.Len())
	}
	if keys := p.Index.Keys(); keys[0] != 3000 || keys[1] != 4000 {
		t.Errorf("keys = %v", keys)
	}
	runs := p.Runs()
	if len(runs) != 4 {
		t.Fatalf("got %d runs", len(runs))
	}
	for _, r := range runs {
		if _, err := p.Run(r.ID); err != nil {
			t.Errorf("Run(%s): %v", r.ID, err)
		}
		w, ok := p.Registry.Window(r.ID)
		if !ok {
			t.Fatalf("run %s has no window", r.ID)
		}
		t.Logf("%s %q window [%v, %v] x=%.1f", r.ID, r.Text, w.Start, w.End, r.X)
	}
	if w, _ := p.Registry.Window(runs[1].ID); w.Start != 1500 || w.End != 3000 {
		t.Errorf("world window = %+v", w)
	}
	if ln, ok := p.Line(1); !ok || ln.Text() != "Second line" {
		t.Errorf("Line(1) = %v", ln)
	}
	if _, err := p.Run("AnimText999"); err == nil {
		t.Error("unknown run id accepted")
	}
}

func TestLoadLyricsExtendsTimeline(t *testing.T) {
	p, _ := newTestProject(t, 1000)
	loadTwoLines(t, p)
	if p.Session.Duration() != 4000 {
		t.Errorf("Duration() = %v, want 4000", p.Session.Duration())
	}
}

func TestLoadBasicLyrics(t *testing.T) {
	p, c := newTestProject(t, 10000)
	res := lyrics.NewParser(lyrics.Options{}, quietLogger()).ParseString("[00:01.00] First line\n[00:04.00] Second line")
	if err := p.LoadLyrics(res); err != nil {
		t.Fatalf("LoadLyrics failed: %v", err)
	}
	if p.Registry.Len() != 2 || p.Index.Len() != 0 {
		t.Fatalf("registry=%d index=%d", p.Registry.Len(), p.Index.Len())
	}

	first := p.Registry.Layers()[0]
	if first.Kind() != layer.KindText {
		t.Errorf("kind = %v", first.Kind())
	}
	if err := p.SeekTo(2000); err != nil {
		t.Fatal(err)
	}
	if !visible(t, c, first.Handle) {
		t.Error("first line hidden at 2000")
	}
	if err := p.SeekTo(4500); err != nil {
		t.Fatal(err)
	}
	if visible(t, c, first.Handle) {
		t.Error("first line visible after its window")
	}
}

func TestSeekDrawsRuns(t *testing.T) {
	p, c := newTestProject(t, 10000)
	loadTwoLines(t, p)
	runs := p.Runs()
	hello, world := runs[0], runs[1]

	if err := p.SeekTo(1200); err != nil {
		t.Fatal(err)
	}
	if !visible(t, c, hello.Layer.Handle) {
		t.Error("Hello group hidden at 1200")
	}
	for _, h := range world.UnitHandles() {
		if visible(t, c, h) {
			t.Error("world unit visible before its start")
		}
	}

	if err := p.SeekTo(1900); err != nil {
		t.Fatal(err)
	}
	for i, h := range hello.UnitHandles() {
		op, _ := renderer.Float(c, h, renderer.PropOpacity)
		if math.Abs(op-1) > 1e-9 {
			t.Errorf("Hello unit %d opacity = %v after the reveal", i, op)
		}
	}

	// The first sentence lasts until the second line starts.
	if err := p.SeekTo(2500); err != nil {
		t.Fatal(err)
	}
	if !visible(t, c, hello.UnitHandles()[0]) {
		t.Error("Hello hidden before the next line starts")
	}
	if err := p.SeekTo(3200); err != nil {
		t.Fatal(err)
	}
	for _, h := range hello.UnitHandles() {
		if visible(t, c, h) {
			t.Error("Hello unit visible after its sentence ended")
		}
	}
}

func TestSeekIdempotent(t *testing.T) {
	p, c := newTestProject(t, 10000)
	loadTwoLines(t, p)
	box, err := p.AddShape("box", renderer.KindRect, renderer.Props{renderer.PropLeft: 10.0}, 500)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetOverride(box.ID, renderer.PropLeft, 1500, 300.0); err != nil {
		t.Fatal(err)
	}

	for _, pair := range [][2]float64{{1200, 3500}, {1700, 0}, {3300, 10000}} {
		t1, t2 := pair[0], pair[1]
		if err := p.SeekTo(t1); err != nil {
			t.Fatal(err)
		}
		first := shown(c)
		if err := p.SeekTo(t2); err != nil {
			t.Fatal(err)
		}
		if err := p.SeekTo(t1); err != nil {
			t.Fatal(err)
		}
		if second := shown(c); !reflect.DeepEqual(first, second) {
			t.Errorf("state at %v differs after visiting %v", t1, t2)
		}
	}
}

func TestSeekRejected(t *testing.T) {
	p, c := newTestProject(t, 10000)
	loadTwoLines(t, p)
	if err := p.SeekTo(1200); err != nil {
		t.Fatal(err)
	}
	before := c.Snapshot()

	for _, bad := range []float64{-1, 10001, math.NaN()} {
		if err := p.SeekTo(bad); !errors.Is(err, timeline.ErrInvalidSeek) {
			t.Errorf("SeekTo(%v) = %v, want ErrInvalidSeek", bad, err)
		}
	}
	if p.Session.Now() != 1200 {
		t.Errorf("clock moved to %v", p.Session.Now())
	}
	if !reflect.DeepEqual(before, c.Snapshot()) {
		t.Error("rejected seek changed the scene")
	}
}

func TestMissingWindowSkipped(t *testing.T) {
	p, c := newTestProject(t, 10000)
	title, err := p.AddText("title", 5000)
	if err != nil {
		t.Fatal(err)
	}
	box, err := p.AddShape("box", renderer.KindCircle, nil, 4000)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.SeekTo(0); err != nil {
		t.Fatal(err)
	}
	if visible(t, c, title.Handle) {
		t.Fatal("title visible before its window")
	}

	p.Registry.DetachWindow(title.ID)
	if err := p.SeekTo(6000); err != nil {
		t.Fatalf("seek with a missing window failed: %v", err)
	}
	if visible(t, c, title.Handle) {
		t.Error("layer without a window was evaluated")
	}
	if !visible(t, c, box.Handle) {
		t.Error("other layers must still be evaluated")
	}
}

func TestOverrides(t *testing.T) {
	p, c := newTestProject(t, 10000)
	box, err := p.AddShape("box", renderer.KindRect, renderer.Props{renderer.PropOpacity: 1.0}, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.SetOverride(box.ID, renderer.PropOpacity, 2000, 0.3); err != nil {
		t.Fatal(err)
	}
	if err := p.SetOverride("Shape999", renderer.PropOpacity, 0, 0.1); !errors.Is(err, layer.ErrUnknownLayer) {
		t.Errorf("override on unknown layer: %v", err)
	}

	tests := []struct {
		at   float64
		want float64
	}{
		{1000, 1.0},
		{2000, 0.3},
		{2500, 0.3},
	}
	for _, tt := range tests {
		if err := p.SeekTo(tt.at); err != nil {
			t.Fatal(err)
		}
		if got, _ := renderer.Float(c, box.Handle, renderer.PropOpacity); got != tt.want {
			t.Errorf("opacity at %v = %v, want %v", tt.at, got, tt.want)
		}
	}

	ok, err := p.ClearOverride(box.ID, renderer.PropOpacity, 2000)
	if err != nil || !ok {
		t.Fatalf("ClearOverride = %v, %v", ok, err)
	}
	if got, _ := renderer.Float(c, box.Handle, renderer.PropOpacity); got != 1.0 {
		t.Errorf("opacity after clear = %v, want the default", got)
	}
}

func TestPlayFramesAndAudio(t *testing.T) {
	p, _ := newTestProject(t, 10000)
	player := &recordingPlayer{}
	if _, err := p.AddAudio(4000, 1000, player); err != nil {
		t.Fatal(err)
	}

	var ticks []int64
	done := p.Scheduler.Play(func(ms int64) { ticks = append(ticks, ms) })
	if !p.Scheduler.Playing() || p.Session.Paused() {
		t.Fatal("scheduler not playing after Play")
	}
	if again := p.Scheduler.Play(nil); again != done {
		t.Error("Play while playing must return the running driver")
	}

	s := p.Scheduler
	s.Frame(100)
	s.Frame(1600.7)
	s.Frame(2000)
	s.Frame(5600)

	if want := []int64{0, 1500, 1900, 5500}; !reflect.DeepEqual(ticks, want) {
		t.Errorf("ticks = %v, want %v", ticks, want)
	}
	want := []audioCall{{play: true, offsetMs: 500.7, volume: 1}, {}}
	if len(player.calls) != len(want) {
		t.Fatalf("audio calls = %+v", player.calls)
	}
	if c := player.calls[0]; !c.play || math.Abs(c.offsetMs-500.7) > 1e-6 || c.volume != 1 {
		t.Errorf("first call = %+v", c)
	}
	if player.calls[1].play {
		t.Error("audio not paused after its window")
	}

	s.Pause()
	s.Frame(5700)
	select {
	case <-done:
	default:
		t.Fatal("driver still running after pause")
	}
	if s.Playing() {
		t.Error("Playing() after pause")
	}
	if got := p.Session.Now(); got != 5500 {
		t.Errorf("clock = %v, want the last frame's time", got)
	}
}

func TestPauseThenPlaySameFrame(t *testing.T) {
	p, _ := newTestProject(t, 10000)
	s := p.Scheduler
	done := s.Play(nil)
	s.Frame(0)
	s.Frame(400)

	s.Pause()
	if again := s.Play(nil); again != done {
		t.Error("Play before the next frame must keep the running driver")
	}
	s.Frame(600)

	select {
	case <-done:
		t.Fatal("driver stopped although Play followed the pause")
	default:
	}
	if !s.Playing() || p.Session.Paused() {
		t.Errorf("playing=%v paused=%v", s.Playing(), p.Session.Paused())
	}
	if got := p.Session.Now(); got != 600 {
		t.Errorf("clock = %v, want 600", got)
	}
}

func TestPlayToEnd(t *testing.T) {
	p, _ := newTestProject(t, 10000)
	loadTwoLines(t, p)

	var ticks []int64
	done := p.Scheduler.Play(func(ms int64) { ticks = append(ticks, ms) })
	p.Scheduler.Frame(0)
	p.Scheduler.Frame(12000)

	select {
	case <-done:
	default:
		t.Fatal("driver still running at the end")
	}
	if ticks[len(ticks)-1] != 10000 {
		t.Errorf("last tick = %d, want 10000", ticks[len(ticks)-1])
	}
	if p.Session.Now() != 0 || !p.Session.Paused() {
		t.Errorf("after end: now=%v paused=%v", p.Session.Now(), p.Session.Paused())
	}
}

func TestSeekWhilePlayingPausesFirst(t *testing.T) {
	p, _ := newTestProject(t, 10000)
	player := &recordingPlayer{}
	if _, err := p.AddAudio(8000, 0, player); err != nil {
		t.Fatal(err)
	}
	done := p.Scheduler.Play(nil)
	p.Scheduler.Frame(0)
	p.Scheduler.Frame(500)

	if err := p.SeekTo(3000); err != nil {
		t.Fatalf("SeekTo while playing: %v", err)
	}
	select {
	case <-done:
	default:
		t.Error("driver not cancelled by seek")
	}
	if p.Scheduler.Playing() || p.Session.Now() != 3000 {
		t.Errorf("playing=%v now=%v", p.Scheduler.Playing(), p.Session.Now())
	}
	if last := player.calls[len(player.calls)-1]; last.play {
		t.Error("audio still playing after seek")
	}
}

func TestRemoveRun(t *testing.T) {
	p, c := newTestProject(t, 10000)
	loadTwoLines(t, p)
	runs := p.Runs()
	before := c.Len()

	if err := p.RemoveLayer(runs[1].ID); err != nil {
		t.Fatal(err)
	}
	if got := runs[0].X; math.Abs(got-640) > 1e-9 {
		t.Errorf("Hello x = %v, want 640 after realign", got)
	}
	if removed := before - c.Len(); removed != 1+len("world") {
		t.Errorf("removed %d drawables", removed)
	}

	for _, r := range runs[2:] {
		if err := p.RemoveLayer(r.ID); err != nil {
			t.Fatal(err)
		}
	}
	if p.Index.Len() != 1 {
		t.Errorf("Index.Len() = %d, want 1", p.Index.Len())
	}
	if err := p.RemoveLayer(runs[2].ID); !errors.Is(err, layer.ErrUnknownLayer) {
		t.Errorf("second remove: %v", err)
	}
}

func TestRunChangeRedrawsLine(t *testing.T) {
	tests := []struct {
		name   string
		change func(p *Project, world string) error
	}{
		{"importance", func(p *Project, world string) error { return p.SetImportance(world, 1) }},
		{"text", func(p *Project, world string) error {
			r, err := p.Run(world)
			if err != nil {
				return err
			}
			return r.SetText("everybody")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, c := newTestProject(t, 10000)
			loadTwoLines(t, p)
			hello, world := p.Runs()[0], p.Runs()[1]
			if err := p.SeekTo(1800); err != nil {
				t.Fatal(err)
			}
			helloLeft, _ := renderer.Float(c, hello.UnitHandles()[0], renderer.PropLeft)

			if err := tt.change(p, world.ID); err != nil {
				t.Fatal(err)
			}
			moved, _ := renderer.Float(c, hello.UnitHandles()[0], renderer.PropLeft)
			if math.Abs(moved-helloLeft) < 1e-9 {
				t.Errorf("Hello not moved on the canvas (left %.2f, run x %.2f)", moved, hello.X)
			}

			after := shown(c)
			if err := p.SeekTo(1800); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(after, shown(c)) {
				t.Error("scene after the change differs from a fresh seek")
			}
		})
	}
}

func TestApplyImportances(t *testing.T) {
	p, _ := newTestProject(t, 10000)
	loadTwoLines(t, p)

	if err := p.ApplyImportances([][]float64{{1, 0}}); err != nil {
		t.Fatal(err)
	}
	runs := p.Runs()
	if got := runs[0].EffectiveScale(); math.Abs(got-1.5) > 1e-9 {
		t.Errorf("scale = %v, want 1.5", got)
	}
	if got := runs[1].EffectiveDurationMs(); math.Abs(got-250) > 1e-9 {
		t.Errorf("duration = %v, want 250", got)
	}
	if err := p.ApplyImportances([][]float64{{}, {}, {0.7}}); err == nil {
		t.Error("importances for a missing line accepted")
	}
}

func TestLoopDoAndCancel(t *testing.T) {
	p, _ := newTestProject(t, 10000)
	loop := NewLoop(p.Scheduler, 100)
	if loop.Interval() != 10*time.Millisecond {
		t.Errorf("Interval() = %v", loop.Interval())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	if err := loop.Do(context.Background(), func() error { return p.SeekTo(2500) }); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	if p.Session.Now() != 2500 {
		t.Errorf("Now() = %v", p.Session.Now())
	}
	sentinel := errors.New("boom")
	if err := loop.Do(context.Background(), func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Errorf("Do error = %v", err)
	}
	if err := loop.Do(context.Background(), func() error { panic("bad command") }); err == nil {
		t.Error("panicking command reported no error")
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v", err)
	}
	if err := loop.Do(context.Background(), func() error { return nil }); !errors.Is(err, ErrLoopStopped) {
		t.Errorf("Do after stop = %v", err)
	}
}

func TestLoopPlaysToEnd(t *testing.T) {
	p, _ := newTestProject(t, 150)
	loop := NewLoop(p.Scheduler, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	var (
		mu    sync.Mutex
		ticks []int64
		done  <-chan struct{}
	)
	err := loop.Do(ctx, func() error {
		done = p.Scheduler.Play(func(ms int64) {
			mu.Lock()
			ticks = append(ticks, ms)
			mu.Unlock()
		})
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("playback did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	t.Logf("%d ticks", len(ticks))
	if len(ticks) == 0 || ticks[len(ticks)-1] != 150 {
		t.Errorf("ticks = %v, want to end at 150", ticks)
	}
	for i := 1; i < len(ticks); i++ {
		if ticks[i] < ticks[i-1] {
			t.Errorf("ticks not monotonic: %v", ticks)
			break
		}
	}
}

func TestApplyScript(t *testing.T) {
	p, _ := newTestProject(t, 10000)
	loadTwoLines(t, p)

	s := p.Script("two.lrc")
	if len(s.Lines) != 2 || s.Lines[1].Text != "Second line" {
		t.Fatalf("generated script = %+v", s.Lines)
	}
	s.Lines[1].Importance = []float64{1, 1}
	s.Lines[1].Instrument = "boldThreshold"
	if err := p.ApplyScript(s); err != nil {
		t.Fatalf("ApplyScript failed: %v", err)
	}

	runs := p.Runs()
	if !runs[2].Bold() || runs[2].Instrument() == nil {
		t.Error("bold instrument not applied")
	}
	if got := runs[2].EffectiveScale(); got != 1 {
		t.Errorf("bold instrument must not scale, got %v", got)
	}
	if got := runs[0].Importance(); got != 0.5 {
		t.Errorf("untouched line importance = %v", got)
	}

	s.Lines[0].Instrument = "wobble"
	if err := p.ApplyScript(s); err == nil {
		t.Error("unknown instrument accepted")
	}
}
