package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/ivlev/lyricsync/internal/layer"
	"github.com/ivlev/lyricsync/internal/renderer"
)

// AudioPlayer is the playback handle behind an audio layer.
type AudioPlayer = layer.AudioPlayer

// audioSync keeps audio players in step with the clock: visible audio plays
// from its offset into the media, everything else is paused.
type audioSync struct {
	reg     *layer.Registry
	log     logrus.FieldLogger
	playing map[string]bool
}

func newAudioSync(reg *layer.Registry, log logrus.FieldLogger) *audioSync {
	return &audioSync{reg: reg, log: log, playing: make(map[string]bool)}
}

// sync starts or pauses every audio layer for time t.
func (a *audioSync) sync(t, durationMs float64, running bool) {
	for _, l := range a.reg.Layers() {
		asset, ok := l.Asset.(layer.Audio)
		if !ok || asset.Player == nil {
			continue
		}
		w, ok := a.reg.Window(l.ID)
		audible := ok && running && w.VisibleAt(t, durationMs)

		switch {
		case audible && !a.playing[l.ID]:
			volume := 1.0
			if v, ok := a.reg.Overrides().ValueAt(l, renderer.PropVolume, t); ok {
				if f, ok := renderer.ToFloat(v); ok {
					volume = f
				}
			}
			if err := asset.Player.PlayFrom(t-w.Start, volume); err != nil {
				a.log.WithError(err).WithField("layer", l.ID).Warn("[!] audio start failed")
				continue
			}
			a.playing[l.ID] = true
		case !audible && a.playing[l.ID]:
			a.pause(l.ID, asset.Player)
		}
	}
}

// stopAll pauses every player that is running.
func (a *audioSync) stopAll() {
	for id := range a.playing {
		l, ok := a.reg.Layer(id)
		if !ok {
			delete(a.playing, id)
			continue
		}
		if asset, ok := l.Asset.(layer.Audio); ok && asset.Player != nil {
			a.pause(id, asset.Player)
		}
	}
}

func (a *audioSync) pause(id string, p AudioPlayer) {
	if err := p.Pause(); err != nil {
		a.log.WithError(err).WithField("layer", id).Warn("[!] audio pause failed")
	}
	delete(a.playing, id)
}

// LogPlayer is an AudioPlayer that only reports what it would play. The
// engine does not decode audio; the CLI uses it to show audio cues.
type LogPlayer struct {
	Name string
	Log  logrus.FieldLogger
}

func (p *LogPlayer) PlayFrom(offsetMs, volume float64) error {
	p.Log.WithFields(logrus.Fields{"audio": p.Name, "offset_ms": offsetMs, "volume": volume}).Info("[>] audio play")
	return nil
}

func (p *LogPlayer) Pause() error {
	p.Log.WithField("audio", p.Name).Info("[>] audio pause")
	return nil
}
