package config

import (
	"github.com/ivlev/lyricsync/internal/animtext"
	"github.com/ivlev/lyricsync/internal/effects"
	"github.com/ivlev/lyricsync/internal/layer"
	"github.com/ivlev/lyricsync/internal/lyrics"
)

const (
	defaultFPS        = 60
	defaultWidth      = 1920
	defaultHeight     = 1080
	defaultFontFamily = "Arial"
	defaultFontSize   = 72
	defaultFill       = "#ffffff"
	defaultSpacingPx  = 20
	defaultEasing     = "easeInQuad"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
)

// Default returns a Config populated with the built-in values.
func Default() Config {
	e := animtext.DefaultEmphasis()
	return Config{
		Timeline: Timeline{FPS: defaultFPS},
		Canvas:   Canvas{Width: defaultWidth, Height: defaultHeight},
		Text: Text{
			FontFamily: defaultFontFamily,
			FontSize:   defaultFontSize,
			Fill:       defaultFill,
			SpacingPx:  defaultSpacingPx,
			Preset:     effects.DefaultPreset,
			TypeAnim:   string(effects.Letter),
			Order:      string(effects.Forward),
			Easing:     defaultEasing,
		},
		Importance: Importance{
			EnlargeFactor:  e.EnlargeFactor,
			SlowFactor:     e.SlowFactor,
			BaseDurationMs: e.BaseDurationMs,
			TargetColor:    e.TargetColor,
			BoldThreshold:  e.BoldThreshold,
			ColorCutpoints: []animtext.Cutpoint{
				{Threshold: 0.7, Color: "orange"},
				{Threshold: 0.9, Color: "#ff0000"},
			},
		},
		Lyrics: Lyrics{
			Mode:          string(lyrics.ModeAuto),
			MaxIterations: lyrics.DefaultMaxIterations,
			TailSec:       lyrics.DefaultTailSec,
		},
		Layers: Layers{DefaultSpanMs: layer.DefaultSpanMs},
		Log:    Log{Level: defaultLogLevel, Format: defaultLogFormat},
	}
}
