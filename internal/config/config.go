package config

import (
	"github.com/ivlev/lyricsync/internal/animtext"
)

// Config is the full configuration of a lyricsync project.
type Config struct {
	Timeline   Timeline   `yaml:"timeline" toml:"timeline"`
	Canvas     Canvas     `yaml:"canvas" toml:"canvas"`
	Text       Text       `yaml:"text" toml:"text"`
	Importance Importance `yaml:"importance" toml:"importance"`
	Lyrics     Lyrics     `yaml:"lyrics" toml:"lyrics"`
	Layers     Layers     `yaml:"layers" toml:"layers"`
	Log        Log        `yaml:"log" toml:"log"`
}

// Timeline sizes the clock. A zero duration is derived from the audio or
// the lyrics at load time.
type Timeline struct {
	DurationMs float64 `yaml:"duration_ms" toml:"duration_ms" validate:"gte=0"`
	FPS        int     `yaml:"fps" toml:"fps" validate:"gte=1,lte=240"`
}

// Canvas is the artboard the lyrics are laid out on.
type Canvas struct {
	Width  float64 `yaml:"width" toml:"width" validate:"gt=0"`
	Height float64 `yaml:"height" toml:"height" validate:"gt=0"`
}

// Text configures the look and reveal of animated lyrics.
type Text struct {
	FontFamily string  `yaml:"font_family" toml:"font_family"`
	FontSize   float64 `yaml:"font_size" toml:"font_size" validate:"gt=0"`
	Fill       string  `yaml:"fill" toml:"fill" validate:"required"`
	SpacingPx  float64 `yaml:"spacing_px" toml:"spacing_px" validate:"gte=0"`
	LineY      float64 `yaml:"line_y" toml:"line_y" validate:"gte=0"` // 0 centres lines
	Preset     string  `yaml:"preset" toml:"preset"`
	TypeAnim   string  `yaml:"type_anim" toml:"type_anim" validate:"oneof=letter word"`
	Order      string  `yaml:"order" toml:"order" validate:"oneof=forward backward"`
	Easing     string  `yaml:"easing" toml:"easing"`
}

// Importance holds the emphasis parameters importance interpolates with.
type Importance struct {
	EnlargeFactor  float64             `yaml:"enlarge_factor" toml:"enlarge_factor" validate:"gt=0"`
	SlowFactor     float64             `yaml:"slow_factor" toml:"slow_factor" validate:"gt=0"`
	BaseDurationMs float64             `yaml:"base_duration_ms" toml:"base_duration_ms" validate:"gt=0"`
	TargetColor    string              `yaml:"target_color" toml:"target_color" validate:"required"`
	BoldThreshold  float64             `yaml:"bold_threshold" toml:"bold_threshold" validate:"gte=0,lte=1"`
	ColorCutpoints []animtext.Cutpoint `yaml:"color_cutpoints" toml:"color_cutpoints" validate:"dive"`
}

// Lyrics configures the transcript parser.
type Lyrics struct {
	Mode          string  `yaml:"mode" toml:"mode" validate:"oneof=auto basic enhanced"`
	Strict        bool    `yaml:"strict" toml:"strict"`
	MaxIterations int     `yaml:"max_iterations" toml:"max_iterations" validate:"gte=1"`
	TailSec       float64 `yaml:"tail_sec" toml:"tail_sec" validate:"gt=0"`
}

// Layers holds registry defaults.
type Layers struct {
	DefaultSpanMs float64 `yaml:"default_span_ms" toml:"default_span_ms" validate:"gt=0"`
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level" toml:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `yaml:"format" toml:"format" validate:"oneof=text json"`
}

// Emphasis converts the importance section to the run parameters.
func (c *Config) Emphasis() animtext.Emphasis {
	return animtext.Emphasis{
		EnlargeFactor:  c.Importance.EnlargeFactor,
		SlowFactor:     c.Importance.SlowFactor,
		BaseDurationMs: c.Importance.BaseDurationMs,
		TargetColor:    c.Importance.TargetColor,
		BoldThreshold:  c.Importance.BoldThreshold,
		ColorCutpoints: c.Importance.ColorCutpoints,
	}
}
