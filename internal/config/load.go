package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/lyricsync/internal/effects"
	"github.com/ivlev/lyricsync/internal/renderer"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

var validate = validator.New()

// Load reads a YAML or TOML file over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return &cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints, colours, the reveal preset and the
// easing name.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	colours := map[string]string{
		"text.fill":               c.Text.Fill,
		"importance.target_color": c.Importance.TargetColor,
	}
	for i, cp := range c.Importance.ColorCutpoints {
		colours[fmt.Sprintf("importance.color_cutpoints[%d]", i)] = cp.Color
	}
	for key, v := range colours {
		if _, err := renderer.ParseColor(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
		}
	}

	if _, err := effects.NewEffect(c.Text.Preset); err != nil {
		return fmt.Errorf("%w: text.preset: %v", ErrInvalid, err)
	}
	if _, err := renderer.EasingByName(c.Text.Easing); err != nil {
		return fmt.Errorf("%w: text.easing: %v", ErrInvalid, err)
	}
	return nil
}
