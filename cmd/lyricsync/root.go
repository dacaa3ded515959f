package main

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ivlev/lyricsync/internal/animtext"
	"github.com/ivlev/lyricsync/internal/config"
	"github.com/ivlev/lyricsync/internal/effects"
	"github.com/ivlev/lyricsync/internal/engine"
	"github.com/ivlev/lyricsync/internal/lyrics"
	"github.com/ivlev/lyricsync/internal/renderer"
	"github.com/ivlev/lyricsync/internal/script"
	"github.com/ivlev/lyricsync/internal/system"
)

const (
	defaultLyricsDir = "input/lyrics"
	defaultAudioDir  = "input/audio"
	latest           = "latest"
)

type commandContext struct {
	configFlag   string
	scriptFlag   string
	modeFlag     string
	logLevelFlag string
	strictFlag   bool

	cfg *config.Config
	log *logrus.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "lyricsync",
		Short:         "Lyric timing and playback engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return ctx.load(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file (.yaml or .toml)")
	flags.StringVar(&ctx.scriptFlag, "script", "", "Importance script to apply (path or \"latest\")")
	flags.StringVar(&ctx.modeFlag, "mode", "", "Transcript mode: auto, basic, enhanced")
	flags.BoolVar(&ctx.strictFlag, "strict", false, "Reject malformed word timestamps")
	flags.StringVar(&ctx.logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newRenderCommand(ctx))
	rootCmd.AddCommand(newPlayCommand(ctx))
	return rootCmd
}

// load reads the config and applies the global flag overrides. A .env file
// in the working directory may supply LYRICSYNC_CONFIG and
// LYRICSYNC_LOG_LEVEL; flags win over both.
func (c *commandContext) load(cmd *cobra.Command) error {
	envLoaded := godotenv.Load() == nil

	path := strings.TrimSpace(c.configFlag)
	if path == "" {
		path = os.Getenv("LYRICSYNC_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if c.modeFlag != "" {
		cfg.Lyrics.Mode = c.modeFlag
	}
	if cmd.Flags().Changed("strict") {
		cfg.Lyrics.Strict = c.strictFlag
	}
	if lvl := os.Getenv("LYRICSYNC_LOG_LEVEL"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if c.logLevelFlag != "" {
		cfg.Log.Level = c.logLevelFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	c.cfg, c.log = cfg, log
	if envLoaded {
		log.Debug("loaded environment from .env")
	}
	return nil
}

// transcriptPath resolves the positional argument, falling back to the
// newest transcript in input/lyrics.
func (c *commandContext) transcriptPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != latest {
		return args[0], nil
	}
	path, err := system.FindLatestLyrics(defaultLyricsDir)
	if err != nil {
		return "", fmt.Errorf("%w. Put a transcript into %s/", err, defaultLyricsDir)
	}
	c.log.Infof("[*] Using transcript: %s", path)
	return path, nil
}

func (c *commandContext) readTranscript(path string) (lyrics.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return lyrics.Result{}, err
	}
	defer f.Close()

	p := lyrics.NewParser(lyrics.Options{
		Mode:          lyrics.Mode(c.cfg.Lyrics.Mode),
		Strict:        c.cfg.Lyrics.Strict,
		MaxIterations: c.cfg.Lyrics.MaxIterations,
		TailSec:       c.cfg.Lyrics.TailSec,
	}, c.log)
	return p.Parse(f)
}

// newProject builds a project on canvas, loads the lyrics and applies the
// importance script when one is given.
func (c *commandContext) newProject(canvas renderer.Canvas, res lyrics.Result, durationMs float64) (*engine.Project, error) {
	cfg := c.cfg
	if durationMs <= 0 {
		durationMs = cfg.Timeline.DurationMs
	}
	if durationMs <= 0 {
		durationMs = math.Max(math.Round(res.EndSec()*1000), 1)
	}

	p, err := engine.NewProject(canvas, engine.Options{
		DurationMs: durationMs,
		Width:      cfg.Canvas.Width,
		Height:     cfg.Canvas.Height,
		Font:       renderer.Font{Family: cfg.Text.FontFamily, Size: cfg.Text.FontSize},
		LineY:      cfg.Text.LineY,
		SpacingPx:  cfg.Text.SpacingPx,
		Style: animtext.Style{
			Preset:   cfg.Text.Preset,
			TypeAnim: effects.TypeAnim(cfg.Text.TypeAnim),
			Order:    effects.Order(cfg.Text.Order),
			Easing:   cfg.Text.Easing,
			Fill:     cfg.Text.Fill,
		},
		Emphasis:      cfg.Emphasis(),
		DefaultSpanMs: cfg.Layers.DefaultSpanMs,
		Log:           c.log,
	})
	if err != nil {
		return nil, err
	}
	if err := p.LoadLyrics(res); err != nil {
		return nil, err
	}

	if c.scriptFlag == "" {
		return p, nil
	}
	path := c.scriptFlag
	if path == latest {
		if path, err = script.FindLatest(script.DefaultDir); err != nil {
			return nil, err
		}
	}
	s, err := script.Read(path)
	if err != nil {
		return nil, err
	}
	if err := p.ApplyScript(s); err != nil {
		c.log.WithError(err).Warn("[!] importance script partially applied")
	}
	c.log.Infof("[*] Applied importance script: %s", path)
	return p, nil
}
