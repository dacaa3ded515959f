package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/lyricsync/internal/engine"
	"github.com/ivlev/lyricsync/internal/lyrics"
	"github.com/ivlev/lyricsync/internal/renderer"
	"github.com/ivlev/lyricsync/internal/system"
)

type playOptions struct {
	audio      string
	durationMs float64
	fromMs     float64
	limit      time.Duration
	stats      bool
}

func newPlayCommand(ctx *commandContext) *cobra.Command {
	var opts playOptions

	cmd := &cobra.Command{
		Use:   "play [transcript]",
		Short: "Play a project in real time and print the active lyric line",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), ctx, cmd.OutOrStdout(), args, opts)
		},
	}
	cmd.Flags().StringVar(&opts.audio, "audio", "", "Audio track (path or \"latest\" from input/audio)")
	cmd.Flags().Float64Var(&opts.durationMs, "duration", 0, "Timeline length in milliseconds (default: audio, config or last sentence end)")
	cmd.Flags().Float64Var(&opts.fromMs, "from", 0, "Start position in milliseconds")
	cmd.Flags().DurationVar(&opts.limit, "for", 0, "Stop after this much wall time (0 plays to the end)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Print process statistics after playback")
	return cmd
}

func runPlay(parent context.Context, ctx *commandContext, out io.Writer, args []string, opts playOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	runCtx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()
	if opts.limit > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, opts.limit)
		defer cancel()
	}

	path, err := ctx.transcriptPath(args)
	if err != nil {
		return err
	}
	audioPath := opts.audio
	if audioPath == latest {
		if audioPath, err = system.FindLatestAudio(defaultAudioDir); err != nil {
			return err
		}
		ctx.log.Infof("[*] Using audio: %s", audioPath)
	}

	// Transcript parsing and the ffprobe call are independent.
	var (
		res      lyrics.Result
		audioSec float64
	)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		var err error
		res, err = ctx.readTranscript(path)
		return err
	})
	if audioPath != "" {
		g.Go(func() error {
			var err error
			audioSec, err = system.GetAudioDuration(gctx, audioPath)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	durationMs := opts.durationMs
	if durationMs <= 0 && audioSec > 0 {
		durationMs = math.Round(audioSec * 1000)
		ctx.log.Infof("[*] Timeline length set from audio: %.2fs", audioSec)
	}

	canvas := renderer.NewMemoryCanvas(ctx.cfg.Canvas.Width, ctx.cfg.Canvas.Height)
	p, err := ctx.newProject(canvas, res, durationMs)
	if err != nil {
		return err
	}
	if audioPath != "" {
		player := &engine.LogPlayer{Name: filepath.Base(audioPath), Log: ctx.log}
		if _, err := p.AddAudio(audioSec*1000, 0, player); err != nil {
			return err
		}
	}
	if err := p.SeekTo(opts.fromMs); err != nil {
		return err
	}

	loop := engine.NewLoop(p.Scheduler, ctx.cfg.Timeline.FPS)
	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(runCtx) }()

	fmt.Fprintf(out, "[*] Playing %s from %s to %s at %d fps\n",
		filepath.Base(path), formatMs(opts.fromMs), formatMs(p.Session.Duration()), ctx.cfg.Timeline.FPS)

	started := time.Now()
	var frames int
	var shown string
	var done <-chan struct{}
	err = loop.Do(runCtx, func() error {
		done = p.Scheduler.Play(func(ms int64) {
			frames++
			if line := activeLine(p, float64(ms)); line != shown {
				shown = line
				if line != "" {
					fmt.Fprintf(out, "[>] %s  %s\n", formatMs(float64(ms)), line)
				}
			}
		})
		return nil
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
	case <-runCtx.Done():
	}
	stop()
	if err := <-loopErr; err != nil && runCtx.Err() == nil {
		return err
	}

	elapsed := time.Since(started)
	fmt.Fprintf(out, "[+] Stopped at %s after %s, %d frames\n",
		formatMs(p.Session.Now()), elapsed.Round(time.Millisecond), frames)

	if opts.stats {
		printStats(out, ctx, frames, elapsed)
	}
	return nil
}

// activeLine returns the words visible at t, in line order.
func activeLine(p *engine.Project, t float64) string {
	var words []string
	for _, r := range p.Index.FindActiveAndNext(t) {
		w, ok := p.Registry.Window(r.ID)
		if ok && w.VisibleAt(t, p.Session.Duration()) {
			words = append(words, r.Text)
		}
	}
	return strings.Join(words, " ")
}

func printStats(out io.Writer, ctx *commandContext, frames int, elapsed time.Duration) {
	s, err := system.CollectStats()
	if err != nil {
		ctx.log.WithError(err).Warn("[!] process stats unavailable")
		return
	}
	fps := 0.0
	if elapsed > 0 {
		fps = float64(frames) / elapsed.Seconds()
	}
	rows := [][]string{
		{"Frames", fmt.Sprintf("%d", frames)},
		{"Effective FPS", fmt.Sprintf("%.1f", fps)},
		{"Goroutines", fmt.Sprintf("%d", s.Goroutines)},
		{"RSS", formatBytes(s.RSSBytes)},
		{"CPU", fmt.Sprintf("%.1f%%", s.CPUPercent)},
		{"Host memory", fmt.Sprintf("%s (%.1f%% used)", formatBytes(s.HostTotal), s.HostUsedPerc)},
	}
	printTable(out, []string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}
