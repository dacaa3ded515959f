package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ivlev/lyricsync/internal/engine"
	"github.com/ivlev/lyricsync/internal/renderer"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var atMs float64
	var durationMs float64
	var hidden bool

	cmd := &cobra.Command{
		Use:   "render [transcript]",
		Short: "Seek a project to a time and print the scene",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.transcriptPath(args)
			if err != nil {
				return err
			}
			res, err := ctx.readTranscript(path)
			if err != nil {
				return err
			}

			canvas := renderer.NewMemoryCanvas(ctx.cfg.Canvas.Width, ctx.cfg.Canvas.Height)
			p, err := ctx.newProject(canvas, res, durationMs)
			if err != nil {
				return err
			}
			if err := p.SeekTo(atMs); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[*] Scene at %s of %s\n", formatMs(atMs), formatMs(p.Session.Duration()))
			printTable(out, []string{"Layer", "Kind", "Start", "End", "Tag"}, layerRows(p),
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight})
			printTable(out, objectHeaders, objectRows(canvas, hidden), objectAligns)
			return nil
		},
	}
	cmd.Flags().Float64Var(&atMs, "at", 0, "Timeline position in milliseconds")
	cmd.Flags().Float64Var(&durationMs, "duration", 0, "Timeline length in milliseconds (default: config or last sentence end)")
	cmd.Flags().BoolVar(&hidden, "all", false, "Include hidden drawables")
	return cmd
}

func layerRows(p *engine.Project) [][]string {
	var rows [][]string
	for _, l := range p.Registry.Layers() {
		w, ok := p.Registry.Window(l.ID)
		start, end := "-", "-"
		if ok {
			start, end = formatMs(w.EffectiveStart()), formatMs(w.End)
		}
		rows = append(rows, []string{l.ID, l.Kind().String(), start, end, l.Color})
	}
	return rows
}

var (
	objectHeaders = []string{"Handle", "Kind", "Text", "Left", "Top", "Scale", "Opacity", "Fill", "Weight"}
	objectAligns  = []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
)

func objectRows(c *renderer.MemoryCanvas, hidden bool) [][]string {
	var rows [][]string
	for _, obj := range c.Snapshot() {
		if v, _ := obj.Props[renderer.PropVisible].(bool); !v && !hidden {
			continue
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(obj.Handle), 10),
			string(obj.Kind),
			formatValue(obj.Props[renderer.PropText]),
			formatValue(obj.Props[renderer.PropLeft]),
			formatValue(obj.Props[renderer.PropTop]),
			formatValue(obj.Props[renderer.PropScaleX]),
			formatValue(obj.Props[renderer.PropOpacity]),
			formatValue(obj.Props[renderer.PropFill]),
			formatValue(obj.Props[renderer.PropFontWeight]),
		})
	}
	return rows
}
