package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ivlev/lyricsync/internal/lyrics"
	"github.com/ivlev/lyricsync/internal/renderer"
	"github.com/ivlev/lyricsync/internal/script"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var writeScript bool

	cmd := &cobra.Command{
		Use:   "inspect [transcript]",
		Short: "Parse a transcript and print its timing records",
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "[*] %s: %s mode, %d records, %d sentences\n", path, res.Mode, len(res.Records), res.Sentences())
			printTable(out, recordHeaders, recordRows(res), recordAligns)

			if len(res.Diagnostics) > 0 {
				rows := make([][]string, len(res.Diagnostics))
				for i, d := range res.Diagnostics {
					rows[i] = []string{strconv.Itoa(d.Line), d.Err.Error(), d.Reason, d.Text}
				}
				fmt.Fprintf(out, "[!] %d diagnostics\n", len(res.Diagnostics))
				printTable(out, []string{"Line", "Problem", "Detail", "Source"}, rows, []columnAlignment{alignRight})
			}

			if !writeScript {
				return nil
			}
			p, err := ctx.newProject(renderer.NewMemoryCanvas(ctx.cfg.Canvas.Width, ctx.cfg.Canvas.Height), res, 0)
			if err != nil {
				return err
			}
			dest := script.GeneratePath(script.DefaultDir)
			if err := script.Write(p.Script(path), dest); err != nil {
				return err
			}
			fmt.Fprintf(out, "[+] Importance script written: %s\n", dest)
			return nil
		},
	}
	cmd.Flags().BoolVar(&writeScript, "write-script", false, "Write a neutral importance script for the transcript")
	return cmd
}

var (
	recordHeaders = []string{"#", "Line", "Start", "Word end", "Sentence end", "End", "Text"}
	recordAligns  = []columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft}
)

func recordRows(res lyrics.Result) [][]string {
	rows := make([][]string, len(res.Records))
	for i, r := range res.Records {
		end := ""
		if r.IsSentenceEnd {
			end = "*"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Line),
			lyrics.FormatTimecode(r.StartSec),
			lyrics.FormatTimecode(r.WordEndSec),
			lyrics.FormatTimecode(r.SentenceEndSec),
			end,
			r.Text,
		}
	}
	return rows
}
