package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-partials/engine"
	"github.com/cwbudde/algo-partials/internal/export"
	"github.com/cwbudde/algo-partials/internal/wavio"
	"github.com/cwbudde/algo-partials/stats/tracks"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		output string
		format string
	)
	cmd := &cobra.Command{
		Use:   "analyze input.wav",
		Short: "Track partials and print statistics or export the peaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := wavio.ReadFile(args[0])
			if err != nil {
				return err
			}
			a.useInput(in)
			frameSeconds := a.settings.FrameSeconds()

			var (
				opts     []engine.Option
				w        *export.Writer
				closeOut = func() error { return nil }
			)
			if output != "" {
				dst, closer, err := openOutput(cmd, output)
				if err != nil {
					return err
				}
				closeOut = closer
				defer func() { _ = closeOut() }()

				if format == "" {
					format = filepath.Ext(output)
				}
				if format == "" {
					format = "csv"
				}
				f, err := export.ParseFormat(format)
				if err != nil {
					return err
				}
				if w, err = export.NewWriter(f, dst, frameSeconds); err != nil {
					return err
				}
				opts = append(opts, engine.WithDisplay(w))
			}

			frames := frameCount(len(in.Samples), a.settings.FFTSize, a.settings.Hop)
			e, err := a.newEngine(frames, nil, opts...)
			if err != nil {
				return err
			}
			if _, err := a.record(cmd.Context(), in, e); err != nil {
				return err
			}

			if w != nil {
				if err := w.Close(); err != nil {
					return fmt.Errorf("export: %w", err)
				}
				err := closeOut()
				closeOut = func() error { return nil }
				if err != nil || output == "-" {
					return err
				}
			}
			return printSummary(cmd.OutOrStdout(), args[0], tracks.Summarize(e.Frames(), frameSeconds))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "export peaks to this file (- for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "export format (csv, json, parquet); default from the file extension")
	return cmd
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func printSummary(out io.Writer, name string, s tracks.Summary) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file\t%s\n", name)
	fmt.Fprintf(tw, "frames\t%d\n", s.Frames)
	fmt.Fprintf(tw, "partials\t%d\n", s.Partials)
	fmt.Fprintf(tw, "peaks/frame\t%.2f\n", s.MeanPeaks)
	fmt.Fprintf(tw, "births/frame\t%.2f\n", s.MeanBirths)
	fmt.Fprintf(tw, "deaths/frame\t%.2f\n", s.MeanDeaths)
	fmt.Fprintf(tw, "lifetime mean\t%.2f frames (%.3f s)\n", s.MeanLifetime, s.MeanLifetimeSeconds)
	fmt.Fprintf(tw, "lifetime median\t%.0f frames\n", s.MedianLifetime)
	fmt.Fprintf(tw, "lifetime max\t%.0f frames\n", s.MaxLifetime)
	return tw.Flush()
}
