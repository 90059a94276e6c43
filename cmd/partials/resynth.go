package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-partials/dsp/resynth"
	"github.com/cwbudde/algo-partials/dsp/spectrum"
	"github.com/cwbudde/algo-partials/engine"
	"github.com/cwbudde/algo-partials/internal/wavio"
)

func newResynthCmd(a *app) *cobra.Command {
	var (
		bitDepth  int
		normalize bool
	)
	cmd := &cobra.Command{
		Use:   "resynth input.wav output.wav",
		Short: "Record the partials of a file and play them back through a sine bank",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := wavio.ReadFile(args[0])
			if err != nil {
				return err
			}
			a.useInput(in)
			bank, err := resynth.NewSineBank(a.settings.SampleRate)
			if err != nil {
				return err
			}

			frames := frameCount(len(in.Samples), a.settings.FFTSize, a.settings.Hop)
			e, err := a.newEngine(frames, bank)
			if err != nil {
				return err
			}
			recorded, err := a.record(cmd.Context(), in, e)
			if err != nil {
				return err
			}

			out, err := playback(cmd, e, bank, recorded, a.settings.Hop)
			if err != nil {
				return err
			}
			if normalize {
				normalizePeak(out, 0.99)
			}
			if err := wavio.WriteFile(args[1], out, in.SampleRate, bitDepth); err != nil {
				return err
			}
			a.log.Info("resynthesized",
				zap.String("output", args[1]),
				zap.Int("voices", bank.Voices()),
				zap.Float64("seconds", float64(len(out))/float64(in.SampleRate)),
			)
			return nil
		},
	}
	cmd.Flags().IntVar(&bitDepth, "bit-depth", 16, "output bit depth (16, 24, 32)")
	cmd.Flags().BoolVar(&normalize, "normalize", true, "scale the output down when it would clip")
	return cmd
}

// playback replays one pass over the recorded frames, rendering hop samples
// per frame.
func playback(cmd *cobra.Command, e *engine.Engine, bank *resynth.SineBank, frames, hop int) ([]float64, error) {
	if err := e.SetMode(engine.ModePlayback); err != nil {
		return nil, err
	}
	out := make([]float64, frames*hop)
	for i := 0; i < frames; i++ {
		if err := cmd.Context().Err(); err != nil {
			return nil, err
		}
		if _, err := e.ProcessFrame(spectrum.Frame{}); err != nil {
			return nil, fmt.Errorf("playback: %w", err)
		}
		bank.Render(out[i*hop : (i+1)*hop])
	}
	// Leaving playback stops the remaining voices.
	if err := e.SetMode(engine.ModeRecord); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizePeak scales x so that its peak does not exceed limit.
func normalizePeak(x []float64, limit float64) {
	var peak float64
	for _, v := range x {
		peak = math.Max(peak, math.Abs(v))
	}
	if peak <= limit {
		return
	}
	g := limit / peak
	for i := range x {
		x[i] *= g
	}
}
