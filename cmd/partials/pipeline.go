package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-partials/dsp/resynth"
	"github.com/cwbudde/algo-partials/dsp/spectrum"
	"github.com/cwbudde/algo-partials/engine"
	"github.com/cwbudde/algo-partials/internal/wavio"
)

// frameCount returns how many frames Analyzer.Frames yields for n samples.
func frameCount(n, fftSize, hop int) int {
	if n == 0 || hop <= 0 {
		return 0
	}
	start := min(fftSize, n)
	return (n-start)/hop + 1
}

// useInput adopts the sample rate of the file being analyzed.
func (a *app) useInput(in wavio.Audio) {
	a.settings.SampleRate = float64(in.SampleRate)
}

func (a *app) newAnalyzer() (*spectrum.Analyzer, error) {
	opts, err := a.settings.AnalyzerOptions()
	if err != nil {
		return nil, err
	}
	return spectrum.NewAnalyzer(opts...)
}

// newEngine builds an engine whose history holds at least frames frames, so
// an offline run keeps the whole file.
func (a *app) newEngine(frames int, bank resynth.OscillatorBank, opts ...engine.Option) (*engine.Engine, error) {
	cfg := a.settings.EngineConfig()
	cfg.HistoryFrames = max(cfg.HistoryFrames, frames, 1)
	opts = append([]engine.Option{engine.WithLogger(a.log)}, opts...)
	return engine.New(cfg, bank, opts...)
}

// record analyzes in and feeds every frame to e in record mode.
func (a *app) record(ctx context.Context, in wavio.Audio, e *engine.Engine) (int, error) {
	an, err := a.newAnalyzer()
	if err != nil {
		return 0, err
	}

	var frames int
	err = an.Frames(in.Samples, an.Config().HopSize, func(f spectrum.Frame) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := e.ProcessFrame(f); err != nil {
			return err
		}
		frames++
		return nil
	})
	if err != nil {
		return frames, fmt.Errorf("analyze: %w", err)
	}

	a.log.Info("recorded",
		zap.Int("frames", frames),
		zap.Int("partials", int(e.NextID())-1),
		zap.Float64("seconds", in.Duration()),
	)
	return frames, nil
}
