// Command partials tracks the sinusoidal partials of a WAV file and
// resynthesizes them with a sine bank.
//
// Usage:
//
//	partials analyze [flags] input.wav
//	partials resynth [flags] input.wav output.wav
//	partials config [flags]
//
// Settings come from flags, PARTIALS_* environment variables and an optional
// YAML file given with --config, in that order of precedence.
//
// Examples:
//
//	partials analyze voice.wav
//	partials analyze --num-freqs 40 -o tracks.parquet voice.wav
//	partials resynth --ramp-time 0.01 voice.wav voice-sines.wav
//	partials config --window blackman > partials.yaml
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
