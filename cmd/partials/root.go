package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-partials/internal/config"
	"github.com/cwbudde/algo-partials/internal/logging"
)

// flagKeys maps flag names to configuration keys where the two differ by
// more than dashes.
var flagKeys = map[string]string{
	"threshold":   "partial_distance_threshold",
	"log-level":   "log.level",
	"log-format":  "log.format",
	"fft-backend": "fft_backend",
}

// app carries the state shared by all subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	settings   config.Settings
	log        *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}
	d := config.Defaults()

	cmd := &cobra.Command{
		Use:           "partials",
		Short:         "Spectral partial tracking and sine resynthesis",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "YAML config file")
	pf.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	pf.String("log-format", d.Log.Format, "log encoding (console, json)")

	pf.Int("fft-size", d.FFTSize, "FFT length in samples (power of two)")
	pf.Int("hop", d.Hop, "samples between analysis frames")
	pf.String("window", d.Window, "analysis window (hann, hamming, blackman, bartlett, flattop, rectangular)")
	pf.String("scale", d.Scale, "spectrum scale (db, linear)")
	pf.String("fft-backend", d.Backend, "FFT implementation (algofft, gonum)")
	pf.Float64("smoothing", d.Smoothing, "spectrum time averaging in [0, 1)")

	pf.Float64("cutoff", d.Cutoff, "minimum peak steepness")
	pf.Int("num-freqs", d.NumFreqs, "peaks kept per frame")
	pf.Float64("min-db", d.MinDB, "peak floor and silent end of the gain range")
	pf.Float64("max-db", d.MaxDB, "full-scale end of the gain range")
	pf.Float64("threshold", d.PartialDistanceThreshold, "partial matching distance in semitones")
	pf.Float64("ramp-time", d.RampTime, "oscillator glide time in seconds")
	pf.Int("history-frames", d.HistoryFrames, "recorded frames kept for playback")
	pf.Bool("history-wrap", d.HistoryWrap, "drop the oldest frame instead of clearing a full history")

	cmd.AddCommand(newAnalyzeCmd(a), newResynthCmd(a), newConfigCmd(a))
	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	if err := bindFlags(cmd, a.v); err != nil {
		return err
	}
	s, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	log, err := logging.New(
		logging.WithLevel(s.Log.Level),
		logging.WithFormat(s.Log.Format),
		logging.WithOutput(cmd.ErrOrStderr()),
	)
	if err != nil {
		return err
	}
	a.settings = s
	a.log = log
	if a.configFile != "" {
		a.log.Debug("config loaded", zap.String("file", a.configFile))
	}
	return nil
}

// bindFlags binds the persistent flags of the root command to their
// configuration keys.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error
	cmd.Root().PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}
		if err := v.BindPFlag(key, f); err != nil {
			lastErr = err
		}
	})
	return lastErr
}
