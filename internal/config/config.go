// Package config loads analysis settings from defaults, a YAML file and
// PARTIALS_* environment variables through viper, and turns them into the
// option sets of the library packages.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-partials/dsp/core"
	"github.com/cwbudde/algo-partials/dsp/spectrum"
	"github.com/cwbudde/algo-partials/engine"
)

// EnvPrefix is prepended to environment overrides, e.g. PARTIALS_NUM_FREQS.
const EnvPrefix = "PARTIALS"

// Log holds logger settings.
type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Settings is the full configuration of the command line tools.
type Settings struct {
	SampleRate float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	FFTSize    int     `mapstructure:"fft_size" yaml:"fft_size"`
	Hop        int     `mapstructure:"hop" yaml:"hop"`
	Window     string  `mapstructure:"window" yaml:"window"`
	Scale      string  `mapstructure:"scale" yaml:"scale"`
	Backend    string  `mapstructure:"fft_backend" yaml:"fft_backend"`
	Smoothing  float64 `mapstructure:"smoothing" yaml:"smoothing"`

	Cutoff                   float64 `mapstructure:"cutoff" yaml:"cutoff"`
	NumFreqs                 int     `mapstructure:"num_freqs" yaml:"num_freqs"`
	MinDB                    float64 `mapstructure:"min_db" yaml:"min_db"`
	MaxDB                    float64 `mapstructure:"max_db" yaml:"max_db"`
	PartialDistanceThreshold float64 `mapstructure:"partial_distance_threshold" yaml:"partial_distance_threshold"`
	RampTime                 float64 `mapstructure:"ramp_time" yaml:"ramp_time"`
	// Nyquist of zero means half the sample rate.
	Nyquist float64 `mapstructure:"nyquist" yaml:"nyquist"`

	HistoryFrames int  `mapstructure:"history_frames" yaml:"history_frames"`
	HistoryWrap   bool `mapstructure:"history_wrap" yaml:"history_wrap"`
	LiveResynth   bool `mapstructure:"live_resynth" yaml:"live_resynth"`

	Log Log `mapstructure:"log" yaml:"log"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	ec := engine.DefaultConfig()
	return Settings{
		SampleRate:               44100,
		FFTSize:                  2048,
		Hop:                      1024,
		Window:                   spectrum.WindowHann.String(),
		Scale:                    spectrum.ScaleDecibel.String(),
		Backend:                  spectrum.BackendAlgoFFT.String(),
		Smoothing:                0.8,
		Cutoff:                   ec.Cutoff,
		NumFreqs:                 ec.NumFreqs,
		MinDB:                    ec.MinDB,
		MaxDB:                    ec.MaxDB,
		PartialDistanceThreshold: ec.Threshold,
		RampTime:                 ec.RampTime,
		HistoryFrames:            ec.HistoryFrames,
		Log:                      Log{Level: "info", Format: "console"},
	}
}

// SetDefaults registers every key of Defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("fft_size", d.FFTSize)
	v.SetDefault("hop", d.Hop)
	v.SetDefault("window", d.Window)
	v.SetDefault("scale", d.Scale)
	v.SetDefault("fft_backend", d.Backend)
	v.SetDefault("smoothing", d.Smoothing)
	v.SetDefault("cutoff", d.Cutoff)
	v.SetDefault("num_freqs", d.NumFreqs)
	v.SetDefault("min_db", d.MinDB)
	v.SetDefault("max_db", d.MaxDB)
	v.SetDefault("partial_distance_threshold", d.PartialDistanceThreshold)
	v.SetDefault("ramp_time", d.RampTime)
	v.SetDefault("nyquist", d.Nyquist)
	v.SetDefault("history_frames", d.HistoryFrames)
	v.SetDefault("history_wrap", d.HistoryWrap)
	v.SetDefault("live_resynth", d.LiveResynth)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Load reads settings into v from defaults, the optional YAML file and the
// environment, then decodes and validates them. Flags bound to v before
// Load take precedence over all three.
func Load(v *viper.Viper, file string) (Settings, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks the settings that the library constructors cannot check
// on their own, and that the names parse.
func (s Settings) Validate() error {
	var errs []error
	if !(s.SampleRate > 0) {
		errs = append(errs, fmt.Errorf("sample_rate must be > 0: %v", s.SampleRate))
	}
	if s.FFTSize <= 0 {
		errs = append(errs, fmt.Errorf("fft_size must be > 0: %d", s.FFTSize))
	}
	if s.Hop <= 0 {
		errs = append(errs, fmt.Errorf("hop must be > 0: %d", s.Hop))
	}
	if _, err := spectrum.ParseWindow(s.Window); err != nil {
		errs = append(errs, err)
	}
	if _, err := spectrum.ParseScale(s.Scale); err != nil {
		errs = append(errs, err)
	}
	if _, err := spectrum.ParseBackend(s.Backend); err != nil {
		errs = append(errs, err)
	}
	if err := s.EngineConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// AnalyzerOptions returns the spectrum analyzer options of s.
func (s Settings) AnalyzerOptions() ([]spectrum.AnalyzerOption, error) {
	win, err := spectrum.ParseWindow(s.Window)
	if err != nil {
		return nil, err
	}
	scale, err := spectrum.ParseScale(s.Scale)
	if err != nil {
		return nil, err
	}
	backend, err := spectrum.ParseBackend(s.Backend)
	if err != nil {
		return nil, err
	}
	return []spectrum.AnalyzerOption{
		spectrum.WithProcessor(
			core.WithSampleRate(s.SampleRate),
			core.WithFFTSize(s.FFTSize),
			core.WithHopSize(s.Hop),
		),
		spectrum.WithWindow(win),
		spectrum.WithScale(scale),
		spectrum.WithBackend(backend),
		spectrum.WithSmoothing(s.Smoothing),
	}, nil
}

// EngineConfig returns the engine part of s.
func (s Settings) EngineConfig() engine.Config {
	nyquist := s.Nyquist
	if nyquist == 0 {
		nyquist = s.SampleRate / 2
	}
	return engine.Config{
		Cutoff:        s.Cutoff,
		NumFreqs:      s.NumFreqs,
		MinDB:         s.MinDB,
		MaxDB:         s.MaxDB,
		Threshold:     s.PartialDistanceThreshold,
		RampTime:      s.RampTime,
		Nyquist:       nyquist,
		HistoryFrames: s.HistoryFrames,
		HistoryWrap:   s.HistoryWrap,
		LiveResynth:   s.LiveResynth,
	}
}

// FrameSeconds returns the time between analysis frames.
func (s Settings) FrameSeconds() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(s.Hop) / s.SampleRate
}

// YAML encodes s in the format Load reads.
func (s Settings) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}
