package spectrum

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-partials/dsp/core"
)

const (
	defaultSmoothing = 0.8
	defaultMinDB     = -140.0
	magnitudeEps     = 1e-12
)

// AnalyzerOption mutates analyzer construction parameters.
type AnalyzerOption func(*analyzerConfig) error

type analyzerConfig struct {
	proc      core.ProcessorConfig
	window    WindowType
	scale     Scale
	backend   Backend
	smoothing float64
	minDB     float64
}

func defaultAnalyzerConfig() analyzerConfig {
	return analyzerConfig{
		proc:      core.DefaultProcessorConfig(),
		window:    WindowHann,
		scale:     ScaleDecibel,
		backend:   BackendAlgoFFT,
		smoothing: defaultSmoothing,
		minDB:     defaultMinDB,
	}
}

// WithProcessor applies shared processor options (sample rate, FFT size, hop).
func WithProcessor(opts ...core.ProcessorOption) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.proc)
			}
		}
		return nil
	}
}

// WithSampleRate sets the input sample rate in Hz.
func WithSampleRate(sampleRate float64) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if sampleRate <= 0 || !core.IsFinite(sampleRate) {
			return fmt.Errorf("spectrum sample rate must be > 0 and finite: %f", sampleRate)
		}
		cfg.proc.SampleRate = sampleRate
		return nil
	}
}

// WithFFTSize sets the analysis length. It must be a power of two.
func WithFFTSize(size int) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if err := validateFFTSize(size); err != nil {
			return err
		}
		cfg.proc.FFTSize = size
		return nil
	}
}

// WithWindow selects the analysis window.
func WithWindow(w WindowType) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if _, ok := windowNames[w]; !ok {
			return fmt.Errorf("%w: %d", errUnknownWindow, int(w))
		}
		cfg.window = w
		return nil
	}
}

// WithScale selects linear or decibel output.
func WithScale(s Scale) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if s != ScaleDecibel && s != ScaleLinear {
			return fmt.Errorf("%w: %d", errUnknownScale, int(s))
		}
		cfg.scale = s
		return nil
	}
}

// WithBackend selects the FFT implementation.
func WithBackend(b Backend) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if b != BackendAlgoFFT && b != BackendGonum {
			return fmt.Errorf("%w: %d", errUnknownFFT, int(b))
		}
		cfg.backend = b
		return nil
	}
}

// WithSmoothing sets the time-averaging constant in [0, 1). Zero disables
// averaging between frames.
func WithSmoothing(tau float64) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if tau < 0 || tau >= 1 || math.IsNaN(tau) {
			return fmt.Errorf("spectrum smoothing must be in [0, 1): %f", tau)
		}
		cfg.smoothing = tau
		return nil
	}
}

// WithMinDB sets the floor applied to decibel output.
func WithMinDB(db float64) AnalyzerOption {
	return func(cfg *analyzerConfig) error {
		if !core.IsFinite(db) {
			return fmt.Errorf("spectrum min dB must be finite: %f", db)
		}
		cfg.minDB = db
		return nil
	}
}

// Analyzer produces one spectrum frame per call from the most recent samples.
//
// An Analyzer keeps smoothing state between calls and reuses its buffers; it
// is not safe for concurrent use.
type Analyzer struct {
	cfg  analyzerConfig
	win  []float64
	norm float64
	fft  transformer

	frame    []float64
	bins     []complex128
	mag      []float64
	smoothed []float64
	primed   bool
	index    uint64
}

// NewAnalyzer creates an analyzer with practical defaults and optional overrides.
func NewAnalyzer(opts ...AnalyzerOption) (*Analyzer, error) {
	cfg := defaultAnalyzerConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if err := validateFFTSize(cfg.proc.FFTSize); err != nil {
		return nil, err
	}
	if cfg.proc.SampleRate <= 0 {
		return nil, fmt.Errorf("spectrum sample rate must be > 0: %f", cfg.proc.SampleRate)
	}

	size := cfg.proc.FFTSize
	win, err := cfg.window.Coefficients(size)
	if err != nil {
		return nil, err
	}
	fft, err := newTransformer(cfg.backend, size)
	if err != nil {
		return nil, err
	}

	bins := size / 2
	return &Analyzer{
		cfg:      cfg,
		win:      win,
		norm:     1 / float64(size),
		fft:      fft,
		frame:    make([]float64, size),
		bins:     make([]complex128, bins),
		mag:      make([]float64, bins),
		smoothed: make([]float64, bins),
	}, nil
}

// Config returns the processor settings in effect.
func (a *Analyzer) Config() core.ProcessorConfig { return a.cfg.proc }

// Nyquist returns half the sample rate.
func (a *Analyzer) Nyquist() float64 { return a.cfg.proc.Nyquist() }

// BinCount returns the number of bins per frame.
func (a *Analyzer) BinCount() int { return len(a.mag) }

// Scale returns the output unit.
func (a *Analyzer) Scale() Scale { return a.cfg.scale }

// Reset clears smoothing state and the frame counter.
func (a *Analyzer) Reset() {
	core.Zero(a.smoothed)
	a.primed = false
	a.index = 0
}

// Analyze computes a frame from the last FFTSize samples of signal. Shorter
// input is zero padded at the front so the newest sample stays last.
func (a *Analyzer) Analyze(signal []float64) (Frame, error) {
	if len(signal) == 0 {
		return Frame{}, errEmptySignal
	}

	size := len(a.frame)
	core.Zero(a.frame)
	if len(signal) >= size {
		copy(a.frame, signal[len(signal)-size:])
	} else {
		copy(a.frame[size-len(signal):], signal)
	}
	for i := range a.frame {
		a.frame[i] *= a.win[i]
	}

	if err := a.fft.forward(a.bins, a.frame); err != nil {
		return Frame{}, fmt.Errorf("spectrum forward fft: %w", err)
	}
	MagnitudeInto(a.mag, a.bins)

	tau := a.cfg.smoothing
	for k, m := range a.mag {
		m *= a.norm
		if !a.primed || tau == 0 {
			a.smoothed[k] = m
			continue
		}
		a.smoothed[k] = tau*a.smoothed[k] + (1-tau)*m
	}
	a.primed = true

	out := make([]float64, len(a.smoothed))
	for k, m := range a.smoothed {
		if a.cfg.scale == ScaleLinear {
			out[k] = m
			continue
		}
		db := core.LinearToDB(math.Max(m, magnitudeEps))
		if db < a.cfg.minDB {
			db = a.cfg.minDB
		}
		out[k] = db
	}

	f := Frame{
		Index:   a.index,
		Bins:    out,
		Nyquist: a.Nyquist(),
		Scale:   a.cfg.scale,
	}
	a.index++
	return f, nil
}

// Frames walks signal in steps of hop samples and calls fn with one frame per
// step. The first frame ends at sample FFTSize (or at the end of a shorter
// signal). Iteration stops at the first error returned by fn.
func (a *Analyzer) Frames(signal []float64, hop int, fn func(Frame) error) error {
	if len(signal) == 0 {
		return errEmptySignal
	}
	if err := validateHop(hop); err != nil {
		return err
	}

	end := len(a.frame)
	if end > len(signal) {
		end = len(signal)
	}
	for ; end <= len(signal); end += hop {
		frame, err := a.Analyze(signal[:end])
		if err != nil {
			return err
		}
		if err := fn(frame); err != nil {
			return err
		}
	}
	return nil
}
