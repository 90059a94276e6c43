package core

// ProcessorConfig defines common analysis settings.
type ProcessorConfig struct {
	SampleRate float64
	FFTSize    int
	HopSize    int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the settings used by the live analyzer:
// 44.1 kHz input, 2048-point FFT (1024 bins) and a half-frame hop.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 44100,
		FFTSize:    2048,
		HopSize:    1024,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFFTSize sets the analysis frame length in samples.
func WithFFTSize(size int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if size > 0 {
			cfg.FFTSize = size
		}
	}
}

// WithHopSize sets the distance between successive analysis frames.
func WithHopSize(hop int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if hop > 0 {
			cfg.HopSize = hop
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Nyquist returns half the sample rate.
func (c ProcessorConfig) Nyquist() float64 {
	return c.SampleRate / 2
}

// BinCount returns the number of spectrum bins reported per frame.
func (c ProcessorConfig) BinCount() int {
	return c.FFTSize / 2
}

// FrameSeconds returns the time between successive frames.
func (c ProcessorConfig) FrameSeconds() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(c.HopSize) / c.SampleRate
}
