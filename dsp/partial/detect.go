package partial

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-partials/dsp/core"
	"github.com/cwbudde/algo-partials/dsp/spectrum"
)

const (
	defaultCutoff   = 2.0
	defaultNumFreqs = 20
)

// DetectorOption mutates detector construction parameters.
type DetectorOption func(*detectorConfig) error

type detectorConfig struct {
	cutoff   float64
	numFreqs int
	floor    float64
	nyquist  float64
}

func defaultDetectorConfig() detectorConfig {
	return detectorConfig{
		cutoff:   defaultCutoff,
		numFreqs: defaultNumFreqs,
		floor:    math.Inf(-1),
		nyquist:  core.DefaultProcessorConfig().Nyquist(),
	}
}

// WithCutoff sets the minimum steepness of the derivative at a maximum.
// Lower values admit more (and noisier) peaks.
func WithCutoff(cutoff float64) DetectorOption {
	return func(cfg *detectorConfig) error {
		if err := validateCutoff(cutoff); err != nil {
			return err
		}
		cfg.cutoff = cutoff
		return nil
	}
}

// WithNumFreqs sets how many of the strongest peaks are kept per frame.
func WithNumFreqs(n int) DetectorOption {
	return func(cfg *detectorConfig) error {
		if err := validateNumFreqs(n); err != nil {
			return err
		}
		cfg.numFreqs = n
		return nil
	}
}

// WithEnergyFloor rejects peaks whose interpolated energy is below floor.
// The floor is in the units of the analyzed frames.
func WithEnergyFloor(floor float64) DetectorOption {
	return func(cfg *detectorConfig) error {
		if math.IsNaN(floor) {
			return errNaNFloor
		}
		cfg.floor = floor
		return nil
	}
}

// WithNyquist sets the Nyquist frequency used for bare bin slices. Frames
// carrying their own Nyquist value override it.
func WithNyquist(nyquist float64) DetectorOption {
	return func(cfg *detectorConfig) error {
		if err := validateNyquist(nyquist); err != nil {
			return err
		}
		cfg.nyquist = nyquist
		return nil
	}
}

// Detector extracts sub-bin peaks from a single spectrum frame.
// It holds no per-frame state and may be shared between goroutines.
type Detector struct {
	cfg detectorConfig
}

// NewDetector creates a detector with practical defaults and optional overrides.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	cfg := defaultDetectorConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Detector{cfg: cfg}, nil
}

// Cutoff returns the steepness filter.
func (d *Detector) Cutoff() float64 { return d.cfg.cutoff }

// NumFreqs returns the per-frame peak limit.
func (d *Detector) NumFreqs() int { return d.cfg.numFreqs }

// EnergyFloor returns the admission floor.
func (d *Detector) EnergyFloor() float64 { return d.cfg.floor }

// Nyquist returns the fallback Nyquist frequency.
func (d *Detector) Nyquist() float64 { return d.cfg.nyquist }

// Detect returns the peaks of frame, strongest first.
func (d *Detector) Detect(frame spectrum.Frame) []Peak {
	return d.DetectInto(nil, frame)
}

// DetectInto is Detect with caller-provided storage; dst is truncated and
// reused when its capacity allows.
func (d *Detector) DetectInto(dst []Peak, frame spectrum.Frame) []Peak {
	nyquist := frame.Nyquist
	if nyquist <= 0 {
		nyquist = d.cfg.nyquist
	}
	return d.detect(dst[:0], frame.Bins, nyquist)
}

// DetectBins runs detection on a bare slice using the configured Nyquist.
func (d *Detector) DetectBins(bins []float64) []Peak {
	return d.detect(nil, bins, d.cfg.nyquist)
}

func (d *Detector) detect(out []Peak, s []float64, nyquist float64) []Peak {
	if out == nil {
		out = make([]Peak, 0, d.cfg.numFreqs)
	}
	n := len(s)
	for i := 1; i+2 < n; i++ {
		d0 := s[i+1] - s[i-1]
		d1 := s[i+2] - s[i]
		if !(d0 >= 0 && d1 < 0) {
			continue
		}

		second := d1 - d0
		if second == 0 || !(second < -d.cfg.cutoff) {
			continue
		}

		bin := float64(i) - d0/second
		energy := s[i] + (s[i+1]-s[i])*(bin-float64(i))
		if !core.IsFinite(bin) || math.IsNaN(energy) || energy < d.cfg.floor {
			continue
		}

		out = append(out, Peak{
			Frequency: core.BinToHz(bin, nyquist, n),
			Energy:    energy,
			Bin:       bin,
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Energy > out[b].Energy
	})
	if len(out) > d.cfg.numFreqs {
		out = out[:d.cfg.numFreqs]
	}
	return out
}
