package spectrum

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-partials/dsp/core"
)

// Scale selects the unit of frame bins and, downstream, of peak energies.
type Scale int

const (
	// ScaleDecibel reports 20*log10 magnitude, floored at the analyzer's MinDB.
	ScaleDecibel Scale = iota
	// ScaleLinear reports normalized linear magnitude.
	ScaleLinear
)

// String returns the configuration name of the scale.
func (s Scale) String() string {
	switch s {
	case ScaleDecibel:
		return "db"
	case ScaleLinear:
		return "linear"
	default:
		return fmt.Sprintf("Scale(%d)", int(s))
	}
}

// ParseScale accepts "db"/"decibel" and "linear"/"magnitude".
func ParseScale(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "db", "decibel", "":
		return ScaleDecibel, nil
	case "linear", "magnitude", "mag":
		return ScaleLinear, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownScale, name)
	}
}

// Frame is one magnitude spectrum. Bins must not be modified once the frame
// has been handed to a consumer.
type Frame struct {
	// Index counts frames produced by the analyzer, starting at 0.
	Index uint64
	// Bins holds one magnitude or dB sample per bin.
	Bins []float64
	// Nyquist is half the sample rate of the analyzed signal.
	Nyquist float64
	// Scale is the unit of Bins.
	Scale Scale
}

// Len returns the bin count.
func (f Frame) Len() int { return len(f.Bins) }

// BinHz returns the frequency of a (fractional) bin position.
func (f Frame) BinHz(bin float64) float64 {
	return core.BinToHz(bin, f.Nyquist, len(f.Bins))
}

// NewFrame wraps externally computed bins. The slice is copied so the frame
// stays immutable if the caller reuses its buffer.
func NewFrame(bins []float64, nyquist float64, scale Scale) Frame {
	out := make([]float64, len(bins))
	copy(out, bins)
	return Frame{Bins: out, Nyquist: nyquist, Scale: scale}
}
