package resynth

import (
	"math"

	"github.com/cwbudde/algo-partials/dsp/core"
	"github.com/cwbudde/algo-partials/dsp/spectrum"
)

const (
	defaultMinDB = -100.0
	defaultMaxDB = -30.0
)

// GainMap converts peak energies to normalized oscillator gain.
//
// Energies are first brought to linear magnitude (dB frames are converted
// with 10^(e/20)) and then mapped linearly from the magnitude range spanned
// by MinDB and MaxDB onto [0, 1].
type GainMap struct {
	MinDB float64
	MaxDB float64

	lo, hi float64
}

// NewGainMap validates the range and precomputes its linear bounds.
func NewGainMap(minDB, maxDB float64) (GainMap, error) {
	if err := validateDBRange(minDB, maxDB); err != nil {
		return GainMap{}, err
	}
	return GainMap{
		MinDB: minDB,
		MaxDB: maxDB,
		lo:    core.DBToLinear(minDB),
		hi:    core.DBToLinear(maxDB),
	}, nil
}

// DefaultGainMap maps -100 dB..-30 dB onto silence..full scale.
func DefaultGainMap() GainMap {
	g, _ := NewGainMap(defaultMinDB, defaultMaxDB)
	return g
}

// Gain returns the oscillator gain in [0, 1] for a peak energy measured in
// the given scale. NaN energies map to 0.
func (g GainMap) Gain(energy float64, scale spectrum.Scale) float64 {
	x := energy
	if scale == spectrum.ScaleDecibel {
		x = core.DBToLinear(energy)
	}
	if math.IsNaN(x) {
		return 0
	}
	return core.Normalize(x, g.lo, g.hi)
}
