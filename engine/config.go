package engine

import (
	"fmt"

	"github.com/cwbudde/algo-partials/dsp/core"
)

// Config collects the analysis and resynthesis settings of an Engine.
type Config struct {
	// Cutoff is the minimum derivative steepness at a peak.
	Cutoff float64
	// NumFreqs limits the peaks kept per frame.
	NumFreqs int
	// MinDB is the admission floor for peaks and the silent end of the gain
	// range. Linear frames use its magnitude equivalent as floor.
	MinDB float64
	// MaxDB is the full-scale end of the gain range.
	MaxDB float64
	// Threshold is the partial matching distance in semitones.
	Threshold float64
	// RampTime is the oscillator glide time for continued partials, in
	// seconds.
	RampTime float64
	// Nyquist is used for frames that do not carry their own. Zero keeps the
	// detector default.
	Nyquist float64
	// HistoryFrames bounds the recorded history.
	HistoryFrames int
	// HistoryWrap drops the oldest frame when the history is full instead of
	// clearing it.
	HistoryWrap bool
	// LiveResynth drives the oscillators while recording as well.
	LiveResynth bool
}

// DefaultConfig returns the settings of the live analyzer: 20 peaks per
// frame, a -100..-30 dB range, one semitone matching distance, 7 ms ramps
// and a 400 frame history.
func DefaultConfig() Config {
	return Config{
		Cutoff:        2,
		NumFreqs:      20,
		MinDB:         -100,
		MaxDB:         -30,
		Threshold:     1,
		RampTime:      0.007,
		HistoryFrames: 400,
	}
}

// Validate checks the settings that are not checked by the stage
// constructors.
func (c Config) Validate() error {
	if !core.IsFinite(c.MinDB) || !core.IsFinite(c.MaxDB) || c.MaxDB <= c.MinDB {
		return fmt.Errorf("engine dB range must be finite with max > min: [%f, %f]", c.MinDB, c.MaxDB)
	}
	if c.Nyquist < 0 || !core.IsFinite(c.Nyquist) {
		return fmt.Errorf("engine nyquist must be >= 0 and finite: %f", c.Nyquist)
	}
	return nil
}
