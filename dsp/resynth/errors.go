package resynth

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-partials/dsp/core"
)

var errNilBank = errors.New("resynth oscillator bank must not be nil")

func validateRampTime(seconds float64) error {
	if seconds < 0 || !core.IsFinite(seconds) {
		return fmt.Errorf("resynth ramp time must be >= 0 and finite: %f", seconds)
	}
	return nil
}

func validateDBRange(minDB, maxDB float64) error {
	if !core.IsFinite(minDB) || !core.IsFinite(maxDB) {
		return fmt.Errorf("resynth dB range must be finite: [%f, %f]", minDB, maxDB)
	}
	if maxDB <= minDB {
		return fmt.Errorf("resynth max dB must be > min dB: [%f, %f]", minDB, maxDB)
	}
	return nil
}

func validateSampleRate(sampleRate float64) error {
	if sampleRate <= 0 || !core.IsFinite(sampleRate) {
		return fmt.Errorf("resynth sample rate must be > 0 and finite: %f", sampleRate)
	}
	return nil
}
