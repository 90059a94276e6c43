package partial

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-partials/dsp/core"
)

func validateCutoff(cutoff float64) error {
	if cutoff <= 0 || !core.IsFinite(cutoff) {
		return fmt.Errorf("peak cutoff must be > 0 and finite: %f", cutoff)
	}
	return nil
}

func validateNumFreqs(n int) error {
	if n <= 0 {
		return fmt.Errorf("peak count must be > 0: %d", n)
	}
	return nil
}

func validateNyquist(nyquist float64) error {
	if nyquist <= 0 || !core.IsFinite(nyquist) {
		return fmt.Errorf("nyquist must be > 0 and finite: %f", nyquist)
	}
	return nil
}

func validateThreshold(semitones float64) error {
	if semitones <= 0 || !core.IsFinite(semitones) {
		return fmt.Errorf("partial distance threshold must be > 0 and finite: %f", semitones)
	}
	return nil
}

func validateCapacity(frames int) error {
	if frames <= 0 {
		return fmt.Errorf("history capacity must be > 0: %d", frames)
	}
	return nil
}

var errNaNFloor = errors.New("peak energy floor must not be NaN")
