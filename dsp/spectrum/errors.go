package spectrum

import (
	"errors"
	"fmt"
)

var (
	errEmptySignal   = errors.New("spectrum signal must not be empty")
	errUnknownWindow = errors.New("unknown window")
	errUnknownScale  = errors.New("unknown scale")
	errUnknownFFT    = errors.New("unknown fft backend")
)

func validateFFTSize(size int) error {
	if size < 4 {
		return fmt.Errorf("spectrum fft size must be >= 4: %d", size)
	}
	if size&(size-1) != 0 {
		return fmt.Errorf("spectrum fft size must be a power of two: %d", size)
	}
	return nil
}

func validateHop(hop int) error {
	if hop <= 0 {
		return fmt.Errorf("spectrum hop must be > 0: %d", hop)
	}
	return nil
}
