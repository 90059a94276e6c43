package core

import "math"

const (
	// ReferenceHz is the tuning reference for pitch conversions.
	ReferenceHz = 440.0
	// ReferencePitch is the MIDI note number of ReferenceHz.
	ReferencePitch = 69.0
)

// FreqToPitch converts a frequency in Hz to fractional MIDI pitch.
// Non-positive or non-finite frequencies return NaN.
func FreqToPitch(freqHz float64) float64 {
	if freqHz <= 0 || !IsFinite(freqHz) {
		return math.NaN()
	}
	return 12*mathLog2(freqHz/ReferenceHz) + ReferencePitch
}

// PitchToFreq converts fractional MIDI pitch to Hz.
func PitchToFreq(pitch float64) float64 {
	return ReferenceHz * mathPower2((pitch-ReferencePitch)/12)
}

// PitchDistance returns |pitch(a) - pitch(b)| in semitones.
// The distance is NaN when either frequency has no pitch.
func PitchDistance(a, b float64) float64 {
	return math.Abs(FreqToPitch(a) - FreqToPitch(b))
}

// BinToHz converts a (fractional) bin position to Hz for a spectrum of
// binCount bins spanning [0, nyquist).
func BinToHz(bin, nyquist float64, binCount int) float64 {
	if binCount <= 0 {
		return 0
	}
	return bin * nyquist / float64(binCount)
}

// HzToBin is the inverse of BinToHz.
func HzToBin(freqHz, nyquist float64, binCount int) float64 {
	if nyquist <= 0 {
		return 0
	}
	return freqHz * float64(binCount) / nyquist
}
