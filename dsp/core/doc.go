// Package core holds numeric helpers and processing configuration shared by
// the spectrum, partial and resynthesis packages.
//
// Pitch is measured on the MIDI scale, where A440 is note 69 and one unit is
// one equal-tempered semitone:
//
//	pitch(f) = 12*log2(f/440) + 69
//
// Build with -tags fastmath to replace the logarithm and exponent kernels with
// algo-approx approximations.
package core
