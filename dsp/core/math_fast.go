//go:build fastmath

package core

import (
	"github.com/meko-christian/algo-approx"
)

const (
	ln2  = 0.693147180559945309417232121458
	ln10 = 2.30258509299404568401799145468
)

// mathLog2 computes log2(x) as ln(x)/ln(2) with a fast logarithm.
func mathLog2(x float64) float64 {
	return approx.FastLog(x) / ln2
}

// mathPower2 computes 2^x as e^(x*ln(2)) with a fast exponent.
func mathPower2(x float64) float64 {
	return approx.FastExp(x * ln2)
}

// mathPower10 computes 10^x as e^(x*ln(10)) with a fast exponent.
func mathPower10(x float64) float64 {
	return approx.FastExp(x * ln10)
}
