// Package spectrum turns time-domain audio into magnitude spectrum frames.
//
// An [Analyzer] windows the most recent FFT-size samples, transforms them with
// an FFT backend (algo-fft by default, gonum as an alternative) and reports
// FFTSize/2 bins in linear magnitude or decibels. Bin i covers
//
//	f_i = i * nyquist / binCount
//
// Frames are immutable once returned; the partial tracker and the display
// only read them.
package spectrum
