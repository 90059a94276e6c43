package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Tone is one component of a MultiSine.
type Tone struct {
	FreqHz    float64
	Amplitude float64
}

// MultiSine sums sines of the given tones.
func MultiSine(sampleRate float64, length int, tones ...Tone) []float64 {
	out := make([]float64, length)
	for _, tone := range tones {
		step := 2 * math.Pi * tone.FreqHz / sampleRate
		for i := range out {
			out[i] += tone.Amplitude * math.Sin(step*float64(i))
		}
	}
	return out
}

// Glide generates a sine whose frequency moves linearly from startHz to endHz.
func Glide(startHz, endHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	phase := 0.0
	for i := range out {
		frac := 0.0
		if length > 1 {
			frac = float64(i) / float64(length-1)
		}
		f := startHz + (endHz-startHz)*frac
		out[i] = amplitude * math.Sin(phase)
		phase += 2 * math.Pi * f / sampleRate
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// TriangleSpectrum returns a spectrum of length bins filled with floor and a
// symmetric triangular peak of the given height centered on bin center,
// falling by slope per bin.
func TriangleSpectrum(length, center int, floor, height, slope float64) []float64 {
	out := make([]float64, length)
	for i := range out {
		v := height - slope*math.Abs(float64(i-center))
		if v < floor {
			v = floor
		}
		out[i] = v
	}
	return out
}
