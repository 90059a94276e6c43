package resynth

// Oscillator is one voice of a resynthesis bank.
//
// Ramps are linear and start from the value in effect at the time of the
// call; a ramp of zero applies the value immediately.
type Oscillator interface {
	SetFrequency(hz, rampSeconds float64)
	SetAmplitude(gain, rampSeconds float64)
	Start()
	Stop()
	Started() bool
}

// OscillatorBank creates voices on demand.
type OscillatorBank interface {
	Allocate() Oscillator
}

// BankFunc adapts a function to OscillatorBank.
type BankFunc func() Oscillator

// Allocate calls f.
func (f BankFunc) Allocate() Oscillator { return f() }
