package resynth

import "math"

// ramp is a linear glide towards a target value in a fixed number of samples.
type ramp struct {
	value     float64
	target    float64
	step      float64
	remaining int
}

func (r *ramp) set(target float64, samples int) {
	r.target = target
	if samples <= 0 {
		r.value = target
		r.step = 0
		r.remaining = 0
		return
	}
	r.step = (target - r.value) / float64(samples)
	r.remaining = samples
}

func (r *ramp) next() float64 {
	v := r.value
	if r.remaining > 0 {
		r.remaining--
		if r.remaining == 0 {
			r.value = r.target
		} else {
			r.value += r.step
		}
	}
	return v
}

// SineVoice is a sine oscillator with linear frequency and amplitude ramps.
type SineVoice struct {
	sampleRate float64
	freq       ramp
	amp        ramp
	phase      float64
	started    bool
}

func (v *SineVoice) samples(seconds float64) int {
	return int(math.Round(seconds * v.sampleRate))
}

// SetFrequency glides to hz over rampSeconds.
func (v *SineVoice) SetFrequency(hz, rampSeconds float64) {
	v.freq.set(hz, v.samples(rampSeconds))
}

// SetAmplitude glides to gain over rampSeconds.
func (v *SineVoice) SetAmplitude(gain, rampSeconds float64) {
	v.amp.set(gain, v.samples(rampSeconds))
}

// Start resets the phase and makes the voice audible.
func (v *SineVoice) Start() {
	v.phase = 0
	v.started = true
}

// Stop silences the voice.
func (v *SineVoice) Stop() { v.started = false }

// Started reports whether the voice is running.
func (v *SineVoice) Started() bool { return v.started }

// Frequency returns the instantaneous frequency in Hz.
func (v *SineVoice) Frequency() float64 { return v.freq.value }

// Amplitude returns the instantaneous gain.
func (v *SineVoice) Amplitude() float64 { return v.amp.value }

func (v *SineVoice) tick() float64 {
	out := v.amp.next() * math.Sin(2*math.Pi*v.phase)
	v.phase += v.freq.next() / v.sampleRate
	v.phase -= math.Floor(v.phase)
	return out
}

// SineBank is an OscillatorBank of SineVoices rendered in the sample domain.
// It is not safe for concurrent use.
type SineBank struct {
	sampleRate float64
	voices     []*SineVoice
}

// NewSineBank creates an empty bank.
func NewSineBank(sampleRate float64) (*SineBank, error) {
	if err := validateSampleRate(sampleRate); err != nil {
		return nil, err
	}
	return &SineBank{sampleRate: sampleRate}, nil
}

// SampleRate returns the rendering sample rate.
func (b *SineBank) SampleRate() float64 { return b.sampleRate }

// Allocate adds a stopped voice to the bank.
func (b *SineBank) Allocate() Oscillator {
	v := &SineVoice{sampleRate: b.sampleRate}
	b.voices = append(b.voices, v)
	return v
}

// Voices returns the number of allocated voices.
func (b *SineBank) Voices() int { return len(b.voices) }

// Playing returns the number of started voices.
func (b *SineBank) Playing() int {
	n := 0
	for _, v := range b.voices {
		if v.started {
			n++
		}
	}
	return n
}

// Render overwrites dst with the sum of all started voices and advances their
// ramps and phases by len(dst) samples.
func (b *SineBank) Render(dst []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for _, v := range b.voices {
		if !v.started {
			continue
		}
		for i := range dst {
			dst[i] += v.tick()
		}
	}
}
