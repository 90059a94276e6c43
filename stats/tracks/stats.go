// Package tracks summarizes recorded partial tracks: how many partials were
// seen, how long they lived and how busy each frame was.
package tracks

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-partials/dsp/partial"
)

// Partial describes one partial as far as it was recorded.
type Partial struct {
	ID partial.PartialID
	// FirstGen and LastGen are the generations of the first and last
	// recorded peak.
	FirstGen uint64
	LastGen  uint64
	// Frames is the number of recorded peaks; Seconds is Frames times the
	// frame period.
	Frames  int
	Seconds float64
	// Born is false when the first recorded peak continues an earlier,
	// unrecorded one.
	Born bool
	// Died is set when the last recorded peak is in a sealed frame and has
	// no forward link.
	Died bool

	MeanFrequency float64
	MinFrequency  float64
	MaxFrequency  float64
	MeanEnergy    float64
}

// Summary holds whole-history statistics.
type Summary struct {
	Frames   int
	Partials int
	Peaks    int

	// Births and Deaths hold per-frame counts, oldest first. Deaths are only
	// known for sealed frames.
	Births []int
	Deaths []int

	MeanPeaks  float64
	MeanBirths float64
	MeanDeaths float64

	// Lifetimes in frames.
	MeanLifetime   float64
	MedianLifetime float64
	MaxLifetime    float64
	StdLifetime    float64

	// MeanLifetimeSeconds is MeanLifetime times the frame period.
	MeanLifetimeSeconds float64
}

// Partials groups the peaks of frames by partial id, ordered by id.
// frameSeconds converts lifetimes to seconds and may be zero.
func Partials(frames []partial.TrackedFrame, frameSeconds float64) []Partial {
	type acc struct {
		p       Partial
		freqs   []float64
		sealed  bool
		forward bool
	}
	byID := make(map[partial.PartialID]*acc)

	for _, f := range frames {
		for _, pk := range f.Peaks {
			if pk.ID == 0 {
				continue
			}
			a, ok := byID[pk.ID]
			if !ok {
				a = &acc{p: Partial{ID: pk.ID, FirstGen: f.Gen, Born: pk.IsBirth()}}
				byID[pk.ID] = a
			}
			a.p.LastGen = f.Gen
			a.p.Frames++
			a.p.MeanEnergy += pk.Energy
			a.freqs = append(a.freqs, pk.Frequency)
			a.sealed = f.Sealed
			a.forward = pk.Forward.Valid()
		}
	}

	out := make([]Partial, 0, len(byID))
	for _, a := range byID {
		p := a.p
		p.Seconds = float64(p.Frames) * frameSeconds
		p.Died = a.sealed && !a.forward
		p.MeanEnergy /= float64(p.Frames)
		p.MeanFrequency = stat.Mean(a.freqs, nil)
		p.MinFrequency = floats.Min(a.freqs)
		p.MaxFrequency = floats.Max(a.freqs)
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Summarize computes statistics over frames, oldest first.
func Summarize(frames []partial.TrackedFrame, frameSeconds float64) Summary {
	s := Summary{
		Frames: len(frames),
		Births: make([]int, len(frames)),
		Deaths: make([]int, len(frames)),
	}
	if len(frames) == 0 {
		return s
	}

	peaks := make([]float64, len(frames))
	births := make([]float64, len(frames))
	deaths := make([]float64, len(frames))
	for i, f := range frames {
		for _, pk := range f.Peaks {
			if pk.IsBirth() {
				s.Births[i]++
			}
			if f.Sealed && !pk.Forward.Valid() {
				s.Deaths[i]++
			}
		}
		s.Peaks += len(f.Peaks)
		peaks[i] = float64(len(f.Peaks))
		births[i] = float64(s.Births[i])
		deaths[i] = float64(s.Deaths[i])
	}
	s.MeanPeaks = stat.Mean(peaks, nil)
	s.MeanBirths = stat.Mean(births, nil)
	s.MeanDeaths = stat.Mean(deaths, nil)

	parts := Partials(frames, frameSeconds)
	s.Partials = len(parts)
	if len(parts) == 0 {
		return s
	}

	lifetimes := make([]float64, len(parts))
	for i, p := range parts {
		lifetimes[i] = float64(p.Frames)
	}
	sort.Float64s(lifetimes)
	s.MeanLifetime, s.StdLifetime = stat.MeanStdDev(lifetimes, nil)
	if len(lifetimes) < 2 {
		s.StdLifetime = 0
	}
	s.MedianLifetime = stat.Quantile(0.5, stat.Empirical, lifetimes, nil)
	s.MaxLifetime = floats.Max(lifetimes)
	s.MeanLifetimeSeconds = s.MeanLifetime * frameSeconds
	return s
}
