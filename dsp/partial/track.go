package partial

import (
	"github.com/cwbudde/algo-partials/dsp/core"
)

const defaultThreshold = 1.0

// TrackerOption mutates tracker construction parameters.
type TrackerOption func(*trackerConfig) error

type trackerConfig struct {
	threshold float64
	firstID   PartialID
}

// WithThreshold sets the largest pitch distance, in semitones, at which two
// peaks of consecutive frames may belong to the same partial.
func WithThreshold(semitones float64) TrackerOption {
	return func(cfg *trackerConfig) error {
		if err := validateThreshold(semitones); err != nil {
			return err
		}
		cfg.threshold = semitones
		return nil
	}
}

// WithFirstID sets the id given to the first birth. Useful when resuming a
// session whose ids must not collide with earlier ones.
func WithFirstID(id PartialID) TrackerOption {
	return func(cfg *trackerConfig) error {
		if id == 0 {
			id = 1
		}
		cfg.firstID = id
		return nil
	}
}

// MatchStats summarizes one matching pass.
type MatchStats struct {
	Births        int
	Continuations int
	// Deaths counts previous peaks left without a forward link.
	Deaths int
}

// Tracker links peaks of consecutive frames and mints partial ids.
//
// Matching is a greedy pass: previous peaks are visited in order and each
// current peak keeps the closest previous peak seen so far. The outcome
// depends on list order and is not a globally optimal assignment.
type Tracker struct {
	threshold float64
	next      PartialID
}

// NewTracker creates a tracker with a one-semitone threshold unless overridden.
func NewTracker(opts ...TrackerOption) (*Tracker, error) {
	cfg := trackerConfig{threshold: defaultThreshold, firstID: 1}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Tracker{threshold: cfg.threshold, next: cfg.firstID}, nil
}

// Threshold returns the matching threshold in semitones.
func (t *Tracker) Threshold() float64 { return t.threshold }

// NextID returns the id the next birth will receive.
func (t *Tracker) NextID() PartialID { return t.next }

// Track matches the two resident generations of a.
func (t *Tracker) Track(a *Arena) MatchStats {
	return t.Match(a.Previous(), a.Current())
}

// Match links cur to prev in place. Forward links of prev and back links and
// ids of cur are rewritten; after Match, p.Back == q implies q.Forward == p
// for every peak of cur. Births receive fresh ids in cur order and matched
// peaks inherit the id of their back peak.
func (t *Tracker) Match(prev, cur Generation) MatchStats {
	for i := range prev.Peaks {
		prev.Peaks[i].Forward = Ref{}
	}
	for j := range cur.Peaks {
		cur.Peaks[j].unlink()
	}

	for i := range prev.Peaks {
		p := &prev.Peaks[i]
		for j := range cur.Peaks {
			c := &cur.Peaks[j]

			dist := core.PitchDistance(p.Frequency, c.Frequency)
			if !(dist < t.threshold) {
				continue
			}

			existing := t.threshold
			if c.Back.Valid() {
				existing = core.PitchDistance(prev.Peaks[c.Back.Slot].Frequency, c.Frequency)
			}
			if !(dist < existing) {
				continue
			}

			if c.Back.Valid() {
				prev.Peaks[c.Back.Slot].Forward = Ref{}
			}
			if p.Forward.Valid() && p.Forward.Slot != j {
				cur.Peaks[p.Forward.Slot].Back = Ref{}
			}
			c.Back = Ref{Gen: prev.Gen, Slot: i}
			p.Forward = Ref{Gen: cur.Gen, Slot: j}
		}
	}

	var stats MatchStats
	for j := range cur.Peaks {
		c := &cur.Peaks[j]
		if c.Back.Valid() {
			if id := prev.Peaks[c.Back.Slot].ID; id != 0 {
				c.ID = id
				stats.Continuations++
				continue
			}
		}
		c.ID = t.mint()
		if !c.Back.Valid() {
			stats.Births++
		} else {
			stats.Continuations++
		}
	}
	for i := range prev.Peaks {
		if !prev.Peaks[i].Forward.Valid() {
			stats.Deaths++
		}
	}
	return stats
}

func (t *Tracker) mint() PartialID {
	id := t.next
	t.next++
	return id
}
