package resynth

import (
	"fmt"
	"slices"

	"github.com/cwbudde/algo-partials/dsp/partial"
)

const defaultRampTime = 0.007

// ActionKind classifies what the mapper did to an oscillator.
type ActionKind int

const (
	// ActionEnter started (or restarted) an oscillator without ramping.
	ActionEnter ActionKind = iota
	// ActionContinue ramped an oscillator to new parameters.
	ActionContinue
	// ActionExit released an oscillator, which fades out and stops.
	ActionExit
)

func (k ActionKind) String() string {
	switch k {
	case ActionEnter:
		return "enter"
	case ActionContinue:
		return "continue"
	case ActionExit:
		return "exit"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

// Action records one oscillator update.
type Action struct {
	Kind      ActionKind
	ID        partial.PartialID
	Frequency float64
	Gain      float64
}

// MapperOption mutates mapper construction parameters.
type MapperOption func(*mapperConfig) error

type mapperConfig struct {
	rampTime float64
	gain     GainMap
}

// WithRampTime sets the glide time in seconds applied to continued partials.
func WithRampTime(seconds float64) MapperOption {
	return func(cfg *mapperConfig) error {
		if err := validateRampTime(seconds); err != nil {
			return err
		}
		cfg.rampTime = seconds
		return nil
	}
}

// WithDBRange sets the energy range mapped onto gain 0..1.
func WithDBRange(minDB, maxDB float64) MapperOption {
	return func(cfg *mapperConfig) error {
		g, err := NewGainMap(minDB, maxDB)
		if err != nil {
			return err
		}
		cfg.gain = g
		return nil
	}
}

type voice struct {
	osc  Oscillator
	seen uint64
}

// Mapper keeps one oscillator per live partial.
//
// Oscillators are looked up by partial id, taken from the free list on
// demand and allocated from the bank only when the free list is empty.
// A released oscillator fades to silence over the ramp time and returns to
// the free list on the next Apply.
// A Mapper is not safe for concurrent use.
type Mapper struct {
	bank     OscillatorBank
	rampTime float64
	gain     GainMap

	table     map[partial.PartialID]*voice
	free      []Oscillator
	fading    []Oscillator
	exiting   []partial.PartialID
	allocated int
	stamp     uint64

	actions []Action
	stale   []partial.PartialID
}

// NewMapper creates a mapper drawing voices from bank.
func NewMapper(bank OscillatorBank, opts ...MapperOption) (*Mapper, error) {
	if bank == nil {
		return nil, errNilBank
	}
	cfg := mapperConfig{rampTime: defaultRampTime, gain: DefaultGainMap()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Mapper{
		bank:     bank,
		rampTime: cfg.rampTime,
		gain:     cfg.gain,
		table:    make(map[partial.PartialID]*voice),
	}, nil
}

// RampTime returns the continuation glide time in seconds.
func (m *Mapper) RampTime() float64 { return m.rampTime }

// GainMap returns the energy to gain mapping.
func (m *Mapper) GainMap() GainMap { return m.gain }

// Active returns the number of partials currently holding an oscillator.
func (m *Mapper) Active() int { return len(m.table) }

// Fading returns the number of released oscillators still ramping to silence.
func (m *Mapper) Fading() int { return len(m.fading) }

// Free returns the number of released oscillators awaiting reuse.
func (m *Mapper) Free() int { return len(m.free) }

// Allocated returns how many oscillators were taken from the bank.
func (m *Mapper) Allocated() int { return m.allocated }

// Apply drives the oscillators for one tracked frame and returns the actions
// taken. The returned slice is reused by the next call.
//
// A peak without a back link enters; a peak with one continues, ramping to its
// new frequency and gain. When the frame is sealed, peaks without a forward
// link are the last of their partial: they sound for this frame and exit at
// the start of the next call. Partials holding an oscillator but absent from
// the frame exit as well, in id order. An exiting oscillator fades out over
// the ramp time and is stopped on the following call.
func (m *Mapper) Apply(frame partial.TrackedFrame) []Action {
	m.actions = m.actions[:0]
	m.stamp++

	m.retire()
	slices.Sort(m.exiting)
	for _, id := range m.exiting {
		if v, ok := m.table[id]; ok {
			m.release(id, v)
		}
	}
	m.exiting = m.exiting[:0]

	for _, p := range frame.Peaks {
		if p.ID == 0 {
			continue
		}
		gain := m.gain.Gain(p.Energy, frame.Scale)

		v, ok := m.table[p.ID]
		if !ok {
			v = &voice{osc: m.acquire()}
			m.table[p.ID] = v
		}
		v.seen = m.stamp

		kind := ActionContinue
		if p.IsBirth() || !ok {
			// A continued partial whose birth was never applied (playback
			// starting mid-partial) enters like a birth.
			kind = ActionEnter
			v.osc.SetFrequency(p.Frequency, 0)
			v.osc.SetAmplitude(gain, 0)
			if !v.osc.Started() {
				v.osc.Start()
			}
		} else {
			v.osc.SetFrequency(p.Frequency, m.rampTime)
			v.osc.SetAmplitude(gain, m.rampTime)
		}
		m.actions = append(m.actions, Action{Kind: kind, ID: p.ID, Frequency: p.Frequency, Gain: gain})

		if frame.Sealed && !p.Forward.Valid() {
			m.exiting = append(m.exiting, p.ID)
		}
	}

	m.stale = m.stale[:0]
	for id, v := range m.table {
		if v.seen != m.stamp {
			m.stale = append(m.stale, id)
		}
	}
	slices.Sort(m.stale)
	for _, id := range m.stale {
		m.release(id, m.table[id])
	}
	return m.actions
}

// StopAll stops every active and fading oscillator at once and moves it to
// the free list. It returns the number of partials that were holding an
// oscillator.
func (m *Mapper) StopAll() int {
	n := len(m.table)
	for id, v := range m.table {
		if v.osc.Started() {
			v.osc.Stop()
		}
		m.free = append(m.free, v.osc)
		delete(m.table, id)
	}
	m.retire()
	m.exiting = m.exiting[:0]
	return n
}

func (m *Mapper) acquire() Oscillator {
	if n := len(m.free); n > 0 {
		osc := m.free[n-1]
		m.free = m.free[:n-1]
		return osc
	}
	m.allocated++
	return m.bank.Allocate()
}

// release detaches the oscillator of id and starts its fade out.
func (m *Mapper) release(id partial.PartialID, v *voice) {
	delete(m.table, id)
	if v.osc.Started() {
		v.osc.SetAmplitude(0, m.rampTime)
		m.fading = append(m.fading, v.osc)
	} else {
		m.free = append(m.free, v.osc)
	}
	m.actions = append(m.actions, Action{Kind: ActionExit, ID: id})
}

// retire stops the oscillators faded out by the previous call.
func (m *Mapper) retire() {
	for i, osc := range m.fading {
		if osc.Started() {
			osc.Stop()
		}
		m.free = append(m.free, osc)
		m.fading[i] = nil
	}
	m.fading = m.fading[:0]
}
