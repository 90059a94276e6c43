package resynth

import (
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-partials/dsp/partial"
	"github.com/cwbudde/algo-partials/dsp/spectrum"
)

type oscCall struct {
	op    string
	value float64
	ramp  float64
}

type fakeOsc struct {
	started bool
	calls   []oscCall
}

func (o *fakeOsc) SetFrequency(hz, ramp float64) {
	o.calls = append(o.calls, oscCall{op: "freq", value: hz, ramp: ramp})
}

func (o *fakeOsc) SetAmplitude(gain, ramp float64) {
	o.calls = append(o.calls, oscCall{op: "gain", value: gain, ramp: ramp})
}

func (o *fakeOsc) Start() {
	o.started = true
	o.calls = append(o.calls, oscCall{op: "start"})
}

func (o *fakeOsc) Stop() {
	o.started = false
	o.calls = append(o.calls, oscCall{op: "stop"})
}

func (o *fakeOsc) Started() bool { return o.started }

func (o *fakeOsc) last(op string) (oscCall, bool) {
	for i := len(o.calls) - 1; i >= 0; i-- {
		if o.calls[i].op == op {
			return o.calls[i], true
		}
	}
	return oscCall{}, false
}

type fakeBank struct {
	oscs []*fakeOsc
}

func (b *fakeBank) Allocate() Oscillator {
	o := &fakeOsc{}
	b.oscs = append(b.oscs, o)
	return o
}

func mustMapper(t *testing.T, bank OscillatorBank, opts ...MapperOption) *Mapper {
	t.Helper()
	m, err := NewMapper(bank, opts...)
	if err != nil {
		t.Fatalf("NewMapper() error = %v", err)
	}
	return m
}

func birth(id partial.PartialID, freq, db float64) partial.Peak {
	return partial.Peak{Frequency: freq, Energy: db, ID: id}
}

func cont(id partial.PartialID, freq, db float64) partial.Peak {
	return partial.Peak{Frequency: freq, Energy: db, ID: id, Back: partial.Ref{Gen: 1}}
}

func dbFrame(sealed bool, peaks ...partial.Peak) partial.TrackedFrame {
	return partial.TrackedFrame{Peaks: peaks, Scale: spectrum.ScaleDecibel, Sealed: sealed}
}

func kinds(actions []Action) []ActionKind {
	out := make([]ActionKind, len(actions))
	for i, a := range actions {
		out[i] = a.Kind
	}
	return out
}

func equalKinds(a, b []ActionKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMapperEnterSetsImmediately(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank)

	actions := m.Apply(dbFrame(false, birth(1, 440, -30)))
	if len(actions) != 1 || actions[0].Kind != ActionEnter || actions[0].ID != 1 {
		t.Fatalf("actions = %+v", actions)
	}
	if actions[0].Gain != 1 {
		t.Fatalf("gain = %v, want 1", actions[0].Gain)
	}

	o := bank.oscs[0]
	if !o.started {
		t.Fatal("oscillator not started")
	}
	f, _ := o.last("freq")
	g, _ := o.last("gain")
	if f.value != 440 || f.ramp != 0 || g.value != 1 || g.ramp != 0 {
		t.Fatalf("enter must set without ramp, got freq=%+v gain=%+v", f, g)
	}
}

func TestMapperContinueRamps(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank, WithRampTime(0.01))

	m.Apply(dbFrame(false, birth(1, 440, -30)))
	actions := m.Apply(dbFrame(false, cont(1, 445, -100)))
	if !equalKinds(kinds(actions), []ActionKind{ActionContinue}) {
		t.Fatalf("kinds = %v", kinds(actions))
	}

	o := bank.oscs[0]
	f, _ := o.last("freq")
	g, _ := o.last("gain")
	if f.value != 445 || f.ramp != 0.01 || g.value != 0 || g.ramp != 0.01 {
		t.Fatalf("continue must ramp, got freq=%+v gain=%+v", f, g)
	}
	if len(bank.oscs) != 1 {
		t.Fatalf("continuation allocated a new oscillator")
	}
}

func TestMapperExitOnSealedFrame(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank, WithRampTime(0.01))

	m.Apply(dbFrame(true, partial.Peak{Frequency: 440, Energy: -40, ID: 1, Forward: partial.Ref{Gen: 2}}))
	actions := m.Apply(dbFrame(true, cont(1, 441, -40)))

	// The last frame of a partial is applied and left running.
	if !equalKinds(kinds(actions), []ActionKind{ActionContinue}) {
		t.Fatalf("kinds = %v", kinds(actions))
	}
	o := bank.oscs[0]
	if !o.started || m.Active() != 1 {
		t.Fatalf("started=%v active=%d, want the last frame to sound", o.started, m.Active())
	}
	if f, _ := o.last("freq"); f.value != 441 {
		t.Fatalf("last frame not applied, freq = %+v", f)
	}

	actions = m.Apply(dbFrame(false))
	if len(actions) != 1 || actions[0].Kind != ActionExit || actions[0].ID != 1 {
		t.Fatalf("actions = %+v, want exit of 1", actions)
	}
	if g, _ := o.last("gain"); g.value != 0 || g.ramp != 0.01 {
		t.Fatalf("exit must fade over the ramp time, gain = %+v", g)
	}
	if !o.started || m.Active() != 0 || m.Fading() != 1 || m.Free() != 0 {
		t.Fatalf("started=%v active=%d fading=%d free=%d", o.started, m.Active(), m.Fading(), m.Free())
	}

	if actions := m.Apply(dbFrame(false)); len(actions) != 0 {
		t.Fatalf("actions = %+v, want none", actions)
	}
	if o.started || m.Fading() != 0 || m.Free() != 1 {
		t.Fatalf("started=%v fading=%d free=%d after the fade", o.started, m.Fading(), m.Free())
	}
}

func TestMapperSingleFramePartialSounds(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank)

	actions := m.Apply(dbFrame(true, birth(4, 300, -40)))
	if !equalKinds(kinds(actions), []ActionKind{ActionEnter}) {
		t.Fatalf("kinds = %v", kinds(actions))
	}
	if !bank.oscs[0].started {
		t.Fatal("a partial living for one frame must sound during it")
	}

	// The same id returning, as when a one-frame history replays, exits the
	// old voice and enters a fresh one.
	actions = m.Apply(dbFrame(true, birth(4, 300, -40)))
	if !equalKinds(kinds(actions), []ActionKind{ActionExit, ActionEnter}) {
		t.Fatalf("kinds = %v", kinds(actions))
	}
	if m.Active() != 1 || m.Fading() != 1 || m.Allocated() != 2 {
		t.Fatalf("active=%d fading=%d allocated=%d", m.Active(), m.Fading(), m.Allocated())
	}
}

func TestMapperStopsStalePartials(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank)

	m.Apply(dbFrame(false, birth(3, 300, -40), birth(1, 100, -40), birth(2, 200, -40)))
	actions := m.Apply(dbFrame(false, cont(2, 201, -40)))

	want := []Action{
		{Kind: ActionContinue, ID: 2},
		{Kind: ActionExit, ID: 1},
		{Kind: ActionExit, ID: 3},
	}
	if len(actions) != len(want) {
		t.Fatalf("actions = %+v", actions)
	}
	for i := range want {
		if actions[i].Kind != want[i].Kind || actions[i].ID != want[i].ID {
			t.Fatalf("action %d = %+v, want %+v", i, actions[i], want[i])
		}
	}
	if m.Active() != 1 || m.Fading() != 2 {
		t.Fatalf("active=%d fading=%d, want 1,2", m.Active(), m.Fading())
	}
	for _, o := range []*fakeOsc{bank.oscs[0], bank.oscs[1]} {
		if g, _ := o.last("gain"); g.value != 0 || g.ramp != m.RampTime() {
			t.Fatalf("stale oscillator must fade out, gain = %+v", g)
		}
	}
}

func TestMapperReusesReleasedOscillators(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank)

	m.Apply(dbFrame(false, birth(1, 100, -40)))
	m.Apply(dbFrame(false))
	m.Apply(dbFrame(false, birth(2, 200, -40)))

	if m.Allocated() != 1 || len(bank.oscs) != 1 {
		t.Fatalf("allocated=%d bank=%d, want reuse of one oscillator", m.Allocated(), len(bank.oscs))
	}
	if !bank.oscs[0].started {
		t.Fatal("reused oscillator must be restarted")
	}
}

func TestMapperLazilyEntersUnknownContinuation(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank)

	actions := m.Apply(dbFrame(false, cont(7, 500, -40)))
	if !equalKinds(kinds(actions), []ActionKind{ActionEnter}) {
		t.Fatalf("kinds = %v", kinds(actions))
	}
	if f, _ := bank.oscs[0].last("freq"); f.ramp != 0 {
		t.Fatalf("lazy enter must not ramp, got %+v", f)
	}
}

func TestMapperSkipsUnassignedPeaks(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank)
	if actions := m.Apply(dbFrame(false, partial.Peak{Frequency: 100})); len(actions) != 0 {
		t.Fatalf("actions = %+v, want none", actions)
	}
	if len(bank.oscs) != 0 {
		t.Fatal("unassigned peak allocated an oscillator")
	}
}

func TestMapperStopAll(t *testing.T) {
	bank := &fakeBank{}
	m := mustMapper(t, bank)
	m.Apply(dbFrame(false, birth(1, 100, -40), birth(2, 200, -40), birth(3, 300, -40)))
	m.Apply(dbFrame(true, cont(1, 100, -40), cont(2, 200, -40)))

	// 3 is fading, 2 and 1 are active and queued to exit.
	if n := m.StopAll(); n != 2 {
		t.Fatalf("StopAll() = %d, want 2", n)
	}
	for i, o := range bank.oscs {
		if o.started {
			t.Fatalf("oscillator %d still running", i)
		}
	}
	if m.Active() != 0 || m.Fading() != 0 || m.Free() != 3 {
		t.Fatalf("active=%d fading=%d free=%d", m.Active(), m.Fading(), m.Free())
	}
	if n := m.StopAll(); n != 0 {
		t.Fatalf("second StopAll() = %d, want 0", n)
	}
	if actions := m.Apply(dbFrame(false)); len(actions) != 0 {
		t.Fatalf("exits queued before StopAll must be dropped, got %+v", actions)
	}
}

func TestMapperTableBoundedByLivePartials(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	bank := &fakeBank{}
	m := mustMapper(t, bank)

	next := partial.PartialID(1)
	var live []partial.PartialID
	bound := 0
	for frame := 0; frame < 300; frame++ {
		var peaks []partial.Peak
		var kept []partial.PartialID
		for _, id := range live {
			if rng.Intn(4) > 0 {
				peaks = append(peaks, cont(id, 100+float64(id), -50))
				kept = append(kept, id)
			}
		}
		births := rng.Intn(3)
		for n := births; n > 0; n-- {
			peaks = append(peaks, birth(next, 100+float64(next), -50))
			kept = append(kept, next)
			next++
		}
		// Births are entered before the dead partials of the frame are
		// released, so both can hold an oscillator at once. Voices fading
		// from the previous frame are back on the free list by then.
		if n := len(live) + births; n > bound {
			bound = n
		}
		live = kept

		m.Apply(dbFrame(false, peaks...))
		if m.Active() != len(live) {
			t.Fatalf("frame %d: Active() = %d, want %d", frame, m.Active(), len(live))
		}
		if held := m.Active() + m.Fading() + m.Free(); held != m.Allocated() {
			t.Fatalf("frame %d: active+fading+free=%d allocated=%d", frame, held, m.Allocated())
		}
	}
	if m.Allocated() > bound {
		t.Fatalf("allocated %d oscillators, bound %d", m.Allocated(), bound)
	}
}

func TestMapperValidation(t *testing.T) {
	if _, err := NewMapper(nil); err == nil {
		t.Fatal("expected error for nil bank")
	}
	bank := &fakeBank{}
	if _, err := NewMapper(bank, WithRampTime(-1)); err == nil {
		t.Fatal("expected error for negative ramp")
	}
	if _, err := NewMapper(bank, WithDBRange(0, -10)); err == nil {
		t.Fatal("expected error for inverted dB range")
	}
	m := mustMapper(t, BankFunc(func() Oscillator { return &fakeOsc{} }))
	if m.RampTime() != 0.007 {
		t.Fatalf("RampTime() = %v, want 0.007", m.RampTime())
	}
}
