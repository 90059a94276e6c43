package engine

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cwbudde/algo-partials/dsp/partial"
	"github.com/cwbudde/algo-partials/dsp/resynth"
	"github.com/cwbudde/algo-partials/dsp/spectrum"
	"github.com/cwbudde/algo-partials/internal/testutil"
)

const (
	testBins    = 64
	testNyquist = 22050.0
)

// dbFrame builds a dB spectrum with one triangular peak per center bin.
func dbFrame(index uint64, centers ...int) spectrum.Frame {
	bins := make([]float64, testBins)
	for i := range bins {
		bins[i] = -120
	}
	for _, c := range centers {
		tri := testutil.TriangleSpectrum(testBins, c, -120, -40, 20)
		for i, v := range tri {
			if v > bins[i] {
				bins[i] = v
			}
		}
	}
	f := spectrum.NewFrame(bins, testNyquist, spectrum.ScaleDecibel)
	f.Index = index
	return f
}

func newTestEngine(t *testing.T, cfg Config, opts ...Option) (*Engine, *resynth.SineBank) {
	t.Helper()
	bank, err := resynth.NewSineBank(44100)
	if err != nil {
		t.Fatalf("NewSineBank() error = %v", err)
	}
	e, err := New(cfg, bank, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e, bank
}

func mustProcess(t *testing.T, e *Engine, f spectrum.Frame) Result {
	t.Helper()
	res, err := e.ProcessFrame(f)
	if err != nil {
		t.Fatalf("ProcessFrame() error = %v", err)
	}
	return res
}

func TestEngineRecordTracksAndSeals(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())

	r1 := mustProcess(t, e, dbFrame(0, 10, 30))
	if r1.Mode != ModeRecord || r1.Stats.Births != 2 || len(r1.Frame.Peaks) != 2 {
		t.Fatalf("first frame: %+v", r1)
	}
	r2 := mustProcess(t, e, dbFrame(1, 10, 50))
	if r2.Stats != (partial.MatchStats{Births: 1, Continuations: 1, Deaths: 1}) {
		t.Fatalf("second frame stats = %+v", r2.Stats)
	}
	if len(r1.Actions) != 0 || len(r2.Actions) != 0 {
		t.Fatal("recording without live resynthesis must not drive oscillators")
	}

	frames := e.Frames()
	if len(frames) != 2 {
		t.Fatalf("history len = %d, want 2", len(frames))
	}
	if !frames[0].Sealed || frames[1].Sealed {
		t.Fatalf("sealed flags = %v,%v want true,false", frames[0].Sealed, frames[1].Sealed)
	}

	var linked int
	for _, p := range frames[0].Peaks {
		if p.Forward.Valid() {
			linked++
			next := frames[1].Peaks[p.Forward.Slot]
			if next.ID != p.ID {
				t.Fatalf("linked peak id %d != %d", next.ID, p.ID)
			}
		}
	}
	if linked != 1 {
		t.Fatalf("forward links = %d, want 1", linked)
	}
	if got := len(e.Partial(frames[1].Peaks[0].ID)); got != 2 {
		t.Fatalf("continued partial spans %d frames, want 2", got)
	}
}

func TestEngineResultIsACopy(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	r := mustProcess(t, e, dbFrame(0, 10))
	r.Frame.Peaks[0].ID = 999

	if f := e.Frames()[0]; f.Peaks[0].ID == 999 {
		t.Fatal("result shares storage with the history")
	}
}

func TestEnginePlaybackCycles(t *testing.T) {
	e, bank := newTestEngine(t, DefaultConfig())
	for i := 0; i < 3; i++ {
		mustProcess(t, e, dbFrame(uint64(i), 10))
	}
	if err := e.SetMode(ModePlayback); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}

	frames := e.Frames()
	if !frames[2].Sealed {
		t.Fatal("entering playback must seal the newest frame")
	}

	var gens []uint64
	var kinds [][]resynth.ActionKind
	for i := 0; i < 5; i++ {
		r := mustProcess(t, e, dbFrame(99, 40))
		if r.Mode != ModePlayback {
			t.Fatalf("mode = %v", r.Mode)
		}
		gens = append(gens, r.Frame.Gen)
		var k []resynth.ActionKind
		for _, a := range r.Actions {
			k = append(k, a.Kind)
		}
		kinds = append(kinds, k)
	}

	if gens[0] != frames[0].Gen || gens[3] != frames[0].Gen || gens[4] != frames[1].Gen {
		t.Fatalf("playback order = %v, frames %d..%d", gens, frames[0].Gen, frames[2].Gen)
	}
	want := [][]resynth.ActionKind{
		{resynth.ActionEnter},
		{resynth.ActionContinue},
		{resynth.ActionContinue},
		{resynth.ActionExit, resynth.ActionEnter},
		{resynth.ActionContinue},
	}
	for i := range want {
		if len(kinds[i]) != len(want[i]) {
			t.Fatalf("frame %d kinds = %v, want %v", i, kinds[i], want[i])
		}
		for j := range want[i] {
			if kinds[i][j] != want[i][j] {
				t.Fatalf("frame %d kinds = %v, want %v", i, kinds[i], want[i])
			}
		}
	}
	if bank.Playing() != 1 {
		t.Fatalf("playing voices = %d, want 1", bank.Playing())
	}
	if e.HistoryLen() != 3 {
		t.Fatal("playback must not alter the history")
	}
}

func TestEnginePlaybackRendersDyingPartial(t *testing.T) {
	e, bank := newTestEngine(t, DefaultConfig())
	mustProcess(t, e, dbFrame(0, 10))
	mustProcess(t, e, dbFrame(1))
	if err := e.SetMode(ModePlayback); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}

	block := make([]float64, 1024)
	peak := func() float64 {
		var p float64
		for _, v := range block {
			if v < 0 {
				v = -v
			}
			if v > p {
				p = v
			}
		}
		return p
	}

	r := mustProcess(t, e, dbFrame(0))
	if len(r.Actions) != 1 || r.Actions[0].Kind != resynth.ActionEnter {
		t.Fatalf("actions = %+v, want a single enter", r.Actions)
	}
	bank.Render(block)
	if p := peak(); p < 0.5*r.Actions[0].Gain {
		t.Fatalf("peak amplitude = %v for gain %v, the last frame of a partial must sound", p, r.Actions[0].Gain)
	}

	r = mustProcess(t, e, dbFrame(0))
	if len(r.Actions) != 1 || r.Actions[0].Kind != resynth.ActionExit {
		t.Fatalf("actions = %+v, want a single exit", r.Actions)
	}
	bank.Render(block)
	if tail := block[len(block)-1]; tail != 0 {
		t.Fatalf("last sample = %v, want the exit faded out", tail)
	}
}

func TestEngineModeSwitchResetsState(t *testing.T) {
	e, bank := newTestEngine(t, DefaultConfig())
	for i := 0; i < 5; i++ {
		mustProcess(t, e, dbFrame(uint64(i), 10, 20, 40))
	}
	nextID := e.NextID()

	if m := e.Toggle(); m != ModePlayback {
		t.Fatalf("Toggle() = %v, want playback", m)
	}
	mustProcess(t, e, dbFrame(0))
	mustProcess(t, e, dbFrame(0))
	if bank.Playing() == 0 || e.ActiveOscillators() == 0 {
		t.Fatal("playback should have started oscillators")
	}

	if m := e.Toggle(); m != ModeRecord {
		t.Fatalf("Toggle() = %v, want record", m)
	}
	if bank.Playing() != 0 || e.ActiveOscillators() != 0 {
		t.Fatalf("playing=%d active=%d after leaving playback", bank.Playing(), e.ActiveOscillators())
	}
	if e.HistoryLen() != 0 || e.PlayIndex() != 0 {
		t.Fatalf("history=%d index=%d after leaving playback", e.HistoryLen(), e.PlayIndex())
	}

	r := mustProcess(t, e, dbFrame(0, 10))
	if r.Stats.Births != 1 || r.Stats.Continuations != 0 {
		t.Fatalf("first frame after reset must be all births, got %+v", r.Stats)
	}
	if got := r.Frame.Peaks[0].ID; got != nextID {
		t.Fatalf("id after mode switch = %d, want %d (never reused)", got, nextID)
	}
}

func TestEngineSetModeSameIsNoop(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	mustProcess(t, e, dbFrame(0, 10))
	if err := e.SetMode(ModeRecord); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if e.HistoryLen() != 1 {
		t.Fatal("switching to the current mode must keep the history")
	}
	if err := e.SetMode(Mode(7)); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestEnginePlaybackWithoutHistory(t *testing.T) {
	e, _ := newTestEngine(t, DefaultConfig())
	if err := e.SetMode(ModePlayback); err != nil {
		t.Fatal(err)
	}
	r := mustProcess(t, e, dbFrame(0, 10))
	if r.Frame.Gen != 0 || len(r.Actions) != 0 {
		t.Fatalf("empty playback result = %+v", r)
	}
}

func TestEngineHistoryClearsWhenFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HistoryFrames = 2
	e, _ := newTestEngine(t, cfg)

	var cleared []bool
	for i := 0; i < 5; i++ {
		cleared = append(cleared, mustProcess(t, e, dbFrame(uint64(i), 10)).Cleared)
	}
	want := []bool{false, false, true, false, true}
	for i := range want {
		if cleared[i] != want[i] {
			t.Fatalf("cleared = %v, want %v", cleared, want)
		}
	}
	if e.HistoryLen() != 1 {
		t.Fatalf("history len = %d, want 1", e.HistoryLen())
	}

	cfg.HistoryWrap = true
	e, _ = newTestEngine(t, cfg)
	for i := 0; i < 5; i++ {
		if mustProcess(t, e, dbFrame(uint64(i), 10)).Cleared {
			t.Fatal("wrapping history must not clear")
		}
	}
	if f := e.Frames(); len(f) != 2 || f[0].Index != 3 || !f[0].Sealed {
		t.Fatalf("wrapped history = %+v", f)
	}
}

func TestEngineLiveResynthesis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LiveResynth = true
	e, bank := newTestEngine(t, cfg)

	r := mustProcess(t, e, dbFrame(0, 10, 30))
	if len(r.Actions) != 2 || bank.Playing() != 2 {
		t.Fatalf("actions=%v playing=%d", r.Actions, bank.Playing())
	}
	r = mustProcess(t, e, dbFrame(1, 10))
	if len(r.Actions) != 2 || r.Actions[0].Kind != resynth.ActionContinue || r.Actions[1].Kind != resynth.ActionExit {
		t.Fatalf("actions = %+v", r.Actions)
	}
	if bank.Playing() != 2 {
		t.Fatalf("playing = %d, want 2 while the exit fades", bank.Playing())
	}
	mustProcess(t, e, dbFrame(2, 10))
	if bank.Playing() != 1 {
		t.Fatalf("playing = %d, want 1", bank.Playing())
	}
}

func TestEngineLinearFramesUseLinearFloor(t *testing.T) {
	bins := testutil.TriangleSpectrum(testBins, 20, 0, 0.5, 0.1)
	quiet := testutil.TriangleSpectrum(testBins, 40, 0, 1e-7, 2e-8)
	for i := range bins {
		bins[i] += quiet[i]
	}
	// Steepness is measured in the frame's own units, so a linear frame
	// needs a cutoff well below the dB default.
	cfg := DefaultConfig()
	cfg.Cutoff = 1e-9
	e, _ := newTestEngine(t, cfg)

	r := mustProcess(t, e, spectrum.NewFrame(bins, testNyquist, spectrum.ScaleLinear))
	if len(r.Frame.Peaks) != 1 {
		t.Fatalf("peaks = %+v, want only the peak above -100 dB", r.Frame.Peaks)
	}
	if r.Frame.Scale != spectrum.ScaleLinear {
		t.Fatalf("scale = %v", r.Frame.Scale)
	}
}

func TestEngineDisplay(t *testing.T) {
	var shown []partial.TrackedFrame
	display := DisplayFunc(func(f partial.TrackedFrame) error {
		shown = append(shown, f)
		return nil
	})
	e, _ := newTestEngine(t, DefaultConfig(), WithDisplay(display))
	mustProcess(t, e, dbFrame(0, 10))
	mustProcess(t, e, dbFrame(1, 10))
	if len(shown) != 2 || shown[1].Gen != 2 {
		t.Fatalf("display received %d frames", len(shown))
	}

	boom := errors.New("boom")
	e, _ = newTestEngine(t, DefaultConfig(), WithDisplay(DisplayFunc(func(partial.TrackedFrame) error { return boom })))
	if _, err := e.ProcessFrame(dbFrame(0, 10)); !errors.Is(err, boom) {
		t.Fatalf("ProcessFrame() error = %v, want wrapped display error", err)
	}
}

func TestEngineLogsModeSwitches(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e, _ := newTestEngine(t, DefaultConfig(), WithLogger(zap.New(core)))

	mustProcess(t, e, dbFrame(0, 10))
	e.Toggle()

	if n := logs.FilterMessage("frame recorded").Len(); n != 1 {
		t.Fatalf("frame logs = %d, want 1", n)
	}
	switches := logs.FilterMessage("mode switched").All()
	if len(switches) != 1 || switches[0].Level != zapcore.InfoLevel {
		t.Fatalf("mode switch logs = %+v", switches)
	}
	if got := switches[0].ContextMap()["mode"]; got != "playback" {
		t.Fatalf("logged mode = %v", got)
	}
}

func TestEngineWithoutBank(t *testing.T) {
	e, err := New(DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mustProcess(t, e, dbFrame(0, 10))
	e.Toggle()
	r := mustProcess(t, e, dbFrame(0))
	if r.Frame.Gen == 0 || r.Actions != nil {
		t.Fatalf("playback without bank = %+v", r)
	}
	if e.ActiveOscillators() != 0 {
		t.Fatal("no oscillators without a bank")
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "cutoff", mutate: func(c *Config) { c.Cutoff = 0 }},
		{name: "num freqs", mutate: func(c *Config) { c.NumFreqs = 0 }},
		{name: "db range", mutate: func(c *Config) { c.MaxDB = c.MinDB }},
		{name: "threshold", mutate: func(c *Config) { c.Threshold = -1 }},
		{name: "ramp", mutate: func(c *Config) { c.RampTime = -0.1 }},
		{name: "history", mutate: func(c *Config) { c.HistoryFrames = 0 }},
		{name: "nyquist", mutate: func(c *Config) { c.Nyquist = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			bank, _ := resynth.NewSineBank(44100)
			if _, err := New(cfg, bank); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for name, want := range map[string]Mode{"record": ModeRecord, "Playback": ModePlayback, "play": ModePlayback} {
		got, err := ParseMode(name)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v,%v want %v", name, got, err, want)
		}
	}
	if _, err := ParseMode("pause"); err == nil {
		t.Fatal("expected error")
	}
}
