package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-partials/dsp/core"
	"github.com/cwbudde/algo-partials/dsp/partial"
	"github.com/cwbudde/algo-partials/dsp/resynth"
	"github.com/cwbudde/algo-partials/dsp/spectrum"
)

var errInvalidMode = errors.New("engine mode must be record or playback")

// Display consumes the tracked frame produced by each call to ProcessFrame.
// The frame is a copy owned by the receiver.
type Display interface {
	WriteFrame(f partial.TrackedFrame) error
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(partial.TrackedFrame) error

// WriteFrame calls f.
func (f DisplayFunc) WriteFrame(frame partial.TrackedFrame) error { return f(frame) }

// Option configures optional collaborators of an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The frame path logs at debug level only.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithDisplay registers a consumer for every processed frame.
func WithDisplay(d Display) Option {
	return func(e *Engine) {
		e.display = d
	}
}

// Result describes the outcome of one ProcessFrame call.
type Result struct {
	Mode Mode
	// Frame is the recorded or replayed frame. It is empty in playback mode
	// when nothing was recorded.
	Frame partial.TrackedFrame
	// Stats is zero in playback mode.
	Stats partial.MatchStats
	// Actions lists the oscillator updates of this frame.
	Actions []resynth.Action
	// Cleared is set when the history was wiped to make room.
	Cleared bool
}

// Engine is the explicit context of one partial tracking session.
type Engine struct {
	cfg     Config
	log     *zap.Logger
	display Display

	detectors [2]*partial.Detector
	tracker   *partial.Tracker
	arena     *partial.Arena
	history   *partial.History
	mapper    *resynth.Mapper

	mode      Mode
	playIndex int
	peaks     []partial.Peak
}

// New creates an engine in record mode. bank may be nil, in which case the
// engine only tracks and records.
func New(cfg Config, bank resynth.OscillatorBank, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	floors := [2]float64{
		spectrum.ScaleDecibel: cfg.MinDB,
		spectrum.ScaleLinear:  core.DBToLinear(cfg.MinDB),
	}
	for scale, floor := range floors {
		detOpts := []partial.DetectorOption{
			partial.WithCutoff(cfg.Cutoff),
			partial.WithNumFreqs(cfg.NumFreqs),
			partial.WithEnergyFloor(floor),
		}
		if cfg.Nyquist > 0 {
			detOpts = append(detOpts, partial.WithNyquist(cfg.Nyquist))
		}
		det, err := partial.NewDetector(detOpts...)
		if err != nil {
			return nil, err
		}
		e.detectors[scale] = det
	}

	tracker, err := partial.NewTracker(partial.WithThreshold(cfg.Threshold))
	if err != nil {
		return nil, err
	}
	history, err := partial.NewHistory(cfg.HistoryFrames, cfg.HistoryWrap)
	if err != nil {
		return nil, err
	}
	e.tracker = tracker
	e.history = history
	e.arena = partial.NewArena()
	e.peaks = make([]partial.Peak, 0, cfg.NumFreqs)

	if bank != nil {
		mapper, err := resynth.NewMapper(bank,
			resynth.WithRampTime(cfg.RampTime),
			resynth.WithDBRange(cfg.MinDB, cfg.MaxDB),
		)
		if err != nil {
			return nil, err
		}
		e.mapper = mapper
	}
	return e, nil
}

// Config returns the settings the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Mode returns the current mode.
func (e *Engine) Mode() Mode { return e.mode }

// PlayIndex returns the history position of the next playback frame.
func (e *Engine) PlayIndex() int { return e.playIndex }

// HistoryLen returns the number of recorded frames.
func (e *Engine) HistoryLen() int { return e.history.Len() }

// Frames returns copies of the recorded frames, oldest first.
func (e *Engine) Frames() []partial.TrackedFrame { return e.history.Frames() }

// Partial returns the recorded peaks of one partial, oldest first.
func (e *Engine) Partial(id partial.PartialID) []partial.Peak { return e.history.Partial(id) }

// NextID returns the id the next born partial will receive.
func (e *Engine) NextID() partial.PartialID { return e.tracker.NextID() }

// ActiveOscillators returns how many partials currently hold an oscillator.
func (e *Engine) ActiveOscillators() int {
	if e.mapper == nil {
		return 0
	}
	return e.mapper.Active()
}

// SetMode switches between record and playback. Entering playback seals the
// newest recorded frame and rewinds to the oldest one. Leaving playback
// discards the history. Either transition stops every oscillator. Setting the
// current mode does nothing.
func (e *Engine) SetMode(m Mode) error {
	if m != ModeRecord && m != ModePlayback {
		return fmt.Errorf("%w: %d", errInvalidMode, int(m))
	}
	if m == e.mode {
		return nil
	}

	stopped := e.stopAll()
	switch m {
	case ModePlayback:
		e.history.SealLast()
	case ModeRecord:
		e.history.Reset()
		e.arena.Reset()
	}
	e.playIndex = 0
	e.mode = m

	e.log.Info("mode switched",
		zap.Stringer("mode", m),
		zap.Int("stopped", stopped),
		zap.Int("frames", e.history.Len()),
	)
	return nil
}

// Toggle flips the mode and returns the new one.
func (e *Engine) Toggle() Mode {
	next := ModePlayback
	if e.mode == ModePlayback {
		next = ModeRecord
	}
	_ = e.SetMode(next)
	return next
}

// Reset returns to record mode with an empty history. Partial ids keep
// increasing.
func (e *Engine) Reset() {
	e.stopAll()
	e.history.Reset()
	e.arena.Reset()
	e.playIndex = 0
	e.mode = ModeRecord
}

// ProcessFrame is the per-frame callback.
func (e *Engine) ProcessFrame(frame spectrum.Frame) (Result, error) {
	var res Result
	if e.mode == ModePlayback {
		res = e.playback()
	} else {
		res = e.record(frame)
	}

	if e.display != nil && res.Frame.Gen != 0 {
		if err := e.display.WriteFrame(res.Frame); err != nil {
			return res, fmt.Errorf("engine display: %w", err)
		}
	}
	return res, nil
}

func (e *Engine) record(frame spectrum.Frame) Result {
	det := e.detectors[spectrum.ScaleDecibel]
	if frame.Scale == spectrum.ScaleLinear {
		det = e.detectors[spectrum.ScaleLinear]
	}

	e.peaks = det.DetectInto(e.peaks, frame)
	gen := e.arena.Advance(e.peaks)
	stats := e.tracker.Track(e.arena)

	if prev := e.arena.Previous(); prev.Gen != 0 {
		e.history.Seal(prev)
	}
	tf := partial.TrackedFrame{
		Gen:   gen,
		Index: frame.Index,
		Peaks: e.arena.Current().Peaks,
		Scale: frame.Scale,
	}
	cleared := e.history.Append(tf)

	var actions []resynth.Action
	if e.cfg.LiveResynth && e.mapper != nil {
		actions = copyActions(e.mapper.Apply(tf))
	}

	if ce := e.log.Check(zap.DebugLevel, "frame recorded"); ce != nil {
		ce.Write(
			zap.Uint64("gen", gen),
			zap.Uint64("index", frame.Index),
			zap.Int("peaks", len(tf.Peaks)),
			zap.Int("births", stats.Births),
			zap.Int("continuations", stats.Continuations),
			zap.Int("deaths", stats.Deaths),
			zap.Bool("cleared", cleared),
		)
	}

	return Result{
		Mode:    ModeRecord,
		Frame:   tf.Clone(),
		Stats:   stats,
		Actions: actions,
		Cleared: cleared,
	}
}

func (e *Engine) playback() Result {
	n := e.history.Len()
	if n == 0 {
		return Result{Mode: ModePlayback}
	}
	if e.playIndex >= n {
		e.playIndex = 0
	}

	f, _ := e.history.At(e.playIndex)
	var actions []resynth.Action
	if e.mapper != nil {
		actions = copyActions(e.mapper.Apply(f))
	}

	if ce := e.log.Check(zap.DebugLevel, "frame replayed"); ce != nil {
		ce.Write(
			zap.Int("position", e.playIndex),
			zap.Uint64("gen", f.Gen),
			zap.Int("actions", len(actions)),
		)
	}

	e.playIndex = (e.playIndex + 1) % n
	return Result{Mode: ModePlayback, Frame: f.Clone(), Actions: actions}
}

func (e *Engine) stopAll() int {
	if e.mapper == nil {
		return 0
	}
	return e.mapper.StopAll()
}

func copyActions(in []resynth.Action) []resynth.Action {
	if len(in) == 0 {
		return nil
	}
	out := make([]resynth.Action, len(in))
	copy(out, in)
	return out
}
