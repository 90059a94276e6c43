// Package resynth drives a bank of oscillators from tracked partials.
//
// A Mapper turns each tracked frame into enter, continue and exit actions on
// oscillators obtained from an OscillatorBank. Births start an oscillator at
// the peak's frequency and gain without ramping; continuations glide to the
// new values over a short ramp so parameter changes do not click; deaths
// fade the oscillator out after its last frame has sounded, then stop it
// and return it to a free list for reuse.
//
// SineBank is a sample-domain OscillatorBank with linear parameter ramps,
// suitable for offline rendering and tests.
package resynth
