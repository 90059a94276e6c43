package engine

import (
	"fmt"
	"strings"
)

// Mode selects what the engine does with incoming frames.
type Mode int

const (
	// ModeRecord analyzes, tracks and stores every frame.
	ModeRecord Mode = iota
	// ModePlayback replays the stored frames through the oscillators.
	ModePlayback
)

func (m Mode) String() string {
	switch m {
	case ModeRecord:
		return "record"
	case ModePlayback:
		return "playback"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "record" and "playback".
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "record", "rec", "":
		return ModeRecord, nil
	case "playback", "play":
		return ModePlayback, nil
	default:
		return 0, fmt.Errorf("unknown engine mode: %q", name)
	}
}
