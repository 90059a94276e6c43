package partial

import "github.com/cwbudde/algo-partials/dsp/spectrum"

// TrackedFrame is the display/playback record of one analyzed frame.
type TrackedFrame struct {
	Gen uint64
	// Index is the spectrum frame index the peaks were detected in.
	Index uint64
	Peaks []Peak
	Scale spectrum.Scale
	// Sealed is set once the following frame has been matched, i.e. once the
	// forward links of Peaks are final.
	Sealed bool
}

// Clone returns a deep copy of f.
func (f TrackedFrame) Clone() TrackedFrame {
	out := f
	if f.Peaks != nil {
		out.Peaks = make([]Peak, len(f.Peaks))
		copy(out.Peaks, f.Peaks)
	}
	return out
}

// History keeps recent tracked frames for display and playback. Its size is
// bounded by the scroll window: when full it either starts over (the default,
// like a display wiping its canvas) or drops the oldest frame.
type History struct {
	frames []TrackedFrame
	head   int
	size   int
	wrap   bool
}

// NewHistory creates a history holding at most capacity frames. With wrap
// set, the oldest frame is dropped when full instead of clearing everything.
func NewHistory(capacity int, wrap bool) (*History, error) {
	if err := validateCapacity(capacity); err != nil {
		return nil, err
	}
	return &History{frames: make([]TrackedFrame, capacity), wrap: wrap}, nil
}

// Cap returns the capacity in frames.
func (h *History) Cap() int { return len(h.frames) }

// Len returns the number of stored frames.
func (h *History) Len() int { return h.size }

// Append stores a copy of f. It reports whether the history was cleared to
// make room.
func (h *History) Append(f TrackedFrame) (cleared bool) {
	f = f.Clone()
	if h.size == len(h.frames) {
		if !h.wrap {
			h.Reset()
			cleared = true
		} else {
			h.frames[h.head] = f
			h.head = (h.head + 1) % len(h.frames)
			return false
		}
	}
	h.frames[(h.head+h.size)%len(h.frames)] = f
	h.size++
	return cleared
}

// At returns the i-th stored frame, oldest first. The returned frame shares
// storage with the history and must be treated as read-only.
func (h *History) At(i int) (TrackedFrame, bool) {
	if i < 0 || i >= h.size {
		return TrackedFrame{}, false
	}
	return h.frames[(h.head+i)%len(h.frames)], true
}

// Last returns the newest frame.
func (h *History) Last() (TrackedFrame, bool) {
	return h.At(h.size - 1)
}

// Seal replaces the peaks of the stored frame with generation g.Gen by a copy
// of g.Peaks and marks it sealed. It reports whether such a frame was found.
func (h *History) Seal(g Generation) bool {
	idx, ok := h.index(g.Gen)
	if !ok {
		return false
	}
	f := &h.frames[idx]
	f.Peaks = append(f.Peaks[:0], g.Peaks...)
	f.Sealed = true
	return true
}

// SealLast marks the newest frame sealed without changing its links.
func (h *History) SealLast() {
	if h.size == 0 {
		return
	}
	h.frames[(h.head+h.size-1)%len(h.frames)].Sealed = true
}

// Lookup resolves a reference against the stored frames.
func (h *History) Lookup(r Ref) (Peak, bool) {
	idx, ok := h.index(r.Gen)
	if !ok {
		return Peak{}, false
	}
	f := h.frames[idx]
	if r.Slot < 0 || r.Slot >= len(f.Peaks) {
		return Peak{}, false
	}
	return f.Peaks[r.Slot], true
}

// Frames returns copies of all stored frames, oldest first.
func (h *History) Frames() []TrackedFrame {
	out := make([]TrackedFrame, 0, h.size)
	for i := 0; i < h.size; i++ {
		f, _ := h.At(i)
		out = append(out, f.Clone())
	}
	return out
}

// Partial returns the peaks carrying id, oldest first.
func (h *History) Partial(id PartialID) []Peak {
	var out []Peak
	for i := 0; i < h.size; i++ {
		f, _ := h.At(i)
		for _, p := range f.Peaks {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// Reset removes every frame.
func (h *History) Reset() {
	for i := range h.frames {
		h.frames[i] = TrackedFrame{}
	}
	h.head = 0
	h.size = 0
}

func (h *History) index(gen uint64) (int, bool) {
	if h.size == 0 || gen == 0 {
		return 0, false
	}
	first := h.frames[h.head].Gen
	if off := gen - first; gen >= first && off < uint64(h.size) {
		idx := (h.head + int(off)) % len(h.frames)
		if h.frames[idx].Gen == gen {
			return idx, true
		}
	}
	for i := 0; i < h.size; i++ {
		idx := (h.head + i) % len(h.frames)
		if h.frames[idx].Gen == gen {
			return idx, true
		}
	}
	return 0, false
}
