package partial

// Generation is the peak list of one analyzed frame. Gen numbers start at 1
// and increase by one per frame.
type Generation struct {
	Gen   uint64
	Peaks []Peak
}

// Len returns the number of peaks.
func (g Generation) Len() int { return len(g.Peaks) }

// At returns the peak a reference points at, if it belongs to g.
func (g Generation) At(r Ref) (*Peak, bool) {
	if !r.Valid() || r.Gen != g.Gen || r.Slot < 0 || r.Slot >= len(g.Peaks) {
		return nil, false
	}
	return &g.Peaks[r.Slot], true
}

// clone returns a deep copy of g.
func (g Generation) clone() Generation {
	out := Generation{Gen: g.Gen}
	if g.Peaks != nil {
		out.Peaks = make([]Peak, len(g.Peaks))
		copy(out.Peaks, g.Peaks)
	}
	return out
}

// Arena holds the previous and current generation of peak records. Storage of
// the evicted generation is reused for the next one, so the frame path does
// not allocate once the arena has grown to the per-frame peak limit.
type Arena struct {
	prev Generation
	cur  Generation
	last uint64
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Advance makes the current generation the previous one and installs a copy
// of peaks as the new current generation with all links cleared. It returns
// the new generation number.
func (a *Arena) Advance(peaks []Peak) uint64 {
	a.last++
	recycled := a.prev.Peaks[:0]
	a.prev = a.cur
	recycled = append(recycled, peaks...)
	for i := range recycled {
		recycled[i].unlink()
	}
	a.cur = Generation{Gen: a.last, Peaks: recycled}
	return a.last
}

// Previous returns the older resident generation (empty before the second
// Advance).
func (a *Arena) Previous() Generation { return a.prev }

// Current returns the newest generation.
func (a *Arena) Current() Generation { return a.cur }

// Resolve returns the peak r points at while its generation is resident.
func (a *Arena) Resolve(r Ref) (*Peak, bool) {
	if p, ok := a.cur.At(r); ok {
		return p, true
	}
	return a.prev.At(r)
}

// Reset drops both generations. Generation numbers keep increasing so stale
// references never resolve against new records.
func (a *Arena) Reset() {
	a.prev = Generation{Peaks: a.prev.Peaks[:0]}
	a.cur = Generation{Peaks: a.cur.Peaks[:0]}
}

// Snapshot returns deep copies of both generations.
func (a *Arena) Snapshot() (prev, cur Generation) {
	return a.prev.clone(), a.cur.clone()
}
