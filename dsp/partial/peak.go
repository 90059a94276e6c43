package partial

import "fmt"

// PartialID identifies one partial for its whole lifetime. Zero means
// "not assigned"; assigned ids start at 1 and are never reused.
type PartialID uint64

// Ref addresses a peak record by generation and slot. The zero Ref is the
// null link.
type Ref struct {
	Gen  uint64
	Slot int
}

// Valid reports whether r points at a peak.
func (r Ref) Valid() bool { return r.Gen != 0 }

func (r Ref) String() string {
	if !r.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", r.Gen, r.Slot)
}

// Peak is one spectral maximum. Frequency, Energy and Bin are fixed by the
// detector; Back, Forward and ID are written only by the Tracker.
type Peak struct {
	// Frequency in Hz.
	Frequency float64
	// Energy in the units of the analyzed frame (linear or dB).
	Energy float64
	// Bin is the fractional bin position the frequency was derived from.
	Bin float64

	Back    Ref
	Forward Ref
	ID      PartialID
}

// IsBirth reports whether the peak starts a partial.
func (p Peak) IsBirth() bool { return !p.Back.Valid() }

// unlink clears every tracking field.
func (p *Peak) unlink() {
	p.Back = Ref{}
	p.Forward = Ref{}
	p.ID = 0
}
