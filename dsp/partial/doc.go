// Package partial extracts spectral peaks and links them across frames into
// partials.
//
// A [Detector] finds sub-bin maxima in one magnitude or dB frame by locating
// downward zero crossings of the centred first difference and interpolating
// linearly between neighbouring bins. A [Tracker] then associates the peaks
// of frame N with those of frame N-1 by nearest pitch, using a bounded greedy
// pass rather than an optimal assignment, so that results depend on the
// energy order of both lists.
//
// Peaks never point at each other directly. An [Arena] keeps the two most
// recent generations of peak records, and links are (generation, slot) pairs
// ([Ref]). A peak without a back link is the birth of a partial and receives a
// fresh [PartialID]; a peak left without a forward link after the following
// frame has been matched is the partial's last appearance.
package partial
