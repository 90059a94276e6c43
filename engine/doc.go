// Package engine ties spectrum frames, peak detection, partial tracking and
// resynthesis together behind one per-frame callback.
//
// An Engine is either recording, where every frame is analyzed, tracked and
// stored in a bounded history, or playing back, where the stored frames are
// replayed cyclically through the resynthesis mapper and incoming frames are
// ignored. Switching modes is synchronous: sounding oscillators are stopped
// and, when leaving playback, the recorded history is discarded.
//
// All state lives in the Engine value; nothing is shared between engines.
// An Engine performs no blocking work and starts no goroutines on the frame
// path, and it is not safe for concurrent use.
package engine
