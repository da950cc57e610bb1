// Package window provides a fixed-capacity FIFO of candles backed by a
// circular buffer. Appending beyond capacity evicts the oldest entry, so
// the window always holds the most recent bars in arrival order.
package window

import (
	"trading-monitor/internal/model"
)

// Window is a bounded candle history. Not safe for concurrent use; each
// pipeline owns exactly one.
type Window struct {
	buf   []model.Candle
	start int
	size  int

	evicted uint64
}

// New creates a window with the given capacity. Capacity below 1 is
// raised to 1.
func New(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]model.Candle, capacity)}
}

// Append adds a candle, evicting the oldest when full. Returns true when
// an eviction happened.
func (w *Window) Append(c model.Candle) bool {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = c
		w.size++
		return false
	}
	w.buf[w.start] = c
	w.start = (w.start + 1) % len(w.buf)
	w.evicted++
	return true
}

// Len returns the number of candles currently held.
func (w *Window) Len() int { return w.size }

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Evicted returns the total number of candles dropped since creation.
func (w *Window) Evicted() uint64 { return w.evicted }

// At returns the i-th candle in arrival order, oldest first.
func (w *Window) At(i int) model.Candle {
	return w.buf[(w.start+i)%len(w.buf)]
}

// Last returns the newest candle. ok is false on an empty window.
func (w *Window) Last() (model.Candle, bool) {
	if w.size == 0 {
		return model.Candle{}, false
	}
	return w.At(w.size - 1), true
}

// Snapshot copies the window contents into a fresh slice, oldest first.
func (w *Window) Snapshot() []model.Candle {
	out := make([]model.Candle, w.size)
	for i := 0; i < w.size; i++ {
		out[i] = w.At(i)
	}
	return out
}

// Reset empties the window without releasing the backing array.
func (w *Window) Reset() {
	w.start, w.size = 0, 0
}
