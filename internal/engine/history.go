package engine

// History is a fixed-capacity ring of recent frame energies. The engine tick
// is its only writer and reader, so there is no locking; the adaptive
// normalization in the aggregator divides by its maximum.
type History struct {
	buf []float64
	w   int // write position
	n   int // current fill level
}

// NewHistory creates a ring holding the given number of observations.
func NewHistory(capacity int) *History {
	return &History{buf: make([]float64, capacity)}
}

// Push records one observation, overwriting the oldest once full.
func (h *History) Push(v float64) {
	h.buf[h.w] = v
	h.w = (h.w + 1) % len(h.buf)
	if h.n < len(h.buf) {
		h.n++
	}
}

// Max returns the largest recorded observation, or 0 when empty. Filled
// slots always occupy buf[0:n], wrapped or not, so a straight scan suffices.
func (h *History) Max() float64 {
	max := 0.0
	for i := range h.n {
		if h.buf[i] > max {
			max = h.buf[i]
		}
	}
	return max
}

// Len reports how many observations are currently recorded.
func (h *History) Len() int { return h.n }

// Reset empties the ring.
func (h *History) Reset() {
	h.w = 0
	h.n = 0
}
