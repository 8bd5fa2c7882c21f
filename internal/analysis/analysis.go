package analysis

import (
	"sort"
	"time"
)

// Analysis holds the spectral frames of one fully analyzed track. It is
// immutable once built, so concurrent readers need no locking.
type Analysis struct {
	frames [][]float64 // dB values, one slice per frame
	times  []float64   // frame timestamps in seconds, ascending
	freqs  []float64   // bin center frequencies in Hz, ascending
	rate   int
	dur    time.Duration
}

// Frame is a read-only view of one analysis frame.
type Frame struct {
	Index int
	Time  float64
	db    []float64
}

func (a *Analysis) NumFrames() int { return len(a.frames) }

func (a *Analysis) NumBins() int { return len(a.freqs) }

func (a *Analysis) SampleRate() int { return a.rate }

func (a *Analysis) Duration() time.Duration { return a.dur }

// BinFreqs returns the center frequency of each bin in Hz. Callers must not
// modify the returned slice.
func (a *Analysis) BinFreqs() []float64 { return a.freqs }

// FrameAt returns the frame with the greatest timestamp not after t. Times
// before the first frame clamp to the first, times past the end clamp to the
// last, so the lookup is total for any finite t.
func (a *Analysis) FrameAt(t float64) Frame {
	i := sort.SearchFloat64s(a.times, t)
	if i == len(a.times) || a.times[i] > t {
		i--
	}
	if i < 0 {
		i = 0
	}
	return Frame{Index: i, Time: a.times[i], db: a.frames[i]}
}

// Len returns the number of bins in the frame.
func (f Frame) Len() int { return len(f.db) }

// DB returns bin i in dB relative to the track maximum, in [floor, 0].
func (f Frame) DB(i int) float64 { return f.db[i] }

// Unit maps bin i onto the 0–1 magnitude scale consumed by the band
// aggregator: the dB floor becomes 0, the track maximum becomes 1.
func (f Frame) Unit(i int) float64 {
	u := (f.db[i] - floorDB) / dbRange
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}

// Units fills dst with every bin on the unit scale, reallocating only when
// dst is too small, and returns the filled slice.
func (f Frame) Units(dst []float64) []float64 {
	if cap(dst) < len(f.db) {
		dst = make([]float64, len(f.db))
	}
	dst = dst[:len(f.db)]
	for i := range f.db {
		dst[i] = f.Unit(i)
	}
	return dst
}
