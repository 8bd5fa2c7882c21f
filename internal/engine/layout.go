package engine

import (
	"fmt"
	"math"
)

// Layout maps the analyzer's frequency bins onto visual bands. Edges are
// monotonically increasing; band i covers [edges[i], edges[i+1]). A band may
// end up with no bins when the edge spacing is finer than the analyzer's
// resolution, which the aggregator substitutes with a floor constant.
type Layout struct {
	edges []float64
	lo    []int // first bin index per band
	hi    []int // one past the last bin index per band
}

// NewLayout spaces the given number of band edges over [minHz, maxHz) and
// assigns each ascending bin center frequency to its band.
func NewLayout(mode Banding, bands int, minHz, maxHz float64, binFreqs []float64) (*Layout, error) {
	if bands < 1 {
		return nil, fmt.Errorf("%w: band count %d", ErrConfig, bands)
	}
	if minHz >= maxHz {
		return nil, fmt.Errorf("%w: frequency range %.1f..%.1f is not ascending", ErrConfig, minHz, maxHz)
	}

	edges := make([]float64, bands+1)
	switch mode {
	case BandingLinear:
		for i := range edges {
			edges[i] = minHz + (maxHz-minHz)*float64(i)/float64(bands)
		}
	case BandingLog:
		if minHz <= 0 {
			return nil, fmt.Errorf("%w: logarithmic banding needs a positive lower frequency", ErrConfig)
		}
		ratio := maxHz / minHz
		for i := range edges {
			edges[i] = minHz * math.Pow(ratio, float64(i)/float64(bands))
		}
	default:
		return nil, fmt.Errorf("%w: unknown banding mode %d", ErrConfig, int(mode))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, fmt.Errorf("%w: band edges not ascending at %d", ErrConfig, i)
		}
	}

	l := &Layout{
		edges: edges,
		lo:    make([]int, bands),
		hi:    make([]int, bands),
	}
	b := 0
	for i := range bands {
		for b < len(binFreqs) && binFreqs[b] < edges[i] {
			b++
		}
		l.lo[i] = b
		for b < len(binFreqs) && binFreqs[b] < edges[i+1] {
			b++
		}
		l.hi[i] = b
	}
	return l, nil
}

// Bands returns the number of visual bands.
func (l *Layout) Bands() int { return len(l.lo) }

// Edges returns the band edge frequencies in Hz. Callers must not modify the
// returned slice.
func (l *Layout) Edges() []float64 { return l.edges }

// Bins returns the half-open bin index range [lo, hi) covered by band i;
// lo == hi means the band is empty.
func (l *Layout) Bins(i int) (lo, hi int) { return l.lo[i], l.hi[i] }
