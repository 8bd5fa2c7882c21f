package engine

import "math"

const (
	// Blend weights for combining mean and peak magnitude within a band.
	// Mean alone flattens transients, peak alone jitters.
	meanWeight = 0.6
	peakWeight = 0.4

	epsilon = 1e-6
)

// Aggregator folds one full-resolution spectral frame into per-band target
// energies on the 0-1 scale: band selection, mean/peak blend, bass boost,
// adaptive normalization against recent history, logarithmic compression and
// exponential easing, then the neighbor-follow pass for visually dead bars.
type Aggregator struct {
	cfg    Config
	layout *Layout
	hist   *History
	logK   float64
	out    []float64
	snap   []float64
	empty  []bool
}

// NewAggregator binds the pipeline to a band layout and an energy history.
// The history is owned by the caller so it can survive layout changes.
func NewAggregator(cfg Config, layout *Layout, hist *History) *Aggregator {
	n := layout.Bands()
	g := &Aggregator{
		cfg:    cfg,
		layout: layout,
		hist:   hist,
		logK:   math.Log1p(cfg.Sharpness),
		out:    make([]float64, n),
		snap:   make([]float64, n),
		empty:  make([]bool, n),
	}
	for i := range n {
		lo, hi := layout.Bins(i)
		g.empty[i] = lo == hi
	}
	return g
}

// Apply reduces the frame's unit magnitudes to per-band energies. The
// returned slice is reused across calls. Values stay within [0, 1+epsilon]
// for any input; downstream consumers clamp anyway.
func (g *Aggregator) Apply(units []float64) []float64 {
	n := g.layout.Bands()

	sum := 0.0
	for i := range n {
		if g.empty[i] {
			// No bins fall inside this band. The floor constant goes
			// straight to the output scale below; feeding it through the
			// adaptive normalization would blow it up whenever the rest of
			// the frame is quiet.
			g.out[i] = g.cfg.FloorLevel
			sum += g.cfg.FloorLevel
			continue
		}
		lo, hi := g.layout.Bins(i)
		mean, peak := 0.0, 0.0
		for b := lo; b < hi; b++ {
			u := units[b]
			mean += u
			if u > peak {
				peak = u
			}
		}
		mean /= float64(hi - lo)
		v := (meanWeight*mean + peakWeight*peak) * g.boost(i, n)
		g.out[i] = v
		sum += v
	}

	g.hist.Push(sum / float64(n))
	adaptiveMax := g.hist.Max()
	if adaptiveMax < epsilon {
		adaptiveMax = epsilon
	}

	for i := range n {
		if g.empty[i] {
			continue
		}
		x := g.out[i] / adaptiveMax
		x = math.Log1p(g.cfg.Sharpness*x) / g.logK
		g.out[i] = 1 - math.Exp(-x*g.cfg.EaseStrength)
	}

	if g.cfg.ActivityThreshold > 0 && n > 1 {
		g.follow(n)
	}
	return g.out
}

// boost returns the per-band bass multiplier: 1+BassBoost at the lowest
// band, tapering monotonically to 1 at the highest.
func (g *Aggregator) boost(i, n int) float64 {
	if n == 1 {
		return 1 + g.cfg.BassBoost
	}
	return 1 + g.cfg.BassBoost*(1-float64(i)/float64(n-1))
}

// follow replaces bands below the activity threshold with the average of
// their immediate neighbors minus a fixed offset, clamped at zero. Edge
// bands use their single neighbor; there is no wraparound. Neighbor values
// are read from a snapshot so the pass is order-independent.
func (g *Aggregator) follow(n int) {
	copy(g.snap, g.out)
	for i := range n {
		if g.snap[i] >= g.cfg.ActivityThreshold {
			continue
		}
		var nb float64
		switch i {
		case 0:
			nb = g.snap[1]
		case n - 1:
			nb = g.snap[n-2]
		default:
			nb = (g.snap[i-1] + g.snap[i+1]) / 2
		}
		v := nb - g.cfg.FollowOffset
		if v < 0 {
			v = 0
		}
		g.out[i] = v
	}
}
