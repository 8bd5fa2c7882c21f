package engine

// Motion advances persistent per-bar (height, velocity) state one simulation
// step per tick, spring-toward-target form:
//
//	velocity = (velocity + (target-height)*spring) * damping
//	height  += velocity
//
// With spring and damping both inside (0,1) the impulse response decays
// geometrically, so bounded targets always produce bounded heights.
type Motion struct {
	spring    float64
	damping   float64
	coupling  float64
	minHeight float64

	height  []float64
	vel     []float64
	out     []float64
	coupled []float64
}

// NewMotion creates the motion state for n bars, all at rest.
func NewMotion(cfg Config, n int) *Motion {
	m := &Motion{
		spring:    cfg.Spring,
		damping:   cfg.Damping,
		coupling:  cfg.Coupling,
		minHeight: cfg.MinHeight,
	}
	m.Resize(n)
	return m
}

// Resize adjusts the bar count and zeroes all state.
func (m *Motion) Resize(n int) {
	m.height = make([]float64, n)
	m.vel = make([]float64, n)
	m.out = make([]float64, n)
	m.coupled = make([]float64, n)
}

// Reset zeroes heights and velocities without changing the bar count.
func (m *Motion) Reset() {
	for i := range m.height {
		m.height[i] = 0
		m.vel[i] = 0
	}
}

// Step advances every bar one tick toward its target and returns the heights
// to report. Heights below the visibility threshold are reported as zero
// while the internal state keeps decaying naturally, so a bar never snaps
// when energy returns. The returned slice is reused across calls.
func (m *Motion) Step(targets []float64) []float64 {
	ts := targets
	if m.coupling > 0 && len(targets) > 2 {
		// Discrete Laplacian blend between neighboring targets, interior
		// bars only; the edges keep their own targets.
		copy(m.coupled, targets)
		for i := 1; i < len(targets)-1; i++ {
			m.coupled[i] = targets[i] + m.coupling*(targets[i-1]+targets[i+1]-2*targets[i])
		}
		ts = m.coupled
	}

	for i, target := range ts {
		v := (m.vel[i] + (target-m.height[i])*m.spring) * m.damping
		m.vel[i] = v
		m.height[i] += v

		h := m.height[i]
		if h < m.minHeight {
			h = 0
		}
		m.out[i] = h
	}
	return m.out
}

// Heights returns the internal (unthresholded) heights, mainly for tests.
func (m *Motion) Heights() []float64 { return m.height }
