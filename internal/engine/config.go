package engine

import (
	"errors"
	"fmt"

	"github.com/kamatealif/musializer/internal/analysis"
)

// ErrConfig marks an invalid engine configuration. Bad values are rejected up
// front rather than clamped: an out-of-range damping factor, for example,
// makes the bar physics diverge instead of merely looking wrong.
var ErrConfig = errors.New("invalid config")

// Banding selects how the frequency range is split into bands.
type Banding int

const (
	BandingLog Banding = iota
	BandingLinear
)

func (b Banding) String() string {
	switch b {
	case BandingLog:
		return "log"
	case BandingLinear:
		return "linear"
	}
	return fmt.Sprintf("banding(%d)", int(b))
}

// ParseBanding converts a flag value into a Banding mode.
func ParseBanding(s string) (Banding, error) {
	switch s {
	case "log", "logarithmic":
		return BandingLog, nil
	case "linear", "lin":
		return BandingLinear, nil
	}
	return 0, fmt.Errorf("%w: unknown banding mode %q", ErrConfig, s)
}

// BarPresets are the selectable bar counts. The analyzer bin capacity caps
// the top preset.
var BarPresets = []int{8, 16, 32, 64, 128}

func validBarCount(n int) bool {
	for _, p := range BarPresets {
		if n == p {
			return true
		}
	}
	return false
}

// Config is the full tuning surface of the visualization engine.
type Config struct {
	Analysis analysis.Config

	Bars    int     // active bar count, one of BarPresets
	Banding Banding // band spacing over [MinFreq, MaxFreq)
	MinFreq float64 // Hz, inclusive lower bound of the visualized range
	MaxFreq float64 // Hz, exclusive upper bound

	Spring  float64 // per-tick spring constant, in (0,1)
	Damping float64 // per-tick velocity decay, in (0,1)

	Coupling float64 // Laplacian blend between neighboring targets, >= 0

	Sharpness    float64 // k in the log1p(k*x)/log1p(k) compression
	EaseStrength float64 // c in the 1-e^(-c*x) easing
	HistoryLen   int     // frames of energy history for adaptive normalization

	FloorLevel        float64 // substitute magnitude for bands with no bins
	ActivityThreshold float64 // below this a band follows its neighbors; 0 disables
	FollowOffset      float64 // subtracted from the neighbor average when following
	BassBoost         float64 // extra gain at the lowest band, fading to 0 at the top
	MinHeight         float64 // heights below this are reported as zero

	FPS          int     // render tick rate the motion constants are tuned for
	Caps         bool    // animate falling peak markers above the bars
	CapFrequency float64 // angular frequency of the cap spring
	CapDamping   float64 // damping ratio of the cap spring
}

// DefaultConfig returns the tuning used by the stock player UI.
func DefaultConfig() Config {
	return Config{
		Analysis: analysis.DefaultConfig(),

		Bars:    64,
		Banding: BandingLog,
		MinFreq: 20,
		MaxFreq: 12000,

		Spring:  0.2,
		Damping: 0.8,

		Coupling: 0,

		Sharpness:    9,
		EaseStrength: 3,
		HistoryLen:   90,

		FloorLevel:        0.02,
		ActivityThreshold: 0.02,
		FollowOffset:      0.05,
		BassBoost:         0.3,
		MinHeight:         0.005,

		FPS:          60,
		Caps:         true,
		CapFrequency: 5.0,
		CapDamping:   0.9,
	}
}

// Validate rejects any configuration the engine cannot run stably with.
func (c Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if !validBarCount(c.Bars) {
		return fmt.Errorf("%w: bar count %d is not one of %v", ErrConfig, c.Bars, BarPresets)
	}
	if c.Bars > c.Analysis.Bins {
		return fmt.Errorf("%w: bar count %d exceeds analyzer capacity %d", ErrConfig, c.Bars, c.Analysis.Bins)
	}
	if c.Banding != BandingLog && c.Banding != BandingLinear {
		return fmt.Errorf("%w: unknown banding mode %d", ErrConfig, int(c.Banding))
	}
	if c.MinFreq >= c.MaxFreq {
		return fmt.Errorf("%w: frequency range %.1f..%.1f is not ascending", ErrConfig, c.MinFreq, c.MaxFreq)
	}
	if c.Banding == BandingLog && c.MinFreq <= 0 {
		return fmt.Errorf("%w: logarithmic banding needs a positive lower frequency, got %.1f", ErrConfig, c.MinFreq)
	}
	if c.MinFreq < 0 {
		return fmt.Errorf("%w: negative lower frequency %.1f", ErrConfig, c.MinFreq)
	}
	if c.Spring <= 0 || c.Spring >= 1 {
		return fmt.Errorf("%w: spring constant %.3f outside (0,1)", ErrConfig, c.Spring)
	}
	if c.Damping <= 0 || c.Damping >= 1 {
		return fmt.Errorf("%w: damping factor %.3f outside (0,1)", ErrConfig, c.Damping)
	}
	if c.Coupling < 0 {
		return fmt.Errorf("%w: negative coupling %.3f", ErrConfig, c.Coupling)
	}
	if c.Sharpness <= 0 {
		return fmt.Errorf("%w: sharpness must be positive, got %.3f", ErrConfig, c.Sharpness)
	}
	if c.EaseStrength <= 0 {
		return fmt.Errorf("%w: easing strength must be positive, got %.3f", ErrConfig, c.EaseStrength)
	}
	if c.HistoryLen < 1 {
		return fmt.Errorf("%w: history length %d must be at least 1", ErrConfig, c.HistoryLen)
	}
	if c.FloorLevel < 0 || c.ActivityThreshold < 0 || c.FollowOffset < 0 {
		return fmt.Errorf("%w: floor, activity threshold and follow offset must not be negative", ErrConfig)
	}
	if c.BassBoost < 0 {
		return fmt.Errorf("%w: negative bass boost %.3f", ErrConfig, c.BassBoost)
	}
	if c.MinHeight < 0 {
		return fmt.Errorf("%w: negative minimum height %.4f", ErrConfig, c.MinHeight)
	}
	if c.FPS < 1 {
		return fmt.Errorf("%w: tick rate %d must be at least 1", ErrConfig, c.FPS)
	}
	if c.Caps && (c.CapFrequency <= 0 || c.CapDamping <= 0) {
		return fmt.Errorf("%w: cap spring parameters must be positive", ErrConfig)
	}
	return nil
}
