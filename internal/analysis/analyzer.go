package analysis

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	DefaultWindowSize = 2048
	DefaultHopLength  = 512
	DefaultBins       = 128

	// Frames store power in dB relative to the loudest bin of the track,
	// clamped to floorDB. A bin at floorDB maps to 0 on the unit scale.
	floorDB  = -80.0
	dbRange  = -floorDB
	minPower = 1e-10
)

// ErrNoSamples is returned when analysis is asked to run on an empty buffer.
var ErrNoSamples = errors.New("no samples to analyze")

// Config controls the STFT geometry and the spectral resolution of the
// resulting frames.
type Config struct {
	WindowSize int // samples per FFT window
	HopLength  int // samples between consecutive frame starts
	Bins       int // mel-spaced bins per frame
}

// DefaultConfig returns the analysis geometry used when the caller does not
// override it: 2048-sample windows advancing by 512, folded into 128 bins.
func DefaultConfig() Config {
	return Config{
		WindowSize: DefaultWindowSize,
		HopLength:  DefaultHopLength,
		Bins:       DefaultBins,
	}
}

func (c Config) Validate() error {
	if c.WindowSize < 2 {
		return fmt.Errorf("window size %d too small", c.WindowSize)
	}
	if c.HopLength < 1 {
		return fmt.Errorf("hop length %d must be positive", c.HopLength)
	}
	if c.Bins < 1 {
		return fmt.Errorf("bin count %d must be positive", c.Bins)
	}
	if c.Bins > c.WindowSize/2 {
		return fmt.Errorf("bin count %d exceeds spectral resolution of window %d", c.Bins, c.WindowSize)
	}
	return nil
}

// Analyzer turns a full PCM buffer into time-stamped spectral frames. All the
// heavy lifting happens in one Analyze pass; sampling the result afterwards
// is cheap and allocation-free.
type Analyzer struct {
	cfg    Config
	fft    *fourier.FFT
	window []float64 // precomputed Hann coefficients
}

// New builds an analyzer with a precomputed FFT plan and window.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	win := make([]float64, cfg.WindowSize)
	for i := range win {
		win[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(cfg.WindowSize-1)))
	}
	return &Analyzer{
		cfg:    cfg,
		fft:    fourier.NewFFT(cfg.WindowSize),
		window: win,
	}, nil
}

// Analyze runs the windowed FFT over the whole buffer and folds each spectrum
// into mel-spaced power bins. Frame i covers the window starting at sample
// i*hop, so its timestamp is i*hop/rate; the tail window is zero-padded. The
// returned Analysis is immutable and safe to read from any goroutine.
//
// An all-zero buffer is still a valid track: every bin of every frame sits on
// the dB floor. Only an empty buffer or a nonsensical rate is an error.
func (a *Analyzer) Analyze(samples []float64, sampleRate int) (*Analysis, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: invalid sample rate %d", ErrNoSamples, sampleRate)
	}

	win := a.cfg.WindowSize
	hop := a.cfg.HopLength
	nFrames := (len(samples) + hop - 1) / hop
	bank, centers := a.melBank(sampleRate)

	frames := make([][]float64, nFrames)
	times := make([]float64, nFrames)
	windowed := make([]float64, win)
	var coeffs []complex128
	maxPower := 0.0

	for f := range nFrames {
		start := f * hop
		for j := range win {
			var s float64
			if start+j < len(samples) {
				s = samples[start+j]
			}
			windowed[j] = s * a.window[j]
		}
		coeffs = a.fft.Coefficients(coeffs, windowed)

		power := make([]float64, a.cfg.Bins)
		for m, flt := range bank {
			var p float64
			for k, w := range flt.weights {
				c := coeffs[flt.start+k]
				re, im := real(c), imag(c)
				p += (re*re + im*im) * w
			}
			power[m] = p
			if p > maxPower {
				maxPower = p
			}
		}
		frames[f] = power
		times[f] = float64(start) / float64(sampleRate)
	}

	// Convert power to dB relative to the track maximum. Digital silence has
	// no reference to speak of, so it goes straight to the floor instead of
	// dividing by epsilon.
	if maxPower <= minPower {
		for _, fr := range frames {
			for i := range fr {
				fr[i] = floorDB
			}
		}
	} else {
		for _, fr := range frames {
			for i, p := range fr {
				db := 10 * math.Log10(math.Max(p, minPower)/maxPower)
				if db < floorDB {
					db = floorDB
				}
				fr[i] = db
			}
		}
	}

	return &Analysis{
		frames: frames,
		times:  times,
		freqs:  centers,
		rate:   sampleRate,
		dur:    time.Duration(float64(len(samples)) / float64(sampleRate) * float64(time.Second)),
	}, nil
}

// melFilter is one triangular filter over a contiguous run of FFT bins.
type melFilter struct {
	start   int
	weights []float64
}

// melBank builds the triangular filterbank for the given rate, plus each
// filter's center frequency in Hz. Filters are spaced evenly on the mel
// scale between 0 and Nyquist, matching the analyzer's bin semantics.
func (a *Analyzer) melBank(sampleRate int) ([]melFilter, []float64) {
	nyquist := float64(sampleRate) / 2
	nBins := a.cfg.WindowSize/2 + 1
	hzPerBin := float64(sampleRate) / float64(a.cfg.WindowSize)

	points := make([]float64, a.cfg.Bins+2)
	top := hzToMel(nyquist)
	for i := range points {
		points[i] = melToHz(top * float64(i) / float64(len(points)-1))
	}

	bank := make([]melFilter, a.cfg.Bins)
	centers := make([]float64, a.cfg.Bins)
	for m := range bank {
		lower, center, upper := points[m], points[m+1], points[m+2]
		centers[m] = center

		lo := int(math.Ceil(lower / hzPerBin))
		hi := int(math.Floor(upper / hzPerBin))
		if lo < 0 {
			lo = 0
		}
		if hi > nBins-1 {
			hi = nBins - 1
		}

		var weights []float64
		for k := lo; k <= hi; k++ {
			f := float64(k) * hzPerBin
			var w float64
			switch {
			case f <= center && center > lower:
				w = (f - lower) / (center - lower)
			case f > center && upper > center:
				w = (upper - f) / (upper - center)
			}
			if w < 0 {
				w = 0
			}
			weights = append(weights, w)
		}
		bank[m] = melFilter{start: lo, weights: weights}
	}
	return bank, centers
}

func hzToMel(f float64) float64 { return 2595 * math.Log10(1+f/700) }

func melToHz(m float64) float64 { return 700 * (math.Pow(10, m/2595) - 1) }
