package analysis

import (
	"errors"
	"math"
	"testing"
)

func makeSine(freq float64, rate int, seconds float64) []float64 {
	n := int(float64(rate) * seconds)
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero window", Config{WindowSize: 0, HopLength: 512, Bins: 16}},
		{"zero hop", Config{WindowSize: 2048, HopLength: 0, Bins: 16}},
		{"zero bins", Config{WindowSize: 2048, HopLength: 512, Bins: 0}},
		{"bins beyond resolution", Config{WindowSize: 64, HopLength: 16, Bins: 64}},
	}
	for _, tc := range cases {
		if err := tc.cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error, got nil", tc.name)
		}
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
}

func TestAnalyzeEmptyBuffer(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Analyze(nil, 22050); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples for empty buffer, got %v", err)
	}
	if _, err := a.Analyze(makeSine(440, 22050, 1), 0); !errors.Is(err, ErrNoSamples) {
		t.Fatalf("expected ErrNoSamples for zero rate, got %v", err)
	}
}

func TestAnalyzeFrameCountAndTimes(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const rate = 22050
	an, err := a.Analyze(make([]float64, rate), rate) // exactly one second
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	wantFrames := (rate + DefaultHopLength - 1) / DefaultHopLength
	if an.NumFrames() != wantFrames {
		t.Fatalf("expected %d frames, got %d", wantFrames, an.NumFrames())
	}
	for i := 0; i < an.NumFrames(); i += 7 {
		want := float64(i*DefaultHopLength) / rate
		if got := an.FrameAt(want).Time; math.Abs(got-want) > 1e-12 {
			t.Fatalf("frame %d: expected timestamp %f, got %f", i, want, got)
		}
	}
	if an.Duration().Seconds() != 1 {
		t.Errorf("expected 1s duration, got %v", an.Duration())
	}
}

func TestAnalyzeSilenceSitsOnFloor(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	an, err := a.Analyze(make([]float64, 22050), 22050)
	if err != nil {
		t.Fatalf("silence must analyze cleanly, got %v", err)
	}
	for i := 0; i < an.NumFrames(); i++ {
		fr := an.FrameAt(float64(i) * float64(DefaultHopLength) / 22050)
		for b := 0; b < fr.Len(); b++ {
			if db := fr.DB(b); db != floorDB {
				t.Fatalf("frame %d bin %d: expected floor %v dB, got %v", i, b, floorDB, db)
			}
			if u := fr.Unit(b); u != 0 {
				t.Fatalf("frame %d bin %d: expected unit 0, got %v", i, b, u)
			}
		}
	}
}

func TestAnalyzeSineConcentratesEnergy(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const rate = 22050
	an, err := a.Analyze(makeSine(440, rate, 3), rate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	fr := an.FrameAt(1.5)
	freqs := an.BinFreqs()
	loudest := 0
	for b := 1; b < fr.Len(); b++ {
		if fr.DB(b) > fr.DB(loudest) {
			loudest = b
		}
	}
	if f := freqs[loudest]; math.Abs(f-440)/440 > 0.15 {
		t.Fatalf("loudest bin centered at %.1f Hz, expected near 440", f)
	}
	if u := fr.Unit(loudest); u < 0.9 {
		t.Fatalf("expected near-full unit magnitude at the tone, got %v", u)
	}
	for b, f := range freqs {
		if f > 4000 {
			if u := fr.Unit(b); u > 0.35 {
				t.Fatalf("bin %d (%.0f Hz) should be quiet, got unit %v", b, f, u)
			}
		}
	}
}

func TestFrameAtClampsAndStaysMonotonic(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	const rate = 22050
	an, err := a.Analyze(makeSine(440, rate, 2), rate)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if got := an.FrameAt(-5).Index; got != 0 {
		t.Errorf("negative time should clamp to first frame, got index %d", got)
	}
	if got := an.FrameAt(1e6).Index; got != an.NumFrames()-1 {
		t.Errorf("far future should clamp to last frame, got index %d", got)
	}

	hop := float64(DefaultHopLength) / rate
	if got := an.FrameAt(3 * hop).Index; got != 3 {
		t.Errorf("exact timestamp lookup: expected index 3, got %d", got)
	}
	if got := an.FrameAt(3*hop + hop/2).Index; got != 3 {
		t.Errorf("mid-hop lookup should floor to index 3, got %d", got)
	}

	prev := -1
	for step := range 200 {
		idx := an.FrameAt(float64(step) * 0.011).Index
		if idx < prev {
			t.Fatalf("lookup went backwards: %d after %d", idx, prev)
		}
		prev = idx
	}
}

func TestBinFreqsAscending(t *testing.T) {
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	an, err := a.Analyze(make([]float64, 4096), 44100)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	freqs := an.BinFreqs()
	if len(freqs) != DefaultBins {
		t.Fatalf("expected %d bins, got %d", DefaultBins, len(freqs))
	}
	for i := 1; i < len(freqs); i++ {
		if freqs[i] <= freqs[i-1] {
			t.Fatalf("bin centers not ascending at %d: %f then %f", i, freqs[i-1], freqs[i])
		}
	}
	if freqs[0] <= 0 || freqs[len(freqs)-1] > 22050 {
		t.Fatalf("bin centers out of range: first %f, last %f", freqs[0], freqs[len(freqs)-1])
	}
}
