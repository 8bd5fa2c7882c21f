package player

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewBufferMixesStereoToMono(t *testing.T) {
	raw := &rawPCM{
		data:     []int16{1000, 3000, -2000, 2000},
		channels: 2,
		rate:     44100,
	}
	buf, err := newBuffer(raw, Metadata{})
	if err != nil {
		t.Fatalf("expected buffer, got error: %v", err)
	}
	if len(buf.Samples) != 2 {
		t.Fatalf("expected 2 mono samples, got %d", len(buf.Samples))
	}
	want := 2000.0 / 32768
	if math.Abs(buf.Samples[0]-want) > 1e-12 {
		t.Errorf("expected first sample %v, got %v", want, buf.Samples[0])
	}
	if math.Abs(buf.Samples[1]) > 1e-12 {
		t.Errorf("expected second sample 0, got %v", buf.Samples[1])
	}
	if len(buf.PCM) != 8 {
		t.Errorf("expected 8 PCM bytes, got %d", len(buf.PCM))
	}
	// Stereo input passes through unchanged.
	got := pcmFromBytes(buf.PCM)
	for i, v := range raw.data {
		if got[i] != v {
			t.Errorf("PCM[%d]: expected %d, got %d", i, v, got[i])
		}
	}
}

func TestNewBufferDuplicatesMonoToStereo(t *testing.T) {
	raw := &rawPCM{data: []int16{5000, -5000}, channels: 1, rate: 22050}
	buf, err := newBuffer(raw, Metadata{})
	if err != nil {
		t.Fatalf("expected buffer, got error: %v", err)
	}
	got := pcmFromBytes(buf.PCM)
	want := []int16{5000, 5000, -5000, -5000}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PCM[%d]: expected %d, got %d", i, want[i], got[i])
		}
	}
	if math.Abs(buf.Samples[0]-5000.0/32768) > 1e-12 {
		t.Errorf("mono sample should be unscaled by channel count, got %v", buf.Samples[0])
	}
}

func TestNewBufferRejectsEmpty(t *testing.T) {
	cases := []*rawPCM{
		nil,
		{data: nil, channels: 2, rate: 44100},
		{data: []int16{1}, channels: 0, rate: 44100},
		{data: []int16{1, 2}, channels: 2, rate: 0},
	}
	for i, raw := range cases {
		if _, err := newBuffer(raw, Metadata{}); !errors.Is(err, ErrDecode) {
			t.Errorf("case %d: expected ErrDecode, got %v", i, err)
		}
	}
}

func TestBufferDuration(t *testing.T) {
	raw := &rawPCM{data: make([]int16, 44100), channels: 1, rate: 44100}
	buf, err := newBuffer(raw, Metadata{})
	if err != nil {
		t.Fatalf("expected buffer, got error: %v", err)
	}
	if buf.Duration() != time.Second {
		t.Errorf("expected 1s duration, got %v", buf.Duration())
	}
}

func TestPCMFromBytes(t *testing.T) {
	got := pcmFromBytes([]byte{0x01, 0x80, 0xFF, 0x7F, 0x00, 0x00})
	want := []int16{-32767, 32767, 0}
	if len(got) != len(want) {
		t.Fatalf("expected %d samples, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d: expected %d, got %d", i, want[i], got[i])
		}
	}
}

func TestSampleToInt16(t *testing.T) {
	cases := []struct {
		v, depth int
		want     int16
	}{
		{255, 8, 32512},
		{128, 8, 0},
		{0, 8, -32768},
		{12345, 16, 12345},
		{0x7FFFFF, 24, 32767},
		{-0x800000, 24, -32768},
		{0x7FFFFFFF, 32, 32767},
	}
	for _, c := range cases {
		if got := sampleToInt16(c.v, c.depth); got != c.want {
			t.Errorf("sampleToInt16(%d, %d): expected %d, got %d", c.v, c.depth, c.want, got)
		}
	}
}

func TestShiftToInt16(t *testing.T) {
	cases := []struct {
		v, bps int
		want   int16
	}{
		{0x7FFFFF, 24, 32767},
		{-0x800000, 24, -32768},
		{127, 8, 32512},
		{-128, 8, -32768},
		{1234, 16, 1234},
	}
	for _, c := range cases {
		if got := shiftToInt16(c.v, c.bps); got != c.want {
			t.Errorf("shiftToInt16(%d, %d): expected %d, got %d", c.v, c.bps, c.want, got)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/track.mp3"); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode for missing file, got %v", err)
	}
}

func TestMetadataFallbackTitle(t *testing.T) {
	meta := ReadMetadata("/nonexistent/dir/Midnight City.mp3")
	if meta.Title != "Midnight City" {
		t.Errorf("expected filename fallback title, got %q", meta.Title)
	}
	if meta.Artist != "" {
		t.Errorf("expected empty artist, got %q", meta.Artist)
	}
}

func TestMetadataDisplay(t *testing.T) {
	m := Metadata{Title: "Song", Artist: "Band"}
	if got := m.Display(); got != "Band - Song" {
		t.Errorf("expected %q, got %q", "Band - Song", got)
	}
	m.Artist = ""
	if got := m.Display(); got != "Song" {
		t.Errorf("expected bare title, got %q", got)
	}
}
