package export

import (
	"strings"
	"testing"
	"time"
)

func TestFrameClockPosition(t *testing.T) {
	c := newFrameClock(60)
	if c.Position() != 0 {
		t.Fatalf("expected position 0 at frame 0, got %v", c.Position())
	}
	c.setFrame(30)
	if c.Position() != 500*time.Millisecond {
		t.Errorf("expected 500ms at frame 30, got %v", c.Position())
	}
	c.setFrame(60)
	if c.Position() != time.Second {
		t.Errorf("expected 1s at frame 60, got %v", c.Position())
	}
	if !c.Playing() {
		t.Error("frame clock should always report playing")
	}

	// Same frame, same position: the clock has no hidden state.
	c.setFrame(30)
	first := c.Position()
	c.setFrame(30)
	if c.Position() != first {
		t.Error("expected repeatable positions")
	}
}

func TestTotalFrames(t *testing.T) {
	cases := []struct {
		d    time.Duration
		fps  int
		want int64
	}{
		{time.Second, 60, 60},
		{1500 * time.Millisecond, 60, 90},
		{500 * time.Millisecond, 15, 8},
		{time.Second + time.Nanosecond, 60, 61},
		{0, 60, 0},
	}
	for _, c := range cases {
		if got := totalFrames(c.d, c.fps); got != c.want {
			t.Errorf("totalFrames(%v, %d): expected %d, got %d", c.d, c.fps, c.want, got)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate, got %v", err)
	}
	bad := []Config{
		{Width: 10, Height: 720, FPS: 60, Path: "o.mp4"},
		{Width: 1281, Height: 720, FPS: 60, Path: "o.mp4"},
		{Width: 1280, Height: 719, FPS: 60, Path: "o.mp4"},
		{Width: 1280, Height: 720, FPS: 0, Path: "o.mp4"},
		{Width: 1280, Height: 720, FPS: 300, Path: "o.mp4"},
		{Width: 1280, Height: 720, FPS: 60, Path: ""},
	}
	for i, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestEncodeArgs(t *testing.T) {
	args := encodeArgs(Config{Width: 1280, Height: 720, FPS: 60, Path: "out.mp4"}, "track.flac")
	joined := strings.Join(args, " ")
	for _, want := range []string{
		"-s 1280x720",
		"-r 60",
		"-i pipe:0",
		"-i track.flac",
		"-pix_fmt yuv420p",
		"-shortest",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in args, got %q", want, joined)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("expected output path last, got %q", args[len(args)-1])
	}
}

func pixAt(buf []byte, width, x, y int) rgb {
	i := (y*width + x) * 3
	return rgb{buf[i], buf[i+1], buf[i+2]}
}

func TestRasterizerFrameSize(t *testing.T) {
	r := NewRasterizer(64, 32)
	if r.FrameSize() != 64*32*3 {
		t.Fatalf("expected %d bytes, got %d", 64*32*3, r.FrameSize())
	}
}

func TestRasterizerFullBar(t *testing.T) {
	r := NewRasterizer(10, 10)
	buf := r.Draw([]float64{1}, nil, 0)

	want := barColor(0, 1)
	if got := pixAt(buf, 10, 5, 0); got != want {
		t.Errorf("expected bar color at top, got %+v", got)
	}
	// The bottom two rows belong to the progress strip.
	if got := pixAt(buf, 10, 5, 7); got != want {
		t.Errorf("expected bar color above the strip, got %+v", got)
	}
	// 10% padding keeps the slot edges clear.
	if got := pixAt(buf, 10, 0, 5); got != background {
		t.Errorf("expected background at left pad, got %+v", got)
	}
	if got := pixAt(buf, 10, 9, 5); got != background {
		t.Errorf("expected background at right pad, got %+v", got)
	}
}

func TestRasterizerHalfBar(t *testing.T) {
	r := NewRasterizer(10, 10)
	buf := r.Draw([]float64{0.5}, nil, 0)

	if got := pixAt(buf, 10, 5, 2); got != background {
		t.Errorf("expected background above a half bar, got %+v", got)
	}
	if got := pixAt(buf, 10, 5, 7); got != barColor(0, 1) {
		t.Errorf("expected bar color in lower half, got %+v", got)
	}
}

func TestRasterizerCapFloats(t *testing.T) {
	r := NewRasterizer(100, 100)
	buf := r.Draw([]float64{0}, []float64{0.5}, 0)

	capCol := capColor(barColor(0, 1))
	if got := pixAt(buf, 100, 50, 49); got != capCol {
		t.Errorf("expected cap color just above its base, got %+v", got)
	}
	if got := pixAt(buf, 100, 50, 51); got != background {
		t.Errorf("expected background below cap, got %+v", got)
	}
	if got := pixAt(buf, 100, 50, 46); got != background {
		t.Errorf("expected background above cap, got %+v", got)
	}
}

func TestRasterizerCapHiddenUnderBar(t *testing.T) {
	r := NewRasterizer(10, 10)
	buf := r.Draw([]float64{1}, []float64{1}, 0)

	want := barColor(0, 1)
	for y := range 8 {
		if got := pixAt(buf, 10, 5, y); got != want {
			t.Fatalf("row %d: expected bar color over hidden cap, got %+v", y, got)
		}
	}
}

func TestRasterizerReusesBuffer(t *testing.T) {
	r := NewRasterizer(10, 10)
	a := r.Draw([]float64{1}, nil, 0)
	b := r.Draw([]float64{0}, nil, 0)
	if &a[0] != &b[0] {
		t.Fatal("expected the frame buffer to be reused")
	}
	// The previous frame's bar must be fully cleared above the strip.
	for y := range 8 {
		if got := pixAt(b, 10, 5, y); got != background {
			t.Fatalf("row %d: expected background after clear, got %+v", y, got)
		}
	}
}

func TestRasterizerEmptyHeights(t *testing.T) {
	r := NewRasterizer(4, 4)
	buf := r.Draw(nil, nil, 0)
	// Only the strip survives a frame with no bars: it owns the bottom
	// two rows and spans the full width at this size.
	for y := range 2 {
		for x := range 4 {
			if got := pixAt(buf, 4, x, y); got != background {
				t.Fatalf("(%d,%d): expected background, got %+v", x, y, got)
			}
		}
	}
	for y := 2; y < 4; y++ {
		for x := range 4 {
			if got := pixAt(buf, 4, x, y); got != stripTrack {
				t.Fatalf("(%d,%d): expected strip track, got %+v", x, y, got)
			}
		}
	}
}

func TestRasterizerProgressStrip(t *testing.T) {
	r := NewRasterizer(100, 100)
	buf := r.Draw(nil, nil, 0.5)

	// inset 10 each side, strip on rows 95-96, fill to half its width.
	if got := pixAt(buf, 100, 30, 95); got != accent {
		t.Errorf("expected accent in played portion, got %+v", got)
	}
	if got := pixAt(buf, 100, 49, 95); got != accent {
		t.Errorf("expected accent at fill edge, got %+v", got)
	}
	if got := pixAt(buf, 100, 50, 95); got != stripTrack {
		t.Errorf("expected track past fill edge, got %+v", got)
	}
	if got := pixAt(buf, 100, 89, 95); got != stripTrack {
		t.Errorf("expected track at strip end, got %+v", got)
	}
	if got := pixAt(buf, 100, 5, 95); got != background {
		t.Errorf("expected background left of inset, got %+v", got)
	}
	if got := pixAt(buf, 100, 95, 95); got != background {
		t.Errorf("expected background right of inset, got %+v", got)
	}
	if got := pixAt(buf, 100, 30, 94); got != background {
		t.Errorf("expected background above strip, got %+v", got)
	}
	if got := pixAt(buf, 100, 30, 98); got != background {
		t.Errorf("expected background below strip, got %+v", got)
	}
}

func TestRasterizerProgressClamped(t *testing.T) {
	r := NewRasterizer(100, 100)

	buf := r.Draw(nil, nil, -0.5)
	if got := pixAt(buf, 100, 10, 95); got != stripTrack {
		t.Errorf("expected empty strip for negative progress, got %+v", got)
	}

	buf = r.Draw(nil, nil, 1.5)
	if got := pixAt(buf, 100, 10, 95); got != accent {
		t.Errorf("expected full strip for overlong progress, got %+v", got)
	}
	if got := pixAt(buf, 100, 89, 95); got != accent {
		t.Errorf("expected full strip to reach its end, got %+v", got)
	}
}
