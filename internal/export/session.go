package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kamatealif/musializer/internal/engine"
	"github.com/kamatealif/musializer/internal/util"
)

// ErrNoFFmpeg means export cannot run at all on this system.
var ErrNoFFmpeg = errors.New("ffmpeg not found")

// Config controls the rendered video file.
type Config struct {
	Width  int
	Height int
	FPS    int
	Path   string // output file, format chosen by extension
}

// DefaultConfig renders 720p at the engine's default frame rate.
func DefaultConfig() Config {
	return Config{Width: 1280, Height: 720, FPS: 60, Path: "musializer.mp4"}
}

func (c Config) Validate() error {
	if c.Width < 16 || c.Height < 16 {
		return fmt.Errorf("frame size %dx%d too small", c.Width, c.Height)
	}
	// yuv420p chroma subsampling needs even dimensions.
	if c.Width%2 != 0 || c.Height%2 != 0 {
		return fmt.Errorf("frame size %dx%d must be even", c.Width, c.Height)
	}
	if c.FPS < 1 || c.FPS > 240 {
		return fmt.Errorf("fps %d out of range", c.FPS)
	}
	if c.Path == "" {
		return errors.New("missing output path")
	}
	return nil
}

// Session renders one track's bar animation into a video file. The engine
// is stepped by a frame-counter clock, so the same track and config always
// produce the same frames.
type Session struct {
	cfg    Config
	eng    *engine.Engine
	raster *Rasterizer
	clock  *frameClock
}

func NewSession(eng *engine.Engine, cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Session{
		cfg:    cfg,
		eng:    eng,
		raster: NewRasterizer(cfg.Width, cfg.Height),
		clock:  newFrameClock(cfg.FPS),
	}, nil
}

// encodeArgs builds the ffmpeg invocation: raw frames on stdin, audio from
// the source file, H.264 video with AAC audio out.
func encodeArgs(cfg Config, audioPath string) []string {
	return []string{
		"-y",
		"-v", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-r", strconv.Itoa(cfg.FPS),
		"-i", "pipe:0",
		"-i", audioPath,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "18",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		cfg.Path,
	}
}

// totalFrames is ceil(duration * fps).
func totalFrames(duration time.Duration, fps int) int64 {
	return (int64(duration)*int64(fps) + int64(time.Second) - 1) / int64(time.Second)
}

// Run analyzes the samples, then steps the engine frame by frame and
// streams the rasterized output to ffmpeg. Progress lines are written to
// progress when non-nil.
func (s *Session) Run(ctx context.Context, samples []float64, sampleRate int, audioPath string, progress io.Writer) error {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return ErrNoFFmpeg
	}

	s.eng.Load(samples, sampleRate, s.clock)
	res := s.eng.Tick()
	for res.State == engine.StateLoading {
		select {
		case <-ctx.Done():
			s.eng.Reset()
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
		res = s.eng.Tick()
	}
	if res.State == engine.StateEmpty {
		if err := s.eng.Err(); err != nil {
			return err
		}
		return errors.New("no analysis available")
	}

	total := totalFrames(res.Duration, s.cfg.FPS)
	cmd := exec.CommandContext(ctx, ffmpeg, encodeArgs(s.cfg, audioPath)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("ffmpeg stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting ffmpeg: %w", err)
	}

	var writeErr error
	for f := int64(0); f < total; f++ {
		if ctx.Err() != nil {
			break
		}
		s.clock.setFrame(f)
		res = s.eng.Tick()
		if _, err := stdin.Write(s.raster.Draw(res.Heights, res.Caps, res.Progress)); err != nil {
			writeErr = err
			break
		}
		if progress != nil && f%int64(s.cfg.FPS) == 0 {
			fmt.Fprintf(progress, "\rrendering %s / %s",
				util.FormatDuration(s.clock.Position()), util.FormatDuration(res.Duration))
		}
	}
	stdin.Close()
	waitErr := cmd.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if writeErr != nil || waitErr != nil {
		err := waitErr
		if err == nil {
			err = writeErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg encode: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg encode: %w", err)
	}
	if progress != nil {
		fmt.Fprintf(progress, "\rrendered %d frames to %s\n", total, s.cfg.Path)
	}
	return nil
}
