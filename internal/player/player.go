package player

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const bytesPerFrame = 4 // s16le stereo

var (
	otoCtx     *oto.Context
	otoRate    int
	otoInitErr error
	otoOnce    sync.Once
)

// initOto creates the process-wide audio context. The device is opened once
// at the first track's rate; later tracks get resampled to match.
func initOto(sampleRate int) error {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			otoInitErr = fmt.Errorf("creating audio context: %w", err)
			return
		}
		<-ready
		otoCtx = ctx
		otoRate = sampleRate
	})
	return otoInitErr
}

// countingReader tracks how many bytes the audio device has consumed. The
// device reads from its own goroutine, so the position is mutex-guarded.
type countingReader struct {
	r   *bytes.Reader
	mu  sync.Mutex
	pos int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.mu.Lock()
	c.pos += int64(n)
	c.mu.Unlock()
	return n, err
}

func (c *countingReader) Pos() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pos
}

func (c *countingReader) SetPos(pos int64) {
	c.mu.Lock()
	c.pos = pos
	c.mu.Unlock()
}

// Player plays one decoded buffer through the system audio device and acts
// as the clock the visualization engine reads.
type Player struct {
	pcm         []byte
	counter     *countingReader
	bytesPerSec int
	duration    time.Duration

	mu        sync.Mutex
	otoPlayer *oto.Player
	paused    bool
	closed    bool
	volume    float64

	done chan struct{}
	stop chan struct{}
}

// New starts playback of the buffer immediately.
func New(buf *Buffer) (*Player, error) {
	if err := initOto(buf.SampleRate); err != nil {
		return nil, err
	}

	pcm := buf.PCM
	if buf.SampleRate != otoRate {
		pcm = resamplePCM(pcm, buf.SampleRate, otoRate)
	}

	bytesPerSec := otoRate * bytesPerFrame
	p := &Player{
		pcm:         pcm,
		counter:     &countingReader{r: bytes.NewReader(pcm)},
		bytesPerSec: bytesPerSec,
		duration:    time.Duration(float64(len(pcm)) / float64(bytesPerSec) * float64(time.Second)),
		volume:      1.0,
		done:        make(chan struct{}),
		stop:        make(chan struct{}),
	}

	p.otoPlayer = otoCtx.NewPlayer(p.counter)
	p.otoPlayer.Play()
	go p.monitor()
	return p, nil
}

// monitor closes the done channel once the device has drained the track.
func (p *Player) monitor() {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.mu.Lock()
			drained := p.counter.Pos() >= int64(len(p.pcm)) &&
				p.otoPlayer != nil && !p.otoPlayer.IsPlaying() && !p.paused
			p.mu.Unlock()
			if drained {
				close(p.done)
				return
			}
		}
	}
}

// Done is closed when the track has played to the end.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Position reports how far into the track the device has read.
func (p *Player) Position() time.Duration {
	return time.Duration(float64(p.counter.Pos()) / float64(p.bytesPerSec) * float64(time.Second))
}

// Duration reports the playable length of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// Playing reports whether the transport clock is advancing.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.paused && !p.closed
}

// Paused reports whether playback is suspended.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// TogglePause flips between playing and paused.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.paused {
		if p.otoPlayer != nil {
			p.otoPlayer.Play()
		}
		p.paused = false
	} else {
		if p.otoPlayer != nil {
			p.otoPlayer.Pause()
		}
		p.paused = true
	}
}

// SeekTo jumps to an absolute position, clamped to the track bounds and
// aligned to a whole frame. The device player is recreated so its internal
// buffer drops the stale audio.
func (p *Player) SeekTo(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return fmt.Errorf("player closed")
	}

	offset := int64(pos.Seconds() * float64(p.bytesPerSec))
	offset -= offset % bytesPerFrame
	if offset < 0 {
		offset = 0
	}
	if max := int64(len(p.pcm)); offset > max {
		offset = max
	}

	wasPaused := p.paused
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
		if err := p.otoPlayer.Close(); err != nil {
			return fmt.Errorf("resetting device player: %w", err)
		}
	}
	if _, err := p.counter.r.Seek(offset, 0); err != nil {
		return fmt.Errorf("seeking: %w", err)
	}
	p.counter.SetPos(offset)

	if otoCtx != nil {
		p.otoPlayer = otoCtx.NewPlayer(p.counter)
		p.otoPlayer.SetVolume(p.volume)
		if !wasPaused {
			p.otoPlayer.Play()
		}
	}
	return nil
}

// SeekBy moves relative to the current position.
func (p *Player) SeekBy(delta time.Duration) error {
	return p.SeekTo(p.Position() + delta)
}

// Volume reports the current volume in [0, 1].
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume clamps the volume into [0, 1] and applies it to the device.
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	p.volume = v
	if p.otoPlayer != nil {
		p.otoPlayer.SetVolume(v)
	}
}

// AdjustVolume nudges the volume by delta, clamped to [0, 1].
func (p *Player) AdjustVolume(delta float64) {
	p.SetVolume(p.Volume() + delta)
}

// Close stops playback and releases the device player. Safe to call twice.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.stop)
	if p.otoPlayer != nil {
		if err := p.otoPlayer.Close(); err != nil {
			return fmt.Errorf("closing device player: %w", err)
		}
	}
	return nil
}

// resamplePCM converts interleaved s16le stereo between rates with linear
// interpolation. Only runs when a track's rate differs from the device's.
func resamplePCM(pcm []byte, from, to int) []byte {
	if from == to || from <= 0 || to <= 0 {
		return pcm
	}
	inFrames := len(pcm) / bytesPerFrame
	if inFrames == 0 {
		return pcm
	}
	outFrames := int(float64(inFrames) * float64(to) / float64(from))
	if outFrames < 1 {
		outFrames = 1
	}

	out := make([]byte, outFrames*bytesPerFrame)
	step := float64(from) / float64(to)
	for i := range outFrames {
		srcPos := float64(i) * step
		j := int(srcPos)
		frac := srcPos - float64(j)
		k := j + 1
		if k >= inFrames {
			k = inFrames - 1
		}
		for ch := range 2 {
			a := int16(uint16(pcm[j*bytesPerFrame+ch*2]) | uint16(pcm[j*bytesPerFrame+ch*2+1])<<8)
			b := int16(uint16(pcm[k*bytesPerFrame+ch*2]) | uint16(pcm[k*bytesPerFrame+ch*2+1])<<8)
			v := int16(float64(a) + (float64(b)-float64(a))*frac)
			out[i*bytesPerFrame+ch*2] = byte(uint16(v))
			out[i*bytesPerFrame+ch*2+1] = byte(uint16(v) >> 8)
		}
	}
	return out
}
