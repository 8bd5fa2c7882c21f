package player

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// ErrDecode wraps every failure to turn a file into samples.
var ErrDecode = errors.New("decode failed")

// Buffer is one fully decoded track: mono samples for analysis plus 16-bit
// stereo PCM for the output device. Immutable once built.
type Buffer struct {
	Samples    []float64 // mono mix in [-1, 1]
	SampleRate int
	PCM        []byte // interleaved s16le stereo at SampleRate
	Meta       Metadata
}

// Duration reports the track length derived from the sample count.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// rawPCM is the common shape every format decoder produces.
type rawPCM struct {
	data     []int16 // interleaved
	channels int
	rate     int
}

// Load decodes the whole file up front. The four common formats decode
// natively; anything else goes through ffmpeg when available.
func Load(path string) (*Buffer, error) {
	var (
		raw *rawPCM
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		raw, err = decodeMP3(path)
	case ".wav":
		raw, err = decodeWAV(path)
	case ".flac":
		raw, err = decodeFLAC(path)
	case ".ogg":
		raw, err = decodeOGG(path)
	default:
		raw, err = decodeFFmpeg(path)
	}
	if err != nil {
		if errors.Is(err, ErrDecode) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return newBuffer(raw, ReadMetadata(path))
}

// newBuffer mixes the interleaved PCM down to mono for analysis and expands
// it to stereo for playback. Tracks with more than two channels keep their
// first two for playback while the mono mix averages all of them.
func newBuffer(raw *rawPCM, meta Metadata) (*Buffer, error) {
	if raw == nil || len(raw.data) == 0 || raw.channels < 1 || raw.rate <= 0 {
		return nil, fmt.Errorf("%w: no audio data", ErrDecode)
	}
	frames := len(raw.data) / raw.channels
	if frames == 0 {
		return nil, fmt.Errorf("%w: no audio data", ErrDecode)
	}

	samples := make([]float64, frames)
	pcm := make([]byte, frames*4)
	for i := range frames {
		base := i * raw.channels
		sum := 0.0
		for c := range raw.channels {
			sum += float64(raw.data[base+c])
		}
		samples[i] = sum / float64(raw.channels) / 32768

		l := raw.data[base]
		r := l
		if raw.channels > 1 {
			r = raw.data[base+1]
		}
		binary.LittleEndian.PutUint16(pcm[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(pcm[i*4+2:], uint16(r))
	}

	return &Buffer{
		Samples:    samples,
		SampleRate: raw.rate,
		PCM:        pcm,
		Meta:       meta,
	}, nil
}

func decodeMP3(path string) (*rawPCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("draining MP3 stream: %w", err)
	}
	// go-mp3 always yields 16-bit stereo at the source rate.
	return &rawPCM{data: pcmFromBytes(data), channels: 2, rate: dec.SampleRate()}, nil
}

func decodeWAV(path string) (*rawPCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", ErrDecode)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	data := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		data[i] = sampleToInt16(v, bitDepth)
	}
	return &rawPCM{
		data:     data,
		channels: buf.Format.NumChannels,
		rate:     buf.Format.SampleRate,
	}, nil
}

func decodeFLAC(path string) (*rawPCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	channels := int(info.NChannels)
	bps := int(info.BitsPerSample)

	data := make([]int16, 0, int(info.NSamples)*channels)
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding FLAC frame: %w", err)
		}
		n := int(frame.Subframes[0].NSamples)
		for i := range n {
			for ch := range channels {
				data = append(data, shiftToInt16(int(frame.Subframes[ch].Samples[i]), bps))
			}
		}
	}
	return &rawPCM{data: data, channels: channels, rate: int(info.SampleRate)}, nil
}

func decodeOGG(path string) (*rawPCM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	samples, format, err := oggvorbis.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	data := make([]int16, len(samples))
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		data[i] = int16(s * 32767)
	}
	return &rawPCM{data: data, channels: format.Channels, rate: format.SampleRate}, nil
}

// pcmFromBytes reinterprets little-endian 16-bit PCM bytes as samples.
func pcmFromBytes(b []byte) []int16 {
	out := make([]int16, len(b)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out
}

// sampleToInt16 converts a WAV sample at the given source depth to 16-bit.
// 8-bit WAV is unsigned; wider depths are signed and shifted down.
func sampleToInt16(v, bitDepth int) int16 {
	var s int
	switch bitDepth {
	case 8:
		s = (v - 128) << 8
	case 16:
		s = v
	case 24:
		s = v >> 8
	case 32:
		s = v >> 16
	default:
		s = v
	}
	if s > 32767 {
		s = 32767
	} else if s < -32768 {
		s = -32768
	}
	return int16(s)
}

// shiftToInt16 rescales a signed sample from bps bits to 16.
func shiftToInt16(v, bps int) int16 {
	switch {
	case bps > 16:
		v >>= bps - 16
	case bps < 16:
		v <<= 16 - bps
	}
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}
