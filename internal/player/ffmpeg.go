package player

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

// HasFFmpeg reports whether ffmpeg is available on PATH. Formats without a
// native decoder need it.
func HasFFmpeg() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// probeInfo carries the stream parameters ffprobe reports for a file.
type probeInfo struct {
	sampleRate int
	channels   int
}

// probeAudio asks ffprobe for the first audio stream's parameters.
func probeAudio(path string) (*probeInfo, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}

	var result struct {
		Streams []struct {
			SampleRate string `json:"sample_rate"`
			Channels   int    `json:"channels"`
		} `json:"streams"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(result.Streams) == 0 {
		return nil, fmt.Errorf("no audio stream in %s", path)
	}

	info := &probeInfo{sampleRate: 44100, channels: 2}
	if rate, err := strconv.Atoi(result.Streams[0].SampleRate); err == nil && rate > 0 {
		info.sampleRate = rate
	}
	if ch := result.Streams[0].Channels; ch > 0 {
		info.channels = ch
	}
	return info, nil
}

// decodeFFmpeg shells out to ffmpeg and reads the whole track as raw
// 16-bit PCM at the source rate. Used for every format without a native
// decoder.
func decodeFFmpeg(path string) (*rawPCM, error) {
	if !HasFFmpeg() {
		return nil, fmt.Errorf("%w: no native decoder and ffmpeg not found", ErrDecode)
	}
	info, err := probeAudio(path)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("ffmpeg",
		"-v", "quiet",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(info.sampleRate),
		"-ac", strconv.Itoa(info.channels),
		"pipe:1",
	)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("running ffmpeg on %s: %w", path, err)
	}
	if len(out) < 4 {
		return nil, fmt.Errorf("%w: ffmpeg produced no audio for %s", ErrDecode, path)
	}
	return &rawPCM{data: pcmFromBytes(out), channels: info.channels, rate: info.sampleRate}, nil
}
