package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kamatealif/musializer/internal/engine"
	"github.com/kamatealif/musializer/internal/export"
	"github.com/kamatealif/musializer/internal/media"
	"github.com/kamatealif/musializer/internal/player"
	"github.com/kamatealif/musializer/internal/queue"
	"github.com/kamatealif/musializer/internal/ui"
)

func main() {
	defaults := engine.DefaultConfig()

	var (
		barCount    int
		bandingName string
		fps         int
		exportPath  string
		exportSize  string
	)
	flag.IntVar(&barCount, "bars", defaults.Bars, "bar count: 8, 16, 32, 64 or 128")
	flag.StringVar(&bandingName, "banding", defaults.Banding.String(), "band spacing: log or linear")
	flag.IntVar(&fps, "fps", defaults.FPS, "frames per second for the visualization")
	flag.StringVar(&exportPath, "export", "", "render to this video file instead of playing")
	flag.StringVar(&exportSize, "size", "", "video dimensions for -export as WIDTHxHEIGHT (default 1280x720)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: musializer [flags] <audio file | playlist | directory>\n\nFlags:\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	banding, err := engine.ParseBanding(bandingName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := defaults
	cfg.Bars = barCount
	cfg.Banding = banding
	cfg.FPS = fps

	eng, err := engine.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	withFFmpeg := player.HasFFmpeg()
	paths, startIdx, err := resolveTracks(flag.Arg(0), withFFmpeg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if exportPath != "" {
		if err := runExport(eng, paths[startIdx], exportPath, exportSize, fps); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	tracks := make([]queue.Track, len(paths))
	for i, p := range paths {
		tracks[i] = queue.Track{
			Title: strings.TrimSuffix(filepath.Base(p), filepath.Ext(p)),
			Path:  p,
		}
	}
	q := queue.New(tracks)
	q.Jump(startIdx)

	program := tea.NewProgram(ui.New(eng, q, fps), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveTracks expands the command line argument into an ordered list of
// playable files plus the index to start at. Directories list their playable
// children, playlists keep their own order, and a lone file pulls in its
// siblings so next/previous still work.
func resolveTracks(arg string, withFFmpeg bool) ([]string, int, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, 0, err
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		abs = arg
	}

	if info.IsDir() {
		files, err := media.ExpandDir(abs, withFFmpeg)
		if err != nil {
			return nil, 0, err
		}
		if len(files) == 0 {
			return nil, 0, fmt.Errorf("no playable files in %s", arg)
		}
		return files, 0, nil
	}

	ext := strings.ToLower(filepath.Ext(arg))
	if media.IsPlaylistExt(ext) {
		entries, err := media.ParsePlaylist(abs)
		if err != nil {
			return nil, 0, err
		}
		files, _ := media.FilterPlayable(entries, withFFmpeg)
		if len(files) == 0 {
			return nil, 0, fmt.Errorf("playlist contains no playable entries")
		}
		return files, 0, nil
	}

	if !media.IsPlayableExt(ext, withFFmpeg) {
		return nil, 0, fmt.Errorf("unsupported format %s (supported: %s)", ext, media.SupportedExtsList(withFFmpeg))
	}

	if siblings, idx := siblingTracks(abs, withFFmpeg); siblings != nil {
		return siblings, idx, nil
	}
	return []string{abs}, 0, nil
}

// siblingTracks lists the playable files sharing a directory with abs, sorted
// by name. Returns nil when the file is alone in its directory.
func siblingTracks(abs string, withFFmpeg bool) ([]string, int) {
	files, err := media.ExpandDir(filepath.Dir(abs), withFFmpeg)
	if err != nil || len(files) < 2 {
		return nil, 0
	}
	for i, f := range files {
		if f == abs {
			return files, i
		}
	}
	return nil, 0
}

// runExport decodes the track and renders the visualization into a video file
// instead of opening the player UI.
func runExport(eng *engine.Engine, audioPath, outPath, size string, fps int) error {
	cfg := export.DefaultConfig()
	cfg.Path = outPath
	cfg.FPS = fps
	if size != "" {
		w, h, err := parseSize(size)
		if err != nil {
			return err
		}
		cfg.Width, cfg.Height = w, h
	}

	sess, err := export.NewSession(eng, cfg)
	if err != nil {
		return err
	}

	buf, err := player.Load(audioPath)
	if err != nil {
		return err
	}

	return sess.Run(context.Background(), buf.Samples, buf.SampleRate, audioPath, os.Stderr)
}

func parseSize(s string) (int, int, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if ok {
		width, werr := strconv.Atoi(w)
		height, herr := strconv.Atoi(h)
		if werr == nil && herr == nil {
			return width, height, nil
		}
	}
	return 0, 0, fmt.Errorf("invalid size %q, want WIDTHxHEIGHT", s)
}
