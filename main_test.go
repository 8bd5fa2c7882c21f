package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestResolveTracksSingleFileAlone(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "song.mp3")

	paths, idx, err := resolveTracks(path, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 1 || idx != 0 {
		t.Fatalf("expected single track at index 0, got %v at %d", paths, idx)
	}
	if paths[0] != path {
		t.Fatalf("expected %s, got %s", path, paths[0])
	}
}

func TestResolveTracksPullsSiblings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "album.mp3")
	target := writeFile(t, dir, "bonus.wav")
	writeFile(t, dir, "notes.txt")

	paths, idx, err := resolveTracks(target, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 tracks, got %v", paths)
	}
	if idx != 1 || paths[1] != target {
		t.Fatalf("expected start at %s (index 1), got index %d of %v", target, idx, paths)
	}
}

func TestResolveTracksDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.flac")
	writeFile(t, dir, "a.ogg")
	writeFile(t, dir, "cover.jpg")

	paths, idx, err := resolveTracks(dir, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected start index 0, got %d", idx)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "a.ogg" || filepath.Base(paths[1]) != "b.flac" {
		t.Fatalf("expected sorted playable children, got %v", paths)
	}
}

func TestResolveTracksEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "readme.md")

	if _, _, err := resolveTracks(dir, false); err == nil {
		t.Fatal("expected error for directory without playable files")
	}
}

func TestResolveTracksPlaylist(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.mp3")
	writeFile(t, dir, "two.ogg")
	list := filepath.Join(dir, "mix.m3u")
	if err := os.WriteFile(list, []byte("two.ogg\none.mp3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	paths, idx, err := resolveTracks(list, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx != 0 || len(paths) != 2 {
		t.Fatalf("expected 2 tracks from playlist, got %v at %d", paths, idx)
	}
	if filepath.Base(paths[0]) != "two.ogg" {
		t.Fatalf("expected playlist order preserved, got %v", paths)
	}
}

func TestResolveTracksPlaylistWithoutPlayableEntries(t *testing.T) {
	dir := t.TempDir()
	list := filepath.Join(dir, "mix.m3u")
	if err := os.WriteFile(list, []byte("missing.mp3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := resolveTracks(list, false); err == nil {
		t.Fatal("expected error for playlist without playable entries")
	}
}

func TestResolveTracksUnsupportedExt(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt")

	if _, _, err := resolveTracks(path, false); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestResolveTracksMissingFile(t *testing.T) {
	if _, _, err := resolveTracks(filepath.Join(t.TempDir(), "nope.mp3"), false); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseSize(t *testing.T) {
	w, h, err := parseSize("1280x720")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 1280 || h != 720 {
		t.Fatalf("expected 1280x720, got %dx%d", w, h)
	}

	if _, _, err := parseSize("640X480"); err != nil {
		t.Fatalf("expected uppercase X to parse, got %v", err)
	}

	for _, bad := range []string{"", "1280", "x720", "1280x", "wxh"} {
		if _, _, err := parseSize(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
