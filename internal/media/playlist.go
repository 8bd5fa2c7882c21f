package media

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// ParsePlaylist reads a local .m3u/.m3u8/.pls file into a list of paths.
// Relative entries resolve against the playlist's directory. Remote entries
// (URLs) are dropped since only local files can be analyzed.
func ParsePlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist %s is not valid UTF-8", filepath.Base(path))
	}

	text := strings.TrimPrefix(string(data), "\uFEFF")
	baseDir := filepath.Dir(abs)
	scanner := bufio.NewScanner(strings.NewReader(text))

	if ext == ".pls" {
		return parsePLS(scanner, baseDir), nil
	}
	return parseM3U(scanner, baseDir), nil
}

func parseM3U(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || isRemote(line) {
			continue
		}
		entries = append(entries, resolveEntry(line, baseDir))
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if val == "" || !isPLSFileKey(key) || isRemote(val) {
			continue
		}
		entries = append(entries, resolveEntry(val, baseDir))
	}
	return entries
}

// isPLSFileKey matches File1, File2, ... and nothing else.
func isPLSFileKey(key string) bool {
	rest, ok := strings.CutPrefix(key, "File")
	if !ok || rest == "" {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

func isRemote(entry string) bool {
	lower := strings.ToLower(entry)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func resolveEntry(raw, baseDir string) string {
	p := filepath.Clean(strings.Trim(raw, `"`))
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(baseDir, p))
}

// FilterPlayable keeps existing, non-directory files with a decodable
// extension, made absolute. The second result counts what was dropped.
func FilterPlayable(paths []string, withFFmpeg bool) ([]string, int) {
	out := make([]string, 0, len(paths))
	skipped := 0
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || !IsPlayableExt(filepath.Ext(p), withFFmpeg) {
			skipped++
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		out = append(out, p)
	}
	return out, skipped
}

// ExpandDir lists the playable files directly inside dir, sorted by name.
// It does not recurse.
func ExpandDir(dir string, withFFmpeg bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsPlayableExt(filepath.Ext(e.Name()), withFFmpeg) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
