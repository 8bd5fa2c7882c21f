package media

import (
	"sort"
	"strings"
)

// nativeExts decode in-process. Everything in ffmpegExts needs ffmpeg on
// PATH and is only offered when it is there.
var nativeExts = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".flac": true,
	".ogg":  true,
}

var ffmpegExts = map[string]bool{
	".aac":  true,
	".m4a":  true,
	".m4b":  true,
	".opus": true,
	".wma":  true,
	".aiff": true,
	".mp4":  true,
	".webm": true,
	".mkv":  true,
}

var playlistExts = map[string]bool{
	".m3u":  true,
	".m3u8": true,
	".pls":  true,
}

// IsNativeExt reports whether the extension decodes without ffmpeg.
func IsNativeExt(ext string) bool {
	return nativeExts[strings.ToLower(ext)]
}

// IsPlayableExt reports whether the extension can be decoded at all given
// ffmpeg availability.
func IsPlayableExt(ext string, withFFmpeg bool) bool {
	ext = strings.ToLower(ext)
	if nativeExts[ext] {
		return true
	}
	return withFFmpeg && ffmpegExts[ext]
}

// IsPlaylistExt reports whether the extension is a supported playlist format.
func IsPlaylistExt(ext string) bool {
	return playlistExts[strings.ToLower(ext)]
}

// SupportedExtsList renders the playable extensions for error messages,
// native formats first.
func SupportedExtsList(withFFmpeg bool) string {
	native := sortedKeys(nativeExts)
	if !withFFmpeg {
		return strings.Join(native, ", ")
	}
	return strings.Join(append(native, sortedKeys(ffmpegExts)...), ", ")
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
