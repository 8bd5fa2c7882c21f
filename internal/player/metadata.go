package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds the display information for a track.
type Metadata struct {
	Title  string
	Artist string
	Album  string
}

// Display renders "Artist - Title", dropping the artist when unknown.
func (m Metadata) Display() string {
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}

// ReadMetadata pulls ID3v2 tags from the file, falling back to the bare
// filename when there are none. Non-MP3 containers rarely carry ID3 tags,
// so the fallback is the common path for them.
func ReadMetadata(path string) Metadata {
	meta := Metadata{Title: fallbackTitle(path)}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return meta
	}
	defer tag.Close()

	if t := strings.TrimSpace(tag.Title()); t != "" {
		meta.Title = t
	}
	meta.Artist = strings.TrimSpace(tag.Artist())
	meta.Album = strings.TrimSpace(tag.Album())
	return meta
}

// fallbackTitle is the filename with its extension stripped.
func fallbackTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
