package metadata

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// SongInfo holds metadata extracted from an audio file. Duration is in whole
// seconds, zero when the format exposes none.
type SongInfo struct {
	Title    string
	Artist   string
	Album    string
	Genre    string
	Year     int
	Duration int
}

// Extract reads embedded tags and the playing time from an audio stream. When
// the file carries no tags, the title falls back to the filename without its
// extension and the artist stays empty. Duration is best effort.
func Extract(r io.ReadSeeker, filename string) SongInfo {
	info := SongInfo{Title: titleFromFilename(filename)}
	if r == nil {
		return info
	}
	if m, err := tag.ReadFrom(r); err == nil {
		if t := strings.TrimSpace(m.Title()); t != "" {
			info.Title = t
		}
		info.Artist = strings.TrimSpace(m.Artist())
		info.Album = strings.TrimSpace(m.Album())
		info.Genre = strings.TrimSpace(m.Genre())
		info.Year = m.Year()
	}
	info.Duration = readDuration(r, strings.ToLower(filepath.Ext(filename)))
	return info
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}
