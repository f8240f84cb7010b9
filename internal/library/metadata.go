package library

import (
	"os"
	"path/filepath"

	"github.com/dhowden/tag"
)

// Placeholder values used when a file carries no usable tags.
const (
	UnknownTitle  = "Unknown Title"
	UnknownArtist = "Unknown Artist"
)

// ReadTags extracts a human-readable title/artist pair from an audio
// file. It is best-effort and never fails: on any error the base
// filename stands in for the title and a placeholder for the artist.
func ReadTags(filePath string) (title, artist string) {
	title = filepath.Base(filePath)
	artist = UnknownArtist

	file, err := os.Open(filePath)
	if err != nil {
		return title, artist
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return title, artist
	}

	title = getOrDefault(metadata.Title(), title)
	artist = getOrDefault(metadata.Artist(), artist)
	return title, artist
}

// getOrDefault returns the value if non-empty, otherwise returns the default
func getOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}
