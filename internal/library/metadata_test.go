package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadTagsMissingFile(t *testing.T) {
	title, artist := ReadTags("/no/such/file.mp3")
	if title != "file.mp3" {
		t.Errorf("title = %q, want filename fallback", title)
	}
	if artist != UnknownArtist {
		t.Errorf("artist = %q, want %q", artist, UnknownArtist)
	}
}

func TestReadTagsUntaggedFile(t *testing.T) {
	// A file with no recognizable tag header must still yield usable
	// display strings.
	path := filepath.Join(t.TempDir(), "raw.mp3")
	if err := os.WriteFile(path, []byte("not really audio"), 0644); err != nil {
		t.Fatal(err)
	}

	title, artist := ReadTags(path)
	if title != "raw.mp3" {
		t.Errorf("title = %q, want filename fallback", title)
	}
	if artist != UnknownArtist {
		t.Errorf("artist = %q, want %q", artist, UnknownArtist)
	}
}
