package playback

import (
	"os"
	"path/filepath"
	"time"

	"github.com/faiface/beep"

	"cueplay/internal/audio"
	"cueplay/internal/library"
)

// FailKind classifies a per-track preload failure.
type FailKind int

const (
	FailOpen FailKind = iota
	FailDecode
	FailTimeout // synthesized by the coordinator, never sent by a preloader
)

// String returns the status-line label for the failure kind.
func (k FailKind) String() string {
	switch k {
	case FailOpen:
		return "cannot open"
	case FailDecode:
		return "decode failed"
	case FailTimeout:
		return "load timed out"
	}
	return "unknown"
}

// Loaded is a successfully preloaded track: an open decoded stream plus
// its display metadata.
type Loaded struct {
	Stream   beep.StreamSeekCloser
	Format   beep.Format
	Title    string
	Artist   string
	Duration time.Duration // zero when undeterminable
}

// Failure describes why a slot could not be loaded.
type Failure struct {
	Kind FailKind
	Name string // display name of the offending file
}

// Outcome is the tagged result of one preload attempt. Exactly one of
// Track and Fail is set. The Index tag is what lets the coordinator
// discard results made stale by a skip.
type Outcome struct {
	Index int
	Track *Loaded
	Fail  *Failure
}

// StartPreload launches a background load of the file at path into
// slot index. It sends exactly one Outcome on results and never blocks
// the caller. Preloads are never retried and cannot be cancelled;
// stale outcomes are dropped by the consumer instead.
func StartPreload(path string, index int, results chan<- Outcome) {
	go func() {
		name := filepath.Base(path)
		title, artist := library.ReadTags(path)

		file, err := os.Open(path)
		if err != nil {
			results <- Outcome{Index: index, Fail: &Failure{Kind: FailOpen, Name: name}}
			return
		}

		stream, format, err := audio.Decode(file, path)
		if err != nil {
			file.Close()
			results <- Outcome{Index: index, Fail: &Failure{Kind: FailDecode, Name: name}}
			return
		}

		var duration time.Duration
		if n := stream.Len(); n > 0 {
			duration = format.SampleRate.D(n)
		}

		results <- Outcome{Index: index, Track: &Loaded{
			Stream:   stream,
			Format:   format,
			Title:    title,
			Artist:   artist,
			Duration: duration,
		}}
	}()
}
