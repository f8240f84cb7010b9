package playback

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"cueplay/internal/ui"
)

// Status is everything the renderer needs for one repaint. It is
// assembled by the coordinator from scheduler, clock and sink state.
type Status struct {
	Index    int // 0-based slot index
	Total    int
	Random   bool
	Loop     bool
	Path     string
	Title    string
	Artist   string
	Elapsed  time.Duration
	Duration time.Duration
	Volume   float64 // linear 0..1
}

// minimum cell budget before the artist is dropped from the music field
const minMusicWidth = 15

// RenderStatus formats one fixed-width status line:
//
//	[3/12][shuf|loop][MP3][Title - Artist][01:23/04:05][75%]
//
// The music field absorbs whatever width the fixed fields leave over;
// when that falls under a small threshold only the title is shown.
// The result is padded to exactly width cells so it overdraws the
// previous line without a clear.
func RenderStatus(st Status, width int) string {
	count := fmt.Sprintf("[%d/%d]", st.Index+1, st.Total)
	mode := fmt.Sprintf("[%s|%s]", pick(st.Random, "shuf", "seq"), pick(st.Loop, "loop", "once"))
	ext := fmt.Sprintf("[%s]", strings.ToUpper(strings.TrimPrefix(filepath.Ext(st.Path), ".")))
	clock := fmt.Sprintf("[%s/%s]", ui.FormatDuration(st.Elapsed), ui.FormatDuration(st.Duration))
	vol := fmt.Sprintf("[%.0f%%]", st.Volume*100)

	fixed := runewidth.StringWidth(count+mode+ext+"[]"+clock+vol)
	musicWidth := width - fixed
	if musicWidth < 0 {
		musicWidth = 0
	}

	var music string
	if musicWidth < minMusicWidth {
		music = ui.Truncate(st.Title, musicWidth)
	} else {
		music = ui.Truncate(st.Title+" - "+st.Artist, musicWidth)
	}

	line := count + mode + ext + "[" + music + "]" + clock + vol
	return ui.Pad(line, width)
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
