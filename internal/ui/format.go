package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// Truncate shortens s to at most maxWidth terminal cells, appending
// "..." when anything was cut. Wide characters (CJK) count as two
// cells. A maxWidth below the ellipsis width yields an empty string.
func Truncate(s string, maxWidth int) string {
	const ellipsis = "..."
	if maxWidth < len(ellipsis) {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	target := maxWidth - len(ellipsis)
	var b strings.Builder
	width := 0
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if width+rw > target {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + ellipsis
}

// Pad right-pads s with spaces to exactly width terminal cells. Strings
// already at or past the width are returned unchanged.
func Pad(s string, width int) string {
	gap := width - runewidth.StringWidth(s)
	if gap <= 0 {
		return s
	}
	return s + strings.Repeat(" ", gap)
}

// FormatDuration renders a duration as MM:SS. Zero (the unknown
// sentinel) renders as "??:??".
func FormatDuration(d time.Duration) string {
	secs := int(d.Seconds())
	if secs <= 0 {
		return "??:??"
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
