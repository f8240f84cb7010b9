package playback

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/faiface/beep"

	"cueplay/internal/term"
	playerrors "cueplay/pkg/errors"
)

// fakeStream is a decodable-stream stand-in carrying its slot id.
type fakeStream struct {
	id     int
	closed bool
}

func (f *fakeStream) Stream(samples [][2]float64) (int, bool) { return 0, false }
func (f *fakeStream) Err() error                              { return nil }
func (f *fakeStream) Len() int                                { return 44100 }
func (f *fakeStream) Position() int                           { return 0 }
func (f *fakeStream) Seek(p int) error                        { return nil }
func (f *fakeStream) Close() error                            { f.closed = true; return nil }

// fakeSink reports a track as finished after playFor IsEmpty polls.
type fakeSink struct {
	playFor   int
	remaining int
	paused    bool
	volume    float64
	appended  []int // slot ids in append order
	stopped   int
}

func (s *fakeSink) Append(stream beep.StreamSeekCloser, format beep.Format) {
	s.appended = append(s.appended, stream.(*fakeStream).id)
	s.remaining = s.playFor
}

func (s *fakeSink) Clear() { s.remaining = 0 }

func (s *fakeSink) Stop() {
	s.stopped++
	s.remaining = 0
	s.paused = false
}

func (s *fakeSink) Play()  { s.paused = false }
func (s *fakeSink) Pause() { s.paused = true }

func (s *fakeSink) IsPaused() bool { return s.paused }

func (s *fakeSink) IsEmpty() bool {
	if s.remaining > 0 {
		s.remaining--
		return false
	}
	return true
}

func (s *fakeSink) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}
	s.volume = level
}

func (s *fakeSink) Volume() float64 { return s.volume }

// fakeConsole returns scripted keys by poll-call number.
type fakeConsole struct {
	polls  int
	script map[int]term.Key
	titles []string
}

func (c *fakeConsole) PollKey(timeout time.Duration) (term.Key, bool) {
	c.polls++
	key, ok := c.script[c.polls]
	return key, ok
}

func (c *fakeConsole) Width() int            { return 80 }
func (c *fakeConsole) CarriageReturn()       {}
func (c *fakeConsole) ClearLine()            {}
func (c *fakeConsole) SetTitle(title string) { c.titles = append(c.titles, title) }

func runeKey(r rune) term.Key { return term.Key{Name: term.KeyRune, Rune: r} }

// testHarness wires a session over fakes. failAt maps slot indices to
// forced decode failures; silentAt slots never produce an outcome.
type testHarness struct {
	session *Session
	sink    *fakeSink
	console *fakeConsole
	status  *bytes.Buffer
	errs    *bytes.Buffer
	loads   []int
}

func newHarness(tracks int, opts Options, script map[int]term.Key, failAt, silentAt map[int]bool) *testHarness {
	playlist := make([]string, tracks)
	for i := range playlist {
		playlist[i] = fmt.Sprintf("/music/track%d.mp3", i)
	}

	h := &testHarness{
		sink:    &fakeSink{playFor: 2, volume: 0.75},
		console: &fakeConsole{script: script},
		status:  &bytes.Buffer{},
		errs:    &bytes.Buffer{},
	}
	h.session = NewSession(playlist, h.sink, h.console, h.status, h.errs, opts)
	h.session.sleep = func(time.Duration) {}
	h.session.preload = func(path string, index int, results chan<- Outcome) {
		h.loads = append(h.loads, index)
		if silentAt[index] {
			return
		}
		if failAt[index] {
			results <- Outcome{Index: index, Fail: &Failure{Kind: FailDecode, Name: fmt.Sprintf("track%d.mp3", index)}}
			return
		}
		results <- Outcome{Index: index, Track: &Loaded{
			Stream:   &fakeStream{id: index},
			Format:   beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2},
			Title:    fmt.Sprintf("Title %d", index),
			Artist:   "Artist",
			Duration: time.Minute,
		}}
	}
	return h
}

func TestSessionSequentialPlaysInOrder(t *testing.T) {
	h := newHarness(3, Options{}, nil, nil, nil)

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got, want := fmt.Sprint(h.sink.appended), "[0 1 2]"; got != want {
		t.Errorf("appended order %v, want %v", got, want)
	}
	if got, want := fmt.Sprint(h.loads), "[0 1 2]"; got != want {
		t.Errorf("preload order %v, want %v", got, want)
	}
}

func TestSessionSingleTrackNoSelfPreload(t *testing.T) {
	h := newHarness(1, Options{}, nil, nil, nil)

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got, want := fmt.Sprint(h.loads), "[0]"; got != want {
		t.Errorf("preloads %v, want %v (no self-referential speculative load)", got, want)
	}
}

func TestSessionForwardSkipAtTailWrapsWithFreshPreload(t *testing.T) {
	// Poll numbering: 1 run-loop quit check, 2-3 track 0 ticks, 4 quit
	// check, 5 first tick of track 1 (skip fires), 6 quit check, 7
	// first tick of track 0 again (quit).
	script := map[int]term.Key{
		5: {Name: term.KeyRight},
		7: runeKey('q'),
	}
	h := newHarness(2, Options{Loop: true}, script, nil, nil)

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got, want := fmt.Sprint(h.sink.appended), "[0 1 0]"; got != want {
		t.Errorf("appended order %v, want %v", got, want)
	}
	// The skip must issue a fresh preload for slot 0 on top of the
	// speculative one started while track 1 was playing.
	if got, want := fmt.Sprint(h.loads), "[0 1 0 0 1]"; got != want {
		t.Errorf("preload order %v, want %v", got, want)
	}
	if h.sink.stopped != 1 {
		t.Errorf("sink stopped %d times, want 1", h.sink.stopped)
	}
}

func TestSessionNaturalLoopWrapReusesSpeculativePreload(t *testing.T) {
	script := map[int]term.Key{
		8: runeKey('q'),
	}
	h := newHarness(2, Options{Loop: true}, script, nil, nil)

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got, want := fmt.Sprint(h.sink.appended), "[0 1 0]"; got != want {
		t.Errorf("appended order %v, want %v", got, want)
	}
	// The wrap to slot 0 was already speculatively preloaded while
	// track 1 played; no second preload for it may be issued.
	if got, want := fmt.Sprint(h.loads), "[0 1 0 1]"; got != want {
		t.Errorf("preload order %v, want %v", got, want)
	}
}

func TestSessionDoubleSkipChangesIndexOnce(t *testing.T) {
	script := map[int]term.Key{
		5: {Name: term.KeyRight},
		6: {Name: term.KeyRight}, // lands between tracks, dropped
		7: runeKey('q'),
	}
	h := newHarness(2, Options{Loop: true}, script, nil, nil)

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got, want := fmt.Sprint(h.sink.appended), "[0 1 0]"; got != want {
		t.Errorf("appended order %v, want %v: second skip must not fire", got, want)
	}
}

func TestSessionCorruptSlotSkippedOnce(t *testing.T) {
	h := newHarness(2, Options{}, nil, map[int]bool{0: true}, nil)

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got, want := fmt.Sprint(h.sink.appended), "[1]"; got != want {
		t.Errorf("appended %v, want %v", got, want)
	}
	// Slot 0 loaded exactly once: no retry after the failure.
	if got, want := fmt.Sprint(h.loads), "[0 1]"; got != want {
		t.Errorf("preloads %v, want %v", got, want)
	}

	report := h.errs.String()
	if !strings.Contains(report, "decode failed") || !strings.Contains(report, "track0.mp3") {
		t.Errorf("failure report %q missing kind or file name", report)
	}
	if strings.Count(report, "decode failed") != 1 {
		t.Errorf("failure reported %d times, want once", strings.Count(report, "decode failed"))
	}
}

func TestSessionPreloadTimeout(t *testing.T) {
	h := newHarness(2, Options{PreloadTimeout: 5 * time.Millisecond}, nil, nil, map[int]bool{0: true})

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if got, want := fmt.Sprint(h.sink.appended), "[1]"; got != want {
		t.Errorf("appended %v, want %v", got, want)
	}
	if !strings.Contains(h.errs.String(), "load timed out") {
		t.Errorf("failure report %q missing timeout kind", h.errs.String())
	}
}

func TestSessionStaleResultsDiscarded(t *testing.T) {
	h := newHarness(3, Options{}, nil, nil, nil)
	s := h.session

	stale := &fakeStream{id: 99}
	s.results <- Outcome{Index: 2, Track: &Loaded{Stream: stale, Title: "stale"}}
	s.results <- Outcome{Index: 0, Track: &Loaded{Stream: &fakeStream{id: 0}, Title: "current"}}

	loaded, err := s.awaitCurrent()
	if err != nil {
		t.Fatalf("awaitCurrent() error: %v", err)
	}
	if loaded.Title != "current" {
		t.Errorf("awaitCurrent() returned %q, want the result tagged with the current index", loaded.Title)
	}
	if !stale.closed {
		t.Error("stale stream was not released")
	}
}

func TestSessionChannelCloseIsFatal(t *testing.T) {
	h := newHarness(2, Options{}, nil, nil, nil)
	s := h.session
	close(s.results)

	_, err := s.awaitCurrent()
	if !errors.Is(err, playerrors.ErrSessionAborted) {
		t.Errorf("awaitCurrent() error = %v, want ErrSessionAborted", err)
	}
}

func TestSessionPauseFreezesClock(t *testing.T) {
	// space at the first tick pauses; q later quits. The point is that
	// dispatch toggles the sink and the clock transition hook.
	script := map[int]term.Key{
		2: {Name: term.KeySpace},
	}
	h := newHarness(1, Options{}, script, nil, nil)
	h.sink.playFor = 3
	script[4] = runeKey('q')

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(h.console.titles) == 0 {
		t.Fatal("no titles pushed")
	}
	last := h.console.titles[len(h.console.titles)-1]
	if !strings.HasPrefix(last, "[paused]") {
		t.Errorf("title %q missing paused marker", last)
	}
}

func TestSessionMuteRestoresVolume(t *testing.T) {
	script := map[int]term.Key{
		2: runeKey('p'),
	}
	h := newHarness(1, Options{}, script, nil, nil)
	h.sink.playFor = 3
	h.session.opts.PreloadTimeout = time.Second

	// Defeat the toggle debounce between the two presses.
	base := time.Now()
	calls := 0
	h.session.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 300 * time.Millisecond)
	}
	script[4] = runeKey('p')
	script[5] = runeKey('q')

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if h.sink.volume != 0.75 {
		t.Errorf("volume after mute/unmute = %v, want 0.75 restored", h.sink.volume)
	}
}

func TestSessionVolumeStepClamped(t *testing.T) {
	script := map[int]term.Key{
		2: {Name: term.KeyUp},
		3: {Name: term.KeyUp},
		4: runeKey('q'),
	}
	h := newHarness(1, Options{VolumeStep: 0.2}, script, nil, nil)
	h.sink.playFor = 5
	h.sink.volume = 0.9

	if err := h.session.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if h.sink.volume != 1 {
		t.Errorf("volume = %v, want clamped to 1", h.sink.volume)
	}
}
