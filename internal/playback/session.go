package playback

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"

	"cueplay/internal/term"
	playerrors "cueplay/pkg/errors"
)

// Sink is the audio-output handle the session drives. All calls are
// synchronous, fast and non-blocking; the session is the only caller.
type Sink interface {
	Clear()
	Append(stream beep.StreamSeekCloser, format beep.Format)
	Play()
	Pause()
	Stop()
	IsPaused() bool
	IsEmpty() bool
	SetVolume(level float64)
	Volume() float64
}

// Console is the slice of terminal behavior the session needs.
type Console interface {
	PollKey(timeout time.Duration) (term.Key, bool)
	Width() int
	CarriageReturn()
	ClearLine()
	SetTitle(title string)
}

// KeyBindings maps session actions to key names. Printable keys are
// matched case-insensitively by their rune; arrows and space by the
// names the term package assigns. Ctrl+C always quits regardless of
// the Quit binding.
type KeyBindings struct {
	PauseResume string
	Mute        string
	VolumeUp    string
	VolumeDown  string
	Next        string
	Previous    string
	Quit        string
}

// DefaultKeyBindings returns the stock control scheme.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		PauseResume: term.KeySpace,
		Mute:        "p",
		VolumeUp:    term.KeyUp,
		VolumeDown:  term.KeyDown,
		Next:        term.KeyRight,
		Previous:    term.KeyLeft,
		Quit:        "q",
	}
}

// Options configures one playback session.
type Options struct {
	Random     bool
	Loop       bool
	VolumeStep float64
	Bindings   KeyBindings

	// PreloadTimeout bounds the wait for a preload result; zero means
	// the 5 s default.
	PreloadTimeout time.Duration
}

const (
	defaultPreloadTimeout = 5 * time.Second
	errorWait             = time.Second
	renderInterval        = time.Second
	pollInterval          = 100 * time.Millisecond
	toggleDebounce        = 200 * time.Millisecond
)

type action int

const (
	actionNone action = iota
	actionPauseResume
	actionMute
	actionVolumeUp
	actionVolumeDown
	actionNext
	actionPrevious
	actionQuit
)

// Session is the playback coordinator: it owns the current index, the
// clock, the skip limiter and the sink handle, consumes preload
// outcomes and runs the render/input tick loop. All of its state is
// touched from a single goroutine; preloaders only ever see the
// results channel.
type Session struct {
	playlist []string
	opts     Options

	sink    Sink
	console Console
	status  io.Writer // status line
	errs    io.Writer // per-track failure reports

	results chan Outcome
	clock   *Clock
	limiter *SkipLimiter

	current    int
	speculated int      // index of the in-flight speculative preload, -1 when none
	muted      *float64 // pre-mute volume while muted
	titleBase  string

	// injectable for tests
	now     func() time.Time
	sleep   func(time.Duration)
	preload func(path string, index int, results chan<- Outcome)
}

// NewSession builds a session over an already-resolved, non-empty
// playlist. Shuffling happens before this point; the session only ever
// walks linear indices.
func NewSession(playlist []string, sink Sink, console Console, status, errs io.Writer, opts Options) *Session {
	if opts.PreloadTimeout <= 0 {
		opts.PreloadTimeout = defaultPreloadTimeout
	}
	if opts.Bindings == (KeyBindings{}) {
		opts.Bindings = DefaultKeyBindings()
	}
	return &Session{
		playlist:   playlist,
		opts:       opts,
		sink:       sink,
		console:    console,
		status:     status,
		errs:       errs,
		results:    make(chan Outcome, 4),
		clock:      NewClock(),
		limiter:    NewSkipLimiter(MinSkipInterval),
		speculated: -1,
		now:        time.Now,
		sleep:      time.Sleep,
		preload:    StartPreload,
	}
}

// Run plays the playlist to completion. It returns nil on natural end
// of playlist and on user quit, and an error only for fatal session
// conditions. The caller owns terminal restoration.
func (s *Session) Run() error {
	total := len(s.playlist)
	if total == 0 {
		return playerrors.ErrEmptyPlaylist
	}

	s.startPreload(0)

	for {
		// Quit must be honored promptly even while a preload is still
		// pending, so check without blocking before the bounded wait.
		if key, ok := s.console.PollKey(0); ok && s.dispatchable(key) == actionQuit {
			return nil
		}

		if s.current >= total {
			if !s.opts.Loop {
				return nil
			}
			s.current = 0
			// The speculative preload started while the last track was
			// playing already targets slot 0; do not issue a duplicate.
			if s.speculated != 0 {
				s.startPreload(0)
			}
			s.speculated = -1
		}

		loaded, err := s.awaitCurrent()
		if err != nil {
			return err
		}
		if loaded == nil {
			// Recoverable failure: the slot was consumed, the index
			// advanced and a fresh preload is already underway.
			continue
		}

		if quit := s.playTrack(loaded); quit {
			return nil
		}
	}
}

// startPreload launches a preload for index if it is within bounds.
func (s *Session) startPreload(index int) {
	if index >= 0 && index < len(s.playlist) {
		s.preload(s.playlist[index], index, s.results)
	}
}

// awaitCurrent blocks on the results channel until an outcome tagged
// with the current index arrives or the bounded wait elapses. Stale
// outcomes are discarded. A nil, nil return means a recoverable
// failure was handled; a non-nil error is fatal.
func (s *Session) awaitCurrent() (*Loaded, error) {
	for {
		timer := time.NewTimer(s.opts.PreloadTimeout)
		select {
		case out, ok := <-s.results:
			timer.Stop()
			if !ok {
				return nil, playerrors.ErrSessionAborted
			}
			if out.Index != s.current {
				// Stale: a skip or failure moved the index on. Release
				// the stream and keep waiting.
				if out.Track != nil {
					out.Track.Stream.Close()
				}
				continue
			}
			s.speculated = -1
			if out.Fail != nil {
				s.failSlot(out.Fail)
				return nil, nil
			}
			return out.Track, nil

		case <-timer.C:
			s.failSlot(&Failure{Kind: FailTimeout, Name: filepath.Base(s.playlist[s.current])})
			return nil, nil
		}
	}
}

// failSlot reports a recoverable failure, consumes the slot and starts
// loading the next one. Failed slots are never retried.
func (s *Session) failSlot(fail *Failure) {
	s.console.ClearLine()
	fmt.Fprintf(s.errs, "[%d/%d] [error: %s]: %s -> skipping...",
		s.current+1, len(s.playlist), fail.Kind, fail.Name)
	s.sleep(errorWait)
	s.console.ClearLine()

	s.current++
	s.speculated = -1
	s.startPreload(s.current)
}

// playTrack hands a loaded track to the sink and runs the render/input
// tick loop until the track ends or a skip fires. It updates current
// and issues the follow-up preload before returning. The return value
// reports a user quit.
func (s *Session) playTrack(tr *Loaded) (quit bool) {
	total := len(s.playlist)
	path := s.playlist[s.current]

	s.sink.Clear()
	s.sink.Append(tr.Stream, tr.Format)
	if s.sink.IsPaused() {
		s.sink.Play()
	}

	s.titleBase = fmt.Sprintf("%s - %s", tr.Title, tr.Artist)
	s.refreshTitle()

	// Speculative preload of the natural successor. Skipped on a
	// single-track non-looping list, where the successor would be the
	// track itself or nothing at all.
	if next, ok := NextNatural(s.current, total, s.opts.Loop); ok && next != s.current {
		s.startPreload(next)
		s.speculated = next
	}

	s.clock.Reset()
	var lastRender time.Time
	lastToggle := s.now().Add(-toggleDebounce)
	skipTo := -1

tick:
	for !s.sink.IsEmpty() {
		s.clock.Observe(s.sink.IsPaused())

		if now := s.now(); lastRender.IsZero() || now.Sub(lastRender) >= renderInterval {
			s.render(path, tr)
			lastRender = now
		}

		key, ok := s.console.PollKey(pollInterval)
		if !ok {
			continue
		}

		switch s.dispatchable(key) {
		case actionQuit:
			return true

		case actionPauseResume:
			if s.now().Sub(lastToggle) < toggleDebounce {
				continue
			}
			lastToggle = s.now()
			if s.sink.IsPaused() {
				s.sink.Play()
			} else {
				s.sink.Pause()
			}
			s.clock.Observe(s.sink.IsPaused())
			s.refreshTitle()

		case actionMute:
			if s.now().Sub(lastToggle) < toggleDebounce {
				continue
			}
			lastToggle = s.now()
			s.toggleMute()
			s.refreshTitle()

		case actionVolumeUp:
			s.adjustVolume(s.opts.VolumeStep)

		case actionVolumeDown:
			s.adjustVolume(-s.opts.VolumeStep)

		case actionNext:
			if next, ok := ApplyForcedSkip(s.current, total, s.opts.Loop, +1); ok && s.limiter.Allow(s.now()) {
				s.sink.Stop()
				skipTo = next
				break tick
			}

		case actionPrevious:
			if next, ok := ApplyForcedSkip(s.current, total, s.opts.Loop, -1); ok && s.limiter.Allow(s.now()) {
				s.sink.Stop()
				skipTo = next
				break tick
			}
		}
	}

	if skipTo >= 0 {
		// The speculative preload assumed natural order and is stale
		// now; always start a fresh one for the skip target.
		s.current = skipTo
		s.speculated = -1
		s.startPreload(s.current)
	} else {
		s.console.ClearLine()
		s.current++
	}
	return false
}

// render repaints the status line in place.
func (s *Session) render(path string, tr *Loaded) {
	line := RenderStatus(Status{
		Index:    s.current,
		Total:    len(s.playlist),
		Random:   s.opts.Random,
		Loop:     s.opts.Loop,
		Path:     path,
		Title:    tr.Title,
		Artist:   tr.Artist,
		Elapsed:  s.clock.Elapsed(),
		Duration: tr.Duration,
		Volume:   s.sink.Volume(),
	}, s.console.Width())
	s.console.CarriageReturn()
	fmt.Fprint(s.status, line)
}

// toggleMute silences the sink remembering the pre-mute volume, or
// restores it.
func (s *Session) toggleMute() {
	if s.muted != nil {
		s.sink.SetVolume(*s.muted)
		s.muted = nil
		return
	}
	v := s.sink.Volume()
	s.muted = &v
	s.sink.SetVolume(0)
}

// adjustVolume nudges the sink volume; the sink clamps to [0, 1].
func (s *Session) adjustVolume(delta float64) {
	s.sink.SetVolume(s.sink.Volume() + delta)
}

// refreshTitle pushes the window title with mute/pause markers.
func (s *Session) refreshTitle() {
	title := s.titleBase
	if s.muted != nil {
		title = "[muted] " + title
	}
	if s.sink.IsPaused() {
		title = "[paused] " + title
	}
	s.console.SetTitle(title)
}

// dispatchable resolves a key event against the bindings.
func (s *Session) dispatchable(key term.Key) action {
	if key.Name == term.KeyCtrlC {
		return actionQuit
	}
	name := key.Name
	if name == term.KeyRune {
		name = strings.ToLower(string(key.Rune))
	}

	b := s.opts.Bindings
	switch name {
	case b.Quit:
		return actionQuit
	case b.PauseResume:
		return actionPauseResume
	case b.Mute:
		return actionMute
	case b.VolumeUp:
		return actionVolumeUp
	case b.VolumeDown:
		return actionVolumeDown
	case b.Next:
		return actionNext
	case b.Previous:
		return actionPrevious
	}
	return actionNone
}
