package audio

import (
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"

	playerrors "cueplay/pkg/errors"
)

// Sink owns the speaker output for one session. A persistent mixer and
// volume stage are installed once; tracks are swapped in and out of the
// mixer. All methods are cheap and synchronous and must be called from
// a single goroutine.
type Sink struct {
	sampleRate beep.SampleRate
	mixer      *beep.Mixer
	volume     *effects.Volume
	ctrl       *beep.Ctrl
	stream     beep.StreamSeekCloser
	level      float64
	empty      bool
}

// NewSink initializes the speaker at the given sample rate and installs
// the mixer/volume chain. level is the initial linear volume in [0, 1].
func NewSink(sampleRate beep.SampleRate, level float64) (*Sink, error) {
	if level < 0 || level > 1 {
		return nil, playerrors.ErrInvalidVolume
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, playerrors.NewPlayerError("speaker_init", "", err)
	}

	mixer := &beep.Mixer{}
	vol := &effects.Volume{
		Streamer: mixer,
		Base:     2,
		Volume:   level*2 - 1, // linear 0..1 mapped onto a log scale
		Silent:   level == 0,
	}
	speaker.Play(vol)

	return &Sink{
		sampleRate: sampleRate,
		mixer:      mixer,
		volume:     vol,
		level:      level,
		empty:      true,
	}, nil
}

// Append replaces whatever is queued with the given decoded stream and
// begins feeding it to the speaker. Streams whose sample rate differs
// from the sink's are resampled.
func (s *Sink) Append(stream beep.StreamSeekCloser, format beep.Format) {
	speaker.Lock()
	defer speaker.Unlock()

	s.dropLocked()

	var src beep.Streamer = stream
	if format.SampleRate != s.sampleRate {
		src = beep.Resample(4, format.SampleRate, s.sampleRate, stream)
	}

	s.ctrl = &beep.Ctrl{Streamer: src}
	s.stream = stream
	s.empty = false

	// The callback runs on the speaker goroutine while it holds the
	// speaker lock, so flipping the flag here is race-free with the
	// locked readers below.
	s.mixer.Add(beep.Seq(s.ctrl, beep.Callback(func() {
		s.empty = true
	})))
}

// Clear discards any queued audio without touching the pause flag.
func (s *Sink) Clear() {
	speaker.Lock()
	defer speaker.Unlock()
	s.dropLocked()
}

// Stop discards any queued audio and leaves the sink unpaused.
func (s *Sink) Stop() {
	speaker.Lock()
	defer speaker.Unlock()
	s.dropLocked()
}

func (s *Sink) dropLocked() {
	s.mixer.Clear()
	if s.stream != nil {
		s.stream.Close()
		s.stream = nil
	}
	s.ctrl = nil
	s.empty = true
}

// Play resumes a paused sink.
func (s *Sink) Play() {
	speaker.Lock()
	defer speaker.Unlock()
	if s.ctrl != nil {
		s.ctrl.Paused = false
	}
}

// Pause suspends output without discarding the current stream.
func (s *Sink) Pause() {
	speaker.Lock()
	defer speaker.Unlock()
	if s.ctrl != nil {
		s.ctrl.Paused = true
	}
}

// IsPaused reports whether output is currently suspended.
func (s *Sink) IsPaused() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return s.ctrl != nil && s.ctrl.Paused
}

// IsEmpty reports whether the current stream has been fully consumed
// (or nothing was ever appended).
func (s *Sink) IsEmpty() bool {
	speaker.Lock()
	defer speaker.Unlock()
	return s.empty
}

// SetVolume sets the linear volume level, clamped to [0, 1]. Zero
// silences the output entirely.
func (s *Sink) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	speaker.Lock()
	defer speaker.Unlock()

	s.level = level
	if level == 0 {
		s.volume.Silent = true
		return
	}
	s.volume.Silent = false
	s.volume.Volume = level*2 - 1
}

// Volume returns the current linear volume level in [0, 1].
func (s *Sink) Volume() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return s.level
}

// Close tears down the current stream. The speaker itself is process
// global and is left running.
func (s *Sink) Close() {
	s.Stop()
}
