package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrInputNotFound   = errors.New("path or pattern does not exist")
	ErrEmptyPlaylist   = errors.New("no supported audio files found")
	ErrInvalidFormat   = errors.New("unsupported audio format")
	ErrInvalidVolume   = errors.New("volume must be between 0.0 and 1.0")
	ErrSessionAborted  = errors.New("preload channel closed")
	ErrEmptyListFile   = errors.New("playlist file is empty or contains no valid paths")
	ErrUnknownPathKind = errors.New("unrecognized path type")
)

// PlayerError wraps errors with additional context
type PlayerError struct {
	Op    string // Operation that failed
	Track string // Track display name if applicable
	Err   error  // Underlying error
}

func (e *PlayerError) Error() string {
	if e.Track != "" {
		return fmt.Sprintf("%s failed for track %s: %v", e.Op, e.Track, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PlayerError) Unwrap() error {
	return e.Err
}

// NewPlayerError creates a new PlayerError
func NewPlayerError(op, track string, err error) *PlayerError {
	return &PlayerError{Op: op, Track: track, Err: err}
}

// ResolveError represents an error while resolving a playlist input
type ResolveError struct {
	Input string
	Err   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve error for %s: %v", e.Input, e.Err)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}
