package playlist

import (
	"fmt"
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"cueplay/internal/audio"
	playerrors "cueplay/pkg/errors"
)

// list file extensions recognized as line-delimited playlists
var listExtensions = map[string]bool{
	".txt": true,
	".m3u": true,
}

// Resolve turns a single input descriptor into an ordered sequence of
// audio file paths. The descriptor may be a glob pattern, a directory,
// a line-delimited list file, or a single audio file.
func Resolve(input string) ([]string, error) {
	if strings.ContainsAny(input, "*?[") {
		return resolveGlob(input)
	}

	info, err := os.Stat(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &playerrors.ResolveError{Input: input, Err: playerrors.ErrInputNotFound}
		}
		return nil, &playerrors.ResolveError{Input: input, Err: err}
	}

	switch {
	case info.IsDir():
		return scanDir(input)
	case info.Mode().IsRegular():
		if listExtensions[strings.ToLower(filepath.Ext(input))] {
			return readListFile(input)
		}
		return []string{input}, nil
	default:
		return nil, &playerrors.ResolveError{Input: input, Err: playerrors.ErrUnknownPathKind}
	}
}

// resolveGlob expands a shell-style pattern and keeps regular files.
func resolveGlob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, &playerrors.ResolveError{Input: pattern, Err: err}
	}

	var files []string
	for _, match := range matches {
		if info, err := os.Stat(match); err == nil && info.Mode().IsRegular() {
			files = append(files, match)
		}
	}
	if len(files) == 0 {
		return nil, &playerrors.ResolveError{Input: pattern, Err: playerrors.ErrEmptyPlaylist}
	}
	return files, nil
}

// scanDir walks a directory tree collecting supported audio files in
// lexical order.
func scanDir(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && audio.IsSupported(p) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, &playerrors.ResolveError{Input: dir, Err: err}
	}
	if len(files) == 0 {
		return nil, &playerrors.ResolveError{Input: dir, Err: playerrors.ErrEmptyPlaylist}
	}
	return files, nil
}

// readListFile parses a line-delimited playlist file. Blank lines and
// lines starting with '#' are skipped.
func readListFile(path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &playerrors.ResolveError{Input: path, Err: fmt.Errorf("read list file: %w", err)}
	}

	var files []string
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		files = append(files, line)
	}
	if len(files) == 0 {
		return nil, &playerrors.ResolveError{Input: path, Err: playerrors.ErrEmptyListFile}
	}
	return files, nil
}

// Shuffle permutes the playlist in place (Fisher-Yates). Applied once,
// before the session starts; playback order is linear afterwards.
func Shuffle(paths []string) {
	for i := len(paths) - 1; i > 0; i-- {
		j := rand.Intn(i + 1)
		paths[i], paths[j] = paths[j], paths[i]
	}
}
