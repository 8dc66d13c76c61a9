package ffmpeg

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"media-convert/internal/logging"
)

// ErrToolNotFound is returned when no external transcoder binary could be
// located anywhere in the search order.
var ErrToolNotFound = errors.New("external transcoder binary not found")

// negativeTTL bounds how long a failed binary lookup is remembered before the
// search runs again. A positive result is kept for as long as the resolved
// path remains executable.
const negativeTTL = 30 * time.Second

// wellKnownPaths are fixed install locations checked after bundled and
// executable-adjacent candidates but before the PATH scan.
var wellKnownPaths = []string{
	"/opt/homebrew/bin/ffmpeg",
	"/usr/local/bin/ffmpeg",
	"/usr/bin/ffmpeg",
}

// Finder resolves the external transcoder binary path and caches the result.
type Finder struct {
	override  string
	wellKnown []string

	mu        sync.Mutex
	path      string
	missingAt time.Time
	now       func() time.Time
}

// NewFinder creates a Finder. A non-empty override short-circuits discovery
// and is used verbatim if executable.
func NewFinder(override string) *Finder {
	return &Finder{override: override, wellKnown: wellKnownPaths, now: time.Now}
}

// Find returns the resolved binary path, or ErrToolNotFound.
// Search order: configured override, bundled resource directories, the
// directory adjacent to the running executable, well-known install paths,
// then the PATH environment variable.
func (f *Finder) Find() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.path != "" && isExecutable(f.path) {
		return f.path, nil
	}
	f.path = ""

	if !f.missingAt.IsZero() && f.now().Sub(f.missingAt) < negativeTTL {
		return "", ErrToolNotFound
	}

	if path, ok := f.locate(); ok {
		f.path = path
		f.missingAt = time.Time{}
		logging.Debug("external transcoder resolved to %s", path)
		return path, nil
	}

	f.missingAt = f.now()
	return "", ErrToolNotFound
}

// Available reports whether the external transcoder can be resolved.
func (f *Finder) Available() bool {
	_, err := f.Find()
	return err == nil
}

func (f *Finder) locate() (string, bool) {
	if f.override != "" {
		if isExecutable(f.override) {
			return f.override, true
		}
		logging.Warn("configured ffmpeg path %s is not executable", f.override)
	}

	for _, candidate := range bundledCandidates() {
		if isExecutable(candidate) {
			return candidate, true
		}
	}

	for _, candidate := range f.wellKnown {
		if isExecutable(candidate) {
			return candidate, true
		}
	}

	if path, err := exec.LookPath("ffmpeg"); err == nil {
		return path, true
	}

	return "", false
}

// bundledCandidates returns locations packaged alongside the running
// executable: a Resources directory sibling and the executable's own dir.
func bundledCandidates() []string {
	exe, err := os.Executable()
	if err != nil {
		return nil
	}
	dir := filepath.Dir(exe)
	return []string{
		filepath.Join(dir, "..", "Resources", "ffmpeg"),
		filepath.Join(dir, "ffmpeg"),
	}
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
