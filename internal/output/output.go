package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"media-convert/internal/logging"
)

// ErrSaveFailed reports that neither a rename nor the copy fallback could
// place the converted file at its destination.
var ErrSaveFailed = errors.New("failed to save converted file")

// UniqueOutputPath returns a path in dir for baseName+ext that does not
// collide with an existing file, appending _converted_N (N from 1) until the
// name is free. It only computes the path; nothing is created.
func UniqueOutputPath(dir, baseName, ext string) string {
	if ext != "" && ext[0] != '.' {
		ext = "." + ext
	}

	candidate := filepath.Join(dir, baseName+ext)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate
	}

	for n := 1; ; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s_converted_%d%s", baseName, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// SaveConvertedOutput moves the working file src to dst. Identical paths are
// a no-op. Any pre-existing file at dst is removed first. A plain rename is
// attempted before the copy-and-delete fallback; if both fail the error wraps
// ErrSaveFailed.
func SaveConvertedOutput(src, dst string) error {
	if src == dst {
		return nil
	}

	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing existing file at %s: %w", dst, err)
	}

	if err := os.Rename(src, dst); err == nil {
		logging.Debug("moved %s -> %s", src, dst)
		return nil
	}

	// Rename fails across volumes; stream the bytes over instead.
	if err := copyFile(src, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	if err := os.Remove(src); err != nil {
		logging.Warn("converted file copied but working copy %s not removed: %v", src, err)
	}
	logging.Debug("copied %s -> %s", src, dst)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if err := in.Close(); err != nil {
			logging.Warn("failed to close %s: %v", src, err)
		}
	}()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		if closeErr := out.Close(); closeErr != nil {
			logging.Warn("failed to close %s: %v", dst, closeErr)
		}
		return err
	}
	if err := out.Sync(); err != nil {
		if closeErr := out.Close(); closeErr != nil {
			logging.Warn("failed to close %s: %v", dst, closeErr)
		}
		return err
	}
	return out.Close()
}

// EnsureDir creates dir (and parents) if missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// ClearWorkDir removes every entry inside the working directory, leaving the
// directory itself in place. Leftovers from crashed jobs are swept here at
// startup.
func ClearWorkDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading work directory %s: %w", dir, err)
	}

	var failed int
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logging.Warn("failed to remove stale work file %s: %v", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d entries from %s", failed, dir)
	}
	if len(entries) > 0 {
		logging.Info("Cleared %d stale entries from work directory %s", len(entries), dir)
	}
	return nil
}
