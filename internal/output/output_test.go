package output

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestUniqueOutputPath(t *testing.T) {
	dir := t.TempDir()

	got := UniqueOutputPath(dir, "movie", "mp4")
	want := filepath.Join(dir, "movie.mp4")
	if got != want {
		t.Errorf("UniqueOutputPath() = %q, want %q", got, want)
	}

	touch(t, filepath.Join(dir, "movie.mp4"))
	got = UniqueOutputPath(dir, "movie", ".mp4")
	want = filepath.Join(dir, "movie_converted_1.mp4")
	if got != want {
		t.Errorf("UniqueOutputPath() after collision = %q, want %q", got, want)
	}

	touch(t, filepath.Join(dir, "movie_converted_1.mp4"))
	touch(t, filepath.Join(dir, "movie_converted_2.mp4"))
	got = UniqueOutputPath(dir, "movie", ".mp4")
	want = filepath.Join(dir, "movie_converted_3.mp4")
	if got != want {
		t.Errorf("UniqueOutputPath() after more collisions = %q, want %q", got, want)
	}

	// Computing a path must not create anything.
	if _, err := os.Stat(got); !os.IsNotExist(err) {
		t.Errorf("UniqueOutputPath() created %s", got)
	}
}

func TestSaveConvertedOutputMove(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "work", "out.mp4")
	if err := EnsureDir(filepath.Dir(src)); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(src, []byte("converted"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(dir, "final.mp4")
	if err := SaveConvertedOutput(src, dst); err != nil {
		t.Fatalf("SaveConvertedOutput() error: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("reading destination: %v", err)
	}
	if string(data) != "converted" {
		t.Errorf("destination content = %q", data)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("working file still exists after save")
	}
}

func TestSaveConvertedOutputReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "out.mp4")
	dst := filepath.Join(dir, "final.mp4")
	if err := os.WriteFile(src, []byte("new"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SaveConvertedOutput(src, dst); err != nil {
		t.Fatalf("SaveConvertedOutput() error: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("destination content = %q, want new", data)
	}
}

func TestSaveConvertedOutputSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "same.mp4")
	if err := os.WriteFile(path, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := SaveConvertedOutput(path, path); err != nil {
		t.Fatalf("SaveConvertedOutput(same, same) error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "keep" {
		t.Errorf("content = %q, want keep", data)
	}
}

func TestSaveConvertedOutputMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := SaveConvertedOutput(filepath.Join(dir, "missing.mp4"), filepath.Join(dir, "out.mp4"))
	if err == nil {
		t.Error("SaveConvertedOutput(missing) succeeded")
	}
}

func TestClearWorkDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "stale1.mp4"))
	touch(t, filepath.Join(dir, "stale2.gif"))
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, filepath.Join(dir, "nested", "stale3.bin"))

	if err := ClearWorkDir(dir); err != nil {
		t.Fatalf("ClearWorkDir() error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("work directory still has %d entries", len(entries))
	}

	// All clear on a directory that never existed.
	if err := ClearWorkDir(filepath.Join(dir, "nope")); err != nil {
		t.Errorf("ClearWorkDir(missing) error: %v", err)
	}
}
