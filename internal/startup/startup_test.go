package startup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Version is empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion is empty")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("OS/Arch not populated")
	}
}

func TestEnsureDirectoryCreates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Fatalf("ensureDirectory() error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("directory not created: %v", err)
	}

	// Idempotent on an existing directory.
	if err := ensureDirectory(dir, "test"); err != nil {
		t.Errorf("ensureDirectory() on existing dir: %v", err)
	}
}

func TestEnsureDirectoryRejectsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("ensureDirectory() accepted a plain file")
	}
}

func TestTestWriteAccess(t *testing.T) {
	dir := t.TempDir()
	if err := testWriteAccess(dir); err != nil {
		t.Errorf("testWriteAccess() error: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Error("write test left files behind")
	}
}

func TestInitializeWiresEverything(t *testing.T) {
	base := t.TempDir()
	t.Setenv("MEDIACONV_OUTPUT_DIR", filepath.Join(base, "out"))
	t.Setenv("MEDIACONV_WORK_DIR", filepath.Join(base, "work"))
	t.Setenv("MEDIACONV_SETTINGS_DB_PATH", filepath.Join(base, "conf", "settings.db"))
	t.Setenv("MEDIACONV_LOG_LEVEL", "error")

	env, err := Initialize(context.Background(), "")
	if err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	defer env.Close()

	if env.Engine == nil || env.Analyzer == nil || env.Catalog == nil || env.Settings == nil {
		t.Error("Initialize() left components nil")
	}
	if _, err := os.Stat(filepath.Join(base, "work")); err != nil {
		t.Errorf("work directory missing: %v", err)
	}
}
