package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.OutputDir == "" {
		t.Error("expected non-empty default output dir")
	}
	if cfg.WorkDir == "" {
		t.Error("expected non-empty default work dir")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.MaxConcurrentJobs != 2 {
		t.Errorf("MaxConcurrentJobs = %d, want 2", cfg.MaxConcurrentJobs)
	}
	if cfg.MetricsEnabled {
		t.Error("MetricsEnabled default should be false")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("MEDIACONV_FFMPEG_PATH", "/opt/ffmpeg/bin/ffmpeg")
	t.Setenv("MEDIACONV_LOG_LEVEL", "debug")
	t.Setenv("MEDIACONV_MAX_CONCURRENT_JOBS", "4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.FFmpegPath != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q, want env override", cfg.FFmpegPath)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.MaxConcurrentJobs != 4 {
		t.Errorf("MaxConcurrentJobs = %d, want 4", cfg.MaxConcurrentJobs)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "output_dir: /data/out\nwork_dir: /data/work\nmetrics_enabled: true\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.OutputDir != "/data/out" {
		t.Errorf("OutputDir = %q, want /data/out", cfg.OutputDir)
	}
	if cfg.WorkDir != "/data/work" {
		t.Errorf("WorkDir = %q, want /data/work", cfg.WorkDir)
	}
	if !cfg.MetricsEnabled {
		t.Error("MetricsEnabled = false, want true")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}
