package startup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"media-convert/internal/analyzer"
	"media-convert/internal/catalog"
	"media-convert/internal/config"
	"media-convert/internal/engine"
	"media-convert/internal/ffmpeg"
	"media-convert/internal/logging"
	"media-convert/internal/metrics"
	"media-convert/internal/output"
	"media-convert/internal/primary"
	"media-convert/internal/settings"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Environment is the fully wired application: every component constructed
// once here and handed to the caller by reference.
type Environment struct {
	Config   *config.Config
	Settings *settings.Store
	Finder   *ffmpeg.Finder
	Catalog  *catalog.Catalog
	Analyzer *analyzer.Analyzer
	Engine   *engine.Engine
	Primary  primary.Exporter
}

// Initialize loads configuration, validates directories, discovers backends,
// and wires the engine. configPath may be empty to rely on defaults and
// environment variables.
func Initialize(ctx context.Context, configPath string) (*Environment, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	printBanner()
	logSystemInfo()

	logging.Info("Validating directories...")
	for _, dir := range []struct{ path, name string }{
		{cfg.OutputDir, "output"},
		{cfg.WorkDir, "work"},
		{filepath.Dir(cfg.SettingsDBPath), "settings"},
	} {
		if err := ensureDirectory(dir.path, dir.name); err != nil {
			return nil, fmt.Errorf("%s directory %s: %w", dir.name, dir.path, err)
		}
	}
	if err := testWriteAccess(cfg.WorkDir); err != nil {
		return nil, fmt.Errorf("work directory %s is not writable: %w", cfg.WorkDir, err)
	}

	// Working files from jobs that never finished are swept on every start.
	if err := output.ClearWorkDir(cfg.WorkDir); err != nil {
		logging.Warn("Work directory sweep incomplete: %v", err)
	}

	if err := primary.InitVips(); err != nil {
		logging.Warn("vips unavailable, image conversions use the pure-Go path: %v", err)
	}

	finder := ffmpeg.NewFinder(cfg.FFmpegPath)
	logExternalTool(finder)

	insp := ffmpeg.NewIntrospector(finder)
	cat := catalog.New(insp)
	exporter := primary.NewImageExporter()
	an := analyzer.New(cat, exporter, insp)

	store, err := settings.Open(ctx, cfg.SettingsDBPath)
	if err != nil {
		return nil, err
	}

	eng := engine.New(engine.Config{
		Analyzer:     an,
		Catalog:      cat,
		Primary:      exporter,
		Finder:       finder,
		Introspector: insp,
		WorkDir:      cfg.WorkDir,
		OutputDir:    cfg.OutputDir,
	})

	if cfg.MetricsEnabled {
		metrics.InitializeMetrics()
	}

	return &Environment{
		Config:   cfg,
		Settings: store,
		Finder:   finder,
		Catalog:  cat,
		Analyzer: an,
		Engine:   eng,
		Primary:  exporter,
	}, nil
}

// Close releases the environment's resources.
func (e *Environment) Close() {
	if err := e.Settings.Close(); err != nil {
		logging.Error("failed to close settings store: %v", err)
	}
	primary.ShutdownVips()
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    __  ___         ___      ______                          __
   /  |/  /__  ____/ (_)___ _/ ____/___  ____ _   _____  ____/ /_
  / /|_/ / _ \/ __  / / __ '/ /   / __ \/ __ \ | / / _ \/ ___/ __/
 / /  / /  __/ /_/ / / /_/ / /___/ /_/ / / / / |/ /  __/ /  / /_
/_/  /_/\___/\__,_/_/\__,_/\____/\____/_/ /_/|___/\___/_/   \__/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func logExternalTool(finder *ffmpeg.Finder) {
	path, err := finder.Find()
	if err != nil {
		logging.Warn("External transcoder not found; only natively supported formats are offered")
		return
	}
	logging.Info("External transcoder: %s", path)
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}
