package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"media-convert/internal/analyzer"
	"media-convert/internal/catalog"
	"media-convert/internal/ffmpeg"
	"media-convert/internal/logging"
	"media-convert/internal/mediatypes"
	"media-convert/internal/metrics"
	"media-convert/internal/output"
	"media-convert/internal/primary"
	"media-convert/internal/settings"
)

// runExternalFunc invokes one external conversion. Swappable in tests.
type runExternalFunc func(ctx context.Context, binaryPath string, args []string, durationUS int64, onProgress func(float64)) error

func runExternal(ctx context.Context, binaryPath string, args []string, durationUS int64, onProgress func(float64)) error {
	return ffmpeg.NewRunner(binaryPath).Run(ctx, args, durationUS, onProgress)
}

// ToolFinder resolves the external transcoder binary. Satisfied by
// *ffmpeg.Finder.
type ToolFinder interface {
	Find() (string, error)
	Available() bool
}

// Config wires an Engine's collaborators and directories.
type Config struct {
	Analyzer *analyzer.Analyzer
	Catalog  *catalog.Catalog
	// Primary may be nil when no in-process backend exists; every job then
	// goes straight to the external tool.
	Primary      primary.Exporter
	Finder       ToolFinder
	Introspector catalog.Introspector

	// WorkDir holds job-private working files; OutputDir receives finished
	// conversions.
	WorkDir   string
	OutputDir string
}

// Engine runs conversion jobs. Safe for concurrent use; each job owns its
// working file and runs its phases strictly sequentially.
type Engine struct {
	analyzer *analyzer.Analyzer
	catalog  *catalog.Catalog
	primary  primary.Exporter
	finder   ToolFinder
	insp     catalog.Introspector

	workDir   string
	outputDir string

	run runExternalFunc
}

// New creates an Engine from cfg.
func New(cfg Config) *Engine {
	return &Engine{
		analyzer:  cfg.Analyzer,
		catalog:   cfg.Catalog,
		primary:   cfg.Primary,
		finder:    cfg.Finder,
		insp:      cfg.Introspector,
		workDir:   cfg.WorkDir,
		outputDir: cfg.OutputDir,
		run:       runExternal,
	}
}

// Request describes one conversion to run.
type Request struct {
	SourcePath string
	Settings   settings.Record
	// OutputDir overrides the engine's destination directory when set.
	OutputDir string
	// OnProgress, when set, observes every progress update.
	OnProgress func(float64)
}

// Convert runs one job to completion. The returned Job is also readable while
// Convert blocks (run Convert on its own goroutine and poll State/Progress).
// A cancelled job returns a nil error with State() == StateCancelled and
// progress reset to zero; every other non-success returns a *Failure.
func (e *Engine) Convert(ctx context.Context, req Request) (*Job, error) {
	canonical := mediatypes.CanonicalPath(req.SourcePath)
	kind := mediatypes.KindForPath(canonical)
	job := newJob(canonical, kind)
	job.onProgress = req.OnProgress

	ctx, cancel := context.WithCancel(ctx)
	job.bindCancel(cancel)
	defer cancel()

	metrics.ConversionsStarted.WithLabelValues(string(kind)).Inc()
	logging.Info("job %s: converting %s", job.ID, canonical)
	start := time.Now()

	backend, err := e.convert(ctx, job, req)
	if err != nil {
		return job, e.finish(job, backend, start, err)
	}

	job.setState(StateSucceeded)
	job.setProgress(1)
	metrics.ConversionsCompleted.WithLabelValues(backend, "succeeded").Inc()
	metrics.ConversionDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	logging.Info("job %s: succeeded via %s backend, output at %s", job.ID, backend, job.DestPath)
	return job, nil
}

// convert drives the job through its phases and returns the backend that
// produced the output ("primary" or "external").
func (e *Engine) convert(ctx context.Context, job *Job, req Request) (string, error) {
	job.setState(StateAnalyzing)
	report, err := e.analyzer.Analyze(ctx, job.SourcePath)
	if err != nil {
		return "primary", err
	}
	if report.Err != nil {
		return "primary", fmt.Errorf("%w: %v", errSourceUnreadable, report.Err)
	}

	format, err := resolveFormat(report, req.Settings.FormatID)
	if err != nil {
		return "primary", err
	}

	animated := report.FrameCount > 1 && req.Settings.PreserveAnimation
	if animated && format.UsesPalettePipeline && !e.finder.Available() {
		return "primary", fmt.Errorf("preserving animation in %s output requires the external transcoder: %w",
			format.ID, ffmpeg.ErrToolNotFound)
	}

	bitrateKbps := req.Settings.Bitrate
	if req.Settings.CustomBitrate != "" {
		bitrateKbps, err = ParseBitrate(req.Settings.CustomBitrate)
		if err != nil {
			return "primary", err
		}
	}

	if err := output.EnsureDir(e.workDir); err != nil {
		return "primary", err
	}
	job.WorkingPath = filepath.Join(e.workDir, job.ID+"."+format.Extension)

	// Primary phase. Formats the primary framework cannot write at all skip
	// straight to the external tool; that is not counted as a fallback.
	if e.primary != nil && !format.RequiresExternal() && !(animated && format.UsesPalettePipeline) {
		primaryErr := e.exportPrimary(ctx, job, req, format)
		if primaryErr == nil {
			return "primary", e.finalize(job, req, format)
		}
		class := classify(primaryErr)
		if !fallbackAllowed(class) {
			return "primary", primaryErr
		}
		metrics.FallbacksTotal.Inc()
		logging.Info("job %s: primary backend cannot produce %s (%v), falling back to external tool",
			job.ID, format.ID, primaryErr)
		job.setProgress(0)
	}

	if err := e.exportExternal(ctx, job, req, format, report, bitrateKbps); err != nil {
		return "external", err
	}
	return "external", e.finalize(job, req, format)
}

// exportPrimary runs the in-process backend. Errors wrapping
// primary.ErrUnsupported (including a readable source with zero compatible
// presets) permit fallback; everything else is terminal.
func (e *Engine) exportPrimary(ctx context.Context, job *Job, req Request, format catalog.FormatDescriptor) error {
	job.setState(StateExportingPrimary)
	logging.Debug("job %s: trying primary backend for %s", job.ID, format.ID)

	if !e.primary.CanRead(ctx, job.SourcePath) {
		return fmt.Errorf("primary backend cannot read %s: %w", filepath.Base(job.SourcePath), primary.ErrUnsupported)
	}
	presets, err := e.primary.CompatiblePresets(ctx, job.SourcePath, format.ID)
	if err != nil {
		return fmt.Errorf("querying presets for %s: %w", format.ID, err)
	}
	if len(presets) == 0 {
		return fmt.Errorf("no preset can produce %s: %w", format.ID, primary.ErrUnsupported)
	}

	exportReq := primary.ExportRequest{
		SourcePath:  job.SourcePath,
		OutputPath:  job.WorkingPath,
		FormatID:    format.ID,
		Preset:      presets[0],
		Width:       req.Settings.Width,
		Height:      req.Settings.Height,
		Quality:     req.Settings.ImageQuality,
		Compression: req.Settings.ImageCompression,
	}
	if err := e.primary.Export(ctx, exportReq, job.setProgress); err != nil {
		return fmt.Errorf("preset %s: %w", presets[0], err)
	}

	// Exit-0 alone is not success; the file must actually exist.
	if _, err := os.Stat(job.WorkingPath); err != nil {
		return fmt.Errorf("primary backend reported success but produced no file at %s", job.WorkingPath)
	}
	return nil
}

// exportExternal runs the subprocess backend, trying encoder candidates
// strictly in preference order and removing the partial output between
// attempts. The last candidate's error is surfaced when all are exhausted.
func (e *Engine) exportExternal(ctx context.Context, job *Job, req Request, format catalog.FormatDescriptor, report *analyzer.Report, bitrateKbps int) error {
	job.setState(StateExportingExternal)

	binaryPath, err := e.finder.Find()
	if err != nil {
		return fmt.Errorf("external transcoder needed for %s: %w", format.ID, err)
	}
	snap, err := e.insp.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("introspecting external transcoder: %w", err)
	}
	if !format.ExternalSupported {
		return fmt.Errorf("external transcoder has no muxer for %s: %w", format.ID, primary.ErrUnsupported)
	}

	attempts, err := buildAttempts(job, req.Settings, format, report, snap, bitrateKbps)
	if err != nil {
		return err
	}

	var lastErr error
	for i, att := range attempts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.Remove(job.WorkingPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing partial output: %w", err)
		}

		logging.Debug("job %s: external attempt %d/%d codec=%s", job.ID, i+1, len(attempts), att.codec)
		job.setProgress(0)
		runErr := e.run(ctx, binaryPath, att.args, 0, job.setProgress)
		if runErr == nil {
			if _, statErr := os.Stat(job.WorkingPath); statErr == nil {
				metrics.CodecAttempts.WithLabelValues(att.codec, "ok").Inc()
				return nil
			}
			runErr = fmt.Errorf("external transcoder exited cleanly but produced no file at %s", job.WorkingPath)
		}
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			return runErr
		}
		metrics.CodecAttempts.WithLabelValues(att.codec, "error").Inc()
		lastErr = fmt.Errorf("codec %s: %w", att.codec, runErr)
		logging.Warn("job %s: %v", job.ID, lastErr)
	}
	return lastErr
}

// finalize moves the working file to a collision-free destination.
func (e *Engine) finalize(job *Job, req Request, format catalog.FormatDescriptor) error {
	destDir := req.OutputDir
	if destDir == "" {
		destDir = e.outputDir
	}
	if err := output.EnsureDir(destDir); err != nil {
		return err
	}

	stem := strings.TrimSuffix(filepath.Base(job.SourcePath), filepath.Ext(job.SourcePath))
	dest := output.UniqueOutputPath(destDir, stem, format.Extension)
	if err := output.SaveConvertedOutput(job.WorkingPath, dest); err != nil {
		return err
	}
	job.DestPath = dest
	return nil
}

// finish handles every non-success exit: the working file is removed,
// cancellation resets progress and reports no error, and everything else
// becomes the job's single *Failure.
func (e *Engine) finish(job *Job, backend string, start time.Time, err error) error {
	e.removeWorkingFile(job)

	if classify(err) == FailureCancelled {
		job.setState(StateCancelled)
		job.setProgress(0)
		metrics.ConversionsCompleted.WithLabelValues(backend, "cancelled").Inc()
		logging.Info("job %s: cancelled", job.ID)
		return nil
	}

	job.setState(StateFailed)
	metrics.ConversionsCompleted.WithLabelValues(backend, "failed").Inc()
	metrics.ConversionDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	failure := newFailure(err)
	logging.Error("job %s: %v", job.ID, failure)
	return failure
}

func (e *Engine) removeWorkingFile(job *Job) {
	if job.WorkingPath == "" {
		return
	}
	if err := os.Remove(job.WorkingPath); err != nil && !os.IsNotExist(err) {
		logging.Warn("job %s: failed to remove working file %s: %v", job.ID, job.WorkingPath, err)
	}
}

// resolveFormat picks the target among the formats achievable for this
// source: the requested ID if achievable, otherwise the default selection.
// Requesting a format the source cannot reach is a validation error, not a
// backend failure.
func resolveFormat(report *analyzer.Report, formatID string) (catalog.FormatDescriptor, error) {
	if formatID == "" {
		format, ok := catalog.DefaultSelection(report.Formats)
		if !ok {
			return catalog.FormatDescriptor{}, fmt.Errorf("%w: no output format available for %s",
				errValidation, filepath.Base(report.SourcePath))
		}
		return format, nil
	}

	want := strings.ToLower(formatID)
	for _, f := range report.Formats {
		if f.NormalizedID() == want {
			return f, nil
		}
	}
	return catalog.FormatDescriptor{}, fmt.Errorf("%w: format %q is not available for %s",
		errValidation, formatID, filepath.Base(report.SourcePath))
}
