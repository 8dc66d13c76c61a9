package analyzer

import (
	"context"
	"fmt"
	"path/filepath"

	"media-convert/internal/catalog"
	"media-convert/internal/logging"
	"media-convert/internal/mediatypes"
	"media-convert/internal/primary"
)

// Report describes what can be done with one source file. Err is set when
// the source is unreadable by every backend; Warning flags degraded but
// workable situations. SourcePath is canonical so callers comparing against
// a possibly stale selection compare path strings, not object identity.
type Report struct {
	SourcePath string
	Kind       mediatypes.Kind

	// Formats lists output formats achievable for this particular source,
	// already narrowed by which backends can read it.
	Formats []catalog.FormatDescriptor

	Warning string
	Err     error

	// FrameCount and HasAlpha are populated for image sources.
	FrameCount int
	HasAlpha   bool
}

// Analyzer resolves source capabilities against the catalog, the primary
// exporter, and the external tool.
type Analyzer struct {
	catalog *catalog.Catalog
	primary primary.Exporter
	insp    catalog.Introspector
}

// New creates an Analyzer. exporter and insp may each be nil when the
// corresponding backend is absent.
func New(cat *catalog.Catalog, exporter primary.Exporter, insp catalog.Introspector) *Analyzer {
	return &Analyzer{catalog: cat, primary: exporter, insp: insp}
}

// Analyze inspects path and reports achievable output formats. It returns an
// error only when the context ends; analysis verdicts, including "unreadable
// by any backend", land in the report itself. Safe for concurrent use from
// worker goroutines.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Report, error) {
	canonical := mediatypes.CanonicalPath(path)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		SourcePath: canonical,
		Kind:       mediatypes.KindForPath(canonical),
	}

	switch report.Kind {
	case mediatypes.KindImage:
		a.analyzeImage(ctx, report)
	case mediatypes.KindVideo, mediatypes.KindAudio:
		a.analyzeTrackMedia(ctx, report)
	default:
		report.Err = fmt.Errorf("%s is not a recognized media file", filepath.Base(canonical))
	}

	if report.Err != nil {
		logging.Debug("analyzer: %s: %v", canonical, report.Err)
	} else {
		logging.Debug("analyzer: %s: kind=%s formats=%d warning=%q",
			canonical, report.Kind, len(report.Formats), report.Warning)
	}
	return report, nil
}

// analyzeTrackMedia handles video and audio. When the primary exporter can
// read the source every catalog format for the kind is achievable; when it
// cannot, the external tool alone decides, narrowing the list to formats its
// muxers cover. Readable by neither is a hard error.
func (a *Analyzer) analyzeTrackMedia(ctx context.Context, report *Report) {
	formats := a.catalog.FormatsForKind(ctx, report.Kind)
	primaryReadable := a.primary != nil && a.primary.CanRead(ctx, report.SourcePath)
	external := a.externalAvailable(ctx)

	switch {
	case primaryReadable:
		report.Formats = formats
	case external:
		for _, f := range formats {
			if f.ExternalSupported {
				report.Formats = append(report.Formats, f)
			}
		}
		if len(report.Formats) == 0 {
			report.Err = fmt.Errorf("no output format can be produced from %s", filepath.Base(report.SourcePath))
		}
	default:
		report.Err = fmt.Errorf("%s cannot be read by any available backend", filepath.Base(report.SourcePath))
	}
}

// analyzeImage probes structural properties. Zero decodable frames is a hard
// error; more than one frame warns that the output may need the external tool
// to preserve animation, and warns harder when that tool is missing.
func (a *Analyzer) analyzeImage(ctx context.Context, report *Report) {
	info, err := primary.ProbeImage(report.SourcePath)
	if err != nil {
		report.Err = fmt.Errorf("%s cannot be read as an image: %w", filepath.Base(report.SourcePath), err)
		return
	}

	report.FrameCount = info.FrameCount
	report.HasAlpha = info.HasAlpha
	report.Formats = a.catalog.FormatsForKind(ctx, mediatypes.KindImage)

	if info.FrameCount > 1 {
		if a.externalAvailable(ctx) {
			report.Warning = "animated image: only animation-capable output formats will preserve all frames"
		} else {
			report.Warning = "animated image and no external converter found: only the first frame can be converted"
		}
	}
}

// externalAvailable reports whether the external tool resolved and
// introspected cleanly. The snapshot is cached, so repeated checks are cheap.
func (a *Analyzer) externalAvailable(ctx context.Context) bool {
	if a.insp == nil {
		return false
	}
	snap, err := a.insp.Snapshot(ctx)
	return err == nil && snap != nil
}
