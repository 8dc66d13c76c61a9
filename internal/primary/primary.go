package primary

import (
	"context"
	"errors"
)

// ErrUnsupported marks inputs or outputs the primary backend understands to
// be outside its capabilities. The orchestrator is allowed to fall back to
// the external tool on this class of failure.
var ErrUnsupported = errors.New("primary transcoder: unsupported")

// ExportRequest describes one primary-backend export.
type ExportRequest struct {
	SourcePath string
	OutputPath string
	// FormatID is the catalog format identity (normalized, e.g. "jpeg").
	FormatID string
	// Preset is one of the names returned by CompatiblePresets.
	Preset string

	// Width and Height request a resize when both are positive.
	Width  int
	Height int
	// Quality applies to lossy encoders, 1-100; 0 means default.
	Quality int
	// Compression applies to lossless encoders (PNG zlib level 0-9);
	// -1 means default.
	Compression int
}

// Exporter is the primary transcoder seen from the engine. Implementations
// must be safe for concurrent use.
type Exporter interface {
	// CanRead reports whether the backend can parse the source at all.
	CanRead(ctx context.Context, path string) bool

	// CompatiblePresets lists export presets able to produce the given
	// format for this source. An empty list with a nil error means the
	// source is readable but the format is out of reach.
	CompatiblePresets(ctx context.Context, path, formatID string) ([]string, error)

	// Export runs one export. onProgress, if non-nil, receives
	// non-decreasing fractions in [0,1]. Errors wrapping ErrUnsupported
	// permit fallback to the external tool.
	Export(ctx context.Context, req ExportRequest, onProgress func(float64)) error
}
