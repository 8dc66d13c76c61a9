package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"media-convert/internal/ffmpeg"
	"media-convert/internal/logging"
	"media-convert/internal/mediatypes"
)

// Introspector supplies the external tool's capability snapshot.
type Introspector interface {
	Snapshot(ctx context.Context) (*ffmpeg.Snapshot, error)
}

// Catalog assembles and caches output format tables. Cache population forks
// subprocesses through the introspector, so reads and writes are serialized;
// concurrent callers for the same binary share one result.
type Catalog struct {
	insp Introspector

	mu    sync.Mutex
	cache map[string][]FormatDescriptor
}

// New creates a Catalog. insp may be nil, in which case only natively
// supported formats are offered.
func New(insp Introspector) *Catalog {
	return &Catalog{
		insp:  insp,
		cache: make(map[string][]FormatDescriptor),
	}
}

// OutputFormats returns the deduplicated, display-name-sorted union of
// native, well-known external, and introspection-discovered formats. The
// result for a given external binary path is cached for the process lifetime.
// When the external tool is unavailable or introspection fails, only native
// formats are returned (and that degraded result is not cached, so the tool
// can recover).
func (c *Catalog) OutputFormats(ctx context.Context) []FormatDescriptor {
	var snap *ffmpeg.Snapshot
	if c.insp != nil {
		var err error
		snap, err = c.insp.Snapshot(ctx)
		if err != nil {
			logging.Debug("catalog: external capabilities unavailable: %v", err)
			return buildFormats(nil)
		}
	}

	key := ""
	if snap != nil {
		key = snap.BinaryPath
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if formats, ok := c.cache[key]; ok {
		return formats
	}

	formats := buildFormats(snap)
	c.cache[key] = formats
	return formats
}

// FormatsForKind filters OutputFormats by media kind.
func (c *Catalog) FormatsForKind(ctx context.Context, kind mediatypes.Kind) []FormatDescriptor {
	var out []FormatDescriptor
	for _, f := range c.OutputFormats(ctx) {
		if f.Kind == kind {
			out = append(out, f)
		}
	}
	return out
}

// Lookup finds a format by its case-insensitive ID.
func (c *Catalog) Lookup(ctx context.Context, id string) (FormatDescriptor, bool) {
	want := strings.ToLower(id)
	for _, f := range c.OutputFormats(ctx) {
		if f.NormalizedID() == want {
			return f, true
		}
	}
	return FormatDescriptor{}, false
}

// ClearCache drops all cached format tables.
func (c *Catalog) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = make(map[string][]FormatDescriptor)
}

// DefaultSelection picks the format to preselect among available ones:
// mp4, then mov, else the alphabetically first normalized ID.
func DefaultSelection(formats []FormatDescriptor) (FormatDescriptor, bool) {
	if len(formats) == 0 {
		return FormatDescriptor{}, false
	}
	for _, preferred := range []string{"mp4", "mov"} {
		for _, f := range formats {
			if f.NormalizedID() == preferred {
				return f, true
			}
		}
	}
	best := formats[0]
	for _, f := range formats[1:] {
		if f.NormalizedID() < best.NormalizedID() {
			best = f
		}
	}
	return best, true
}

func buildFormats(snap *ffmpeg.Snapshot) []FormatDescriptor {
	merged := make(map[string]FormatDescriptor)

	add := func(f FormatDescriptor) {
		key := f.NormalizedID()
		if existing, ok := merged[key]; ok {
			merged[key] = Merge(existing, f)
			return
		}
		merged[key] = f
	}

	for _, f := range nativeFormats() {
		f.ExternalSupported = hasAnyMuxer(snap, f.Muxers)
		add(f)
	}

	if snap != nil {
		for _, f := range externalFormats() {
			if !hasAnyMuxer(snap, f.Muxers) {
				continue
			}
			f.ExternalSupported = true
			add(f)
		}
		for _, f := range discoveredFormats(snap) {
			add(f)
		}
	}

	formats := make([]FormatDescriptor, 0, len(merged))
	for _, f := range merged {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool {
		if formats[i].DisplayName != formats[j].DisplayName {
			return formats[i].DisplayName < formats[j].DisplayName
		}
		return formats[i].NormalizedID() < formats[j].NormalizedID()
	})
	return formats
}

// videoKeywords flag discovered muxers that plausibly write standalone video
// files.
var videoKeywords = []string{"video", "movie", "media", "container"}

// discoveredFormats derives descriptors from introspected muxers: image-like
// muxers contribute one format per scraped extension; video-like muxers whose
// name itself reads as a file extension contribute a format named after the
// muxer.
func discoveredFormats(snap *ffmpeg.Snapshot) []FormatDescriptor {
	var out []FormatDescriptor
	for name, info := range snap.Muxers {
		for _, ext := range info.Extensions {
			out = append(out, FormatDescriptor{
				ID:                ext,
				DisplayName:       strings.ToUpper(ext),
				Extension:         ext,
				Kind:              mediatypes.KindImage,
				Muxers:            []string{name},
				PreferredMuxer:    name,
				ExternalSupported: true,
			})
		}
		if len(info.Extensions) == 0 && looksVideoLike(name, info.Description) {
			out = append(out, FormatDescriptor{
				ID:                  name,
				DisplayName:         strings.ToUpper(name),
				Extension:           name,
				Kind:                mediatypes.KindVideo,
				SupportsAudio:       true,
				AllowAutoVideoCodec: true,
				AllowAutoAudioCodec: true,
				Muxers:              []string{name},
				PreferredMuxer:      name,
				ExternalSupported:   true,
			})
		}
	}
	return out
}

// looksVideoLike accepts short extension-shaped muxer names with a video
// keyword in the description.
func looksVideoLike(name, description string) bool {
	if len(name) > 5 {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	description = strings.ToLower(description)
	for _, kw := range videoKeywords {
		if strings.Contains(description, kw) {
			return true
		}
	}
	return false
}

func hasAnyMuxer(snap *ffmpeg.Snapshot, muxers []string) bool {
	if snap == nil {
		return false
	}
	for _, m := range muxers {
		if snap.HasMuxer(m) {
			return true
		}
	}
	return false
}
