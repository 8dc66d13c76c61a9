package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"sync"

	"media-convert/internal/logging"
	"media-convert/internal/metrics"
)

// minEncoderFlagsLen is the minimum length of the flags column in -encoders
// output; shorter first fields are prose from the header block.
const minEncoderFlagsLen = 6

// maxExtensionLen bounds sanitized extension tokens scraped from muxer help.
const maxExtensionLen = 16

// MuxerInfo describes one container writer advertised by the external tool.
type MuxerInfo struct {
	Name        string
	Description string
	// Extensions holds file extensions scraped from the per-muxer help
	// text; populated only for image-like muxers.
	Extensions []string
}

// Snapshot is the immutable result of introspecting one binary. All three
// diagnostic invocations (encoders, muxers, per-muxer help) are captured
// together; a snapshot is computed at most once per binary path.
type Snapshot struct {
	BinaryPath string
	// Encoders is the set of compiled-in video and audio encoder names.
	Encoders map[string]bool
	// Muxers maps muxer name to its description and scraped extensions.
	Muxers map[string]MuxerInfo
}

// HasEncoder reports whether the binary carries the named encoder.
func (s *Snapshot) HasEncoder(name string) bool {
	return s != nil && s.Encoders[name]
}

// HasMuxer reports whether the binary carries the named muxer.
func (s *Snapshot) HasMuxer(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Muxers[name]
	return ok
}

// runFunc invokes the binary with arguments and returns combined output.
// Swappable in tests.
type runFunc func(ctx context.Context, bin string, args ...string) ([]byte, error)

func runCombined(ctx context.Context, bin string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, bin, args...).CombinedOutput()
}

// Introspector discovers and caches the external tool's capabilities.
// Snapshot population forks subprocesses, so concurrent callers for the same
// path are serialized and share one result.
type Introspector struct {
	finder *Finder
	run    runFunc

	mu    sync.Mutex
	cache map[string]*Snapshot
}

// NewIntrospector creates an Introspector resolving binaries through finder.
func NewIntrospector(finder *Finder) *Introspector {
	return &Introspector{
		finder: finder,
		run:    runCombined,
		cache:  make(map[string]*Snapshot),
	}
}

// Snapshot resolves the binary and returns its capability snapshot, computing
// and caching it on first request. If either diagnostic invocation fails the
// error is returned and nothing is cached, so dependents degrade to
// primary-only capabilities until the tool recovers.
func (i *Introspector) Snapshot(ctx context.Context) (*Snapshot, error) {
	path, err := i.finder.Find()
	if err != nil {
		return nil, err
	}
	return i.SnapshotFor(ctx, path)
}

// SnapshotFor returns the capability snapshot for a specific binary path.
func (i *Introspector) SnapshotFor(ctx context.Context, path string) (*Snapshot, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if snap, ok := i.cache[path]; ok {
		return snap, nil
	}

	snap, err := i.introspect(ctx, path)
	if err != nil {
		metrics.IntrospectionsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.IntrospectionsTotal.WithLabelValues("ok").Inc()
	i.cache[path] = snap
	logging.Info("introspected %s: %d encoders, %d muxers",
		path, len(snap.Encoders), len(snap.Muxers))
	return snap, nil
}

// ClearCache drops all cached snapshots.
func (i *Introspector) ClearCache() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cache = make(map[string]*Snapshot)
}

func (i *Introspector) introspect(ctx context.Context, path string) (*Snapshot, error) {
	encOut, err := i.run(ctx, path, "-hide_banner", "-encoders")
	if err != nil {
		return nil, fmt.Errorf("listing encoders: %w", err)
	}

	muxOut, err := i.run(ctx, path, "-hide_banner", "-muxers")
	if err != nil {
		return nil, fmt.Errorf("listing muxers: %w", err)
	}

	snap := &Snapshot{
		BinaryPath: path,
		Encoders:   parseEncoders(string(encOut)),
		Muxers:     parseMuxers(string(muxOut)),
	}

	for name, info := range snap.Muxers {
		if !looksImageLike(name, info.Description) {
			continue
		}
		helpOut, err := i.run(ctx, path, "-hide_banner", "-h", "muxer="+name)
		if err != nil {
			// Help for one muxer failing is not fatal; the muxer simply
			// contributes no extensions.
			logging.Debug("muxer help for %s failed: %v", name, err)
			continue
		}
		info.Extensions = parseCommonExtensions(string(helpOut))
		snap.Muxers[name] = info
	}

	return snap, nil
}

// parseEncoders extracts encoder names from -encoders output. Valid lines
// carry a flags column of at least minEncoderFlagsLen characters whose first
// character marks a video (V) or audio (A) encoder.
func parseEncoders(output string) map[string]bool {
	encoders := make(map[string]bool)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] == "=" {
			continue
		}
		flags := fields[0]
		if len(flags) < minEncoderFlagsLen {
			continue
		}
		switch flags[0] {
		case 'V', 'A':
			encoders[fields[1]] = true
		}
	}
	return encoders
}

// parseMuxers extracts muxer entries from -muxers output. Valid lines carry
// an E marker in the flags column; the name column may hold a comma-separated
// list of aliases that all map to the same description.
func parseMuxers(output string) map[string]MuxerInfo {
	muxers := make(map[string]MuxerInfo)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] == "=" {
			continue
		}
		flags := fields[0]
		if !strings.Contains(flags, "E") || len(flags) > 3 {
			continue
		}
		description := strings.Join(fields[2:], " ")
		for _, name := range strings.Split(fields[1], ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			muxers[name] = MuxerInfo{Name: name, Description: description}
		}
	}
	return muxers
}

// parseCommonExtensions scrapes the "Common extensions:" list from per-muxer
// help text: the substring up to the first period, split on commas, each
// token sanitized to lowercase alphanumerics of at most maxExtensionLen.
func parseCommonExtensions(help string) []string {
	const marker = "Common extensions:"
	idx := strings.Index(help, marker)
	if idx < 0 {
		return nil
	}
	rest := help[idx+len(marker):]
	if end := strings.IndexByte(rest, '.'); end >= 0 {
		rest = rest[:end]
	}

	var exts []string
	for _, token := range strings.Split(rest, ",") {
		ext := sanitizeExtension(token)
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

func sanitizeExtension(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(token)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	ext := b.String()
	if ext == "" || len(ext) > maxExtensionLen {
		return ""
	}
	return ext
}

// imageKeywords flag muxers that write still or animated images.
var imageKeywords = []string{"image", "gif", "png", "jpeg", "webp", "apng", "pipe"}

// looksImageLike reports whether a muxer plausibly writes image output,
// judged by keyword match on its name or description.
func looksImageLike(name, description string) bool {
	name = strings.ToLower(name)
	description = strings.ToLower(description)
	for _, kw := range imageKeywords {
		if strings.Contains(name, kw) || strings.Contains(description, kw) {
			return true
		}
	}
	return false
}
