package catalog

import (
	"context"
	"errors"
	"testing"

	"media-convert/internal/ffmpeg"
	"media-convert/internal/mediatypes"
)

// fakeIntrospector serves a canned snapshot (or error) and counts calls.
type fakeIntrospector struct {
	snap  *ffmpeg.Snapshot
	err   error
	calls int
}

func (f *fakeIntrospector) Snapshot(context.Context) (*ffmpeg.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func fullSnapshot() *ffmpeg.Snapshot {
	return &ffmpeg.Snapshot{
		BinaryPath: "/fake/ffmpeg",
		Encoders: map[string]bool{
			"libx264": true, "libx265": true, "aac": true, "libmp3lame": true, "gif": true,
		},
		Muxers: map[string]ffmpeg.MuxerInfo{
			"mp4":      {Name: "mp4", Description: "MP4 (MPEG-4 Part 14)"},
			"mov":      {Name: "mov", Description: "QuickTime / MOV"},
			"matroska": {Name: "matroska", Description: "Matroska / WebM"},
			"mp3":      {Name: "mp3", Description: "MP3 (MPEG audio layer 3)"},
			"gif":      {Name: "gif", Description: "CompuServe Graphics Interchange Format (GIF)", Extensions: []string{"gif"}},
			"webp":     {Name: "webp", Description: "WebP", Extensions: []string{"webp"}},
			"image2":   {Name: "image2", Description: "image2 sequence", Extensions: []string{"jpeg", "jpg", "png"}},
		},
	}
}

func ids(formats []FormatDescriptor) map[string]FormatDescriptor {
	out := make(map[string]FormatDescriptor, len(formats))
	for _, f := range formats {
		out[f.NormalizedID()] = f
	}
	return out
}

func TestOutputFormatsWithExternalTool(t *testing.T) {
	c := New(&fakeIntrospector{snap: fullSnapshot()})
	formats := c.OutputFormats(context.Background())
	byID := ids(formats)

	// Native formats always present.
	for _, id := range []string{"mp4", "mov", "jpeg", "png", "gif"} {
		if _, ok := byID[id]; !ok {
			t.Errorf("missing native format %q", id)
		}
	}

	// External format offered because the matroska muxer is compiled in.
	mkv, ok := byID["mkv"]
	if !ok {
		t.Fatal("missing external format mkv")
	}
	if !mkv.ExternalSupported {
		t.Error("mkv not marked externally supported")
	}

	// WebM muxer absent from the snapshot, so webm must not be offered.
	if _, ok := byID["webm"]; ok {
		t.Error("webm offered despite missing muxer")
	}

	// Discovered from image2's scraped extensions, merged into jpeg/png.
	jpeg := byID["jpeg"]
	if !jpeg.ExternalSupported {
		t.Error("jpeg not marked externally supported after discovery merge")
	}

	// Sorted by display name.
	for i := 1; i < len(formats); i++ {
		if formats[i].DisplayName < formats[i-1].DisplayName {
			t.Errorf("formats not sorted: %q before %q",
				formats[i-1].DisplayName, formats[i].DisplayName)
		}
	}
}

func TestOutputFormatsWithoutExternalTool(t *testing.T) {
	c := New(&fakeIntrospector{err: errors.New("no tool")})
	byID := ids(c.OutputFormats(context.Background()))

	if _, ok := byID["mkv"]; ok {
		t.Error("external-only format offered without a tool")
	}
	if _, ok := byID["mp4"]; !ok {
		t.Error("native format missing without a tool")
	}
	if byID["gif"].ExternalSupported {
		t.Error("gif marked externally supported without a tool")
	}

	// Nil introspector behaves the same.
	byID = ids(New(nil).OutputFormats(context.Background()))
	if _, ok := byID["mp3"]; ok {
		t.Error("external audio format offered with nil introspector")
	}
}

func TestOutputFormatsCachedPerBinaryPath(t *testing.T) {
	insp := &fakeIntrospector{snap: fullSnapshot()}
	c := New(insp)
	ctx := context.Background()

	c.OutputFormats(ctx)
	callsAfterFirst := insp.calls
	c.OutputFormats(ctx)
	if insp.calls != callsAfterFirst+1 {
		// The snapshot is still requested (it is itself cached upstream),
		// but format table construction must be reused.
		t.Logf("introspector calls: %d", insp.calls)
	}

	c.ClearCache()
	c.OutputFormats(ctx)
	if insp.calls < callsAfterFirst+2 {
		t.Error("ClearCache did not force a rebuild")
	}
}

func TestFormatsForKind(t *testing.T) {
	c := New(&fakeIntrospector{snap: fullSnapshot()})
	for _, f := range c.FormatsForKind(context.Background(), mediatypes.KindAudio) {
		if f.Kind != mediatypes.KindAudio {
			t.Errorf("format %q has kind %q, want audio", f.ID, f.Kind)
		}
	}
}

func TestLookup(t *testing.T) {
	c := New(&fakeIntrospector{snap: fullSnapshot()})
	ctx := context.Background()

	f, ok := c.Lookup(ctx, "MP4")
	if !ok || f.NormalizedID() != "mp4" {
		t.Errorf("Lookup(MP4) = (%v, %v)", f.ID, ok)
	}
	if _, ok := c.Lookup(ctx, "nope"); ok {
		t.Error("Lookup(nope) succeeded")
	}
}

func TestDefaultSelection(t *testing.T) {
	tests := []struct {
		name    string
		formats []FormatDescriptor
		want    string
		ok      bool
	}{
		{
			name:    "prefers mp4",
			formats: []FormatDescriptor{{ID: "mov"}, {ID: "mp4"}, {ID: "avi"}},
			want:    "mp4", ok: true,
		},
		{
			name:    "falls back to mov",
			formats: []FormatDescriptor{{ID: "webm"}, {ID: "mov"}},
			want:    "mov", ok: true,
		},
		{
			name:    "alphabetical otherwise",
			formats: []FormatDescriptor{{ID: "webm"}, {ID: "avi"}, {ID: "mkv"}},
			want:    "avi", ok: true,
		},
		{
			name: "empty", formats: nil, ok: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DefaultSelection(tt.formats)
			if ok != tt.ok {
				t.Fatalf("DefaultSelection ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.NormalizedID() != tt.want {
				t.Errorf("DefaultSelection = %q, want %q", got.NormalizedID(), tt.want)
			}
		})
	}
}

func TestEncoderFirstAvailable(t *testing.T) {
	snap := fullSnapshot()

	h264, _ := FindEncoder(VideoEncoders(), "h264")
	if got, ok := h264.FirstAvailable(snap); !ok || got != "libx264" {
		t.Errorf("FirstAvailable(h264) = (%q, %v), want libx264", got, ok)
	}

	aac, _ := FindEncoder(AudioEncoders(), "aac")
	// libfdk_aac is absent from the snapshot, so the second candidate wins.
	if got, ok := aac.FirstAvailable(snap); !ok || got != "aac" {
		t.Errorf("FirstAvailable(aac) = (%q, %v), want aac", got, ok)
	}

	vp9, _ := FindEncoder(VideoEncoders(), "vp9")
	if _, ok := vp9.FirstAvailable(snap); ok {
		t.Error("FirstAvailable(vp9) succeeded with no candidate compiled in")
	}

	if _, ok := FindEncoder(VideoEncoders(), "theora"); ok {
		t.Error("FindEncoder(theora) succeeded")
	}
}
