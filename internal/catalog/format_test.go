package catalog

import (
	"reflect"
	"testing"

	"media-convert/internal/mediatypes"
)

func TestMergeCommutative(t *testing.T) {
	a := FormatDescriptor{
		ID:                "gif",
		DisplayName:       "GIF",
		Extension:         "gif",
		NativeType:        "com.compuserve.gif",
		Kind:              mediatypes.KindImage,
		Muxers:            []string{"gif"},
		SupportsAudio:     false,
		ExternalSupported: false,
	}
	b := FormatDescriptor{
		ID:                  "GIF",
		DisplayName:         "GIF (animated)",
		Kind:                mediatypes.KindImage,
		Muxers:              []string{"gif", "image2"},
		UsesPalettePipeline: true,
		ExternalSupported:   true,
	}

	ab := Merge(a, b)
	ba := Merge(b, a)

	if !reflect.DeepEqual(ab.Muxers, ba.Muxers) {
		t.Errorf("muxer union not commutative: %v vs %v", ab.Muxers, ba.Muxers)
	}
	if ab.DisplayName != ba.DisplayName {
		t.Errorf("display name pick not commutative: %q vs %q", ab.DisplayName, ba.DisplayName)
	}
	for name, pair := range map[string][2]bool{
		"UsesPalettePipeline": {ab.UsesPalettePipeline, ba.UsesPalettePipeline},
		"ExternalSupported":   {ab.ExternalSupported, ba.ExternalSupported},
		"SupportsAudio":       {ab.SupportsAudio, ba.SupportsAudio},
	} {
		if pair[0] != pair[1] {
			t.Errorf("flag %s not commutative", name)
		}
	}
}

func TestMergeUnionsAndOrs(t *testing.T) {
	a := FormatDescriptor{ID: "mp4", DisplayName: "MP4", Muxers: []string{"mp4"}, SupportsFastStart: true}
	b := FormatDescriptor{ID: "mp4", DisplayName: "MP4 Container", Muxers: []string{"mov", "mp4"}, SupportsCodecTag: true}

	got := Merge(a, b)

	if want := []string{"mov", "mp4"}; !reflect.DeepEqual(got.Muxers, want) {
		t.Errorf("Muxers = %v, want %v", got.Muxers, want)
	}
	if got.DisplayName != "MP4 Container" {
		t.Errorf("DisplayName = %q, want longer name", got.DisplayName)
	}
	if !got.SupportsFastStart || !got.SupportsCodecTag {
		t.Error("boolean capabilities must be ORed")
	}
}

func TestMuxerPreference(t *testing.T) {
	f := FormatDescriptor{Muxers: []string{"ogg", "opus"}, PreferredMuxer: "opus"}
	if got := f.Muxer(); got != "opus" {
		t.Errorf("Muxer() = %q, want preferred opus", got)
	}

	f.PreferredMuxer = ""
	if got := f.Muxer(); got != "ogg" {
		t.Errorf("Muxer() = %q, want first listed", got)
	}

	if got := (FormatDescriptor{}).Muxer(); got != "" {
		t.Errorf("Muxer() on empty descriptor = %q, want empty", got)
	}
}

func TestNormalizedID(t *testing.T) {
	f := FormatDescriptor{ID: "MP4"}
	if got := f.NormalizedID(); got != "mp4" {
		t.Errorf("NormalizedID() = %q, want mp4", got)
	}
}

func TestRequiresExternal(t *testing.T) {
	if (FormatDescriptor{NativeType: "public.mpeg-4"}).RequiresExternal() {
		t.Error("native format reported as external-only")
	}
	if !(FormatDescriptor{}).RequiresExternal() {
		t.Error("external-only format not reported as such")
	}
}
