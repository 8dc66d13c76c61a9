package catalog

import (
	"sort"
	"strings"

	"media-convert/internal/mediatypes"
)

// FormatDescriptor describes one output container format and its constraints.
type FormatDescriptor struct {
	// ID is the format identity; comparison is case-insensitive via
	// NormalizedID.
	ID          string
	DisplayName string
	// Extension is the output file extension without the leading dot.
	Extension string
	// NativeType identifies the primary framework's output type for this
	// format; empty means the format is reachable only through the
	// external tool.
	NativeType string
	Kind       mediatypes.Kind

	SupportsFastStart     bool
	SupportsCodecTag      bool
	SupportsAudio         bool
	SupportsEncoderChoice bool
	// UsesPalettePipeline routes conversion through the palette-based
	// filter pipeline (animated low-color-depth outputs).
	UsesPalettePipeline bool
	// AllowAutoVideoCodec / AllowAutoAudioCodec let the muxer pick a codec
	// when no explicit codec matched.
	AllowAutoVideoCodec bool
	AllowAutoAudioCodec bool

	// Muxers lists external-tool muxer names able to write this format.
	Muxers         []string
	PreferredMuxer string

	// ExternalSupported records whether the current external binary
	// carries a muxer for this format; set during catalog construction.
	ExternalSupported bool
}

// NormalizedID returns the canonical case-insensitive identity.
func (f FormatDescriptor) NormalizedID() string {
	return strings.ToLower(f.ID)
}

// RequiresExternal reports whether the format cannot be produced by the
// primary transcoder at all.
func (f FormatDescriptor) RequiresExternal() bool {
	return f.NativeType == ""
}

// Muxer returns the muxer the external tool should be asked for: the
// preferred one when set, otherwise the first listed.
func (f FormatDescriptor) Muxer() string {
	if f.PreferredMuxer != "" {
		return f.PreferredMuxer
	}
	if len(f.Muxers) > 0 {
		return f.Muxers[0]
	}
	return ""
}

// Merge combines two descriptors sharing a normalized ID: muxer sets are
// unioned, boolean capabilities are ORed, and the longer display name wins.
// The merge is permissive and commutative.
func Merge(a, b FormatDescriptor) FormatDescriptor {
	out := a
	if len(b.DisplayName) > len(a.DisplayName) {
		out.DisplayName = b.DisplayName
	}
	if out.Extension == "" {
		out.Extension = b.Extension
	}
	if out.NativeType == "" {
		out.NativeType = b.NativeType
	}
	if out.PreferredMuxer == "" {
		out.PreferredMuxer = b.PreferredMuxer
	}
	if out.Kind == "" || out.Kind == mediatypes.KindOther {
		out.Kind = b.Kind
	}

	out.SupportsFastStart = a.SupportsFastStart || b.SupportsFastStart
	out.SupportsCodecTag = a.SupportsCodecTag || b.SupportsCodecTag
	out.SupportsAudio = a.SupportsAudio || b.SupportsAudio
	out.SupportsEncoderChoice = a.SupportsEncoderChoice || b.SupportsEncoderChoice
	out.UsesPalettePipeline = a.UsesPalettePipeline || b.UsesPalettePipeline
	out.AllowAutoVideoCodec = a.AllowAutoVideoCodec || b.AllowAutoVideoCodec
	out.AllowAutoAudioCodec = a.AllowAutoAudioCodec || b.AllowAutoAudioCodec
	out.ExternalSupported = a.ExternalSupported || b.ExternalSupported

	out.Muxers = unionMuxers(a.Muxers, b.Muxers)
	return out
}

func unionMuxers(a, b []string) []string {
	set := make(map[string]bool, len(a)+len(b))
	for _, m := range a {
		set[m] = true
	}
	for _, m := range b {
		set[m] = true
	}
	out := make([]string, 0, len(set))
	for m := range set {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
