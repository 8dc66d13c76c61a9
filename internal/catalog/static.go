package catalog

import "media-convert/internal/mediatypes"

// nativeFormats are the formats the primary transcoder's framework can
// produce on its own. They remain available even when the external tool is
// absent.
func nativeFormats() []FormatDescriptor {
	return []FormatDescriptor{
		{
			ID:          "mp4",
			DisplayName: "MP4",
			Extension:   "mp4",
			NativeType:  "public.mpeg-4",
			Kind:        mediatypes.KindVideo,

			SupportsFastStart:     true,
			SupportsCodecTag:      true,
			SupportsAudio:         true,
			SupportsEncoderChoice: true,
			AllowAutoVideoCodec:   true,
			AllowAutoAudioCodec:   true,

			Muxers:         []string{"mp4"},
			PreferredMuxer: "mp4",
		},
		{
			ID:          "mov",
			DisplayName: "QuickTime Movie",
			Extension:   "mov",
			NativeType:  "com.apple.quicktime-movie",
			Kind:        mediatypes.KindVideo,

			SupportsFastStart:     true,
			SupportsCodecTag:      true,
			SupportsAudio:         true,
			SupportsEncoderChoice: true,
			AllowAutoVideoCodec:   true,
			AllowAutoAudioCodec:   true,

			Muxers:         []string{"mov"},
			PreferredMuxer: "mov",
		},
		{
			ID:          "m4v",
			DisplayName: "M4V",
			Extension:   "m4v",
			NativeType:  "com.apple.m4v-video",
			Kind:        mediatypes.KindVideo,

			SupportsFastStart:   true,
			SupportsAudio:       true,
			AllowAutoVideoCodec: true,
			AllowAutoAudioCodec: true,

			Muxers:         []string{"ipod"},
			PreferredMuxer: "ipod",
		},
		{
			ID:          "m4a",
			DisplayName: "M4A (AAC)",
			Extension:   "m4a",
			NativeType:  "com.apple.m4a-audio",
			Kind:        mediatypes.KindAudio,

			SupportsAudio:         true,
			SupportsEncoderChoice: true,
			AllowAutoAudioCodec:   true,

			Muxers:         []string{"ipod"},
			PreferredMuxer: "ipod",
		},
		{
			ID:          "wav",
			DisplayName: "WAV",
			Extension:   "wav",
			NativeType:  "com.microsoft.waveform-audio",
			Kind:        mediatypes.KindAudio,

			SupportsAudio:       true,
			AllowAutoAudioCodec: true,

			Muxers:         []string{"wav"},
			PreferredMuxer: "wav",
		},
		{
			ID:          "aiff",
			DisplayName: "AIFF",
			Extension:   "aiff",
			NativeType:  "public.aiff-audio",
			Kind:        mediatypes.KindAudio,

			SupportsAudio:       true,
			AllowAutoAudioCodec: true,

			Muxers:         []string{"aiff"},
			PreferredMuxer: "aiff",
		},
		{
			ID:          "jpeg",
			DisplayName: "JPEG",
			Extension:   "jpg",
			NativeType:  "public.jpeg",
			Kind:        mediatypes.KindImage,

			Muxers:         []string{"image2"},
			PreferredMuxer: "image2",
		},
		{
			ID:          "png",
			DisplayName: "PNG",
			Extension:   "png",
			NativeType:  "public.png",
			Kind:        mediatypes.KindImage,

			Muxers:         []string{"image2"},
			PreferredMuxer: "image2",
		},
		{
			ID:          "webp",
			DisplayName: "WebP",
			Extension:   "webp",
			NativeType:  "org.webmproject.webp",
			Kind:        mediatypes.KindImage,

			Muxers:         []string{"webp"},
			PreferredMuxer: "webp",
		},
		{
			// First frame is writable natively; preserving animation
			// requires the external palette pipeline.
			ID:          "gif",
			DisplayName: "GIF",
			Extension:   "gif",
			NativeType:  "com.compuserve.gif",
			Kind:        mediatypes.KindImage,

			UsesPalettePipeline: true,

			Muxers:         []string{"gif"},
			PreferredMuxer: "gif",
		},
	}
}

// externalFormats are well-known formats only the external tool can write.
// They are offered only when the introspected binary carries one of the
// required muxers.
func externalFormats() []FormatDescriptor {
	return []FormatDescriptor{
		{
			ID:          "mkv",
			DisplayName: "Matroska",
			Extension:   "mkv",
			Kind:        mediatypes.KindVideo,

			SupportsAudio:         true,
			SupportsEncoderChoice: true,
			AllowAutoVideoCodec:   true,
			AllowAutoAudioCodec:   true,

			Muxers:         []string{"matroska"},
			PreferredMuxer: "matroska",
		},
		{
			ID:          "webm",
			DisplayName: "WebM",
			Extension:   "webm",
			Kind:        mediatypes.KindVideo,

			SupportsAudio:         true,
			SupportsEncoderChoice: true,
			AllowAutoVideoCodec:   true,
			AllowAutoAudioCodec:   true,

			Muxers:         []string{"webm"},
			PreferredMuxer: "webm",
		},
		{
			ID:          "avi",
			DisplayName: "AVI",
			Extension:   "avi",
			Kind:        mediatypes.KindVideo,

			SupportsAudio:       true,
			AllowAutoVideoCodec: true,
			AllowAutoAudioCodec: true,

			Muxers:         []string{"avi"},
			PreferredMuxer: "avi",
		},
		{
			ID:          "mp3",
			DisplayName: "MP3",
			Extension:   "mp3",
			Kind:        mediatypes.KindAudio,

			SupportsAudio:         true,
			SupportsEncoderChoice: true,

			Muxers:         []string{"mp3"},
			PreferredMuxer: "mp3",
		},
		{
			ID:          "flac",
			DisplayName: "FLAC",
			Extension:   "flac",
			Kind:        mediatypes.KindAudio,

			SupportsAudio: true,

			Muxers:         []string{"flac"},
			PreferredMuxer: "flac",
		},
		{
			ID:          "ogg",
			DisplayName: "Ogg",
			Extension:   "ogg",
			Kind:        mediatypes.KindAudio,

			SupportsAudio:         true,
			SupportsEncoderChoice: true,
			AllowAutoAudioCodec:   true,

			Muxers:         []string{"ogg"},
			PreferredMuxer: "ogg",
		},
		{
			ID:          "opus",
			DisplayName: "Opus",
			Extension:   "opus",
			Kind:        mediatypes.KindAudio,

			SupportsAudio: true,

			Muxers:         []string{"opus", "ogg"},
			PreferredMuxer: "opus",
		},
		{
			ID:          "tiff",
			DisplayName: "TIFF",
			Extension:   "tiff",
			Kind:        mediatypes.KindImage,

			Muxers:         []string{"image2"},
			PreferredMuxer: "image2",
		},
		{
			ID:          "bmp",
			DisplayName: "BMP",
			Extension:   "bmp",
			Kind:        mediatypes.KindImage,

			Muxers:         []string{"image2"},
			PreferredMuxer: "image2",
		},
	}
}
