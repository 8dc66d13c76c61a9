package catalog

import "media-convert/internal/ffmpeg"

// EncoderOption describes one user-selectable encoder with its ordered codec
// name candidates. Candidates are tried most-preferred first; the first name
// present in the introspected encoder set wins.
type EncoderOption struct {
	ID          string
	DisplayName string
	Candidates  []string
	// UsesBitrate and UsesSampleRate report whether the respective knobs
	// apply to this encoder.
	UsesBitrate    bool
	UsesSampleRate bool
}

// FirstAvailable returns the first candidate the snapshot carries.
func (e EncoderOption) FirstAvailable(snap *ffmpeg.Snapshot) (string, bool) {
	for _, name := range e.Candidates {
		if snap.HasEncoder(name) {
			return name, true
		}
	}
	return "", false
}

// VideoEncoders returns the selectable video encoder options.
func VideoEncoders() []EncoderOption {
	return []EncoderOption{
		{
			ID:          "h264",
			DisplayName: "H.264",
			Candidates:  []string{"libx264", "h264_videotoolbox", "h264_nvenc", "h264_vaapi"},
			UsesBitrate: true,
		},
		{
			ID:          "hevc",
			DisplayName: "HEVC (H.265)",
			Candidates:  []string{"libx265", "hevc_videotoolbox", "hevc_nvenc"},
			UsesBitrate: true,
		},
		{
			ID:          "vp9",
			DisplayName: "VP9",
			Candidates:  []string{"libvpx-vp9"},
			UsesBitrate: true,
		},
		{
			ID:          "av1",
			DisplayName: "AV1",
			Candidates:  []string{"libsvtav1", "libaom-av1"},
			UsesBitrate: true,
		},
		{
			ID:          "prores",
			DisplayName: "Apple ProRes",
			Candidates:  []string{"prores_ks", "prores"},
		},
	}
}

// AudioEncoders returns the selectable audio encoder options.
func AudioEncoders() []EncoderOption {
	return []EncoderOption{
		{
			ID:             "aac",
			DisplayName:    "AAC",
			Candidates:     []string{"libfdk_aac", "aac"},
			UsesBitrate:    true,
			UsesSampleRate: true,
		},
		{
			ID:             "mp3",
			DisplayName:    "MP3",
			Candidates:     []string{"libmp3lame"},
			UsesBitrate:    true,
			UsesSampleRate: true,
		},
		{
			ID:             "flac",
			DisplayName:    "FLAC",
			Candidates:     []string{"flac"},
			UsesSampleRate: true,
		},
		{
			ID:          "alac",
			DisplayName: "Apple Lossless",
			Candidates:  []string{"alac"},
		},
		{
			ID:             "opus",
			DisplayName:    "Opus",
			Candidates:     []string{"libopus", "opus"},
			UsesBitrate:    true,
			UsesSampleRate: true,
		},
		{
			ID:          "vorbis",
			DisplayName: "Vorbis",
			Candidates:  []string{"libvorbis"},
			UsesBitrate: true,
		},
	}
}

// FindEncoder looks up an option by ID in the given table.
func FindEncoder(options []EncoderOption, id string) (EncoderOption, bool) {
	for _, opt := range options {
		if opt.ID == id {
			return opt, true
		}
	}
	return EncoderOption{}, false
}
