package ffmpeg

import (
	"fmt"
	"strconv"
)

// Options describes the standard conversion pipeline. Zero values mean
// "omit the flag"; the builder is a pure function of its inputs.
type Options struct {
	// VideoCodec is the encoder name; empty lets the muxer pick.
	VideoCodec string
	// Width and Height add a scale filter when both are positive.
	Width  int
	Height int
	// FrameRate adds -r when positive.
	FrameRate float64
	// VideoBitrateKbps adds -b:v when positive.
	VideoBitrateKbps int
	// CodecTag adds -tag:v, e.g. hvc1 for HEVC-in-MP4 compatibility.
	CodecTag string
	// PixelFormat normalizes output pixel format when non-empty.
	PixelFormat string
	// FastStart adds -movflags +faststart.
	FastStart bool

	// DisableAudio strips all audio tracks; the remaining audio knobs are
	// ignored when set.
	DisableAudio bool
	// AudioCodec is the audio encoder name; empty lets the muxer pick.
	AudioCodec string
	// SampleRate adds -ar when positive.
	SampleRate int
	// Channels adds -ac when positive.
	Channels int
	// AudioBitrateKbps adds -b:a when positive.
	AudioBitrateKbps int

	// Muxer forces the output container via -f.
	Muxer string
}

// BuildArgs constructs the ordered argument list for a standard conversion.
// Identical inputs always produce identical argument lists.
func BuildArgs(inputPath, outputPath string, o Options) []string {
	args := []string{
		"-y",
		"-progress", "pipe:1",
		"-nostats",
		"-i", inputPath,
	}

	if o.VideoCodec != "" {
		args = append(args, "-c:v", o.VideoCodec)
	}
	if o.Width > 0 && o.Height > 0 {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", o.Width, o.Height))
	}
	if o.FrameRate > 0 {
		args = append(args, "-r", formatRate(o.FrameRate))
	}
	if o.VideoBitrateKbps > 0 {
		args = append(args, "-b:v", strconv.Itoa(o.VideoBitrateKbps)+"k")
	}
	if o.CodecTag != "" {
		args = append(args, "-tag:v", o.CodecTag)
	}
	if o.PixelFormat != "" {
		args = append(args, "-pix_fmt", o.PixelFormat)
	}
	if o.FastStart {
		args = append(args, "-movflags", "+faststart")
	}

	if o.DisableAudio {
		args = append(args, "-an")
	} else {
		if o.AudioCodec != "" {
			args = append(args, "-c:a", o.AudioCodec)
		}
		if o.SampleRate > 0 {
			args = append(args, "-ar", strconv.Itoa(o.SampleRate))
		}
		if o.Channels > 0 {
			args = append(args, "-ac", strconv.Itoa(o.Channels))
		}
		if o.AudioBitrateKbps > 0 {
			args = append(args, "-b:a", strconv.Itoa(o.AudioBitrateKbps)+"k")
		}
	}

	if o.Muxer != "" {
		args = append(args, "-f", o.Muxer)
	}

	return append(args, outputPath)
}

// PaletteOptions describes the specialized palette pipeline used for
// animated low-color-depth outputs.
type PaletteOptions struct {
	// Speed rescales presentation timestamps when positive and not 1.
	Speed float64
	// FrameRate clamps the output rate; values below 1 are raised to 1.
	FrameRate float64
	// Width and Height add a Lanczos-scaled resize when both are positive.
	Width  int
	Height int
	// Muxer forces the output container via -f.
	Muxer string
}

// BuildPaletteArgs constructs the palette-generation pipeline: a single
// filter_complex chaining optional speed change, fps clamp, and resize into
// a diff-stats palette pass applied with Bayer dithering. Audio is dropped
// and the output loops forever.
func BuildPaletteArgs(inputPath, outputPath string, o PaletteOptions) []string {
	chain := ""
	if o.Speed > 0 && o.Speed != 1 {
		chain += fmt.Sprintf("setpts=PTS/%s,", formatRate(o.Speed))
	}
	if o.FrameRate > 0 {
		rate := o.FrameRate
		if rate < 1 {
			rate = 1
		}
		chain += fmt.Sprintf("fps=%s,", formatRate(rate))
	}
	if o.Width > 0 && o.Height > 0 {
		chain += fmt.Sprintf("scale=%d:%d:flags=lanczos,", o.Width, o.Height)
	}

	filter := fmt.Sprintf(
		"[0:v]%ssplit[s0][s1];[s0]palettegen=stats_mode=diff[p];[s1][p]paletteuse=dither=bayer",
		chain)

	args := []string{
		"-y",
		"-progress", "pipe:1",
		"-nostats",
		"-i", inputPath,
		"-filter_complex", filter,
		"-an",
		"-loop", "0",
	}
	if o.Muxer != "" {
		args = append(args, "-f", o.Muxer)
	}
	return append(args, outputPath)
}

// formatRate renders a rate without trailing zeros so argument lists stay
// stable across invocations.
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
