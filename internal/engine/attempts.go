package engine

import (
	"fmt"

	"media-convert/internal/analyzer"
	"media-convert/internal/catalog"
	"media-convert/internal/ffmpeg"
	"media-convert/internal/mediatypes"
	"media-convert/internal/primary"
	"media-convert/internal/settings"
)

// attempt is one external invocation candidate: a codec label for errors and
// metrics plus the full argument list.
type attempt struct {
	codec string
	args  []string
}

// buildAttempts expands the settings into the ordered list of external
// invocations to try. Video jobs get one attempt per available candidate of
// the selected encoder; audio jobs likewise for the audio encoder; animated
// palette outputs and images get a single attempt.
func buildAttempts(job *Job, rec settings.Record, format catalog.FormatDescriptor, report *analyzer.Report, snap *ffmpeg.Snapshot, bitrateKbps int) ([]attempt, error) {
	animated := report.FrameCount > 1 && rec.PreserveAnimation
	if animated && format.UsesPalettePipeline {
		args := ffmpeg.BuildPaletteArgs(job.SourcePath, job.WorkingPath, ffmpeg.PaletteOptions{
			Speed:     rec.SpeedFactor,
			FrameRate: rec.FrameRate,
			Width:     rec.Width,
			Height:    rec.Height,
			Muxer:     format.Muxer(),
		})
		return []attempt{{codec: "palette", args: args}}, nil
	}

	switch job.Kind {
	case mediatypes.KindVideo:
		return videoAttempts(job, rec, format, snap, bitrateKbps)
	case mediatypes.KindAudio:
		return audioAttempts(job, rec, format, snap)
	default:
		opts := ffmpeg.Options{
			Width:        rec.Width,
			Height:       rec.Height,
			DisableAudio: true,
			Muxer:        format.Muxer(),
		}
		return []attempt{{codec: "auto", args: ffmpeg.BuildArgs(job.SourcePath, job.WorkingPath, opts)}}, nil
	}
}

func videoAttempts(job *Job, rec settings.Record, format catalog.FormatDescriptor, snap *ffmpeg.Snapshot, bitrateKbps int) ([]attempt, error) {
	base := ffmpeg.Options{
		Width:     rec.Width,
		Height:    rec.Height,
		FrameRate: rec.FrameRate,
		FastStart: format.SupportsFastStart,
		Muxer:     format.Muxer(),
	}
	if err := applyAudio(&base, rec, format, snap); err != nil {
		return nil, err
	}

	if !format.SupportsEncoderChoice || rec.VideoEncoder == "" {
		if !format.AllowAutoVideoCodec && format.SupportsEncoderChoice {
			return nil, fmt.Errorf("%s requires an explicit video encoder: %w", format.ID, errValidation)
		}
		return []attempt{{codec: "auto", args: ffmpeg.BuildArgs(job.SourcePath, job.WorkingPath, base)}}, nil
	}

	option, ok := catalog.FindEncoder(catalog.VideoEncoders(), rec.VideoEncoder)
	if !ok {
		return nil, fmt.Errorf("%w: unknown video encoder %q", errValidation, rec.VideoEncoder)
	}

	var attempts []attempt
	for _, candidate := range option.Candidates {
		if !snap.HasEncoder(candidate) {
			continue
		}
		opts := base
		opts.VideoCodec = candidate
		opts.PixelFormat = pixelFormatFor(option.ID)
		if option.UsesBitrate {
			opts.VideoBitrateKbps = bitrateKbps
		}
		if option.ID == "hevc" && format.SupportsCodecTag {
			// hvc1 keeps HEVC-in-MP4 playable on Apple players.
			opts.CodecTag = "hvc1"
		}
		attempts = append(attempts, attempt{codec: candidate, args: ffmpeg.BuildArgs(job.SourcePath, job.WorkingPath, opts)})
	}

	if len(attempts) == 0 {
		if format.AllowAutoVideoCodec {
			return []attempt{{codec: "auto", args: ffmpeg.BuildArgs(job.SourcePath, job.WorkingPath, base)}}, nil
		}
		return nil, fmt.Errorf("external transcoder has no %s encoder: %w", option.ID, primary.ErrUnsupported)
	}
	return attempts, nil
}

func audioAttempts(job *Job, rec settings.Record, format catalog.FormatDescriptor, snap *ffmpeg.Snapshot) ([]attempt, error) {
	base := ffmpeg.Options{Muxer: format.Muxer()}

	if rec.AudioEncoder == "" {
		if !format.AllowAutoAudioCodec && format.SupportsEncoderChoice {
			return nil, fmt.Errorf("%s requires an explicit audio encoder: %w", format.ID, errValidation)
		}
		base.SampleRate = rec.AudioSampleRate
		base.AudioBitrateKbps = rec.AudioBitrate
		return []attempt{{codec: "auto", args: ffmpeg.BuildArgs(job.SourcePath, job.WorkingPath, base)}}, nil
	}

	option, ok := catalog.FindEncoder(catalog.AudioEncoders(), rec.AudioEncoder)
	if !ok {
		return nil, fmt.Errorf("%w: unknown audio encoder %q", errValidation, rec.AudioEncoder)
	}

	var attempts []attempt
	for _, candidate := range option.Candidates {
		if !snap.HasEncoder(candidate) {
			continue
		}
		opts := base
		opts.AudioCodec = candidate
		if option.UsesSampleRate {
			opts.SampleRate = rec.AudioSampleRate
		}
		if option.UsesBitrate {
			opts.AudioBitrateKbps = rec.AudioBitrate
		}
		attempts = append(attempts, attempt{codec: candidate, args: ffmpeg.BuildArgs(job.SourcePath, job.WorkingPath, opts)})
	}

	if len(attempts) == 0 {
		if format.AllowAutoAudioCodec {
			return []attempt{{codec: "auto", args: ffmpeg.BuildArgs(job.SourcePath, job.WorkingPath, base)}}, nil
		}
		return nil, fmt.Errorf("external transcoder has no %s encoder: %w", option.ID, primary.ErrUnsupported)
	}
	return attempts, nil
}

// applyAudio resolves the audio side of a video invocation: dropped when the
// format disallows audio or the user asked for none, otherwise the first
// available candidate of the selected encoder, otherwise the muxer default.
func applyAudio(opts *ffmpeg.Options, rec settings.Record, format catalog.FormatDescriptor, snap *ffmpeg.Snapshot) error {
	if !format.SupportsAudio || rec.AudioMode == "none" {
		opts.DisableAudio = true
		return nil
	}

	if rec.AudioEncoder == "" {
		opts.SampleRate = rec.AudioSampleRate
		opts.AudioBitrateKbps = rec.AudioBitrate
		return nil
	}

	option, ok := catalog.FindEncoder(catalog.AudioEncoders(), rec.AudioEncoder)
	if !ok {
		return fmt.Errorf("%w: unknown audio encoder %q", errValidation, rec.AudioEncoder)
	}
	candidate, ok := option.FirstAvailable(snap)
	if !ok {
		if format.AllowAutoAudioCodec {
			return nil
		}
		return fmt.Errorf("external transcoder has no %s encoder: %w", option.ID, primary.ErrUnsupported)
	}

	opts.AudioCodec = candidate
	if option.UsesSampleRate {
		opts.SampleRate = rec.AudioSampleRate
	}
	if option.UsesBitrate {
		opts.AudioBitrateKbps = rec.AudioBitrate
	}
	return nil
}

// pixelFormatFor normalizes output pixel format for broadly compatible
// playback. ProRes keeps its native 10-bit layouts.
func pixelFormatFor(encoderID string) string {
	switch encoderID {
	case "h264", "hevc", "vp9", "av1":
		return "yuv420p"
	default:
		return ""
	}
}
