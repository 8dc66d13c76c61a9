package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"media-convert/internal/engine"
	"media-convert/internal/logging"
	"media-convert/internal/mediatypes"
	"media-convert/internal/settings"
	"media-convert/internal/startup"
	"media-convert/internal/workers"
)

func main() {
	var (
		configPath   = flag.String("config", "", "path to a config file (optional)")
		formatID     = flag.String("format", "", "target format ID (default: best available for the source)")
		videoEncoder = flag.String("video-encoder", "", "video encoder ID (h264, hevc, vp9, av1, prores)")
		audioEncoder = flag.String("audio-encoder", "", "audio encoder ID (aac, mp3, flac, alac, opus, vorbis)")
		bitrate      = flag.String("bitrate", "", "video bitrate in kbit/s, e.g. 5000 or 5,000")
		width        = flag.Int("width", 0, "output width (requires -height)")
		height       = flag.Int("height", 0, "output height (requires -width)")
		preserveAnim = flag.Bool("preserve-animation", false, "keep all frames of animated images")
		outputDir    = flag.String("output", "", "destination directory (default: configured output dir)")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		info := startup.GetBuildInfo()
		fmt.Printf("media-convert %s (%s, built %s, %s %s/%s)\n",
			info.Version, info.Commit, info.BuildTime, info.GoVersion, info.OS, info.Arch)
		return
	}

	sources := flag.Args()
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "usage: media-convert [flags] <source file>...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := startup.Initialize(ctx, *configPath)
	if err != nil {
		startup.LogFatal("Initialization failed: %v", err)
	}
	defer env.Close()

	overrides := settings.Record{
		FormatID:          *formatID,
		VideoEncoder:      *videoEncoder,
		AudioEncoder:      *audioEncoder,
		CustomBitrate:     *bitrate,
		Width:             *width,
		Height:            *height,
		PreserveAnimation: *preserveAnim,
	}

	if code := runAll(ctx, env, sources, overrides, *outputDir); code != 0 {
		os.Exit(code)
	}
}

// runAll converts every source through a bounded worker pool and returns the
// process exit code.
func runAll(ctx context.Context, env *startup.Environment, sources []string, overrides settings.Record, outputDir string) int {
	queue := make(chan string)
	poolSize := workers.ForCPU(env.Config.MaxConcurrentJobs)
	if poolSize > len(sources) {
		poolSize = len(sources)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for source := range queue {
				if err := convertOne(ctx, env, source, overrides, outputDir); err != nil {
					mu.Lock()
					failed++
					mu.Unlock()
					logging.Error("%s: %v", source, err)
				}
			}
		}()
	}

	for _, source := range sources {
		queue <- source
	}
	close(queue)
	wg.Wait()

	if failed > 0 {
		logging.Error("%d of %d conversions failed", failed, len(sources))
		return 1
	}
	return 0
}

func convertOne(ctx context.Context, env *startup.Environment, source string, overrides settings.Record, outputDir string) error {
	canonical := mediatypes.CanonicalPath(source)
	kind := mediatypes.KindForPath(canonical)

	rec, _ := env.Settings.Get(kind, canonical)
	rec = applyOverrides(rec, overrides)
	if err := env.Settings.Put(ctx, kind, canonical, rec); err != nil {
		logging.Warn("failed to remember settings for %s: %v", source, err)
	}

	job, err := env.Engine.Convert(ctx, engine.Request{
		SourcePath: canonical,
		Settings:   rec,
		OutputDir:  outputDir,
		OnProgress: func(f float64) {
			logging.Debug("%s: %3.0f%%", source, f*100)
		},
	})
	if err != nil {
		return err
	}
	if job.State() == engine.StateCancelled {
		logging.Info("%s: cancelled", source)
		return nil
	}
	fmt.Printf("%s -> %s\n", source, job.DestPath)
	return nil
}

// applyOverrides lays non-zero command-line values over the remembered record.
func applyOverrides(rec, over settings.Record) settings.Record {
	if over.FormatID != "" {
		rec.FormatID = over.FormatID
	}
	if over.VideoEncoder != "" {
		rec.VideoEncoder = over.VideoEncoder
	}
	if over.AudioEncoder != "" {
		rec.AudioEncoder = over.AudioEncoder
	}
	if over.CustomBitrate != "" {
		rec.CustomBitrate = over.CustomBitrate
	}
	if over.Width > 0 && over.Height > 0 {
		rec.Width = over.Width
		rec.Height = over.Height
	}
	if over.PreserveAnimation {
		rec.PreserveAnimation = true
	}
	return rec
}
