package primary

import (
	"sync"

	"github.com/davidbyttow/govips/v2/vips"

	"media-convert/internal/logging"
)

var (
	vipsMu          sync.Mutex
	vipsInitialized bool
	vipsAvailable   bool
)

// InitVips initializes the libvips library. Call once at startup; the image
// exporter falls back to pure-Go codecs when this has not run (or libvips is
// unavailable at build time).
func InitVips() error {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		return nil
	}

	vipsLevel := vips.LogLevelWarning
	if logging.IsDebugEnabled() {
		vipsLevel = vips.LogLevelInfo
	}
	vips.LoggingSettings(func(domain string, level vips.LogLevel, msg string) {
		switch {
		case level >= vips.LogLevelError:
			logging.Error("[%s] %s", domain, msg)
		case level == vips.LogLevelWarning:
			logging.Warn("[%s] %s", domain, msg)
		default:
			logging.Debug("[%s] %s", domain, msg)
		}
	}, vipsLevel)

	// Conservative memory settings; conversions already compete with
	// ffmpeg children for RAM.
	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized (version: %s)", vips.Version)
	return nil
}

// ShutdownVips cleans up libvips resources.
func ShutdownVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
	}
}

func vipsReady() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsAvailable
}
