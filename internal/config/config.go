package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the settings for the conversion engine.
type Config struct {
	// FFmpegPath overrides external transcoder discovery when non-empty.
	FFmpegPath string `mapstructure:"ffmpeg_path"`
	// OutputDir is the destination directory for converted files.
	OutputDir string `mapstructure:"output_dir"`
	// WorkDir holds per-job working files until they are finalized.
	WorkDir string `mapstructure:"work_dir"`
	// SettingsDBPath is the sqlite file holding per-source settings.
	SettingsDBPath string `mapstructure:"settings_db_path"`
	LogLevel       string `mapstructure:"log_level"`
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	// MaxConcurrentJobs caps how many conversion jobs run at once.
	MaxConcurrentJobs int `mapstructure:"max_concurrent_jobs"`
}

// Load initializes viper and merges defaults, an optional config file,
// and MEDIACONV_-prefixed environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("ffmpeg_path", "")
	v.SetDefault("output_dir", defaultOutputDir())
	v.SetDefault("work_dir", filepath.Join(os.TempDir(), "media-convert"))
	v.SetDefault("settings_db_path", defaultSettingsPath())
	v.SetDefault("log_level", "info")
	v.SetDefault("metrics_enabled", false)
	v.SetDefault("max_concurrent_jobs", 2)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix("MEDIACONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func defaultOutputDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "media-convert", "Converted")
	}
	return filepath.Join(home, "Converted")
}

func defaultSettingsPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "media-convert", "settings.db")
	}
	return filepath.Join(base, "media-convert", "settings.db")
}
