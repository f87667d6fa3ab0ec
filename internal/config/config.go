// Package config loads earthwall's TOML configuration file and resolves
// the API token from the OS keyring. Missing file means defaults; every
// field is optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/earthwall/earthwall/internal/composite"
	"github.com/earthwall/earthwall/internal/refresh"
)

// ConfigDirEnv overrides the configuration directory.
const ConfigDirEnv = "EARTHWALL_CONFIG_DIR"

// FileConfig is the TOML configuration file shape. Pointer fields
// distinguish "unset" from zero values.
type FileConfig struct {
	APIBase         *string  `toml:"api_base"`
	Marine          *bool    `toml:"marine"`
	TwilightAngle   *float64 `toml:"twilight_angle"`
	Size            *string  `toml:"size"`
	Quality         *int     `toml:"quality"`
	IntervalMinutes *int     `toml:"interval_minutes"`
	Cron            *string  `toml:"cron"`
	NotifyOnSuccess *bool    `toml:"notify_on_success"`
}

// Dir returns the earthwall configuration directory, creating it if
// needed.
func Dir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	dir := filepath.Join(base, "earthwall")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// DefaultPath returns the config file location inside Dir.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads a TOML config from path. A missing file is not an error.
func Load(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("stat config: %w", err)
	}
	var fc FileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("decode config: %w", err)
	}
	return fc, nil
}

// APIBaseURL returns the configured API base, empty for the default.
func (fc FileConfig) APIBaseURL() string {
	if fc.APIBase != nil {
		return *fc.APIBase
	}
	return ""
}

// ShouldNotifyOnSuccess reports whether successful cycles raise desktop
// notifications too. Default is failures only.
func (fc FileConfig) ShouldNotifyOnSuccess() bool {
	return fc.NotifyOnSuccess != nil && *fc.NotifyOnSuccess
}

// RefreshConfig materializes a refresh.Config with defaults applied and
// the given token attached.
func (fc FileConfig) RefreshConfig(token string) refresh.Config {
	cfg := refresh.Config{
		Token:         token,
		Marine:        true,
		TwilightAngle: 6.0,
		Size:          composite.SizeLarge,
		Quality:       90,
		Interval:      refresh.DefaultInterval,
	}
	if fc.Marine != nil {
		cfg.Marine = *fc.Marine
	}
	if fc.TwilightAngle != nil {
		cfg.TwilightAngle = *fc.TwilightAngle
	}
	if fc.Size != nil {
		cfg.Size = composite.SizeClass(*fc.Size)
	}
	if fc.Quality != nil {
		cfg.Quality = *fc.Quality
	}
	if fc.IntervalMinutes != nil {
		cfg.Interval = time.Duration(*fc.IntervalMinutes) * time.Minute
	}
	if fc.Cron != nil {
		cfg.Cron = *fc.Cron
	}
	return cfg
}
