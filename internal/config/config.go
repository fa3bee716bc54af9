package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	// Spotify playback backend
	Spotify SpotifyConfig `koanf:"spotify"`

	// YouTube playback backend
	YouTube YouTubeConfig `koanf:"youtube"`

	// Playback analytics (enables play-event delivery when configured)
	Analytics AnalyticsConfig `koanf:"analytics"`

	// Logging
	Log LogConfig `koanf:"log"`
}

// SpotifyConfig holds Spotify Web API playback configuration.
type SpotifyConfig struct {
	AccessToken string `koanf:"access_token"` // OAuth bearer token
	DeviceID    string `koanf:"device_id"`    // target Connect device, empty for active device
	BaseURL     string `koanf:"base_url"`     // override for testing, default Spotify API
}

// YouTubeConfig holds the embedded YouTube player host configuration.
type YouTubeConfig struct {
	BaseURL string `koanf:"base_url"` // player host, e.g. "http://localhost:8977"
}

// AnalyticsConfig holds play-event delivery configuration.
type AnalyticsConfig struct {
	URL             string  `koanf:"url"`               // collector endpoint
	Enabled         *bool   `koanf:"enabled"`           // default: true when url is set
	EventsPerSecond float64 `koanf:"events_per_second"` // delivery budget (default: 5)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `koanf:"level"` // "debug", "info", "warn", "error" (default: "info")
	File  string `koanf:"file"`  // log file path, empty for stderr
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Spotify.BaseURL = strings.TrimSuffix(cfg.Spotify.BaseURL, "/")
	cfg.YouTube.BaseURL = strings.TrimSuffix(cfg.YouTube.BaseURL, "/")
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/soulpulse/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "soulpulse", "config.toml"))
	}

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// HasSpotifyConfig returns true if the Spotify backend is configured.
func (c *Config) HasSpotifyConfig() bool {
	return c.Spotify.AccessToken != ""
}

// HasYouTubeConfig returns true if the YouTube backend is configured.
func (c *Config) HasYouTubeConfig() bool {
	return c.YouTube.BaseURL != ""
}

// AnalyticsEnabled returns true if play events should be delivered.
func (c *Config) AnalyticsEnabled() bool {
	if c.Analytics.URL == "" {
		return false
	}
	if c.Analytics.Enabled != nil {
		return *c.Analytics.Enabled
	}
	return true
}

// GetAnalyticsConfig returns the analytics configuration with defaults
// applied.
func (c *Config) GetAnalyticsConfig() AnalyticsConfig {
	cfg := c.Analytics
	if cfg.EventsPerSecond <= 0 {
		cfg.EventsPerSecond = 5
	}
	return cfg
}

// LogLevel returns the configured level, defaulting to "info".
func (c *Config) LogLevel() string {
	if c.Log.Level == "" {
		return "info"
	}
	return strings.ToLower(c.Log.Level)
}
