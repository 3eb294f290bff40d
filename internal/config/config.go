package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultMprisService   = "org.mpris.MediaPlayer2.spotify"
	DefaultLrclibURL      = "https://lrclib.net/api"
	DefaultPollIntervalMS = 200
	DefaultContextLines   = 2
	DefaultMatchTolerance = 2.0

	appDirName = "lyricbird"
)

type Config struct {
	MprisService string `toml:"mpris_service"`
	LrclibURL    string `toml:"lrclib_url"`

	// SyncOffset is added to the playback position before every lyric
	// lookup, in seconds. Positive values make lyrics appear earlier.
	SyncOffset float64 `toml:"sync_offset"`

	ContextBefore int `toml:"context_before"`
	ContextAfter  int `toml:"context_after"`

	// MatchTolerance is the duration window, in seconds, within which a
	// lyric candidate counts as matching the track's known duration.
	MatchTolerance float64 `toml:"match_tolerance"`

	PollIntervalMS int    `toml:"poll_interval_ms"`
	HideHeader     bool   `toml:"hide_header"`
	LogLevel       string `toml:"log_level"`
}

// Load reads configuration from standard locations with environment
// overrides. Search order: .env in the working directory, then
// $XDG_CONFIG_HOME/lyricbird/config.toml (or ~/.config/...), then
// environment variables on top.
func Load() (*Config, error) {
	// a missing .env is the normal case
	_ = godotenv.Load()

	cfg := &Config{}

	if path := findConfigFile(); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	return cfg, nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

func (c *Config) Offset() time.Duration {
	return time.Duration(c.SyncOffset * float64(time.Second))
}

func (c *Config) Tolerance() time.Duration {
	return time.Duration(c.MatchTolerance * float64(time.Second))
}

func (c *Config) applyDefaults() {
	if c.MprisService == "" {
		c.MprisService = DefaultMprisService
	}
	if c.LrclibURL == "" {
		c.LrclibURL = DefaultLrclibURL
	}
	if c.ContextBefore == 0 {
		c.ContextBefore = DefaultContextLines
	}
	if c.ContextAfter == 0 {
		c.ContextAfter = DefaultContextLines
	}
	if c.MatchTolerance == 0 {
		c.MatchTolerance = DefaultMatchTolerance
	}
	if c.PollIntervalMS <= 0 {
		c.PollIntervalMS = DefaultPollIntervalMS
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MPRIS_SERVICE"); v != "" {
		c.MprisService = v
	}
	if v := os.Getenv("LRCLIB_URL"); v != "" {
		c.LrclibURL = v
	}
	if v := os.Getenv("SYNC_OFFSET"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			c.SyncOffset = parsed
		}
	}
	if v := os.Getenv("CONTEXT_BEFORE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.ContextBefore = parsed
		}
	}
	if v := os.Getenv("CONTEXT_AFTER"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			c.ContextAfter = parsed
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

func findConfigFile() string {
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		xdgConfig = filepath.Join(home, ".config")
	}

	path := filepath.Join(xdgConfig, appDirName, "config.toml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
