package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FeedConfig describes a single read-only ICS subscription shown next to
// the user's own events.
type FeedConfig struct {
	// URL is the ICS subscription endpoint.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for de-dup, coloring and logging.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// Config is the top-level application configuration.
type Config struct {
	// DataDir is where durable slots (events, identity, feed cache) live.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// Storage selects the slot backend: "file" (default), "sqlite" or
	// "memory" (nothing survives a restart; mainly for tests).
	Storage string `yaml:"storage" json:"storage"`

	// AuthBaseURL is the base path of the remote auth service
	// (POST <base>/login, <base>/signup).
	AuthBaseURL string `yaml:"auth_base_url" json:"auth_base_url"`

	// SyllabusBaseURL is the base path of the remote syllabus service
	// (POST <base>/upload).
	SyllabusBaseURL string `yaml:"syllabus_base_url" json:"syllabus_base_url"`

	// RequestTimeoutSec bounds every remote call; a slow service surfaces
	// as a failed call rather than a hang.
	RequestTimeoutSec int `yaml:"request_timeout_sec" json:"request_timeout_sec"`

	// Timezone is the IANA zone events are entered and displayed in
	// (e.g. "America/New_York"). "Local" uses the system zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// WeekStart controls which weekday is treated as the first day of the
	// week in calendar views: "monday" (default) or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start"`

	// RefreshCron is a cron-style schedule (e.g. "*/15 * * * *") for
	// re-fetching subscribed feeds.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays is the number of future days feed expansion covers.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// Feeds is the list of subscribed ICS sources.
	Feeds []FeedConfig `yaml:"feeds" json:"feeds"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:           "./var/studycal",
		Storage:           "file",
		AuthBaseURL:       "http://localhost:8081/api/auth",
		SyllabusBaseURL:   "http://localhost:8081/api/syllabi",
		RequestTimeoutSec: 15,
		Timezone:          "Local",
		WeekStart:         "monday",
		RefreshCron:       "*/15 * * * *",
		HorizonDays:       60,
		Feeds:             []FeedConfig{},
		LogLevel:          "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	d := DefaultConfig()

	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	switch c.Storage {
	case "file", "sqlite", "memory":
		// ok
	default:
		c.Storage = d.Storage
	}
	if c.AuthBaseURL == "" {
		c.AuthBaseURL = d.AuthBaseURL
	}
	if c.SyllabusBaseURL == "" {
		c.SyllabusBaseURL = d.SyllabusBaseURL
	}
	if c.RequestTimeoutSec <= 0 {
		c.RequestTimeoutSec = d.RequestTimeoutSec
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	switch c.WeekStart {
	case "monday", "sunday":
		// ok
	default:
		c.WeekStart = d.WeekStart
	}
	if c.RefreshCron == "" {
		c.RefreshCron = d.RefreshCron
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = d.HorizonDays
	}
	if c.Feeds == nil {
		c.Feeds = []FeedConfig{}
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written there
//     (0600, parent dirs created) and returned.
//   - If the file exists, it is unmarshaled and normalized.
//   - Environment variables (optionally from a .env file in the working
//     directory) override file values afterwards.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create a default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	cfg.applyEnv()

	return &cfg, nil
}

// applyEnv overlays environment variables on top of the loaded config.
// A .env file in the working directory is honored when present.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := getenv("STUDYCAL_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := getenv("STUDYCAL_STORAGE"); v != "" {
		c.Storage = v
	}
	if v := getenv("STUDYCAL_AUTH_BASE_URL"); v != "" {
		c.AuthBaseURL = v
	}
	if v := getenv("STUDYCAL_SYLLABUS_BASE_URL"); v != "" {
		c.SyllabusBaseURL = v
	}
	if v := getenv("STUDYCAL_TIMEZONE"); v != "" {
		c.Timezone = v
	}
	if v := getenv("STUDYCAL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("STUDYCAL_REQUEST_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.RequestTimeoutSec = n
		}
	}

	c.Normalize()
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

// RequestTimeout returns the remote-call timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// Location resolves the configured timezone. "Local" (or empty) maps to
// the system zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Writes atomically via a temp file + rename.
//   - Final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".studycal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
