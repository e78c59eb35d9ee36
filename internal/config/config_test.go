package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FirstRunCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studycal.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Storage)
	assert.Equal(t, "http://localhost:8081/api/auth", cfg.AuthBaseURL)
	assert.Equal(t, 15, cfg.RequestTimeoutSec)
	assert.Equal(t, "monday", cfg.WeekStart)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoad_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studycal.yaml")
	body := `
data_dir: /tmp/cal
storage: sqlite
timezone: America/New_York
week_start: sunday
feeds:
  - id: uni
    name: University
    url: https://example.com/cal.ics
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/cal", cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Storage)
	assert.Equal(t, "sunday", cfg.WeekStart)
	require.Len(t, cfg.Feeds, 1)
	assert.Equal(t, "uni", cfg.Feeds[0].ID)

	// Unspecified fields are filled in from the defaults.
	assert.Equal(t, "http://localhost:8081/api/auth", cfg.AuthBaseURL)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	assert.Equal(t, 60, cfg.HorizonDays)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studycal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: file\n"), 0o600))

	t.Setenv("STUDYCAL_STORAGE", "memory")
	t.Setenv("STUDYCAL_AUTH_BASE_URL", "http://auth.internal/api/auth")
	t.Setenv("STUDYCAL_REQUEST_TIMEOUT_SEC", "30")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, "http://auth.internal/api/auth", cfg.AuthBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studycal.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	cfg := &Config{
		Storage:           "floppy",
		WeekStart:         "wednesday",
		RequestTimeoutSec: -1,
		HorizonDays:       0,
	}
	cfg.Normalize()

	assert.Equal(t, "file", cfg.Storage)
	assert.Equal(t, "monday", cfg.WeekStart)
	assert.Equal(t, 15, cfg.RequestTimeoutSec)
	assert.Equal(t, 60, cfg.HorizonDays)
	assert.NotNil(t, cfg.Feeds)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.Timezone = "Asia/Seoul"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", loc.String())

	cfg.Timezone = "Not/AZone"
	_, err = cfg.Location()
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studycal.yaml")

	in := DefaultConfig()
	in.Timezone = "Europe/Berlin"
	in.Feeds = []FeedConfig{{ID: "uni", Name: "University", URL: "https://example.com/c.ics"}}
	require.NoError(t, Save(path, in))

	out, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", out.Timezone)
	require.Len(t, out.Feeds, 1)
	assert.Equal(t, "https://example.com/c.ics", out.Feeds[0].URL)
}

func TestSave_NilConfig(t *testing.T) {
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
}
