package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "database:\n  dsn: postgres://localhost/uptime\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10.0, cfg.Server.RateLimitPerSec)
	assert.Equal(t, 5, cfg.Server.RateLimitBurst)
	assert.Equal(t, 60, cfg.Server.CacheTTLSeconds)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "America/Chicago", cfg.Report.Location.String())
	assert.Equal(t, 4, cfg.Report.Parallelism)
	assert.True(t, cfg.Report.Now.IsZero())
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.False(t, cfg.Push.Enabled())
	assert.Equal(t, 1, cfg.WorkerPool.Size)
}

func TestLoad_FileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  port: 9000
database:
  driver: sqlite
  dsn: "file::memory:"
report:
  default_timezone: Asia/Kolkata
  parallelism: 2
  now: "2023-01-25T18:13:22Z"
  schedule_interval: 15m
push:
  vapid_public_key: pub
  vapid_private_key: priv
`))
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "Asia/Kolkata", cfg.Report.Location.String())
	assert.Equal(t, 2, cfg.Report.Parallelism)
	assert.Equal(t, time.Date(2023, 1, 25, 18, 13, 22, 0, time.UTC), cfg.Report.Now)
	assert.Equal(t, 15*time.Minute, cfg.Report.ScheduleInterval)
	assert.True(t, cfg.Push.Enabled())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_DSN", "postgres://env/uptime")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("REPORT_DEFAULT_TIMEZONE", "Europe/Berlin")

	cfg, err := Load(writeConfig(t, "database:\n  dsn: postgres://file/uptime\n"))
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/uptime", cfg.Database.DSN)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "Europe/Berlin", cfg.Report.Location.String())
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "Unknown driver", body: "database:\n  driver: mongo\n"},
		{name: "Bad timezone", body: "report:\n  default_timezone: Nowhere/Land\n"},
		{name: "Bad now", body: "report:\n  now: yesterday\n"},
		{name: "Bad yaml", body: "server: [\n"},
		{name: "Negative schedule", body: "report:\n  schedule_interval: -5m\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
