package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"TRACKER_API_URL", "TRACKER_TIMEOUT", "TRACKER_STATE_DIR", "TRACKER_STATE_BACKEND",
		"TRACKER_LOG_LEVEL", "TRACKER_ADDR", "TRACKER_DATA_DIR", "TRACKER_ADMIN_EMAILS",
		"TRACKER_ADMIN_PASSWORD", "TRACKER_SEED_DEMO", "TRACKER_DEMO_PASSWORD",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tracker.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/v1", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, BackendSQLite, cfg.StateBackend)
	assert.Equal(t, "dev", cfg.LogLevel)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Server.SeedDemo)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().APIURL, cfg.APIURL)
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `{
		"api_url": "https://tracker.example.com/api/v1",
		"timeout": "3s",
		"state_backend": "file",
		"server": {"addr": ":9000", "admin_emails": ["boss@example.com"], "seed_demo": false}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://tracker.example.com/api/v1", cfg.APIURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, BackendFile, cfg.StateBackend)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, []string{"boss@example.com"}, cfg.Server.AdminEmails)
	assert.False(t, cfg.Server.SeedDemo)
	assert.Equal(t, "data", cfg.Server.DataDir, "unset keys keep defaults")

	t.Setenv("TRACKER_API_URL", "http://127.0.0.1:1234/api/v1")
	t.Setenv("TRACKER_TIMEOUT", "250ms")
	t.Setenv("TRACKER_STATE_BACKEND", "MEMORY")
	t.Setenv("TRACKER_ADMIN_EMAILS", "a@example.com, b@example.com,")
	t.Setenv("TRACKER_SEED_DEMO", "true")

	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:1234/api/v1", cfg.APIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, BackendMemory, cfg.StateBackend)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Server.AdminEmails)
	assert.True(t, cfg.Server.SeedDemo)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
		want error
	}{
		{name: "bad env timeout", env: map[string]string{"TRACKER_TIMEOUT": "soon"}, want: ErrInvalidTimeout},
		{name: "bad file timeout", file: `{"timeout": "-"}`, want: ErrInvalidTimeout},
		{name: "negative timeout", env: map[string]string{"TRACKER_TIMEOUT": "-1s"}, want: ErrInvalidTimeout},
		{name: "unknown backend", env: map[string]string{"TRACKER_STATE_BACKEND": "redis"}, want: ErrUnknownBackend},
		{name: "unknown log level", env: map[string]string{"TRACKER_LOG_LEVEL": "loud"}, want: ErrUnknownLogLevel},
		{name: "empty api url", file: `{"api_url": " "}`, want: ErrEmptyAPIURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeFile(t, tt.file)
			}
			_, err := Load(path)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadMalformedFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, `{not json`))
	assert.Error(t, err)
}
