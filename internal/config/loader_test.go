package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projectgrid.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Status.TTL)
	assert.Equal(t, DefaultDateLayout, cfg.UI.DateLayout)
	assert.Equal(t, DefaultSessionIdle, cfg.Session.IdleTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, `server:
  addr: ":9999"
api:
  base_url: http://projects.internal:5000/api
  timeout: 3s
status:
  ttl: 2s
session:
  idle_timeout: 10m
ui:
  date_layout: "2006-01-02"
  pretty_html: true
log:
  level: debug
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "http://projects.internal:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Status.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, "2006-01-02", cfg.UI.DateLayout)
	assert.True(t, cfg.UI.PrettyHTML)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	path := writeConfig(t, `api:
  base_url: http://from-file:5000/api
`)
	t.Setenv("PROJECTGRID_API_BASE_URL", "http://from-env:5000/api")
	t.Setenv("PROJECTGRID_STATUS_TTL", "7s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:5000/api", cfg.API.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Status.TTL)
}

func TestLoad_LegacyServerAddr(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)

	t.Setenv("PROJECTGRID_SERVER_ADDR", ":6060")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Addr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"relative api url", "api:\n  base_url: /api\n"},
		{"bad log format", "log:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open config file")
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.base_url", envKey("PROJECTGRID_API_BASE_URL"))
	assert.Equal(t, "server.addr", envKey("PROJECTGRID_SERVER_ADDR"))
	assert.Equal(t, "upload.max_bytes", envKey("PROJECTGRID_UPLOAD_MAX_BYTES"))
}
