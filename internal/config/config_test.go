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
	path := filepath.Join(t.TempDir(), "reversi.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, StoreSQLite, cfg.Store.Kind)
	assert.Equal(t, 200*time.Millisecond, cfg.Sync.PollInterval)
	assert.Equal(t, 30*time.Second, cfg.Sync.ReadyTimeout)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
location: "https://example.com/world?visit=1"
hideUI: true
store:
  kind: relay
  url: ws://relay.example:9000/ws?space=hall
sync:
  pollInterval: 50ms
  readyTimeout: 5s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.HideUI)
	assert.Equal(t, StoreRelay, cfg.Store.Kind)
	assert.Equal(t, "ws://relay.example:9000/ws?space=hall", cfg.Store.URL)
	assert.Equal(t, 50*time.Millisecond, cfg.Sync.PollInterval)
	assert.Equal(t, 5*time.Second, cfg.Sync.ReadyTimeout)
	assert.Equal(t, "reversi.db", cfg.Store.Path, "unset fields keep defaults")
	assert.Equal(t, "https://example.com/world", cfg.InstanceName())
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "hideUi: true\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "instance: from-file\nstore:\n  kind: memory\n")
	t.Setenv("REVERSI_INSTANCE", "from-env")
	t.Setenv("REVERSI_STORE_PATH", "/tmp/shared.db")
	t.Setenv("REVERSI_SYNC_READY_TIMEOUT", "2s")
	t.Setenv("REVERSI_HIDE_UI", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Instance)
	assert.Equal(t, StoreMemory, cfg.Store.Kind)
	assert.Equal(t, "/tmp/shared.db", cfg.Store.Path)
	assert.Equal(t, 2*time.Second, cfg.Sync.ReadyTimeout)
	assert.True(t, cfg.HideUI)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("REVERSI_SYNC_POLL_INTERVAL", "soon")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store kind", func(c *Config) { c.Store.Kind = "redis" }},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }},
		{"relay with http url", func(c *Config) {
			c.Store.Kind = StoreRelay
			c.Store.URL = "http://localhost:8080/ws"
		}},
		{"zero poll interval", func(c *Config) { c.Sync.PollInterval = 0 }},
		{"negative ready timeout", func(c *Config) { c.Sync.ReadyTimeout = -time.Second }},
		{"empty relay addr", func(c *Config) { c.Relay.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestValidate_MemoryIgnoresPath(t *testing.T) {
	cfg := Default()
	cfg.Store.Kind = StoreMemory
	cfg.Store.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestInstanceName(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "default", cfg.InstanceName())

	cfg.Location = "https://example.com/room#lobby"
	assert.Equal(t, "https://example.com/room", cfg.InstanceName())

	cfg.Instance = "table-7"
	assert.Equal(t, "table-7", cfg.InstanceName(), "explicit instance wins")
}
