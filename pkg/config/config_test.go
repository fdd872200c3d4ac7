package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "taskwire", cfg.AppName)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 10*time.Minute, cfg.Client.Budget)
	require.Len(t, cfg.Server.Listeners, 1)
	assert.Equal(t, "tcp", cfg.Server.Listeners[0].Network)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taskwire.yaml")
	data := `
app_name: worker-host
log:
  level: debug
  format: json
server:
  listeners:
    - network: mem
      address: exec
    - network: tcp
      address: ":7601"
client:
  budget: 30s
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "worker-host", cfg.AppName)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30*time.Second, cfg.Client.Budget)
	require.Len(t, cfg.Server.Listeners, 2)
	assert.Equal(t, "mem", cfg.Server.Listeners[0].Network)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsBadLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "verbose"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsHalfListener(t *testing.T) {
	cfg := Default()
	cfg.Server.Listeners = []ListenerConfig{{Network: "tcp"}}
	require.Error(t, cfg.Validate())
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("TASKWIRE_LOG_LEVEL", "error")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}
