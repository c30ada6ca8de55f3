package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.IntervalSec)
	assert.True(t, cfg.AutoRefresh)
	assert.Equal(t, "127.0.0.1:8085", cfg.Server.Listen)
	assert.Equal(t, "celltop/cells", cfg.MQTT.TopicPrefix)
	assert.Empty(t, cfg.Processes)
	assert.False(t, cfg.ProcessesSet)
}

func TestSaveEmptyProcessesStaysSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, SaveProcesses(path, []string{}))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ProcessesSet)
	require.NotNil(t, cfg.Processes)
	assert.Empty(t, cfg.Processes)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
  "interval_sec": 2,
  "auto_refresh": false,
  "processes": ["CC", "CV"],
  "mqtt": {"broker": "tcp://broker:1883"}
}`), 0600))
	t.Setenv("CELLTOP_SEED", "99")
	t.Setenv("CELLTOP_SERVER_LISTEN", ":9999")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.IntervalSec)
	assert.False(t, cfg.AutoRefresh)
	assert.Equal(t, []string{"CC", "CV"}, cfg.Processes)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTT.Broker)
	assert.Equal(t, int64(99), cfg.Seed)
	assert.Equal(t, ":9999", cfg.Server.Listen)
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadNonPositiveInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"interval_sec": 0}`), 0600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.IntervalSec)
}

func TestSaveProcessesKeepsOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	require.NoError(t, SaveProcesses(path, []string{"Trickle"}))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Trickle"}, cfg.Processes)

	require.NoError(t, os.WriteFile(path, []byte(`{"interval_sec": 7, "processes": ["CC"]}`), 0600))
	require.NoError(t, SaveProcesses(path, []string{"CV", "Fast"}))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.IntervalSec)
	assert.Equal(t, []string{"CV", "Fast"}, cfg.Processes)
}

func TestPathHonoursXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/celltop/config.json", Path())
}
