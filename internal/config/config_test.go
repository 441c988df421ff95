package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "recordings", cfg.Session.OutputDir)
	assert.InDelta(t, 3.0, cfg.Session.LiveIntervalSeconds, 1e-9)
	assert.Equal(t, "piper", cfg.TTS.Engine)
	assert.InDelta(t, 1.0, cfg.TTS.Speed, 1e-6)
	assert.Equal(t, "http://127.0.0.1:7838", cfg.DaemonURL())
	assert.Equal(t, 300, cfg.Daemon.IdleTimeoutSeconds)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
model:
  default: vosk-model-small-en-us-0.15
session:
  output_dir: /tmp/captures
tts:
  engine: daemon
  voice: bf_emma
daemon:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "vosk-model-small-en-us-0.15", cfg.Model.Default)
	assert.Equal(t, "/tmp/captures", cfg.Session.OutputDir)
	assert.Equal(t, "daemon", cfg.TTS.Engine)
	assert.Equal(t, "bf_emma", cfg.TTS.Voice)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.DaemonURL())

	// Untouched fields keep their defaults.
	assert.Equal(t, "text", cfg.Output.Format)
	assert.InDelta(t, 3.0, cfg.Session.LiveIntervalSeconds, 1e-9)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Model.Default = "vosk-model-en-us-0.22"
	cfg.TTS.Voice = "am_adam"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
