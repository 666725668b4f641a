package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "cfop", cfg.Training.Mode)
	assert.True(t, cfg.Training.AutoScramble)
	assert.Equal(t, "QY-", cfg.Device.NamePrefix)
	assert.Equal(t, 25, cfg.Training.ScrambleLength)

	d, err := cfg.InspectionDuration()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, d)
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
device:
  mac: "CC:A3:00:00:25:13"
training:
  mode: f2l
  inspection: 8s
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "CC:A3:00:00:25:13", cfg.Device.MAC)
	assert.Equal(t, "f2l", cfg.Training.Mode)
	assert.Equal(t, "QY-", cfg.Device.NamePrefix, "unset keys keep their defaults")

	d, err := cfg.InspectionDuration()
	require.NoError(t, err)
	assert.Equal(t, 8*time.Second, d)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SMARTCUBE_KEY", "00112233445566778899aabbccddeeff")
	t.Setenv("SMARTCUBE_MAC", "AA:BB:CC:DD:EE:FF")
	t.Setenv("SMARTCUBE_DB", "/tmp/solves.db")
	t.Setenv("SMARTCUBE_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "00112233445566778899aabbccddeeff", cfg.Device.Key)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", cfg.Device.MAC)
	assert.Equal(t, "/tmp/solves.db", cfg.Storage.DBPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":       "training: [",
		"bad mode":       "training:\n  mode: roux\n",
		"bad inspection": "training:\n  inspection: soon\n",
		"bad length":     "training:\n  scramble_length: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Device.Key = "00112233445566778899aabbccddeeff"
	cfg.Training.Mode = "oll"
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
