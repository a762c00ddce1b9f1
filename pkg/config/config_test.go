package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Matter.StackLockTimeout())
	assert.Equal(t, 10*time.Second, cfg.Matter.RequestTimeout())
	assert.Equal(t, time.Second, cfg.Matter.TableLockTimeout())
	assert.False(t, cfg.Matter.PartialResults)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9090
matter:
  request_timeout_ms: 5000
  partial_results: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Matter.RequestTimeout())
	assert.True(t, cfg.Matter.PartialResults)
	// Untouched values keep their defaults.
	assert.Equal(t, 2*time.Second, cfg.Matter.StackLockTimeout())
	assert.True(t, cfg.Server.CORSEnable)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: -1\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidateLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logging.Format = "xml"
	require.Error(t, cfg.Validate())
}
