package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/born-ml/adtape/internal/config"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Forward.CheckForNaN)
	assert.Equal(t, 1, cfg.Forward.CompareChangeCount)
	assert.Equal(t, 1, cfg.Arena.Workers)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adtape.yaml")
	data := []byte(`
forward:
  check_for_nan: false
  compare_change_count: 3
optimize:
  options: no_conditional_skip
  collision_limit: 4
arena:
  workers: 2
logging:
  level: debug
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("ADTAPE_WORKERS", "8")
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.False(t, cfg.Forward.CheckForNaN)
	assert.Equal(t, 3, cfg.Forward.CompareChangeCount)
	assert.Equal(t, "no_conditional_skip", cfg.Optimize.Options)
	assert.Equal(t, 4, cfg.Optimize.CollisionLimit)
	assert.Equal(t, 8, cfg.Arena.Workers, "environment wins over file")
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("ADTAPE_COLLISION_LIMIT", "many")
	t.Setenv("ADTAPE_CHECK_NAN", "maybe")
	_, err := config.Load("")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := config.Default()
	cfg.Forward.CompareChangeCount = -1
	cfg.Optimize.CollisionLimit = 0
	cfg.Arena.Workers = 0
	cfg.Optimize.Options = "no_such_option"
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 5)
}
