package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocalConfig(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg := LoadLocalConfig(t.TempDir())
		require.NotNil(t, cfg)
		assert.Zero(t, cfg.Workers)
		assert.True(t, cfg.CacheEnabled())
	})

	t.Run("parsed", func(t *testing.T) {
		dir := t.TempDir()
		content := `# local overrides
workers: 4
cache:
  enabled: false
output:
  format: yaml
reducers:
  disabled:
    - Activity
    - Merged
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

		cfg := LoadLocalConfig(dir)
		assert.Equal(t, 4, cfg.Workers)
		assert.False(t, cfg.CacheEnabled())
		assert.Equal(t, "yaml", cfg.Output.Format)
		assert.Equal(t, []string{"Activity", "Merged"}, cfg.Reducers.Disabled)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("workers: [oops"), 0o644))
		cfg := LoadLocalConfig(dir)
		require.NotNil(t, cfg)
		assert.Zero(t, cfg.Workers)
	})
}

func TestLoadReducerConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadReducerConfig(dir)
	require.NoError(t, err)
	assert.Empty(t, cfg.Disabled)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ReducerConfigFile), []byte(`disabled = ["Activity", "State"]`+"\n"), 0o644))
	cfg, err = LoadReducerConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Activity", "State"}, cfg.Disabled)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ReducerConfigFile), []byte(`disabled = [`), 0o644))
	_, err = LoadReducerConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ReducerConfigFile)
}

func TestDisabledReducers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ReducerConfigFile), []byte(`disabled = ["State", "Activity"]`), 0o644))

	t.Setenv("SIT_REDUCERS_DISABLED", "Activity Merged")
	require.NoError(t, Initialize())

	disabled, err := DisabledReducers(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Activity", "Merged", "State"}, disabled)

	disabled, err = DisabledReducers("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Activity", "Merged"}, disabled)
}
