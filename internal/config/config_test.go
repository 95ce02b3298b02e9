package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	require.NoError(t, Initialize())

	assert.False(t, GetBool(KeyJSON))
	assert.Equal(t, runtime.NumCPU(), GetInt(KeyWorkers))
	assert.True(t, GetBool(KeyCacheEnabled))
	assert.Equal(t, "", GetString(KeyCachePath))
	assert.Equal(t, FormatJSON, GetOutputFormat())
	assert.Equal(t, 500*time.Millisecond, GetDuration(KeyWatchDebounce))
	assert.Empty(t, GetStringSlice(KeyReducersDisable))
	assert.Equal(t, "", ConfigFileUsed())
}

func TestUninitialized(t *testing.T) {
	ResetForTesting()
	defer ResetForTesting()

	assert.Equal(t, "", GetString(KeyRepo))
	assert.False(t, GetBool(KeyCacheEnabled))
	assert.Zero(t, GetInt(KeyWorkers))
	assert.Nil(t, GetStringSlice(KeyReducersDisable))
	Set(KeyJSON, true)
	assert.False(t, IsSet(KeyJSON))
}

func TestEnvironmentBinding(t *testing.T) {
	tests := []struct {
		envVar string
		value  string
		check  func(t *testing.T)
	}{
		{"SIT_JSON", "true", func(t *testing.T) { assert.True(t, GetBool(KeyJSON)) }},
		{"SIT_WORKERS", "3", func(t *testing.T) { assert.Equal(t, 3, GetInt(KeyWorkers)) }},
		{"SIT_CACHE_ENABLED", "false", func(t *testing.T) { assert.False(t, GetBool(KeyCacheEnabled)) }},
		{"SIT_OUTPUT_FORMAT", "yaml", func(t *testing.T) { assert.Equal(t, FormatYAML, GetOutputFormat()) }},
		{"SIT_WATCH_DEBOUNCE", "2s", func(t *testing.T) { assert.Equal(t, 2*time.Second, GetDuration(KeyWatchDebounce)) }},
	}

	for _, tt := range tests {
		t.Run(tt.envVar, func(t *testing.T) {
			t.Setenv(tt.envVar, tt.value)
			require.NoError(t, Initialize())
			tt.check(t)
		})
	}
}

func TestSetOverridesEnv(t *testing.T) {
	t.Setenv("SIT_WORKERS", "3")
	require.NoError(t, Initialize())

	Set(KeyWorkers, 7)
	assert.Equal(t, 7, GetInt(KeyWorkers))
	assert.True(t, IsSet(KeyWorkers))
}

func TestRepoConfigFile(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, RepoDirName)
	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(repo, "config.yaml"), []byte(`
workers: 2
output:
  format: yaml
cache:
  path: /tmp/elsewhere.db
reducers:
  disabled: [Activity]
`), 0o644))

	t.Setenv("SIT_DIR", repo)
	require.NoError(t, Initialize())

	assert.Equal(t, filepath.Join(repo, "config.yaml"), ConfigFileUsed())
	assert.Equal(t, 2, GetInt(KeyWorkers))
	assert.Equal(t, FormatYAML, GetOutputFormat())
	assert.Equal(t, "/tmp/elsewhere.db", CachePath(repo))
	assert.Equal(t, []string{"Activity"}, GetStringSlice(KeyReducersDisable))
}

func TestInvalidConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [unclosed"), 0o644))
	t.Setenv("SIT_CONFIG", path)

	err := Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.yaml")
}

func TestFindRepoDir(t *testing.T) {
	root := t.TempDir()
	repo := filepath.Join(root, RepoDirName)
	nested := filepath.Join(root, "src", "pkg")
	require.NoError(t, os.MkdirAll(repo, 0o755))
	require.NoError(t, os.MkdirAll(nested, 0o755))

	oldWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(nested))
	defer func() { _ = os.Chdir(oldWD) }()

	found, err := filepath.EvalSymlinks(FindRepoDir())
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(repo)
	require.NoError(t, err)
	assert.Equal(t, want, found)

	t.Setenv("SIT_DIR", "/explicit")
	assert.Equal(t, "/explicit", FindRepoDir())
}

func TestCachePathDefault(t *testing.T) {
	require.NoError(t, Initialize())
	assert.Equal(t, filepath.Join("/repo", ".cache", "snapshots.db"), CachePath("/repo"))
}

func TestOutputFormat(t *testing.T) {
	format, err := ParseOutputFormat(" YAML ")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, format)

	_, err = ParseOutputFormat("xml")
	assert.Error(t, err)

	t.Setenv("SIT_OUTPUT_FORMAT", "xml")
	require.NoError(t, Initialize())
	assert.Equal(t, FormatJSON, GetOutputFormat())
}
