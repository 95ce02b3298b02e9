// Package config holds sit's settings: the viper singleton fed by
// config.yaml, SIT_* environment variables and command-line flags, plus
// direct readers for files that must be parsed without it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Setting keys
const (
	KeyJSON            = "json"
	KeyRepo            = "repo"
	KeyWorkers         = "workers"
	KeyCacheEnabled    = "cache.enabled"
	KeyCachePath       = "cache.path"
	KeyOutputFormat    = "output.format"
	KeyWatchDebounce   = "watch.debounce"
	KeyReducersDisable = "reducers.disabled"
)

// RepoDirName is the name of a repository directory found by walking up
// from the working directory.
const RepoDirName = ".sit"

var v *viper.Viper

// Initialize sets up the viper singleton. Call once at startup, before
// reading any setting.
//
// Settings are looked up, highest priority first, in: values Set by flags,
// SIT_* environment variables (SIT_CACHE_ENABLED for cache.enabled),
// config.yaml in the repository directory, config.yaml in the user config
// directory (~/.config/sit), and defaults.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyJSON, false)
	v.SetDefault(KeyRepo, "")
	v.SetDefault(KeyWorkers, runtime.NumCPU())
	v.SetDefault(KeyCacheEnabled, true)
	v.SetDefault(KeyCachePath, "")
	v.SetDefault(KeyOutputFormat, string(FormatJSON))
	v.SetDefault(KeyWatchDebounce, "500ms")
	v.SetDefault(KeyReducersDisable, []string{})

	path := configFilePath()
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return nil
}

// configFilePath returns the config.yaml to load, or "" if there is none.
func configFilePath() string {
	if path := os.Getenv("SIT_CONFIG"); path != "" {
		return path
	}
	if dir := FindRepoDir(); dir != "" {
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		path := filepath.Join(dir, "sit", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// FindRepoDir returns $SIT_DIR, or the first ".sit" directory in or above
// the working directory, or "".
func FindRepoDir() string {
	if dir := os.Getenv("SIT_DIR"); dir != "" {
		return dir
	}
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, RepoDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// ConfigFileUsed returns the config file that was loaded, if any.
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// ResetForTesting drops the singleton so the next Initialize starts clean.
func ResetForTesting() {
	v = nil
}

// Set overrides a setting, typically from a command-line flag.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}

// IsSet reports whether key has a value from any source other than defaults.
func IsSet(key string) bool {
	return v != nil && v.IsSet(key)
}

// GetString retrieves a string setting
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean setting
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer setting
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration setting
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// GetStringSlice retrieves a list setting
func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	return v.GetStringSlice(key)
}

// CachePath returns where the snapshot cache of the repository at repoDir lives.
func CachePath(repoDir string) string {
	if path := GetString(KeyCachePath); path != "" {
		return path
	}
	return filepath.Join(repoDir, ".cache", "snapshots.db")
}
