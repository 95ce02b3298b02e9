package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalConfig represents the subset of config.yaml fields that need to be read
// directly from the file rather than through the viper singleton, e.g. when
// inspecting a repository other than the one viper was initialized with.
type LocalConfig struct {
	Workers int `yaml:"workers"`
	Cache   struct {
		Enabled *bool  `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"cache"`
	Output struct {
		Format string `yaml:"format"`
	} `yaml:"output"`
	Reducers struct {
		Disabled []string `yaml:"disabled"`
	} `yaml:"reducers"`
}

// LoadLocalConfig reads and parses config.yaml directly from the specified repository directory.
//
// Returns an empty LocalConfig (not nil) if the file doesn't exist or can't be parsed.
func LoadLocalConfig(repoDir string) *LocalConfig {
	configPath := filepath.Join(repoDir, "config.yaml")
	data, err := os.ReadFile(configPath) // #nosec G304 - config file path from repoDir
	if err != nil {
		return &LocalConfig{}
	}

	var cfg LocalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return &LocalConfig{}
	}

	return &cfg
}

// CacheEnabled reports the cache.enabled setting of the file, defaulting to true.
func (c *LocalConfig) CacheEnabled() bool {
	return c.Cache.Enabled == nil || *c.Cache.Enabled
}
