package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

// ReducerConfigFile is the per-repository reducer configuration.
const ReducerConfigFile = "reducers.toml"

// ReducerConfig holds reducer settings from reducers.toml:
//
//	disabled = ["Activity"]
//
// The order of the remaining reducers is fixed and cannot be configured.
type ReducerConfig struct {
	Disabled []string `toml:"disabled"`
}

// LoadReducerConfig loads reducers.toml from repoDir if it exists.
func LoadReducerConfig(repoDir string) (*ReducerConfig, error) {
	path := filepath.Join(repoDir, ReducerConfigFile)
	data, err := os.ReadFile(path) // #nosec G304 -- path is constructed from repoDir
	if os.IsNotExist(err) {
		return &ReducerConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ReducerConfigFile, err)
	}

	var cfg ReducerConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ReducerConfigFile, err)
	}
	return &cfg, nil
}

// DisabledReducers merges reducers.disabled from settings with the
// repository's reducers.toml. Duplicates are removed; order is stable.
func DisabledReducers(repoDir string) ([]string, error) {
	disabled := slices.Clone(GetStringSlice(KeyReducersDisable))
	if repoDir != "" {
		cfg, err := LoadReducerConfig(repoDir)
		if err != nil {
			return nil, err
		}
		disabled = append(disabled, cfg.Disabled...)
	}
	var out []string
	for _, name := range disabled {
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out, nil
}
