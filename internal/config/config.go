// Package config loads store tuning knobs from a TOML file, following the
// teacher's zeta/config load-then-default pattern (BurntSushi/toml plus a
// user-global fallback path).
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const envConfigPath = "TREESTORE_CONFIG"

// Config holds the on-disk configuration for a treestore repository.
type Config struct {
	Store StoreConfig `toml:"store"`
}

// StoreConfig tunes the local FileStore.
type StoreConfig struct {
	// Root is the store's on-disk root directory.
	Root string `toml:"root"`
	// CacheMaxCost bounds the ristretto hot-object cache, in entry-cost
	// units (this store costs each cached tree/conflict by entry count).
	CacheMaxCost int64 `toml:"cache_max_cost"`
	// Compression selects the on-disk blob compression method: "zstd" or
	// "none".
	Compression string `toml:"compression"`
}

// Default returns the configuration used when no config file is found.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Root:         ".treestore",
			CacheMaxCost: 100_000,
			Compression:  "zstd",
		},
	}
}

// Load reads path, falling back to Default when path does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = configPath()
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPath() string {
	if p, ok := os.LookupEnv(envConfigPath); ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".treestore.toml")
}
