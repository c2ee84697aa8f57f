// Package config loads VRacer's JSON project configuration: which detector
// classes run, which files are in scope, and where the fact cache and an
// optional suppression policy live.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// CacheConfig controls the on-disk fact cache (internal/driver.Cache).
type CacheConfig struct {
	Enabled *bool  `json:"enabled,omitempty"`
	Dir     string `json:"dir,omitempty"`
}

// Config is the top-level VRacer project configuration.
type Config struct {
	// EnableWW/EnableRW/EnableTR gate the three detector classes.
	// *bool so "absent from the file" and "explicitly false" are distinct;
	// applyDefaults turns a nil pointer into true.
	EnableWW *bool `json:"enableWW,omitempty"`
	EnableRW *bool `json:"enableRW,omitempty"`
	EnableTR *bool `json:"enableTR,omitempty"`

	// Files is a list of glob patterns (supporting a leading "**") selecting
	// source files to analyze, relative to the project root unless absolute.
	Files []string `json:"files,omitempty"`

	// IgnorePatterns excludes matching files even if Files would select them.
	IgnorePatterns []string `json:"ignorePatterns,omitempty"`

	// PolicyFile is an optional path to a Rego module used by internal/policy
	// to mark individual race records as suppressed. Empty disables policy
	// evaluation entirely.
	PolicyFile string `json:"policyFile,omitempty"`

	Cache CacheConfig `json:"cache,omitempty"`
}

func boolPtr(v bool) *bool { return &v }

// DefaultConfig returns every detector class enabled, a Verilog/Verilog-AMS
// glob set, and an enabled on-disk cache in ".vracer_cache".
func DefaultConfig() *Config {
	return &Config{
		EnableWW:       boolPtr(true),
		EnableRW:       boolPtr(true),
		EnableTR:       boolPtr(true),
		Files:          []string{"*.v", "*.va", "**/*.v", "**/*.va"},
		IgnorePatterns: []string{},
		Cache: CacheConfig{
			Enabled: boolPtr(true),
			Dir:     ".vracer_cache",
		},
	}
}

// Load finds and loads the configuration file. Search order:
//  1. ./vracer.json (current working directory)
//  2. ./.vracer.json (current working directory)
//  3. <rootPath>/vracer.json, then <rootPath>/.vracer.json (if rootPath is
//     a directory distinct from cwd)
//  4. ~/.config/vracer/config.json
//
// Returns DefaultConfig if no config file is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "vracer.json"),
		filepath.Join(cwd, ".vracer.json"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "vracer.json"),
				filepath.Join(rootPath, ".vracer.json"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "vracer", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.EnableWW == nil {
		c.EnableWW = boolPtr(true)
	}
	if c.EnableRW == nil {
		c.EnableRW = boolPtr(true)
	}
	if c.EnableTR == nil {
		c.EnableTR = boolPtr(true)
	}
	if len(c.Files) == 0 {
		c.Files = []string{"*.v", "*.va", "**/*.v", "**/*.va"}
	}
	if c.IgnorePatterns == nil {
		c.IgnorePatterns = []string{}
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = ".vracer_cache"
	}
	if c.Cache.Enabled == nil {
		c.Cache.Enabled = boolPtr(true)
	}
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// ShouldIgnoreFile reports whether filePath matches one of IgnorePatterns.
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	for _, pattern := range c.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(filePath)); matched {
			return true
		}
	}
	return false
}
