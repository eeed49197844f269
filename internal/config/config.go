// Package config loads a project's .naabrc (spec SPEC_FULL §10.3), the one
// piece of naab configuration the module resolver, executor registry, and
// cache all consult. Grounded on the teacher's internal/eval_harness use of
// gopkg.in/yaml.v3 for structured YAML config.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the config file naab looks for, walking upward from a
// project directory the same way the resolver walks for naab_modules.
const FileName = ".naabrc"

// ExecutorConfig is one language's per-executor settings block.
type ExecutorConfig struct {
	TimeoutMS int    `yaml:"timeout_ms"`
	CC        string `yaml:"cc"`
}

// CacheConfig configures internal/cache's compiled-artifact store.
type CacheConfig struct {
	Root     string `yaml:"root"`
	MaxBytes int64  `yaml:"max_bytes"`
}

// Config is the unmarshaled shape of a .naabrc file.
type Config struct {
	ModulePaths []string                   `yaml:"module_paths"`
	Aliases     map[string]string          `yaml:"aliases"`
	Executors   map[string]ExecutorConfig  `yaml:"executors"`
	Cache       CacheConfig                `yaml:"cache"`
}

// Default returns the zero-value configuration Load falls back to when no
// .naabrc is found: no extra search paths or aliases, no per-language
// overrides, and the cache's own built-in default root/cap.
func Default() *Config {
	return &Config{
		Aliases:   map[string]string{},
		Executors: map[string]ExecutorConfig{},
	}
}

// Load walks upward from dir looking for .naabrc, unmarshals the first one
// found, and returns Default() if none exists anywhere above dir.
func Load(dir string) (*Config, error) {
	path, ok := findUpward(dir)
	if !ok {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findUpward(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}
