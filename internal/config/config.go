package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pyrisk/pyrisk/pkg/analysis"
)

// Config holds all configuration for pyrisk
type Config struct {
	// Exclude lists glob patterns for files and directories to skip
	Exclude []string `yaml:"exclude" env:"PYRISK_EXCLUDE"`

	// MaxFileSizeBytes caps the size of files submitted to the parser
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes" env:"PYRISK_MAX_FILE_SIZE_BYTES"`

	// Workers bounds parallel parsing (0 = one per CPU)
	Workers int `yaml:"workers" env:"PYRISK_WORKERS"`

	// RankLimit is the default entry count for ranking queries
	RankLimit int `yaml:"rank_limit" env:"PYRISK_RANK_LIMIT"`

	// Weights control the risk score blend
	Weights analysis.Weights `yaml:"weights"`

	// Logging
	Verbose bool `yaml:"verbose" env:"PYRISK_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Exclude: []string{
			"**/__pycache__/**",
			"**/.git/**",
			"**/node_modules/**",
			"**/.venv/**",
			"**/venv/**",
			"**/env/**",
			"**/.pytest_cache/**",
			"**/.mypy_cache/**",
			"**/dist/**",
			"**/build/**",
			"**/.DS_Store",
		},
		MaxFileSizeBytes: 10 * 1024 * 1024,
		Workers:          0,
		RankLimit:        10,
		Weights:          analysis.DefaultWeights(),
		Verbose:          false,
	}
}

// globalConfigFilePath returns the global config file path (~/.pyrisk/config.yaml)
func globalConfigFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pyrisk/config.yaml"
	}
	return filepath.Join(home, ".pyrisk", "config.yaml")
}

// projectConfigFilePath returns the project-level config file path (./.pyrisk/config.yaml)
func projectConfigFilePath() string {
	return ".pyrisk/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.pyrisk/config.yaml)
// 3. Global config (~/.pyrisk/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalConfigPath := globalConfigFilePath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalConfigPath, err)
		}
	}

	projectConfigPath := projectConfigFilePath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectConfigPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PYRISK_EXCLUDE"); v != "" {
		var patterns []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) > 0 {
			cfg.Exclude = patterns
		}
	}
	if v := os.Getenv("PYRISK_MAX_FILE_SIZE_BYTES"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.MaxFileSizeBytes = int64(i)
		}
	}
	if v := os.Getenv("PYRISK_WORKERS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("PYRISK_RANK_LIMIT"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.RankLimit = i
		}
	}
	if v := os.Getenv("PYRISK_VERBOSE"); v != "" {
		cfg.Verbose = v == "true" || v == "1" || v == "yes"
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if c.MaxFileSizeBytes <= 0 {
		return fmt.Errorf("max_file_size_bytes must be positive")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative")
	}
	if c.RankLimit <= 0 {
		return fmt.Errorf("rank_limit must be positive")
	}

	w := c.Weights
	for name, value := range map[string]float64{
		"complexity": w.Complexity,
		"fan_in":     w.FanIn,
		"fan_out":    w.FanOut,
		"size":       w.Size,
	} {
		if value < 0 {
			return fmt.Errorf("weight %s must be non-negative", name)
		}
	}
	if w.Complexity+w.FanIn+w.FanOut+w.Size <= 0 {
		return fmt.Errorf("at least one risk weight must be positive")
	}

	return nil
}

// AnalysisConfig maps the loaded settings onto the analyzer's configuration.
func (c *Config) AnalysisConfig() analysis.Config {
	return analysis.Config{
		Weights:          c.Weights,
		DefaultRankLimit: c.RankLimit,
	}
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}
