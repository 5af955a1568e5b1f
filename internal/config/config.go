// Package config handles configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "TERMEVAL_CONFIG"

// Config holds all application configuration.
type Config struct {
	// Evaluation configuration
	Evaluation EvaluationConfig `yaml:"evaluation"`

	// Output configuration
	Output OutputConfig `yaml:"output"`

	// History configuration
	History HistoryConfig `yaml:"history"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// EvaluationConfig holds metric settings.
type EvaluationConfig struct {
	Cutoffs   []int  `envconfig:"TERMEVAL_CUTOFFS" yaml:"cutoffs"`
	Normalize string `envconfig:"TERMEVAL_NORMALIZE" yaml:"normalize"`
}

// OutputConfig holds report output settings.
type OutputConfig struct {
	Format string `envconfig:"TERMEVAL_OUTPUT_FORMAT" yaml:"format"`
}

// HistoryConfig holds run history settings.
type HistoryConfig struct {
	Type     string `envconfig:"TERMEVAL_HISTORY_TYPE" yaml:"type"`
	RedisURL string `envconfig:"TERMEVAL_REDIS_URL" yaml:"redis_url"`
	RunLabel string `envconfig:"TERMEVAL_RUN_LABEL" yaml:"run_label"`
	MaxRuns  int    `envconfig:"TERMEVAL_HISTORY_MAX_RUNS" yaml:"max_runs"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"TERMEVAL_LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"TERMEVAL_LOG_FORMAT" yaml:"format"`
}

// Load loads configuration from environment variables and optional config file.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Set defaults first
	setDefaults(cfg)

	// Load from YAML file if provided (overrides defaults)
	if configPath != "" {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration using the file named by TERMEVAL_CONFIG, if set.
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv(EnvConfigPath))
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	return yaml.Unmarshal(data, cfg)
}

func setDefaults(cfg *Config) {
	cfg.Evaluation = EvaluationConfig{
		Cutoffs:   []int{5, 10, 15, 20, 30, 100, 200, 500, 1000},
		Normalize: "none",
	}

	cfg.Output = OutputConfig{
		Format: "text",
	}

	cfg.History = HistoryConfig{
		Type:     "none",
		RedisURL: "redis://localhost:6379",
		MaxRuns:  100,
	}

	cfg.Log = LogConfig{
		Level:  "warn",
		Format: "text",
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	// Evaluation validation
	if len(c.Evaluation.Cutoffs) == 0 {
		errs = append(errs, "at least one cutoff is required")
	}
	for i, cutoff := range c.Evaluation.Cutoffs {
		if cutoff < 1 {
			errs = append(errs, fmt.Sprintf("cutoff %d must be positive", cutoff))
		} else if i > 0 && cutoff <= c.Evaluation.Cutoffs[i-1] {
			errs = append(errs, "cutoffs must be strictly ascending")
		}
	}

	validNormalize := map[string]bool{"none": true, "nfc": true}
	if !validNormalize[c.Evaluation.Normalize] {
		errs = append(errs, fmt.Sprintf("invalid normalize mode: %s (must be none or nfc)", c.Evaluation.Normalize))
	}

	// Output validation
	validOutput := map[string]bool{"text": true, "json": true, "yaml": true}
	if !validOutput[c.Output.Format] {
		errs = append(errs, fmt.Sprintf("invalid output format: %s (must be text, json, or yaml)", c.Output.Format))
	}

	// History validation
	validHistory := map[string]bool{"none": true, "memory": true, "redis": true}
	if !validHistory[c.History.Type] {
		errs = append(errs, fmt.Sprintf("invalid history type: %s (must be none, memory, or redis)", c.History.Type))
	}

	if c.History.Type == "redis" && c.History.RedisURL == "" {
		errs = append(errs, "redis_url is required for redis history")
	}

	if c.History.MaxRuns < 1 {
		errs = append(errs, "history max_runs must be positive")
	}

	// Log validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Sprintf("invalid log format: %s (must be text or json)", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// HistoryEnabled returns true if runs should be recorded.
func (c *Config) HistoryEnabled() bool {
	return c.History.Type != "none"
}
