// Package config provides configuration loading and structs for kensa.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scoring providers.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderMock   = "mock"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Corpus  CorpusConfig  `yaml:"corpus"`
	Scoring ScoringConfig `yaml:"scoring"`
	Storage StorageConfig `yaml:"storage"`
	Report  ReportConfig  `yaml:"report"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// CorpusConfig locates the reference corpus.
type CorpusConfig struct {
	Directory string `yaml:"directory"`
}

// ScoringConfig selects and tunes the language model used for grading.
type ScoringConfig struct {
	Provider    string  `yaml:"provider"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	JSONMode       *bool  `yaml:"json_mode"`
}

// JSONModeOrDefault returns whether to request a JSON response format; defaults to true when unset.
func (s *ScoringConfig) JSONModeOrDefault() bool {
	if s.JSONMode != nil {
		return *s.JSONMode
	}
	return true
}

// StorageConfig holds the report database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// ReportConfig holds report thresholds.
type ReportConfig struct {
	// PlagiarismThreshold is the similarity percent above which a report is flagged.
	PlagiarismThreshold float64 `yaml:"plagiarism_threshold"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	configDir := filepath.Dir(path)
	if cfg.Storage.DatabasePath != "" {
		cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	}
	// The corpus stays relative to the working directory unless it is "./" prefixed.
	if strings.HasPrefix(cfg.Corpus.Directory, "./") {
		cfg.Corpus.Directory = filepath.Join(configDir, cfg.Corpus.Directory)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a config with every default applied. Used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
