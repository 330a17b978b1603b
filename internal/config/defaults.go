package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxUploadBytes caps uploaded submissions at 10 MiB.
const DefaultMaxUploadBytes = 10 << 20

var providerDefaults = map[string]struct {
	model     string
	apiKeyEnv string
	baseURL   string
}{
	ProviderGroq:   {"llama-3.1-8b-instant", "GROQ_API_KEY", "https://api.groq.com/openai/v1"},
	ProviderOpenAI: {"gpt-4o-mini", "OPENAI_API_KEY", "https://api.openai.com/v1"},
	ProviderGemini: {"gemini-1.5-flash", "GEMINI_API_KEY", ""},
	ProviderMock:   {"mock", "", ""},
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxUploadBytes <= 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Corpus.Directory == "" {
		cfg.Corpus.Directory = "sample_essays"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = defaultDatabasePath()
	}
	if cfg.Report.PlagiarismThreshold == 0 {
		cfg.Report.PlagiarismThreshold = 30
	}

	cfg.Scoring.Provider = strings.ToLower(strings.TrimSpace(cfg.Scoring.Provider))
	if cfg.Scoring.Provider == "" {
		cfg.Scoring.Provider = ProviderGroq
	}
	if d, ok := providerDefaults[cfg.Scoring.Provider]; ok {
		if cfg.Scoring.Model == "" {
			cfg.Scoring.Model = d.model
		}
		if cfg.Scoring.APIKeyEnv == "" {
			cfg.Scoring.APIKeyEnv = d.apiKeyEnv
		}
		if cfg.Scoring.BaseURL == "" {
			cfg.Scoring.BaseURL = d.baseURL
		}
	}
	if cfg.Scoring.Temperature == 0 {
		cfg.Scoring.Temperature = 0.4
	}
	if cfg.Scoring.TimeoutSeconds == 0 {
		cfg.Scoring.TimeoutSeconds = 60
	}
}

func defaultDatabasePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".kensa", "reports.db")
	}
	return filepath.Join(".kensa", "reports.db")
}
