// Package scoring asks a hosted language model to grade a writing sample.
//
// A Scorer is built once at startup from configuration and injected into the
// evaluator. It holds no mutable state after construction.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hyperjump/kensa/internal/config"
	"github.com/hyperjump/kensa/internal/models"
)

var (
	// ErrMissingAPIKey is returned when the configured API key environment variable is empty.
	ErrMissingAPIKey = errors.New("missing api key")
	// ErrUnknownProvider is returned for an unrecognised scoring.provider value.
	ErrUnknownProvider = errors.New("unknown scoring provider")
	// ErrInvalidScorecard is returned when the model reply is not a usable scorecard.
	ErrInvalidScorecard = errors.New("invalid scorecard")
)

// Scorer evaluates a writing sample and returns a structured scorecard.
type Scorer interface {
	Evaluate(ctx context.Context, text string) (*models.Scorecard, error)
	// Name identifies the provider and model, e.g. "groq/llama-3.1-8b-instant".
	Name() string
	Close() error
}

// New builds the scorer selected by cfg.Provider.
func New(ctx context.Context, cfg *config.ScoringConfig) (Scorer, error) {
	provider := strings.ToLower(cfg.Provider)
	switch provider {
	case config.ProviderMock:
		return NewMockScorer(), nil
	case config.ProviderGroq, config.ProviderOpenAI:
		key, err := apiKey(cfg.APIKeyEnv)
		if err != nil {
			return nil, err
		}
		return NewChatScorer(ChatOptions{
			Provider:       provider,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			APIKey:         key,
			Temperature:    cfg.Temperature,
			TimeoutSeconds: cfg.TimeoutSeconds,
			JSONMode:       cfg.JSONModeOrDefault(),
		}), nil
	case config.ProviderGemini:
		key, err := apiKey(cfg.APIKeyEnv)
		if err != nil {
			return nil, err
		}
		return NewGeminiScorer(ctx, key, cfg.Model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
}

func apiKey(env string) (string, error) {
	if env == "" {
		return "", fmt.Errorf("%w: scoring.api_key_env is not set", ErrMissingAPIKey)
	}
	key := strings.TrimSpace(os.Getenv(env))
	if key == "" {
		return "", fmt.Errorf("%w: %s environment variable not set", ErrMissingAPIKey, env)
	}
	return key, nil
}
