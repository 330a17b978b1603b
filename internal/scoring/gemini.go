package scoring

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/hyperjump/kensa/internal/models"
	"google.golang.org/api/option"
)

// GeminiScorer grades text with Google Gemini.
type GeminiScorer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	name   string
}

// NewGeminiScorer creates the Gemini client once; it is reused for every evaluation.
func NewGeminiScorer(ctx context.Context, apiKey, modelName string, temperature float64) (*GeminiScorer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(temperature))
	model.ResponseMIMEType = "application/json"
	return &GeminiScorer{client: client, model: model, name: modelName}, nil
}

// Name returns gemini/model.
func (g *GeminiScorer) Name() string {
	return "gemini/" + g.name
}

// Evaluate sends the evaluation prompt and parses the first candidate.
func (g *GeminiScorer) Evaluate(ctx context.Context, text string) (*models.Scorecard, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(BuildPrompt(text)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates returned from gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("empty content returned from gemini")
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("unexpected response format from gemini")
	}
	return ParseScorecard(b.String())
}

// Close closes the underlying client.
func (g *GeminiScorer) Close() error {
	return g.client.Close()
}
