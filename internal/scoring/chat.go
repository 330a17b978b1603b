package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/kensa/internal/models"
)

// ChatOptions configures an OpenAI-compatible chat completions scorer.
type ChatOptions struct {
	Provider       string
	BaseURL        string
	Model          string
	APIKey         string
	Temperature    float64
	TimeoutSeconds int
	JSONMode       bool
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// ChatScorer calls a /chat/completions endpoint (Groq, OpenAI, or any compatible service).
type ChatScorer struct {
	hc          *http.Client
	url         string
	provider    string
	apiKey      string
	model       string
	temperature float64
	jsonMode    bool
}

// NewChatScorer returns a scorer for an OpenAI-compatible API.
func NewChatScorer(opts ChatOptions) *ChatScorer {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.TimeoutSeconds
		if timeout <= 0 {
			timeout = 60
		}
		hc = &http.Client{Timeout: time.Duration(timeout) * time.Second}
	}
	return &ChatScorer{
		hc:          hc,
		url:         strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		provider:    opts.Provider,
		apiKey:      opts.APIKey,
		model:       opts.Model,
		temperature: opts.Temperature,
		jsonMode:    opts.JSONMode,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	Temperature    float64             `json:"temperature"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Name returns provider/model.
func (c *ChatScorer) Name() string {
	return c.provider + "/" + c.model
}

// Evaluate sends the evaluation prompt and parses the reply into a scorecard.
func (c *ChatScorer) Evaluate(ctx context.Context, text string) (*models.Scorecard, error) {
	reqBody := chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: BuildPrompt(text)}},
		Temperature: c.temperature,
	}
	if c.jsonMode {
		reqBody.ResponseFormat = &chatResponseFormat{Type: "json_object"}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%s returned %d: %s", c.provider, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from %s", c.provider)
	}
	return ParseScorecard(out.Choices[0].Message.Content)
}

// Close releases idle connections.
func (c *ChatScorer) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}
