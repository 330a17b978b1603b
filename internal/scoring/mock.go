package scoring

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/hyperjump/kensa/internal/models"
)

// MockScorer grades text from simple surface statistics. It needs no network
// and returns the same scorecard for the same input.
type MockScorer struct{}

// NewMockScorer returns a MockScorer.
func NewMockScorer() *MockScorer {
	return &MockScorer{}
}

// Name returns "mock".
func (m *MockScorer) Name() string {
	return "mock"
}

// Evaluate scores text by length, sentence count, and vocabulary variety.
func (m *MockScorer) Evaluate(ctx context.Context, text string) (*models.Scorecard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	words := strings.Fields(text)
	sentences := strings.FieldsFunc(text, func(r rune) bool { return r == '.' || r == '!' || r == '?' })
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(strings.TrimFunc(w, unicode.IsPunct))] = struct{}{}
	}

	grammar := clamp(4+len(sentences)/2, 1, 10)
	coherence := clamp(3+len(words)/50, 1, 10)
	structure := clamp(3+strings.Count(text, "\n\n")+len(sentences)/4, 1, 10)
	creativity := 1
	if len(words) > 0 {
		creativity = clamp(len(unique)*10/len(words), 1, 10)
	}
	overall := clamp((grammar+coherence+structure+creativity)*10/4, 1, 100)

	return &models.Scorecard{
		GrammarScore:          grammar,
		CoherenceScore:        coherence,
		StructureScore:        structure,
		CreativityScore:       creativity,
		OverallScore:          overall,
		Summary:               fmt.Sprintf("%d words across %d sentences.", len(words), len(sentences)),
		SuggestedImprovements: "- Vary sentence length.\n- Support claims with evidence.",
		Feedback:              "Offline evaluation; configure a scoring provider for model feedback.",
	}, nil
}

// Close is a no-op.
func (m *MockScorer) Close() error {
	return nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
