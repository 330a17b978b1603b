package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hyperjump/kensa/internal/models"
)

const promptTemplate = `
You are an academic writing evaluator. Analyze the text and respond ONLY in JSON:

{
  "grammar_score": <1-10>,
  "coherence_score": <1-10>,
  "structure_score": <1-10>,
  "creativity_score": <1-10>,
  "overall_score": <1-100>,
  "summary": "<3-4 line summary of the writing>",
  "suggested_improvements": "<specific bullet point improvements>",
  "feedback": "<short professional feedback>"
}

Text to evaluate:
%s
`

// BuildPrompt returns the evaluation prompt for text.
func BuildPrompt(text string) string {
	return fmt.Sprintf(promptTemplate, text)
}

// rawScorecard accepts the loose shapes models actually return:
// fractional scores and lists where a string was asked for.
type rawScorecard struct {
	GrammarScore          *float64        `json:"grammar_score"`
	CoherenceScore        *float64        `json:"coherence_score"`
	StructureScore        *float64        `json:"structure_score"`
	CreativityScore       *float64        `json:"creativity_score"`
	OverallScore          *float64        `json:"overall_score"`
	Summary               json.RawMessage `json:"summary"`
	SuggestedImprovements json.RawMessage `json:"suggested_improvements"`
	Feedback              json.RawMessage `json:"feedback"`
}

// ParseScorecard extracts the JSON object from a model reply and validates it.
// Surrounding prose and Markdown code fences are ignored.
func ParseScorecard(reply string) (*models.Scorecard, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrInvalidScorecard)
	}
	var raw rawScorecard
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScorecard, err)
	}

	sc := &models.Scorecard{
		Summary:               flattenText(raw.Summary),
		SuggestedImprovements: flattenText(raw.SuggestedImprovements),
		Feedback:              flattenText(raw.Feedback),
	}
	fields := []struct {
		name string
		v    *float64
		max  int
		dst  *int
	}{
		{"grammar_score", raw.GrammarScore, 10, &sc.GrammarScore},
		{"coherence_score", raw.CoherenceScore, 10, &sc.CoherenceScore},
		{"structure_score", raw.StructureScore, 10, &sc.StructureScore},
		{"creativity_score", raw.CreativityScore, 10, &sc.CreativityScore},
		{"overall_score", raw.OverallScore, 100, &sc.OverallScore},
	}
	for _, f := range fields {
		if f.v == nil {
			return nil, fmt.Errorf("%w: %s missing", ErrInvalidScorecard, f.name)
		}
		n := int(math.Round(*f.v))
		if n < 1 || n > f.max {
			return nil, fmt.Errorf("%w: %s=%v outside 1-%d", ErrInvalidScorecard, f.name, *f.v, f.max)
		}
		*f.dst = n
	}
	return sc, nil
}

// flattenText returns a JSON string as-is, or joins a JSON array of strings with newlines.
func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for i := range list {
			list[i] = strings.TrimSpace(list[i])
		}
		return strings.Join(list, "\n")
	}
	return strings.TrimSpace(string(raw))
}
