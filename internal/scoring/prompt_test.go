package scoring

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("My essay body.")
	if !strings.Contains(p, "My essay body.") {
		t.Error("prompt should embed the text")
	}
	if !strings.Contains(p, `"overall_score": <1-100>`) {
		t.Error("prompt should describe the JSON contract")
	}
}

func TestParseScorecard(t *testing.T) {
	const valid = `{"grammar_score": 8, "coherence_score": 7, "structure_score": 6, "creativity_score": 5,
"overall_score": 72, "summary": "Solid.", "suggested_improvements": "- More examples", "feedback": "Good work."}`

	tests := []struct {
		name  string
		reply string
	}{
		{"plain", valid},
		{"fenced", "```json\n" + valid + "\n```"},
		{"prose_around", "Here is the evaluation:\n" + valid + "\nHope this helps!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc, err := ParseScorecard(tt.reply)
			if err != nil {
				t.Fatal(err)
			}
			if sc.GrammarScore != 8 || sc.CoherenceScore != 7 || sc.StructureScore != 6 ||
				sc.CreativityScore != 5 || sc.OverallScore != 72 {
				t.Errorf("scores: %+v", sc)
			}
			if sc.Summary != "Solid." || sc.Feedback != "Good work." || sc.SuggestedImprovements != "- More examples" {
				t.Errorf("texts: %+v", sc)
			}
		})
	}
}

func TestParseScorecard_looseShapes(t *testing.T) {
	reply := `{"grammar_score": 7.6, "coherence_score": 7, "structure_score": 7, "creativity_score": 7,
"overall_score": 70, "summary": "ok", "suggested_improvements": ["Use transitions", " Cite sources "], "feedback": "fine"}`
	sc, err := ParseScorecard(reply)
	if err != nil {
		t.Fatal(err)
	}
	if sc.GrammarScore != 8 {
		t.Errorf("fractional score should round: got %d", sc.GrammarScore)
	}
	if sc.SuggestedImprovements != "Use transitions\nCite sources" {
		t.Errorf("list should join with newlines: got %q", sc.SuggestedImprovements)
	}
}

func TestParseScorecard_invalid(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"no_json", "I cannot evaluate this."},
		{"broken_json", `{"grammar_score": 8,`},
		{"missing_field", `{"grammar_score": 8, "coherence_score": 7, "structure_score": 6, "creativity_score": 5}`},
		{"out_of_range", `{"grammar_score": 11, "coherence_score": 7, "structure_score": 6, "creativity_score": 5, "overall_score": 70}`},
		{"overall_zero", `{"grammar_score": 5, "coherence_score": 7, "structure_score": 6, "creativity_score": 5, "overall_score": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScorecard(tt.reply)
			if !errors.Is(err, ErrInvalidScorecard) {
				t.Errorf("ParseScorecard error = %v, want ErrInvalidScorecard", err)
			}
		})
	}
}
