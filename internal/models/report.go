package models

import "time"

// Scorecard is the structured quality evaluation returned by the scoring service.
type Scorecard struct {
	GrammarScore          int    `json:"grammar_score"`
	CoherenceScore        int    `json:"coherence_score"`
	StructureScore        int    `json:"structure_score"`
	CreativityScore       int    `json:"creativity_score"`
	OverallScore          int    `json:"overall_score"`
	Summary               string `json:"summary"`
	SuggestedImprovements string `json:"suggested_improvements"`
	Feedback              string `json:"feedback"`
}

// Verdict classifies a report by its plagiarism percentage.
type Verdict string

const (
	VerdictHighPlagiarism Verdict = "high_plagiarism"
	VerdictMostlyOriginal Verdict = "mostly_original"
)

// VerdictFor returns VerdictHighPlagiarism when percent exceeds threshold.
func VerdictFor(percent, threshold float64) Verdict {
	if percent > threshold {
		return VerdictHighPlagiarism
	}
	return VerdictMostlyOriginal
}

// Report is a full evaluation of one submission.
// Scorecard is nil when scoring failed; ScoringError then holds the reason.
type Report struct {
	ID             string       `json:"id"`
	SubmissionName string       `json:"submission_name,omitempty"`
	Fingerprint    string       `json:"fingerprint"`
	Chars          int          `json:"chars"`
	Scorecard      *Scorecard   `json:"scorecard,omitempty"`
	ScoringError   string       `json:"scoring_error,omitempty"`
	Plagiarism     *MatchResult `json:"plagiarism"`
	Verdict        Verdict      `json:"verdict"`
	CreatedAt      time.Time    `json:"created_at"`
}
