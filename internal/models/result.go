package models

// NoMatch is the source label reported when no reference document qualifies.
const NoMatch = "No match detected"

// Passage is a contiguous run of normalized text shared by a submission and a reference.
type Passage struct {
	Text            string `json:"text"`
	SubmissionIndex int    `json:"submission_index"`
	ReferenceIndex  int    `json:"reference_index"`
}

// SkippedEntry records a corpus entry that took no part in the comparison.
type SkippedEntry struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// MatchResult is the outcome of scanning a reference corpus.
// Ratio is the maximum over all comparable references; Source is NoMatch when none qualified.
type MatchResult struct {
	Ratio         float64        `json:"ratio"`
	Percent       float64        `json:"percent"`
	Source        string         `json:"source"`
	CorpusMissing bool           `json:"corpus_missing,omitempty"`
	Warning       string         `json:"warning,omitempty"`
	Compared      int            `json:"compared"`
	Skipped       []SkippedEntry `json:"skipped,omitempty"`
	Passages      []Passage      `json:"passages,omitempty"`
}

// Matched reports whether a reference document was selected as best match.
func (m *MatchResult) Matched() bool {
	return m.Source != NoMatch && m.Source != ""
}
