package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperjump/kensa/internal/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		ID:             "rep-1",
		SubmissionName: "essay.docx",
		Chars:          512,
		Scorecard: &models.Scorecard{
			GrammarScore: 8, CoherenceScore: 7, StructureScore: 6, CreativityScore: 5, OverallScore: 70,
			Summary: "A short summary.", SuggestedImprovements: "- Add sources", Feedback: "Good start.",
		},
		Plagiarism: &models.MatchResult{
			Ratio: 0.4512, Percent: 45.12, Source: "ref.txt", Compared: 2,
			Skipped:  []models.SkippedEntry{{Name: "img.png", Reason: "unsupported format"}},
			Passages: []models.Passage{{Text: "a shared sentence"}},
		},
		Verdict:   models.VerdictHighPlagiarism,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteMatchResult_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatchResult(&buf, sampleReport().Plagiarism, 30, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Plagiarism Score: 45.12%",
		"Matched Source: ref.txt",
		"skipped img.png: unsupported format",
		`"a shared sentence"`,
		"High plagiarism detected!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteMatchResult_TextWarning(t *testing.T) {
	var buf bytes.Buffer
	result := &models.MatchResult{Source: models.NoMatch, CorpusMissing: true, Warning: "Folder 'x' not found. Create it and add reference files."}
	if err := WriteMatchResult(&buf, result, 30, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Warning: Folder 'x' not found") {
		t.Errorf("warning not printed:\n%s", out)
	}
	if !strings.Contains(out, "Plagiarism Score: 0.00%") || !strings.Contains(out, "Mostly original content!") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestWriteMatchResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMatchResult(&buf, sampleReport().Plagiarism, 30, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.MatchResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if decoded.Source != "ref.txt" || decoded.Percent != 45.12 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteReport_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleReport(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Report rep-1", "Submission: essay.docx", "Overall:    70/100", "Good start.", "High plagiarism detected!"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReport_TextScoringError(t *testing.T) {
	r := sampleReport()
	r.Scorecard = nil
	r.ScoringError = "missing api key"
	var buf bytes.Buffer
	if err := WriteReport(&buf, r, OutputText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Scoring unavailable: missing api key") {
		t.Errorf("scoring error not printed:\n%s", buf.String())
	}
}

func TestWriteReport_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleReport(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.ID != "rep-1" || decoded.Scorecard == nil || decoded.Scorecard.OverallScore != 70 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteReports(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReports(&buf, []*models.Report{sampleReport()}, 3, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "1 report(s) of 3") || !strings.Contains(out, "rep-1") || !strings.Contains(out, "overall=70") {
		t.Errorf("unexpected listing:\n%s", out)
	}

	buf.Reset()
	if err := WriteReports(&buf, nil, 0, OutputJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"reports": []`) {
		t.Errorf("empty listing should encode an empty array:\n%s", buf.String())
	}
}

func TestWriteCorpus(t *testing.T) {
	entries := []models.CorpusEntry{
		{Name: "a.txt", Format: models.FormatText, SizeBytes: 10, Comparable: true, Chars: 9},
		{Name: "b.png", Format: models.FormatUnsupported, SizeBytes: 20, ExtractNote: "unsupported format"},
	}
	var buf bytes.Buffer
	if err := WriteCorpus(&buf, "sample_essays", entries, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "2 file(s), 1 comparable") || !strings.Contains(out, "skipped: unsupported format") {
		t.Errorf("unexpected corpus listing:\n%s", out)
	}
}

func TestSaveJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "feedback_report.json")
	if err := SaveJSON(path, sampleReport()); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded models.Report
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("saved file is not valid JSON: %v", err)
	}
	if decoded.ID != "rep-1" {
		t.Errorf("decoded ID = %s", decoded.ID)
	}
}
