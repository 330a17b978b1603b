// Package cli provides output formatting for the kensa command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const rule = "─────────────────────────────────────────────────────────"

// ParseOutputFormat validates an --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteMatchResult writes a plagiarism check result to w in the given format.
// In text format a verdict line is added when threshold > 0.
func WriteMatchResult(w io.Writer, result *models.MatchResult, threshold float64, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, result)
	}
	writeMatchText(w, result, threshold)
	return nil
}

// writeMatchText prints a match result; threshold > 0 adds the verdict line.
func writeMatchText(w io.Writer, result *models.MatchResult, threshold float64) {
	fmt.Fprintln(w, "Plagiarism Report")
	fmt.Fprintln(w, rule)
	if result.Warning != "" {
		fmt.Fprintf(w, "Warning: %s\n", result.Warning)
	}
	fmt.Fprintf(w, "Plagiarism Score: %.2f%%\n", result.Percent)
	fmt.Fprintf(w, "Matched Source: %s\n", result.Source)
	fmt.Fprintf(w, "Compared: %d reference(s)", result.Compared)
	if len(result.Skipped) > 0 {
		fmt.Fprintf(w, ", skipped %d", len(result.Skipped))
	}
	fmt.Fprintln(w)
	for _, s := range result.Skipped {
		fmt.Fprintf(w, "  skipped %s: %s\n", s.Name, s.Reason)
	}
	if len(result.Passages) > 0 {
		fmt.Fprintln(w, "Shared passages:")
		for _, p := range result.Passages {
			fmt.Fprintf(w, "  %q\n", p.Text)
		}
	}
	if threshold > 0 {
		fmt.Fprintln(w, VerdictLabel(models.VerdictFor(result.Percent, threshold)))
	}
}

// VerdictLabel returns the human-readable verdict.
func VerdictLabel(v models.Verdict) string {
	if v == models.VerdictHighPlagiarism {
		return "High plagiarism detected!"
	}
	return "Mostly original content!"
}

// WriteReport writes a full evaluation report to w in the given format.
func WriteReport(w io.Writer, report *models.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, report)
	}
	fmt.Fprintf(w, "Report %s\n", report.ID)
	if report.SubmissionName != "" {
		fmt.Fprintf(w, "Submission: %s\n", report.SubmissionName)
	}
	fmt.Fprintf(w, "Characters: %d\n\n", report.Chars)

	fmt.Fprintln(w, "Evaluation Results")
	fmt.Fprintln(w, rule)
	if sc := report.Scorecard; sc != nil {
		fmt.Fprintf(w, "Grammar:    %2d/10\n", sc.GrammarScore)
		fmt.Fprintf(w, "Coherence:  %2d/10\n", sc.CoherenceScore)
		fmt.Fprintf(w, "Structure:  %2d/10\n", sc.StructureScore)
		fmt.Fprintf(w, "Creativity: %2d/10\n", sc.CreativityScore)
		fmt.Fprintf(w, "Overall:    %d/100\n", sc.OverallScore)
		if sc.Summary != "" {
			fmt.Fprintf(w, "\nSummary:\n%s\n", sc.Summary)
		}
		if sc.SuggestedImprovements != "" {
			fmt.Fprintf(w, "\nSuggested improvements:\n%s\n", sc.SuggestedImprovements)
		}
		if sc.Feedback != "" {
			fmt.Fprintf(w, "\nFeedback:\n%s\n", sc.Feedback)
		}
	} else {
		fmt.Fprintf(w, "Scoring unavailable: %s\n", report.ScoringError)
	}
	fmt.Fprintln(w)

	if report.Plagiarism != nil {
		writeMatchText(w, report.Plagiarism, 0)
	}
	fmt.Fprintln(w, VerdictLabel(report.Verdict))
	return nil
}

// WriteReports writes a report listing to w in the given format.
func WriteReports(w io.Writer, reports []*models.Report, total int64, format OutputFormat) error {
	if format == OutputJSON {
		if reports == nil {
			reports = []*models.Report{}
		}
		return writeJSON(w, map[string]any{"reports": reports, "total": total})
	}
	fmt.Fprintf(w, "%d report(s) of %d\n", len(reports), total)
	for _, r := range reports {
		overall := "-"
		if r.Scorecard != nil {
			overall = fmt.Sprintf("%d", r.Scorecard.OverallScore)
		}
		percent := 0.0
		source := models.NoMatch
		if r.Plagiarism != nil {
			percent = r.Plagiarism.Percent
			source = r.Plagiarism.Source
		}
		name := r.SubmissionName
		if name == "" {
			name = "(pasted text)"
		}
		fmt.Fprintf(w, "%s  %s  %-24s overall=%-3s plagiarism=%6.2f%% (%s)\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), utils.Truncate(name, 24), overall, percent, source)
	}
	return nil
}

// WriteCorpus writes a corpus listing to w in the given format.
func WriteCorpus(w io.Writer, dir string, entries []models.CorpusEntry, format OutputFormat) error {
	if format == OutputJSON {
		if entries == nil {
			entries = []models.CorpusEntry{}
		}
		return writeJSON(w, map[string]any{"directory": dir, "entries": entries})
	}
	comparable := 0
	for _, e := range entries {
		if e.Comparable {
			comparable++
		}
	}
	fmt.Fprintf(w, "Corpus: %s (%d file(s), %d comparable)\n", dir, len(entries), comparable)
	for _, e := range entries {
		status := fmt.Sprintf("%d chars", e.Chars)
		if !e.Comparable {
			status = "skipped: " + e.ExtractNote
		}
		fmt.Fprintf(w, "  %-32s %-11s %10d B  %s\n", e.Name, e.Format, e.SizeBytes, status)
	}
	return nil
}

// SaveJSON writes v as indented JSON to path, creating parent directories.
func SaveJSON(path string, v any) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := writeJSON(f, v); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
