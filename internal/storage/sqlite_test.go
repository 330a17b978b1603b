package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kensa/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "nested", "reports.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(id, fp string, created time.Time) *models.Report {
	return &models.Report{
		ID:             id,
		SubmissionName: id + ".txt",
		Fingerprint:    fp,
		Chars:          120,
		Scorecard: &models.Scorecard{
			GrammarScore: 7, CoherenceScore: 6, StructureScore: 8, CreativityScore: 5,
			OverallScore: 66, Summary: "sum", SuggestedImprovements: "imp", Feedback: "fb",
		},
		Plagiarism: &models.MatchResult{
			Ratio: 0.42, Percent: 42, Source: "ref.txt", Compared: 2,
			Passages: []models.Passage{{Text: "shared words", SubmissionIndex: 3, ReferenceIndex: 9}},
		},
		Verdict:   models.VerdictHighPlagiarism,
		CreatedAt: created,
	}
}

func TestSQLiteStorage_CRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := sampleReport("r1", "sha256:aa", time.Time{})
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatal(err)
	}
	if report.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SubmissionName != "r1.txt" || got.Fingerprint != "sha256:aa" || got.Chars != 120 {
		t.Errorf("got %+v", got)
	}
	if got.Scorecard == nil || *got.Scorecard != *report.Scorecard {
		t.Errorf("scorecard round-trip: got %+v", got.Scorecard)
	}
	if got.Plagiarism == nil || got.Plagiarism.Source != "ref.txt" || got.Plagiarism.Percent != 42 {
		t.Errorf("plagiarism round-trip: got %+v", got.Plagiarism)
	}
	if len(got.Plagiarism.Passages) != 1 || got.Plagiarism.Passages[0].Text != "shared words" {
		t.Errorf("passages round-trip: got %+v", got.Plagiarism.Passages)
	}
	if got.Verdict != models.VerdictHighPlagiarism {
		t.Errorf("verdict = %s", got.Verdict)
	}

	if err := store.DeleteReport(ctx, "r1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.GetReport(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetReport after delete: err = %v, want ErrNotFound", err)
	}
	if err := store.DeleteReport(ctx, "r1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStorage_scoringFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := sampleReport("r1", "sha256:aa", time.Now())
	report.Scorecard = nil
	report.ScoringError = "missing api key"
	if err := store.SaveReport(ctx, report); err != nil {
		t.Fatal(err)
	}
	got, err := store.GetReport(ctx, "r1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Scorecard != nil {
		t.Errorf("scorecard should stay nil, got %+v", got.Scorecard)
	}
	if got.ScoringError != "missing api key" {
		t.Errorf("scoring error = %q", got.ScoringError)
	}
}

func TestSQLiteStorage_duplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if err := store.SaveReport(ctx, sampleReport("r1", "fp", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveReport(ctx, sampleReport("r1", "fp", time.Now())); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestSQLiteStorage_ListAndFind(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, r := range []*models.Report{
		sampleReport("old", "fp-a", base),
		sampleReport("mid", "fp-b", base.Add(time.Hour)),
		sampleReport("new", "fp-a", base.Add(2*time.Hour)),
	} {
		if err := store.SaveReport(ctx, r); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	list, err := store.ListReports(ctx, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].ID != "new" || list[2].ID != "old" {
		t.Errorf("list order: %v", ids(list))
	}

	page, err := store.ListReports(ctx, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].ID != "mid" {
		t.Errorf("page: %v", ids(page))
	}

	same, err := store.FindByFingerprint(ctx, "fp-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(same) != 2 || same[0].ID != "new" || same[1].ID != "old" {
		t.Errorf("fingerprint matches: %v", ids(same))
	}
	none, err := store.FindByFingerprint(ctx, "fp-z")
	if err != nil || len(none) != 0 {
		t.Errorf("unknown fingerprint: %v, %v", none, err)
	}
}

func TestSQLiteStorage_Counts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	n, err := store.CountReports(ctx)
	if err != nil || n != 0 {
		t.Errorf("CountReports: %v, %d", err, n)
	}
	_ = store.SaveReport(ctx, sampleReport("x", "fp", time.Now()))
	n, _ = store.CountReports(ctx)
	if n != 1 {
		t.Errorf("expected 1 report, got %d", n)
	}
}

func ids(reports []*models.Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.ID
	}
	return out
}
