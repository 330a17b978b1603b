package evaluator

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kensa/internal/fingerprint"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/scoring"
	"github.com/hyperjump/kensa/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const essay = "The quick brown fox jumps over the lazy dog near the quiet river bank."

type fixedScorer struct {
	calls int
	text  string
}

func (f *fixedScorer) Name() string { return "fixed" }
func (f *fixedScorer) Close() error { return nil }
func (f *fixedScorer) Evaluate(_ context.Context, text string) (*models.Scorecard, error) {
	f.calls++
	f.text = text
	return &models.Scorecard{GrammarScore: 8, CoherenceScore: 8, StructureScore: 8, CreativityScore: 8, OverallScore: 80}, nil
}

type failingStore struct {
	storage.Storage
}

func (failingStore) SaveReport(context.Context, *models.Report) error {
	return errors.New("disk full")
}

func (failingStore) FindByFingerprint(context.Context, string) ([]*models.Report, error) {
	return nil, errors.New("disk full")
}

func corpus(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestEvaluate(t *testing.T) {
	dir := corpus(t, map[string]string{"copy.txt": essay, "other.txt": "zzzz"})
	scorer := &fixedScorer{}
	e := New(nil, scorer, WithCorpusDir(dir))

	report, err := e.Evaluate(context.Background(), Submission{Name: "mine.txt", Text: "  " + essay + "\n"})
	if err != nil {
		t.Fatal(err)
	}
	if report.ID == "" {
		t.Error("report ID should be set")
	}
	if scorer.calls != 1 || scorer.text != essay {
		t.Errorf("scorer saw %d calls with %q", scorer.calls, scorer.text)
	}
	if report.Scorecard == nil || report.Scorecard.OverallScore != 80 {
		t.Errorf("scorecard = %+v", report.Scorecard)
	}
	if report.Plagiarism.Source != "copy.txt" || report.Plagiarism.Percent != 100 {
		t.Errorf("plagiarism = %+v", report.Plagiarism)
	}
	if report.Verdict != models.VerdictHighPlagiarism {
		t.Errorf("verdict = %s", report.Verdict)
	}
	if report.Fingerprint != fingerprint.Of(essay) {
		t.Errorf("fingerprint = %s", report.Fingerprint)
	}
	if report.Chars != len(essay) {
		t.Errorf("chars = %d, want %d", report.Chars, len(essay))
	}
	if report.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestEvaluate_scoringFailureStillScans(t *testing.T) {
	dir := corpus(t, map[string]string{"copy.txt": essay})
	e := New(nil, scoring.NewUnavailableScorer(scoring.ErrMissingAPIKey), WithCorpusDir(dir))

	report, err := e.Evaluate(context.Background(), Submission{Text: essay})
	if err != nil {
		t.Fatal(err)
	}
	if report.Scorecard != nil {
		t.Errorf("scorecard should be nil, got %+v", report.Scorecard)
	}
	if report.ScoringError == "" {
		t.Error("ScoringError should be set")
	}
	if report.Plagiarism == nil || report.Plagiarism.Source != "copy.txt" {
		t.Errorf("corpus scan should still run: %+v", report.Plagiarism)
	}
}

func TestEvaluate_emptySubmission(t *testing.T) {
	e := New(nil, scoring.NewMockScorer(), WithCorpusDir(t.TempDir()))
	tests := []struct {
		name string
		sub  Submission
	}{
		{"nothing", Submission{}},
		{"blank_text", Submission{Text: " \n\t"}},
		{"unsupported_upload", Submission{Name: "essay.odt", Content: []byte("text")}},
		{"corrupt_pdf", Submission{Name: "essay.pdf", Content: []byte("not a pdf")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.Evaluate(context.Background(), tt.sub); !errors.Is(err, ErrEmptySubmission) {
				t.Errorf("err = %v, want ErrEmptySubmission", err)
			}
		})
	}
}

func TestEvaluate_textTakesPrecedenceOverUpload(t *testing.T) {
	scorer := &fixedScorer{}
	e := New(nil, scorer, WithCorpusDir(t.TempDir()))
	_, err := e.Evaluate(context.Background(), Submission{
		Name:    "upload.txt",
		Text:    "typed text",
		Content: []byte("uploaded text"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if scorer.text != "typed text" {
		t.Errorf("scorer saw %q, want typed text", scorer.text)
	}
}

func TestEvaluate_uploadUsedWhenTextBlank(t *testing.T) {
	scorer := &fixedScorer{}
	e := New(nil, scorer, WithCorpusDir(t.TempDir()))
	_, err := e.Evaluate(context.Background(), Submission{Name: "upload.TXT", Text: "  ", Content: []byte("uploaded text")})
	if err != nil {
		t.Fatal(err)
	}
	if scorer.text != "uploaded text" {
		t.Errorf("scorer saw %q, want uploaded text", scorer.text)
	}
}

func TestEvaluate_fileNameSelectsFormat(t *testing.T) {
	scorer := &fixedScorer{}
	e := New(nil, scorer, WithCorpusDir(t.TempDir()))
	report, err := e.Evaluate(context.Background(), Submission{
		Name:     "my essay",
		FileName: "essay.txt",
		Content:  []byte("uploaded text"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if scorer.text != "uploaded text" {
		t.Errorf("scorer saw %q, want uploaded text", scorer.text)
	}
	if report.SubmissionName != "my essay" {
		t.Errorf("submission name = %q", report.SubmissionName)
	}

	_, err = e.Evaluate(context.Background(), Submission{Name: "essay.txt", FileName: "essay.odt", Content: []byte("x")})
	if !errors.Is(err, ErrEmptySubmission) {
		t.Errorf("unsupported file name: err = %v, want ErrEmptySubmission", err)
	}
}

func TestEvaluate_missingCorpus(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "sample_essays")
	e := New(nil, scoring.NewMockScorer(), WithCorpusDir(missing))
	report, err := e.Evaluate(context.Background(), Submission{Text: essay})
	if err != nil {
		t.Fatal(err)
	}
	if !report.Plagiarism.CorpusMissing || report.Plagiarism.Warning == "" {
		t.Errorf("expected corpus warning, got %+v", report.Plagiarism)
	}
	if report.Verdict != models.VerdictMostlyOriginal {
		t.Errorf("verdict = %s", report.Verdict)
	}
}

func TestEvaluate_threshold(t *testing.T) {
	// "abcd" vs "abce": 3 of 4 characters match, 75%.
	dir := corpus(t, map[string]string{"ref.txt": "abce"})
	for _, tt := range []struct {
		threshold float64
		want      models.Verdict
	}{
		{30, models.VerdictHighPlagiarism},
		{75, models.VerdictMostlyOriginal},
		{80, models.VerdictMostlyOriginal},
	} {
		e := New(nil, scoring.NewMockScorer(), WithCorpusDir(dir), WithThreshold(tt.threshold))
		report, err := e.Evaluate(context.Background(), Submission{Text: "abcd"})
		if err != nil {
			t.Fatal(err)
		}
		if report.Verdict != tt.want {
			t.Errorf("threshold %v: verdict = %s (percent %v), want %s", tt.threshold, report.Verdict, report.Plagiarism.Percent, tt.want)
		}
	}
}

func TestEvaluate_savesToStore(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	e := New(nil, scoring.NewMockScorer(), WithCorpusDir(t.TempDir()), WithStore(store))
	report, err := e.Evaluate(context.Background(), Submission{Name: "a.txt", Text: essay})
	if err != nil {
		t.Fatal(err)
	}
	got, err := store.GetReport(context.Background(), report.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.SubmissionName != "a.txt" || got.Fingerprint != report.Fingerprint {
		t.Errorf("stored report = %+v", got)
	}
}

func TestEvaluate_storeFailureIsNotFatal(t *testing.T) {
	e := New(nil, scoring.NewMockScorer(), WithCorpusDir(t.TempDir()), WithStore(failingStore{}))
	report, err := e.Evaluate(context.Background(), Submission{Text: essay})
	if err != nil {
		t.Fatalf("save failure should not be returned: %v", err)
	}
	if report == nil {
		t.Fatal("report should be returned")
	}
}

func TestCheck(t *testing.T) {
	dir := corpus(t, map[string]string{"ref.txt": "Hello, World!"})
	e := New(nil, scoring.NewMockScorer(), WithCorpusDir(dir))
	got := e.Check("hello world")
	if got.Source != "ref.txt" || got.Percent != 100 {
		t.Errorf("Check = %+v", got)
	}
}

func TestEvaluate_nilScorer(t *testing.T) {
	e := New(nil, nil, WithCorpusDir(t.TempDir()))
	report, err := e.Evaluate(context.Background(), Submission{Text: essay})
	if err != nil {
		t.Fatal(err)
	}
	if report.ScoringError != ErrNoScorer.Error() {
		t.Errorf("ScoringError = %q", report.ScoringError)
	}
}

func TestNew_defaults(t *testing.T) {
	e := New(nil, scoring.NewMockScorer())
	if e.CorpusDir() != "sample_essays" {
		t.Errorf("corpus dir = %s", e.CorpusDir())
	}
	if e.Threshold() != DefaultThreshold {
		t.Errorf("threshold = %v", e.Threshold())
	}
	if e.Store() != nil {
		t.Error("store should be nil by default")
	}
}

func TestEvaluate_logsResubmission(t *testing.T) {
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "reports.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	core, logs := observer.New(zap.InfoLevel)
	e := New(nil, scoring.NewMockScorer(), WithCorpusDir(t.TempDir()), WithStore(store), WithLogger(zap.New(core)))
	first, err := e.Evaluate(context.Background(), Submission{Text: essay})
	if err != nil {
		t.Fatal(err)
	}
	if n := logs.FilterMessage("resubmission detected").Len(); n != 0 {
		t.Fatalf("first submission logged %d resubmissions", n)
	}
	if _, err := e.Evaluate(context.Background(), Submission{Text: "  " + essay}); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("resubmission detected").All()
	if len(entries) != 1 {
		t.Fatalf("got %d resubmission entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["last_report"] != first.ID || fields["previous_reports"] != int64(1) {
		t.Errorf("fields = %v", fields)
	}
}
