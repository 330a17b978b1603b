// Package evaluator produces a full report for a submission: a quality
// scorecard from the scoring service plus the corpus plagiarism check.
package evaluator

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/kensa/internal/extract"
	"github.com/hyperjump/kensa/internal/fingerprint"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/scanner"
	"github.com/hyperjump/kensa/internal/scoring"
	"github.com/hyperjump/kensa/internal/storage"
	"github.com/hyperjump/kensa/pkg/utils"
)

// DefaultThreshold is the plagiarism percent above which a report is flagged.
const DefaultThreshold = 30.0

var (
	// ErrEmptySubmission is returned when a submission has no usable text.
	ErrEmptySubmission = errors.New("submission has no text")
	// ErrNoScorer is recorded on reports from an evaluator built without a scorer.
	ErrNoScorer = errors.New("no scorer configured")
)

// Submission is the input to Evaluate. Text wins over Content when it is not blank.
// Name labels the report; FileName is the uploaded file's name and only selects
// the extraction format. When FileName is empty, Name is used for both.
type Submission struct {
	Name     string
	FileName string
	Text     string
	Content  []byte
}

// Evaluator ties the scorer, the corpus scanner and the optional report store together.
type Evaluator struct {
	scanner   *scanner.Scanner
	extractor *extract.Extractor
	scorer    scoring.Scorer
	store     storage.Storage
	corpusDir string
	threshold float64
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Evaluator) { e.logger = l }
}

// WithStore saves every report to store.
func WithStore(store storage.Storage) Option {
	return func(e *Evaluator) { e.store = store }
}

// WithCorpusDir sets the reference corpus directory.
func WithCorpusDir(dir string) Option {
	return func(e *Evaluator) {
		if dir != "" {
			e.corpusDir = dir
		}
	}
}

// WithThreshold sets the plagiarism verdict threshold in percent.
func WithThreshold(percent float64) Option {
	return func(e *Evaluator) {
		if percent > 0 {
			e.threshold = percent
		}
	}
}

// WithExtractor sets the extractor used for uploaded files.
func WithExtractor(x *extract.Extractor) Option {
	return func(e *Evaluator) {
		if x != nil {
			e.extractor = x
		}
	}
}

// New creates an evaluator. scn may be nil for a default scanner. scorer may be
// nil for check-only use; Evaluate then records ErrNoScorer on every report.
func New(scn *scanner.Scanner, scorer scoring.Scorer, opts ...Option) *Evaluator {
	if scorer == nil {
		scorer = scoring.NewUnavailableScorer(ErrNoScorer)
	}
	e := &Evaluator{
		scorer:    scorer,
		extractor: extract.NewExtractor(),
		corpusDir: scanner.DefaultCorpusDir,
		threshold: DefaultThreshold,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	if scn == nil {
		scn = scanner.NewScanner(e.extractor, scanner.WithLogger(e.logger))
	}
	e.scanner = scn
	return e
}

// CorpusDir returns the corpus directory scanned by Check and Evaluate.
func (e *Evaluator) CorpusDir() string {
	return e.corpusDir
}

// Threshold returns the plagiarism verdict threshold in percent.
func (e *Evaluator) Threshold() float64 {
	return e.threshold
}

// Scanner returns the corpus scanner.
func (e *Evaluator) Scanner() *scanner.Scanner {
	return e.scanner
}

// ScorerName identifies the configured scorer.
func (e *Evaluator) ScorerName() string {
	return e.scorer.Name()
}

// Store returns the report store, or nil when reports are not persisted.
func (e *Evaluator) Store() storage.Storage {
	return e.store
}

// Check runs only the corpus scan for raw text.
func (e *Evaluator) Check(raw string) models.MatchResult {
	return e.scanner.Check(raw, e.corpusDir)
}

// SubmissionText resolves the text of sub. Extraction failures yield "".
func (e *Evaluator) SubmissionText(sub Submission) string {
	if !utils.IsBlank(sub.Text) {
		return sub.Text
	}
	if len(sub.Content) == 0 {
		return ""
	}
	fileName := sub.FileName
	if fileName == "" {
		fileName = sub.Name
	}
	text, err := e.extractor.ExtractReader(bytes.NewReader(sub.Content), fileName)
	if err != nil {
		e.logger.Debug("submission extraction failed", zap.String("file", fileName), zap.Error(err))
		return ""
	}
	return text
}

// Evaluate scores the submission and checks it against the corpus.
// A scoring failure does not abort: the report carries ScoringError instead of a Scorecard.
func (e *Evaluator) Evaluate(ctx context.Context, sub Submission) (*models.Report, error) {
	text := e.SubmissionText(sub)
	if utils.IsBlank(text) {
		return nil, ErrEmptySubmission
	}
	text = strings.TrimSpace(text)

	report := &models.Report{
		ID:             uuid.NewString(),
		SubmissionName: sub.Name,
		Fingerprint:    fingerprint.Of(text),
		Chars:          utf8.RuneCountInString(text),
		CreatedAt:      e.now().UTC(),
	}

	scorecard, err := e.scorer.Evaluate(ctx, text)
	if err != nil {
		e.logger.Warn("scoring failed", zap.String("scorer", e.scorer.Name()), zap.Error(err))
		report.ScoringError = err.Error()
	} else {
		report.Scorecard = scorecard
	}

	match := e.Check(text)
	report.Plagiarism = &match
	report.Verdict = models.VerdictFor(match.Percent, e.threshold)

	if e.store != nil {
		e.logResubmission(ctx, report)
		if err := e.store.SaveReport(ctx, report); err != nil {
			e.logger.Error("failed to save report", zap.String("id", report.ID), zap.Error(err))
		}
	}
	e.logger.Info("submission evaluated",
		zap.String("id", report.ID),
		zap.String("name", report.SubmissionName),
		zap.Float64("plagiarism_percent", match.Percent),
		zap.String("source", match.Source),
		zap.Bool("scored", report.Scorecard != nil),
	)
	return report, nil
}

// logResubmission notes when the same text has been evaluated before.
func (e *Evaluator) logResubmission(ctx context.Context, report *models.Report) {
	previous, err := e.store.FindByFingerprint(ctx, report.Fingerprint)
	if err != nil {
		e.logger.Warn("failed to look up previous reports", zap.Error(err))
		return
	}
	if len(previous) == 0 {
		return
	}
	e.logger.Info("resubmission detected",
		zap.String("fingerprint", report.Fingerprint),
		zap.Int("previous_reports", len(previous)),
		zap.String("last_report", previous[0].ID),
	)
}
