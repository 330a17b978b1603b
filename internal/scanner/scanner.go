// Package scanner compares a submission against every document in a reference corpus directory.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/kensa/internal/extract"
	"github.com/hyperjump/kensa/internal/models"
	"github.com/hyperjump/kensa/internal/normalize"
	"github.com/hyperjump/kensa/internal/similarity"
	"github.com/hyperjump/kensa/pkg/utils"
	"go.uber.org/zap"
)

// DefaultCorpusDir is the corpus location used when none is configured.
const DefaultCorpusDir = "sample_essays"

const (
	defaultPassageMinChars = 40
	defaultMaxPassages     = 3
	maxPassageChars        = 240
)

// Skip reasons recorded in MatchResult.Skipped.
const (
	reasonDirectory   = "directory"
	reasonUnsupported = "unsupported format"
	reasonEmpty       = "no extractable text"
)

// Scanner performs a linear, uncached scan of a corpus directory. Each call
// re-reads the directory; nothing is shared between scans.
type Scanner struct {
	extractor       *extract.Extractor
	logger          *zap.Logger
	passageMinChars int
	maxPassages     int
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithLogger sets a logger for skipped entries and corpus warnings.
func WithLogger(l *zap.Logger) ScannerOption {
	return func(s *Scanner) { s.logger = l }
}

// WithPassages sets how many shared passages are reported for the best match
// and their minimum length in characters. count <= 0 disables passages.
func WithPassages(count, minChars int) ScannerOption {
	return func(s *Scanner) {
		s.maxPassages = count
		s.passageMinChars = minChars
	}
}

// NewScanner creates a scanner. extractor may be nil, in which case a default Extractor is used.
func NewScanner(extractor *extract.Extractor, opts ...ScannerOption) *Scanner {
	if extractor == nil {
		extractor = extract.NewExtractor()
	}
	s := &Scanner{
		extractor:       extractor,
		passageMinChars: defaultPassageMinChars,
		maxPassages:     defaultMaxPassages,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	return s
}

// MissingCorpusWarning is the warning reported when the corpus directory does not exist.
func MissingCorpusWarning(dir string) string {
	return fmt.Sprintf("Folder '%s' not found. Create it and add reference files.", dir)
}

// Check normalizes raw text and scans dir for the best match.
func (s *Scanner) Check(raw, dir string) models.MatchResult {
	return s.ScanBest(normalize.Text(raw), dir)
}

// ScanBest compares normalized text against each document in dir and returns the best match.
//
// Entries are visited in lexicographic name order. Entries that fail extraction
// or yield no text are skipped rather than scored as 0%. Only a strictly greater
// ratio replaces the current best, so ties keep the first entry. A missing
// corpus is not an error: the result has CorpusMissing set and a Warning.
func (s *Scanner) ScanBest(text, dir string) models.MatchResult {
	result := models.MatchResult{Source: models.NoMatch}
	entries, err := readCorpus(dir)
	if err != nil {
		result.CorpusMissing = true
		result.Warning = MissingCorpusWarning(dir)
		s.logger.Warn("corpus directory unavailable", zap.String("dir", dir), zap.Error(err))
		return result
	}

	var bestText string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			result.Skipped = append(result.Skipped, models.SkippedEntry{Name: name, Reason: reasonDirectory})
			continue
		}
		if !extract.Supported(name) {
			result.Skipped = append(result.Skipped, models.SkippedEntry{Name: name, Reason: reasonUnsupported})
			continue
		}
		sample, err := s.extractor.Extract(filepath.Join(dir, name))
		if err != nil {
			s.logger.Debug("corpus entry extraction failed", zap.String("name", name), zap.Error(err))
			result.Skipped = append(result.Skipped, models.SkippedEntry{Name: name, Reason: extractFailureReason(err)})
			continue
		}
		if sample == "" {
			s.logger.Debug("corpus entry has no text", zap.String("name", name))
			result.Skipped = append(result.Skipped, models.SkippedEntry{Name: name, Reason: reasonEmpty})
			continue
		}
		sample = normalize.Text(sample)
		ratio := similarity.Ratio(text, sample)
		result.Compared++
		s.logger.Debug("corpus entry compared", zap.String("name", name), zap.Float64("ratio", ratio))
		if ratio > result.Ratio {
			result.Ratio = ratio
			result.Source = name
			bestText = sample
		}
	}
	result.Percent = utils.Percent(result.Ratio)
	if result.Matched() {
		result.Passages = s.passages(text, bestText)
	}
	s.logger.Debug("corpus scan complete",
		zap.String("dir", dir),
		zap.Int("compared", result.Compared),
		zap.Int("skipped", len(result.Skipped)),
		zap.String("source", result.Source),
		zap.Float64("percent", result.Percent),
	)
	return result
}

func (s *Scanner) passages(text, reference string) []models.Passage {
	if s.maxPassages <= 0 {
		return nil
	}
	blocks := similarity.Blocks(text, reference, s.passageMinChars)
	if len(blocks) > s.maxPassages {
		blocks = blocks[:s.maxPassages]
	}
	out := make([]models.Passage, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, models.Passage{
			Text:            utils.Truncate(b.Text, maxPassageChars),
			SubmissionIndex: b.A,
			ReferenceIndex:  b.B,
		})
	}
	return out
}

// Entries lists the corpus with each entry's format, size, and whether it yields comparable text.
func (s *Scanner) Entries(dir string) ([]models.CorpusEntry, error) {
	entries, err := readCorpus(dir)
	if err != nil {
		return nil, err
	}
	out := make([]models.CorpusEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ce := models.CorpusEntry{Name: name, Format: models.FormatFromName(name)}
		if info, err := entry.Info(); err == nil {
			ce.SizeBytes = info.Size()
		}
		text, err := s.extractor.Extract(filepath.Join(dir, name))
		switch {
		case ce.Format == models.FormatUnsupported:
			ce.ExtractNote = reasonUnsupported
		case err != nil:
			ce.ExtractNote = extractFailureReason(err)
		case text == "":
			ce.ExtractNote = reasonEmpty
		default:
			ce.Comparable = true
			ce.Chars = len(normalize.Text(text))
		}
		out = append(out, ce)
	}
	return out, nil
}

// readCorpus lists dir. os.ReadDir returns entries sorted by filename, which
// fixes the visiting order independently of the filesystem.
func readCorpus(dir string) ([]os.DirEntry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	return os.ReadDir(dir)
}

func extractFailureReason(err error) string {
	var extErr *extract.ExtractionError
	if errors.As(err, &extErr) {
		return fmt.Sprintf("extraction failed: %v", extErr.Err)
	}
	return fmt.Sprintf("extraction failed: %v", err)
}
