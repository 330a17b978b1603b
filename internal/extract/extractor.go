// Package extract provides text extraction from plain text, PDF, and DOCX documents.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperjump/kensa/internal/models"
)

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Supported reports whether name has an extension the extractor understands.
func Supported(name string) bool {
	return models.FormatFromName(name) != models.FormatUnsupported
}

// Extract reads the file at path and returns its trimmed text content.
// Files with an unsupported extension yield "" and a nil error without being read.
// Read and parse failures are returned as *ExtractionError.
func (e *Extractor) Extract(path string) (string, error) {
	name := filepath.Base(path)
	format := models.FormatFromName(name)
	if format == models.FormatUnsupported {
		return "", nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", &ExtractionError{Name: name, Format: format, Err: fmt.Errorf("read file: %w", err)}
	}
	return e.extract(name, format, content)
}

// ExtractReader reads r fully and extracts text using name for format detection.
// Used for in-memory uploads.
func (e *Extractor) ExtractReader(r io.Reader, name string) (string, error) {
	format := models.FormatFromName(name)
	if format == models.FormatUnsupported {
		return "", nil
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", &ExtractionError{Name: name, Format: format, Err: fmt.Errorf("read upload: %w", err)}
	}
	return e.extract(name, format, content)
}

func (e *Extractor) extract(name string, format models.Format, content []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch format {
	case models.FormatText:
		text = extractPlain(content)
	case models.FormatPDF:
		text, err = extractPDF(content)
	case models.FormatDOCX:
		text, err = extractDOCX(content)
	default:
		return "", nil
	}
	if err != nil {
		return "", &ExtractionError{Name: name, Format: format, Err: err}
	}
	return strings.TrimSpace(text), nil
}
