// Package models defines core data structures for documents, match results, scorecards, and reports.
package models

import (
	"path/filepath"
	"strings"
)

// Format is the declared format of a document, derived from its filename suffix.
type Format string

const (
	FormatText        Format = "text"
	FormatPDF         Format = "pdf"
	FormatDOCX        Format = "docx"
	FormatUnsupported Format = "unsupported"
)

// SupportedExtensions lists the filename suffixes with a known format.
func SupportedExtensions() []string {
	return []string{".txt", ".pdf", ".docx"}
}

// FormatFromName returns the format for name based on its extension (case-insensitive).
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt":
		return FormatText
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	default:
		return FormatUnsupported
	}
}

// CorpusEntry describes one file in the reference corpus.
type CorpusEntry struct {
	Name        string `json:"name"`
	Format      Format `json:"format"`
	SizeBytes   int64  `json:"size_bytes"`
	Comparable  bool   `json:"comparable"`
	Chars       int    `json:"chars"`
	ExtractNote string `json:"extract_note,omitempty"`
}
