// Package storage defines the persistence interface for evaluation reports.
package storage

import (
	"context"
	"errors"

	"github.com/hyperjump/kensa/internal/models"
)

// ErrNotFound is returned when a report does not exist.
var ErrNotFound = errors.New("report not found")

// Storage defines report persistence operations.
type Storage interface {
	SaveReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	DeleteReport(ctx context.Context, id string) error
	// ListReports returns reports newest first.
	ListReports(ctx context.Context, offset, limit int) ([]*models.Report, error)
	// FindByFingerprint returns every report for the same submission text, newest first.
	FindByFingerprint(ctx context.Context, fingerprint string) ([]*models.Report, error)

	CountReports(ctx context.Context) (int64, error)

	Close() error
}
