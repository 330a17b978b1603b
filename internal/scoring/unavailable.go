package scoring

import (
	"context"

	"github.com/hyperjump/kensa/internal/models"
)

// UnavailableScorer stands in when a real scorer could not be built, so
// evaluation still runs the corpus scan and records why scoring was skipped.
type UnavailableScorer struct {
	err error
}

// NewUnavailableScorer returns a scorer whose Evaluate always fails with err.
func NewUnavailableScorer(err error) *UnavailableScorer {
	return &UnavailableScorer{err: err}
}

// Name returns "unavailable".
func (u *UnavailableScorer) Name() string {
	return "unavailable"
}

// Evaluate returns the construction error.
func (u *UnavailableScorer) Evaluate(context.Context, string) (*models.Scorecard, error) {
	return nil, u.err
}

// Close is a no-op.
func (u *UnavailableScorer) Close() error {
	return nil
}
