package extract

import (
	"fmt"

	"github.com/hyperjump/kensa/internal/models"
)

// ExtractionError reports a document that could not be read or parsed.
type ExtractionError struct {
	Name   string
	Format models.Format
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.Name, e.Format, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}
