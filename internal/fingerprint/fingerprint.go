// Package fingerprint derives a stable identifier from submission text, so
// resubmissions of the same essay can be found in the report history.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/hyperjump/kensa/internal/normalize"
)

const prefix = "sha256:"

// Of returns the fingerprint of text. Texts that normalize to the same string
// (case, punctuation and spacing differences) share a fingerprint.
func Of(text string) string {
	hash := sha256.Sum256([]byte(normalize.Text(text)))
	return prefix + hex.EncodeToString(hash[:])
}
