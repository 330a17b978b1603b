// Package normalize canonicalizes text for similarity comparison.
package normalize

import "strings"

// Text lowercases s, replaces every character outside [a-z0-9 ] with a space,
// collapses runs of spaces and trims both ends. Lowercasing happens first so
// uppercase letters survive as letters. Text is idempotent.
func Text(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}
