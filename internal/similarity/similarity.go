// Package similarity scores normalized strings with longest-matching-block
// (Ratcliff/Obershelp) sequence alignment.
//
// The ratio is 2*M/T where M is the total size of the matching blocks and T the
// combined length of both strings. Blocks are found by taking the longest common
// contiguous run and recursing on the text to its left and right, so verbatim
// copies score higher than reordered content. No junk heuristics are applied.
package similarity

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Block is a contiguous run shared by a and b: a[A:A+Size] == b[B:B+Size].
type Block struct {
	A    int
	B    int
	Size int
	Text string
}

// Ratio returns the similarity of a and b in [0,1].
// If either string is empty there is no comparable content and the ratio is 0.
// The pair is put in canonical order before alignment, so Ratio(a, b) == Ratio(b, a).
func Ratio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	first, second, _ := canonical(a, b)
	return newMatcher(first, second).Ratio()
}

// Blocks returns the matching blocks between a and b that are at least minSize
// characters long, longest first. Offsets are rune offsets into a and b.
func Blocks(a, b string, minSize int) []Block {
	if a == "" || b == "" {
		return nil
	}
	first, second, swapped := canonical(a, b)
	firstChars := chars(first)
	var blocks []Block
	for _, m := range newMatcher(first, second).GetMatchingBlocks() {
		if m.Size == 0 || m.Size < minSize {
			continue
		}
		blk := Block{A: m.A, B: m.B, Size: m.Size, Text: strings.Join(firstChars[m.A:m.A+m.Size], "")}
		if swapped {
			blk.A, blk.B = blk.B, blk.A
		}
		blocks = append(blocks, blk)
	}
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Size != blocks[j].Size {
			return blocks[i].Size > blocks[j].Size
		}
		return blocks[i].A < blocks[j].A
	})
	return blocks
}

// canonical orders a pair shorter first, then lexicographically.
func canonical(a, b string) (string, string, bool) {
	if len(a) > len(b) || (len(a) == len(b) && a > b) {
		return b, a, true
	}
	return a, b, false
}

func newMatcher(a, b string) *difflib.SequenceMatcher {
	return difflib.NewMatcherWithJunk(chars(a), chars(b), false, nil)
}

// chars splits s into one element per character.
func chars(s string) []string {
	return strings.Split(s, "")
}
