package fingerprint

import (
	"strings"
	"testing"
)

func TestOf(t *testing.T) {
	id1 := Of("The cat sat.")
	id2 := Of("The cat sat.")
	if id1 != id2 {
		t.Errorf("same text should give same fingerprint: %q vs %q", id1, id2)
	}
	if !strings.HasPrefix(id1, prefix) {
		t.Errorf("fingerprint should have prefix %q: got %q", prefix, id1)
	}
	if len(id1) != len(prefix)+64 {
		t.Errorf("unexpected length: %q", id1)
	}
}

func TestOf_differentTexts(t *testing.T) {
	if Of("the cat sat") == Of("the dog sat") {
		t.Error("different texts should give different fingerprints")
	}
}

func TestOf_normalized(t *testing.T) {
	id1 := Of("The  Cat, sat!")
	id2 := Of("the cat sat")
	if id1 != id2 {
		t.Errorf("texts differing only in case/punctuation should match: %q vs %q", id1, id2)
	}
}
