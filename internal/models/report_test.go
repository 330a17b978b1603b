package models

import "testing"

func TestVerdictFor(t *testing.T) {
	tests := []struct {
		percent   float64
		threshold float64
		want      Verdict
	}{
		{0, 30, VerdictMostlyOriginal},
		{30, 30, VerdictMostlyOriginal},
		{30.01, 30, VerdictHighPlagiarism},
		{100, 30, VerdictHighPlagiarism},
		{10, 5, VerdictHighPlagiarism},
	}
	for _, tt := range tests {
		if got := VerdictFor(tt.percent, tt.threshold); got != tt.want {
			t.Errorf("VerdictFor(%v, %v) = %q, want %q", tt.percent, tt.threshold, got, tt.want)
		}
	}
}

func TestMatchResult_Matched(t *testing.T) {
	if (&MatchResult{Source: NoMatch}).Matched() {
		t.Error("NoMatch should not be matched")
	}
	if !(&MatchResult{Source: "a.txt"}).Matched() {
		t.Error("named source should be matched")
	}
}
