package sourceparser

import "testing"

func TestCallTailIdentifier(t *testing.T) {
	cases := map[string]string{
		"c()":         "c",
		"a.b.c(x)":    "c",
		"a.b.c(x, y)": "c",
		"  c()":       "c",
		"":            "",
	}
	for in, want := range cases {
		if got := callTailIdentifier(in); got != want {
			t.Errorf("callTailIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFuzzyRatioIdenticalAndEmpty(t *testing.T) {
	if got := fuzzyRatio("/login", "/login"); got != 100 {
		t.Errorf("identical strings should score 100, got %v", got)
	}
	if got := fuzzyRatio("/login", ""); got != 0 {
		t.Errorf("empty operand should score 0, got %v", got)
	}
	if got := fuzzyRatio("", ""); got != 100 {
		t.Errorf("two empty strings are equal, want 100, got %v", got)
	}
}

func TestFuzzyRatioCloserStringsScoreHigher(t *testing.T) {
	close := fuzzyRatio(`("/login")`, "login")
	far := fuzzyRatio(`("/get-file")`, "login")
	if close <= far {
		t.Errorf("expected closer match to score higher: close=%v far=%v", close, far)
	}
}
