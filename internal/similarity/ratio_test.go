package similarity

import (
	"math"
	"testing"
	"unicode/utf8"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"both empty", "", "", 1.0},
		{"one empty", "abc", "", 0.0},
		{"shifted", "abcd", "bcde", 0.75},
		{"one letter off", "Jon Smyth", "Jon Smith", 16.0 / 18.0},
		{"dropped letter and vowel", "John Smith", "Jon Smyth", 16.0 / 19.0},
		{"abbreviated first name", "Robert Brown", "Rob Browne", 18.0 / 22.0},
		{"accents count as different runes", "José Núñez", "Jose Nunez", 0.7},
		{"interleaved blocks", "qabxcd", "abycdf", 8.0 / 12.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Ratio(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatio_Identical(t *testing.T) {
	for _, s := range []string{"a", "Jane Smith", "T-M. G. Chu", "Ångström"} {
		if got := Ratio(s, s); got != 1.0 {
			t.Errorf("Ratio(%q, %q) = %v, want 1", s, s, got)
		}
	}
}

func TestCloseMatches(t *testing.T) {
	candidates := []string{"Jane Smyth", "Jane Smith", "Jane Smithe", "Jan Smith", "Bob Stone"}

	got := CloseMatches("Jane Smith", candidates, 3, 0.75)
	want := []string{"Jane Smith", "Jane Smithe", "Jan Smith"}
	if len(got) != len(want) {
		t.Fatalf("CloseMatches returned %d matches, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i].Candidate != want[i] {
			t.Fatalf("match %d = %q, want %q (all: %v)", i, got[i].Candidate, want[i], got)
		}
	}

	if got := CloseMatches("Jane Smith", candidates, 0, 0.75); got != nil {
		t.Fatalf("n=0 should return nil, got %v", got)
	}
	if got := CloseMatches("Zed", candidates, 3, 0.75); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestCloseMatches_TiesKeepCandidateOrder(t *testing.T) {
	// "A. Smith" and "C. Smith" both differ from "B. Smith" by one rune.
	got := CloseMatches("B. Smith", []string{"C. Smith", "A. Smith"}, 2, 0.5)
	if len(got) != 2 || got[0].Candidate != "C. Smith" || got[1].Candidate != "A. Smith" {
		t.Fatalf("unexpected tie order: %v", got)
	}
}

func FuzzRatio(f *testing.F) {
	f.Add("Jane Smith", "Jane Smyth")
	f.Add("", "x")
	f.Add("Y.-H. Lu", "Y. H. Lu")
	f.Fuzz(func(t *testing.T, a, b string) {
		if !utf8.ValidString(a) || !utf8.ValidString(b) {
			t.Skip()
		}
		r := Ratio(a, b)
		if r < 0 || r > 1 {
			t.Fatalf("Ratio(%q, %q) = %v out of range", a, b, r)
		}
		if Ratio(a, a) != 1 {
			t.Fatalf("Ratio(%q, %q) != 1", a, a)
		}
	})
}
