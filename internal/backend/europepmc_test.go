package backend

import "testing"

func TestEuropePMCQueryStripsSpecialChars(t *testing.T) {
	got := europePMCQuery(`A Study of "Quoted" [Bracketed] (Parenthetical) Titles: Subtitle; Notes`)
	for _, r := range got {
		switch r {
		case '"', '\'', '[', ']', '(', ')', '{', '}', ':', ';':
			t.Fatalf("expected special char %q stripped from %q", r, got)
		}
	}
}

func TestEuropePMCQueryTruncatesTo100Runes(t *testing.T) {
	long := ""
	for i := 0; i < 200; i++ {
		long += "a"
	}
	got := europePMCQuery(long)
	if len([]rune(got)) != 100 {
		t.Fatalf("expected truncation to 100 runes, got %d", len([]rune(got)))
	}
}

func TestEuropePMCQueryCollapsesWhitespace(t *testing.T) {
	got := europePMCQuery("Too    Many     Spaces")
	if got != "Too Many Spaces" {
		t.Fatalf("expected collapsed whitespace, got %q", got)
	}
}
