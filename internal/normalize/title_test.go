package normalize

import "testing"

func TestTitleStripsDiacriticsAndPunctuation(t *testing.T) {
	got := Title("Attention Is All You Need!")
	want := "attentionisallyouneed"
	if got != want {
		t.Fatalf("Title = %q, want %q", got, want)
	}
}

func TestTitleDecodesHTMLEntities(t *testing.T) {
	got := Title("Tom &amp; Jerry")
	want := "tomjerry"
	if got != want {
		t.Fatalf("Title = %q, want %q", got, want)
	}
}

func TestTitleRemovesDiacriticalMarks(t *testing.T) {
	got := Title("Müller Schön")
	want := "mullerschon"
	if got != want {
		t.Fatalf("Title = %q, want %q", got, want)
	}
}

func TestTitleIsIdempotent(t *testing.T) {
	s := "Some Title With Accents: café, naïve"
	once := Title(s)
	twice := Title(once)
	if once != twice {
		t.Fatalf("Title is not idempotent: %q vs %q", once, twice)
	}
}

func TestMatchExactNormalizedEquality(t *testing.T) {
	m := NewMatcher()
	if !m.Match("Attention Is All You Need", "attention is all you need!!!") {
		t.Fatalf("expected equal-after-normalization titles to match")
	}
}

func TestMatchRejectsEmptyTitles(t *testing.T) {
	m := NewMatcher()
	if m.Match("", "Attention Is All You Need") {
		t.Fatalf("expected an empty query to never match")
	}
	if m.Match("Attention Is All You Need", "") {
		t.Fatalf("expected an empty candidate to never match")
	}
	if m.Match("!!!", "???") {
		t.Fatalf("expected two titles with nothing but punctuation to never match")
	}
}

func TestMatchFuzzyNearMiss(t *testing.T) {
	m := NewMatcher()
	if !m.Match("Attention Is All You Need", "Attention is all you need ") {
		t.Fatalf("expected trailing whitespace difference to still match")
	}
}

func TestMatchRejectsUnrelatedTitles(t *testing.T) {
	m := NewMatcher()
	if m.Match("Attention Is All You Need", "Deep Residual Learning for Image Recognition") {
		t.Fatalf("did not expect unrelated titles to match")
	}
}

func TestRatioIdenticalStringsIsOne(t *testing.T) {
	if r := Ratio("abc", "abc"); r != 1.0 {
		t.Fatalf("expected ratio 1.0 for identical strings, got %v", r)
	}
}

func TestRatioBothEmptyIsOne(t *testing.T) {
	if r := Ratio("", ""); r != 1.0 {
		t.Fatalf("expected ratio 1.0 for two empty strings, got %v", r)
	}
}

func TestRatioOneEmptyIsZero(t *testing.T) {
	if r := Ratio("abc", ""); r != 0.0 {
		t.Fatalf("expected ratio 0.0 when one side is empty, got %v", r)
	}
}

func TestRatioIsSymmetric(t *testing.T) {
	a, b := "kitten", "sitting"
	if Ratio(a, b) != Ratio(b, a) {
		t.Fatalf("expected Ratio to be symmetric")
	}
}

func TestRatioPartialOverlap(t *testing.T) {
	r := Ratio("abcdef", "abcxyz")
	if r <= 0 || r >= 1 {
		t.Fatalf("expected a partial overlap ratio strictly between 0 and 1, got %v", r)
	}
}
