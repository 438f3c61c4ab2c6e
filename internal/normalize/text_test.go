package normalize

import "testing"

func TestExpandLigatures(t *testing.T) {
	got := ExpandLigatures("ﬁnally ﬂying eﬃciently")
	want := "finally flying efficiently"
	if got != want {
		t.Fatalf("ExpandLigatures = %q, want %q", got, want)
	}
}

func TestDehyphenateSoftWrapsJoinsWrappedWord(t *testing.T) {
	got := DehyphenateSoftWraps("hallu-\ncinated")
	want := "hallucinated"
	if got != want {
		t.Fatalf("DehyphenateSoftWraps = %q, want %q", got, want)
	}
}

func TestDehyphenateSoftWrapsLeavesRealHyphenAtLineEnd(t *testing.T) {
	// a hyphen followed by a non-letter (e.g. end of sentence then newline)
	// must not be treated as a soft wrap.
	got := DehyphenateSoftWraps("well-\n42 citations")
	want := "well-\n42 citations"
	if got != want {
		t.Fatalf("DehyphenateSoftWraps = %q, want %q", got, want)
	}
}

func TestDehyphenateSoftWrapsLeavesMidLineHyphenAlone(t *testing.T) {
	got := DehyphenateSoftWraps("a well-known result")
	want := "a well-known result"
	if got != want {
		t.Fatalf("DehyphenateSoftWraps = %q, want %q", got, want)
	}
}

func TestCollapseWhitespacePreservesNewlines(t *testing.T) {
	got := CollapseWhitespace("line one   has   spaces\nline   two")
	want := "line one has spaces\nline two"
	if got != want {
		t.Fatalf("CollapseWhitespace = %q, want %q", got, want)
	}
}

func TestCollapseWhitespaceAllFlattensNewlines(t *testing.T) {
	got := CollapseWhitespaceAll("line one\n\n  line two\ttabbed")
	want := "line one line two tabbed"
	if got != want {
		t.Fatalf("CollapseWhitespaceAll = %q, want %q", got, want)
	}
}
