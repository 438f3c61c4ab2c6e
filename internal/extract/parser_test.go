package extract

import (
	"reflect"
	"strings"
	"testing"
)

// TestParseRecordScenarioFour exercises spec.md §8 scenario 4 literally: a
// bracketed-numeric citation with an "Initial. Surname and Initial.
// Surname." author block followed by a title whose own last word happens
// to be a single capital letter, the case that previously defeated
// findAuthorBlockEnd.
func TestParseRecordScenarioFour(t *testing.T) {
	record := "[12] A. Smith and B. Jones. A Study of X. In Proc. ABC, 2021."
	ref, reason := ParseRecord(record, nil)
	if reason != Kept {
		t.Fatalf("expected record to be kept, got skip reason %d", reason)
	}
	if ref.Title != "A Study of X" {
		t.Fatalf("Title = %q, want %q", ref.Title, "A Study of X")
	}
	want := []string{"A. Smith", "B. Jones"}
	if !reflect.DeepEqual(ref.Authors, want) {
		t.Fatalf("Authors = %v, want %v", ref.Authors, want)
	}
}

func TestParseRecordSingleAuthor(t *testing.T) {
	record := "[1] A. Smith. A Study of Y. In Proc. ABC, 2021."
	ref, reason := ParseRecord(record, nil)
	if reason != Kept {
		t.Fatalf("expected record to be kept, got skip reason %d", reason)
	}
	if ref.Title != "A Study of Y" {
		t.Fatalf("Title = %q, want %q", ref.Title, "A Study of Y")
	}
	if !reflect.DeepEqual(ref.Authors, []string{"A. Smith"}) {
		t.Fatalf("Authors = %v, want [A. Smith]", ref.Authors)
	}
}

func TestParseRecordThreeAuthors(t *testing.T) {
	record := "[3] A. Smith, B. Jones and C. Lee. A Longer Study Title. In Proc. ABC, 2021."
	ref, reason := ParseRecord(record, nil)
	if reason != Kept {
		t.Fatalf("expected record to be kept, got skip reason %d", reason)
	}
	if ref.Title != "A Longer Study Title" {
		t.Fatalf("Title = %q, want %q", ref.Title, "A Longer Study Title")
	}
	if len(ref.Authors) != 3 {
		t.Fatalf("expected 3 authors, got %v", ref.Authors)
	}
}

func TestParseRecordURLOnlyIsSkipped(t *testing.T) {
	_, reason := ParseRecord("[4] https://example.com/paper.pdf", nil)
	if reason != SkipURLOnly {
		t.Fatalf("expected SkipURLOnly, got %d", reason)
	}
}

func TestParseRecordShortTitleIsSkipped(t *testing.T) {
	_, reason := ParseRecord("[5] A. Smith. No. In Proc. ABC, 2021.", nil)
	if reason != SkipShortTitle {
		t.Fatalf("expected SkipShortTitle, got %d", reason)
	}
}

func TestParseRecordEmDashReusesPreviousAuthors(t *testing.T) {
	prev := []string{"A. Smith", "B. Jones"}
	record := "[13] —. Another Study of X. In Proc. ABC, 2022."
	ref, reason := ParseRecord(record, prev)
	if reason != Kept {
		t.Fatalf("expected record to be kept, got skip reason %d", reason)
	}
	if !reflect.DeepEqual(ref.Authors, prev) {
		t.Fatalf("Authors = %v, want %v (carried from previous record)", ref.Authors, prev)
	}
	if !strings.Contains(ref.RawCitation, "—") {
		t.Fatalf("RawCitation = %q, want it to still contain the em-dash", ref.RawCitation)
	}
}

func TestExtractDOIStripsTrailingPunctuation(t *testing.T) {
	got := ExtractDOI("see doi:10.1234/ABCD.5678.")
	want := "10.1234/abcd.5678"
	if got != want {
		t.Fatalf("ExtractDOI = %q, want %q", got, want)
	}
}

func TestExtractArxivIDModernStyle(t *testing.T) {
	got := ExtractArxivID("arXiv:2107.12345v2")
	if got != "2107.12345v2" {
		t.Fatalf("ExtractArxivID = %q, want 2107.12345v2", got)
	}
}

func TestExtractArxivIDLegacyStyle(t *testing.T) {
	got := ExtractArxivID("arXiv:hep-th/9901001")
	if got != "hep-th/9901001" {
		t.Fatalf("ExtractArxivID = %q, want hep-th/9901001", got)
	}
}
