package extract

import (
	"reflect"
	"testing"
)

var extractorTestRecords = []string{
	"[1] A. Smith. A Study of X. In Proc. ABC, 2021.",
	"[2] https://example.com/paper.pdf",
	"[3] A. Smith. No. In Proc. ABC, 2021.",
	"[4] B. Jones and C. Lee. Another Study of Y. In Proc. DEF, 2020.",
}

// TestParseRecordsSkipStatsSumInvariant exercises spec.md §8's skip-stats
// sum invariant: total_raw equals the number of kept references plus every
// skip bucket.
func TestParseRecordsSkipStatsSumInvariant(t *testing.T) {
	e := NewExtractor()
	result := e.ParseRecords(extractorTestRecords)

	sum := len(result.References) + result.Skip.URLOnly + result.Skip.ShortTitle + result.Skip.NoTitle + result.Skip.NoAuthors
	if result.Skip.TotalRaw != sum {
		t.Fatalf("TotalRaw = %d, want sum of kept+skip buckets = %d (skip=%+v, kept=%d)",
			result.Skip.TotalRaw, sum, result.Skip, len(result.References))
	}
	if result.Skip.TotalRaw != len(extractorTestRecords) {
		t.Fatalf("TotalRaw = %d, want %d", result.Skip.TotalRaw, len(extractorTestRecords))
	}
	if result.Skip.URLOnly != 1 {
		t.Fatalf("URLOnly = %d, want 1", result.Skip.URLOnly)
	}
	if result.Skip.ShortTitle != 1 {
		t.Fatalf("ShortTitle = %d, want 1", result.Skip.ShortTitle)
	}
	if len(result.References) != 2 {
		t.Fatalf("expected 2 kept references, got %d: %+v", len(result.References), result.References)
	}
}

// TestParseRecordsIsDeterministic exercises spec.md §8's determinism
// property: identical input yields byte-identical output across runs.
func TestParseRecordsIsDeterministic(t *testing.T) {
	e := NewExtractor()
	first := e.ParseRecords(extractorTestRecords)
	second := e.ParseRecords(extractorTestRecords)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("ParseRecords is not deterministic:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

// TestExtractIsDeterministic runs the full B->C->D->E pipeline twice over
// identical raw text and requires identical results.
func TestExtractIsDeterministic(t *testing.T) {
	text := "Title\n\nReferences\n" + bracketedRegion
	e := NewExtractor()

	first, err := e.Extract(text)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	second, err := e.Extract(text)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Extract is not deterministic:\nfirst  = %+v\nsecond = %+v", first, second)
	}
	if len(first.References) != 3 {
		t.Fatalf("expected 3 references, got %d: %+v", len(first.References), first.References)
	}
}

func TestParseRecordsEmDashWithNoPriorAuthorsIsDroppedNotEmitted(t *testing.T) {
	e := NewExtractor()
	result := e.ParseRecords([]string{"[1] —. A Study With No Prior Authors. In Proc. ABC, 2021."})

	if len(result.References) != 0 {
		t.Fatalf("expected the record to be dropped for lack of authors, got %+v", result.References)
	}
	if result.Skip.NoAuthors != 1 {
		t.Fatalf("NoAuthors = %d, want 1", result.Skip.NoAuthors)
	}
	if result.Skip.TotalRaw != 1 {
		t.Fatalf("TotalRaw = %d, want 1", result.Skip.TotalRaw)
	}
}
