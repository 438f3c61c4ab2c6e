package offline

import (
	"testing"
	"time"
)

func TestCheckStalenessZeroBuildDateIsAlwaysStale(t *testing.T) {
	report := checkStaleness(Metadata{}, 30, time.Now())
	if !report.IsStale {
		t.Fatalf("expected a missing build_date to be reported stale")
	}
	if report.AgeDays != nil {
		t.Fatalf("expected no age for a missing build_date")
	}
}

func TestCheckStalenessBelowThreshold(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	built := now.Add(-10 * 24 * time.Hour)
	report := checkStaleness(Metadata{BuildDate: built.Unix()}, 30, now)
	if report.IsStale {
		t.Fatalf("expected 10-day-old index under a 30-day threshold to be fresh")
	}
	if report.AgeDays == nil || *report.AgeDays < 9.9 || *report.AgeDays > 10.1 {
		t.Fatalf("expected age_days near 10, got %v", report.AgeDays)
	}
}

func TestCheckStalenessAtOrAboveThreshold(t *testing.T) {
	now := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	built := now.Add(-30 * 24 * time.Hour)
	report := checkStaleness(Metadata{BuildDate: built.Unix()}, 30, now)
	if !report.IsStale {
		t.Fatalf("expected age_days == thresholdDays to count as stale")
	}
}

func TestReadWriteMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	authorCount := 42
	want := Metadata{
		SchemaVersion:    "v1",
		BuildDate:        1700000000,
		PublicationCount: 1234,
		AuthorCount:      &authorCount,
		CommitSHA:        "deadbeef",
	}
	if err := writeMetadata(dir, want); err != nil {
		t.Fatalf("writeMetadata: %v", err)
	}
	got, err := readMetadata(dir)
	if err != nil {
		t.Fatalf("readMetadata: %v", err)
	}
	if got.SchemaVersion != want.SchemaVersion || got.BuildDate != want.BuildDate || got.PublicationCount != want.PublicationCount {
		t.Fatalf("round-tripped metadata mismatch: got %+v, want %+v", got, want)
	}
	if got.AuthorCount == nil || *got.AuthorCount != authorCount {
		t.Fatalf("expected author_count %d to round-trip, got %v", authorCount, got.AuthorCount)
	}
}
