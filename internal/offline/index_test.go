package offline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/blevesearch/bleve/v2"
	"github.com/rs/zerolog"
)

// buildTestIndex writes a minimal offline index directory (bleve index,
// sidecar, metadata) to a temp dir, mirroring the layout the out-of-core
// build pipeline produces (spec §6).
func buildTestIndex(t *testing.T, docs map[string]sidecarRecord) string {
	t.Helper()
	dir := t.TempDir()

	idx, err := bleve.New(filepath.Join(dir, bleveSubdir), bleve.NewIndexMapping())
	if err != nil {
		t.Fatalf("bleve.New: %v", err)
	}
	for id, rec := range docs {
		if err := idx.Index(id, bleveDoc{Title: rec.Title}); err != nil {
			t.Fatalf("index %s: %v", id, err)
		}
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close index: %v", err)
	}

	sidecarData, err := json.Marshal(docs)
	if err != nil {
		t.Fatalf("marshal sidecar: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, sidecarFileName), sidecarData, 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	if err := writeMetadata(dir, Metadata{SchemaVersion: "v1", BuildDate: 1700000000, PublicationCount: len(docs)}); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	return dir
}

func TestOpenAndQueryReturnsBestMatchAboveThreshold(t *testing.T) {
	dir := buildTestIndex(t, map[string]sidecarRecord{
		"doc1": {Title: "Attention Is All You Need", Authors: []string{"Ashish Vaswani"}, URL: "https://example.com/1"},
		"doc2": {Title: "Deep Residual Learning for Image Recognition", Authors: []string{"Kaiming He"}, URL: "https://example.com/2"},
	})

	db, err := Open(zerolog.Nop(), dir, 0.9)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	rec, err := db.Query("Attention Is All You Need")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rec == nil {
		t.Fatalf("expected a match, got nil")
	}
	if rec.Title != "Attention Is All You Need" {
		t.Fatalf("expected the Vaswani paper, got %q", rec.Title)
	}
}

func TestQueryReturnsNilBelowThreshold(t *testing.T) {
	dir := buildTestIndex(t, map[string]sidecarRecord{
		"doc1": {Title: "Deep Residual Learning for Image Recognition"},
	})

	db, err := Open(zerolog.Nop(), dir, 0.95)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	rec, err := db.Query("A Completely Unrelated Paper About Gardening")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if rec != nil {
		t.Fatalf("expected no match for an unrelated title, got %+v", rec)
	}
}

func TestOpenDefaultsThresholdWhenUnset(t *testing.T) {
	dir := buildTestIndex(t, map[string]sidecarRecord{"doc1": {Title: "Some Paper"}})
	db, err := Open(zerolog.Nop(), dir, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if db.DefaultThreshold <= 0 {
		t.Fatalf("expected a positive default threshold, got %v", db.DefaultThreshold)
	}
}

func TestCheckStalenessReflectsMetadataBuildDate(t *testing.T) {
	dir := buildTestIndex(t, map[string]sidecarRecord{"doc1": {Title: "Some Paper"}})
	db, err := Open(zerolog.Nop(), dir, 0.9)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	report := db.CheckStaleness(30) // the test index's build date is Nov 2023
	if !report.IsStale {
		t.Fatalf("expected an index built in Nov 2023 to be stale under a 30-day threshold")
	}
}
