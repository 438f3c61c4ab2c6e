// Package offline implements the local full-text-search candidate backend
// (§4.J): a prebuilt, read-only directory of cached bibliographic records
// queried by fuzzy title match instead of a network round trip.
package offline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Metadata is the small JSON sidecar describing one offline index's
// provenance, written once at build time and never mutated by Query.
type Metadata struct {
	SchemaVersion   string `json:"schema_version"`
	BuildDate       int64  `json:"build_date"` // unix seconds
	PublicationCount int   `json:"publication_count"`
	AuthorCount     *int   `json:"author_count,omitempty"`
	LastSyncDate    string `json:"last_sync_date,omitempty"`
	CommitSHA       string `json:"commit_sha,omitempty"`
}

// StalenessReport is the answer to CheckStaleness.
type StalenessReport struct {
	IsStale   bool
	AgeDays   *float64
	BuildDate *time.Time
}

const metadataFileName = "metadata.json"

func readMetadata(dir string) (Metadata, error) {
	var m Metadata
	data, err := os.ReadFile(filepath.Join(dir, metadataFileName))
	if err != nil {
		return m, fmt.Errorf("read offline metadata: %w", err)
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("parse offline metadata: %w", err)
	}
	return m, nil
}

func writeMetadata(dir string, m Metadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal offline metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), data, 0o644); err != nil {
		return fmt.Errorf("write offline metadata: %w", err)
	}
	return nil
}

// checkStaleness derives the staleness report per spec §4.J:
// age_days = (now - build_date) / 86400; stale iff age_days >= thresholdDays.
// A zero BuildDate (metadata never populated with one) is reported stale
// with no age, matching the invariant that absence of build_date means
// "treat as stale".
func checkStaleness(m Metadata, thresholdDays int, now time.Time) StalenessReport {
	if m.BuildDate == 0 {
		return StalenessReport{IsStale: true}
	}
	built := time.Unix(m.BuildDate, 0).UTC()
	ageDays := now.Sub(built).Hours() / 24
	return StalenessReport{
		IsStale:   ageDays >= float64(thresholdDays),
		AgeDays:   &ageDays,
		BuildDate: &built,
	}
}
