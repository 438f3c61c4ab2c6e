package domain

import "time"

// EventKind tags a ProgressEvent's variant.
type EventKind int

const (
	EventExtractionStarted EventKind = iota
	EventExtractionComplete
	EventExtractionFailed
	EventChecking
	EventDbComplete
	EventRetry
	EventResult
	EventPaperComplete
	EventBatchComplete
)

// ProgressEvent is the typed, best-effort narration of both the extraction
// and federation phases (§4.K). Within one reference, Checking -> (DbComplete)*
// -> Result is totally ordered; across references or papers no ordering is
// guaranteed.
type ProgressEvent struct {
	Kind EventKind

	// Paper-level fields.
	Paper          string // file path or identifier
	Err            error
	RefCount       int
	References     []Reference
	Skip           SkipStats
	Results        []ValidationResult

	// Reference-level fields.
	Reference Reference
	DB        string
	Success   bool
	Elapsed   time.Duration
	Result    ValidationResult
}
