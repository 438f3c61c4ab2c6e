package domain

import "fmt"

// Reference is one bibliographic entry extracted from a reference list.
// Authors preserve citation order; DOI, when present, is lowercased with
// any URL prefix and trailing punctuation stripped.
type Reference struct {
	RawCitation string
	Title       string
	Authors     []string
	DOI         string
	ArxivID     string
}

// HasTitle reports whether the reference carries a non-empty title. A
// reference without a title is never emitted except for skip accounting.
func (r Reference) HasTitle() bool {
	return r.Title != ""
}

func (r Reference) String() string {
	if r.Title != "" {
		return fmt.Sprintf("%q (%d authors)", r.Title, len(r.Authors))
	}
	return r.RawCitation
}

// SkipStats counts references filtered out during extraction, keyed by the
// gate that dropped them. Counters are monotone and safe for a single
// extraction run; see internal/extract for the thread-safe accumulator.
type SkipStats struct {
	TotalRaw   int
	URLOnly    int
	ShortTitle int
	NoTitle    int
	NoAuthors  int
}

// ExtractionResult is the product of extracting references from one file:
// the surviving references plus accounting for everything filtered out.
type ExtractionResult struct {
	References []Reference
	Skip       SkipStats
}
