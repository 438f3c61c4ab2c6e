package extract

import (
	"github.com/paper-app/citeguard/internal/domain"
	"github.com/paper-app/citeguard/internal/normalize"
)

// Extractor runs the full B->C->D->E pipeline: text normalization, section
// location, segmentation, and per-record parsing, producing an
// ExtractionResult with skip accounting (spec §4 A-E, L).
type Extractor struct {
	Config Config
}

// NewExtractor builds an Extractor with DefaultConfig.
func NewExtractor() *Extractor {
	return &Extractor{Config: DefaultConfig()}
}

// Extract runs the pipeline over raw document text (already having page
// and line breaks preserved as "\n" per the PDF backend contract in §6).
func (e *Extractor) Extract(rawText string) (domain.ExtractionResult, error) {
	text := normalize.ExpandLigatures(rawText)
	text = normalize.DehyphenateSoftWraps(text)

	region, err := LocateSection(text, e.Config.headingVocab())
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	seg, err := Segment(region, e.Config.ScoringWeights)
	if err != nil {
		return domain.ExtractionResult{}, err
	}

	return e.ParseRecords(seg.Records), nil
}

// ParseRecords runs the reference parser and filter gates (§4.E) over an
// already-segmented list of records, accumulating skip statistics. BBL and
// BIB ingesters call this directly, bypassing section location and
// segmentation (§6).
func (e *Extractor) ParseRecords(records []string) domain.ExtractionResult {
	acc := &SkipAccumulator{}
	acc.AddRaw(len(records))

	var out []domain.Reference
	var prevAuthors []string
	for _, rec := range records {
		ref, reason := ParseRecord(rec, prevAuthors)
		if reason != Kept {
			acc.Record(reason)
			continue
		}
		// An em-dash record with no preceding authors (e.g. the very first
		// record in a malformed list) has no authors to carry forward; treat
		// it as a drop rather than emit a Reference with a blank author
		// list, keeping the total_raw >= sum(skip buckets)+len(refs)
		// invariant exact rather than merely an inequality.
		if len(ref.Authors) == 0 {
			acc.RecordNoAuthors()
			prevAuthors = ref.Authors
			continue
		}
		out = append(out, ref)
		prevAuthors = ref.Authors
	}

	return domain.ExtractionResult{
		References: out,
		Skip:       acc.Snapshot(),
	}
}
