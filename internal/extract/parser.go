package extract

import (
	"regexp"
	"strings"

	"github.com/paper-app/citeguard/internal/domain"
)

var (
	doiRe = regexp.MustCompile(`(?i)10\.\d{4,9}/\S+`)

	// arXiv:YYMM.NNNNN(vN)? — post-2007 style.
	arxivModernRe = regexp.MustCompile(`(?i)arxiv:\s*(\d{4}\.\d{4,5}(?:v\d+)?)`)
	// arXiv:<subject-class>/YYMMNNN — pre-2007 style, e.g. arXiv:hep-th/9901001.
	arxivLegacyRe = regexp.MustCompile(`(?i)arxiv:\s*([a-z-]+(?:\.[A-Z]{2})?/\d{7})`)

	bareURLRe       = regexp.MustCompile(`^\s*(?:\[?\d+\]?[.)]?\s*)?(?:https?://|www\.)\S+\s*$`)
	leadingMarkerRe = regexp.MustCompile(`^\s*(?:\[\d+\]|\(\d+\)|\d+\.)\s*`)
	initialsStopRe  = regexp.MustCompile(`[A-Z]\.\s*$`)
	venueMarkerRe   = regexp.MustCompile(`(?:\bIn\s+[A-Z]|\(\s*(19|20)\d{2}[a-z]?\s*\)|,\s*(19|20)\d{2}[a-z]?\.?\s*$)`)
	emDashLeadRe    = regexp.MustCompile(`^\s*[—–-]{1,2}\s*`)
)

// trailingPunct is stripped from a matched DOI per spec §4.E step 1.
const trailingPunct = ".,;)]"

// ExtractDOI finds and normalizes the first DOI-shaped token in s, or ""
// if none is present. The result is lowercased with surrounding
// punctuation stripped and matches the DOI grammar 10\.\d{4,9}/[^\s]+.
func ExtractDOI(s string) string {
	m := doiRe.FindString(s)
	if m == "" {
		return ""
	}
	m = strings.TrimRight(m, trailingPunct)
	return strings.ToLower(m)
}

// ExtractArxivID finds an arXiv identifier in s, accepting both the
// post-2007 "YYMM.NNNNN" style and the pre-2007 "<subject>/YYMMNNN" style.
func ExtractArxivID(s string) string {
	if m := arxivModernRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := arxivLegacyRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// SkipReason classifies why ParseRecord dropped a record, for skip
// accounting (spec §4.L). Zero value means the record was kept.
type SkipReason int

const (
	Kept SkipReason = iota
	SkipNoTitle
	SkipShortTitle
	SkipURLOnly
)

// ParseRecord extracts DOI, arXiv id, title, and authors from one raw
// segmented record, per spec §4.E. prevAuthors is the immediately
// preceding kept reference's author list, used when the record's author
// block is an em-dash ("same as previous record"). The returned
// Reference's RawCitation is always the (trimmed) input record, even when
// an em-dash elides the author list.
func ParseRecord(record string, prevAuthors []string) (domain.Reference, SkipReason) {
	raw := strings.TrimSpace(record)
	if bareURLRe.MatchString(raw) && !doiRe.MatchString(raw) && arxivModernRe.FindString(raw) == "" && arxivLegacyRe.FindString(raw) == "" {
		return domain.Reference{RawCitation: raw}, SkipURLOnly
	}

	doi := ExtractDOI(raw)
	arxivID := ExtractArxivID(raw)

	body := leadingMarkerRe.ReplaceAllString(raw, "")
	title, authorBlock := splitTitleAndAuthors(body)
	title = strings.Trim(title, ` "'“”‘’`)

	if title == "" {
		return domain.Reference{RawCitation: raw, DOI: doi, ArxivID: arxivID}, SkipNoTitle
	}
	if wordCount(title) < 3 && doi == "" && arxivID == "" {
		return domain.Reference{RawCitation: raw, DOI: doi, ArxivID: arxivID, Title: title}, SkipShortTitle
	}

	var authors []string
	if emDashLeadRe.MatchString(authorBlock) {
		authors = append([]string(nil), prevAuthors...)
	} else {
		authors = parseAuthors(authorBlock)
	}

	return domain.Reference{
		RawCitation: raw,
		Title:       title,
		Authors:     authors,
		DOI:         doi,
		ArxivID:     arxivID,
	}, Kept
}

// ApplyFilterGates runs the §4.E drop rules against an already-built
// Reference (title/authors/DOI/arXiv id populated some other way, e.g.
// from structured BibTeX fields), without re-deriving them from raw text.
// hasBareURLOnly should be true when the source record carries no
// metadata beyond a bare URL.
func ApplyFilterGates(ref domain.Reference, hasBareURLOnly bool) SkipReason {
	if hasBareURLOnly {
		return SkipURLOnly
	}
	if ref.Title == "" {
		return SkipNoTitle
	}
	if wordCount(ref.Title) < 3 && ref.DOI == "" && ref.ArxivID == "" {
		return SkipShortTitle
	}
	return Kept
}

// splitTitleAndAuthors locates the title as the phrase between the author
// block (terminated by a period after an initials pattern) and the venue
// (detected by "In ", a year in parens, or a trailing year). It returns
// the title candidate and everything before it (the author block).
func splitTitleAndAuthors(body string) (title string, authorBlock string) {
	authorEnd := findAuthorBlockEnd(body)
	rest := body[authorEnd:]
	rest = strings.TrimLeft(rest, " .")

	venueStart := len(rest)
	if loc := venueMarkerRe.FindStringIndex(rest); loc != nil {
		venueStart = loc[0]
	}
	title = strings.TrimSpace(rest[:venueStart])
	title = strings.TrimRight(title, ". ")
	return title, body[:authorEnd]
}

// authorBlockRe matches a leading run of "Initial. Surname" entries joined
// by "and"/"&"/commas (e.g. "A. Smith and B. Jones. "), the numbered-citation
// author-list shape used throughout spec scenario 4. Anchoring at the start
// and requiring an explicit conjunction between entries keeps it from
// running on into a title that happens to end on a single capitalized
// letter (e.g. "...of X.").
var authorBlockRe = regexp.MustCompile(`^(?:[A-Z]\.\s*[\p{L}'-]+\s*(?:,|&|and)\s+)*[A-Z]\.\s*[\p{L}'-]+\.\s*`)

// emDashRecordRe matches an em/en-dash (or double hyphen) standing in for
// a repeated author list (spec §8 scenario 5), e.g. "—. Title." The
// matched span becomes the author block, which emDashLeadRe then
// recognizes in ParseRecord to carry the previous record's authors forward.
var emDashRecordRe = regexp.MustCompile(`^\s*[—–-]{1,2}\.\s*`)

// findAuthorBlockEnd returns the offset just past the author block at the
// start of body. It tries, in order: an em-dash "same as previous" marker,
// authorBlockRe for the common "Initial. Surname ... ." shape, then a
// sentence-by-sentence scan for "Lastname, Initial."-style lists.
func findAuthorBlockEnd(body string) int {
	if loc := emDashRecordRe.FindStringIndex(body); loc != nil {
		return loc[1]
	}
	if loc := authorBlockRe.FindStringIndex(body); loc != nil {
		return loc[1]
	}
	return findAuthorBlockEndFallback(body)
}

func findAuthorBlockEndFallback(body string) int {
	sentences := strings.SplitAfter(body, ". ")
	offset := 0
	for _, s := range sentences {
		trimmed := strings.TrimSuffix(s, " ")
		if initialsStopRe.MatchString(trimmed) || looksLikeAuthorList(trimmed) {
			offset += len(s)
			continue
		}
		break
	}
	return offset
}

var authorListHintRe = regexp.MustCompile(`^[A-Z][\p{L}'-]+,?\s+[A-Z]\.`)

func looksLikeAuthorList(s string) bool {
	return authorListHintRe.MatchString(strings.TrimSpace(s))
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// parseAuthors splits an author block on "," and " and ", normalizing
// both "Last, First Initials" and "First Last" forms to a single
// "First Last"-shaped string per author, preserving citation order.
func parseAuthors(block string) []string {
	block = strings.TrimSpace(block)
	block = strings.TrimSuffix(block, ".")
	if block == "" {
		return nil
	}
	block = strings.ReplaceAll(block, " & ", " and ")
	parts := splitAuthorList(block)

	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, ".")
		if p == "" {
			continue
		}
		authors = append(authors, normalizeAuthorName(p))
	}
	return authors
}

// splitAuthorList splits on " and " first (to keep "Last, First" pairs
// intact), then on commas for any remaining multi-author segments that
// used comma-only separation.
func splitAuthorList(block string) []string {
	andParts := regexp.MustCompile(`\s+and\s+`).Split(block, -1)
	if len(andParts) > 1 {
		var parts []string
		for _, p := range andParts {
			if strings.Contains(p, ",") && !lastFirstInitialsRe.MatchString(strings.TrimSpace(p)) {
				parts = append(parts, strings.Split(p, ",")...)
				continue
			}
			parts = append(parts, p)
		}
		return parts
	}
	commaCount := strings.Count(block, ",")
	if commaCount <= 1 {
		return []string{block}
	}
	return strings.Split(block, ",")
}

var lastFirstInitialsRe = regexp.MustCompile(`^([\p{L}'-]+),\s*([\p{L}.\s-]+)$`)

// normalizeAuthorName converts "Last, First Initials" to "First Initials Last";
// "First Last" forms pass through unchanged.
func normalizeAuthorName(name string) string {
	if m := lastFirstInitialsRe.FindStringSubmatch(name); m != nil {
		last, first := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		return strings.TrimSpace(first + " " + last)
	}
	return name
}
