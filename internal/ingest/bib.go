package ingest

import (
	"os"
	"regexp"
	"strings"

	"github.com/paper-app/citeguard/internal/domain"
	"github.com/paper-app/citeguard/internal/extract"
)

// bibEntryRe matches one BibTeX entry header: @article{key, ...
var bibEntryRe = regexp.MustCompile(`(?m)@(\w+)\s*\{\s*([^,]*),`)

// ExtractBIB parses a .bib file's entries directly into References,
// bypassing section location and segmentation (the entries are already
// structured) but reusing the §4.E filter gates via
// extract.ApplyFilterGates.
func ExtractBIB(path string) (domain.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	return ParseBIB(string(data)), nil
}

// ParseBIB is the pure-text core of ExtractBIB.
func ParseBIB(text string) domain.ExtractionResult {
	entries := splitBibEntries(text)
	acc := &extract.SkipAccumulator{}
	acc.AddRaw(len(entries))

	var out []domain.Reference
	for _, e := range entries {
		fields := parseBibFields(e)
		ref := bibFieldsToReference(fields)
		bareURL := ref.Title == "" && fields["url"] != "" && fields["doi"] == "" && fields["eprint"] == ""
		switch extract.ApplyFilterGates(ref, bareURL) {
		case extract.Kept:
			out = append(out, ref)
		case extract.SkipNoTitle:
			acc.Record(extract.SkipNoTitle)
		case extract.SkipShortTitle:
			acc.Record(extract.SkipShortTitle)
		case extract.SkipURLOnly:
			acc.Record(extract.SkipURLOnly)
		}
	}

	return domain.ExtractionResult{References: out, Skip: acc.Snapshot()}
}

// splitBibEntries returns the raw text span of each @type{key, ...} entry,
// from its header to (heuristically) the matching closing brace at column
// depth zero.
func splitBibEntries(text string) []string {
	locs := bibEntryRe.FindAllStringIndex(text, -1)
	entries := make([]string, 0, len(locs))
	for i, loc := range locs {
		start := loc[0]
		end := matchClosingBrace(text, loc[1]-1)
		if end < 0 || (i+1 < len(locs) && end > locs[i+1][0]) {
			if i+1 < len(locs) {
				end = locs[i+1][0]
			} else {
				end = len(text)
			}
		}
		entries = append(entries, text[start:end])
	}
	return entries
}

// matchClosingBrace returns the index just past the closing brace of the
// entry whose header match already consumed its opening brace; openIdx is
// the position right after that header match, so depth starts at 1 (the
// still-open entry brace) rather than 0.
func matchClosingBrace(text string, openIdx int) int {
	depth := 1
	for i := openIdx; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

var bibFieldRe = regexp.MustCompile(`(?is)(\w+)\s*=\s*\{([^{}]*(?:\{[^{}]*\}[^{}]*)*)\}`)

func parseBibFields(entry string) map[string]string {
	fields := map[string]string{}
	for _, m := range bibFieldRe.FindAllStringSubmatch(entry, -1) {
		key := strings.ToLower(strings.TrimSpace(m[1]))
		val := collapseSpaces(strings.ReplaceAll(m[2], "\n", " "))
		fields[key] = val
	}
	return fields
}

func bibFieldsToReference(fields map[string]string) domain.Reference {
	doi := fields["doi"]
	if doi != "" {
		doi = extract.ExtractDOI(doi)
	}
	arxivID := fields["eprint"]
	if arxivID != "" {
		arxivID = extract.ExtractArxivID("arXiv:" + arxivID)
	}

	var authors []string
	if a := fields["author"]; a != "" {
		for _, part := range strings.Split(a, " and ") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if m := strings.SplitN(part, ",", 2); len(m) == 2 {
				authors = append(authors, strings.TrimSpace(m[1])+" "+strings.TrimSpace(m[0]))
			} else {
				authors = append(authors, part)
			}
		}
	}

	return domain.Reference{
		RawCitation: strings.TrimSpace(fields["title"]),
		Title:       strings.Trim(fields["title"], `"'`),
		Authors:     authors,
		DOI:         doi,
		ArxivID:     arxivID,
	}
}
