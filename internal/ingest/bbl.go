// Package ingest implements the external-interface collaborators named in
// spec §6: BBL/BIB ingesters, the PDF text-extraction backend contract
// (with a concrete ledongthuc/pdf-backed adapter), and the archive
// ingester. These are thin layers around internal/extract — the BBL/BIB
// paths bypass section location and segmentation but reuse the §4.E
// filter gates: BBL via extract.Extractor.ParseRecords, BIB via
// extract.ApplyFilterGates on its structured fields.
package ingest

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/paper-app/citeguard/internal/domain"
	"github.com/paper-app/citeguard/internal/extract"
)

var bibitemRe = regexp.MustCompile(`(?m)^\s*\\bibitem(?:\[[^\]]*\])?\{[^}]*\}`)

// ExtractBBL parses a LaTeX .bbl bibliography auxiliary file: each
// \bibitem{...} introduces one record, running to the next \bibitem or
// end of file. Records are handed to extract.Extractor.ParseRecords,
// reusing the reference parser's DOI/arXiv/title/author heuristics and
// filter gates (spec §6).
func ExtractBBL(path string, ex *extract.Extractor) (domain.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.ExtractionResult{}, err
	}
	return ParseBBL(string(data), ex), nil
}

// ParseBBL is the pure-text core of ExtractBBL, split out for testing
// without touching the filesystem.
func ParseBBL(text string, ex *extract.Extractor) domain.ExtractionResult {
	locs := bibitemRe.FindAllStringIndex(text, -1)
	records := make([]string, 0, len(locs))
	for i, loc := range locs {
		start := loc[1]
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		rec := strings.TrimSpace(stripLatexCommands(text[start:end]))
		if rec != "" {
			records = append(records, rec)
		}
	}
	if ex == nil {
		ex = extract.NewExtractor()
	}
	return ex.ParseRecords(records)
}

// latexTextCommandRe matches formatting commands whose argument is the
// text itself (\emph{Proc. ABC}) rather than markup to discard; the
// argument is kept, the command stripped off it.
var latexTextCommandRe = regexp.MustCompile(`\\(?:emph|textit|textbf|textrm|texttt|textsc)\*?\{([^{}]*)\}`)
var latexCommandRe = regexp.MustCompile(`\\[a-zA-Z]+\*?(\{[^}]*\})?(\[[^\]]*\])?`)
var latexBraceRe = regexp.MustCompile(`[{}]`)

// stripLatexCommands removes common LaTeX markup (\newblock, \url{...},
// bare braces) so the reference parser sees plain text. \emph/\textit/etc.
// keep their argument text, since it's usually the venue or title itself,
// not discardable markup.
func stripLatexCommands(s string) string {
	s = strings.ReplaceAll(s, `\newblock`, " ")
	s = latexTextCommandRe.ReplaceAllString(s, "$1")
	s = latexCommandRe.ReplaceAllString(s, " ")
	s = latexBraceRe.ReplaceAllString(s, "")
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Split(bufio.ScanWords)
	var b strings.Builder
	for sc.Scan() {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(sc.Text())
	}
	return b.String()
}
