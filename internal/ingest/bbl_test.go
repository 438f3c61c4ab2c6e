package ingest

import (
	"strings"
	"testing"
)

const sampleBBL = `\begin{thebibliography}{9}

\bibitem{smith2021}
A. Smith.
\newblock A Study of X.
\newblock In \emph{Proc. ABC}, 2021.

\bibitem{jonesLee2020}
B. Jones and C. Lee.
\newblock Another Study of Y.
\newblock In \emph{Proc. DEF}, 2020.

\end{thebibliography}
`

func TestParseBBLSplitsOnBibitem(t *testing.T) {
	result := ParseBBL(sampleBBL, nil)
	if len(result.References) != 2 {
		t.Fatalf("expected 2 references, got %d: %+v", len(result.References), result.References)
	}
	if result.References[0].Title != "A Study of X" {
		t.Fatalf("References[0].Title = %q, want %q", result.References[0].Title, "A Study of X")
	}
	if result.References[1].Title != "Another Study of Y" {
		t.Fatalf("References[1].Title = %q, want %q", result.References[1].Title, "Another Study of Y")
	}
}

func TestParseBBLStripsLatexMarkup(t *testing.T) {
	result := ParseBBL(sampleBBL, nil)
	for _, ref := range result.References {
		for _, markup := range []string{`\newblock`, `\emph`, "{", "}"} {
			if strings.Contains(ref.RawCitation, markup) {
				t.Fatalf("RawCitation = %q, still contains LaTeX markup %q", ref.RawCitation, markup)
			}
		}
	}
}

func TestParseBBLSkipStatsSumInvariant(t *testing.T) {
	result := ParseBBL(sampleBBL, nil)
	sum := len(result.References) + result.Skip.URLOnly + result.Skip.ShortTitle + result.Skip.NoTitle + result.Skip.NoAuthors
	if result.Skip.TotalRaw != sum {
		t.Fatalf("TotalRaw = %d, want sum %d", result.Skip.TotalRaw, sum)
	}
}
