package backend

import "github.com/paper-app/citeguard/internal/normalize"

// Candidate is one {title, authors, url} triple parsed out of a vendor
// payload, before the shared post-processing rule picks the first title
// match (spec §4.G).
type Candidate struct {
	Title   string
	Authors []string
	URL     string
}

// FirstMatch returns the first candidate whose title matches query per
// the §4.A matcher, or (Candidate{}, false) if none match.
func FirstMatch(query string, candidates []Candidate) (Candidate, bool) {
	m := normalize.NewMatcher()
	for _, c := range candidates {
		if c.Title != "" && m.Match(query, c.Title) {
			return c, true
		}
	}
	return Candidate{}, false
}

// matcherMatch exposes the §4.A matcher directly, for scrapers that build
// a candidate incrementally from the DOM rather than collecting a slice of
// Candidate values upfront.
func matcherMatch(query, candidateTitle string) bool {
	return normalize.NewMatcher().Match(query, candidateTitle)
}
