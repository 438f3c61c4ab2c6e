package federation

import (
	"strings"

	"github.com/paper-app/citeguard/internal/normalize"
)

// familyName extracts the comparable family-name token from a full author
// string: the last whitespace-separated token, normalized the same way
// titles are (spec §4.A's normalizer applies to author comparison too,
// per the "normalized family-name overlap" wording in §4.I).
func familyName(author string) string {
	fields := strings.Fields(author)
	if len(fields) == 0 {
		return ""
	}
	return normalize.Title(fields[len(fields)-1])
}

// authorsOverlap reports whether refAuthors and foundAuthors share at
// least one normalized family name — the signal the orchestrator uses to
// upgrade a title-only match to Verified (spec §4.I phase 2).
func authorsOverlap(refAuthors, foundAuthors []string) bool {
	if len(refAuthors) == 0 || len(foundAuthors) == 0 {
		return false
	}
	seen := make(map[string]struct{}, len(refAuthors))
	for _, a := range refAuthors {
		if fn := familyName(a); fn != "" {
			seen[fn] = struct{}{}
		}
	}
	for _, a := range foundAuthors {
		if fn := familyName(a); fn != "" {
			if _, ok := seen[fn]; ok {
				return true
			}
		}
	}
	return false
}
