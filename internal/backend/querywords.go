package backend

import (
	"strings"

	"github.com/paper-app/citeguard/internal/extract"
)

// defaultStopwords is the spec's Open Question (§9.i) answer: a
// conservative list of English function words excluded from the query-word
// selection used by most backends. It can be replaced or extended via
// SetStopwordsOverride, the same ListOverride[T] mechanism extract.Config
// uses for the heading vocabulary.
var defaultStopwords = []string{
	"a", "an", "the", "of", "and", "or", "in",
	"on", "for", "to", "with", "is", "are", "by",
	"at", "as", "from", "via", "into", "using",
}

var stopwords = toStopwordSet(defaultStopwords)

// SetStopwordsOverride installs a replacement or extension for the
// built-in stopword list. Callers must invoke it before any backend runs a
// Query; it is not safe to call concurrently with queries in flight.
func SetStopwordsOverride(o extract.ListOverride[string]) {
	stopwords = toStopwordSet(o.Resolve(defaultStopwords))
}

func toStopwordSet(words []string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[strings.ToLower(w)] = struct{}{}
	}
	return out
}

// minSignificantWordLen excludes tokens shorter than this from query-word
// selection, alongside stopwords.
const minSignificantWordLen = 3

// QueryWords returns the first n significant words of title: stopwords and
// tokens shorter than minSignificantWordLen are stripped before taking the
// prefix. Used by CrossRef, arXiv, DBLP, OpenAlex, PubMed, Semantic
// Scholar, Europe PMC, and SSRN to build their search term (spec §4.G).
func QueryWords(title string, n int) []string {
	words := strings.Fields(title)
	out := make([]string, 0, n)
	for _, w := range words {
		clean := strings.TrimFunc(w, func(r rune) bool {
			return !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
		})
		if len(clean) < minSignificantWordLen {
			continue
		}
		if _, stop := stopwords[strings.ToLower(clean)]; stop {
			continue
		}
		out = append(out, clean)
		if len(out) >= n {
			break
		}
	}
	return out
}

// QueryString joins QueryWords(title, n) with spaces, the form used
// directly as a search query parameter.
func QueryString(title string, n int) string {
	return strings.Join(QueryWords(title, n), " ")
}
