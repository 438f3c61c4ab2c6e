package normalize

import "strings"

// ligatures maps typographic ligature runes to their expansions, applied to
// raw extracted text ahead of section location (spec §4.B). Ligature
// expansion is the core's responsibility, not the PDF backend's.
var ligatures = strings.NewReplacer(
	"ﬁ", "fi", // ﬁ
	"ﬂ", "fl", // ﬂ
	"ﬀ", "ff", // ﬀ
	"ﬃ", "ffi", // ﬃ
	"ﬄ", "ffl", // ﬄ
	"ﬅ", "ft", // ﬅ (long s + t)
	"ﬆ", "st", // ﬆ
)

// ExpandLigatures replaces the common typographic ligatures with their
// plain-ASCII expansions.
func ExpandLigatures(s string) string {
	return ligatures.Replace(s)
}

// DehyphenateSoftWraps removes a soft hyphen immediately followed by a line
// break, joining the wrapped word: "hallu-\ncinated" -> "hallucinated".
// Line structure is otherwise preserved — the segmenter (§4.D) depends on
// newlines and must run before any further whitespace collapsing.
func DehyphenateSoftWraps(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '-' && i+1 < len(runes) && runes[i+1] == '\n' && wordCharBefore(runes, i) && wordCharAfter(runes, i+1) {
			i++ // drop the hyphen and the newline that follows it
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func wordCharBefore(runes []rune, i int) bool {
	return i > 0 && isLetter(runes[i-1])
}

func wordCharAfter(runes []rune, i int) bool {
	return i+1 < len(runes) && isLetter(runes[i+1])
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// CollapseWhitespace collapses runs of horizontal whitespace to a single
// space, leaving newlines intact. Call only after the segmenter has split
// the references region into records (spec §4.B).
func CollapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastWasSpace := false
	for _, r := range s {
		if r == '\n' {
			b.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if r == ' ' || r == '\t' || r == '\r' {
			if !lastWasSpace {
				b.WriteRune(' ')
			}
			lastWasSpace = true
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}
	return b.String()
}

// CollapseWhitespaceAll collapses all whitespace (including newlines) to a
// single space, used when rendering a finished reference record for
// display or query purposes.
func CollapseWhitespaceAll(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}
