// Package extract implements the section locator (spec §4.C), the
// segmenter (§4.D), and the reference parser (§4.E) that together turn a
// document's raw text into an ExtractionResult.
package extract

import (
	"errors"
	"regexp"
)

// ErrNoReferencesSection is returned by LocateSection when no heading in
// the vocabulary is found anywhere in the document text.
var ErrNoReferencesSection = errors.New("no references section found")

// ErrNoSegmentation is returned by Segment when every strategy produced
// zero records.
var ErrNoSegmentation = errors.New("no segmentation strategy produced records")

// defaultHeadings is the built-in vocabulary of section headings scanned
// for, bottom-up, by LocateSection.
var defaultHeadings = []string{
	"References",
	"REFERENCES",
	"Bibliography",
	"BIBLIOGRAPHY",
	"Works Cited",
	"Literature Cited",
}

// appendixHeadings bound the references region from the right when they
// occur after the references heading.
var appendixHeadings = []string{
	"Appendix",
	"APPENDIX",
	"Acknowledgments",
	"Acknowledgements",
	"ACKNOWLEDGMENTS",
	"ACKNOWLEDGEMENTS",
	"Supplementary Material",
}

// headingPattern matches a heading line, optionally preceded by a numeric
// section marker ("7. References", "VII References", or bare "References").
func headingPattern(word string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^\s*(?:\d+\.?\s+|[IVXLC]+\.?\s+)?` + regexp.QuoteMeta(word) + `\s*$`)
}

// nextPaperBoundary is a heuristic marker some multi-paper corpora insert
// between concatenated documents.
var nextPaperBoundary = regexp.MustCompile(`(?m)^\x0c`) // form-feed, common page/document separator

// LocateSection finds the references region in text, scanning from the
// bottom up for the last occurrence of a heading in vocab (defaultHeadings
// if vocab is nil). The tie-break is the LAST occurrence, since most
// papers repeat the word "references" in the body but place the section
// heading itself near the end.
func LocateSection(text string, vocab []string) (string, error) {
	if len(vocab) == 0 {
		vocab = defaultHeadings
	}
	bestStart := -1
	bestEnd := -1
	for _, word := range vocab {
		re := headingPattern(word)
		matches := re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		last := matches[len(matches)-1]
		if last[0] > bestStart {
			bestStart = last[0]
			bestEnd = last[1]
		}
	}
	if bestStart < 0 {
		return "", ErrNoReferencesSection
	}

	region := text[bestEnd:]
	end := len(region)

	if loc := firstAppendixAfter(region); loc >= 0 && loc < end {
		end = loc
	}
	if loc := nextPaperBoundary.FindStringIndex(region); loc != nil && loc[0] < end {
		end = loc[0]
	}

	return region[:end], nil
}

func firstAppendixAfter(region string) int {
	best := -1
	for _, word := range appendixHeadings {
		re := headingPattern(word)
		if loc := re.FindStringIndex(region); loc != nil {
			if best < 0 || loc[0] < best {
				best = loc[0]
			}
		}
	}
	return best
}
