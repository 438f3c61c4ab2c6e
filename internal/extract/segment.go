package extract

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Strategy identifies one of the five competing segmentation heuristics
// (spec §4.D). Values are ordered by tie-break priority, ascending.
type Strategy int

const (
	StrategyBracketedNumeric Strategy = iota
	StrategyParenthesizedNumeric
	StrategyAuthorYear
	StrategyBlankLineSeparated
	StrategyHangingIndent
)

func (s Strategy) String() string {
	switch s {
	case StrategyBracketedNumeric:
		return "bracketed-numeric"
	case StrategyParenthesizedNumeric:
		return "parenthesized-numeric"
	case StrategyAuthorYear:
		return "author-year"
	case StrategyBlankLineSeparated:
		return "blank-line-separated"
	case StrategyHangingIndent:
		return "hanging-indent"
	default:
		return "unknown"
	}
}

// allStrategies is the fixed priority order used for both parallel
// dispatch and tie-break.
var allStrategies = []Strategy{
	StrategyBracketedNumeric,
	StrategyParenthesizedNumeric,
	StrategyAuthorYear,
	StrategyBlankLineSeparated,
	StrategyHangingIndent,
}

// Segmentation is one candidate split of the references region into
// record strings. Every record is guaranteed to be a contiguous substring
// of the input region (the concatenation-with-boundaries invariant).
type Segmentation struct {
	Strategy Strategy
	Records  []string
}

// ScoringWeights are the tunable constants for scoring a Segmentation.
// Exposed so the weighting described as "must be tuned against a
// validation set" in spec §9 can be adjusted without touching the scorer.
type ScoringWeights struct {
	RecordCount       float64
	LengthUniformity  float64
	YearFraction      float64
	TitleLikeFraction float64
	CommaFraction     float64
	// RecordCountCeiling bounds the "more is better" term so a pathological
	// over-split candidate doesn't win purely on count.
	RecordCountCeiling int
}

// DefaultScoringWeights gives every factor equal weight, with a generous
// record-count ceiling.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		RecordCount:        1.0,
		LengthUniformity:   1.0,
		YearFraction:       1.0,
		TitleLikeFraction:  1.0,
		CommaFraction:      1.0,
		RecordCountCeiling: 200,
	}
}

var (
	bracketedNumericRe     = regexp.MustCompile(`(?m)^\s*\[\d+\]`)
	parenthesizedNumericRe = regexp.MustCompile(`(?m)^\s*(?:\(\d+\)|\d+\.)\s+`)
	authorYearLeadRe       = regexp.MustCompile(`(?m)^\s*[A-Z][a-z]+(?:[,.]| and | &)`)
	yearRe                 = regexp.MustCompile(`\(?\b(19|20)\d{2}[a-z]?\)?`)
	titleLikeRe            = regexp.MustCompile(`[A-Z][a-z]{2,}(?:\s+[A-Za-z][a-z]*){2,}`)
)

// Segment runs all five strategies concurrently and returns the highest
// scoring Segmentation, or an error if every strategy produced zero
// records. Ties break by strategy priority, in the order StrategyBracketedNumeric,
// StrategyParenthesizedNumeric, StrategyAuthorYear, StrategyBlankLineSeparated,
// StrategyHangingIndent.
func Segment(region string, weights ScoringWeights) (Segmentation, error) {
	candidates := make([]Segmentation, len(allStrategies))

	var g errgroup.Group
	for i, strat := range allStrategies {
		i, strat := i, strat
		g.Go(func() error {
			candidates[i] = Segmentation{Strategy: strat, Records: runStrategy(strat, region)}
			return nil
		})
	}
	_ = g.Wait() // strategies never return an error; failure is an empty Records slice

	bestIdx := -1
	bestScore := math.Inf(-1)
	for i, c := range candidates {
		if len(c.Records) == 0 {
			continue
		}
		score := Score(c, weights)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return Segmentation{}, ErrNoSegmentation
	}
	return candidates[bestIdx], nil
}

func runStrategy(s Strategy, region string) []string {
	switch s {
	case StrategyBracketedNumeric:
		return splitOnLeadingMarker(region, bracketedNumericRe)
	case StrategyParenthesizedNumeric:
		return splitOnLeadingMarker(region, parenthesizedNumericRe)
	case StrategyAuthorYear:
		return splitOnLeadingMarker(region, authorYearLeadRe)
	case StrategyBlankLineSeparated:
		return splitOnBlankLines(region)
	case StrategyHangingIndent:
		return splitOnHangingIndent(region)
	default:
		return nil
	}
}

// splitOnLeadingMarker splits region at each line whose start matches re,
// keeping the marker as part of the following record. Every returned
// record is a contiguous substring of region.
func splitOnLeadingMarker(region string, re *regexp.Regexp) []string {
	locs := re.FindAllStringIndex(region, -1)
	if len(locs) < 2 {
		return nil
	}
	records := make([]string, 0, len(locs))
	for i, loc := range locs {
		start := loc[0]
		end := len(region)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		rec := strings.TrimSpace(region[start:end])
		if rec != "" {
			records = append(records, rec)
		}
	}
	return records
}

func splitOnBlankLines(region string) []string {
	blocks := regexp.MustCompile(`\n\s*\n+`).Split(region, -1)
	records := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if t := strings.TrimSpace(b); t != "" {
			records = append(records, t)
		}
	}
	if len(records) < 2 {
		return nil
	}
	return records
}

// splitOnHangingIndent treats a line starting at column 0 as the start of
// a new record; indented continuation lines attach to the current record.
func splitOnHangingIndent(region string) []string {
	lines := strings.Split(region, "\n")
	var records []string
	var current strings.Builder
	started := false
	for _, line := range lines {
		if line == "" {
			continue
		}
		indented := line[0] == ' ' || line[0] == '\t'
		if !indented {
			if started {
				records = append(records, strings.TrimSpace(current.String()))
				current.Reset()
			}
			started = true
			current.WriteString(line)
		} else if started {
			current.WriteString(" ")
			current.WriteString(strings.TrimSpace(line))
		}
	}
	if started {
		records = append(records, strings.TrimSpace(current.String()))
	}
	if len(records) < 2 {
		return nil
	}
	return records
}

// Score weights record count, length uniformity, year fraction,
// title-like fraction, and comma fraction per ScoringWeights.
func Score(s Segmentation, w ScoringWeights) float64 {
	n := len(s.Records)
	if n == 0 {
		return math.Inf(-1)
	}

	ceiling := w.RecordCountCeiling
	if ceiling <= 0 {
		ceiling = 200
	}
	countTerm := float64(n)
	if countTerm > float64(ceiling) {
		countTerm = float64(ceiling)
	}
	countTerm /= float64(ceiling)

	uniformityTerm := 1.0 - coefficientOfVariation(s.Records)
	if uniformityTerm < 0 {
		uniformityTerm = 0
	}

	yearTerm := fractionMatching(s.Records, func(r string) bool { return yearRe.MatchString(r) })
	titleTerm := fractionMatching(s.Records, func(r string) bool { return titleLikeRe.MatchString(r) })
	commaTerm := fractionMatching(s.Records, func(r string) bool { return strings.Contains(r, ",") })

	return w.RecordCount*countTerm +
		w.LengthUniformity*uniformityTerm +
		w.YearFraction*yearTerm +
		w.TitleLikeFraction*titleTerm +
		w.CommaFraction*commaTerm
}

func coefficientOfVariation(records []string) float64 {
	n := float64(len(records))
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += float64(len(r))
	}
	mean := sum / n
	if mean == 0 {
		return 0
	}
	var sqDiff float64
	for _, r := range records {
		d := float64(len(r)) - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / n)
	return stddev / mean
}

func fractionMatching(records []string, pred func(string) bool) float64 {
	if len(records) == 0 {
		return 0
	}
	matched := 0
	for _, r := range records {
		if pred(r) {
			matched++
		}
	}
	return float64(matched) / float64(len(records))
}
