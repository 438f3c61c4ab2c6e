package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/domain"
)

const europePMCBaseURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

var europePMCSpecialChars = regexp.MustCompile(`["'\[\](){}:;]`)
var europePMCWhitespace = regexp.MustCompile(`\s+`)

// EuropePMC queries the Europe PMC REST API. Like the other search
// backends it searches on the first six significant words (QueryString);
// because Europe PMC's query parser chokes on bracket/quote punctuation,
// europePMCQuery then strips that punctuation and truncates to 100 runes.
type EuropePMC struct {
	base
}

func NewEuropePMC(log zerolog.Logger) *EuropePMC {
	return &EuropePMC{base: newBase(log, "Europe PMC")}
}

func (e *EuropePMC) Name() string      { return "Europe PMC" }
func (e *EuropePMC) IsLocal() bool     { return false }
func (e *EuropePMC) RequiresDOI() bool { return false }

type europePMCResponse struct {
	ResultList struct {
		Result []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	Title        string `json:"title"`
	AuthorString string `json:"authorString"`
	DOI          string `json:"doi"`
	PMCID        string `json:"pmcid"`
	PMID         string `json:"pmid"`
}

func europePMCQuery(title string) string {
	clean := europePMCSpecialChars.ReplaceAllString(title, " ")
	clean = europePMCWhitespace.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)
	runes := []rune(clean)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return string(runes)
}

func (e *EuropePMC) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	reqURL := fmt.Sprintf("%s?query=%s&format=json&pageSize=15", europePMCBaseURL, url.QueryEscape(europePMCQuery(QueryString(title, 6))))

	body, outcome, err := get(ctx, client, reqURL, nil, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	var resp europePMCResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.TransientError(fmt.Sprintf("decode europe pmc payload: %v", err)), nil
	}

	candidates := make([]Candidate, 0, len(resp.ResultList.Result))
	for _, r := range resp.ResultList.Result {
		if r.Title == "" {
			continue
		}
		var authors []string
		if r.AuthorString != "" {
			for _, a := range strings.Split(r.AuthorString, ",") {
				a = strings.TrimSpace(a)
				if a != "" {
					authors = append(authors, a)
				}
			}
		}
		paperURL := ""
		switch {
		case r.DOI != "":
			paperURL = "https://doi.org/" + r.DOI
		case r.PMCID != "":
			paperURL = "https://europepmc.org/article/PMC/" + r.PMCID
		case r.PMID != "":
			paperURL = "https://europepmc.org/article/MED/" + r.PMID
		}
		candidates = append(candidates, Candidate{Title: r.Title, Authors: authors, URL: paperURL})
	}

	if match, ok := FirstMatch(title, candidates); ok {
		return domain.Found(match.Title, match.Authors, match.URL), nil
	}
	return domain.NotFound(), nil
}
