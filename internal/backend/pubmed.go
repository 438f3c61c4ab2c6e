package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/domain"
)

const (
	pubmedESearchURL  = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esearch.fcgi"
	pubmedESummaryURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/esummary.fcgi"
)

// PubMed is a two-phase backend: esearch resolves a title query to a set of
// PMIDs, then esummary retrieves a JSON docsum for each PMID. Grounded on
// original_source/hallucinator-rs/crates/hallucinator-core/src/db/pubmed.rs,
// which uses this exact esearch->esummary pair rather than efetch.
type PubMed struct {
	base
	APIKey string
}

func NewPubMed(log zerolog.Logger, apiKey string) *PubMed {
	return &PubMed{base: newBase(log, "PubMed"), APIKey: apiKey}
}

func (p *PubMed) Name() string      { return "PubMed" }
func (p *PubMed) IsLocal() bool     { return false }
func (p *PubMed) RequiresDOI() bool { return false }

type pubmedSearchResult struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

type pubmedSummaryResult struct {
	Result map[string]pubmedDocSum `json:"result"`
}

type pubmedDocSum struct {
	Title   string            `json:"title"`
	Authors []pubmedDocAuthor `json:"authors"`
}

type pubmedDocAuthor struct {
	Name string `json:"name"`
}

func (p *PubMed) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	searchParams := url.Values{}
	searchParams.Set("db", "pubmed")
	searchParams.Set("term", QueryString(title, 6)+"[Title]")
	searchParams.Set("retmax", "10")
	searchParams.Set("retmode", "json")
	if p.APIKey != "" {
		searchParams.Set("api_key", p.APIKey)
	}
	searchReqURL := fmt.Sprintf("%s?%s", pubmedESearchURL, searchParams.Encode())

	searchBody, outcome, err := get(ctx, client, searchReqURL, nil, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	var searchResult pubmedSearchResult
	if err := json.Unmarshal(searchBody, &searchResult); err != nil {
		return domain.TransientError(fmt.Sprintf("decode pubmed esearch payload: %v", err)), nil
	}
	if len(searchResult.ESearchResult.IDList) == 0 {
		return domain.NotFound(), nil
	}

	summaryParams := url.Values{}
	summaryParams.Set("db", "pubmed")
	summaryParams.Set("id", strings.Join(searchResult.ESearchResult.IDList, ","))
	summaryParams.Set("retmode", "json")
	if p.APIKey != "" {
		summaryParams.Set("api_key", p.APIKey)
	}
	summaryReqURL := fmt.Sprintf("%s?%s", pubmedESummaryURL, summaryParams.Encode())

	summaryBody, outcome, err := get(ctx, client, summaryReqURL, nil, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	var summary pubmedSummaryResult
	if err := json.Unmarshal(summaryBody, &summary); err != nil {
		return domain.TransientError(fmt.Sprintf("decode pubmed esummary payload: %v", err)), nil
	}

	candidates := make([]Candidate, 0, len(searchResult.ESearchResult.IDList))
	for _, pmid := range searchResult.ESearchResult.IDList {
		doc, ok := summary.Result[pmid]
		if !ok || doc.Title == "" {
			continue
		}
		authors := make([]string, 0, len(doc.Authors))
		for _, a := range doc.Authors {
			if a.Name != "" {
				authors = append(authors, a.Name)
			}
		}
		candidates = append(candidates, Candidate{
			Title:   strings.TrimSpace(doc.Title),
			Authors: authors,
			URL:     "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
		})
	}

	if match, ok := FirstMatch(title, candidates); ok {
		return domain.Found(match.Title, match.Authors, match.URL), nil
	}
	return domain.NotFound(), nil
}
