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

const semanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1/paper/search"

// SemanticScholar queries api.semanticscholar.org/graph/v1/paper/search,
// grounded on the teacher's pkg/semanticscholar/client.go response shape.
type SemanticScholar struct {
	base
	APIKey string
}

func NewSemanticScholar(log zerolog.Logger, apiKey string) *SemanticScholar {
	return &SemanticScholar{base: newBase(log, "SemanticScholar"), APIKey: apiKey}
}

func (s *SemanticScholar) Name() string      { return "SemanticScholar" }
func (s *SemanticScholar) IsLocal() bool     { return false }
func (s *SemanticScholar) RequiresDOI() bool { return false }

type s2SearchResponse struct {
	Data []s2PaperResult `json:"data"`
}

type s2PaperResult struct {
	Title       string `json:"title"`
	Authors     []struct {
		Name string `json:"name"`
	} `json:"authors"`
	URL         string `json:"url"`
	ExternalIDs struct {
		DOI string `json:"DOI"`
	} `json:"externalIds"`
	OpenAccessPDF *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

func (s *SemanticScholar) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	q := url.Values{}
	q.Set("query", QueryString(title, 6))
	q.Set("limit", "10")
	q.Set("fields", "title,authors,url,externalIds,openAccessPdf")
	reqURL := fmt.Sprintf("%s?%s", semanticScholarBaseURL, q.Encode())

	headers := map[string]string{}
	if s.APIKey != "" {
		headers["x-api-key"] = s.APIKey
	}

	body, outcome, err := get(ctx, client, reqURL, headers, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	var resp s2SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.TransientError(fmt.Sprintf("decode semantic scholar payload: %v", err)), nil
	}

	candidates := make([]Candidate, 0, len(resp.Data))
	for _, r := range resp.Data {
		authors := make([]string, 0, len(r.Authors))
		for _, a := range r.Authors {
			if a.Name != "" {
				authors = append(authors, strings.TrimSpace(a.Name))
			}
		}
		paperURL := r.URL
		if r.OpenAccessPDF != nil && r.OpenAccessPDF.URL != "" {
			paperURL = r.OpenAccessPDF.URL
		} else if r.ExternalIDs.DOI != "" {
			paperURL = "https://doi.org/" + r.ExternalIDs.DOI
		}
		candidates = append(candidates, Candidate{Title: r.Title, Authors: authors, URL: paperURL})
	}

	if match, ok := FirstMatch(title, candidates); ok {
		return domain.Found(match.Title, match.Authors, match.URL), nil
	}
	return domain.NotFound(), nil
}
