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

const crossrefBaseURL = "https://api.crossref.org/works"

// CrossRef queries api.crossref.org/works by title. Grounded on the
// teacher's pkg/arxiv and pkg/openalex client shape: a constructor-injected
// timeout-bearing *http.Client is not kept here, since the orchestrator
// supplies one per call per spec §4.F.
type CrossRef struct {
	base
	Mailto string // polite-pool identification, per CrossRef's API etiquette
}

// NewCrossRef constructs a CrossRef adapter.
func NewCrossRef(log zerolog.Logger, mailto string) *CrossRef {
	return &CrossRef{base: newBase(log, "CrossRef"), Mailto: mailto}
}

func (c *CrossRef) Name() string      { return "CrossRef" }
func (c *CrossRef) IsLocal() bool     { return false }
func (c *CrossRef) RequiresDOI() bool { return false }

type crossrefResponse struct {
	Message struct {
		Items []crossrefItem `json:"items"`
	} `json:"message"`
}

type crossrefItem struct {
	Title   []string `json:"title"`
	Author  []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	URL string `json:"URL"`
}

func (c *CrossRef) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	q := url.Values{}
	q.Set("query.bibliographic", QueryString(title, 6))
	q.Set("rows", "10")
	if c.Mailto != "" {
		q.Set("mailto", c.Mailto)
	}
	reqURL := fmt.Sprintf("%s?%s", crossrefBaseURL, q.Encode())

	body, outcome, err := get(ctx, client, reqURL, nil, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	var resp crossrefResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.TransientError(fmt.Sprintf("decode crossref payload: %v", err)), nil
	}

	candidates := make([]Candidate, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		if len(item.Title) == 0 {
			continue
		}
		authors := make([]string, 0, len(item.Author))
		for _, a := range item.Author {
			authors = append(authors, strings.TrimSpace(a.Given+" "+a.Family))
		}
		candidates = append(candidates, Candidate{Title: item.Title[0], Authors: authors, URL: item.URL})
	}

	if match, ok := FirstMatch(title, candidates); ok {
		return domain.Found(match.Title, match.Authors, match.URL), nil
	}
	return domain.NotFound(), nil
}

func derefOutcome(o *domain.QueryOutcome) domain.QueryOutcome {
	if o == nil {
		return domain.NotFound()
	}
	return *o
}
