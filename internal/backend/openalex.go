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

const openalexBaseURL = "https://api.openalex.org/works"

// OpenAlex queries api.openalex.org/works, grounded on the teacher's
// pkg/openalex/client.go response shape (authorships/display_name).
// OpenAlex has no hard rate limit in the polite pool, which is why it
// gets the polite-pool Email field (sent as mailto) instead of an API key.
type OpenAlex struct {
	base
	Email              string
	CheckAuthorsOption bool // mirrors config's check_openalex_authors — see Query
}

func NewOpenAlex(log zerolog.Logger, email string, checkAuthors bool) *OpenAlex {
	return &OpenAlex{base: newBase(log, "OpenAlex"), Email: email, CheckAuthorsOption: checkAuthors}
}

func (o *OpenAlex) Name() string      { return "OpenAlex" }
func (o *OpenAlex) IsLocal() bool     { return false }
func (o *OpenAlex) RequiresDOI() bool { return false }

type openalexResponse struct {
	Results []openalexWork `json:"results"`
}

type openalexWork struct {
	DisplayName string `json:"display_name"`
	Authorships []struct {
		Author struct {
			DisplayName string `json:"display_name"`
		} `json:"author"`
	} `json:"authorships"`
	PrimaryLocation struct {
		LandingPageURL string `json:"landing_page_url"`
	} `json:"primary_location"`
}

func (o *OpenAlex) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	q := url.Values{}
	q.Set("search", QueryString(title, 6))
	q.Set("per-page", "10")
	if o.Email != "" {
		q.Set("mailto", o.Email)
	}
	reqURL := fmt.Sprintf("%s?%s", openalexBaseURL, q.Encode())

	body, outcome, err := get(ctx, client, reqURL, nil, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	var resp openalexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.TransientError(fmt.Sprintf("decode openalex payload: %v", err)), nil
	}

	candidates := make([]Candidate, 0, len(resp.Results))
	for _, w := range resp.Results {
		authors := make([]string, 0, len(w.Authorships))
		for _, a := range w.Authorships {
			if a.Author.DisplayName != "" {
				authors = append(authors, strings.TrimSpace(a.Author.DisplayName))
			}
		}
		candidates = append(candidates, Candidate{Title: w.DisplayName, Authors: authors, URL: w.PrimaryLocation.LandingPageURL})
	}

	match, ok := FirstMatch(title, candidates)
	if !ok {
		return domain.NotFound(), nil
	}
	// check_openalex_authors=false (the §6 default) means OpenAlex's
	// frequently-incomplete author list should not by itself demote a
	// title-only match to a mismatch; the orchestrator still runs its own
	// family-name overlap check when CheckAuthorsOption is true.
	if !o.CheckAuthorsOption {
		return domain.Found(match.Title, nil, match.URL), nil
	}
	return domain.Found(match.Title, match.Authors, match.URL), nil
}
