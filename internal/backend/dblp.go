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

const dblpBaseURL = "https://dblp.org/search/publ/api"

// DBLP queries dblp.org/search/publ/api (the "online" variant; an offline
// FTS-indexed DBLP export is served instead by internal/offline when
// dblp_offline_path is configured, per spec §4.J/§6).
type DBLP struct {
	base
}

func NewDBLP(log zerolog.Logger) *DBLP { return &DBLP{base: newBase(log, "DBLP")} }

func (d *DBLP) Name() string      { return "DBLP" }
func (d *DBLP) IsLocal() bool     { return false }
func (d *DBLP) RequiresDOI() bool { return false }

type dblpResponse struct {
	Result struct {
		Hits struct {
			Hit []dblpHit `json:"hit"`
		} `json:"hits"`
	} `json:"result"`
}

type dblpHit struct {
	Info struct {
		Title   string `json:"title"`
		Authors struct {
			Author json.RawMessage `json:"author"`
		} `json:"authors"`
		URL string `json:"ee"`
	} `json:"info"`
}

func (d *DBLP) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	q := url.Values{}
	q.Set("q", QueryString(title, 6))
	q.Set("format", "json")
	q.Set("h", "10")
	reqURL := fmt.Sprintf("%s?%s", dblpBaseURL, q.Encode())

	body, outcome, err := get(ctx, client, reqURL, nil, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	var resp dblpResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.TransientError(fmt.Sprintf("decode dblp payload: %v", err)), nil
	}

	candidates := make([]Candidate, 0, len(resp.Result.Hits.Hit))
	for _, hit := range resp.Result.Hits.Hit {
		candidates = append(candidates, Candidate{
			Title:   strings.TrimSpace(hit.Info.Title),
			Authors: decodeDBLPAuthors(hit.Info.Authors.Author),
			URL:     hit.Info.URL,
		})
	}

	if match, ok := FirstMatch(title, candidates); ok {
		return domain.Found(match.Title, match.Authors, match.URL), nil
	}
	return domain.NotFound(), nil
}

// decodeDBLPAuthors handles dblp's inconsistent author shape: a single
// object when there is exactly one author, an array otherwise.
func decodeDBLPAuthors(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &single); err == nil && single.Text != "" {
		return []string{single.Text}
	}
	var many []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &many); err == nil {
		out := make([]string, 0, len(many))
		for _, a := range many {
			if a.Text != "" {
				out = append(out, a.Text)
			}
		}
		return out
	}
	return nil
}
