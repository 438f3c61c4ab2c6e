package backend

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/domain"
)

const arxivBaseURL = "http://export.arxiv.org/api/query"

// Arxiv queries export.arxiv.org/api/query, grounded on the teacher's
// pkg/arxiv/client.go Atom-feed unmarshaling shape.
type Arxiv struct {
	base
}

func NewArxiv(log zerolog.Logger) *Arxiv { return &Arxiv{base: newBase(log, "arXiv")} }

func (a *Arxiv) Name() string      { return "arXiv" }
func (a *Arxiv) IsLocal() bool     { return false }
func (a *Arxiv) RequiresDOI() bool { return false }

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Title   string        `xml:"title"`
	Authors []arxivAuthor `xml:"author"`
	Links   []arxivLink   `xml:"link"`
	ID      string        `xml:"id"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

func (a *Arxiv) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	q := url.Values{}
	q.Set("search_query", "ti:\""+QueryString(title, 6)+"\"")
	q.Set("max_results", "10")
	reqURL := fmt.Sprintf("%s?%s", arxivBaseURL, q.Encode())

	body, outcome, err := get(ctx, client, reqURL, nil, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return domain.TransientError(fmt.Sprintf("decode arxiv feed: %v", err)), nil
	}

	candidates := make([]Candidate, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		authors := make([]string, 0, len(e.Authors))
		for _, auth := range e.Authors {
			authors = append(authors, strings.TrimSpace(auth.Name))
		}
		url := e.ID
		for _, l := range e.Links {
			if l.Type == "application/pdf" {
				url = l.Href
				break
			}
		}
		candidates = append(candidates, Candidate{Title: strings.TrimSpace(e.Title), Authors: authors, URL: url})
	}

	if match, ok := FirstMatch(title, candidates); ok {
		return domain.Found(match.Title, match.Authors, match.URL), nil
	}
	return domain.NotFound(), nil
}
