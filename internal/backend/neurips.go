package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/domain"
)

// neuripsYears is the fixed lookback window NeurIPS is probed over, newest
// first. NeurIPS has no search endpoint, so each year's index page is
// fetched and scanned for a matching title link.
var neuripsYears = []int{2023, 2022, 2021, 2020, 2019, 2018}

// NeurIPS walks papers.nips.cc's per-year index pages with goquery, then
// follows a matching paper's detail page to pull its author list. Grounded
// on the original scraper.rs's anchor-text walk plus a second "li.author"
// pass on the paper page.
type NeurIPS struct {
	base
}

func NewNeurIPS(log zerolog.Logger) *NeurIPS { return &NeurIPS{base: newBase(log, "NeurIPS")} }

func (n *NeurIPS) Name() string      { return "NeurIPS" }
func (n *NeurIPS) IsLocal() bool     { return false }
func (n *NeurIPS) RequiresDOI() bool { return false }

func (n *NeurIPS) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	for _, year := range neuripsYears {
		indexURL := fmt.Sprintf("https://papers.nips.cc/paper_files/paper/%d/hash/index.html", year)

		body, outcome, err := get(ctx, client, indexURL, nil, timeout)
		if err != nil {
			return domain.QueryOutcome{}, err
		}
		if outcome != nil {
			if outcome.Kind == domain.OutcomeRateLimited {
				return *outcome, nil
			}
			// a missing/broken year index is not fatal to the overall query:
			// move on to the next year.
			continue
		}

		doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
		if parseErr != nil {
			continue
		}

		var href, foundTitle string
		doc.Find("a").EachWithBreak(func(_ int, link *goquery.Selection) bool {
			text := strings.TrimSpace(link.Text())
			if text == "" || !matcherMatch(title, text) {
				return true
			}
			foundTitle = text
			href, _ = link.Attr("href")
			return false
		})
		if foundTitle == "" {
			continue
		}

		paperURL := "https://papers.nips.cc" + href
		authors := n.fetchAuthors(ctx, client, paperURL, timeout)
		return domain.Found(foundTitle, authors, paperURL), nil
	}
	return domain.NotFound(), nil
}

func (n *NeurIPS) fetchAuthors(ctx context.Context, client *http.Client, paperURL string, timeout time.Duration) []string {
	body, outcome, err := get(ctx, client, paperURL, nil, timeout)
	if err != nil || outcome != nil {
		return nil
	}
	doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if parseErr != nil {
		return nil
	}
	var authors []string
	doc.Find("li.author").Each(func(_ int, el *goquery.Selection) {
		name := strings.TrimSpace(el.Text())
		if name != "" {
			authors = append(authors, name)
		}
	})
	return authors
}
