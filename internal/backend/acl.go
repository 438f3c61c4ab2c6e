package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/paper-app/citeguard/internal/domain"
)

const aclBaseURL = "https://aclanthology.org/search/"

// ACLAnthology scrapes aclanthology.org's search page with goquery,
// grounded on the original scraper.rs selector set (entry container, h5
// title, badge-light author spans, papers/ link).
type ACLAnthology struct {
	base
}

func NewACLAnthology(log zerolog.Logger) *ACLAnthology {
	return &ACLAnthology{base: newBase(log, "ACL Anthology")}
}

func (a *ACLAnthology) Name() string      { return "ACL Anthology" }
func (a *ACLAnthology) IsLocal() bool     { return false }
func (a *ACLAnthology) RequiresDOI() bool { return false }

func (a *ACLAnthology) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	reqURL := fmt.Sprintf("%s?q=%s", aclBaseURL, url.QueryEscape(title))

	body, outcome, err := get(ctx, client, reqURL, nil, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if parseErr != nil {
		return domain.TransientError(fmt.Sprintf("parse acl html: %v", parseErr)), nil
	}

	var foundTitle string
	var authors []string
	var paperURL string
	matched := false

	doc.Find(".d-sm-flex.align-items-stretch.p-2").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		titleEl := entry.Find("h5").First()
		if titleEl.Length() == 0 {
			return true
		}
		candidateTitle := strings.TrimSpace(titleEl.Text())
		if candidateTitle == "" || !matcherMatch(title, candidateTitle) {
			return true
		}

		entry.Find("span.badge.badge-light").Each(func(_ int, badge *goquery.Selection) {
			authors = append(authors, strings.TrimSpace(badge.Text()))
		})
		if href, ok := entry.Find("a[href*='/papers/']").First().Attr("href"); ok {
			paperURL = "https://aclanthology.org" + href
		}
		foundTitle = candidateTitle
		matched = true
		return false
	})

	if !matched {
		return domain.NotFound(), nil
	}
	return domain.Found(foundTitle, authors, paperURL), nil
}
