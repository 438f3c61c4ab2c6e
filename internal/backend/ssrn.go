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

const ssrnBaseURL = "https://papers.ssrn.com/sol3/results.cfm"

// ssrnUserAgent impersonates a desktop browser: SSRN's results page rejects
// the default library user agent with an interstitial challenge page.
const ssrnUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SSRN scrapes papers.ssrn.com's results page with goquery. Grounded on
// the original implementation's scraper.rs walk over "a.title" links; SSRN's
// result markup does not reliably expose author names next to each hit, so
// no authors are extracted and a Found outcome from this backend always
// carries an empty author list (spec §9.iii).
type SSRN struct {
	base
}

func NewSSRN(log zerolog.Logger) *SSRN { return &SSRN{base: newBase(log, "SSRN")} }

func (s *SSRN) Name() string      { return "SSRN" }
func (s *SSRN) IsLocal() bool     { return false }
func (s *SSRN) RequiresDOI() bool { return false }

func (s *SSRN) Query(ctx context.Context, title string, client *http.Client, timeout time.Duration) (domain.QueryOutcome, error) {
	q := url.Values{}
	q.Set("txtKey_Words", QueryString(title, 6))
	reqURL := fmt.Sprintf("%s?%s", ssrnBaseURL, q.Encode())

	headers := map[string]string{
		"User-Agent": ssrnUserAgent,
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	}

	body, outcome, err := get(ctx, client, reqURL, headers, timeout)
	if outcome != nil || err != nil {
		return derefOutcome(outcome), err
	}

	doc, parseErr := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if parseErr != nil {
		return domain.TransientError(fmt.Sprintf("parse ssrn html: %v", parseErr)), nil
	}

	var candidates []Candidate
	doc.Find("a.title").EachWithBreak(func(i int, link *goquery.Selection) bool {
		if i >= 10 {
			return false
		}
		foundTitle := strings.TrimSpace(link.Text())
		if foundTitle == "" {
			return true
		}
		href, _ := link.Attr("href")
		paperURL := ""
		switch {
		case strings.HasPrefix(href, "http"):
			paperURL = href
		case href != "":
			paperURL = "https://papers.ssrn.com" + href
		}
		candidates = append(candidates, Candidate{Title: foundTitle, URL: paperURL})
		return true
	})

	if match, ok := FirstMatch(title, candidates); ok {
		return domain.Found(match.Title, match.Authors, match.URL), nil
	}
	return domain.NotFound(), nil
}
