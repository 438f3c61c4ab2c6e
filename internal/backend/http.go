package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/paper-app/citeguard/internal/domain"
)

const defaultUserAgent = "citeguard/1.0 (+https://github.com/paper-app/citeguard; reference validator)"

// get issues a GET request with the given headers, honoring ctx and
// timeout, and classifies the response per spec §4.H/§7: a 429 becomes an
// OutcomeRateLimited (with Retry-After parsed when present), any other
// non-2xx becomes an OutcomeTransientError, and a network/timeout error
// becomes an OutcomeTransientError too. On success the raw body is
// returned for the caller to unmarshal.
func get(ctx context.Context, client *http.Client, url string, headers map[string]string, timeout time.Duration) ([]byte, *domain.QueryOutcome, error) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if timeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		out := domain.TransientError(err.Error())
		return nil, &out, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		var retryAfter *int
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil {
				retryAfter = &secs
			}
		}
		out := domain.RateLimited(retryAfter)
		return nil, &out, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		out := domain.TransientError(fmt.Sprintf("http status %d", resp.StatusCode))
		return nil, &out, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		out := domain.TransientError(err.Error())
		return nil, &out, nil
	}
	return body, nil, nil
}
