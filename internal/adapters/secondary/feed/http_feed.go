package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lorrc/triage-desk/internal/core/ports"
)

const maxFeedBytes = 32 << 20

// HTTPFeed downloads the feed document. Any non-2xx response is a fetch error.
type HTTPFeed struct {
	url    string
	client *http.Client
}

var _ ports.TicketFeed = (*HTTPFeed)(nil)

func NewHTTPFeed(url string, timeout time.Duration) *HTTPFeed {
	return &HTTPFeed{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (f *HTTPFeed) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching feed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("reading feed response: %w", err)
	}
	return data, nil
}

func (f *HTTPFeed) Source() string {
	return f.url
}
