// Package feed provides the ticket feed sources.
package feed

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lorrc/triage-desk/internal/core/ports"
)

// FileFeed reads the feed document from disk on every fetch.
type FileFeed struct {
	path string
}

var _ ports.TicketFeed = (*FileFeed)(nil)

func NewFileFeed(path string) *FileFeed {
	return &FileFeed{path: path}
}

func (f *FileFeed) Fetch(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading feed file: %w", err)
	}
	return data, nil
}

func (f *FileFeed) Source() string {
	return f.path
}

// New returns an HTTP feed when url is set and a file feed otherwise.
func New(path, url string, timeout time.Duration) ports.TicketFeed {
	if url != "" {
		return NewHTTPFeed(url, timeout)
	}
	return NewFileFeed(path)
}
