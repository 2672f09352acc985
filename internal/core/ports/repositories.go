package ports

import (
	"context"
)

// OverrideStorage is a key-value text store holding the serialized override map.
// Get reports found=false for a missing key without an error.
type OverrideStorage interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// TicketFeed supplies the raw feed document.
type TicketFeed interface {
	Fetch(ctx context.Context) ([]byte, error)
	// Source names the feed for logs and error messages.
	Source() string
}
