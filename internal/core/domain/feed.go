package domain

import (
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"

	apperrors "github.com/lorrc/triage-desk/internal/core/errors"
)

// FeedBatch is the parsed content of a feed document.
type FeedBatch struct {
	Tickets []RawTicket
	Skipped int // entries that were not JSON objects
}

// ParseFeed reads a feed document. It accepts a bare array of tickets or an
// object with a "tickets" array, in JSON or JSON with comments and trailing
// commas. Any other shape fails with ErrFeedShape.
func ParseFeed(data []byte) (FeedBatch, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return FeedBatch{}, fmt.Errorf("%w: %v", apperrors.ErrFeedInvalidJSON, err)
	}

	var entries []json.RawMessage
	switch rawKind(std) {
	case '[':
		if err := json.Unmarshal(std, &entries); err != nil {
			return FeedBatch{}, fmt.Errorf("%w: %v", apperrors.ErrFeedInvalidJSON, err)
		}
	case '{':
		var wrapper struct {
			Tickets json.RawMessage `json:"tickets"`
		}
		if err := json.Unmarshal(std, &wrapper); err != nil {
			return FeedBatch{}, fmt.Errorf("%w: %v", apperrors.ErrFeedInvalidJSON, err)
		}
		if rawKind(wrapper.Tickets) != '[' {
			return FeedBatch{}, apperrors.ErrFeedShape
		}
		if err := json.Unmarshal(wrapper.Tickets, &entries); err != nil {
			return FeedBatch{}, fmt.Errorf("%w: %v", apperrors.ErrFeedInvalidJSON, err)
		}
	default:
		return FeedBatch{}, apperrors.ErrFeedShape
	}

	batch := FeedBatch{Tickets: make([]RawTicket, 0, len(entries))}
	for _, entry := range entries {
		if rawKind(entry) != '{' {
			batch.Skipped++
			continue
		}
		var raw RawTicket
		if err := json.Unmarshal(entry, &raw); err != nil {
			batch.Skipped++
			continue
		}
		batch.Tickets = append(batch.Tickets, raw)
	}
	return batch, nil
}
