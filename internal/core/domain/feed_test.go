package domain_test

import (
	"testing"

	"github.com/lorrc/triage-desk/internal/core/domain"
	apperrors "github.com/lorrc/triage-desk/internal/core/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFeed(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		batch, err := domain.ParseFeed([]byte(`[{"id": "1"}, {"id": "2"}]`))
		require.NoError(t, err)
		assert.Len(t, batch.Tickets, 2)
	})

	t.Run("tickets wrapper", func(t *testing.T) {
		batch, err := domain.ParseFeed([]byte(`{"tickets": [{"id": "1"}]}`))
		require.NoError(t, err)
		assert.Len(t, batch.Tickets, 1)
	})

	t.Run("comments and trailing commas", func(t *testing.T) {
		batch, err := domain.ParseFeed([]byte(`{
			// exported from the mailbox
			"tickets": [{"id": "1",},],
		}`))
		require.NoError(t, err)
		assert.Len(t, batch.Tickets, 1)
	})

	t.Run("non-object entries are skipped", func(t *testing.T) {
		batch, err := domain.ParseFeed([]byte(`[{"id": "1"}, null, 5]`))
		require.NoError(t, err)
		assert.Len(t, batch.Tickets, 1)
		assert.Equal(t, 2, batch.Skipped)
	})

	shapes := []struct {
		name string
		doc  string
	}{
		{"object without tickets", `{"items": []}`},
		{"tickets not an array", `{"tickets": {"id": "1"}}`},
		{"string", `"tickets"`},
		{"number", `42`},
		{"null", `null`},
	}
	for _, tt := range shapes {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.ParseFeed([]byte(tt.doc))
			assert.ErrorIs(t, err, apperrors.ErrFeedShape)
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		_, err := domain.ParseFeed([]byte(`[{"id": `))
		assert.ErrorIs(t, err, apperrors.ErrFeedInvalidJSON)
	})
}
