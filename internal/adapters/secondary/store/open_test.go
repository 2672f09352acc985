package store_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/lorrc/triage-desk/internal/adapters/secondary/store"
	"github.com/lorrc/triage-desk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory", func(t *testing.T) {
		opened, err := store.Open(ctx, config.StoreConfig{Driver: config.StoreMemory}, logger)
		require.NoError(t, err)
		defer opened.Close()
		assert.NoError(t, opened.Storage.Ping(ctx))
		assert.Nil(t, opened.Postgres)
	})

	t.Run("file", func(t *testing.T) {
		opened, err := store.Open(ctx, config.StoreConfig{Driver: config.StoreFile, Dir: t.TempDir()}, logger)
		require.NoError(t, err)
		defer opened.Close()

		require.NoError(t, opened.Storage.Set(ctx, "k", `{}`))
		v, ok, err := opened.Storage.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `{}`, v)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := store.Open(ctx, config.StoreConfig{Driver: "sqlite"}, logger)
		assert.Error(t, err)
	})

	t.Run("bad postgres url", func(t *testing.T) {
		_, err := store.Open(ctx, config.StoreConfig{Driver: config.StorePostgres, DatabaseURL: "::not a url::"}, logger)
		assert.Error(t, err)
	})
}
