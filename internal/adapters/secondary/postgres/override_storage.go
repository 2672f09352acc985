package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/triage-desk/internal/core/ports"
)

const (
	getValueQuery = `SELECT value FROM override_store WHERE key = $1`

	upsertValueQuery = `
		INSERT INTO override_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	deleteValueQuery = `DELETE FROM override_store WHERE key = $1`

	recordHistoryQuery = `INSERT INTO override_history (key, value) VALUES ($1, $2)`

	listHistoryQuery = `
		SELECT value, recorded_at FROM override_history
		WHERE key = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT $2`
)

// HistoryEntry is one recorded write of a key. A nil Value records a delete.
type HistoryEntry struct {
	Value      *string
	RecordedAt time.Time
}

// OverrideStorage is the secondary adapter for override persistence in
// PostgreSQL. Every write is also appended to override_history.
type OverrideStorage struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

// Ensure OverrideStorage implements the ports.OverrideStorage interface.
var _ ports.OverrideStorage = (*OverrideStorage)(nil)

// NewOverrideStorage creates a new override storage on the pool.
func NewOverrideStorage(pool *pgxpool.Pool) *OverrideStorage {
	return &OverrideStorage{
		pool: pool,
		tm:   NewTransactionManager(pool),
	}
}

func (s *OverrideStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := GetDBTX(ctx, s.pool).QueryRow(ctx, getValueQuery, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read override value: %w", err)
	}
	return value, true, nil
}

func (s *OverrideStorage) Set(ctx context.Context, key, value string) error {
	return s.tm.WithTransaction(ctx, func(ctx context.Context) error {
		db := GetDBTX(ctx, s.pool)
		if _, err := db.Exec(ctx, upsertValueQuery, key, value); err != nil {
			return fmt.Errorf("failed to write override value: %w", err)
		}
		if _, err := db.Exec(ctx, recordHistoryQuery, key, nullText(&value)); err != nil {
			return fmt.Errorf("failed to record override history: %w", err)
		}
		return nil
	})
}

func (s *OverrideStorage) Delete(ctx context.Context, key string) error {
	return s.tm.WithTransaction(ctx, func(ctx context.Context) error {
		db := GetDBTX(ctx, s.pool)
		if _, err := db.Exec(ctx, deleteValueQuery, key); err != nil {
			return fmt.Errorf("failed to delete override value: %w", err)
		}
		if _, err := db.Exec(ctx, recordHistoryQuery, key, nullText(nil)); err != nil {
			return fmt.Errorf("failed to record override history: %w", err)
		}
		return nil
	})
}

func (s *OverrideStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// History returns the latest writes of a key, newest first.
func (s *OverrideStorage) History(ctx context.Context, key string, limit int) ([]HistoryEntry, error) {
	rows, err := s.pool.Query(ctx, listHistoryQuery, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list override history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			value pgtype.Text
			e     HistoryEntry
		)
		if err := rows.Scan(&value, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan override history: %w", err)
		}
		e.Value = textPtr(value)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
