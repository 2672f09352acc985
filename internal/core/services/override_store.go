package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lorrc/triage-desk/internal/core/domain"
	"github.com/lorrc/triage-desk/internal/core/ports"
)

// OverrideStore keeps the override map in memory and mirrors it to storage
// under a single key. Every write replaces the whole stored value.
type OverrideStore struct {
	storage   ports.OverrideStorage
	key       string
	logger    *slog.Logger
	baseline  *Baseline
	overrides domain.OverrideMap
}

func NewOverrideStore(storage ports.OverrideStorage, key string, logger *slog.Logger) *OverrideStore {
	if key == "" {
		key = domain.Defaults.StorageKey
	}
	return &OverrideStore{
		storage:   storage,
		key:       key,
		logger:    logger.With("component", "override_store"),
		overrides: domain.OverrideMap{},
	}
}

// Track sets the baseline used for change detection.
func (s *OverrideStore) Track(baseline *Baseline) {
	s.baseline = baseline
}

// Overrides returns the current in-memory map.
func (s *OverrideStore) Overrides() domain.OverrideMap {
	return s.overrides
}

func (s *OverrideStore) Len() int {
	return len(s.overrides)
}

// Load reads the stored map. A missing key, a storage failure or unreadable
// content all result in an empty map; nothing is returned to the caller.
func (s *OverrideStore) Load(ctx context.Context) domain.OverrideMap {
	s.overrides = domain.OverrideMap{}

	value, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read overrides, starting empty", "key", s.key, "error", err)
		return s.overrides
	}
	if !found || strings.TrimSpace(value) == "" {
		return s.overrides
	}

	m, skipped, err := domain.DecodeOverrides([]byte(value))
	if err != nil {
		s.logger.Warn("stored overrides are corrupt, starting empty", "key", s.key, "error", err)
		return s.overrides
	}
	if len(skipped) > 0 {
		s.logger.Warn("skipped unreadable override entries", "key", s.key, "ticket_ids", skipped)
	}
	s.overrides = m
	return s.overrides
}

// Save writes the whole map.
func (s *OverrideStore) Save(ctx context.Context) error {
	data, err := domain.EncodeOverrides(s.overrides)
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("save overrides: %w", err)
	}
	return nil
}

// Clear removes the stored map and empties the in-memory copy.
func (s *OverrideStore) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("clear overrides: %w", err)
	}
	s.overrides = domain.OverrideMap{}
	return nil
}

// HasChanges reports whether the ticket diverges from its baseline or carries
// a thread or a note.
func (s *OverrideStore) HasChanges(t *domain.Ticket, thread []domain.Message) bool {
	hasThread := len(thread) > 0
	hasNote := strings.TrimSpace(t.Note) != ""

	base, ok := s.baseline.Get(t.ID)
	if !ok {
		s.logger.Warn("no baseline for ticket, comparing thread and note only", "ticket_id", t.ID)
		return hasThread || hasNote
	}

	return string(t.Routing) != string(base.Routing) ||
		string(t.Status) != string(base.Status) ||
		!domain.CategoriesEqual(t.Categories, base.Categories) ||
		hasThread ||
		hasNote
}

// Reconcile brings the stored entry of a ticket in line with its live state:
// the entry is dropped when nothing differs, otherwise fully rewritten.
func (s *OverrideStore) Reconcile(ctx context.Context, t *domain.Ticket, thread []domain.Message) error {
	if !s.HasChanges(t, thread) {
		delete(s.overrides, t.ID)
	} else {
		s.overrides[t.ID] = domain.NewOverrideRecord(t, thread)
	}
	return s.Save(ctx)
}

// ApplyToTickets layers the current map onto freshly loaded tickets and
// installs stored threads in the ledger. It returns the number of entries
// that matched a ticket.
func (s *OverrideStore) ApplyToTickets(tickets []*domain.Ticket, ledger *ThreadLedger) int {
	byID := make(map[domain.TicketID]*domain.Ticket, len(tickets))
	for _, t := range tickets {
		if _, exists := byID[t.ID]; !exists {
			byID[t.ID] = t
		}
	}

	applied := 0
	for _, id := range s.overrides.IDs() {
		t, ok := byID[id]
		if !ok {
			continue
		}
		rec := s.overrides[id]
		t.ApplyOverride(rec)
		if rec.Thread != nil {
			ledger.Install(id, rec.Thread)
		}
		applied++
	}
	return applied
}
