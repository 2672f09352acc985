package services

import (
	"github.com/lorrc/triage-desk/internal/core/domain"
)

// BaselineEntry is the as-loaded state of a ticket, before stored overrides.
type BaselineEntry struct {
	Routing    domain.Routing
	Status     domain.TicketStatus
	Categories []string
}

// Baseline is the read-only reference point for change detection. It is
// captured once per load.
type Baseline struct {
	entries map[domain.TicketID]BaselineEntry
}

// SnapshotBaseline records the state of every ticket. When ids repeat the
// first ticket wins, matching ticket lookup.
func SnapshotBaseline(tickets []*domain.Ticket) *Baseline {
	b := &Baseline{entries: make(map[domain.TicketID]BaselineEntry, len(tickets))}
	for _, t := range tickets {
		if _, exists := b.entries[t.ID]; exists {
			continue
		}
		b.entries[t.ID] = BaselineEntry{
			Routing:    t.Routing,
			Status:     t.Status,
			Categories: append(make([]string, 0, len(t.Categories)), t.Categories...),
		}
	}
	return b
}

// Get returns the entry of a ticket and whether one was recorded.
func (b *Baseline) Get(id domain.TicketID) (BaselineEntry, bool) {
	if b == nil {
		return BaselineEntry{}, false
	}
	e, ok := b.entries[id]
	return e, ok
}

func (b *Baseline) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}
