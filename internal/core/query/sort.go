package query

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lorrc/triage-desk/internal/core/domain"
)

// Sort returns a stably sorted copy of tickets. Dates compare as text, ids
// compare as numbers. An unknown key keeps the input order.
func Sort(tickets []*domain.Ticket, key domain.SortKey) []*domain.Ticket {
	out := append(make([]*domain.Ticket, 0, len(tickets)), tickets...)

	var less func(a, b *domain.Ticket) bool
	switch key {
	case domain.SortDateAsc:
		less = func(a, b *domain.Ticket) bool { return a.Date < b.Date }
	case domain.SortDateDesc:
		less = func(a, b *domain.Ticket) bool { return a.Date > b.Date }
	case domain.SortIDAsc:
		less = func(a, b *domain.Ticket) bool { return numericLess(a.ID, b.ID) }
	case domain.SortIDDesc:
		less = func(a, b *domain.Ticket) bool { return numericLess(b.ID, a.ID) }
	default:
		return out
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// numericID coerces an id to a number. Non-numeric ids yield NaN.
func numericID(id domain.TicketID) float64 {
	s := strings.TrimSpace(string(id))
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// numericLess orders numeric ids. Any comparison involving NaN is false, so
// non-numeric ids keep their relative position.
func numericLess(a, b domain.TicketID) bool {
	return numericID(a) < numericID(b)
}
