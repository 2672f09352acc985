// Package query answers list and dashboard questions over a ticket collection.
// Every function is a pure function of its inputs.
package query

import (
	"strings"

	"github.com/lorrc/triage-desk/internal/core/domain"
)

// Predicate decides whether a ticket is part of the result.
type Predicate func(t *domain.Ticket) bool

// Predicates returns the filter predicates of cfg in evaluation order.
func Predicates(cfg domain.FilterConfiguration) []Predicate {
	return []Predicate{
		MatchText(cfg.Query),
		MatchMonth(cfg.Month),
		MatchCategories(cfg.Categories),
		MatchRouting(cfg.Routing),
		MatchStatus(cfg.Status),
	}
}

// Filter keeps the tickets that satisfy every predicate of cfg, in input order.
func Filter(tickets []*domain.Ticket, cfg domain.FilterConfiguration) []*domain.Ticket {
	preds := Predicates(cfg)
	out := make([]*domain.Ticket, 0, len(tickets))
next:
	for _, t := range tickets {
		for _, p := range preds {
			if !p(t) {
				continue next
			}
		}
		out = append(out, t)
	}
	return out
}

// MatchText does a case-insensitive substring match over the searchable
// fields. A blank query matches everything.
func MatchText(query string) Predicate {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return func(*domain.Ticket) bool { return true }
	}
	return func(t *domain.Ticket) bool {
		for _, field := range []string{
			string(t.ID), t.Subject, t.Body, t.Sender, t.DisplayCategory, t.Axis,
		} {
			if strings.Contains(strings.ToLower(field), q) {
				return true
			}
		}
		return false
	}
}

func MatchMonth(month string) Predicate {
	if month == "" || month == domain.Defaults.Wildcard {
		return func(*domain.Ticket) bool { return true }
	}
	return func(t *domain.Ticket) bool { return t.Month() == month }
}

// MatchCategories is true when the ticket shares at least one category with
// the selection. Tickets without categories never match.
func MatchCategories(selected domain.CategorySet) Predicate {
	return func(t *domain.Ticket) bool {
		for _, c := range t.Categories {
			if selected.Contains(c) {
				return true
			}
		}
		return false
	}
}

func MatchRouting(routing string) Predicate {
	if routing == "" || routing == domain.Defaults.Wildcard {
		return func(*domain.Ticket) bool { return true }
	}
	return func(t *domain.Ticket) bool { return string(t.Routing) == routing }
}

func MatchStatus(status string) Predicate {
	if status == "" || status == domain.Defaults.Wildcard {
		return func(*domain.Ticket) bool { return true }
	}
	return func(t *domain.Ticket) bool { return string(t.Status) == status }
}
