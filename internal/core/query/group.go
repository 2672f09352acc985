package query

import (
	"github.com/lorrc/triage-desk/internal/core/domain"
)

// Group partitions tickets by axis. Sections come out with the active axis
// first (when known), then the remaining known axes in order, then ad-hoc
// sections for unrecognized axis values in first-seen order. Known sections
// are emitted even when empty.
func Group(tickets []*domain.Ticket, axisOrder []string, active string) []domain.Section {
	order := make([]string, 0, len(axisOrder))
	known := make(map[string]bool, len(axisOrder))
	for _, a := range axisOrder {
		known[a] = true
	}
	if known[active] {
		order = append(order, active)
	}
	for _, a := range axisOrder {
		if a != active {
			order = append(order, a)
		}
	}

	buckets := make(map[string][]*domain.Ticket, len(order))
	var adhoc []string
	for _, t := range tickets {
		if !known[t.Axis] {
			if _, seen := buckets[t.Axis]; !seen {
				adhoc = append(adhoc, t.Axis)
			}
		}
		buckets[t.Axis] = append(buckets[t.Axis], t)
	}

	sections := make([]domain.Section, 0, len(order)+len(adhoc))
	for _, a := range order {
		sections = append(sections, domain.Section{
			Axis:    a,
			Known:   true,
			Tickets: nonNil(buckets[a]),
		})
	}
	for _, a := range adhoc {
		sections = append(sections, domain.Section{Axis: a, Tickets: buckets[a]})
	}
	return sections
}

// List filters, sorts and groups tickets for the list view.
func List(tickets []*domain.Ticket, cfg domain.FilterConfiguration, tax domain.Taxonomy) domain.TicketList {
	visible := Sort(Filter(tickets, cfg), cfg.Sort)
	return domain.TicketList{
		Sections: Group(visible, tax.Axes, cfg.ActiveAxis),
		Count:    len(visible),
	}
}

func nonNil(tickets []*domain.Ticket) []*domain.Ticket {
	if tickets == nil {
		return []*domain.Ticket{}
	}
	return tickets
}
