package query_test

import (
	"testing"

	"github.com/lorrc/triage-desk/internal/core/domain"
	"github.com/lorrc/triage-desk/internal/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticket(id, axis, date string, status domain.TicketStatus, categories ...string) *domain.Ticket {
	t := &domain.Ticket{
		ID:      domain.TicketID(id),
		Subject: "Subject " + id,
		Axis:    axis,
		Date:    date,
		Status:  status,
		Routing: domain.RoutingStaff,
	}
	t.SetCategories(categories)
	return t
}

func ids(tickets []*domain.Ticket) []string {
	out := make([]string, len(tickets))
	for i, t := range tickets {
		out[i] = string(t.ID)
	}
	return out
}

func allFilters(categories ...string) domain.FilterConfiguration {
	return domain.DefaultFilters(domain.DefaultTaxonomy(), categories)
}

func TestMatchCategories(t *testing.T) {
	tk := ticket("1", "Rugby", "2026-01-01", domain.StatusOpen, "Size", "Other")

	assert.False(t, query.MatchCategories(domain.NewCategorySet("Delivery"))(tk))
	assert.True(t, query.MatchCategories(domain.NewCategorySet("Size"))(tk))
	assert.False(t, query.MatchCategories(domain.NewCategorySet())(tk))
}

func TestFilter_ZeroCategoryTicketIsHidden(t *testing.T) {
	tickets := []*domain.Ticket{
		ticket("1", "Rugby", "2026-01-01", domain.StatusOpen),
		ticket("2", "Rugby", "2026-01-01", domain.StatusOpen, "Andet"),
	}
	cfg := allFilters(domain.Defaults.CategoryOptions...)

	assert.Equal(t, []string{"2"}, ids(query.Filter(tickets, cfg)))
}

func TestFilter(t *testing.T) {
	a := ticket("1", "Rugby", "2026-01-10", domain.StatusOpen, "Levering")
	a.Sender = "Anna@Example.com"
	b := ticket("2", "Hockey", "2026-02-03", domain.StatusClosed, "Størrelse")
	b.Routing = domain.RoutingHandler
	c := ticket("3", "Cricket", "2026-02-20", domain.StatusOpen, "Levering", "Andet")
	tickets := []*domain.Ticket{a, b, c}
	base := allFilters("Levering", "Størrelse", "Andet")

	tests := []struct {
		name  string
		patch domain.FilterPatch
		want  []string
	}{
		{"everything", domain.FilterPatch{}, []string{"1", "2", "3"}},
		{"blank query", domain.FilterPatch{Query: ptr("   ")}, []string{"1", "2", "3"}},
		{"query is case-insensitive", domain.FilterPatch{Query: ptr("anna@EXAMPLE")}, []string{"1"}},
		{"query matches axis", domain.FilterPatch{Query: ptr("hockey")}, []string{"2"}},
		{"query matches display category", domain.FilterPatch{Query: ptr("levering + andet")}, []string{"3"}},
		{"query matches id", domain.FilterPatch{Query: ptr("3")}, []string{"3"}},
		{"month", domain.FilterPatch{Month: ptr("2026-02")}, []string{"2", "3"}},
		{"categories", domain.FilterPatch{Categories: []string{"Andet", "Størrelse"}}, []string{"2", "3"}},
		{"routing", domain.FilterPatch{Routing: ptr(string(domain.RoutingHandler))}, []string{"2"}},
		{"status", domain.FilterPatch{Status: ptr(string(domain.StatusOpen))}, []string{"1", "3"}},
		{"combined", domain.FilterPatch{Month: ptr("2026-02"), Status: ptr(string(domain.StatusOpen))}, []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(query.Filter(tickets, tt.patch.Apply(base))))
		})
	}
}

func TestSort(t *testing.T) {
	tickets := []*domain.Ticket{
		ticket("10", "Rugby", "2026-01-02", domain.StatusOpen),
		ticket("2", "Rugby", "2026-01-03", domain.StatusOpen),
		ticket("7", "Rugby", "2026-01-02", domain.StatusOpen),
	}

	tests := []struct {
		key  domain.SortKey
		want []string
	}{
		{domain.SortIDAsc, []string{"2", "7", "10"}},
		{domain.SortIDDesc, []string{"10", "7", "2"}},
		{domain.SortDateAsc, []string{"10", "7", "2"}},
		{domain.SortDateDesc, []string{"2", "10", "7"}},
		{domain.SortKey("priority"), []string{"10", "2", "7"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			sorted := query.Sort(tickets, tt.key)
			assert.Equal(t, tt.want, ids(sorted))
		})
	}

	t.Run("input is untouched", func(t *testing.T) {
		_ = query.Sort(tickets, domain.SortIDAsc)
		assert.Equal(t, []string{"10", "2", "7"}, ids(tickets))
	})

	t.Run("numeric not lexicographic", func(t *testing.T) {
		two := []*domain.Ticket{{ID: "10"}, {ID: "2"}}
		assert.Equal(t, []string{"2", "10"}, ids(query.Sort(two, domain.SortIDAsc)))
	})
}

func TestGroup(t *testing.T) {
	tickets := []*domain.Ticket{
		ticket("1", "Hockey", "", domain.StatusOpen),
		ticket("2", "Padel", "", domain.StatusOpen),
		ticket("3", "Rugby", "", domain.StatusOpen),
		ticket("4", "Hockey", "", domain.StatusOpen),
		ticket("5", "", "", domain.StatusOpen),
	}
	axes := []string{"Rugby", "Hockey", "Cricket"}

	t.Run("active axis first", func(t *testing.T) {
		sections := query.Group(tickets, axes, "Hockey")
		require.Len(t, sections, 5)

		assert.Equal(t, "Hockey", sections[0].Axis)
		assert.Equal(t, []string{"1", "4"}, ids(sections[0].Tickets))
		assert.Equal(t, "Rugby", sections[1].Axis)
		assert.Equal(t, "Cricket", sections[2].Axis)
		assert.NotNil(t, sections[2].Tickets)
		assert.Empty(t, sections[2].Tickets)
		assert.True(t, sections[2].Known)

		assert.Equal(t, "Padel", sections[3].Axis)
		assert.False(t, sections[3].Known)
		assert.Equal(t, "", sections[4].Axis)
	})

	t.Run("unknown active axis keeps taxonomy order", func(t *testing.T) {
		sections := query.Group(nil, axes, "Golf")
		require.Len(t, sections, 3)
		assert.Equal(t, "Rugby", sections[0].Axis)
	})
}

func TestList(t *testing.T) {
	tickets := []*domain.Ticket{
		ticket("10", "Rugby", "2026-01-02", domain.StatusOpen, "Levering"),
		ticket("2", "Rugby", "2026-01-03", domain.StatusClosed, "Levering"),
		ticket("3", "Hockey", "2026-01-04", domain.StatusOpen, "Andet"),
	}
	cfg := allFilters("Levering", "Andet")
	cfg.Sort = domain.SortIDAsc

	list := query.List(tickets, cfg, domain.DefaultTaxonomy())
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, "Rugby", list.Sections[0].Axis)
	assert.Equal(t, []string{"2", "10"}, ids(list.Sections[0].Tickets))
}

func TestAggregate(t *testing.T) {
	tickets := []*domain.Ticket{
		ticket("1", "Rugby", "2026-02-01", domain.StatusOpen, "Levering"),
		ticket("2", "Rugby", "2026-01-01", domain.StatusClosed, "Levering"),
		ticket("3", "Hockey", "2026-01-15", domain.StatusInProgress, "Andet"),
	}
	tickets[0].Routing = domain.RoutingHandler

	d := query.Aggregate(tickets)
	assert.Equal(t, 3, d.Total)
	assert.Equal(t, 1, d.Solved)
	assert.Equal(t, 2, d.Open)
	assert.Equal(t, 33, d.SolvedPercent)
	assert.Equal(t, 67, d.OpenPercent)
	assert.Equal(t, []domain.Count{{Label: "Levering", Count: 2}, {Label: "Andet", Count: 1}}, d.ByCategory)
	assert.Equal(t, []domain.Count{{Label: "Medarbejder", Count: 2}, {Label: "Peter", Count: 1}}, d.ByRouting)
	assert.Equal(t, []domain.Count{{Label: "2026-01", Count: 2}, {Label: "2026-02", Count: 1}}, d.ByMonth)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, query.Percent(3, 0))
	assert.Equal(t, 50, query.Percent(1, 2))
	assert.Equal(t, 67, query.Percent(2, 3))
	assert.Equal(t, 100, query.Percent(4, 4))
}

func ptr[T any](v T) *T { return &v }
