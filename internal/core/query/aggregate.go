package query

import (
	"math"
	"sort"

	"github.com/lorrc/triage-desk/internal/core/domain"
)

// Aggregate summarizes the full collection for the dashboard. Callers must
// pass the unfiltered collection.
func Aggregate(tickets []*domain.Ticket) domain.Dashboard {
	d := domain.Dashboard{Total: len(tickets)}

	byCategory := map[string]int{}
	byRouting := map[string]int{}
	byMonth := map[string]int{}
	for _, t := range tickets {
		if t.Status.IsSolved() {
			d.Solved++
		}
		byCategory[t.DisplayCategory]++
		byRouting[string(t.Routing)]++
		byMonth[t.Month()]++
	}
	d.Open = d.Total - d.Solved
	d.SolvedPercent = Percent(d.Solved, d.Total)
	d.OpenPercent = Percent(d.Open, d.Total)
	d.ByCategory = histogram(byCategory)
	d.ByRouting = histogram(byRouting)

	d.ByMonth = make([]domain.Count, 0, len(byMonth))
	for month, n := range byMonth {
		d.ByMonth = append(d.ByMonth, domain.Count{Label: month, Count: n})
	}
	sort.Slice(d.ByMonth, func(i, j int) bool { return d.ByMonth[i].Label < d.ByMonth[j].Label })
	return d
}

// Percent returns round(part/whole*100), or 0 when whole is 0.
func Percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// histogram orders counts by count descending, then label ascending.
func histogram(counts map[string]int) []domain.Count {
	out := make([]domain.Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, domain.Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
