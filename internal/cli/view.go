package cli

import (
	"math"

	"github.com/lorrc/triage-desk/internal/core/domain"
)

type ticketView struct {
	ID                string   `json:"id"`
	Subject           string   `json:"subject"`
	Sender            string   `json:"sender"`
	Axis              string   `json:"axis"`
	Date              string   `json:"date"`
	Categories        []string `json:"categories"`
	DisplayCategory   string   `json:"displayCategory"`
	Routing           string   `json:"routing"`
	Status            string   `json:"status"`
	ConfidencePercent int      `json:"confidencePercent"`
	Note              string   `json:"note,omitempty"`
}

func toTicketView(t *domain.Ticket) ticketView {
	return ticketView{
		ID:                string(t.ID),
		Subject:           t.Subject,
		Sender:            t.Sender,
		Axis:              t.Axis,
		Date:              t.Date,
		Categories:        append([]string{}, t.Categories...),
		DisplayCategory:   t.DisplayCategory,
		Routing:           string(t.Routing),
		Status:            string(t.Status),
		ConfidencePercent: int(math.Round(t.Confidence * 100)),
		Note:              t.Note,
	}
}

type sectionView struct {
	Axis    string       `json:"axis"`
	Tickets []ticketView `json:"tickets"`
}

type listView struct {
	Count    int           `json:"count"`
	Sections []sectionView `json:"sections"`
}

type countView struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type summaryView struct {
	Total         int         `json:"total"`
	Solved        int         `json:"solved"`
	Open          int         `json:"open"`
	SolvedPercent int         `json:"solvedPercent"`
	OpenPercent   int         `json:"openPercent"`
	ByCategory    []countView `json:"byCategory"`
	ByRouting     []countView `json:"byRouting"`
	ByMonth       []countView `json:"byMonth"`
}

func toCountViews(counts []domain.Count) []countView {
	out := make([]countView, len(counts))
	for i, c := range counts {
		out[i] = countView{Label: c.Label, Count: c.Count}
	}
	return out
}

type detailView struct {
	Ticket ticketView       `json:"ticket"`
	Thread []domain.Message `json:"thread"`
}
