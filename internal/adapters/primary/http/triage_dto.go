package http

import (
	"math"
	"time"

	"github.com/lorrc/triage-desk/internal/adapters/primary/validation"
	"github.com/lorrc/triage-desk/internal/core/domain"
	"github.com/lorrc/triage-desk/internal/core/ports"
)

const (
	maxReplyLength    = 10000
	maxCategories     = 20
	maxCategoryLength = 100
	maxQueryLength    = 200
)

// --- Request DTOs ---

// ReplyRequest defines the expected JSON body for sending a reply
type ReplyRequest struct {
	Body string `json:"body"`
}

// Validate validates the reply request
func (r *ReplyRequest) Validate() error {
	v := validation.NewValidator()
	v.Required("body", r.Body).
		MaxLength("body", r.Body, maxReplyLength)
	return v.Err()
}

// ChangeRoutingRequest defines the expected JSON body for routing changes
type ChangeRoutingRequest struct {
	Routing string `json:"routing"`
}

// Validate validates the routing request
func (r *ChangeRoutingRequest) Validate() error {
	v := validation.NewValidator()
	v.Required("routing", r.Routing).
		OneOf("routing", r.Routing, stringsOf(domain.Routings()))
	return v.Err()
}

// ChangeStatusRequest defines the expected JSON body for status changes
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the status request
func (r *ChangeStatusRequest) Validate() error {
	v := validation.NewValidator()
	v.Required("status", r.Status).
		OneOf("status", r.Status, stringsOf(domain.Statuses()))
	return v.Err()
}

// ChangeCategoriesRequest defines the expected JSON body for reclassification.
// An empty list selects the fallback category.
type ChangeCategoriesRequest struct {
	Categories []string `json:"categories"`
}

// Validate validates the categories request
func (r *ChangeCategoriesRequest) Validate() error {
	v := validation.NewValidator()
	v.MaxItems("categories", len(r.Categories), maxCategories)
	for _, c := range r.Categories {
		v.MaxLength("categories", c, maxCategoryLength)
	}
	return v.Err()
}

// FilterPatchRequest defines a partial filter update. Absent fields keep
// their current value.
type FilterPatchRequest struct {
	Query      *string   `json:"query"`
	Month      *string   `json:"month"`
	Categories *[]string `json:"categories"`
	Routing    *string   `json:"routing"`
	Status     *string   `json:"status"`
	Sort       *string   `json:"sort"`
	ActiveAxis *string   `json:"activeAxis"`
}

// Validate validates the shape of the patch. Value checks live in the service.
func (r *FilterPatchRequest) Validate() error {
	v := validation.NewValidator()
	if r.Query != nil {
		v.MaxLength("query", *r.Query, maxQueryLength)
	}
	if r.Categories != nil {
		v.MaxItems("categories", len(*r.Categories), 100)
	}
	return v.Err()
}

func (r *FilterPatchRequest) toPatch() domain.FilterPatch {
	p := domain.FilterPatch{
		Query:      r.Query,
		Month:      r.Month,
		Routing:    r.Routing,
		Status:     r.Status,
		ActiveAxis: r.ActiveAxis,
	}
	if r.Categories != nil {
		p.Categories = append([]string{}, (*r.Categories)...)
	}
	if r.Sort != nil {
		key := domain.SortKey(*r.Sort)
		p.Sort = &key
	}
	return p
}

// --- Response DTOs ---

// TicketDTO defines the JSON response for tickets.
type TicketDTO struct {
	ID                string   `json:"id"`
	Subject           string   `json:"subject"`
	Body              string   `json:"body"`
	Sender            string   `json:"sender"`
	Axis              string   `json:"axis"`
	Date              string   `json:"date"`
	Categories        []string `json:"categories"`
	DisplayCategory   string   `json:"displayCategory"`
	Routing           string   `json:"routing"`
	Status            string   `json:"status"`
	Confidence        float64  `json:"confidence"`
	ConfidencePercent int      `json:"confidencePercent"`
	Note              string   `json:"note"`
}

func toTicketDTO(t *domain.Ticket) TicketDTO {
	categories := append([]string{}, t.Categories...)
	return TicketDTO{
		ID:                t.ID.String(),
		Subject:           t.Subject,
		Body:              t.Body,
		Sender:            t.Sender,
		Axis:              t.Axis,
		Date:              t.Date,
		Categories:        categories,
		DisplayCategory:   t.DisplayCategory,
		Routing:           string(t.Routing),
		Status:            string(t.Status),
		Confidence:        t.Confidence,
		ConfidencePercent: int(math.Round(t.Confidence * 100)),
		Note:              t.Note,
	}
}

func toTicketDTOs(tickets []*domain.Ticket) []TicketDTO {
	response := make([]TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		response = append(response, toTicketDTO(t))
	}
	return response
}

// MessageDTO is one entry of a ticket conversation.
type MessageDTO struct {
	From      string `json:"from"`
	Date      string `json:"date"`
	Body      string `json:"body"`
	Direction string `json:"direction"`
}

// TicketDetailDTO defines the JSON response for a single ticket.
type TicketDetailDTO struct {
	Ticket          TicketDTO    `json:"ticket"`
	Thread          []MessageDTO `json:"thread"`
	CategoryOptions []string     `json:"categoryOptions"`
	RoutingOptions  []string     `json:"routingOptions"`
	StatusOptions   []string     `json:"statusOptions"`
}

func toTicketDetailDTO(d *ports.TicketDetail) TicketDetailDTO {
	thread := make([]MessageDTO, 0, len(d.Thread))
	for _, m := range d.Thread {
		thread = append(thread, MessageDTO{
			From:      m.From,
			Date:      m.Date,
			Body:      m.Body,
			Direction: string(m.Direction),
		})
	}
	return TicketDetailDTO{
		Ticket:          toTicketDTO(d.Ticket),
		Thread:          thread,
		CategoryOptions: nonNil(d.CategoryOptions),
		RoutingOptions:  stringsOf(domain.Routings()),
		StatusOptions:   stringsOf(domain.Statuses()),
	}
}

// MutationResponse reports the outcome of an operator action.
type MutationResponse struct {
	Outcome string     `json:"outcome"`
	Message string     `json:"message"`
	Ticket  *TicketDTO `json:"ticket,omitempty"`
}

func toMutationResponse(res *ports.MutationResult) MutationResponse {
	out := MutationResponse{
		Outcome: string(res.Outcome),
		Message: res.Message,
	}
	if res.Ticket != nil {
		dto := toTicketDTO(res.Ticket)
		out.Ticket = &dto
	}
	return out
}

// SectionDTO is one category-axis group of the list view.
type SectionDTO struct {
	Axis    string      `json:"axis"`
	Known   bool        `json:"known"`
	Count   int         `json:"count"`
	Tickets []TicketDTO `json:"tickets"`
}

// TicketListResponse defines the JSON response for the list view.
type TicketListResponse struct {
	Sections []SectionDTO `json:"sections"`
	Count    int          `json:"count"`
}

func toTicketListResponse(list domain.TicketList) TicketListResponse {
	sections := make([]SectionDTO, 0, len(list.Sections))
	for _, s := range list.Sections {
		sections = append(sections, SectionDTO{
			Axis:    s.Axis,
			Known:   s.Known,
			Count:   len(s.Tickets),
			Tickets: toTicketDTOs(s.Tickets),
		})
	}
	return TicketListResponse{Sections: sections, Count: list.Count}
}

// CountDTO is one histogram bar.
type CountDTO struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DashboardResponse defines the JSON response for the dashboard.
type DashboardResponse struct {
	Total         int        `json:"total"`
	Solved        int        `json:"solved"`
	Open          int        `json:"open"`
	SolvedPercent int        `json:"solvedPercent"`
	OpenPercent   int        `json:"openPercent"`
	ByCategory    []CountDTO `json:"byCategory"`
	ByRouting     []CountDTO `json:"byRouting"`
	ByMonth       []CountDTO `json:"byMonth"`
}

func toCountDTOs(counts []domain.Count) []CountDTO {
	out := make([]CountDTO, 0, len(counts))
	for _, c := range counts {
		out = append(out, CountDTO{Label: c.Label, Count: c.Count})
	}
	return out
}

func toDashboardResponse(d domain.Dashboard) DashboardResponse {
	return DashboardResponse{
		Total:         d.Total,
		Solved:        d.Solved,
		Open:          d.Open,
		SolvedPercent: d.SolvedPercent,
		OpenPercent:   d.OpenPercent,
		ByCategory:    toCountDTOs(d.ByCategory),
		ByRouting:     toCountDTOs(d.ByRouting),
		ByMonth:       toCountDTOs(d.ByMonth),
	}
}

// FiltersDTO defines the JSON response for the filter configuration.
type FiltersDTO struct {
	Query      string   `json:"query"`
	Month      string   `json:"month"`
	Categories []string `json:"categories"`
	Routing    string   `json:"routing"`
	Status     string   `json:"status"`
	Sort       string   `json:"sort"`
	ActiveAxis string   `json:"activeAxis"`
}

func toFiltersDTO(f domain.FilterConfiguration) FiltersDTO {
	return FiltersDTO{
		Query:      f.Query,
		Month:      f.Month,
		Categories: f.Categories.Sorted(),
		Routing:    f.Routing,
		Status:     f.Status,
		Sort:       string(f.Sort),
		ActiveAxis: f.ActiveAxis,
	}
}

// OptionsResponse lists every selectable value for the filter and editor controls.
type OptionsResponse struct {
	Categories []string `json:"categories"`
	Months     []string `json:"months"`
	Routings   []string `json:"routings"`
	Statuses   []string `json:"statuses"`
	Axes       []string `json:"axes"`
	Sorts      []string `json:"sorts"`
	Wildcard   string   `json:"wildcard"`
}

// StatusResponse describes the working set.
type StatusResponse struct {
	Tickets   int     `json:"tickets"`
	Overrides int     `json:"overrides"`
	Source    string  `json:"source"`
	LoadedAt  *string `json:"loadedAt"`
	LoadError *string `json:"loadError"`
}

func toStatusResponse(st ports.SessionStatus) StatusResponse {
	out := StatusResponse{
		Tickets:   st.Tickets,
		Overrides: st.Overrides,
		Source:    st.Source,
	}
	if st.LoadedAt != nil {
		value := st.LoadedAt.UTC().Format(time.RFC3339)
		out.LoadedAt = &value
	}
	if st.LoadError != "" {
		value := st.LoadError
		out.LoadError = &value
	}
	return out
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
