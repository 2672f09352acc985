package ports

import (
	"context"
	"time"

	"github.com/lorrc/triage-desk/internal/core/domain"
)

// TicketDetail is a ticket together with its full conversation, the
// synthesized seed message first.
type TicketDetail struct {
	Ticket          *domain.Ticket
	Thread          []domain.Message
	CategoryOptions []string
}

// MutationResult reports the effect of an operator action.
type MutationResult struct {
	Outcome domain.Outcome
	Message string
	Ticket  *domain.Ticket // nil when the ticket was not found
}

// ChangeRoutingParams defines the input for changing a ticket's routing.
type ChangeRoutingParams struct {
	TicketID domain.TicketID
	Routing  domain.Routing
}

// ChangeStatusParams defines the input for changing a ticket's status.
type ChangeStatusParams struct {
	TicketID domain.TicketID
	Status   domain.TicketStatus
}

// ChangeCategoriesParams defines the input for reclassifying a ticket.
type ChangeCategoriesParams struct {
	TicketID   domain.TicketID
	Categories []string
}

// ReplyParams defines the input for sending a reply.
type ReplyParams struct {
	TicketID domain.TicketID
	Body     string
}

// SessionStatus describes the working set.
type SessionStatus struct {
	Tickets   int
	Overrides int
	Source    string
	LoadedAt  *time.Time
	LoadError string
}

// TriageService defines the operator session over the loaded tickets.
type TriageService interface {
	Load(ctx context.Context) error
	Reload(ctx context.Context) error
	ClearOverrides(ctx context.Context) error

	List(ctx context.Context, patch *domain.FilterPatch) (domain.TicketList, error)
	Dashboard(ctx context.Context) domain.Dashboard
	Ticket(ctx context.Context, id domain.TicketID) (*TicketDetail, error)
	CategoryOptions(ctx context.Context) []string
	MonthOptions(ctx context.Context) []string
	Taxonomy() domain.Taxonomy
	Status(ctx context.Context) SessionStatus

	Filters(ctx context.Context) domain.FilterConfiguration
	UpdateFilters(ctx context.Context, patch domain.FilterPatch) (domain.FilterConfiguration, error)
	ResetFilters(ctx context.Context) domain.FilterConfiguration

	Reply(ctx context.Context, params ReplyParams) (*MutationResult, error)
	ChangeRouting(ctx context.Context, params ChangeRoutingParams) (*MutationResult, error)
	ChangeStatus(ctx context.Context, params ChangeStatusParams) (*MutationResult, error)
	ChangeCategories(ctx context.Context, params ChangeCategoriesParams) (*MutationResult, error)
	Escalate(ctx context.Context, id domain.TicketID) (*MutationResult, error)
}

// TriageMetrics receives session events for monitoring.
type TriageMetrics interface {
	MutationRecorded(kind string, outcome domain.Outcome)
	WorkingSetChanged(tickets, overrides int)
	LoadFailed()
}
