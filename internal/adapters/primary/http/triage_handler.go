package http

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/triage-desk/internal/adapters/primary/validation"
	"github.com/lorrc/triage-desk/internal/core/domain"
	"github.com/lorrc/triage-desk/internal/core/ports"
	"github.com/lorrc/triage-desk/internal/infrastructure/logging"
)

// TriageHandler handles HTTP requests for the triage session
type TriageHandler struct {
	service      ports.TriageService
	errorHandler *ErrorHandler
	logger       *slog.Logger
}

// NewTriageHandler creates a new triage handler
func NewTriageHandler(service ports.TriageService, errorHandler *ErrorHandler, logger *slog.Logger) *TriageHandler {
	return &TriageHandler{
		service:      service,
		errorHandler: errorHandler,
		logger:       logger.With("handler", "triage"),
	}
}

// RegisterRoutes sets up the routing for all triage endpoints. The write
// middlewares wrap only the routes that change state.
func (h *TriageHandler) RegisterRoutes(r chi.Router, write ...func(http.Handler) http.Handler) {
	r.Get("/tickets", h.HandleListTickets)
	r.Get("/tickets/{ticketID}", h.HandleGetTicket)
	r.Get("/dashboard", h.HandleDashboard)
	r.Get("/filters", h.HandleGetFilters)
	r.Get("/options", h.HandleOptions)
	r.Get("/status", h.HandleStatus)

	r.Group(func(r chi.Router) {
		r.Use(write...)

		r.Post("/tickets/reload", h.HandleReload)
		r.Post("/tickets/{ticketID}/replies", h.HandleReply)
		r.Patch("/tickets/{ticketID}/routing", h.HandleChangeRouting)
		r.Patch("/tickets/{ticketID}/status", h.HandleChangeStatus)
		r.Patch("/tickets/{ticketID}/categories", h.HandleChangeCategories)
		r.Post("/tickets/{ticketID}/escalate", h.HandleEscalate)
		r.Patch("/filters", h.HandleUpdateFilters)
		r.Delete("/filters", h.HandleResetFilters)
		r.Delete("/overrides", h.HandleClearOverrides)
	})
}

// --- Read handlers ---

// HandleListTickets handles GET /tickets. Query parameters override the
// session filters for this request only.
func (h *TriageHandler) HandleListTickets(w http.ResponseWriter, r *http.Request) {
	patch, err := h.parseListQuery(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	list, err := h.service.List(r.Context(), patch)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toTicketListResponse(list))
}

// HandleGetTicket handles GET /tickets/{ticketID}
func (h *TriageHandler) HandleGetTicket(w http.ResponseWriter, r *http.Request) {
	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	detail, err := h.service.Ticket(r.Context(), ticketID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toTicketDetailDTO(detail))
}

// HandleDashboard handles GET /dashboard
func (h *TriageHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, toDashboardResponse(h.service.Dashboard(r.Context())))
}

// HandleGetFilters handles GET /filters
func (h *TriageHandler) HandleGetFilters(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, toFiltersDTO(h.service.Filters(r.Context())))
}

// HandleOptions handles GET /options
func (h *TriageHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tax := h.service.Taxonomy()

	WriteJSON(w, http.StatusOK, OptionsResponse{
		Categories: nonNil(h.service.CategoryOptions(ctx)),
		Months:     nonNil(h.service.MonthOptions(ctx)),
		Routings:   stringsOf(domain.Routings()),
		Statuses:   stringsOf(domain.Statuses()),
		Axes:       nonNil(tax.Axes),
		Sorts:      stringsOf(domain.SortKeys()),
		Wildcard:   domain.Defaults.Wildcard,
	})
}

// HandleStatus handles GET /status
func (h *TriageHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, toStatusResponse(h.service.Status(r.Context())))
}

// --- Session handlers ---

// HandleReload handles POST /tickets/reload
func (h *TriageHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithOperation(r.Context(), "reload")
	if err := h.service.Reload(ctx); err != nil {
		h.errorHandler.Handle(w, r.WithContext(ctx), err)
		return
	}

	st := h.service.Status(ctx)
	h.logger.InfoContext(ctx, "tickets reloaded", "tickets", st.Tickets, "overrides", st.Overrides)
	WriteJSON(w, http.StatusOK, toStatusResponse(st))
}

// HandleClearOverrides handles DELETE /overrides
func (h *TriageHandler) HandleClearOverrides(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithOperation(r.Context(), "clear_overrides")
	if err := h.service.ClearOverrides(ctx); err != nil {
		h.errorHandler.Handle(w, r.WithContext(ctx), err)
		return
	}

	h.logger.InfoContext(ctx, "overrides cleared")
	WriteJSON(w, http.StatusOK, toStatusResponse(h.service.Status(ctx)))
}

// HandleUpdateFilters handles PATCH /filters
func (h *TriageHandler) HandleUpdateFilters(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[FilterPatchRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	filters, err := h.service.UpdateFilters(r.Context(), req.toPatch())
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toFiltersDTO(filters))
}

// HandleResetFilters handles DELETE /filters
func (h *TriageHandler) HandleResetFilters(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, toFiltersDTO(h.service.ResetFilters(r.Context())))
}

// --- Mutation handlers ---

// HandleReply handles POST /tickets/{ticketID}/replies
func (h *TriageHandler) HandleReply(w http.ResponseWriter, r *http.Request) {
	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ReplyRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.runMutation(w, r, ticketID, "reply", func(ctx context.Context) (*ports.MutationResult, error) {
		return h.service.Reply(ctx, ports.ReplyParams{TicketID: ticketID, Body: req.Body})
	})
}

// HandleChangeRouting handles PATCH /tickets/{ticketID}/routing
func (h *TriageHandler) HandleChangeRouting(w http.ResponseWriter, r *http.Request) {
	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ChangeRoutingRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.runMutation(w, r, ticketID, "routing", func(ctx context.Context) (*ports.MutationResult, error) {
		return h.service.ChangeRouting(ctx, ports.ChangeRoutingParams{
			TicketID: ticketID,
			Routing:  domain.Routing(req.Routing),
		})
	})
}

// HandleChangeStatus handles PATCH /tickets/{ticketID}/status
func (h *TriageHandler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ChangeStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.runMutation(w, r, ticketID, "status", func(ctx context.Context) (*ports.MutationResult, error) {
		return h.service.ChangeStatus(ctx, ports.ChangeStatusParams{
			TicketID: ticketID,
			Status:   domain.TicketStatus(req.Status),
		})
	})
}

// HandleChangeCategories handles PATCH /tickets/{ticketID}/categories
func (h *TriageHandler) HandleChangeCategories(w http.ResponseWriter, r *http.Request) {
	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[ChangeCategoriesRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.runMutation(w, r, ticketID, "categories", func(ctx context.Context) (*ports.MutationResult, error) {
		return h.service.ChangeCategories(ctx, ports.ChangeCategoriesParams{
			TicketID:   ticketID,
			Categories: req.Categories,
		})
	})
}

// HandleEscalate handles POST /tickets/{ticketID}/escalate
func (h *TriageHandler) HandleEscalate(w http.ResponseWriter, r *http.Request) {
	ticketID, err := h.parseTicketID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.runMutation(w, r, ticketID, "escalate", func(ctx context.Context) (*ports.MutationResult, error) {
		return h.service.Escalate(ctx, ticketID)
	})
}

// --- Helper methods ---

// runMutation executes an operator action and writes its outcome. A missing
// ticket is reported as 404 with the outcome body.
func (h *TriageHandler) runMutation(
	w http.ResponseWriter,
	r *http.Request,
	ticketID domain.TicketID,
	operation string,
	fn func(ctx context.Context) (*ports.MutationResult, error),
) {
	ctx := logging.WithTicketID(r.Context(), ticketID.String())
	ctx = logging.WithOperation(ctx, operation)

	res, err := fn(ctx)
	if err != nil {
		h.errorHandler.Handle(w, r.WithContext(ctx), err)
		return
	}

	status := http.StatusOK
	if res.Outcome == domain.OutcomeNotFound {
		status = http.StatusNotFound
	}

	WriteJSON(w, status, toMutationResponse(res))
}

// parseTicketID extracts the ticket ID from the URL
func (h *TriageHandler) parseTicketID(r *http.Request) (domain.TicketID, error) {
	raw := chi.URLParam(r, "ticketID")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v := validation.NewValidator()
		v.Custom("ticketID", false, "Invalid ticket ID")
		return "", v.Errors()
	}
	return domain.TicketID(raw), nil
}

// parseListQuery builds a filter patch from query parameters, or nil when
// none of them is present.
func (h *TriageHandler) parseListQuery(r *http.Request) (*domain.FilterPatch, error) {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil, nil
	}

	patch := domain.FilterPatch{
		Query:      validation.ParseStringQueryParam(r, "q"),
		Month:      validation.ParseStringQueryParam(r, "month"),
		Categories: validation.ParseListQueryParam(r, "category"),
		Routing:    validation.ParseStringQueryParam(r, "routing"),
		Status:     validation.ParseStringQueryParam(r, "status"),
		ActiveAxis: validation.ParseStringQueryParam(r, "axis"),
	}
	if sort := validation.ParseStringQueryParam(r, "sort"); sort != nil {
		key := domain.SortKey(*sort)
		patch.Sort = &key
	}

	v := validation.NewValidator()
	if patch.Query != nil {
		v.MaxLength("q", *patch.Query, maxQueryLength)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &patch, nil
}
