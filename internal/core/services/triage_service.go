package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lorrc/triage-desk/internal/core/domain"
	apperrors "github.com/lorrc/triage-desk/internal/core/errors"
	"github.com/lorrc/triage-desk/internal/core/ports"
	"github.com/lorrc/triage-desk/internal/core/query"
	"github.com/lorrc/triage-desk/internal/infrastructure/logging"
)

const (
	noteStampLayout = "2006-01-02 15:04"

	maxCategories      = 20
	maxCategoryLength  = 100
	maxReplyBodyLength = 10000
)

// TriageConfig holds the session settings.
type TriageConfig struct {
	Taxonomy    domain.Taxonomy
	StorageKey  string
	ReplySender string
	Now         func() time.Time
}

// TriageService owns the working set of one operator session. Every
// operation runs under a single mutex.
type TriageService struct {
	mu sync.Mutex

	feed        ports.TicketFeed
	store       *OverrideStore
	metrics     ports.TriageMetrics
	taxonomy    domain.Taxonomy
	replySender string
	now         func() time.Time
	logger      *slog.Logger

	tickets  []*domain.Ticket
	index    map[domain.TicketID]*domain.Ticket
	baseline *Baseline
	threads  *ThreadLedger
	filters  domain.FilterConfiguration
	loadedAt *time.Time
	loadErr  error
}

var _ ports.TriageService = (*TriageService)(nil)

// NewTriageService creates a session with an empty working set. Call Load to
// populate it.
func NewTriageService(
	feed ports.TicketFeed,
	storage ports.OverrideStorage,
	metrics ports.TriageMetrics,
	cfg TriageConfig,
	logger *slog.Logger,
) ports.TriageService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ReplySender == "" {
		cfg.ReplySender = domain.Defaults.ReplySender
	}
	if len(cfg.Taxonomy.Axes) == 0 {
		cfg.Taxonomy = domain.DefaultTaxonomy()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}

	s := &TriageService{
		feed:        feed,
		store:       NewOverrideStore(storage, cfg.StorageKey, logger),
		metrics:     metrics,
		taxonomy:    cfg.Taxonomy,
		replySender: cfg.ReplySender,
		now:         cfg.Now,
		logger:      logger.With("component", "triage_session"),
	}
	s.reset()
	return s
}

// reset empties the working set.
func (s *TriageService) reset() {
	s.tickets = []*domain.Ticket{}
	s.index = map[domain.TicketID]*domain.Ticket{}
	s.baseline = SnapshotBaseline(nil)
	s.threads = NewThreadLedger()
	s.store.Track(s.baseline)
	s.filters = domain.DefaultFilters(s.taxonomy, s.taxonomy.CategoryOptions(nil))
}

// Load fetches and parses the feed, normalizes every record, snapshots the
// baseline and layers the stored overrides on top.
func (s *TriageService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Reload discards the working set, baseline and threads and loads again.
func (s *TriageService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.InfoContext(ctx, "reloading tickets")
	return s.load(ctx)
}

// ClearOverrides deletes every stored override and reloads.
func (s *TriageService) ClearOverrides(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "stored overrides cleared")
	return s.load(ctx)
}

func (s *TriageService) load(ctx context.Context) error {
	s.reset()

	// 1. Fetch the feed
	data, err := s.feed.Fetch(ctx)
	if err != nil {
		return s.failLoad(ctx, fmt.Errorf("%w: %w", apperrors.ErrFeedUnavailable, err))
	}

	// 2. Parse the document shape
	batch, err := domain.ParseFeed(data)
	if err != nil {
		return s.failLoad(ctx, err)
	}
	if batch.Skipped > 0 {
		s.logger.WarnContext(ctx, "skipped feed entries that are not objects", "count", batch.Skipped)
	}

	// 3. Normalize and classify
	tickets := make([]*domain.Ticket, 0, len(batch.Tickets))
	index := make(map[domain.TicketID]*domain.Ticket, len(batch.Tickets))
	for _, raw := range batch.Tickets {
		t := domain.Normalize(raw)
		if t.ID == "" {
			s.logger.WarnContext(ctx, "ticket without id", "subject", t.Subject)
		}
		if _, dup := index[t.ID]; dup {
			s.logger.WarnContext(ctx, "duplicate ticket id, first one wins for lookups", "ticket_id", t.ID)
		} else {
			index[t.ID] = t
		}
		tickets = append(tickets, t)
	}

	// 4. Baseline before any override
	s.baseline = SnapshotBaseline(tickets)
	s.store.Track(s.baseline)

	// 5. Stored overrides
	s.store.Load(ctx)
	applied := s.store.ApplyToTickets(tickets, s.threads)

	s.tickets = tickets
	s.index = index
	s.filters = domain.DefaultFilters(s.taxonomy, s.taxonomy.CategoryOptions(tickets))
	now := s.now()
	s.loadedAt = &now
	s.loadErr = nil

	s.metrics.WorkingSetChanged(len(s.tickets), s.store.Len())
	s.logger.InfoContext(ctx, "tickets loaded",
		"source", s.feed.Source(),
		"tickets", len(tickets),
		"overrides", s.store.Len(),
		"overrides_applied", applied,
	)
	return nil
}

func (s *TriageService) failLoad(ctx context.Context, cause error) error {
	loadErr := apperrors.NewLoadError(s.feed.Source(), cause)
	s.loadErr = loadErr
	s.metrics.LoadFailed()
	s.metrics.WorkingSetChanged(0, s.store.Len())
	s.logger.ErrorContext(ctx, "failed to load tickets", "source", s.feed.Source(), "error", cause)
	return loadErr
}

// List returns the grouped list view. A non-nil patch overrides the session
// filters for this call only.
func (s *TriageService) List(ctx context.Context, patch *domain.FilterPatch) (domain.TicketList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.filters
	if patch != nil {
		if err := s.validatePatch(*patch); err != nil {
			return domain.TicketList{}, err
		}
		cfg = patch.Apply(cfg)
	}
	list := query.List(s.tickets, cfg, s.taxonomy)
	for i := range list.Sections {
		list.Sections[i].Tickets = cloneTickets(list.Sections[i].Tickets)
	}
	return list, nil
}

// Dashboard aggregates the full working set, ignoring filters.
func (s *TriageService) Dashboard(ctx context.Context) domain.Dashboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Aggregate(s.tickets)
}

// Ticket returns a ticket with its conversation.
func (s *TriageService) Ticket(ctx context.Context, id domain.TicketID) (*ports.TicketDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.index[id]
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}

	stored := s.threads.Get(id)
	thread := make([]domain.Message, 0, len(stored)+1)
	thread = append(thread, t.SeedMessage())
	thread = append(thread, stored...)

	return &ports.TicketDetail{
		Ticket:          t.Clone(),
		Thread:          thread,
		CategoryOptions: s.taxonomy.CategoryOptions(s.tickets),
	}, nil
}

// CategoryOptions returns the default categories plus those seen in data.
func (s *TriageService) CategoryOptions(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taxonomy.CategoryOptions(s.tickets)
}

// MonthOptions returns the distinct month keys of the working set, ascending.
func (s *TriageService) MonthOptions(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]struct{}{}
	months := []string{}
	for _, t := range s.tickets {
		m := t.Month()
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		months = append(months, m)
	}
	sort.Strings(months)
	return months
}

func (s *TriageService) Taxonomy() domain.Taxonomy {
	return s.taxonomy
}

// Status describes the working set and the outcome of the last load.
func (s *TriageService) Status(ctx context.Context) ports.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := ports.SessionStatus{
		Tickets:   len(s.tickets),
		Overrides: s.store.Len(),
		Source:    s.feed.Source(),
		LoadedAt:  s.loadedAt,
	}
	if s.loadErr != nil {
		st.LoadError = s.loadErr.Error()
	}
	return st
}

// Filters returns the session filter configuration.
func (s *TriageService) Filters(ctx context.Context) domain.FilterConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters.Clone()
}

// UpdateFilters validates and applies a partial filter update.
func (s *TriageService) UpdateFilters(ctx context.Context, patch domain.FilterPatch) (domain.FilterConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validatePatch(patch); err != nil {
		return domain.FilterConfiguration{}, err
	}
	s.filters = patch.Apply(s.filters)
	return s.filters.Clone(), nil
}

// ResetFilters restores the "show everything" configuration.
func (s *TriageService) ResetFilters(ctx context.Context) domain.FilterConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filters = domain.DefaultFilters(s.taxonomy, s.taxonomy.CategoryOptions(s.tickets))
	return s.filters.Clone()
}

func (s *TriageService) validatePatch(p domain.FilterPatch) error {
	verrs := apperrors.NewValidationErrors()
	if p.Month != nil && *p.Month != domain.Defaults.Wildcard && !domain.IsMonthKey(*p.Month) {
		verrs.Add("month", "must be YYYY-MM or "+domain.Defaults.Wildcard)
	}
	if p.Routing != nil && *p.Routing != domain.Defaults.Wildcard && !domain.Routing(*p.Routing).IsValid() {
		verrs.Add("routing", "unknown routing value")
	}
	if p.Status != nil && *p.Status != domain.Defaults.Wildcard && !domain.TicketStatus(*p.Status).IsValid() {
		verrs.Add("status", "unknown status value")
	}
	if p.Sort != nil && !p.Sort.IsValid() {
		verrs.Add("sort", "unknown sort key")
	}
	if p.ActiveAxis != nil && !s.taxonomy.HasAxis(*p.ActiveAxis) {
		verrs.Add("activeAxis", "unknown axis")
	}
	if verrs.HasErrors() {
		return verrs
	}
	return nil
}

// Reply appends an outbound message to the ticket's thread.
func (s *TriageService) Reply(ctx context.Context, params ports.ReplyParams) (*ports.MutationResult, error) {
	body := strings.TrimSpace(params.Body)
	if body == "" {
		verrs := apperrors.NewValidationErrors()
		verrs.Add("body", apperrors.ErrReplyRequired.Error())
		return nil, verrs
	}
	if len(body) > maxReplyBodyLength {
		verrs := apperrors.NewValidationErrors()
		verrs.Add("body", fmt.Sprintf("must be at most %d characters", maxReplyBodyLength))
		return nil, verrs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, "reply", params.TicketID, func(t *domain.Ticket) (bool, string) {
		s.threads.Append(t.ID, domain.Message{
			From:      s.replySender,
			Date:      s.stamp(),
			Body:      body,
			Direction: domain.DirectionOutbound,
		})
		return true, "Reply sent"
	})
}

// ChangeRouting sets the routing of a ticket. The classifier threshold is not
// applied to manual changes.
func (s *TriageService) ChangeRouting(ctx context.Context, params ports.ChangeRoutingParams) (*ports.MutationResult, error) {
	if !params.Routing.IsValid() {
		verrs := apperrors.NewValidationErrors()
		verrs.Add("routing", apperrors.ErrInvalidRouting.Error())
		return nil, verrs
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changeRouting(ctx, "routing", params.TicketID, params.Routing)
}

// Escalate routes a ticket to the named handler regardless of confidence.
func (s *TriageService) Escalate(ctx context.Context, id domain.TicketID) (*ports.MutationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changeRouting(ctx, "escalate", id, domain.RoutingHandler)
}

func (s *TriageService) changeRouting(ctx context.Context, kind string, id domain.TicketID, routing domain.Routing) (*ports.MutationResult, error) {
	return s.mutate(ctx, kind, id, func(t *domain.Ticket) (bool, string) {
		if t.Routing == routing {
			return false, ""
		}
		t.Routing = routing
		return true, fmt.Sprintf("Routing changed to %s", routing)
	})
}

// ChangeStatus sets the status of a ticket.
func (s *TriageService) ChangeStatus(ctx context.Context, params ports.ChangeStatusParams) (*ports.MutationResult, error) {
	if !params.Status.IsValid() {
		verrs := apperrors.NewValidationErrors()
		verrs.Add("status", apperrors.ErrInvalidStatus.Error())
		return nil, verrs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mutate(ctx, "status", params.TicketID, func(t *domain.Ticket) (bool, string) {
		if t.Status == params.Status {
			return false, ""
		}
		t.Status = params.Status
		return true, fmt.Sprintf("Status changed to %s", params.Status)
	})
}

// ChangeCategories replaces the categories of a ticket. An empty selection
// falls back to the taxonomy's fallback category.
func (s *TriageService) ChangeCategories(ctx context.Context, params ports.ChangeCategoriesParams) (*ports.MutationResult, error) {
	categories := domain.CleanCategories(params.Categories, true)

	verrs := apperrors.NewValidationErrors()
	if len(categories) > maxCategories {
		verrs.Add("categories", apperrors.ErrTooManyCategories.Error())
	}
	for _, c := range categories {
		if len(c) > maxCategoryLength {
			verrs.Add("categories", apperrors.ErrCategoryTooLong.Error())
			break
		}
	}
	if verrs.HasErrors() {
		return nil, verrs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(categories) == 0 {
		categories = []string{s.taxonomy.FallbackCategory}
	}

	return s.mutate(ctx, "categories", params.TicketID, func(t *domain.Ticket) (bool, string) {
		if domain.CategoriesEqual(t.Categories, categories) {
			return false, ""
		}
		t.SetCategories(categories)
		return true, fmt.Sprintf("Categories changed to %s", t.DisplayCategory)
	})
}

// mutate runs one operator action against a ticket. When apply reports a
// change, a note line is appended and the override is reconciled. Not-found
// and no-op outcomes leave note, thread and storage untouched.
func (s *TriageService) mutate(
	ctx context.Context,
	kind string,
	id domain.TicketID,
	apply func(t *domain.Ticket) (changed bool, note string),
) (*ports.MutationResult, error) {
	ctx = logging.WithTicketID(ctx, id.String())

	t, ok := s.index[id]
	if !ok {
		s.metrics.MutationRecorded(kind, domain.OutcomeNotFound)
		s.logger.DebugContext(ctx, "mutation on unknown ticket", "kind", kind)
		return &ports.MutationResult{
			Outcome: domain.OutcomeNotFound,
			Message: apperrors.ErrTicketNotFound.Error(),
		}, nil
	}

	changed, note := apply(t)
	if !changed {
		s.metrics.MutationRecorded(kind, domain.OutcomeNoChange)
		return &ports.MutationResult{
			Outcome: domain.OutcomeNoChange,
			Message: domain.NoChangeMessage,
			Ticket:  t.Clone(),
		}, nil
	}

	t.AppendNote(s.stamp(), note)

	if err := s.store.Reconcile(ctx, t, s.threads.Get(id)); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist override", "kind", kind, "error", err)
		return nil, fmt.Errorf("persist override for ticket %s: %w", id, errors.Join(apperrors.ErrStorageUnavailable, err))
	}

	s.metrics.MutationRecorded(kind, domain.OutcomeChanged)
	s.metrics.WorkingSetChanged(len(s.tickets), s.store.Len())
	s.logger.InfoContext(ctx, "ticket updated", "kind", kind, "note", note)

	return &ports.MutationResult{
		Outcome: domain.OutcomeChanged,
		Message: note,
		Ticket:  t.Clone(),
	}, nil
}

func (s *TriageService) stamp() string {
	return s.now().Format(noteStampLayout)
}

func cloneTickets(tickets []*domain.Ticket) []*domain.Ticket {
	out := make([]*domain.Ticket, len(tickets))
	for i, t := range tickets {
		out[i] = t.Clone()
	}
	return out
}

type noopMetrics struct{}

func (noopMetrics) MutationRecorded(string, domain.Outcome) {}
func (noopMetrics) WorkingSetChanged(int, int)              {}
func (noopMetrics) LoadFailed()                             {}
