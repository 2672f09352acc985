package services_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lorrc/triage-desk/internal/adapters/secondary/memory"
	"github.com/lorrc/triage-desk/internal/core/domain"
	apperrors "github.com/lorrc/triage-desk/internal/core/errors"
	"github.com/lorrc/triage-desk/internal/core/mocks"
	"github.com/lorrc/triage-desk/internal/core/ports"
	"github.com/lorrc/triage-desk/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const twoTickets = `[
	{"id": "1", "subject": "Wrong size", "sender": "anna@example.com", "sport": "Rugby", "date": "2026-01-10",
	 "type": "Størrelse", "assignee": "Peter", "confidence": 0.9, "status": "Åben"},
	{"id": "2", "subject": "Late delivery", "sender": "bo@example.com", "sport": "Hockey", "date": "2026-02-03",
	 "type": "Levering", "assignee": "Peter", "confidence": 0.3, "status": "Åben"}
]`

var fixedNow = time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFeed(doc string) *mocks.MockTicketFeed {
	feed := mocks.NewMockTicketFeed()
	feed.On("Fetch", mock.Anything).Return([]byte(doc), nil)
	feed.On("Source").Return("test-feed")
	return feed
}

func newSession(t *testing.T, doc string, storage ports.OverrideStorage) ports.TriageService {
	t.Helper()
	svc := services.NewTriageService(newFeed(doc), storage, nil, services.TriageConfig{
		Now: func() time.Time { return fixedNow },
	}, testLogger())
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func storedMap(t *testing.T, storage ports.OverrideStorage) map[string]map[string]any {
	t.Helper()
	value, found, err := storage.Get(context.Background(), domain.Defaults.StorageKey)
	require.NoError(t, err)
	if !found {
		return nil
	}
	var m map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(value), &m))
	return m
}

func ticketByID(t *testing.T, svc ports.TriageService, id domain.TicketID) *domain.Ticket {
	t.Helper()
	detail, err := svc.Ticket(context.Background(), id)
	require.NoError(t, err)
	return detail.Ticket
}

func TestTriageService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewOverrideStorage()
	svc := newSession(t, twoTickets, storage)

	assert.Equal(t, domain.RoutingHandler, ticketByID(t, svc, "1").Routing)
	assert.Equal(t, domain.RoutingStaff, ticketByID(t, svc, "2").Routing)

	before := svc.Dashboard(ctx)
	assert.Equal(t, 2, before.Open)
	assert.Equal(t, 0, before.Solved)

	res, err := svc.ChangeStatus(ctx, ports.ChangeStatusParams{TicketID: "2", Status: domain.StatusClosed})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeChanged, res.Outcome)

	stored := storedMap(t, storage)
	require.Len(t, stored, 1)
	require.Contains(t, stored, "2")
	assert.Equal(t, "Lukket", stored["2"]["status"])
	assert.Equal(t, "2026-01-05 10:30 • Status changed to Lukket", stored["2"]["note"])

	after := svc.Dashboard(ctx)
	assert.Equal(t, 1, after.Open)
	assert.Equal(t, 1, after.Solved)
	assert.Equal(t, 50, after.SolvedPercent)
}

func TestTriageService_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("load-shape error empties the working set", func(t *testing.T) {
		storage := memory.NewOverrideStorage()
		feed := newFeed(twoTickets)
		svc := services.NewTriageService(feed, storage, nil, services.TriageConfig{}, testLogger())
		require.NoError(t, svc.Load(ctx))
		require.Equal(t, 2, svc.Status(ctx).Tickets)

		feed.ExpectedCalls = nil
		feed.On("Fetch", mock.Anything).Return([]byte(`{"items": []}`), nil)
		feed.On("Source").Return("test-feed")

		err := svc.Reload(ctx)
		var loadErr *apperrors.LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.ErrorIs(t, err, apperrors.ErrFeedShape)
		assert.Equal(t, "Could not load tickets JSON.", loadErr.Message)

		status := svc.Status(ctx)
		assert.Equal(t, 0, status.Tickets)
		assert.NotEmpty(t, status.LoadError)

		list, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, list.Count)
		assert.Equal(t, 0, svc.Dashboard(ctx).Total)
	})

	t.Run("fetch error", func(t *testing.T) {
		feed := mocks.NewMockTicketFeed()
		feed.On("Fetch", mock.Anything).Return(nil, assert.AnError)
		feed.On("Source").Return("test-feed")
		metrics := mocks.NewMockTriageMetrics()
		metrics.On("LoadFailed").Return().Once()
		metrics.On("WorkingSetChanged", 0, 0).Return()

		svc := services.NewTriageService(feed, memory.NewOverrideStorage(), metrics, services.TriageConfig{}, testLogger())
		err := svc.Load(ctx)
		assert.ErrorIs(t, err, apperrors.ErrFeedUnavailable)
		assert.ErrorIs(t, err, assert.AnError)
		metrics.AssertExpectations(t)
	})

	t.Run("corrupt storage starts empty", func(t *testing.T) {
		storage := memory.NewOverrideStorage()
		require.NoError(t, storage.Set(ctx, domain.Defaults.StorageKey, "{not json"))

		svc := newSession(t, twoTickets, storage)
		assert.Equal(t, 0, svc.Status(ctx).Overrides)
		assert.Equal(t, domain.StatusOpen, ticketByID(t, svc, "1").Status)
	})

	t.Run("storage read failure starts empty", func(t *testing.T) {
		storage := mocks.NewMockOverrideStorage()
		storage.On("Get", mock.Anything, domain.Defaults.StorageKey).Return("", false, assert.AnError)

		svc := newSession(t, twoTickets, storage)
		assert.Equal(t, 2, svc.Status(ctx).Tickets)
		assert.Equal(t, 0, svc.Status(ctx).Overrides)
	})

	t.Run("stored overrides are applied", func(t *testing.T) {
		storage := memory.NewOverrideStorage()
		require.NoError(t, storage.Set(ctx, domain.Defaults.StorageKey, `{
			"2": {"assignee": "Medarbejder", "status": "I gang", "note": "n",
			      "replies": [{"from": "UK Sports (Admin)", "date": "2026-01-04 09:00", "body": "On it", "direction": "out"}],
			      "types": ["Levering", "Reklamation"]},
			"99": {"status": "Lukket"}
		}`))

		svc := newSession(t, twoTickets, storage)
		detail, err := svc.Ticket(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusInProgress, detail.Ticket.Status)
		assert.Equal(t, "Levering + Reklamation", detail.Ticket.DisplayCategory)
		require.Len(t, detail.Thread, 2)
		assert.Equal(t, domain.DirectionInbound, detail.Thread[0].Direction)
		assert.Equal(t, "On it", detail.Thread[1].Body)
	})

	t.Run("escalation of a low-confidence ticket reverts on reload", func(t *testing.T) {
		storage := memory.NewOverrideStorage()
		svc := newSession(t, twoTickets, storage)

		res, err := svc.Escalate(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, domain.RoutingHandler, res.Ticket.Routing)

		require.NoError(t, svc.Reload(ctx))
		assert.Equal(t, domain.RoutingStaff, ticketByID(t, svc, "2").Routing)
	})
}

func TestTriageService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewOverrideStorage()
	svc := newSession(t, twoTickets, storage)

	_, err := svc.ChangeRouting(ctx, ports.ChangeRoutingParams{TicketID: "1", Routing: domain.RoutingStaff})
	require.NoError(t, err)
	first, _, _ := storage.Get(ctx, domain.Defaults.StorageKey)

	fresh := newSession(t, twoTickets, storage)
	assert.Equal(t, domain.RoutingStaff, ticketByID(t, fresh, "1").Routing)

	res, err := fresh.ChangeRouting(ctx, ports.ChangeRoutingParams{TicketID: "1", Routing: domain.RoutingStaff})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeNoChange, res.Outcome)

	second, _, _ := storage.Get(ctx, domain.Defaults.StorageKey)
	assert.JSONEq(t, first, second)
}

func TestTriageService_Mutations(t *testing.T) {
	ctx := context.Background()

	t.Run("no-op never touches storage", func(t *testing.T) {
		storage := mocks.NewMockOverrideStorage()
		storage.On("Get", mock.Anything, domain.Defaults.StorageKey).Return("", false, nil)
		svc := newSession(t, twoTickets, storage)

		res, err := svc.ChangeStatus(ctx, ports.ChangeStatusParams{TicketID: "1", Status: domain.StatusOpen})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNoChange, res.Outcome)
		assert.Equal(t, domain.NoChangeMessage, res.Message)
		assert.Empty(t, res.Ticket.Note)

		res, err = svc.ChangeCategories(ctx, ports.ChangeCategoriesParams{TicketID: "1", Categories: []string{" Størrelse ", "Størrelse"}})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNoChange, res.Outcome)

		storage.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not found has no side effects", func(t *testing.T) {
		storage := memory.NewOverrideStorage()
		svc := newSession(t, twoTickets, storage)

		res, err := svc.ChangeStatus(ctx, ports.ChangeStatusParams{TicketID: "404", Status: domain.StatusClosed})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotFound, res.Outcome)
		assert.Nil(t, res.Ticket)

		res, err = svc.Reply(ctx, ports.ReplyParams{TicketID: "404", Body: "hello"})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotFound, res.Outcome)
		assert.Nil(t, storedMap(t, storage))

		_, err = svc.Ticket(ctx, "404")
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		svc := newSession(t, twoTickets, memory.NewOverrideStorage())
		var verrs *apperrors.ValidationErrors

		_, err := svc.Reply(ctx, ports.ReplyParams{TicketID: "1", Body: "   "})
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.Errors, "body")

		_, err = svc.ChangeRouting(ctx, ports.ChangeRoutingParams{TicketID: "1", Routing: "Maria"})
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.Errors, "routing")

		_, err = svc.ChangeStatus(ctx, ports.ChangeStatusParams{TicketID: "1", Status: "Done"})
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.Errors, "status")
	})

	t.Run("reply appends to thread and note", func(t *testing.T) {
		storage := memory.NewOverrideStorage()
		svc := newSession(t, twoTickets, storage)

		res, err := svc.Reply(ctx, ports.ReplyParams{TicketID: "1", Body: "  We will send a new one.  "})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeChanged, res.Outcome)
		assert.Equal(t, "2026-01-05 10:30 • Reply sent", res.Ticket.Note)

		detail, err := svc.Ticket(ctx, "1")
		require.NoError(t, err)
		require.Len(t, detail.Thread, 2)
		assert.Equal(t, domain.Message{
			From:      domain.Defaults.ReplySender,
			Date:      "2026-01-05 10:30",
			Body:      "We will send a new one.",
			Direction: domain.DirectionOutbound,
		}, detail.Thread[1])

		stored := storedMap(t, storage)
		require.Contains(t, stored, "1")
		assert.Len(t, stored["1"]["replies"], 1)
	})

	t.Run("empty category selection falls back", func(t *testing.T) {
		svc := newSession(t, twoTickets, memory.NewOverrideStorage())

		res, err := svc.ChangeCategories(ctx, ports.ChangeCategoriesParams{TicketID: "1", Categories: []string{" ", ""}})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeChanged, res.Outcome)
		assert.Equal(t, []string{"Andet"}, res.Ticket.Categories)
		assert.Contains(t, res.Ticket.Note, "Categories changed to Andet")
	})

	t.Run("categories are deduplicated in order", func(t *testing.T) {
		svc := newSession(t, twoTickets, memory.NewOverrideStorage())

		res, err := svc.ChangeCategories(ctx, ports.ChangeCategoriesParams{
			TicketID:   "1",
			Categories: []string{"Levering", "Størrelse", "Levering"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Levering + Størrelse", res.Ticket.DisplayCategory)
	})

	t.Run("escalate bypasses the threshold", func(t *testing.T) {
		svc := newSession(t, twoTickets, memory.NewOverrideStorage())

		res, err := svc.Escalate(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeChanged, res.Outcome)
		assert.Equal(t, domain.RoutingHandler, res.Ticket.Routing)
		assert.Contains(t, res.Ticket.Note, "Routing changed to Peter")

		res, err = svc.Escalate(ctx, "2")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNoChange, res.Outcome)
	})

	t.Run("storage write failure is returned", func(t *testing.T) {
		storage := mocks.NewMockOverrideStorage()
		storage.On("Get", mock.Anything, domain.Defaults.StorageKey).Return("", false, nil)
		storage.On("Set", mock.Anything, domain.Defaults.StorageKey, mock.Anything).Return(assert.AnError)
		svc := newSession(t, twoTickets, storage)

		_, err := svc.ChangeStatus(ctx, ports.ChangeStatusParams{TicketID: "1", Status: domain.StatusClosed})
		require.Error(t, err)
		assert.ErrorIs(t, err, assert.AnError)

		// the live change stays applied
		assert.Equal(t, domain.StatusClosed, ticketByID(t, svc, "1").Status)
		storage.AssertExpectations(t)
	})

	t.Run("metrics", func(t *testing.T) {
		metrics := mocks.NewMockTriageMetrics()
		metrics.On("WorkingSetChanged", mock.Anything, mock.Anything).Return()
		metrics.On("MutationRecorded", "status", domain.OutcomeChanged).Return().Once()
		metrics.On("MutationRecorded", "status", domain.OutcomeNoChange).Return().Once()

		svc := services.NewTriageService(newFeed(twoTickets), memory.NewOverrideStorage(), metrics, services.TriageConfig{}, testLogger())
		require.NoError(t, svc.Load(ctx))

		_, err := svc.ChangeStatus(ctx, ports.ChangeStatusParams{TicketID: "1", Status: domain.StatusClosed})
		require.NoError(t, err)
		_, err = svc.ChangeStatus(ctx, ports.ChangeStatusParams{TicketID: "1", Status: domain.StatusClosed})
		require.NoError(t, err)
		metrics.AssertExpectations(t)
	})
}

func TestTriageService_ClearOverrides(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewOverrideStorage()
	svc := newSession(t, twoTickets, storage)

	_, err := svc.ChangeStatus(ctx, ports.ChangeStatusParams{TicketID: "2", Status: domain.StatusClosed})
	require.NoError(t, err)
	require.Equal(t, 1, svc.Status(ctx).Overrides)

	require.NoError(t, svc.ClearOverrides(ctx))
	assert.Equal(t, 0, svc.Status(ctx).Overrides)
	assert.Nil(t, storedMap(t, storage))

	tk := ticketByID(t, svc, "2")
	assert.Equal(t, domain.StatusOpen, tk.Status)
	assert.Empty(t, tk.Note)
}

func TestTriageService_Filters(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults select every category option", func(t *testing.T) {
		svc := newSession(t, `[{"id": "1", "sport": "Rugby", "type": "Padel-grej"}]`, memory.NewOverrideStorage())

		f := svc.Filters(ctx)
		assert.Equal(t, "all", f.Month)
		assert.Equal(t, domain.SortDateDesc, f.Sort)
		assert.Equal(t, "Rugby", f.ActiveAxis)
		assert.True(t, f.Categories.Contains("Padel-grej"))
		assert.True(t, f.Categories.Contains("Andet"))
		assert.Equal(t, append(append([]string{}, domain.Defaults.CategoryOptions...), "Padel-grej"), svc.CategoryOptions(ctx))
	})

	t.Run("zero-category tickets are hidden by default", func(t *testing.T) {
		svc := newSession(t, `[{"id": "1", "sport": "Rugby"}, {"id": "2", "sport": "Rugby", "type": "Andet"}]`, memory.NewOverrideStorage())

		list, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, list.Count)
		assert.Equal(t, 2, svc.Dashboard(ctx).Total)
	})

	t.Run("update, validate and reset", func(t *testing.T) {
		svc := newSession(t, twoTickets, memory.NewOverrideStorage())

		month := "2026-02"
		f, err := svc.UpdateFilters(ctx, domain.FilterPatch{Month: &month})
		require.NoError(t, err)
		assert.Equal(t, "2026-02", f.Month)

		list, err := svc.List(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, list.Count)

		bad := "February"
		sortKey := domain.SortKey("priority")
		_, err = svc.UpdateFilters(ctx, domain.FilterPatch{Month: &bad, Sort: &sortKey})
		var verrs *apperrors.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.Errors, "month")
		assert.Contains(t, verrs.Errors, "sort")

		f = svc.ResetFilters(ctx)
		assert.Equal(t, "all", f.Month)
	})

	t.Run("active axis section comes first", func(t *testing.T) {
		svc := newSession(t, twoTickets, memory.NewOverrideStorage())

		axis := "Hockey"
		list, err := svc.List(ctx, &domain.FilterPatch{ActiveAxis: &axis})
		require.NoError(t, err)
		require.NotEmpty(t, list.Sections)
		assert.Equal(t, "Hockey", list.Sections[0].Axis)
		assert.Equal(t, "Rugby", svc.Filters(ctx).ActiveAxis)
	})

	t.Run("month options", func(t *testing.T) {
		svc := newSession(t, twoTickets, memory.NewOverrideStorage())
		assert.Equal(t, []string{"2026-01", "2026-02"}, svc.MonthOptions(ctx))
	})
}
