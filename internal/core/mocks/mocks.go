package mocks

import (
	"context"

	"github.com/lorrc/triage-desk/internal/core/domain"
	"github.com/lorrc/triage-desk/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockOverrideStorage is a mock implementation of ports.OverrideStorage
type MockOverrideStorage struct {
	mock.Mock
}

func NewMockOverrideStorage() *MockOverrideStorage {
	return &MockOverrideStorage{}
}

func (m *MockOverrideStorage) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockOverrideStorage) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockOverrideStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockOverrideStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockTicketFeed is a mock implementation of ports.TicketFeed
type MockTicketFeed struct {
	mock.Mock
}

func NewMockTicketFeed() *MockTicketFeed {
	return &MockTicketFeed{}
}

func (m *MockTicketFeed) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTicketFeed) Source() string {
	args := m.Called()
	return args.String(0)
}

// MockTriageMetrics is a mock implementation of ports.TriageMetrics
type MockTriageMetrics struct {
	mock.Mock
}

func NewMockTriageMetrics() *MockTriageMetrics {
	return &MockTriageMetrics{}
}

func (m *MockTriageMetrics) MutationRecorded(kind string, outcome domain.Outcome) {
	m.Called(kind, outcome)
}

func (m *MockTriageMetrics) WorkingSetChanged(tickets, overrides int) {
	m.Called(tickets, overrides)
}

func (m *MockTriageMetrics) LoadFailed() {
	m.Called()
}

// MockTriageService is a mock implementation of ports.TriageService
type MockTriageService struct {
	mock.Mock
}

func NewMockTriageService() *MockTriageService {
	return &MockTriageService{}
}

func (m *MockTriageService) Load(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTriageService) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTriageService) ClearOverrides(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTriageService) List(ctx context.Context, patch *domain.FilterPatch) (domain.TicketList, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(domain.TicketList), args.Error(1)
}

func (m *MockTriageService) Dashboard(ctx context.Context) domain.Dashboard {
	args := m.Called(ctx)
	return args.Get(0).(domain.Dashboard)
}

func (m *MockTriageService) Ticket(ctx context.Context, id domain.TicketID) (*ports.TicketDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.TicketDetail), args.Error(1)
}

func (m *MockTriageService) CategoryOptions(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

func (m *MockTriageService) MonthOptions(ctx context.Context) []string {
	args := m.Called(ctx)
	return args.Get(0).([]string)
}

func (m *MockTriageService) Taxonomy() domain.Taxonomy {
	args := m.Called()
	return args.Get(0).(domain.Taxonomy)
}

func (m *MockTriageService) Status(ctx context.Context) ports.SessionStatus {
	args := m.Called(ctx)
	return args.Get(0).(ports.SessionStatus)
}

func (m *MockTriageService) Filters(ctx context.Context) domain.FilterConfiguration {
	args := m.Called(ctx)
	return args.Get(0).(domain.FilterConfiguration)
}

func (m *MockTriageService) UpdateFilters(ctx context.Context, patch domain.FilterPatch) (domain.FilterConfiguration, error) {
	args := m.Called(ctx, patch)
	return args.Get(0).(domain.FilterConfiguration), args.Error(1)
}

func (m *MockTriageService) ResetFilters(ctx context.Context) domain.FilterConfiguration {
	args := m.Called(ctx)
	return args.Get(0).(domain.FilterConfiguration)
}

func (m *MockTriageService) Reply(ctx context.Context, params ports.ReplyParams) (*ports.MutationResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.MutationResult), args.Error(1)
}

func (m *MockTriageService) ChangeRouting(ctx context.Context, params ports.ChangeRoutingParams) (*ports.MutationResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.MutationResult), args.Error(1)
}

func (m *MockTriageService) ChangeStatus(ctx context.Context, params ports.ChangeStatusParams) (*ports.MutationResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.MutationResult), args.Error(1)
}

func (m *MockTriageService) ChangeCategories(ctx context.Context, params ports.ChangeCategoriesParams) (*ports.MutationResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.MutationResult), args.Error(1)
}

func (m *MockTriageService) Escalate(ctx context.Context, id domain.TicketID) (*ports.MutationResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.MutationResult), args.Error(1)
}
