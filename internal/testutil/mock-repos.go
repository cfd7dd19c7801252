package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"fedclassroom/internal/core/domain"
	"fedclassroom/internal/core/ports/output"
)

// MockActivityRepo is a mock of ActivityRepository.
type MockActivityRepo struct {
	mock.Mock
}

func (m *MockActivityRepo) Create(ctx context.Context, activity *domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockActivityRepo) List(ctx context.Context, filter ports.ActivityListFilter) ([]*domain.Activity, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Activity), args.Int(1), args.Error(2)
}

func (m *MockActivityRepo) StudentStats(ctx context.Context, since time.Time) ([]domain.StudentStat, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StudentStat), args.Error(1)
}

// MockLocalUpdateRepo is a mock of LocalUpdateRepository.
type MockLocalUpdateRepo struct {
	mock.Mock
}

func (m *MockLocalUpdateRepo) Create(ctx context.Context, update *domain.LocalUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockLocalUpdateRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LocalUpdate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LocalUpdate), args.Error(1)
}

func (m *MockLocalUpdateRepo) List(ctx context.Context, filter ports.UpdateListFilter) ([]*domain.LocalUpdate, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.LocalUpdate), args.Int(1), args.Error(2)
}

// MockGlobalModelStore is a mock of GlobalModelStore.
type MockGlobalModelStore struct {
	mock.Mock
}

func (m *MockGlobalModelStore) Load(ctx context.Context) (*domain.GlobalModel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GlobalModel), args.Error(1)
}

func (m *MockGlobalModelStore) Save(ctx context.Context, model *domain.GlobalModel) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

// MockLocalDataset is a mock of LocalDatasetRepository.
type MockLocalDataset struct {
	mock.Mock
}

func (m *MockLocalDataset) Append(ctx context.Context, activity *domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *MockLocalDataset) All(ctx context.Context) ([]*domain.Activity, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

func (m *MockLocalDataset) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockFederationClient is a mock of FederationClient.
type MockFederationClient struct {
	mock.Mock
}

func (m *MockFederationClient) FetchGlobalModel(ctx context.Context) (*domain.GlobalModel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GlobalModel), args.Error(1)
}

func (m *MockFederationClient) SubmitLocalUpdate(ctx context.Context, req *ports.LocalUpdateRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// MockActivityReporter is a mock of ActivityReporter.
type MockActivityReporter struct {
	mock.Mock
}

func (m *MockActivityReporter) ReportActivity(ctx context.Context, activity *domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}
