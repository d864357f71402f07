package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/reconcile"
)

// MockService mocks reconcile.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Onboard(ctx context.Context, req reconcile.OnboardRequest) (*reconcile.OnboardResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.OnboardResult), args.Error(1)
}

func (m *MockService) ReconcileAccountUpdate(ctx context.Context, status domain.AccountStatus) (*reconcile.AccountUpdateResult, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.AccountUpdateResult), args.Error(1)
}

func (m *MockService) ReconcileCheckoutCompleted(ctx context.Context, in reconcile.CheckoutCompleted) (*domain.CheckoutOutcome, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutOutcome), args.Error(1)
}

func (m *MockService) ReconcileSubscriptionDeleted(ctx context.Context, accountID, customerID string) error {
	args := m.Called(ctx, accountID, customerID)
	return args.Error(0)
}

func (m *MockService) CompleteOnboardingReturn(ctx context.Context, accountID string) (*reconcile.OnboardingReturn, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.OnboardingReturn), args.Error(1)
}

func (m *MockService) RefreshOnboardingLink(ctx context.Context, accountID string) (*domain.Link, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockService) CreateCheckout(ctx context.Context, req reconcile.CheckoutRequest) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

func (m *MockService) GetCreatorStatus(ctx context.Context, creatorID string) (*reconcile.CreatorStatus, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reconcile.CreatorStatus), args.Error(1)
}

func (m *MockService) ListCreators(ctx context.Context) ([]domain.Creator, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Creator), args.Error(1)
}

func (m *MockService) CreateLoginLink(ctx context.Context, creatorID string) (*domain.Link, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockService) AddRooms(ctx context.Context, creatorID string, roomIDs []string) (*domain.Creator, error) {
	args := m.Called(ctx, creatorID, roomIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Creator), args.Error(1)
}

// MockPinger mocks the record store readiness probe
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
