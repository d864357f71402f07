package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/payments"
)

// memStore is an in-memory record store with the same write rules as the real stores
type memStore struct {
	mu      sync.Mutex
	records map[string]domain.Creator
	writes  int

	getErr    error
	findErr   error
	upsertErr error
	listErr   error
	// beforeUpsert runs before each write, with the lock released
	beforeUpsert func(c *domain.Creator)
}

func newMemStore(seed ...domain.Creator) *memStore {
	s := &memStore{records: make(map[string]domain.Creator)}
	for _, c := range seed {
		s.records[c.CreatorID] = c
	}
	return s
}

func (s *memStore) Get(_ context.Context, creatorID string) (*domain.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	c, ok := s.records[creatorID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCreatorNotFound, creatorID)
	}
	return clone(c), nil
}

func (s *memStore) Upsert(_ context.Context, creator *domain.Creator) error {
	if s.beforeUpsert != nil {
		s.beforeUpsert(creator)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upsertErr != nil {
		return s.upsertErr
	}

	next := *clone(*creator)
	if prev, ok := s.records[creator.CreatorID]; ok {
		if prev.ProviderAccountID != "" && prev.ProviderAccountID != next.ProviderAccountID {
			return domain.ErrAccountIDConflict
		}
		next.CreatedAt = prev.CreatedAt
		if next.UpdatedAt.Before(prev.UpdatedAt) {
			next.UpdatedAt = prev.UpdatedAt
		}
	}
	s.records[creator.CreatorID] = next
	s.writes++
	return nil
}

func (s *memStore) List(context.Context) ([]domain.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]domain.Creator, 0, len(s.records))
	for _, c := range s.records {
		out = append(out, *clone(c))
	}
	return out, nil
}

func (s *memStore) FindByProviderAccountID(_ context.Context, accountID string) (*domain.Creator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, c := range s.records {
		if c.ProviderAccountID == accountID {
			return clone(c), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrCreatorNotFound, accountID)
}

func (s *memStore) Ping(context.Context) error { return nil }

func (s *memStore) record(creatorID string) (domain.Creator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.records[creatorID]
	return c, ok
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func clone(c domain.Creator) *domain.Creator {
	c.ChatRoomIDs = append([]string{}, c.ChatRoomIDs...)
	return &c
}

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateConnectedAccount(ctx context.Context, creatorID, email string) (string, error) {
	args := m.Called(ctx, creatorID, email)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) GetAccountStatus(ctx context.Context, accountID string) (*domain.AccountStatus, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountStatus), args.Error(1)
}

func (m *MockProvider) CreateOnboardingLink(ctx context.Context, accountID, returnURL, refreshURL string) (*domain.Link, error) {
	args := m.Called(ctx, accountID, returnURL, refreshURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockProvider) CreateLoginLink(ctx context.Context, accountID string) (*domain.Link, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockProvider) CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (*domain.CheckoutSession, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutSession), args.Error(1)
}

func (m *MockProvider) GetCustomerEmail(ctx context.Context, accountID, customerID string) (string, error) {
	args := m.Called(ctx, accountID, customerID)
	return args.String(0), args.Error(1)
}

type MockChat struct {
	mock.Mock
}

func (m *MockChat) InviteByEmail(ctx context.Context, roomID, email string) domain.InviteResult {
	args := m.Called(ctx, roomID, email)
	return args.Get(0).(domain.InviteResult)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) InviteFailures(ctx context.Context, outcome domain.CheckoutOutcome) {
	m.Called(ctx, outcome)
}

type fakeURLs struct{}

func (fakeURLs) OnboardingReturnURL(accountID string) string {
	return "https://launchpass.test/connect/return?account_id=" + accountID
}

func (fakeURLs) OnboardingRefreshURL(accountID string) string {
	return "https://launchpass.test/connect/refresh?account_id=" + accountID
}

// stepClock returns a fixed time that tests can move in either direction
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func newStepClock() *stepClock {
	return &stepClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
