package reconcile

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/repository"
)

// Service applies provider notifications and admin requests to the creator record store.
// It keeps no record state between calls; every operation re-reads the store.
type Service interface {
	Onboard(ctx context.Context, req OnboardRequest) (*OnboardResult, error)
	ReconcileAccountUpdate(ctx context.Context, status domain.AccountStatus) (*AccountUpdateResult, error)
	ReconcileCheckoutCompleted(ctx context.Context, in CheckoutCompleted) (*domain.CheckoutOutcome, error)
	ReconcileSubscriptionDeleted(ctx context.Context, accountID, customerID string) error

	CompleteOnboardingReturn(ctx context.Context, accountID string) (*OnboardingReturn, error)
	RefreshOnboardingLink(ctx context.Context, accountID string) (*domain.Link, error)

	CreateCheckout(ctx context.Context, req CheckoutRequest) (*domain.CheckoutSession, error)
	GetCreatorStatus(ctx context.Context, creatorID string) (*CreatorStatus, error)
	ListCreators(ctx context.Context) ([]domain.Creator, error)
	CreateLoginLink(ctx context.Context, creatorID string) (*domain.Link, error)
	AddRooms(ctx context.Context, creatorID string, roomIDs []string) (*domain.Creator, error)
}

// Options carries the platform-level settings the engine needs
type Options struct {
	// DefaultRoomIDs are invited when a creator has no rooms of its own
	DefaultRoomIDs    []string
	DefaultFeePercent int
	// DefaultSuccessURL and DefaultCancelURL are used when a checkout request omits them
	DefaultSuccessURL string
	DefaultCancelURL  string
	InviteConcurrency int
	// Now is overridable for tests
	Now func() time.Time
}

// OnboardRequest starts or resumes onboarding for a creator
type OnboardRequest struct {
	CreatorID   string
	Email       string
	DisplayName string
}

// OnboardResult carries the record and a fresh onboarding link
type OnboardResult struct {
	Creator        *domain.Creator
	OnboardingLink *domain.Link
	// Created is true when this call inserted the record
	Created bool
	// AccountCreated is true when this call created the provider account
	AccountCreated bool
}

// AccountUpdateResult reports what an account status notification did
type AccountUpdateResult struct {
	// Known is false when no creator carries the account id; nothing was written
	Known   bool
	Creator *domain.Creator
	// OnboardingCompleted is true when this update flipped the ratchet
	OnboardingCompleted bool
}

// CheckoutCompleted is the subset of a completed checkout the engine consumes.
// Emails are tried in order DetailsEmail, CustomerEmail, then the customer record.
type CheckoutCompleted struct {
	AccountID     string
	SessionID     string
	CustomerID    string
	DetailsEmail  string
	CustomerEmail string
}

// OnboardingReturn is the state shown to a creator coming back from onboarding
type OnboardingReturn struct {
	Status         string
	CreatorID      string
	AccountID      string
	ChargesEnabled bool
	RetryLink      *domain.Link
}

// CheckoutRequest creates a checkout on a creator's connected account.
// A nil FeePercent means the platform default.
type CheckoutRequest struct {
	CreatorID  string
	PriceID    string
	FeePercent *int
	SuccessURL string
	CancelURL  string
}

// CreatorStatus is a stored record plus the provider's live view of its account
type CreatorStatus struct {
	Creator  domain.Creator
	Provider *domain.AccountStatus
}

type service struct {
	store    repository.Creator
	provider PaymentProvider
	chat     ChatInviter
	notifier Notifier
	urls     LinkURLs
	validate *validator.Validate

	defaultRooms      []string
	defaultFeePercent int
	successURL        string
	cancelURL         string
	inviteConcurrency int
	now               func() time.Time
}

// NewService creates a new reconciliation service
func NewService(store repository.Creator, provider PaymentProvider, chat ChatInviter, notifier Notifier, urls LinkURLs, opts Options) Service {
	if opts.InviteConcurrency <= 0 {
		opts.InviteConcurrency = DefaultInviteConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &service{
		store:             store,
		provider:          provider,
		chat:              chat,
		notifier:          notifier,
		urls:              urls,
		validate:          validator.New(),
		defaultRooms:      append([]string(nil), opts.DefaultRoomIDs...),
		defaultFeePercent: opts.DefaultFeePercent,
		successURL:        opts.DefaultSuccessURL,
		cancelURL:         opts.DefaultCancelURL,
		inviteConcurrency: opts.InviteConcurrency,
		now:               func() time.Time { return opts.Now().UTC() },
	}
}

type nopNotifier struct{}

func (nopNotifier) InviteFailures(context.Context, domain.CheckoutOutcome) {}
