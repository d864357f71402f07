package reconcile

import (
	"context"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/payments"
)

// PaymentProvider is the subset of the payment provider client the engine uses
type PaymentProvider interface {
	CreateConnectedAccount(ctx context.Context, creatorID, email string) (string, error)
	GetAccountStatus(ctx context.Context, accountID string) (*domain.AccountStatus, error)
	CreateOnboardingLink(ctx context.Context, accountID, returnURL, refreshURL string) (*domain.Link, error)
	CreateLoginLink(ctx context.Context, accountID string) (*domain.Link, error)
	CreateCheckoutSession(ctx context.Context, p payments.CheckoutParams) (*domain.CheckoutSession, error)
	GetCustomerEmail(ctx context.Context, accountID, customerID string) (string, error)
}

// ChatInviter sends one email invitation to one room
type ChatInviter interface {
	InviteByEmail(ctx context.Context, roomID, email string) domain.InviteResult
}

// LinkURLs builds the provider redirect targets for a connected account
type LinkURLs interface {
	OnboardingReturnURL(accountID string) string
	OnboardingRefreshURL(accountID string) string
}

// Notifier is told about checkouts whose invitations did not all succeed
type Notifier interface {
	InviteFailures(ctx context.Context, outcome domain.CheckoutOutcome)
}
