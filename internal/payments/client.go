package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
	"github.com/osse101/LaunchPass_Go/internal/metrics"
)

// Config configures the payment provider client
type Config struct {
	SecretKey string
	Timeout   time.Duration
	// BaseURL overrides the provider API endpoint, used by tests
	BaseURL string
}

// CheckoutParams describes a checkout session on a connected account
type CheckoutParams struct {
	AccountID  string
	PriceID    string
	FeePercent int
	SuccessURL string
	CancelURL  string
}

// Client wraps the Stripe Connect API.
// Every call carries its own timeout and reports failures as domain.ErrProviderUnavailable.
type Client struct {
	api     *client.API
	timeout time.Duration
}

// NewClient creates a new payment provider client
func NewClient(cfg Config) (*Client, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New(ErrMsgSecretKeyRequired)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		LeveledLogger:     slogAdapter{log: slog.Default().With("component", "payments")},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(strings.TrimRight(cfg.BaseURL, "/"))
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)

	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})

	return &Client{api: api, timeout: cfg.Timeout}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// providerError wraps an SDK error, keeping the provider's error code and message
func providerError(ctx context.Context, op string, err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		logger.FromContext(ctx).Warn(LogMsgProviderError,
			"operation", op,
			"status", serr.HTTPStatusCode,
			"code", serr.Code,
			"request_id", serr.RequestID)
		return fmt.Errorf("%w: %s: %s (%s)", domain.ErrProviderUnavailable, op, serr.Msg, serr.Code)
	}
	logger.FromContext(ctx).Warn(LogMsgProviderError, "operation", op, "error", err)
	return fmt.Errorf("%w: %s: %v", domain.ErrProviderUnavailable, op, err)
}

// CreateConnectedAccount creates an Express account for a creator.
// It does not check for an existing account; callers guarantee uniqueness.
// Repeating the call for the same creator and email inside the provider's
// idempotency window returns the account created the first time.
func (c *Client) CreateConnectedAccount(ctx context.Context, creatorID, email string) (accountID string, err error) {
	defer metrics.ObserveExternalCall(metrics.ServicePaymentProvider, opCreateAccount, time.Now(), &err)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.AccountParams{
		Type:         stripe.String(string(stripe.AccountTypeExpress)),
		Email:        stripe.String(email),
		BusinessType: stripe.String(string(stripe.AccountBusinessTypeIndividual)),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}
	params.Context = ctx
	params.IdempotencyKey = stripe.String(accountIdempotencyKey(creatorID, email))
	params.AddMetadata(metadataCreatorID, creatorID)

	acct, err := c.api.Accounts.New(params)
	if err != nil {
		return "", providerError(ctx, opCreateAccount, err)
	}

	logger.FromContext(ctx).Info(LogMsgAccountCreated, logger.KeyCreatorID, creatorID, logger.KeyAccountID, acct.ID)
	return acct.ID, nil
}

// accountIdempotencyKey is stable per creator and email
func accountIdempotencyKey(creatorID, email string) string {
	return uuid.NewSHA1(idempotencyNamespace, []byte(creatorID+"\x00"+email)).String()
}

// GetAccountStatus retrieves live onboarding and capability state
func (c *Client) GetAccountStatus(ctx context.Context, accountID string) (status *domain.AccountStatus, err error) {
	defer metrics.ObserveExternalCall(metrics.ServicePaymentProvider, opGetAccount, time.Now(), &err)
	if accountID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgAccountIDRequired)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.AccountParams{}
	params.Context = ctx

	acct, err := c.api.Accounts.GetByID(accountID, params)
	if err != nil {
		return nil, providerError(ctx, opGetAccount, err)
	}
	return accountStatus(acct), nil
}

func accountStatus(acct *stripe.Account) *domain.AccountStatus {
	status := &domain.AccountStatus{
		AccountID:        acct.ID,
		ChargesEnabled:   acct.ChargesEnabled,
		DetailsSubmitted: acct.DetailsSubmitted,
		PayoutsEnabled:   acct.PayoutsEnabled,
		Requirements: domain.AccountRequirements{
			CurrentlyDue:  []string{},
			EventuallyDue: []string{},
			PastDue:       []string{},
		},
	}
	if acct.Requirements != nil {
		status.Requirements.CurrentlyDue = append(status.Requirements.CurrentlyDue, acct.Requirements.CurrentlyDue...)
		status.Requirements.EventuallyDue = append(status.Requirements.EventuallyDue, acct.Requirements.EventuallyDue...)
		status.Requirements.PastDue = append(status.Requirements.PastDue, acct.Requirements.PastDue...)
	}
	return status
}

// CreateOnboardingLink requests a fresh hosted onboarding link; links expire server-side
func (c *Client) CreateOnboardingLink(ctx context.Context, accountID, returnURL, refreshURL string) (link *domain.Link, err error) {
	defer metrics.ObserveExternalCall(metrics.ServicePaymentProvider, opCreateAccountLink, time.Now(), &err)
	if accountID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgAccountIDRequired)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		ReturnURL:  stripe.String(returnURL),
		RefreshURL: stripe.String(refreshURL),
		Type:       stripe.String(onboardingLinkType),
	}
	params.Context = ctx

	al, err := c.api.AccountLinks.New(params)
	if err != nil {
		return nil, providerError(ctx, opCreateAccountLink, err)
	}

	logger.FromContext(ctx).Debug(LogMsgLinkCreated, logger.KeyAccountID, accountID, "expires_at", al.ExpiresAt)
	return &domain.Link{URL: al.URL, CreatedAt: al.Created, ExpiresAt: al.ExpiresAt}, nil
}

// CreateLoginLink issues a single-use Express dashboard link. The result is never persisted.
func (c *Client) CreateLoginLink(ctx context.Context, accountID string) (link *domain.Link, err error) {
	defer metrics.ObserveExternalCall(metrics.ServicePaymentProvider, opCreateLoginLink, time.Now(), &err)
	if accountID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgAccountIDRequired)
	}
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.LoginLinkParams{Account: stripe.String(accountID)}
	params.Context = ctx

	ll, err := c.api.LoginLinks.New(params)
	if err != nil {
		return nil, providerError(ctx, opCreateLoginLink, err)
	}
	return &domain.Link{URL: ll.URL, CreatedAt: ll.Created}, nil
}

// CreateCheckoutSession creates a single-item checkout on the connected account.
// Recurring prices pass the fee as a percent; one-time prices get a fixed fee
// computed from the price's unit amount.
func (c *Client) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (session *domain.CheckoutSession, err error) {
	if p.AccountID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgAccountIDRequired)
	}
	if p.PriceID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgPriceIDRequired)
	}
	if err := ValidateFeePercent(p.FeePercent); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	price, err := c.getPrice(ctx, p.AccountID, p.PriceID)
	if err != nil {
		return nil, err
	}

	defer metrics.ObserveExternalCall(metrics.ServicePaymentProvider, opCreateCheckout, time.Now(), &err)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.CheckoutSessionParams{
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			Price:    stripe.String(p.PriceID),
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	params.Context = ctx
	params.SetStripeAccount(p.AccountID)

	result := &domain.CheckoutSession{
		ApplicationFeePct: p.FeePercent,
		Currency:          string(price.Currency),
		UnitAmount:        price.UnitAmount,
	}

	switch price.Type {
	case stripe.PriceTypeRecurring:
		result.Mode = ModeSubscription
		params.Mode = stripe.String(string(stripe.CheckoutSessionModeSubscription))
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			ApplicationFeePercent: stripe.Float64(float64(p.FeePercent)),
		}
	case stripe.PriceTypeOneTime:
		if price.UnitAmount <= 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgPriceHasNoAmount)
		}
		result.Mode = ModePayment
		result.ApplicationFeeAmount = ApplicationFeeAmount(price.UnitAmount, p.FeePercent)
		result.FeeDisplay = FormatMinorUnits(result.ApplicationFeeAmount, string(price.Currency))
		params.Mode = stripe.String(string(stripe.CheckoutSessionModePayment))
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			ApplicationFeeAmount: stripe.Int64(result.ApplicationFeeAmount),
		}
	default:
		return nil, fmt.Errorf("%w: %s %q", domain.ErrInvalidInput, ErrMsgUnsupportedPriceType, price.Type)
	}

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, providerError(ctx, opCreateCheckout, err)
	}
	result.ID = s.ID
	result.URL = s.URL

	logger.FromContext(ctx).Info(LogMsgCheckoutCreated,
		logger.KeyAccountID, p.AccountID,
		logger.KeySessionID, s.ID,
		"mode", result.Mode,
		"fee_percent", p.FeePercent,
		"fee_amount", result.ApplicationFeeAmount)
	return result, nil
}

func (c *Client) getPrice(ctx context.Context, accountID, priceID string) (price *stripe.Price, err error) {
	defer metrics.ObserveExternalCall(metrics.ServicePaymentProvider, opGetPrice, time.Now(), &err)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.PriceParams{}
	params.Context = ctx
	params.SetStripeAccount(accountID)

	price, err = c.api.Prices.Get(priceID, params)
	if err != nil {
		return nil, providerError(ctx, opGetPrice, err)
	}
	return price, nil
}

// GetCustomerEmail looks up a customer on the connected account
func (c *Client) GetCustomerEmail(ctx context.Context, accountID, customerID string) (email string, err error) {
	defer metrics.ObserveExternalCall(metrics.ServicePaymentProvider, opGetCustomer, time.Now(), &err)
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	params := &stripe.CustomerParams{}
	params.Context = ctx
	if accountID != "" {
		params.SetStripeAccount(accountID)
	}

	cust, err := c.api.Customers.Get(customerID, params)
	if err != nil {
		return "", providerError(ctx, opGetCustomer, err)
	}
	return cust.Email, nil
}
