package domain

// Webhook event types consumed from the payment provider's connected-account endpoint
const (
	EventTypeAccountUpdated           = "account.updated"
	EventTypeCheckoutSessionCompleted = "checkout.session.completed"
	EventTypeSubscriptionDeleted      = "customer.subscription.deleted"
)

// Webhook handling outcomes, used as metric labels and in responses
const (
	EventOutcomeApplied  = "applied"
	EventOutcomeNoop     = "noop"
	EventOutcomeIgnored  = "ignored"
	EventOutcomePartial  = "partial"
	EventOutcomeFailed   = "failed"
	EventOutcomeRejected = "rejected"
)

// AccountStatus is the provider's view of a connected account
type AccountStatus struct {
	AccountID        string              `json:"account_id"`
	ChargesEnabled   bool                `json:"charges_enabled"`
	DetailsSubmitted bool                `json:"details_submitted"`
	PayoutsEnabled   bool                `json:"payouts_enabled"`
	Requirements     AccountRequirements `json:"requirements"`
}

// AccountRequirements lists outstanding KYC fields reported by the provider
type AccountRequirements struct {
	CurrentlyDue  []string `json:"currently_due"`
	EventuallyDue []string `json:"eventually_due"`
	PastDue       []string `json:"past_due"`
}

// Link is a provider-hosted URL with its expiry, never persisted
type Link struct {
	URL       string `json:"url"`
	CreatedAt int64  `json:"created,omitempty"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}

// CheckoutSession is a created provider checkout session
type CheckoutSession struct {
	ID                   string `json:"session_id"`
	URL                  string `json:"url"`
	Mode                 string `json:"mode"`
	ApplicationFeePct    int    `json:"application_fee_percent"`
	ApplicationFeeAmount int64  `json:"application_fee_amount,omitempty"`
	Currency             string `json:"currency,omitempty"`
	FeeDisplay           string `json:"application_fee_display,omitempty"`
	UnitAmount           int64  `json:"unit_amount,omitempty"`
}
