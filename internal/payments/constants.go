package payments

import (
	"time"

	"github.com/google/uuid"
)

// Webhook verification
const (
	// SignatureHeader carries the provider's timestamped HMAC signature
	SignatureHeader = "Stripe-Signature"
	// SignatureTolerance bounds the age of a signed webhook
	SignatureTolerance = 300 * time.Second
)

// Checkout modes
const (
	ModeSubscription = "subscription"
	ModePayment      = "payment"
)

const (
	defaultTimeout     = 10 * time.Second
	onboardingLinkType = "account_onboarding"
	percentDivisor     = 100
	metadataCreatorID  = "creator_id"
)

// idempotencyNamespace scopes the derived account-creation keys
var idempotencyNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("launchpass:connect-account"))

// Operation names used as metric labels
const (
	opCreateAccount     = "create_account"
	opGetAccount        = "get_account"
	opCreateAccountLink = "create_account_link"
	opCreateLoginLink   = "create_login_link"
	opGetPrice          = "get_price"
	opCreateCheckout    = "create_checkout"
	opGetCustomer       = "get_customer"
)

// Error Messages
const (
	ErrMsgSecretKeyRequired     = "payment provider secret key is required"
	ErrMsgWebhookSecretRequired = "webhook signing secret is required"
	ErrMsgInvalidSignature      = "invalid webhook signature"
	ErrMsgInvalidPayload        = "invalid webhook payload"
	ErrMsgInvalidFeePercent     = "application fee percent must be between 0 and 100"
	ErrMsgAccountIDRequired     = "provider account id is required"
	ErrMsgPriceIDRequired       = "price id is required"
	ErrMsgUnsupportedPriceType  = "unsupported price type"
	ErrMsgPriceHasNoAmount      = "one-time price has no unit amount"
)

// Log Messages
const (
	LogMsgAccountCreated  = "Created connected account"
	LogMsgLinkCreated     = "Created onboarding link"
	LogMsgCheckoutCreated = "Created checkout session"
	LogMsgProviderError   = "Payment provider call failed"
)
