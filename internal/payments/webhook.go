package payments

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/osse101/LaunchPass_Go/internal/domain"
)

// Event is a verified connected-account webhook event.
// Exactly one of the typed payloads is set for the event types the service consumes.
type Event struct {
	ID      string
	Type    string
	Account string

	AccountUpdate       *domain.AccountStatus
	CheckoutCompleted   *CheckoutCompleted
	SubscriptionDeleted *SubscriptionDeleted
}

// CheckoutCompleted carries the customer email candidates of a completed checkout
type CheckoutCompleted struct {
	SessionID     string
	CustomerID    string
	DetailsEmail  string
	CustomerEmail string
}

// Email returns the first email the session itself carries
func (c CheckoutCompleted) Email() string {
	if e := strings.TrimSpace(c.DetailsEmail); e != "" {
		return e
	}
	return strings.TrimSpace(c.CustomerEmail)
}

// SubscriptionDeleted identifies a cancelled subscription
type SubscriptionDeleted struct {
	SubscriptionID string
	CustomerID     string
}

// Verifier checks webhook signatures with the connect endpoint's signing secret
type Verifier struct {
	secret string
}

// NewVerifier creates a new webhook verifier
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New(ErrMsgWebhookSecretRequired)
	}
	return &Verifier{secret: secret}, nil
}

// Verify authenticates payload against the signature header and decodes it.
// Signature and payload problems are reported as domain.ErrAuthenticationFailure.
func (v *Verifier) Verify(payload []byte, signatureHeader string) (*Event, error) {
	evt, err := webhook.ConstructEventWithOptions(payload, signatureHeader, v.secret, webhook.ConstructEventOptions{
		Tolerance:                SignatureTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrAuthenticationFailure, ErrMsgInvalidSignature, err)
	}

	out := &Event{ID: evt.ID, Type: string(evt.Type), Account: evt.Account}
	if evt.Data == nil {
		return out, nil
	}

	switch out.Type {
	case domain.EventTypeAccountUpdated:
		var acct stripe.Account
		if err := json.Unmarshal(evt.Data.Raw, &acct); err != nil {
			return nil, payloadError(err)
		}
		out.AccountUpdate = accountStatus(&acct)
		if out.Account == "" {
			out.Account = acct.ID
		}
	case domain.EventTypeCheckoutSessionCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(evt.Data.Raw, &s); err != nil {
			return nil, payloadError(err)
		}
		cc := &CheckoutCompleted{SessionID: s.ID, CustomerEmail: s.CustomerEmail}
		if s.CustomerDetails != nil {
			cc.DetailsEmail = s.CustomerDetails.Email
		}
		if s.Customer != nil {
			cc.CustomerID = s.Customer.ID
		}
		out.CheckoutCompleted = cc
	case domain.EventTypeSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(evt.Data.Raw, &sub); err != nil {
			return nil, payloadError(err)
		}
		sd := &SubscriptionDeleted{SubscriptionID: sub.ID}
		if sub.Customer != nil {
			sd.CustomerID = sub.Customer.ID
		}
		out.SubscriptionDeleted = sd
	}
	return out, nil
}

func payloadError(err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrAuthenticationFailure, ErrMsgInvalidPayload, err)
}
