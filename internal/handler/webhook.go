package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
	"github.com/osse101/LaunchPass_Go/internal/metrics"
	"github.com/osse101/LaunchPass_Go/internal/payments"
	"github.com/osse101/LaunchPass_Go/internal/reconcile"
)

// maxWebhookBody bounds the size of a provider webhook payload
const maxWebhookBody = 256 << 10

// eventTypeUnverified labels metrics for payloads rejected before their type is trusted
const eventTypeUnverified = "unverified"

// EventVerifier authenticates and decodes provider webhooks
type EventVerifier interface {
	Verify(payload []byte, signatureHeader string) (*payments.Event, error)
}

// WebhookHandler applies verified provider events through the reconciliation engine
type WebhookHandler struct {
	svc      reconcile.Service
	verifier EventVerifier
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(svc reconcile.Service, verifier EventVerifier) *WebhookHandler {
	return &WebhookHandler{svc: svc, verifier: verifier}
}

// WebhookResponse acknowledges a webhook delivery
type WebhookResponse struct {
	Received bool                  `json:"received"`
	Type     string                `json:"type,omitempty"`
	Outcome  string                `json:"outcome,omitempty"`
	Message  string                `json:"message,omitempty"`
	Invites  []domain.InviteResult `json:"invites,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// HandleConnectWebhook handles POST /webhook/stripe/connect.
// Non-2xx responses make the provider redeliver, so only failures that a retry can fix return one.
// @Summary Connected-account webhook
// @Description Verifies the signature and reconciles account.updated, checkout.session.completed and customer.subscription.deleted
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Provider signature"
// @Success 200 {object} WebhookResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} WebhookResponse
// @Failure 502 {object} WebhookResponse
// @Router /webhook/stripe/connect [post]
func (h *WebhookHandler) HandleConnectWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondError(w, http.StatusRequestEntityTooLarge, ErrMsgRequestTooLarge)
				return
			}
			respondError(w, http.StatusBadRequest, ErrMsgUnreadableBody)
			return
		}

		event, err := h.verifier.Verify(body, r.Header.Get(payments.SignatureHeader))
		if err != nil {
			log.Warn(LogMsgWebhookRejected, "error", err)
			metrics.RecordWebhookEvent(eventTypeUnverified, domain.EventOutcomeRejected)
			respondError(w, http.StatusBadRequest, ErrMsgInvalidSignature)
			return
		}

		ctx := logger.WithAttrs(r.Context(),
			logger.KeyEventID, event.ID,
			logger.KeyEventType, event.Type,
			logger.KeyAccountID, event.Account,
		)
		log = logger.FromContext(ctx)
		log.Info(LogMsgWebhookReceived)

		status, resp := h.dispatch(ctx, log, event)
		resp.Received = true
		resp.Type = event.Type
		metrics.RecordWebhookEvent(event.Type, resp.Outcome)
		respondJSON(w, status, resp)
	}
}

func (h *WebhookHandler) dispatch(ctx context.Context, log *slog.Logger, event *payments.Event) (int, WebhookResponse) {
	switch event.Type {
	case domain.EventTypeAccountUpdated:
		if event.AccountUpdate == nil {
			return http.StatusBadRequest, WebhookResponse{Outcome: domain.EventOutcomeRejected, Error: ErrMsgMissingEventData}
		}
		res, err := h.svc.ReconcileAccountUpdate(ctx, *event.AccountUpdate)
		if err != nil {
			return failure(log, err)
		}
		if !res.Known {
			return http.StatusOK, WebhookResponse{Outcome: domain.EventOutcomeNoop, Message: MsgUnknownAccount}
		}
		return http.StatusOK, WebhookResponse{Outcome: domain.EventOutcomeApplied}

	case domain.EventTypeCheckoutSessionCompleted:
		cc := event.CheckoutCompleted
		if cc == nil {
			return http.StatusBadRequest, WebhookResponse{Outcome: domain.EventOutcomeRejected, Error: ErrMsgMissingEventData}
		}
		outcome, err := h.svc.ReconcileCheckoutCompleted(ctx, reconcile.CheckoutCompleted{
			AccountID:     event.Account,
			SessionID:     cc.SessionID,
			CustomerID:    cc.CustomerID,
			DetailsEmail:  cc.DetailsEmail,
			CustomerEmail: cc.CustomerEmail,
		})
		return checkoutResponse(log, outcome, err)

	case domain.EventTypeSubscriptionDeleted:
		var customerID string
		if event.SubscriptionDeleted != nil {
			customerID = event.SubscriptionDeleted.CustomerID
		}
		if err := h.svc.ReconcileSubscriptionDeleted(ctx, event.Account, customerID); err != nil {
			return failure(log, err)
		}
		return http.StatusOK, WebhookResponse{Outcome: domain.EventOutcomeNoop, Message: MsgSubscriptionNoop}

	default:
		log.Info(LogMsgWebhookIgnored)
		return http.StatusOK, WebhookResponse{Outcome: domain.EventOutcomeIgnored, Message: MsgEventIgnored}
	}
}

// checkoutResponse reports every room; only a checkout where no invite succeeded asks for redelivery
func checkoutResponse(log *slog.Logger, outcome *domain.CheckoutOutcome, err error) (int, WebhookResponse) {
	if err != nil && !errors.Is(err, domain.ErrPartialInviteFailure) {
		return failure(log, err)
	}

	resp := WebhookResponse{Invites: outcome.Invites}
	switch {
	case len(outcome.Invites) == 0:
		resp.Outcome = domain.EventOutcomeNoop
		resp.Message = MsgNoCustomerEmail
		if outcome.CustomerEmail != "" {
			resp.Message = MsgNoRooms
		}
		return http.StatusOK, resp
	case outcome.AllFailed():
		log.Error(LogMsgInvitesFailed, "failed", len(outcome.Invites))
		resp.Outcome = domain.EventOutcomeFailed
		resp.Error = ErrMsgAllInvitesFailed
		return http.StatusBadGateway, resp
	case outcome.Partial():
		log.Warn(LogMsgInvitesFailed, "failed", len(outcome.Failed()), "total", len(outcome.Invites))
		resp.Outcome = domain.EventOutcomePartial
		resp.Message = MsgSomeInvitesFailed
		return http.StatusOK, resp
	default:
		resp.Outcome = domain.EventOutcomeApplied
		return http.StatusOK, resp
	}
}

// failure asks the provider to redeliver; a dependency outage is expected to clear by then
func failure(log *slog.Logger, err error) (int, WebhookResponse) {
	if domain.Retryable(err) {
		log.Warn(LogMsgWebhookFailed, "error", err, "retryable", true)
	} else {
		log.Error(LogMsgWebhookFailed, "error", err, "retryable", false)
	}
	_, msg := clientError(err)
	return http.StatusInternalServerError, WebhookResponse{Outcome: domain.EventOutcomeFailed, Error: msg}
}
