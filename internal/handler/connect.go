package handler

import (
	"net/http"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
	"github.com/osse101/LaunchPass_Go/internal/reconcile"
)

// ConnectHandlers serves creator onboarding and checkout creation
type ConnectHandlers struct {
	svc reconcile.Service
}

// NewConnectHandlers creates new connect handlers
func NewConnectHandlers(svc reconcile.Service) *ConnectHandlers {
	return &ConnectHandlers{svc: svc}
}

// OnboardRequest is the request body for onboarding a creator
type OnboardRequest struct {
	CreatorID string `json:"creator_id" validate:"required,max=128"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Name      string `json:"name" validate:"max=256"`
}

// OnboardResponse carries the provider onboarding link
type OnboardResponse struct {
	Success        bool   `json:"success"`
	CreatorID      string `json:"creator_id"`
	AccountID      string `json:"account_id"`
	OnboardingURL  string `json:"onboarding_url"`
	ExpiresAt      int64  `json:"expires_at,omitempty"`
	Created        bool   `json:"created"`
	AccountCreated bool   `json:"account_created"`
}

// OnboardingReturnResponse tells a returning creator whether onboarding is done
type OnboardingReturnResponse struct {
	Success        bool   `json:"success"`
	Status         string `json:"status"`
	Message        string `json:"message"`
	CreatorID      string `json:"creator_id"`
	AccountID      string `json:"account_id"`
	ChargesEnabled bool   `json:"charges_enabled"`
	RetryURL       string `json:"retry_url,omitempty"`
}

// CheckoutRequest is the request body for creating a checkout on a creator's account
type CheckoutRequest struct {
	CreatorID             string `json:"creator_id" validate:"required"`
	PriceID               string `json:"price_id" validate:"required"`
	ApplicationFeePercent *int   `json:"application_fee_percent" validate:"omitempty,min=0,max=100"`
	SuccessURL            string `json:"success_url" validate:"omitempty,url"`
	CancelURL             string `json:"cancel_url" validate:"omitempty,url"`
}

// CheckoutResponse describes the created checkout session
type CheckoutResponse struct {
	Success   bool   `json:"success"`
	CreatorID string `json:"creator_id"`
	domain.CheckoutSession
}

// HandleOnboard handles POST /connect/onboard
// @Summary Onboard a creator
// @Description Creates or reuses the creator's connected account and returns a fresh onboarding link
// @Tags connect
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param request body OnboardRequest true "Creator details"
// @Success 200 {object} OnboardResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /connect/onboard [post]
func (h *ConnectHandlers) HandleOnboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest[OnboardRequest](w, r, "Onboard creator")
		if !ok {
			return
		}

		res, err := h.svc.Onboard(r.Context(), reconcile.OnboardRequest{
			CreatorID:   req.CreatorID,
			Email:       req.Email,
			DisplayName: req.Name,
		})
		if err != nil {
			respondServiceError(w, r, "Onboard creator", err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgOnboardingStarted,
			logger.KeyCreatorID, res.Creator.CreatorID,
			logger.KeyAccountID, res.Creator.ProviderAccountID,
			"created", res.Created)

		respondJSON(w, http.StatusOK, OnboardResponse{
			Success:        true,
			CreatorID:      res.Creator.CreatorID,
			AccountID:      res.Creator.ProviderAccountID,
			OnboardingURL:  res.OnboardingLink.URL,
			ExpiresAt:      res.OnboardingLink.ExpiresAt,
			Created:        res.Created,
			AccountCreated: res.AccountCreated,
		})
	}
}

// HandleReturn handles GET /connect/return
// @Summary Onboarding return
// @Description The provider sends creators here after onboarding; applies the live account status
// @Tags connect
// @Produce json
// @Param account_id query string true "Connected account id"
// @Success 200 {object} OnboardingReturnResponse
// @Failure 404 {object} ErrorResponse
// @Router /connect/return [get]
func (h *ConnectHandlers) HandleReturn() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := requireQuery(w, r, "account_id")
		if !ok {
			return
		}

		ret, err := h.svc.CompleteOnboardingReturn(r.Context(), accountID)
		if err != nil {
			respondServiceError(w, r, "Onboarding return", err)
			return
		}

		resp := OnboardingReturnResponse{
			Success:        ret.Status == reconcile.OnboardingStatusComplete,
			Status:         ret.Status,
			Message:        MsgOnboardingComplete,
			CreatorID:      ret.CreatorID,
			AccountID:      ret.AccountID,
			ChargesEnabled: ret.ChargesEnabled,
		}
		if ret.RetryLink != nil {
			resp.Message = MsgOnboardingIncomplete
			resp.RetryURL = ret.RetryLink.URL
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleRefresh handles GET /connect/refresh
// @Summary Onboarding refresh
// @Description Issues a new onboarding link when the previous one expired and redirects to it
// @Tags connect
// @Param account_id query string true "Connected account id"
// @Success 302
// @Failure 502 {object} ErrorResponse
// @Router /connect/refresh [get]
func (h *ConnectHandlers) HandleRefresh() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := requireQuery(w, r, "account_id")
		if !ok {
			return
		}

		link, err := h.svc.RefreshOnboardingLink(r.Context(), accountID)
		if err != nil {
			respondServiceError(w, r, "Refresh onboarding link", err)
			return
		}
		http.Redirect(w, r, link.URL, http.StatusFound)
	}
}

// HandleCreateCheckout handles POST /connect/create-checkout
// @Summary Create a checkout session
// @Description Opens a checkout for a creator's price with the platform application fee
// @Tags connect
// @Accept json
// @Produce json
// @Param request body CheckoutRequest true "Checkout details"
// @Success 200 {object} CheckoutResponse
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /connect/create-checkout [post]
func (h *ConnectHandlers) HandleCreateCheckout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest[CheckoutRequest](w, r, "Create checkout")
		if !ok {
			return
		}

		session, err := h.svc.CreateCheckout(r.Context(), reconcile.CheckoutRequest{
			CreatorID:  req.CreatorID,
			PriceID:    req.PriceID,
			FeePercent: req.ApplicationFeePercent,
			SuccessURL: req.SuccessURL,
			CancelURL:  req.CancelURL,
		})
		if err != nil {
			respondServiceError(w, r, "Create checkout", err)
			return
		}

		respondJSON(w, http.StatusOK, CheckoutResponse{
			Success:         true,
			CreatorID:       req.CreatorID,
			CheckoutSession: *session,
		})
	}
}
