package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/reconcile"
)

// CreatorHandlers serves the administrative creator endpoints
type CreatorHandlers struct {
	svc reconcile.Service
}

// NewCreatorHandlers creates new creator handlers
func NewCreatorHandlers(svc reconcile.Service) *CreatorHandlers {
	return &CreatorHandlers{svc: svc}
}

// CreatorListResponse lists stored creators
type CreatorListResponse struct {
	Count    int              `json:"count"`
	Creators []domain.Creator `json:"creators"`
}

// CreatorStatusResponse is a stored record plus the provider's live status
type CreatorStatusResponse struct {
	Creator  domain.Creator        `json:"creator"`
	Provider *domain.AccountStatus `json:"provider,omitempty"`
}

// LoginLinkResponse carries a one-time dashboard login link
type LoginLinkResponse struct {
	CreatorID string `json:"creator_id"`
	URL       string `json:"url"`
	CreatedAt int64  `json:"created,omitempty"`
}

// AddRoomsRequest lists chat rooms to add to a creator
type AddRoomsRequest struct {
	RoomIDs []string `json:"room_ids" validate:"required,min=1,dive,roomid"`
}

// HandleList handles GET /creators
// @Summary List creators
// @Tags creators
// @Produce json
// @Security BasicAuth
// @Success 200 {object} CreatorListResponse
// @Failure 503 {object} ErrorResponse
// @Router /creators [get]
func (h *CreatorHandlers) HandleList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creators, err := h.svc.ListCreators(r.Context())
		if err != nil {
			respondServiceError(w, r, "List creators", err)
			return
		}
		if creators == nil {
			creators = []domain.Creator{}
		}
		respondJSON(w, http.StatusOK, CreatorListResponse{Count: len(creators), Creators: creators})
	}
}

// HandleGet handles GET /creators/{id}
// @Summary Creator status
// @Description Stored record with the provider's live payouts and requirements
// @Tags creators
// @Produce json
// @Security BasicAuth
// @Param id path string true "Creator id"
// @Success 200 {object} CreatorStatusResponse
// @Failure 404 {object} ErrorResponse
// @Router /creators/{id} [get]
func (h *CreatorHandlers) HandleGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := h.svc.GetCreatorStatus(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, r, "Get creator status", err)
			return
		}
		respondJSON(w, http.StatusOK, CreatorStatusResponse{Creator: status.Creator, Provider: status.Provider})
	}
}

// HandleLoginLink handles POST /creators/{id}/generate-login-link
// @Summary Dashboard login link
// @Tags creators
// @Produce json
// @Security BasicAuth
// @Param id path string true "Creator id"
// @Success 200 {object} LoginLinkResponse
// @Failure 404 {object} ErrorResponse
// @Router /creators/{id}/generate-login-link [post]
func (h *CreatorHandlers) HandleLoginLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creatorID := chi.URLParam(r, "id")
		link, err := h.svc.CreateLoginLink(r.Context(), creatorID)
		if err != nil {
			respondServiceError(w, r, "Create login link", err)
			return
		}
		respondJSON(w, http.StatusOK, LoginLinkResponse{CreatorID: creatorID, URL: link.URL, CreatedAt: link.CreatedAt})
	}
}

// HandleAddRooms handles POST /creators/{id}/rooms
// @Summary Add chat rooms
// @Description Adds rooms to the creator's invite list; existing rooms are kept
// @Tags creators
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param id path string true "Creator id"
// @Param request body AddRoomsRequest true "Rooms to add"
// @Success 200 {object} domain.Creator
// @Failure 400 {object} ValidationErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /creators/{id}/rooms [post]
func (h *CreatorHandlers) HandleAddRooms() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeRequest[AddRoomsRequest](w, r, "Add rooms")
		if !ok {
			return
		}

		creator, err := h.svc.AddRooms(r.Context(), chi.URLParam(r, "id"), req.RoomIDs)
		if err != nil {
			respondServiceError(w, r, "Add rooms", err)
			return
		}
		respondJSON(w, http.StatusOK, creator)
	}
}
