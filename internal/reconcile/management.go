package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
	"github.com/osse101/LaunchPass_Go/internal/payments"
)

// CreateCheckout opens a checkout for one of a creator's prices with the platform fee applied
func (s *service) CreateCheckout(ctx context.Context, req CheckoutRequest) (*domain.CheckoutSession, error) {
	req.CreatorID = strings.TrimSpace(req.CreatorID)
	req.PriceID = strings.TrimSpace(req.PriceID)
	if req.CreatorID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgCreatorIDRequired)
	}
	if req.PriceID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgPriceIDRequired)
	}

	fee := s.defaultFeePercent
	if req.FeePercent != nil {
		fee = *req.FeePercent
	}
	if err := payments.ValidateFeePercent(fee); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	creator, err := s.store.Get(ctx, req.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLookupFailed, err)
	}
	if !creator.ChargesEnabled || creator.ProviderAccountID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrChargesNotEnabled, req.CreatorID)
	}

	params := payments.CheckoutParams{
		AccountID:  creator.ProviderAccountID,
		PriceID:    req.PriceID,
		FeePercent: fee,
		SuccessURL: firstNonEmpty(req.SuccessURL, s.successURL),
		CancelURL:  firstNonEmpty(req.CancelURL, s.cancelURL),
	}
	session, err := s.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCheckoutCreate, err)
	}
	return session, nil
}

// GetCreatorStatus returns the stored record with the provider's live account status
func (s *service) GetCreatorStatus(ctx context.Context, creatorID string) (*CreatorStatus, error) {
	creator, err := s.getCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	status := &CreatorStatus{Creator: *creator}
	if creator.ProviderAccountID == "" {
		return status, nil
	}

	status.Provider, err = s.provider.GetAccountStatus(ctx, creator.ProviderAccountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgAccountStatus, err)
	}
	return status, nil
}

// ListCreators returns every stored record in creation order
func (s *service) ListCreators(ctx context.Context) ([]domain.Creator, error) {
	creators, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgListCreators, err)
	}
	domain.SortCreators(creators)
	return creators, nil
}

// CreateLoginLink issues a dashboard login link. The link is never stored.
func (s *service) CreateLoginLink(ctx context.Context, creatorID string) (*domain.Link, error) {
	creator, err := s.getCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if creator.ProviderAccountID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgNoProviderAccount)
	}

	link, err := s.provider.CreateLoginLink(ctx, creator.ProviderAccountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLoginLink, err)
	}
	return link, nil
}

// AddRooms unions roomIDs into the creator's chat rooms. Rooms are never removed.
func (s *service) AddRooms(ctx context.Context, creatorID string, roomIDs []string) (*domain.Creator, error) {
	var cleaned []string
	for _, id := range roomIDs {
		if id = strings.TrimSpace(id); id != "" {
			cleaned = append(cleaned, id)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgRoomIDsRequired)
	}

	creator, err := s.getCreator(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).With(logger.KeyCreatorID, creator.CreatorID)
	if !creator.AddRooms(cleaned...) {
		log.Info(LogMsgRoomsUnchanged)
		return creator, nil
	}

	creator.Touch(s.now())
	if err := s.store.Upsert(ctx, creator); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSaveFailed, err)
	}
	log.Info(LogMsgRoomsAdded, "rooms", len(creator.ChatRoomIDs))
	return creator, nil
}

func (s *service) getCreator(ctx context.Context, creatorID string) (*domain.Creator, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgCreatorIDRequired)
	}
	creator, err := s.store.Get(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLookupFailed, err)
	}
	return creator, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
