package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
)

// ReconcileAccountUpdate applies an account status notification.
// Unknown accounts are a successful no-op. Redelivery and reordering are safe because
// charges_enabled mirrors the notification and onboarding_complete only ratchets up.
func (s *service) ReconcileAccountUpdate(ctx context.Context, status domain.AccountStatus) (*AccountUpdateResult, error) {
	if strings.TrimSpace(status.AccountID) == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgAccountIDRequired)
	}

	creator, err := s.store.FindByProviderAccountID(ctx, status.AccountID)
	if errors.Is(err, domain.ErrCreatorNotFound) {
		logger.FromContext(ctx).Info(LogMsgUnknownAccount, logger.KeyAccountID, status.AccountID)
		return &AccountUpdateResult{Known: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLookupFailed, err)
	}

	return s.applyAccountStatus(ctx, creator, status)
}

func (s *service) applyAccountStatus(ctx context.Context, creator *domain.Creator, status domain.AccountStatus) (*AccountUpdateResult, error) {
	wasComplete := creator.OnboardingComplete
	creator.ApplyAccountStatus(status.ChargesEnabled, status.DetailsSubmitted)
	creator.Touch(s.now())

	if err := s.store.Upsert(ctx, creator); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSaveFailed, err)
	}

	log := logger.FromContext(ctx).With(logger.KeyCreatorID, creator.CreatorID)
	log.Info(LogMsgAccountUpdated,
		"charges_enabled", creator.ChargesEnabled,
		"onboarding_complete", creator.OnboardingComplete)

	result := &AccountUpdateResult{
		Known:               true,
		Creator:             creator,
		OnboardingCompleted: !wasComplete && creator.OnboardingComplete,
	}
	if result.OnboardingCompleted {
		log.Info(LogMsgOnboardingCompleted)
	}
	return result, nil
}

// ReconcileCheckoutCompleted invites the paying customer to the creator's chat rooms,
// or to the default rooms when the creator has none or is unknown. It never writes the
// creator record. Each room is invited independently and every outcome is returned; when
// any invitation failed the outcome comes back together with ErrPartialInviteFailure.
func (s *service) ReconcileCheckoutCompleted(ctx context.Context, in CheckoutCompleted) (*domain.CheckoutOutcome, error) {
	log := logger.FromContext(ctx).With(logger.KeySessionID, in.SessionID)
	outcome := &domain.CheckoutOutcome{
		ProviderAccountID: in.AccountID,
		Invites:           []domain.InviteResult{},
	}

	email, err := s.resolveCustomerEmail(ctx, in)
	if err != nil {
		return nil, err
	}
	if email == "" {
		log.Warn(LogMsgNoCustomerEmail, "customer_id", in.CustomerID)
		return outcome, nil
	}
	outcome.CustomerEmail = email

	rooms, err := s.targetRooms(ctx, in.AccountID, outcome)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		log.Warn(LogMsgNoRooms, logger.KeyCreatorID, outcome.CreatorID)
		return outcome, nil
	}

	outcome.Invites = s.inviteAll(ctx, rooms, email)

	failed := outcome.Failed()
	log.Info(LogMsgCheckoutReconciled,
		logger.KeyCreatorID, outcome.CreatorID,
		"rooms", len(rooms),
		"failed", len(failed),
		"default_rooms", outcome.UsedDefaultRooms)

	if len(failed) > 0 {
		s.notifier.InviteFailures(ctx, *outcome)
		return outcome, fmt.Errorf("%w: %d of %d rooms", domain.ErrPartialInviteFailure, len(failed), len(outcome.Invites))
	}
	return outcome, nil
}

// resolveCustomerEmail returns the first valid email from the session, falling back to the
// customer record on the connected account. An empty result means there is nobody to invite.
func (s *service) resolveCustomerEmail(ctx context.Context, in CheckoutCompleted) (string, error) {
	for _, candidate := range []string{in.DetailsEmail, in.CustomerEmail} {
		if email, ok := s.validEmail(candidate); ok {
			return email, nil
		}
	}
	if in.CustomerID == "" {
		return "", nil
	}

	email, err := s.provider.GetCustomerEmail(ctx, in.AccountID, in.CustomerID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ErrMsgCustomerLookup, err)
	}
	email, _ = s.validEmail(email)
	return email, nil
}

func (s *service) validEmail(candidate string) (string, bool) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || s.validate.Var(candidate, "email") != nil {
		return "", false
	}
	return candidate, true
}

// targetRooms picks the creator's rooms, or the defaults when there are none
func (s *service) targetRooms(ctx context.Context, accountID string, outcome *domain.CheckoutOutcome) ([]string, error) {
	if accountID != "" {
		creator, err := s.store.FindByProviderAccountID(ctx, accountID)
		switch {
		case err == nil:
			outcome.CreatorID = creator.CreatorID
			if len(creator.ChatRoomIDs) > 0 {
				return creator.ChatRoomIDs, nil
			}
		case errors.Is(err, domain.ErrCreatorNotFound):
			logger.FromContext(ctx).Info(LogMsgUnknownAccount, logger.KeyAccountID, accountID)
		default:
			return nil, fmt.Errorf("%s: %w", ErrMsgLookupFailed, err)
		}
	}

	logger.FromContext(ctx).Info(LogMsgUsingDefaultRooms, logger.KeyCreatorID, outcome.CreatorID)
	outcome.UsedDefaultRooms = true
	return s.defaultRooms, nil
}

// inviteAll invites email to every room with bounded parallelism; results keep room order
func (s *service) inviteAll(ctx context.Context, rooms []string, email string) []domain.InviteResult {
	results := make([]domain.InviteResult, len(rooms))

	var g errgroup.Group
	g.SetLimit(s.inviteConcurrency)
	for i, room := range rooms {
		g.Go(func() error {
			results[i] = s.chat.InviteByEmail(ctx, room, email)
			if results[i].RoomID == "" {
				results[i].RoomID = room
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ReconcileSubscriptionDeleted only logs: there is no contract for removing members from chat
func (s *service) ReconcileSubscriptionDeleted(ctx context.Context, accountID, customerID string) error {
	logger.FromContext(ctx).Info(LogMsgSubscriptionDeleted,
		logger.KeyAccountID, accountID, "customer_id", customerID)
	return nil
}
