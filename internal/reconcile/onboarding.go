package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/osse101/LaunchPass_Go/internal/domain"
	"github.com/osse101/LaunchPass_Go/internal/logger"
	"github.com/osse101/LaunchPass_Go/internal/metrics"
)

// Onboard creates or resumes onboarding for a creator and returns a fresh onboarding link.
// A creator gets at most one provider account: an existing id is reused, a missing one is
// created before the record is written, and the link is requested only after the write.
func (s *service) Onboard(ctx context.Context, req OnboardRequest) (*OnboardResult, error) {
	req.CreatorID = strings.TrimSpace(req.CreatorID)
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.CreatorID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgCreatorIDRequired)
	}
	if req.Email == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgEmailRequired)
	}

	log := logger.FromContext(ctx).With(logger.KeyCreatorID, req.CreatorID)
	result := &OnboardResult{}

	creator, err := s.store.Get(ctx, req.CreatorID)
	switch {
	case errors.Is(err, domain.ErrCreatorNotFound):
		creator = nil
	case err != nil:
		return nil, fmt.Errorf("%s: %w", ErrMsgLookupFailed, err)
	}

	if creator != nil && creator.ProviderAccountID != "" {
		log.Info(LogMsgAccountReused, logger.KeyAccountID, creator.ProviderAccountID)
	} else {
		creator, err = s.attachNewAccount(ctx, creator, req, result)
		if err != nil {
			return nil, err
		}
	}
	result.Creator = creator

	link, err := s.onboardingLink(ctx, creator.ProviderAccountID)
	if err != nil {
		return nil, err
	}
	result.OnboardingLink = link

	metrics.RecordOnboard(result.AccountCreated)
	return result, nil
}

// attachNewAccount creates a provider account and writes it into a new or existing record.
// If another request won the race, the stored record is returned and the new account is orphaned.
func (s *service) attachNewAccount(ctx context.Context, existing *domain.Creator, req OnboardRequest, result *OnboardResult) (*domain.Creator, error) {
	log := logger.FromContext(ctx).With(logger.KeyCreatorID, req.CreatorID)

	email := req.Email
	if existing != nil && existing.Email != "" {
		email = existing.Email
	}
	accountID, err := s.provider.CreateConnectedAccount(ctx, req.CreatorID, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgCreateAccount, err)
	}

	now := s.now()
	var creator *domain.Creator
	if existing == nil {
		creator = domain.NewCreator(req.CreatorID, accountID, req.Email, req.DisplayName, now)
	} else {
		creator = existing
		creator.ProviderAccountID = accountID
		creator.Touch(now)
	}

	err = s.store.Upsert(ctx, creator)
	if errors.Is(err, domain.ErrAccountIDConflict) {
		log.Warn(LogMsgOrphanedAccount, "orphaned_account_id", accountID)
		stored, getErr := s.store.Get(ctx, req.CreatorID)
		if getErr != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgCreatorRace, getErr)
		}
		return stored, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgSaveFailed, err)
	}

	result.AccountCreated = true
	if existing == nil {
		result.Created = true
		log.Info(LogMsgCreatorCreated, logger.KeyAccountID, accountID)
	} else {
		log.Info(LogMsgAccountPatched, logger.KeyAccountID, accountID)
	}
	return creator, nil
}

func (s *service) onboardingLink(ctx context.Context, accountID string) (*domain.Link, error) {
	link, err := s.provider.CreateOnboardingLink(ctx, accountID, s.urls.OnboardingReturnURL(accountID), s.urls.OnboardingRefreshURL(accountID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgOnboardingLink, err)
	}
	return link, nil
}

// CompleteOnboardingReturn applies the live account status for a creator back from onboarding.
// An account without charges enabled gets a new onboarding link to retry with.
func (s *service) CompleteOnboardingReturn(ctx context.Context, accountID string) (*OnboardingReturn, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgAccountIDRequired)
	}

	creator, err := s.store.FindByProviderAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgLookupFailed, err)
	}

	status, err := s.provider.GetAccountStatus(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgAccountStatus, err)
	}

	if _, err := s.applyAccountStatus(ctx, creator, *status); err != nil {
		return nil, err
	}

	ret := &OnboardingReturn{
		Status:         OnboardingStatusComplete,
		CreatorID:      creator.CreatorID,
		AccountID:      accountID,
		ChargesEnabled: status.ChargesEnabled,
	}
	if !status.ChargesEnabled {
		ret.Status = OnboardingStatusIncomplete
		if ret.RetryLink, err = s.onboardingLink(ctx, accountID); err != nil {
			return nil, err
		}
	}

	logger.FromContext(ctx).Info(LogMsgOnboardingReturnState,
		logger.KeyCreatorID, creator.CreatorID, logger.KeyAccountID, accountID, "status", ret.Status)
	return ret, nil
}

// RefreshOnboardingLink issues a replacement for an expired onboarding link
func (s *service) RefreshOnboardingLink(ctx context.Context, accountID string) (*domain.Link, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, ErrMsgAccountIDRequired)
	}
	return s.onboardingLink(ctx, accountID)
}
