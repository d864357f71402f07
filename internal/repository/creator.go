package repository

import (
	"context"

	"github.com/osse101/LaunchPass_Go/internal/domain"
)

// Creator defines data access for creator records.
// Every call is a live round trip to the backing store; implementations
// report transport, auth and decoding failures as domain.ErrStoreUnavailable.
type Creator interface {
	// Get returns domain.ErrCreatorNotFound for an absent creator_id
	Get(ctx context.Context, creatorID string) (*domain.Creator, error)
	// Upsert inserts the record or replaces the row with the same creator_id.
	// A row whose provider account id is already set cannot be moved to a different one.
	Upsert(ctx context.Context, creator *domain.Creator) error
	List(ctx context.Context) ([]domain.Creator, error)
	// FindByProviderAccountID returns domain.ErrCreatorNotFound when no row carries the id
	FindByProviderAccountID(ctx context.Context, providerAccountID string) (*domain.Creator, error)
	Ping(ctx context.Context) error
}
