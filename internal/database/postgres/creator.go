package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osse101/LaunchPass_Go/internal/domain"
)

const creatorColumns = `creator_id, COALESCE(provider_account_id, ''), email, display_name,
	onboarding_complete, charges_enabled, chat_room_ids, created_at, updated_at`

// CreatorRepository implements repository.Creator
type CreatorRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewCreatorRepository creates a new creator repository.
// Every query runs under its own timeout.
func NewCreatorRepository(db *pgxpool.Pool, timeout time.Duration) *CreatorRepository {
	return &CreatorRepository{db: db, timeout: timeout}
}

func (r *CreatorRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func scanCreator(row pgx.Row) (*domain.Creator, error) {
	var c domain.Creator
	err := row.Scan(
		&c.CreatorID,
		&c.ProviderAccountID,
		&c.Email,
		&c.DisplayName,
		&c.OnboardingComplete,
		&c.ChargesEnabled,
		&c.ChatRoomIDs,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if c.ChatRoomIDs == nil {
		c.ChatRoomIDs = []string{}
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func unavailable(msg string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, msg, err)
}

// Get retrieves a creator by its primary key
func (r *CreatorRepository) Get(ctx context.Context, creatorID string) (*domain.Creator, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + creatorColumns + ` FROM creators WHERE creator_id = $1`
	c, err := scanCreator(r.db.QueryRow(ctx, query, creatorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCreatorNotFound
	}
	if err != nil {
		return nil, unavailable(ErrMsgGet, err)
	}
	return c, nil
}

// FindByProviderAccountID uses the unique index on provider_account_id
func (r *CreatorRepository) FindByProviderAccountID(ctx context.Context, providerAccountID string) (*domain.Creator, error) {
	if providerAccountID == "" {
		return nil, domain.ErrCreatorNotFound
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + creatorColumns + ` FROM creators WHERE provider_account_id = $1`
	c, err := scanCreator(r.db.QueryRow(ctx, query, providerAccountID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCreatorNotFound
	}
	if err != nil {
		return nil, unavailable(ErrMsgFindByAccount, err)
	}
	return c, nil
}

// List returns all creators, oldest first
func (r *CreatorRepository) List(ctx context.Context) ([]domain.Creator, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + creatorColumns + ` FROM creators ORDER BY created_at, creator_id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, unavailable(ErrMsgList, err)
	}
	defer rows.Close()

	creators := []domain.Creator{}
	for rows.Next() {
		c, err := scanCreator(rows)
		if err != nil {
			return nil, unavailable(ErrMsgList, err)
		}
		creators = append(creators, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable(ErrMsgList, err)
	}
	return creators, nil
}

// Upsert inserts or updates a creator.
// An assigned provider account id is never replaced and created_at is kept.
// onboarding_complete never reverts, updated_at never moves backwards, a filled
// email or display name is kept and chat rooms are unioned in order.
func (r *CreatorRepository) Upsert(ctx context.Context, c *domain.Creator) error {
	if c == nil || strings.TrimSpace(c.CreatorID) == "" {
		return fmt.Errorf("%w: creator_id is required", domain.ErrInvalidInput)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rooms := c.ChatRoomIDs
	if rooms == nil {
		rooms = []string{}
	}

	query := `
		INSERT INTO creators (creator_id, provider_account_id, email, display_name,
			onboarding_complete, charges_enabled, chat_room_ids, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (creator_id) DO UPDATE SET
			provider_account_id = EXCLUDED.provider_account_id,
			email               = COALESCE(NULLIF(creators.email, ''), EXCLUDED.email),
			display_name        = COALESCE(NULLIF(creators.display_name, ''), EXCLUDED.display_name),
			onboarding_complete = creators.onboarding_complete OR EXCLUDED.onboarding_complete,
			charges_enabled     = EXCLUDED.charges_enabled,
			chat_room_ids       = creators.chat_room_ids || ARRAY(
				SELECT room FROM unnest(EXCLUDED.chat_room_ids) WITH ORDINALITY AS e(room, pos)
				WHERE room <> ALL(creators.chat_room_ids)
				ORDER BY pos
			),
			updated_at          = GREATEST(creators.updated_at, EXCLUDED.updated_at)
		WHERE creators.provider_account_id IS NULL
		   OR creators.provider_account_id = EXCLUDED.provider_account_id
	`
	tag, err := r.db.Exec(ctx, query,
		c.CreatorID,
		c.ProviderAccountID,
		c.Email,
		c.DisplayName,
		c.OnboardingComplete,
		c.ChargesEnabled,
		rooms,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation {
			return fmt.Errorf("%w: %s", domain.ErrAccountIDConflict, ErrMsgAccountClaimed)
		}
		return unavailable(ErrMsgUpsert, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAccountIDConflict, ErrMsgAccountPinned)
	}
	return nil
}

// Ping checks database connectivity
func (r *CreatorRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.db.Ping(ctx); err != nil {
		return unavailable(ErrMsgPing, err)
	}
	return nil
}
