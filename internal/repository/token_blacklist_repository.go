package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/anamaak-service/internal/domain"
)

// TokenBlacklistRepository stores revoked tokens until their natural expiry.
type TokenBlacklistRepository interface {
	Add(ctx context.Context, token *domain.BlacklistedToken) error
	Contains(ctx context.Context, tokenHash string) (bool, error)
}

type tokenBlacklistRepository struct {
	pool *pgxpool.Pool
}

// NewTokenBlacklistRepository builds the repository.
func NewTokenBlacklistRepository(pool *pgxpool.Pool) TokenBlacklistRepository {
	return &tokenBlacklistRepository{pool: pool}
}

func (r *tokenBlacklistRepository) Add(ctx context.Context, token *domain.BlacklistedToken) error {
	// Logging out twice with the same token is a no-op, not an error.
	const query = `
        INSERT INTO sessions_blacklist (token_hash, date_expiration)
        VALUES ($1, $2)
        ON CONFLICT (token_hash) DO UPDATE SET date_expiration = EXCLUDED.date_expiration
        RETURNING id, date_creation`
	return querier(ctx, r.pool).QueryRow(ctx, query,
		token.TokenHash,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

// Contains only matches entries that have not yet reached their original
// expiration; stale rows are inert.
func (r *tokenBlacklistRepository) Contains(ctx context.Context, tokenHash string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM sessions_blacklist
            WHERE token_hash=$1 AND date_expiration > NOW()
        )`
	var exists bool
	if err := querier(ctx, r.pool).QueryRow(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
