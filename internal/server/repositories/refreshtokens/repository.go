// Package refreshtokens declares the server-side repository contract for
// refresh tokens and its PostgreSQL and in-memory implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/server/models"
)

// Repository stores issued refresh tokens. Revocation keeps the row so that
// reuse of a revoked token can be detected; removal is a hard delete.
type Repository interface {
	// Create inserts t and fills in its ID and CreatedAt.
	Create(ctx context.Context, t *models.RefreshToken) error

	// Find looks a token up by its exact value and returns
	// common.ErrorNotFound when absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	Exists(ctx context.Context, token string) (bool, error)

	// ListByUser returns the user's tokens ordered by expiry, earliest first.
	ListByUser(ctx context.Context, userID string) ([]*models.RefreshToken, error)

	// Delete removes one token by id. Deleting a missing token is not an error.
	Delete(ctx context.Context, id string) error

	// Revoke stamps one token; common.ErrorNotFound when id does not exist.
	Revoke(ctx context.Context, id, reason string, at time.Time) error

	// RevokeAllByUser stamps every not yet revoked token of the user and
	// returns how many were revoked.
	RevokeAllByUser(ctx context.Context, userID, reason string, at time.Time) (int64, error)

	// DeleteExpiredOrRevoked removes the user's tokens that are expired at now
	// or revoked, returning how many were removed.
	DeleteExpiredOrRevoked(ctx context.Context, userID string, now time.Time) (int64, error)
}
