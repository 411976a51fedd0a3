package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/dbx"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	if err := r.db.QueryRowContext(ctx, query, t.UserID, t.Token, t.ExpiresAt).Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const selectColumns = `id, user_id, token, expires_at, created_at, revoked_at, revoked_reason`

func scanToken(s interface{ Scan(...any) error }) (*models.RefreshToken, error) {
	t := &models.RefreshToken{}
	err := s.Scan(&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.CreatedAt, &t.RevokedAt, &t.RevokedReason)
	return t, err
}

func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM refresh_tokens
		WHERE token = $1
	`
	t, err := scanToken(r.db.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, token).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.RefreshToken, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM refresh_tokens
		WHERE user_id = $1
		ORDER BY expires_at ASC, created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var tokens []*models.RefreshToken
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		tokens = append(tokens, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return tokens, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM refresh_tokens
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Revoke(ctx context.Context, id, reason string, at time.Time) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2, revoked_reason = $3
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, at, reason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) RevokeAllByUser(ctx context.Context, userID, reason string, at time.Time) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = $2, revoked_reason = $3
		WHERE user_id = $1 AND revoked_at IS NULL
	`
	return r.exec(ctx, query, userID, at, reason)
}

func (r *PostgresRepository) DeleteExpiredOrRevoked(ctx context.Context, userID string, now time.Time) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE user_id = $1 AND (expires_at <= $2 OR revoked_at IS NOT NULL)
	`
	return r.exec(ctx, query, userID, now)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
