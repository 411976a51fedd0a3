package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/dbx"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type PostgresRepository struct {
	db dbx.DBTX
	gw *repositories.PostgresGateway[*models.User]
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db, gw: repositories.NewPostgresGateway(db, repositories.UsersTable())}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	err := r.gw.Add(ctx, user)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &common.Error{Kind: common.KindConflict, Message: fmt.Sprintf("user %s already exists", user.UserName)}
	}
	return err
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.User, error) {
	return r.gw.Find(ctx, id)
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	return r.gw.FindWhere(ctx, "t.username = $1 AND t.is_deleted = FALSE", userName)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte, actor string, at time.Time) error {
	query :=
		`UPDATE users SET password_hash = $2, modified_at = $3, modified_by = $4
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, hash, at, actor)
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
