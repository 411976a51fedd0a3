// Package users provides storage for user accounts.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/server/models"
)

type Repository interface {
	// Create stores a new, already stamped user. A taken user name yields
	// common.ErrorConflict.
	Create(ctx context.Context, user *models.User) error
	Find(ctx context.Context, id string) (*models.User, error)
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, hash []byte, actor string, at time.Time) error
}
