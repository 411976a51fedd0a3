package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
)

// MemoryRepository keeps users in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UserName == user.UserName {
			return &common.Error{Kind: common.KindConflict, Message: fmt.Sprintf("user %s already exists", user.UserName)}
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) GetByUserName(ctx context.Context, userName string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.UserName == userName && !u.IsDeleted {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) UpdatePassword(ctx context.Context, id string, hash []byte, actor string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	u.Touch(actor, at)
	r.users[id] = u
	return nil
}
