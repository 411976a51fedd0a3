package refreshtokens

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is a Repository kept in process memory.
type MemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]models.RefreshToken // by id
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]models.RefreshToken), now: time.Now}
}

func (r *MemoryRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.tokens {
		if existing.Token == t.Token {
			return &common.Error{Kind: common.KindConflict, Message: "duplicate refresh token"}
		}
	}
	t.ID = uuid.NewString()
	t.CreatedAt = r.now()
	r.tokens[t.ID] = *t
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.tokens {
		if t.Token == token {
			return &t, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *MemoryRepository) Exists(ctx context.Context, token string) (bool, error) {
	_, err := r.Find(ctx, token)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID string) ([]*models.RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.RefreshToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			out = append(out, &t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiresAt.Equal(out[j].ExpiresAt) {
			return out[i].ExpiresAt.Before(out[j].ExpiresAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, id)
	return nil
}

func (r *MemoryRepository) Revoke(ctx context.Context, id, reason string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[id]
	if !ok {
		return common.ErrorNotFound
	}
	t.RevokedAt, t.RevokedReason = &at, &reason
	r.tokens[id] = t
	return nil
}

func (r *MemoryRepository) RevokeAllByUser(ctx context.Context, userID, reason string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			t.RevokedAt, t.RevokedReason = &at, &reason
			r.tokens[id] = t
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteExpiredOrRevoked(ctx context.Context, userID string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.tokens {
		if t.UserID == userID && (t.IsExpired(now) || t.IsRevoked()) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}
