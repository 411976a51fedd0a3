// Package repositories contains the generic persistence gateway used by the
// CRUD facade, its PostgreSQL and in-memory implementations, and the table
// mappings of every domain entity.
package repositories

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/query"
)

// ListType selects records by soft-delete state.
type ListType string

const (
	ListAll     ListType = "all"
	ListExisted ListType = "existed"
	ListDeleted ListType = "deleted"
)

// ParseListType accepts all, existed and deleted in any case. An empty value
// means existed.
func ParseListType(s string) (ListType, error) {
	switch ListType(strings.ToLower(strings.TrimSpace(s))) {
	case "", ListExisted:
		return ListExisted, nil
	case ListAll:
		return ListAll, nil
	case ListDeleted:
		return ListDeleted, nil
	}
	return "", common.Validation("unknown list type %q, expected all, existed or deleted", s)
}

func (lt ListType) includes(e *models.Entity) bool {
	switch lt {
	case ListAll:
		return true
	case ListDeleted:
		return e.IsDeleted
	default:
		return !e.IsDeleted
	}
}

// Spec describes a listing. A nil Query means no filter, projection or
// ordering. Take <= 0 means no limit.
type Spec[T any] struct {
	ListType ListType
	Query    *query.Query[T]
	Skip     int
	Take     int
}

// tiebreak is appended to every ordering so that pages are stable.
var tiebreak = []string{"CreatedAt", "Id"}

// Gateway is the narrow persistence contract for one entity type. Soft
// delete, restore, activation and deactivation are lifecycle transitions
// persisted with Update and UpdateRange. Range operations are atomic.
type Gateway[T models.Record] interface {
	Schema() *query.Schema[T]

	// Find returns common.ErrorNotFound when id does not exist.
	Find(ctx context.Context, id string) (T, error)
	// FindMany silently omits ids that do not exist.
	FindMany(ctx context.Context, ids []string) ([]T, error)

	Query(ctx context.Context, spec Spec[T]) ([]T, error)
	Project(ctx context.Context, spec Spec[T]) ([]map[string]any, error)
	Count(ctx context.Context, spec Spec[T]) (int, error)

	Add(ctx context.Context, v T) error
	AddRange(ctx context.Context, vs []T) error
	// Update and UpdateRange return common.ErrorNotFound for missing ids.
	Update(ctx context.Context, v T) error
	UpdateRange(ctx context.Context, vs []T) error
	HardDelete(ctx context.Context, id string) error
	HardDeleteRange(ctx context.Context, ids []string) error
}

func notFound(table, id string) error {
	return common.NotFound("%s %s not found", table, id)
}
