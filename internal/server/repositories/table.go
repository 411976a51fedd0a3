package repositories

import (
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/query"
)

// Table maps an entity type onto a PostgreSQL table. Columns, Values and
// Targets describe only the domain columns; entity columns are shared.
type Table[T models.Record] struct {
	Name    string
	Columns []string
	New     func() T
	Clone   func(T) T
	Values  func(T) []any
	Targets func(T) []any
	Schema  *query.Schema[T]
}

var entityColumns = []string{
	"id", "created_at", "created_by", "modified_at", "modified_by",
	"is_deleted", "deleted_at", "deleted_by", "restored_at", "restored_by",
	"is_active", "activated_at", "activated_by", "disabled_at", "disabled_by",
}

func entityValues(e *models.Entity) []any {
	return []any{
		e.ID, e.CreatedAt, e.CreatedBy, e.ModifiedAt, e.ModifiedBy,
		e.IsDeleted, e.DeletedAt, e.DeletedBy, e.RestoredAt, e.RestoredBy,
		e.IsActive, e.ActivatedAt, e.ActivatedBy, e.DisabledAt, e.DisabledBy,
	}
}

func entityTargets(e *models.Entity) []any {
	return []any{
		&e.ID, &e.CreatedAt, &e.CreatedBy, &e.ModifiedAt, &e.ModifiedBy,
		&e.IsDeleted, &e.DeletedAt, &e.DeletedBy, &e.RestoredAt, &e.RestoredBy,
		&e.IsActive, &e.ActivatedAt, &e.ActivatedBy, &e.DisabledAt, &e.DisabledBy,
	}
}

func (t *Table[T]) allColumns() []string {
	return append(append([]string(nil), entityColumns...), t.Columns...)
}

func (t *Table[T]) values(v T) []any {
	return append(entityValues(v.Base()), t.Values(v)...)
}

func (t *Table[T]) targets(v T) []any {
	return append(entityTargets(v.Base()), t.Targets(v)...)
}

// newSchema starts a schema with the entity fields every table shares.
func newSchema[T models.Record](table string) *query.Schema[T] {
	return query.NewSchema[T](table).
		ID("Id", "id", func(v T) any { return v.Base().ID }).
		Time("CreatedAt", "created_at", func(v T) any { return v.Base().CreatedAt }).
		String("CreatedBy", "created_by", func(v T) any { return v.Base().CreatedBy }).
		Nullable("ModifiedAt", "modified_at", query.KindTime, func(v T) any { return v.Base().ModifiedAt }).
		Nullable("ModifiedBy", "modified_by", query.KindString, func(v T) any { return v.Base().ModifiedBy }).
		Bool("IsDeleted", "is_deleted", func(v T) any { return v.Base().IsDeleted }).
		Nullable("DeletedAt", "deleted_at", query.KindTime, func(v T) any { return v.Base().DeletedAt }).
		Nullable("DeletedBy", "deleted_by", query.KindString, func(v T) any { return v.Base().DeletedBy }).
		Nullable("RestoredAt", "restored_at", query.KindTime, func(v T) any { return v.Base().RestoredAt }).
		Nullable("RestoredBy", "restored_by", query.KindString, func(v T) any { return v.Base().RestoredBy }).
		Bool("IsActive", "is_active", func(v T) any { return v.Base().IsActive }).
		Nullable("ActivatedAt", "activated_at", query.KindTime, func(v T) any { return v.Base().ActivatedAt }).
		Nullable("ActivatedBy", "activated_by", query.KindString, func(v T) any { return v.Base().ActivatedBy }).
		Nullable("DisabledAt", "disabled_at", query.KindTime, func(v T) any { return v.Base().DisabledAt }).
		Nullable("DisabledBy", "disabled_by", query.KindString, func(v T) any { return v.Base().DisabledBy })
}

func shallow[E any](v *E) *E {
	c := *v
	return &c
}
