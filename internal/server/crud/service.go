// Package crud is the uniform facade over entity gateways: listing, search,
// paging, lookups, writes and lifecycle transitions, with DTO mapping at the
// boundary.
package crud

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/server/auth"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/pagination"
	"github.com/dmitrijs2005/stockroom/internal/server/query"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
	"github.com/google/uuid"
)

// Service exposes CRUD and lifecycle operations for entity type T using D as
// its external shape.
type Service[T models.Record, D any] struct {
	gw      repositories.Gateway[T]
	toDTO   func(T) D
	fromDTO func(D) T
	keep    func(v, stored T)
	now     func() time.Time
}

func NewService[T models.Record, D any](gw repositories.Gateway[T], toDTO func(T) D, fromDTO func(D) T) *Service[T, D] {
	return &Service[T, D]{gw: gw, toDTO: toDTO, fromDTO: fromDTO, now: time.Now}
}

// PreserveOnUpdate registers fn to copy fields that updates must not
// overwrite from the stored record onto the incoming one.
func (s *Service[T, D]) PreserveOnUpdate(fn func(v, stored T)) *Service[T, D] {
	s.keep = fn
	return s
}

func (s *Service[T, D]) mapAll(items []T) []D {
	out := make([]D, len(items))
	for i, v := range items {
		out[i] = s.toDTO(v)
	}
	return out
}

// List returns every record of the list type ordered by creation.
func (s *Service[T, D]) List(ctx context.Context, lt repositories.ListType) ([]D, error) {
	items, err := s.gw.Query(ctx, repositories.Spec[T]{ListType: lt})
	if err != nil {
		return nil, err
	}
	return s.mapAll(items), nil
}

func (s *Service[T, D]) ListPage(ctx context.Context, lt repositories.ListType, p pagination.Params) (*pagination.PageResult[D], error) {
	spec := repositories.Spec[T]{ListType: lt}
	page, err := pagination.Paginate(ctx, p,
		func(ctx context.Context) (int, error) { return s.gw.Count(ctx, spec) },
		func(ctx context.Context, skip, take int) ([]T, error) {
			spec := spec
			spec.Skip, spec.Take = skip, take
			return s.gw.Query(ctx, spec)
		})
	if err != nil {
		return nil, err
	}
	return pagination.Map(page, s.toDTO), nil
}

func (s *Service[T, D]) parse(filter, projection, ordering string) (*query.Query[T], error) {
	if strings.TrimSpace(filter) == "" && strings.TrimSpace(projection) == "" && strings.TrimSpace(ordering) == "" {
		return nil, common.Validation("must supply at least one of filter/projection/ordering")
	}
	return s.gw.Schema().Parse(filter, projection, ordering)
}

// Query searches with the given expressions. At least one of them must be
// non-blank.
func (s *Service[T, D]) Query(ctx context.Context, lt repositories.ListType, filter, projection, ordering string) (*Result[D], error) {
	q, err := s.parse(filter, projection, ordering)
	if err != nil {
		return nil, err
	}
	spec := repositories.Spec[T]{ListType: lt, Query: q}

	if q.HasProjection() {
		records, err := s.gw.Project(ctx, spec)
		if err != nil {
			return nil, err
		}
		return &Result[D]{Records: records}, nil
	}

	items, err := s.gw.Query(ctx, spec)
	if err != nil {
		return nil, err
	}
	return &Result[D]{Items: s.mapAll(items)}, nil
}

func (s *Service[T, D]) QueryPage(ctx context.Context, lt repositories.ListType, filter, projection, ordering string, p pagination.Params) (*PagedResult[D], error) {
	q, err := s.parse(filter, projection, ordering)
	if err != nil {
		return nil, err
	}
	spec := repositories.Spec[T]{ListType: lt, Query: q}
	count := func(ctx context.Context) (int, error) { return s.gw.Count(ctx, spec) }

	if q.HasProjection() {
		page, err := pagination.Paginate(ctx, p, count,
			func(ctx context.Context, skip, take int) ([]map[string]any, error) {
				spec := spec
				spec.Skip, spec.Take = skip, take
				return s.gw.Project(ctx, spec)
			})
		if err != nil {
			return nil, err
		}
		return &PagedResult[D]{Result: Result[D]{Records: page.Items}, TotalItems: page.TotalItems, TotalPages: page.TotalPages}, nil
	}

	page, err := pagination.Paginate(ctx, p, count,
		func(ctx context.Context, skip, take int) ([]T, error) {
			spec := spec
			spec.Skip, spec.Take = skip, take
			return s.gw.Query(ctx, spec)
		})
	if err != nil {
		return nil, err
	}
	return &PagedResult[D]{Result: Result[D]{Items: s.mapAll(page.Items)}, TotalItems: page.TotalItems, TotalPages: page.TotalPages}, nil
}

// checkID rejects ids that cannot name a stored record before they reach the
// store, where a malformed UUID would fail as a database error.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.NotFound("record %q not found", id)
	}
	return nil
}

func (s *Service[T, D]) Find(ctx context.Context, id string) (D, error) {
	if err := checkID(id); err != nil {
		var zero D
		return zero, err
	}
	v, err := s.gw.Find(ctx, id)
	if err != nil {
		var zero D
		return zero, err
	}
	return s.toDTO(v), nil
}

// ParseIDs splits a comma-separated id list, dropping blanks. Every id must
// be a UUID.
func ParseIDs(list string) ([]string, error) {
	var ids []string
	for _, part := range strings.Split(list, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, common.Validation("invalid id %q", id)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, common.Validation("no ids supplied")
	}
	return ids, nil
}

// FindList returns the records whose ids appear in the comma-separated list.
// Unknown ids are skipped.
func (s *Service[T, D]) FindList(ctx context.Context, list string) ([]D, error) {
	ids, err := ParseIDs(list)
	if err != nil {
		return nil, err
	}
	items, err := s.gw.FindMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.mapAll(items), nil
}

func (s *Service[T, D]) newRecord(ctx context.Context, dto D) T {
	v := s.fromDTO(dto)
	v.Base().ID = ""
	v.Base().Stamp(auth.ActorFromContext(ctx), s.now().UTC())
	return v
}

// Add stores a new record. Identity and audit fields of dto are ignored.
func (s *Service[T, D]) Add(ctx context.Context, dto D) (D, error) {
	v := s.newRecord(ctx, dto)
	if err := s.gw.Add(ctx, v); err != nil {
		var zero D
		return zero, err
	}
	return s.toDTO(v), nil
}

func (s *Service[T, D]) AddMany(ctx context.Context, dtos []D) ([]D, error) {
	vs := make([]T, len(dtos))
	for i, dto := range dtos {
		vs[i] = s.newRecord(ctx, dto)
	}
	if err := s.gw.AddRange(ctx, vs); err != nil {
		return nil, err
	}
	return s.mapAll(vs), nil
}

// merge applies the domain fields of dto onto the stored record id.
func (s *Service[T, D]) merge(ctx context.Context, id string, dto D) (T, error) {
	if err := checkID(id); err != nil {
		var zero T
		return zero, err
	}
	stored, err := s.gw.Find(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	v := s.fromDTO(dto)
	v.Base().Adopt(stored.Base())
	if s.keep != nil {
		s.keep(v, stored)
	}
	v.Base().Touch(auth.ActorFromContext(ctx), s.now().UTC())
	return v, nil
}

// Update replaces the domain fields of record id. Audit, lifecycle and
// activation state are kept from the stored version.
func (s *Service[T, D]) Update(ctx context.Context, id string, dto D) (D, error) {
	var zero D
	v, err := s.merge(ctx, id, dto)
	if err != nil {
		return zero, err
	}
	if err := s.gw.Update(ctx, v); err != nil {
		return zero, err
	}
	return s.toDTO(v), nil
}

// UpdateMany updates every dto by its own id in one transaction.
func (s *Service[T, D]) UpdateMany(ctx context.Context, dtos []D) ([]D, error) {
	vs := make([]T, len(dtos))
	for i, dto := range dtos {
		id := s.fromDTO(dto).Base().ID
		if id == "" {
			return nil, common.Validation("item %d has no id", i)
		}
		v, err := s.merge(ctx, id, dto)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	if err := s.gw.UpdateRange(ctx, vs); err != nil {
		return nil, err
	}
	return s.mapAll(vs), nil
}

// transition loads ids, applies fn to each and persists the changed ones.
// fn reports whether the record changed; an error aborts the whole batch.
func (s *Service[T, D]) transition(ctx context.Context, ids []string, fn func(e *models.Entity, actor string, at time.Time) (bool, error)) (bool, error) {
	actor := auth.ActorFromContext(ctx)
	at := s.now().UTC()

	var changed []T
	for _, id := range ids {
		if err := checkID(id); err != nil {
			return false, err
		}
	}
	for _, id := range ids {
		v, err := s.gw.Find(ctx, id)
		if err != nil {
			return false, err
		}
		ok, err := fn(v.Base(), actor, at)
		if err != nil {
			return false, err
		}
		if ok {
			changed = append(changed, v)
		}
	}

	switch len(changed) {
	case 0:
	case 1:
		if err := s.gw.Update(ctx, changed[0]); err != nil {
			return false, err
		}
	default:
		if err := s.gw.UpdateRange(ctx, changed); err != nil {
			return false, err
		}
	}
	return true, nil
}

func markDeleted(e *models.Entity, actor string, at time.Time) (bool, error) {
	return e.MarkDeleted(actor, at), nil
}

func markRestored(e *models.Entity, actor string, at time.Time) (bool, error) {
	if !e.MarkRestored(actor, at) {
		return false, common.NotFound("deleted record %s not found", e.ID)
	}
	return true, nil
}

func markActive(e *models.Entity, actor string, at time.Time) (bool, error) {
	return e.MarkActive(actor, at), nil
}

func markDisabled(e *models.Entity, actor string, at time.Time) (bool, error) {
	return e.MarkDisabled(actor, at), nil
}

// Delete soft-deletes id. Deleting a deleted record succeeds without change.
func (s *Service[T, D]) Delete(ctx context.Context, id string) (bool, error) {
	return s.transition(ctx, []string{id}, markDeleted)
}

func (s *Service[T, D]) DeleteMany(ctx context.Context, ids []string) (bool, error) {
	return s.transition(ctx, ids, markDeleted)
}

// Restore undeletes id. A record that is not currently deleted is reported
// as not found.
func (s *Service[T, D]) Restore(ctx context.Context, id string) (bool, error) {
	return s.transition(ctx, []string{id}, markRestored)
}

func (s *Service[T, D]) RestoreMany(ctx context.Context, ids []string) (bool, error) {
	return s.transition(ctx, ids, markRestored)
}

func (s *Service[T, D]) Activate(ctx context.Context, id string) (bool, error) {
	return s.transition(ctx, []string{id}, markActive)
}

func (s *Service[T, D]) ActivateMany(ctx context.Context, ids []string) (bool, error) {
	return s.transition(ctx, ids, markActive)
}

func (s *Service[T, D]) Disable(ctx context.Context, id string) (bool, error) {
	return s.transition(ctx, []string{id}, markDisabled)
}

func (s *Service[T, D]) DisableMany(ctx context.Context, ids []string) (bool, error) {
	return s.transition(ctx, ids, markDisabled)
}

// HardDelete removes id permanently.
func (s *Service[T, D]) HardDelete(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	if err := s.gw.HardDelete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service[T, D]) HardDeleteMany(ctx context.Context, ids []string) (bool, error) {
	for _, id := range ids {
		if err := checkID(id); err != nil {
			return false, err
		}
	}
	if err := s.gw.HardDeleteRange(ctx, ids); err != nil {
		return false, err
	}
	return true, nil
}
