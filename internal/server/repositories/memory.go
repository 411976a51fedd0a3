package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/query"
)

// MemoryGateway is a Gateway backed by a map, evaluating queries with the
// in-memory backend of the query package. Values are cloned on the way in
// and out so callers never share state with the store.
type MemoryGateway[T models.Record] struct {
	mu    sync.RWMutex
	table *Table[T]
	rows  map[string]T
}

func NewMemoryGateway[T models.Record](table *Table[T]) *MemoryGateway[T] {
	return &MemoryGateway[T]{table: table, rows: make(map[string]T)}
}

func (g *MemoryGateway[T]) Schema() *query.Schema[T] { return g.table.Schema }

func (g *MemoryGateway[T]) Find(ctx context.Context, id string) (T, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.rows[id]
	if !ok {
		var zero T
		return zero, notFound(g.table.Name, id)
	}
	return g.table.Clone(v), nil
}

func (g *MemoryGateway[T]) FindMany(ctx context.Context, ids []string) ([]T, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	items := []T{}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if v, ok := g.rows[id]; ok && !seen[id] {
			seen[id] = true
			items = append(items, g.table.Clone(v))
		}
	}
	g.table.Schema.NewQuery().ThenBy(tiebreak...).Sort(items)
	return items, nil
}

// selectRows applies list type, filter, ordering and paging.
func (g *MemoryGateway[T]) selectRows(spec Spec[T], page bool) ([]T, *query.Query[T]) {
	q := spec.Query
	if q == nil {
		q = g.table.Schema.NewQuery()
	}

	var items []T
	for _, v := range g.rows {
		if spec.ListType.includes(v.Base()) && q.Match(v) {
			items = append(items, v)
		}
	}
	if !page {
		return items, q
	}

	q.ThenBy(tiebreak...).Sort(items)

	if spec.Skip > 0 {
		items = items[min(spec.Skip, len(items)):]
	}
	if spec.Take > 0 && spec.Take < len(items) {
		items = items[:spec.Take]
	}
	return items, q
}

func (g *MemoryGateway[T]) Query(ctx context.Context, spec Spec[T]) ([]T, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows, _ := g.selectRows(spec, true)
	items := make([]T, len(rows))
	for i, v := range rows {
		items[i] = g.table.Clone(v)
	}
	return items, nil
}

func (g *MemoryGateway[T]) Project(ctx context.Context, spec Spec[T]) ([]map[string]any, error) {
	if spec.Query == nil || !spec.Query.HasProjection() {
		return nil, fmt.Errorf("project %s: no projection", g.table.Name)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	rows, q := g.selectRows(spec, true)
	records := make([]map[string]any, len(rows))
	for i, v := range rows {
		records[i] = q.Project(v)
	}
	return records, nil
}

func (g *MemoryGateway[T]) Count(ctx context.Context, spec Spec[T]) (int, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rows, _ := g.selectRows(spec, false)
	return len(rows), nil
}

func (g *MemoryGateway[T]) Add(ctx context.Context, v T) error {
	return g.AddRange(ctx, []T{v})
}

func (g *MemoryGateway[T]) AddRange(ctx context.Context, vs []T) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	batch := make(map[string]bool, len(vs))
	for _, v := range vs {
		id := v.Base().ID
		if _, exists := g.rows[id]; exists || batch[id] {
			return &common.Error{Kind: common.KindConflict, Message: fmt.Sprintf("%s %s already exists", g.table.Name, id)}
		}
		batch[id] = true
	}
	for _, v := range vs {
		g.rows[v.Base().ID] = g.table.Clone(v)
	}
	return nil
}

func (g *MemoryGateway[T]) Update(ctx context.Context, v T) error {
	return g.UpdateRange(ctx, []T{v})
}

func (g *MemoryGateway[T]) UpdateRange(ctx context.Context, vs []T) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, v := range vs {
		if _, ok := g.rows[v.Base().ID]; !ok {
			return notFound(g.table.Name, v.Base().ID)
		}
	}
	for _, v := range vs {
		g.rows[v.Base().ID] = g.table.Clone(v)
	}
	return nil
}

func (g *MemoryGateway[T]) HardDelete(ctx context.Context, id string) error {
	return g.HardDeleteRange(ctx, []string{id})
}

func (g *MemoryGateway[T]) HardDeleteRange(ctx context.Context, ids []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, id := range ids {
		if _, ok := g.rows[id]; !ok {
			return notFound(g.table.Name, id)
		}
	}
	for _, id := range ids {
		delete(g.rows, id)
	}
	return nil
}
