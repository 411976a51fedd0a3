package query

import (
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/stockroom/internal/common"
)

// Query is a filter, projection and ordering bound to a Schema. The zero
// parts mean "no filter", "whole entity" and "no explicit order".
type Query[T any] struct {
	schema     *Schema[T]
	filter     node[T]
	projection []projected[T]
	ordering   []ordered[T]
}

type projected[T any] struct {
	key   string
	field *Field[T]
}

type ordered[T any] struct {
	field *Field[T]
	desc  bool
}

// NewQuery returns an empty query over the schema.
func (s *Schema[T]) NewQuery() *Query[T] {
	return &Query[T]{schema: s}
}

// Parse binds the three optional expressions. Blank strings are treated as
// absent. Every error is a validation failure.
func (s *Schema[T]) Parse(filter, projection, ordering string) (*Query[T], error) {
	q := s.NewQuery()

	if strings.TrimSpace(filter) != "" {
		expr, err := ParseFilter(filter)
		if err != nil {
			return nil, err
		}
		if q.filter, err = s.bind(expr); err != nil {
			return nil, err
		}
	}

	items, err := ParseProjection(projection)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, item := range items {
		f, err := s.Lookup(item.Path)
		if err != nil {
			return nil, err
		}
		key := item.Alias
		if key == "" {
			key = f.Name
		}
		if seen[strings.ToLower(key)] {
			return nil, common.Validation("duplicate projection key %q", key)
		}
		seen[strings.ToLower(key)] = true
		q.projection = append(q.projection, projected[T]{key: key, field: f})
	}

	orders, err := ParseOrdering(ordering)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		f, err := s.Lookup(o.Path)
		if err != nil {
			return nil, err
		}
		q.ordering = append(q.ordering, ordered[T]{field: f, desc: o.Desc})
	}

	return q, nil
}

// IsEmpty reports whether none of filter, projection and ordering is set.
func (q *Query[T]) IsEmpty() bool {
	return q.filter == nil && len(q.projection) == 0 && len(q.ordering) == 0
}

func (q *Query[T]) HasProjection() bool { return len(q.projection) > 0 }

// ProjectionKeys returns the keys of projected records in projection order.
func (q *Query[T]) ProjectionKeys() []string {
	keys := make([]string, len(q.projection))
	for i, p := range q.projection {
		keys[i] = p.key
	}
	return keys
}

// ThenBy returns a copy of q with ascending orderings on the given registered
// fields appended. It panics on unknown fields.
func (q *Query[T]) ThenBy(fields ...string) *Query[T] {
	out := *q
	out.ordering = append([]ordered[T](nil), q.ordering...)
	for _, name := range fields {
		f, err := q.schema.Lookup(name)
		if err != nil {
			panic(err)
		}
		out.ordering = append(out.ordering, ordered[T]{field: f})
	}
	return &out
}

// Match evaluates the filter in memory.
func (q *Query[T]) Match(v T) bool {
	return q.filter == nil || q.filter.eval(v)
}

// Compare orders two values by the query ordering.
func (q *Query[T]) Compare(a, b T) int {
	for _, o := range q.ordering {
		c := sortValues(o.field.Kind, o.field.Get(a), o.field.Get(b))
		if o.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Sort orders items in place, stable for equal keys.
func (q *Query[T]) Sort(items []T) {
	sort.SliceStable(items, func(i, j int) bool { return q.Compare(items[i], items[j]) < 0 })
}

// Project reshapes v into a record keyed by projection keys.
func (q *Query[T]) Project(v T) map[string]any {
	out := make(map[string]any, len(q.projection))
	for _, p := range q.projection {
		out[p.key] = deref(p.field.Get(v))
	}
	return out
}

// Builder accumulates SQL text and positional arguments. Placeholders
// continue the numbering of arguments already present.
type Builder struct {
	sb   strings.Builder
	Args []any
}

func NewBuilder(args ...any) *Builder {
	return &Builder{Args: args}
}

func (b *Builder) write(s string) { b.sb.WriteString(s) }

// Arg appends v and returns its placeholder.
func (b *Builder) Arg(v any) string {
	b.Args = append(b.Args, v)
	return "$" + strconv.Itoa(len(b.Args))
}

// SQL is a query rendered for PostgreSQL. Where and OrderBy come without
// their keywords and are empty when absent.
type SQL struct {
	Joins   string
	Where   string
	OrderBy string
	Select  []string
}

// SQL renders q, adding placeholders to b.
func (q *Query[T]) SQL(b *Builder) SQL {
	var out SQL

	used := make(map[string]bool)
	visit := func(f *Field[T]) {
		for p := f.join; p != ""; p = parentPath(p) {
			used[strings.ToLower(p)] = true
		}
	}

	if q.filter != nil {
		b.sb.Reset()
		q.filter.sql(b)
		out.Where = b.sb.String()
		b.sb.Reset()
		q.filter.fields(visit)
	}

	for _, p := range q.projection {
		visit(p.field)
		out.Select = append(out.Select, p.field.Ref())
	}

	orderBy := make([]string, 0, len(q.ordering))
	for _, o := range q.ordering {
		visit(o.field)
		dir := " ASC"
		if o.desc {
			dir = " DESC"
		}
		orderBy = append(orderBy, o.field.Ref()+dir)
	}
	out.OrderBy = strings.Join(orderBy, ", ")
	out.Joins = q.schema.joinClause(used)

	return out
}

// joinClause renders LEFT JOINs for the used paths, parents first.
func (s *Schema[T]) joinClause(used map[string]bool) string {
	paths := make([]string, 0, len(used))
	for p := range used {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		di, dj := strings.Count(paths[i], "."), strings.Count(paths[j], ".")
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})

	var sb strings.Builder
	for _, p := range paths {
		j := s.joins[p]
		self := alias(j.Path)
		parent := alias(parentPath(j.Path))
		sb.WriteString(" LEFT JOIN " + j.Table + " " + self + " ON " + self + ".id = " + parent + "." + j.LocalColumn)
	}
	return sb.String()
}
