// Package query implements the dynamic filter, projection and ordering
// language used by search endpoints. Expressions are parsed into an AST and
// bound to a per-entity Schema, which whitelists the fields that may be
// referenced. A bound Query can be rendered as PostgreSQL or evaluated
// against values in memory.
package query

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/stockroom/internal/common"
)

type Kind int

const (
	KindString Kind = iota
	KindID
	KindNumber
	KindBool
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindID:
		return "id"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindTime:
		return "time"
	default:
		return "string"
	}
}

// Field is one queryable property of T. Name is the dotted path callers use,
// e.g. "Model.Brand.Title"; everything before the last dot names the join.
// Get must return nil for SQL NULL or a missing navigation.
type Field[T any] struct {
	Name     string
	Column   string
	Kind     Kind
	Nullable bool
	Get      func(T) any

	join string
}

// Join describes a navigation reachable from the root table. The parent of
// "Model.Brand" is "Model"; the parent of "Model" is the root.
type Join struct {
	Path        string
	Table       string
	LocalColumn string // foreign key column on the parent
}

type Schema[T any] struct {
	table  string
	fields map[string]*Field[T]
	names  []string
	joins  map[string]Join
}

const RootAlias = "t"

func NewSchema[T any](table string) *Schema[T] {
	return &Schema[T]{
		table:  table,
		fields: make(map[string]*Field[T]),
		joins:  make(map[string]Join),
	}
}

func (s *Schema[T]) Table() string { return s.table }

// Join registers a navigation. Parents must be registered first.
func (s *Schema[T]) Join(path, table, localColumn string) *Schema[T] {
	if parent := parentPath(path); parent != "" {
		if _, ok := s.joins[strings.ToLower(parent)]; !ok {
			panic(fmt.Sprintf("query: join %s registered before its parent", path))
		}
	}
	s.joins[strings.ToLower(path)] = Join{Path: path, Table: table, LocalColumn: localColumn}
	return s
}

// Add registers a field. It panics on duplicates or unknown joins, both of
// which are programming errors.
func (s *Schema[T]) Add(f Field[T]) *Schema[T] {
	key := strings.ToLower(f.Name)
	if _, dup := s.fields[key]; dup {
		panic(fmt.Sprintf("query: duplicate field %s", f.Name))
	}
	f.join = parentPath(f.Name)
	if f.join != "" {
		if _, ok := s.joins[strings.ToLower(f.join)]; !ok {
			panic(fmt.Sprintf("query: field %s uses unregistered join %s", f.Name, f.join))
		}
	}
	s.fields[key] = &f
	s.names = append(s.names, f.Name)
	return s
}

func (s *Schema[T]) String(name, column string, get func(T) any) *Schema[T] {
	return s.Add(Field[T]{Name: name, Column: column, Kind: KindString, Get: get})
}

func (s *Schema[T]) ID(name, column string, get func(T) any) *Schema[T] {
	return s.Add(Field[T]{Name: name, Column: column, Kind: KindID, Get: get})
}

func (s *Schema[T]) Number(name, column string, get func(T) any) *Schema[T] {
	return s.Add(Field[T]{Name: name, Column: column, Kind: KindNumber, Get: get})
}

func (s *Schema[T]) Bool(name, column string, get func(T) any) *Schema[T] {
	return s.Add(Field[T]{Name: name, Column: column, Kind: KindBool, Get: get})
}

func (s *Schema[T]) Time(name, column string, get func(T) any) *Schema[T] {
	return s.Add(Field[T]{Name: name, Column: column, Kind: KindTime, Get: get})
}

// Nullable registers a field whose value may be NULL.
func (s *Schema[T]) Nullable(name, column string, kind Kind, get func(T) any) *Schema[T] {
	return s.Add(Field[T]{Name: name, Column: column, Kind: kind, Nullable: true, Get: get})
}

// Lookup resolves a case-insensitive field path.
func (s *Schema[T]) Lookup(name string) (*Field[T], error) {
	f, ok := s.fields[strings.ToLower(name)]
	if !ok {
		return nil, common.Validation("unknown field %q", name)
	}
	return f, nil
}

// Fields lists registered field names in registration order.
func (s *Schema[T]) Fields() []string {
	return append([]string(nil), s.names...)
}

// Ref returns the qualified column reference, e.g. j_model_brand.title.
func (f *Field[T]) Ref() string { return alias(f.join) + "." + f.Column }

func alias(joinPath string) string {
	if joinPath == "" {
		return RootAlias
	}
	return "j_" + strings.ToLower(strings.ReplaceAll(joinPath, ".", "_"))
}

func parentPath(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}
	return ""
}

func syntaxError(pos int, format string, args ...any) error {
	return common.Validation("invalid expression at %d: %s", pos, fmt.Sprintf(format, args...))
}
