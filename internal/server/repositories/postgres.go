package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/dbx"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/query"
)

// PostgresGateway implements Gateway over dbx.DBTX (satisfied by *sql.DB or
// *sql.Tx).
type PostgresGateway[T models.Record] struct {
	db    dbx.DBTX
	table *Table[T]
}

func NewPostgresGateway[T models.Record](db dbx.DBTX, table *Table[T]) *PostgresGateway[T] {
	return &PostgresGateway[T]{db: db, table: table}
}

func (g *PostgresGateway[T]) with(db dbx.DBTX) *PostgresGateway[T] {
	return &PostgresGateway[T]{db: db, table: g.table}
}

func (g *PostgresGateway[T]) Schema() *query.Schema[T] { return g.table.Schema }

func (g *PostgresGateway[T]) selectList() string {
	cols := g.table.allColumns()
	for i, c := range cols {
		cols[i] = query.RootAlias + "." + c
	}
	return strings.Join(cols, ", ")
}

func (g *PostgresGateway[T]) from() string {
	return g.table.Name + " " + query.RootAlias
}

func (g *PostgresGateway[T]) scan(rows *sql.Rows) ([]T, error) {
	defer rows.Close()

	items := []T{}
	for rows.Next() {
		v := g.table.New()
		if err := rows.Scan(g.table.targets(v)...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		items = append(items, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}

func (g *PostgresGateway[T]) Find(ctx context.Context, id string) (T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s.id = $1", g.selectList(), g.from(), query.RootAlias)

	v := g.table.New()
	if err := g.db.QueryRowContext(ctx, q, id).Scan(g.table.targets(v)...); err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, notFound(g.table.Name, id)
		}
		return zero, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

// FindWhere returns the single row matching cond, a trusted SQL condition
// over the root alias t. Missing rows yield common.ErrorNotFound.
func (g *PostgresGateway[T]) FindWhere(ctx context.Context, cond string, args ...any) (T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s", g.selectList(), g.from(), cond)

	v := g.table.New()
	if err := g.db.QueryRowContext(ctx, q, args...).Scan(g.table.targets(v)...); err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, common.ErrorNotFound
		}
		return zero, fmt.Errorf("db error: %w", err)
	}
	return v, nil
}

func (g *PostgresGateway[T]) FindMany(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}

	b := query.NewBuilder()
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = b.Arg(id)
	}
	q := fmt.Sprintf("SELECT %s FROM %s WHERE %s.id IN (%s) ORDER BY %s.created_at, %s.id",
		g.selectList(), g.from(), query.RootAlias, strings.Join(placeholders, ", "), query.RootAlias, query.RootAlias)

	rows, err := g.db.QueryContext(ctx, q, b.Args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g.scan(rows)
}

// render builds the FROM/WHERE/ORDER BY/LIMIT tail shared by Query, Project
// and Count.
func (g *PostgresGateway[T]) render(spec Spec[T], ordered bool) (query.SQL, string, []any) {
	q := spec.Query
	if q == nil {
		q = g.table.Schema.NewQuery()
	}
	if ordered {
		q = q.ThenBy(tiebreak...)
	}

	b := query.NewBuilder()
	r := q.SQL(b)

	var conds []string
	switch spec.ListType {
	case ListAll:
	case ListDeleted:
		conds = append(conds, query.RootAlias+".is_deleted = TRUE")
	default:
		conds = append(conds, query.RootAlias+".is_deleted = FALSE")
	}
	if r.Where != "" {
		conds = append(conds, r.Where)
	}

	var sb strings.Builder
	sb.WriteString(" FROM " + g.from() + r.Joins)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	if ordered {
		sb.WriteString(" ORDER BY " + r.OrderBy)
		if spec.Take > 0 {
			sb.WriteString(" LIMIT " + strconv.Itoa(spec.Take))
		}
		if spec.Skip > 0 {
			sb.WriteString(" OFFSET " + strconv.Itoa(spec.Skip))
		}
	}

	return r, sb.String(), b.Args
}

func (g *PostgresGateway[T]) Query(ctx context.Context, spec Spec[T]) ([]T, error) {
	_, tail, args := g.render(spec, true)

	rows, err := g.db.QueryContext(ctx, "SELECT "+g.selectList()+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return g.scan(rows)
}

func (g *PostgresGateway[T]) Project(ctx context.Context, spec Spec[T]) ([]map[string]any, error) {
	if spec.Query == nil || !spec.Query.HasProjection() {
		return nil, fmt.Errorf("project %s: no projection", g.table.Name)
	}
	r, tail, args := g.render(spec, true)
	keys := spec.Query.ProjectionKeys()

	rows, err := g.db.QueryContext(ctx, "SELECT "+strings.Join(r.Select, ", ")+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	records := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(keys))
		targets := make([]any, len(keys))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		rec := make(map[string]any, len(keys))
		for i, k := range keys {
			if b, ok := values[i].([]byte); ok {
				rec[k] = string(b)
			} else {
				rec[k] = values[i]
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return records, nil
}

func (g *PostgresGateway[T]) Count(ctx context.Context, spec Spec[T]) (int, error) {
	_, tail, args := g.render(spec, false)

	var n int
	if err := g.db.QueryRowContext(ctx, "SELECT COUNT(*)"+tail, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (g *PostgresGateway[T]) Add(ctx context.Context, v T) error {
	cols := g.table.allColumns()
	b := query.NewBuilder()
	placeholders := make([]string, len(cols))
	for i, val := range g.table.values(v) {
		placeholders[i] = b.Arg(val)
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		g.table.Name, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := g.db.ExecContext(ctx, q, b.Args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (g *PostgresGateway[T]) AddRange(ctx context.Context, vs []T) error {
	return dbx.InTx(ctx, g.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, v := range vs {
			if err := g.with(tx).Add(ctx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *PostgresGateway[T]) Update(ctx context.Context, v T) error {
	cols := g.table.allColumns()[1:]
	values := g.table.values(v)

	b := query.NewBuilder(values[0])
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = c + " = " + b.Arg(values[i+1])
	}

	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = $1", g.table.Name, strings.Join(sets, ", "))
	res, err := g.db.ExecContext(ctx, q, b.Args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return g.expectOne(res, v.Base().ID)
}

func (g *PostgresGateway[T]) UpdateRange(ctx context.Context, vs []T) error {
	return dbx.InTx(ctx, g.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, v := range vs {
			if err := g.with(tx).Update(ctx, v); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *PostgresGateway[T]) HardDelete(ctx context.Context, id string) error {
	res, err := g.db.ExecContext(ctx, "DELETE FROM "+g.table.Name+" WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return g.expectOne(res, id)
}

func (g *PostgresGateway[T]) HardDeleteRange(ctx context.Context, ids []string) error {
	return dbx.InTx(ctx, g.db, func(ctx context.Context, tx dbx.DBTX) error {
		for _, id := range ids {
			if err := g.with(tx).HardDelete(ctx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (g *PostgresGateway[T]) expectOne(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return notFound(g.table.Name, id)
	}
	return nil
}
