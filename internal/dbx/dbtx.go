// Package dbx holds the small database/sql abstractions shared by the
// repositories: DBTX, satisfied by both *sql.DB and *sql.Tx, and helpers that
// run a unit of work inside a transaction.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is the subset of database/sql used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Beginner is implemented by handles that can open a transaction (*sql.DB).
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx begins a transaction, runs fn with it and commits on success.
// It rolls back when fn returns an error or panics; panics are rethrown.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db Beginner, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

// InTx runs fn in a new transaction when db can begin one, and directly on db
// otherwise (db is already a transaction, or a handle without tx support).
// Commit happens once, at the outermost InTx.
func InTx(ctx context.Context, db DBTX, fn func(ctx context.Context, tx DBTX) error) error {
	if b, ok := db.(Beginner); ok {
		return WithTx(ctx, b, nil, fn)
	}
	return fn(ctx, db)
}
