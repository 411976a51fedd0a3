// Package repomanager vends repository and gateway implementations bound to
// a database handle and runs the schema migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/stockroom/internal/dbx"
	"github.com/dmitrijs2005/stockroom/internal/server/migrations"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed implementations.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Gateways(db dbx.DBTX) *Gateways {
	return &Gateways{
		Brands:    repositories.NewPostgresGateway(db, repositories.BrandsTable()),
		Models:    repositories.NewPostgresGateway(db, repositories.ModelsTable()),
		Products:  repositories.NewPostgresGateway(db, repositories.ProductsTable()),
		Purchases: repositories.NewPostgresGateway(db, repositories.PurchasesTable()),
		Sales:     repositories.NewPostgresGateway(db, repositories.SalesTable()),
		Stocks:    repositories.NewPostgresGateway(db, repositories.StocksTable()),
		Comments:  repositories.NewPostgresGateway(db, repositories.CommentsTable()),
		Ratings:   repositories.NewPostgresGateway(db, repositories.RatingsTable()),
		Favorites: repositories.NewPostgresGateway(db, repositories.FavoritesTable()),
	}
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
