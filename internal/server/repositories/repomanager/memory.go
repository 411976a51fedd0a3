package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/stockroom/internal/dbx"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps every store in process memory. The db
// handles passed to its factories are ignored, so repeated calls share state.
type MemoryRepositoryManager struct {
	users    *users.MemoryRepository
	tokens   *refreshtokens.MemoryRepository
	gateways *Gateways
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:  users.NewMemoryRepository(),
		tokens: refreshtokens.NewMemoryRepository(),
		gateways: &Gateways{
			Brands:    repositories.NewMemoryGateway(repositories.BrandsTable()),
			Models:    repositories.NewMemoryGateway(repositories.ModelsTable()),
			Products:  repositories.NewMemoryGateway(repositories.ProductsTable()),
			Purchases: repositories.NewMemoryGateway(repositories.PurchasesTable()),
			Sales:     repositories.NewMemoryGateway(repositories.SalesTable()),
			Stocks:    repositories.NewMemoryGateway(repositories.StocksTable()),
			Comments:  repositories.NewMemoryGateway(repositories.CommentsTable()),
			Ratings:   repositories.NewMemoryGateway(repositories.RatingsTable()),
			Favorites: repositories.NewMemoryGateway(repositories.FavoritesTable()),
		},
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *MemoryRepositoryManager) Users(dbx.DBTX) users.Repository { return m.users }

func (m *MemoryRepositoryManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.tokens }

func (m *MemoryRepositoryManager) Gateways(dbx.DBTX) *Gateways { return m.gateways }
