package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/stockroom/internal/dbx"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Gateways(db dbx.DBTX) *Gateways
}

// Gateways groups the persistence gateways of every domain entity.
type Gateways struct {
	Brands    repositories.Gateway[*models.Brand]
	Models    repositories.Gateway[*models.Model]
	Products  repositories.Gateway[*models.Product]
	Purchases repositories.Gateway[*models.Purchase]
	Sales     repositories.Gateway[*models.Sale]
	Stocks    repositories.Gateway[*models.Stock]
	Comments  repositories.Gateway[*models.Comment]
	Ratings   repositories.Gateway[*models.Rating]
	Favorites repositories.Gateway[*models.Favorite]
}
