// Command useradd creates a stockroom account directly in the database. It
// reads the same configuration as the server.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"log"
	"os"

	"github.com/dmitrijs2005/stockroom/internal/admin"
	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/config"
	"github.com/dmitrijs2005/stockroom/internal/server/metrics"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stockroom/internal/server/services"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Environment, cfg.LogLevel, "useradd")
	defer logger.Sync()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close()

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	tokens := services.NewTokenService(db, rm, cfg, metrics.New("useradd"), logger)
	users := services.NewAuthService(db, rm, tokens, logger)

	if _, err := admin.UserAdd(ctx, users, bufio.NewReader(os.Stdin), os.Stdout); err != nil {
		log.Fatalf("useradd: %v", err)
	}
}
