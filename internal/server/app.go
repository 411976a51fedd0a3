// Package server wires configuration, storage, services and transports into
// a runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/config"
	gs "github.com/dmitrijs2005/stockroom/internal/server/grpc"
	hs "github.com/dmitrijs2005/stockroom/internal/server/http"
	"github.com/dmitrijs2005/stockroom/internal/server/media"
	"github.com/dmitrijs2005/stockroom/internal/server/metrics"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/stockroom/internal/server/services"
)

type App struct {
	config *config.Config
	logger *logging.ZapLogger
	db     *sql.DB
	http   *hs.Server
	grpc   *gs.GRPCServer
}

// NewApp opens the database, applies migrations and builds every service.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.Environment, c.LogLevel, "stockroom")

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	m := metrics.New("stockroom")
	gateways := rm.Gateways(db)
	tokens := services.NewTokenService(db, rm, c, m, logger)
	authService := services.NewAuthService(db, rm, tokens, logger)
	images := media.NewImageService(gateways.Products, media.NewS3Presigner(c), logger)

	router := hs.NewRouter(hs.Deps{
		Auth:           authService,
		Tokens:         tokens,
		Images:         images,
		Gateways:       gateways,
		Metrics:        m,
		Logger:         logger,
		AllowedOrigins: c.AllowedOrigins,
	})

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   hs.NewServer(c.EndpointAddrHTTP, router, logger),
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, db, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP and gRPC until a signal arrives or either server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	run := func(name string, fn func(context.Context) error) {
		defer wg.Done()
		if err := fn(ctx); err != nil {
			app.logger.Error(ctx, "server failed", "server", name, "error", err)
			cancelFunc()
		}
	}

	wg.Add(2)
	go run("http", app.http.Run)
	go run("grpc", app.grpc.Run)

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	_ = app.logger.Sync()
}
