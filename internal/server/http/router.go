// Package http is the REST boundary of the server: chi routing, bearer
// authentication, request logging and metrics, and JSON error mapping.
package http

import (
	"net/http"

	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/crud"
	"github.com/dmitrijs2005/stockroom/internal/server/metrics"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/repomanager"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the router dispatches to.
type Deps struct {
	Auth           Authenticator
	Tokens         TokenValidator
	Images         ImageURLs
	Gateways       *repomanager.Gateways
	Metrics        *metrics.Metrics
	Logger         logging.Logger
	AllowedOrigins []string
}

func NewRouter(d Deps) *chi.Mux {
	l := d.Logger.With("module", "http")

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(observe(l, d.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler())
	}

	ah := &authHandler{auth: d.Auth, logger: l}
	requireUser := authenticate(d.Tokens, l)
	g := d.Gateways

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", ah.login)
			r.Post("/refresh", ah.refresh)
			r.Post("/logout", ah.logout)
			r.With(requireUser).Post("/password", ah.changePassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			mountEntity(r, "brands", crud.NewService(g.Brands, models.BrandToDTO, models.BrandFromDTO), l)
			mountEntity(r, "models", crud.NewService(g.Models, models.ModelToDTO, models.ModelFromDTO), l)

			products := crud.NewService(g.Products, models.ProductToDTO, models.ProductFromDTO).
				PreserveOnUpdate(func(v, stored *models.Product) { v.ImageKey = stored.ImageKey })
			if d.Images != nil {
				mountEntity(r, "products", products, l, productImageRoutes(d.Images, l))
			} else {
				mountEntity(r, "products", products, l)
			}

			mountEntity(r, "purchases", crud.NewService(g.Purchases, models.PurchaseToDTO, models.PurchaseFromDTO), l)
			mountEntity(r, "sales", crud.NewService(g.Sales, models.SaleToDTO, models.SaleFromDTO), l)
			mountEntity(r, "stocks", crud.NewService(g.Stocks, models.StockToDTO, models.StockFromDTO), l)
			mountEntity(r, "comments", crud.NewService(g.Comments, models.CommentToDTO, models.CommentFromDTO), l)
			mountEntity(r, "ratings", crud.NewService(g.Ratings, models.RatingToDTO, models.RatingFromDTO), l)
			mountEntity(r, "favorites", crud.NewService(g.Favorites, models.FavoriteToDTO, models.FavoriteFromDTO), l)
		})
	})

	return r
}
