package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/auth"
	"github.com/dmitrijs2005/stockroom/internal/server/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// TokenValidator checks bearer access tokens.
type TokenValidator interface {
	ValidateAccessToken(token string) (*auth.Claims, error)
}

// authenticate rejects requests without a valid bearer token and stores the
// token claims in the request context.
func authenticate(tokens TokenValidator, l logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get(common.AuthorizationHeaderName)
			if !strings.HasPrefix(header, common.BearerPrefix) {
				writeError(r.Context(), w, l, common.Unauthorized("missing bearer token"))
				return
			}

			claims, err := tokens.ValidateAccessToken(strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix)))
			if err != nil {
				writeError(r.Context(), w, l, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), claims)))
		})
	}
}

// observe carries the chi request id into the logging context, then logs
// and measures every request by its route pattern.
func observe(l logging.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			if id := chimiddleware.GetReqID(ctx); id != "" {
				ctx = logging.WithRequestID(ctx, id)
				w.Header().Set(chimiddleware.RequestIDHeader, id)
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := r.URL.Path
			if rc := chi.RouteContext(ctx); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			m.ObserveRequest(r.Method, route, status, elapsed)
			l.Info(ctx, "request",
				"method", r.Method,
				"route", route,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
			)
		})
	}
}
