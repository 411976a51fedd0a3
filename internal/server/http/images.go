package http

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/media"
	"github.com/go-chi/chi/v5"
)

// ImageURLs hands out presigned URLs for product images.
type ImageURLs interface {
	UploadURL(ctx context.Context, productID string) (*media.Upload, error)
	DownloadURL(ctx context.Context, productID string) (string, error)
}

type urlResponse struct {
	URL string `json:"url"`
}

func productImageRoutes(images ImageURLs, l logging.Logger) func(chi.Router) {
	return func(r chi.Router) {
		r.Post("/{id}/image", func(w http.ResponseWriter, r *http.Request) {
			up, err := images.UploadURL(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(r.Context(), w, l, err)
				return
			}
			writeJSON(w, http.StatusOK, up)
		})
		r.Get("/{id}/image", func(w http.ResponseWriter, r *http.Request) {
			u, err := images.DownloadURL(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(r.Context(), w, l, err)
				return
			}
			writeJSON(w, http.StatusOK, urlResponse{URL: u})
		})
	}
}
