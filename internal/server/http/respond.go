package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/logging"
)

type errorResponse struct {
	Kind    common.Kind `json:"kind"`
	Message string      `json:"message"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func statusOf(kind common.Kind) int {
	switch kind {
	case common.KindNotFound:
		return http.StatusNotFound
	case common.KindValidation:
		return http.StatusBadRequest
	case common.KindUnauthorized:
		return http.StatusUnauthorized
	case common.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {kind, message}. Internal failures are logged
// and their details withheld from the client.
func writeError(ctx context.Context, w http.ResponseWriter, l logging.Logger, err error) {
	kind := common.KindOf(err)
	if kind == common.KindInternal {
		l.Error(ctx, "request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Kind: kind, Message: "internal error"})
		return
	}
	writeJSON(w, statusOf(kind), errorResponse{Kind: kind, Message: common.MessageOf(err)})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return common.Validation("invalid request body: %v", err)
	}
	return nil
}
