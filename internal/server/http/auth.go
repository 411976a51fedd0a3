package http

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/auth"
	"github.com/dmitrijs2005/stockroom/internal/server/services"
)

// Authenticator runs the login, refresh, logout and password flows.
type Authenticator interface {
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type authHandler struct {
	auth   Authenticator
	logger logging.Logger
}

func (h *authHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if req.UserName == "" || req.Password == "" {
		writeError(r.Context(), w, h.logger, common.Validation("userName and password are required"))
		return
	}

	pair, err := h.auth.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *authHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if req.RefreshToken == "" {
		writeError(r.Context(), w, h.logger, common.Validation("refreshToken is required"))
		return
	}

	pair, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *authHandler) logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *authHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(r.Context(), w, h.logger, common.ErrorUnauthorized)
		return
	}

	var req passwordRequest
	if err := decode(r, &req); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeError(r.Context(), w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
