// Package services contains server-side business logic: refresh-token
// rotation (TokenService) and the login, refresh, logout and password flows
// built on it (AuthService).
package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/dbx"
	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// HashPassword hashes a password with bcrypt at the default cost.
func HashPassword(password string) ([]byte, error) {
	if len(password) < minPasswordLength {
		return nil, common.Validation("password must be at least %d characters", minPasswordLength)
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

// dummyHash is compared against when the user does not exist, so that
// unknown and known user names take the same time to reject.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

type AuthService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	logger      logging.Logger
}

func NewAuthService(db dbx.DBTX, m repomanager.RepositoryManager, tokens *TokenService, l logging.Logger) *AuthService {
	return &AuthService{db: db, repomanager: m, tokens: tokens, logger: l}
}

// CreateUser registers an account with a bcrypt-hashed password.
func (s *AuthService) CreateUser(ctx context.Context, userName, email, displayName, password string, roles []string) (*models.User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, common.Validation("user name is required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{UserName: userName, Email: email, DisplayName: displayName, PasswordHash: hash, Roles: roles}
	u.Stamp(common.SystemActor, s.tokens.now().UTC())
	u.IsActive = true

	if err := s.repomanager.Users(s.db).Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user created", "user_id", u.ID, "username", u.UserName)
	return u, nil
}

// Login verifies credentials, purges the user's dead refresh tokens and
// issues a new pair.
func (s *AuthService) Login(ctx context.Context, userName, password string) (*TokenPair, error) {
	user, err := s.repomanager.Users(s.db).GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, common.Unauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		s.logger.Info(ctx, "login rejected", "username", userName)
		return nil, common.Unauthorized("invalid credentials")
	}

	if err := s.tokens.RemoveAllExpiredOrRevokedTokens(ctx, user.ID); err != nil {
		return nil, err
	}
	return s.tokens.GenerateTokens(ctx, user)
}

// Refresh rotates a refresh token. Presenting a revoked token revokes every
// token of its owner.
func (s *AuthService) Refresh(ctx context.Context, value string) (*TokenPair, error) {
	t, err := s.tokens.GetRefreshToken(ctx, value)
	if err != nil {
		return nil, err
	}

	if t.IsRevoked() {
		s.logger.Warn(ctx, "revoked refresh token presented", "user_id", t.UserID, "token_id", t.ID)
		if err := s.tokens.RevokeAllUserRefreshTokens(ctx, t.UserID); err != nil {
			return nil, err
		}
		return nil, common.Unauthorized("refresh token has been revoked")
	}
	if t.IsExpired(s.tokens.now()) {
		return nil, common.Unauthorized("refresh token expired")
	}

	user, err := s.repomanager.Users(s.db).Find(ctx, t.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	if user.IsDeleted {
		return nil, common.Unauthorized("invalid refresh token")
	}

	if err := s.tokens.RevokeRefreshToken(ctx, t, ReasonReplaced); err != nil {
		return nil, err
	}
	return s.tokens.GenerateTokens(ctx, user)
}

// Logout revokes the presented refresh token. Unknown tokens are rejected;
// already revoked ones are accepted as is.
func (s *AuthService) Logout(ctx context.Context, value string) error {
	t, err := s.tokens.GetRefreshToken(ctx, value)
	if err != nil {
		return err
	}
	if t.IsRevoked() {
		return nil
	}
	return s.tokens.RevokeRefreshToken(ctx, t, ReasonLogout)
}

// ChangePassword replaces the password of userID after verifying the old
// one and revokes all of the user's refresh tokens.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repomanager.Users(s.db).Find(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.Unauthorized("unknown user")
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(oldPassword)); err != nil {
		return common.Unauthorized("invalid credentials")
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	at := s.tokens.now().UTC()
	var revoked int64
	err = dbx.InTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, userID, hash, userID, at); err != nil {
			return err
		}
		revoked, err = s.repomanager.RefreshTokens(tx).RevokeAllByUser(ctx, userID, ReasonPasswordChanged, at)
		return err
	})
	if err != nil {
		return err
	}
	s.tokens.metrics.TokensRevoked(ReasonPasswordChanged, int(revoked))
	s.logger.Info(ctx, "password changed", "user_id", userID, "revoked", revoked)
	return nil
}
