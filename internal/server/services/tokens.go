package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/dbx"
	"github.com/dmitrijs2005/stockroom/internal/logging"
	"github.com/dmitrijs2005/stockroom/internal/server/auth"
	"github.com/dmitrijs2005/stockroom/internal/server/config"
	"github.com/dmitrijs2005/stockroom/internal/server/metrics"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/dmitrijs2005/stockroom/internal/server/repositories/repomanager"
)

const (
	// MaxRefreshTokensPerUser bounds the tokens a user holds. Issuing beyond
	// it evicts the token closest to expiry.
	MaxRefreshTokensPerUser = 5

	maxTokenAttempts = 10
	refreshTokenSize = 32
)

// Revocation reasons recorded on refresh tokens.
const (
	ReasonReplaced        = "replaced by new token"
	ReasonReuse           = "attempted reuse of a revoked token"
	ReasonLogout          = "logout"
	ReasonPasswordChanged = "password changed"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

// TokenService issues, looks up, revokes and purges refresh tokens and
// signs access tokens.
type TokenService struct {
	db              dbx.DBTX
	repomanager     repomanager.RepositoryManager
	opts            auth.Options
	refreshValidity time.Duration
	metrics         *metrics.Metrics
	logger          logging.Logger

	now      func() time.Time
	newToken func() (string, error)
}

func NewTokenService(db dbx.DBTX, m repomanager.RepositoryManager, cfg *config.Config, mt *metrics.Metrics, l logging.Logger) *TokenService {
	return &TokenService{
		db:          db,
		repomanager: m,
		opts: auth.Options{
			SecretKey: []byte(cfg.SecretKey),
			Issuer:    cfg.Issuer,
			Audience:  cfg.Audience,
			Validity:  cfg.AccessTokenValidityDuration,
		},
		refreshValidity: cfg.RefreshTokenValidityDuration,
		metrics:         mt,
		logger:          l,
		now:             time.Now,
		newToken:        func() (string, error) { return common.MakeRandHexString(refreshTokenSize) },
	}
}

// SetClock replaces the time source used for issuing and expiry checks.
func (s *TokenService) SetClock(now func() time.Time) { s.now = now }

// GenerateTokens signs an access token for user and stores a new refresh
// token. When the user already holds MaxRefreshTokensPerUser tokens the one
// with the earliest expiry is removed first. The cap is not enforced across
// concurrent calls.
func (s *TokenService) GenerateTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	now := s.now().UTC()

	access, accessExp, err := auth.GenerateToken(user, s.opts, now)
	if err != nil {
		s.logger.Error(ctx, "sign access token", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}

	repo := s.repomanager.RefreshTokens(s.db)

	value, err := s.uniqueToken(ctx)
	if err != nil {
		return nil, err
	}

	held, err := repo.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(held) >= MaxRefreshTokensPerUser {
		oldest := held[0]
		if err := repo.Delete(ctx, oldest.ID); err != nil {
			return nil, err
		}
		s.metrics.TokenEvicted()
		s.logger.Info(ctx, "refresh token evicted", "user_id", user.ID, "token_id", oldest.ID)
	}

	rt := &models.RefreshToken{UserID: user.ID, Token: value, ExpiresAt: now.Add(s.refreshValidity)}
	if err := repo.Create(ctx, rt); err != nil {
		return nil, err
	}
	s.metrics.TokenIssued()

	return &TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     rt.Token,
		RefreshExpiresAt: rt.ExpiresAt,
	}, nil
}

// uniqueToken draws random values until one is not already stored.
func (s *TokenService) uniqueToken(ctx context.Context) (string, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	for range maxTokenAttempts {
		v, err := s.newToken()
		if err != nil {
			return "", common.Wrap(err, common.KindInternal, "generate refresh token")
		}
		exists, err := repo.Exists(ctx, v)
		if err != nil {
			return "", err
		}
		if !exists {
			return v, nil
		}
	}
	s.logger.Error(ctx, "refresh token collisions exhausted attempts", "attempts", maxTokenAttempts)
	return "", &common.Error{Kind: common.KindInternal, Message: "could not generate a unique refresh token"}
}

// GetRefreshToken returns the stored token with exactly this value.
func (s *TokenService) GetRefreshToken(ctx context.Context, value string) (*models.RefreshToken, error) {
	t, err := s.repomanager.RefreshTokens(s.db).Find(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthorized("invalid refresh token")
		}
		return nil, err
	}
	return t, nil
}

// RevokeRefreshToken marks t revoked; the row is kept for reuse detection.
func (s *TokenService) RevokeRefreshToken(ctx context.Context, t *models.RefreshToken, reason string) error {
	at := s.now().UTC()
	if err := s.repomanager.RefreshTokens(s.db).Revoke(ctx, t.ID, reason, at); err != nil {
		return err
	}
	t.RevokedAt, t.RevokedReason = &at, &reason
	s.metrics.TokensRevoked(reason, 1)
	return nil
}

// RevokeAllUserRefreshTokens revokes every live token of the user. It is
// the response to a revoked token being presented again.
func (s *TokenService) RevokeAllUserRefreshTokens(ctx context.Context, userID string) error {
	return s.revokeAll(ctx, userID, ReasonReuse)
}

func (s *TokenService) revokeAll(ctx context.Context, userID, reason string) error {
	n, err := s.repomanager.RefreshTokens(s.db).RevokeAllByUser(ctx, userID, reason, s.now().UTC())
	if err != nil {
		return err
	}
	s.metrics.TokensRevoked(reason, int(n))
	s.logger.Warn(ctx, "refresh tokens revoked", "user_id", userID, "reason", reason, "count", n)
	return nil
}

// RemoveAllExpiredOrRevokedTokens deletes the user's dead tokens.
func (s *TokenService) RemoveAllExpiredOrRevokedTokens(ctx context.Context, userID string) error {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteExpiredOrRevoked(ctx, userID, s.now().UTC())
	if err != nil {
		return err
	}
	s.metrics.TokensPurged(int(n))
	return nil
}

// ValidateAccessToken returns the claims of a valid access token or
// common.ErrorUnauthorized.
func (s *TokenService) ValidateAccessToken(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.opts, s.now())
}
