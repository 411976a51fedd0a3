// Package auth issues and validates HS256 access tokens and carries the
// authenticated principal through request contexts.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/stockroom/internal/common"
	"github.com/dmitrijs2005/stockroom/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the registered claims plus the user's profile and roles.
type Claims struct {
	jwt.RegisteredClaims
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// UserID is the subject claim.
func (c *Claims) UserID() string { return c.Subject }

func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Options configures token issuance and validation.
type Options struct {
	SecretKey []byte
	Issuer    string
	Audience  string
	Validity  time.Duration
}

// GenerateToken signs an access token for user issued at now. It returns the
// token and its expiry.
func GenerateToken(user *models.User, opts Options, now time.Time) (string, time.Time, error) {
	expires := now.Add(opts.Validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    opts.Issuer,
			Audience:  jwt.ClaimStrings{opts.Audience},
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
		Name:  user.DisplayName,
		Email: user.Email,
		Roles: user.Roles,
	})

	tokenString, err := token.SignedString(opts.SecretKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expires, nil
}

// ParseToken validates signature, issuer, audience and expiry as of now.
// Any failure is reported as common.ErrorUnauthorized.
func ParseToken(tokenString string, opts Options, now time.Time) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return opts.SecretKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(opts.Issuer),
		jwt.WithAudience(opts.Audience),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.Wrap(err, common.KindUnauthorized, "access token expired")
		}
		return nil, common.Wrap(err, common.KindUnauthorized, "invalid access token")
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.Unauthorized("invalid access token")
	}

	return claims, nil
}

type claimsKey struct{}

// WithUser stores the authenticated claims in ctx.
func WithUser(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok && c != nil
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return "", false
	}
	return c.UserID(), true
}

// ActorFromContext names who performs a mutation, falling back to
// common.SystemActor for unauthenticated work.
func ActorFromContext(ctx context.Context) string {
	if id, ok := UserIDFromContext(ctx); ok {
		return id
	}
	return common.SystemActor
}
