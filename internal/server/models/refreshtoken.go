package models

import "time"

// RefreshToken is one issued rotating credential. Revoked tokens are kept
// until cleanup so that their reuse can be detected.
type RefreshToken struct {
	ID            string
	UserID        string
	Token         string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	RevokedAt     *time.Time
	RevokedReason *string
}

func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

func (t *RefreshToken) IsRevoked() bool {
	return t.RevokedAt != nil
}

func (t *RefreshToken) IsValid(now time.Time) bool {
	return !t.IsExpired(now) && !t.IsRevoked()
}
