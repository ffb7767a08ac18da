package models

import "time"

// RefreshToken is the server-side record of an issued refresh token,
// keyed by its jti. A token is blacklisted once BlacklistedAt is set,
// and stays that way.
type RefreshToken struct {
	ID            string
	UserID        string
	ExpiresAt     time.Time
	CreatedAt     time.Time
	BlacklistedAt *time.Time
}

func (t *RefreshToken) Blacklisted() bool {
	return t.BlacklistedAt != nil
}
