package domain

import "time"

// BlacklistedToken records a revoked bearer token until its natural expiry.
// Rows past ExpiresAt are logically inert; no purge job exists.
type BlacklistedToken struct {
	ID        int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
