// Package jwt implements generation and parsing of the bearer tokens
// issued after a successful login or OTP verification.
package jwt

import (
	"time"
)

// Maker describes the contract for issuing and parsing tokens.
type Maker interface {
	// GenerateToken issues a signed token for a user or admin id and role.
	GenerateToken(subjectID, role string) (string, error)
	// ParseToken validates a token and returns its claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl implements Maker with an HS256 secret key and a fixed TTL.
// Tokens carry no revocation state: they stay valid until expiry
// regardless of later account changes.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker creates a MakerImpl from the signing secret and TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
