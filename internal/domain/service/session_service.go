package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the identity claim embedded in a session token.
type SessionClaims struct {
	UserID uuid.UUID
	Email  string
	jwt.RegisteredClaims
}

// SessionService mints and verifies time-bounded, tamper-evident session
// tokens. A token is either valid or not; there is no partial validity, and
// no server-side state is kept, so a token stays valid until its natural
// expiry.
type SessionService interface {
	// Issue creates a signed session token for a verified identity.
	Issue(userID uuid.UUID, email string) (string, error)

	// Validate checks signature and expiry of a token string and recovers
	// the embedded claim. It fails with domainerrors.ErrSessionMissing,
	// ErrSessionExpired or ErrSessionInvalid; it never consults storage.
	Validate(tokenString string) (*SessionClaims, error)

	// TokenTTL returns the configured validity window of issued tokens.
	TokenTTL() time.Duration
}
