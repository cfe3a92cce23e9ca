// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"chatline/config"
	domainerrors "chatline/internal/domain/errors"
	"chatline/internal/domain/service"
)

// jwtSessionService implements the SessionService interface using HS256 JWTs.
// Tokens are self-contained: validation needs only the signing secret, never
// a storage round trip.
type jwtSessionService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTSessionService is the constructor for jwtSessionService. A missing
// signing secret is a configuration error and fails process startup; it is
// never surfaced per-request.
func NewJWTSessionService(cfg *config.Config) (service.SessionService, error) {
	if cfg == nil || cfg.Session == nil || cfg.Session.Secret == "" {
		return nil, errors.New("session signing secret must be provided")
	}

	return &jwtSessionService{
		secret: []byte(cfg.Session.Secret),
		ttl:    cfg.Session.TTL,
		now:    time.Now,
	}, nil
}

// NewJWTSessionServiceWithClock builds a session service with an injected
// clock so expiry behaviour can be tested without waiting out the TTL.
func NewJWTSessionServiceWithClock(secret string, ttl time.Duration, now func() time.Time) (service.SessionService, error) {
	if secret == "" {
		return nil, errors.New("session signing secret must be provided")
	}

	return &jwtSessionService{secret: []byte(secret), ttl: ttl, now: now}, nil
}

// Issue creates a signed session token carrying the identity claim.
func (s *jwtSessionService) Issue(userID uuid.UUID, email string) (string, error) {
	issuedAt := s.now()
	claims := jwt.MapClaims{
		"sub":   userID.String(),            // Subject (who the token is for)
		"email": email,                      // Identity claim for downstream collaborators
		"iat":   issuedAt.Unix(),            // Issued At
		"exp":   issuedAt.Add(s.ttl).Unix(), // Expiration Time
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session token")
	}

	return signed, nil
}

// Validate checks the signature and validity window of a token string and
// recovers the identity claim. Expiry and tampering map to distinct domain
// errors for logging; the delivery layer collapses them for clients.
func (s *jwtSessionService) Validate(tokenString string) (*service.SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.Wrap(domainerrors.ErrSessionMissing, "no session token presented")
	}

	parsed, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithStrictDecoding())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.Wrap(domainerrors.ErrSessionExpired, "session token past expiry")
		}

		return nil, errors.Wrap(domainerrors.ErrSessionInvalid, err.Error())
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.Wrap(domainerrors.ErrSessionInvalid, "failed to parse token claims")
	}

	subject, ok := claims["sub"].(string)
	if !ok {
		return nil, errors.Wrap(domainerrors.ErrSessionInvalid, "subject missing from token")
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrSessionInvalid, "invalid subject format in token")
	}

	email, _ := claims["email"].(string)

	sessionClaims := &service.SessionClaims{
		UserID: userID,
		Email:  email,
	}
	if exp, expErr := claims.GetExpirationTime(); expErr == nil && exp != nil {
		sessionClaims.ExpiresAt = exp
	}
	if iat, iatErr := claims.GetIssuedAt(); iatErr == nil && iat != nil {
		sessionClaims.IssuedAt = iat
	}

	return sessionClaims, nil
}

// TokenTTL returns the configured validity window for issued tokens.
func (s *jwtSessionService) TokenTTL() time.Duration {
	return s.ttl
}
