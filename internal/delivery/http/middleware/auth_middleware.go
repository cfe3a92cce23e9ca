package middleware

import (
	"chatline/config"
	domainerrors "chatline/internal/domain/errors"
	"chatline/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// Context keys set by Authenticate for downstream handlers.
const (
	ContextKeyUserID = "userID"
	ContextKeyEmail  = "email"
)

// AuthMiddleware guards routes behind a valid session cookie.
type AuthMiddleware struct {
	sessionSvc service.SessionService
	cfg        *config.Config
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(sessionSvc service.SessionService, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{sessionSvc: sessionSvc, cfg: cfg}
}

// Authenticate validates the session cookie and stashes the caller's
// identity on the echo context. Missing, expired and tampered tokens all
// surface the same message to the client.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(m.cfg.Session.CookieName)
		if err != nil || cookie.Value == "" {
			return domainerrors.ErrSessionMissing
		}

		claims, err := m.sessionSvc.Validate(cookie.Value)
		if err != nil {
			return err
		}

		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyEmail, claims.Email)

		return next(c)
	}
}
