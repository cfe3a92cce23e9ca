package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"chatline/config"
	domainerrors "chatline/internal/domain/errors"
	"chatline/internal/domain/service"
	mockService "chatline/internal/mocks/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Session: &config.SessionConfig{
			Secret:     "test-secret",
			TTL:        time.Hour,
			CookieName: "session",
		},
	}
}

func invokeAuth(t *testing.T, m *AuthMiddleware, cookie *http.Cookie) (echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return nil }

	return c, m.Authenticate(next)(c)
}

func TestAuthMiddleware_ValidCookie(t *testing.T) {
	sessionSvc := mockService.NewMockSessionService(t)
	userID := uuid.New()
	sessionSvc.On("Validate", "good-token").Return(&service.SessionClaims{
		UserID: userID,
		Email:  "alice@example.com",
	}, nil)

	m := NewAuthMiddleware(sessionSvc, testConfig())

	c, err := invokeAuth(t, m, &http.Cookie{Name: "session", Value: "good-token"})

	require.NoError(t, err)
	assert.Equal(t, userID, c.Get(ContextKeyUserID))
	assert.Equal(t, "alice@example.com", c.Get(ContextKeyEmail))
}

func TestAuthMiddleware_MissingCookie(t *testing.T) {
	sessionSvc := mockService.NewMockSessionService(t)
	m := NewAuthMiddleware(sessionSvc, testConfig())

	c, err := invokeAuth(t, m, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionMissing))
	assert.Nil(t, c.Get(ContextKeyUserID))
	sessionSvc.AssertNotCalled(t, "Validate")
}

func TestAuthMiddleware_EmptyCookie(t *testing.T) {
	sessionSvc := mockService.NewMockSessionService(t)
	m := NewAuthMiddleware(sessionSvc, testConfig())

	_, err := invokeAuth(t, m, &http.Cookie{Name: "session", Value: ""})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionMissing))
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	sessionSvc := mockService.NewMockSessionService(t)
	sessionSvc.On("Validate", "bad-token").
		Return(nil, errors.Wrap(domainerrors.ErrSessionInvalid, "signature is invalid"))

	m := NewAuthMiddleware(sessionSvc, testConfig())

	c, err := invokeAuth(t, m, &http.Cookie{Name: "session", Value: "bad-token"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionInvalid))
	assert.Nil(t, c.Get(ContextKeyUserID))
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	sessionSvc := mockService.NewMockSessionService(t)
	sessionSvc.On("Validate", "stale-token").
		Return(nil, errors.Wrap(domainerrors.ErrSessionExpired, "session token past expiry"))

	m := NewAuthMiddleware(sessionSvc, testConfig())

	_, err := invokeAuth(t, m, &http.Cookie{Name: "session", Value: "stale-token"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrSessionExpired))
}

// All session failures carry the same user-facing message so a client cannot
// tell a missing cookie from a tampered or expired one.
func TestAuthMiddleware_FailuresShareOneMessage(t *testing.T) {
	sessionSvc := mockService.NewMockSessionService(t)
	sessionSvc.On("Validate", "bad-token").
		Return(nil, errors.Wrap(domainerrors.ErrSessionInvalid, "signature is invalid"))
	sessionSvc.On("Validate", "stale-token").
		Return(nil, errors.Wrap(domainerrors.ErrSessionExpired, "session token past expiry"))

	m := NewAuthMiddleware(sessionSvc, testConfig())

	_, missingErr := invokeAuth(t, m, nil)
	_, invalidErr := invokeAuth(t, m, &http.Cookie{Name: "session", Value: "bad-token"})
	_, expiredErr := invokeAuth(t, m, &http.Cookie{Name: "session", Value: "stale-token"})

	var missing, invalid, expired domainerrors.AppError
	require.True(t, errors.As(missingErr, &missing))
	require.True(t, errors.As(invalidErr, &invalid))
	require.True(t, errors.As(expiredErr, &expired))

	assert.Equal(t, http.StatusUnauthorized, missing.HTTPCode())
	assert.Equal(t, http.StatusUnauthorized, invalid.HTTPCode())
	assert.Equal(t, http.StatusUnauthorized, expired.HTTPCode())
	assert.Equal(t, missing.Message(), invalid.Message())
	assert.Equal(t, missing.Message(), expired.Message())

	// The rendered bodies must be byte-identical too: the distinct business
	// codes are for logging only and must never reach the wire.
	errorMw := NewErrorMiddleware(slog.New(slog.NewTextHandler(io.Discard, nil)))
	renderBody := func(err error) string {
		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/profile", nil)
		rec := httptest.NewRecorder()
		errorMw.HandleHTTPError(err, e.NewContext(req, rec))

		return rec.Body.String()
	}

	missingBody := renderBody(missingErr)
	assert.Equal(t, missingBody, renderBody(invalidErr))
	assert.Equal(t, missingBody, renderBody(expiredErr))
	assert.NotContains(t, missingBody, "SESSION_MISSING")
	assert.NotContains(t, missingBody, "SESSION_INVALID")
}
