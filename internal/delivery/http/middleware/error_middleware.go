package middleware

import (
	"log/slog"
	"net/http"

	"chatline/internal/delivery/http/response"
	domainerrors "chatline/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ErrorMiddleware error handling middleware
type ErrorMiddleware struct {
	logger *slog.Logger
}

// NewErrorMiddleware creates a new error handling middleware
func NewErrorMiddleware(logger *slog.Logger) *ErrorMiddleware {
	return &ErrorMiddleware{
		logger: logger,
	}
}

// HandleHTTPError handles errors as Echo's HTTPErrorHandler
func (m *ErrorMiddleware) HandleHTTPError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	// Try to parse as AppError
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPCode(), response.Response{
			Success: false,
			Code:    appErr.HTTPCode(),
			Message: appErr.Message(),
			Error: &response.ErrorInfo{
				Code:    m.clientErrorCode(err, appErr, c),
				Details: appErr.Details(),
			},
		})
		return
	}

	// Check if it's Echo's HTTPError
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg, _ := httpErr.Message.(string)
		c.JSON(httpErr.Code, response.Response{
			Success: false,
			Code:    httpErr.Code,
			Message: msg,
			Error: &response.ErrorInfo{
				Code:    "HTTP_ERROR",
				Details: msg,
			},
		})
		return
	}

	// Default to internal error, log error and return generic error
	m.logger.Error("Unhandled error",
		"error", err.Error(),
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
	)

	c.JSON(http.StatusInternalServerError, response.Response{
		Success: false,
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		Error: &response.ErrorInfo{
			Code: "INTERNAL_ERROR",
		},
	})
}

// clientErrorCode decides which business code a client may see. The three
// session failures stay distinct in the logs but render as one code, so the
// response body cannot reveal whether a cookie was absent, expired or
// tampered with.
func (m *ErrorMiddleware) clientErrorCode(err error, appErr domainerrors.AppError, c echo.Context) string {
	switch {
	case errors.Is(err, domainerrors.ErrSessionMissing),
		errors.Is(err, domainerrors.ErrSessionExpired),
		errors.Is(err, domainerrors.ErrSessionInvalid):
		m.logger.Warn("Session rejected",
			"code", appErr.ErrorCode(),
			"path", c.Request().URL.Path,
			"method", c.Request().Method,
		)

		return domainerrors.ErrSessionExpired.ErrorCode()
	default:
		return appErr.ErrorCode()
	}
}
