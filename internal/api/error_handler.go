package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/carenet/portal/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps the portal's error taxonomy to HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, resp := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	var (
		ve *domain.ValidationError
		ue *domain.UploadError
		ne *domain.NetworkError
		ae *domain.APIError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, errorResponse{Error: ve.Message, Field: ve.Field}
	case errors.As(err, &ue):
		return http.StatusBadRequest, errorResponse{Error: ue.Message}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials"}
	case domain.IsAuth(err):
		return http.StatusUnauthorized, errorResponse{Error: domain.MsgSessionExpired}
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized, errorResponse{Error: "sign in required"}
	case errors.Is(err, domain.ErrUnknownRole):
		return http.StatusForbidden, errorResponse{Error: "account role is not supported"}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists"}
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrViewNotOpen):
		return http.StatusNotFound, errorResponse{Error: notFoundText(err)}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "access forbidden"}
	case errors.Is(err, domain.ErrSaveInFlight),
		errors.Is(err, domain.ErrUploadInFlight),
		errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrEntityClosed):
		return http.StatusConflict, errorResponse{Error: err.Error()}
	case errors.As(err, &ne):
		log.Warn().Err(err).Str("path", c.Path()).Msg("backend unavailable")
		return http.StatusBadGateway, errorResponse{Error: domain.MsgSaveFailed}
	case errors.As(err, &ae):
		code := ae.Status
		if code < 400 || code >= 500 {
			code = http.StatusBadRequest
		}
		return code, errorResponse{Error: ae.Message}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error"}
}

// notFoundText prefers the backend's message for a not-found answer.
func notFoundText(err error) string {
	var ae *domain.APIError
	if errors.As(err, &ae) && ae.Message != "" {
		return ae.Message
	}
	if errors.Is(err, domain.ErrViewNotOpen) {
		return "view not open"
	}
	return "not found"
}
