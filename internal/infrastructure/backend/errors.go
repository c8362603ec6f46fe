package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/carenet/portal/internal/core/domain"
)

// ErrTimeout marks a NetworkError caused by the client timeout.
var ErrTimeout = errors.New("request timed out")

func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if isTimeout(err) {
		return &domain.NetworkError{Op: op, Err: errors.Join(ErrTimeout, err)}
	}
	return &domain.NetworkError{Op: op, Err: err}
}

// statusError maps a non-2xx answer onto the domain taxonomy.
func statusError(op string, status int, body []byte, authOp bool) error {
	msg := errorMessage(status, body)
	switch {
	case status == http.StatusUnauthorized:
		if authOp {
			return &domain.AuthError{Op: op, Err: domain.ErrInvalidCredentials}
		}
		return &domain.AuthError{Op: op, Err: domain.ErrSessionExpired}
	case status == http.StatusForbidden && authOp:
		return &domain.AuthError{Op: op, Err: domain.ErrInvalidCredentials}
	case status >= 500:
		return &domain.NetworkError{Op: op, Status: status, Err: errors.New(msg)}
	}
	return &domain.APIError{Op: op, Status: status, Message: msg}
}

// errorMessage pulls a human message out of an error body: a JSON message or
// error field, else the trimmed text, else the status text.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(status)
}
