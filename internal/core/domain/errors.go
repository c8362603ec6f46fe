package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
	ErrNoSession          = errors.New("no active session")
	ErrUnknownRole        = errors.New("unknown role")
	ErrUserExists         = errors.New("user already exists")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrSaveInFlight       = errors.New("save already in progress")
	ErrEntityClosed       = errors.New("entity closed")
	ErrNotReady           = errors.New("entity still loading")
	ErrUploadInFlight     = errors.New("upload already in progress")
	ErrViewNotOpen        = errors.New("view not open")
)

// User-facing messages shared by every view.
const (
	MsgSessionExpired = "Your session expired. Please sign in again."
	MsgSaveFailed     = "Could not save profile. Please try again."
	MsgLoadFallback   = "Couldn't load your profile, using defaults. Fill in your details and save."
	MsgSaved          = "Profile saved."
	MsgReverted       = "Changes reverted."
	MsgAvatarUpdated  = "Avatar updated."
)

// AuthError reports invalid credentials or an expired session (HTTP 401).
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ValidationError is raised before any network call. Message names the
// failing field and rule and is safe to show to the user.
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NetworkError covers requests that did not complete: timeouts, connectivity
// and 5xx answers. Status is 0 when no response was received.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: backend returned %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is any other non-2xx backend answer.
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) and friends match on status.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == 404
	case ErrForbidden:
		return e.Status == 403
	case ErrUserExists:
		return e.Status == 409
	}
	return false
}

// UploadError reports a rejected or failed avatar upload.
type UploadError struct {
	Reason  string
	Message string
	Err     error
}

func (e *UploadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upload %s: %v", e.Reason, e.Err)
	}
	return "upload " + e.Reason + ": " + e.Message
}

func (e *UploadError) Unwrap() error { return e.Err }

// IsAuth reports whether err should terminate the session.
func IsAuth(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae) || errors.Is(err, ErrSessionExpired)
}

// UserMessage classifies err into the message a view shows after a failed save.
func UserMessage(err error) string {
	var ve *ValidationError
	var ue *UploadError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ue):
		return ue.Message
	case IsAuth(err):
		return MsgSessionExpired
	}
	return MsgSaveFailed
}
