// Package apperr defines the error classes shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrTokenMissing         = fmt.Errorf("%w: missing or malformed token", ErrAuthenticationFailed)
	ErrTokenExpired         = fmt.Errorf("%w: token expired", ErrAuthenticationFailed)
	ErrTokenInvalid         = fmt.Errorf("%w: invalid token", ErrAuthenticationFailed)

	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrConflict            = errors.New("conflict")
)

// Denial reasons reported to clients.
const (
	ReasonAccessDenied            = "access_denied"
	ReasonInsufficientPermissions = "insufficient_permissions"
)

// DeniedError is an authorization failure carrying the rule that rejected it.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	return "authorization denied: " + e.Reason
}

func (e *DeniedError) Unwrap() error {
	return ErrAuthorizationDenied
}

// Denied returns an authorization error with the given reason.
func Denied(reason string) error {
	return &DeniedError{Reason: reason}
}

// Reason extracts the denial reason, or "" when err is not a denial.
func Reason(err error) string {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied.Reason
	}
	return ""
}

// Validation wraps a message as a validation failure.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
