package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoSession indicates an operation needed an authenticated farmer but none is stored.
var ErrNoSession = errors.New("no active session")

// AuthKind enumerates why an authentication call failed.
type AuthKind string

const (
	InvalidCredentials AuthKind = "invalid_credentials"
	NetworkFailure     AuthKind = "network_failure"
)

// AuthError is returned by login, signup and session restore.
type AuthError struct {
	Kind AuthKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth: %s", e.Kind)
	}
	return fmt.Sprintf("auth: %s: %v", e.Kind, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// HTTPError is returned when the remote API answers with a non-2xx status.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// TransportError wraps network level failures: DNS, timeouts, connection resets, cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ValidationError reports a required form field left empty.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Required returns a ValidationError for the named field.
func Required(field string) error {
	return &ValidationError{Field: field}
}

// IsStatus reports whether err is an HTTPError carrying the given status code.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

// Message converts any error of the taxonomy into the single end-user text shown on screen.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var (
		authErr       *AuthError
		httpErr       *HTTPError
		transportErr  *TransportError
		validationErr *ValidationError
	)

	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf("Please fill in %s.", strings.ReplaceAll(validationErr.Field, "_", " "))
	case errors.As(err, &authErr):
		if authErr.Kind == NetworkFailure {
			return "Unable to reach the server. Check your connection and try again."
		}
		return "Invalid email or password."
	case errors.As(err, &transportErr):
		return "Unable to reach the server. Check your connection and try again."
	case errors.As(err, &httpErr):
		switch httpErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "Your session has expired. Please log in again."
		case http.StatusNotFound:
			return "The record no longer exists."
		case http.StatusConflict:
			return "A record with the same details already exists."
		}
		if httpErr.Status >= http.StatusInternalServerError {
			return "The server failed to process the request."
		}
		return "The request was rejected by the server."
	case errors.Is(err, ErrNoSession):
		return "Please log in to continue."
	default:
		return "Something went wrong."
	}
}
