package api

import (
	"fmt"
)

// Kind is the closed classification of authentication-layer failures.
type Kind string

const (
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindRateLimitExceeded  Kind = "RATE_LIMIT_EXCEEDED"
	KindNetworkError       Kind = "NETWORK_ERROR"
	KindInvalidToken       Kind = "INVALID_TOKEN"
	KindUnknown            Kind = "UNKNOWN"
)

// Error is the normalized shape of an HTTP failure, extracted at the
// boundary so callers never pattern-match on transport-library types.
// Status is zero when no response was received.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("api: %s", e.Message)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// AuthError pairs a taxonomy code with a user-facing message.
type AuthError struct {
	Code    Kind
	Message string
}

// Classify maps an error observed at the HTTP boundary onto the closed
// taxonomy. Transport-level failures (no response) become NETWORK_ERROR;
// a 401 is INVALID_CREDENTIALS in the login context — session checks remap
// it to INVALID_TOKEN at the call site.
func Classify(err error) AuthError {
	var apiErr *Error
	if !asError(err, &apiErr) {
		return AuthError{Code: KindNetworkError, Message: "Network error. Please check your connection"}
	}

	switch {
	case apiErr.Status == 401:
		return AuthError{Code: KindInvalidCredentials, Message: "Invalid email or password"}
	case apiErr.Status == 429:
		return AuthError{Code: KindRateLimitExceeded, Message: "Too many login attempts. Please try again later"}
	case apiErr.Status == 0:
		return AuthError{Code: KindNetworkError, Message: "Network error. Please check your connection"}
	default:
		return AuthError{Code: KindUnknown, Message: "An unexpected error occurred"}
	}
}

// IsStatus reports whether err is an API error with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return asError(err, &apiErr) && apiErr.Status == status
}
