package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Firmaboard client
var (
	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Onboarding errors
	ErrStepInvalid      = errors.New("step validation failed")
	ErrAccountConflict  = errors.New("account already exists")
	ErrSubmitFromMidway = errors.New("submit is only valid from the final step")

	// Google sign-in errors
	ErrNoIDToken     = errors.New("no ID token in provider response")
	ErrStateMismatch = errors.New("state parameter mismatch")
	ErrNonceMismatch = errors.New("nonce mismatch")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
