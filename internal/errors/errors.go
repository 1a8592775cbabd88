package errors

import (
	"errors"
	"fmt"
)

// Common error types for the simulator
var (
	// Credential store errors
	ErrUserNotFound   = errors.New("user not found")
	ErrClientNotFound = errors.New("client not found")

	// Ledger errors
	ErrCodeNotFound         = errors.New("authorization code not found")
	ErrAccessTokenNotFound  = errors.New("access token not found")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	// Token encoding errors
	ErrMalformedToken = errors.New("malformed token")

	// Client flow precondition errors
	ErrFlowNotStarted      = errors.New("authorization request not started")
	ErrNoAuthorizationCode = errors.New("no authorization code held")
	ErrNoAccessToken       = errors.New("no access token held")
	ErrNoRefreshToken      = errors.New("no refresh token held")
	ErrStateMismatch       = errors.New("state mismatch")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
