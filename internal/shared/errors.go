package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors. Anything wrapping ErrAuth ends the run.
	ErrAuth             = fmt.Errorf("authentication error")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired or invalid")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")
	ErrStateMismatch    = fmt.Errorf("state_mismatch")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrWrite      = fmt.Errorf("playlist write failed")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// IsFatal reports whether err belongs to the authentication class that terminates a run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAuth)
}
