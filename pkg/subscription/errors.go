package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrMissingStoreID     = errors.New("eshtarek store id is not configured")
	ErrAlreadyInitialized = errors.New("eshtarek session already initialized")
	ErrSessionNotReady    = errors.New("eshtarek session is not ready")
	ErrInvalidResponse    = errors.New("invalid response from eshtarek backend")
	ErrInvalidPlan        = errors.New("invalid subscription plan")
	ErrNoCheckoutURL      = errors.New("no checkout URL returned from eshtarek backend")
	ErrRequestFailed      = errors.New("eshtarek request failed")
)

// StatusError reports a non-2xx response from the backend.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("eshtarek %s: unexpected status %d", e.Op, e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
