package catalog

import "errors"

// Caller-visible, non-retryable logic errors. Handlers map these to
// HTTP status codes; services wrap them with context via fmt.Errorf
// and %w so errors.Is keeps working.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
	ErrInvalid   = errors.New("invalid")
)
