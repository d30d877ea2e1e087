package domain

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned by mutation operations invoked before the durable
// snapshot has been loaded. Persisting in that window would overwrite the
// user's saved portfolio with an empty in-memory default.
var ErrNotReady = errors.New("portfolio store is not ready")

// ValidationError reports malformed mutation input. It is returned
// synchronously, before any state change, so callers can surface a
// field-level message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
