// ABOUTME: Typed errors for store and mirror operations.
// ABOUTME: Enables programmatic handling with errors.Is() and errors.As().
package tracker

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling.
var (
	ErrNoIdentity        = errors.New("identity not initialized")
	ErrRemoteUnavailable = errors.New("remote unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrServerError       = errors.New("server error")
)

// RemoteError wraps a mirror failure with operation context.
type RemoteError struct {
	Op         string // "list", "upsert", "delete", "subscribe"
	Collection string
	UserID     string
	Retries    int   // attempts made
	Err        error // underlying typed error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s failed after %d attempts: %v",
		e.Op, e.Collection, e.Retries, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// Retryable returns true if the error should trigger a retry.
// Network and server failures are retryable; auth errors are not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrServerError)
}
