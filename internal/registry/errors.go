package registry

import (
	"errors"
	"fmt"
)

// ErrClosed indicates the registry has been shut down.
var ErrClosed = errors.New("connection registry closed")

// InvalidNameError indicates a requested database name does not match the
// tenant database naming convention. This is a programmer or configuration
// error and is never expected in normal operation.
type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid tenant database name %q", e.Name)
}

// UnavailableError indicates connection establishment to a database failed.
// Retryable: the failure is never cached, so a later call attempts a fresh
// connection.
type UnavailableError struct {
	Database string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("database %s unavailable: %v", e.Database, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}
