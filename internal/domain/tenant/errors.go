package tenant

import (
	"errors"
	"fmt"

	"github.com/fitstack/fitstack/internal/domain"
)

// ErrNoHost indicates the request carried no resolvable host header.
var ErrNoHost = errors.New("no host header")

// ErrSuspended indicates the tenant exists but is not active.
var ErrSuspended = errors.New("tenant suspended")

// NotFoundError indicates a host resolved to a slug with no directory record.
// It keeps the attempted slug for diagnostics and matches domain.ErrNotFound.
type NotFoundError struct {
	Slug string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tenant %q: %v", e.Slug, domain.ErrNotFound)
}

// Is makes the error match domain.ErrNotFound via errors.Is.
func (e *NotFoundError) Is(target error) bool {
	return target == domain.ErrNotFound
}
