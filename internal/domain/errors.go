// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates the entity already exists or was modified concurrently.
var ErrConflict = errors.New("conflict")

// ErrValidation indicates the request failed input validation.
var ErrValidation = errors.New("validation failed")

// ErrAccessDenied indicates the principal's organization scope does not cover
// the requested organization. This must surface as an explicit forbidden
// response, never as an empty result set.
var ErrAccessDenied = errors.New("access denied")
