package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the log retrieval engine.
var (
	// ErrUnauthenticated means no valid session backs the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrStoreUnavailable means the storage engine was unreachable or timed out.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidScope means a tenant, group or actor identifier was malformed.
	ErrInvalidScope = errors.New("invalid scope")

	// ErrInvalidFilter means a caller-supplied narrowing filter was malformed.
	ErrInvalidFilter = errors.New("invalid filter")
)

// InvalidScopeError returns an ErrInvalidScope naming the offending field.
func InvalidScopeError(field, value string) error {
	return fmt.Errorf("%w: %s %q is not a valid identifier", ErrInvalidScope, field, value)
}

// InvalidFilterError returns an ErrInvalidFilter naming the offending filter.
func InvalidFilterError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidFilter, field, reason)
}
