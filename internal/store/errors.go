package store

import (
	"errors"
	"fmt"
)

// GatewayError represents a gateway invariant violation.
//
// These are distinct from plain storage errors (I/O, connectivity),
// which are wrapped and propagated as-is. Not-found is never an error:
// lookups return a nil result for absent rows.
type GatewayError struct {
	// Code identifies the error category.
	Code GatewayErrorCode

	// Message is a human-readable description.
	Message string

	// ShortID identifies the affected definition, when known.
	ShortID string

	// App and Env identify the affected binding pair, when known.
	App string
	Env string
}

// GatewayErrorCode categorizes gateway errors.
type GatewayErrorCode string

const (
	// ErrCodeShortIDCollision indicates a save whose short id is already
	// taken by a definition with different content. The existing row is
	// kept; the save is rejected.
	ErrCodeShortIDCollision GatewayErrorCode = "SHORT_ID_COLLISION"

	// ErrCodeConsistencyViolation indicates a stored definition whose
	// recomputed ids disagree with its storage key. Always fatal to the
	// read, never silently corrected.
	ErrCodeConsistencyViolation GatewayErrorCode = "CONSISTENCY_VIOLATION"

	// ErrCodeReferentialViolation indicates a bind naming a definition
	// id that does not exist in env_defs.
	ErrCodeReferentialViolation GatewayErrorCode = "REFERENTIAL_VIOLATION"
)

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.App != "" && e.Env != "" {
		return fmt.Sprintf("%s: %s (app=%s, env=%s)", e.Code, e.Message, e.App, e.Env)
	}
	if e.ShortID != "" {
		return fmt.Sprintf("%s: %s (id=%s)", e.Code, e.Message, e.ShortID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsShortIDCollision returns true if the error is a short id collision.
// Uses errors.As to handle wrapped errors.
func IsShortIDCollision(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeShortIDCollision
	}
	return false
}

// IsConsistencyViolation returns true if the error is a consistency violation.
func IsConsistencyViolation(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeConsistencyViolation
	}
	return false
}

// IsReferentialViolation returns true if the error is a referential violation.
func IsReferentialViolation(err error) bool {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Code == ErrCodeReferentialViolation
	}
	return false
}
