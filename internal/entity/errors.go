package entity

import "errors"

var (
	// ErrUnauthorized means no valid session where one is required.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound covers both a missing resource and a resource owned by
	// another user; callers must not be able to tell the two apart.
	ErrNotFound = errors.New("not found")
	// ErrStorage wraps database failures so callers can downgrade them to
	// a safe default instead of crashing the request.
	ErrStorage = errors.New("storage failure")
)
