package store

import "errors"

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested queue item does not exist
	// in the store. Status updates against a missing item surface this so
	// callers can decide whether absence is a problem; deletes treat
	// absence as success.
	ErrNotFound = errors.New("queue item not found")

	// ErrUpdateFailed is returned when a status transition fails for a
	// reason other than the item being missing.
	ErrUpdateFailed = errors.New("queue item update failed")

	// ErrSubscriptionClosed is returned when the change subscription has
	// terminated and no further events will be delivered.
	ErrSubscriptionClosed = errors.New("queue subscription closed")
)
