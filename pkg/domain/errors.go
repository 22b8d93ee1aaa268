package domain

import "errors"

// Error taxonomy shared by the engine and its stores.
var (
	// ErrStructuralViolation marks operations on a container that has not been
	// initialized or registered. It is a caller bug.
	ErrStructuralViolation = errors.New("inventory: structural violation")
	// ErrCapacityExceeded is returned when every slot of a container is occupied.
	ErrCapacityExceeded = errors.New("inventory: capacity exceeded")
	// ErrFilterRejected is returned when the filter chain refuses an item.
	ErrFilterRejected = errors.New("inventory: rejected by filter")
	// ErrDisabled is returned when the container is administratively disabled.
	ErrDisabled = errors.New("inventory: container disabled")
	// ErrEmpty is returned when removing from a container holding no items.
	ErrEmpty = errors.New("inventory: container empty")
	// ErrLookupMiss is returned when the object factory does not know a type id.
	ErrLookupMiss = errors.New("inventory: unknown type id")
	// ErrRollbackFailure marks a transfer whose item could be returned to
	// neither container.
	ErrRollbackFailure = errors.New("inventory: transfer rollback failed")
	// ErrNotFound is returned by stores when a key holds no payload.
	ErrNotFound = errors.New("inventory: not found")
)
