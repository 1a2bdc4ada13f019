package core

import "errors"

var (
	// ErrInvalidArgument is returned when a caller violates a precondition: zero
	// reducers, an empty partition table, an unknown operation or hardware code,
	// or malformed persisted input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInternal is returned when a partition table invariant is found broken.
	// It signals a bug in the rebalancing arithmetic, never a user error.
	ErrInternal = errors.New("internal invariant violated")
)
