package repositories

import "errors"

var (
	// ErrDuplicateEmail is returned when an account with the same email
	// already exists.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrAccountNotFound is returned when no account matches the lookup key.
	ErrAccountNotFound = errors.New("account not found")
	// ErrStoreUnavailable is returned when the persistence layer cannot be
	// reached or rejects the operation for reasons other than a constraint.
	ErrStoreUnavailable = errors.New("account store unavailable")
)
