package services

import "errors"

var (
	// ErrInvalidCredentials covers every login failure cause: unknown email,
	// wrong role, wrong password. Callers must not distinguish them, so an
	// attacker cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRequest is returned when a request fails validation before
	// touching the store.
	ErrInvalidRequest = errors.New("invalid request")
)
