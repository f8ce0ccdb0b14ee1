package user

import "errors"

var (
	// ErrNotFound is returned when no user exists with the requested id.
	ErrNotFound = errors.New("user not found")

	// ErrEmailExists is returned when a create or update would leave two
	// users with the same email.
	ErrEmailExists = errors.New("email already exists")
)
