// Package usecase implements the business logic for the registration feature.
package usecase

import "errors"

var (
	// ErrEmailTaken is returned when the submitted email already belongs to a user.
	ErrEmailTaken = errors.New("email already registered")

	// ErrUsernameTaken is returned when the submitted username already belongs to a user.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrDuplicateUser is returned by the repository when the insert hit a
	// unique constraint but the colliding column is not known. The workflow
	// re-checks after rollback and narrows it to ErrEmailTaken or
	// ErrUsernameTaken where possible.
	ErrDuplicateUser = errors.New("duplicate email or username")

	// ErrUserNotFound is returned when a user cannot be found by ID.
	ErrUserNotFound = errors.New("user not found")
)
