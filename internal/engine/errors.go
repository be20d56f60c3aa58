package engine

import "errors"

var (
	// ErrConflict indicates a conflict was detected during planning.
	ErrConflict = errors.New("conflict detected")

	// ErrValidation indicates a validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates a resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrVerification indicates the tree does not match the manifest.
	ErrVerification = errors.New("verification failed")
)
