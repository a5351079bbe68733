package domain

import "errors"

// Error kinds shared by the service layer and the HTTP boundary. Handlers map
// them to status codes with errors.Is; the wrapped message is user-facing.
var (
	// ErrValidation marks malformed or missing input.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound marks a reference to an entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden marks an actor that lacks rights over an existing entity.
	ErrForbidden = errors.New("forbidden")

	// ErrUnauthorized marks a missing actor where one is required.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidOperation marks a request that is well-typed but semantically
	// illegal, such as blocking yourself.
	ErrInvalidOperation = errors.New("invalid operation")

	// ErrConflict marks a duplicate of a uniqueness-constrained resource.
	ErrConflict = errors.New("conflict")
)
