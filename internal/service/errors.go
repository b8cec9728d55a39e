package service

import "errors"

var (
	// ErrInvalidInput marks request validation failures. Handlers map it to
	// a 400 response.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden marks access to another user's resources. Handlers map
	// it to a 404 so resource existence is not leaked.
	ErrForbidden = errors.New("resource belongs to another user")
)
