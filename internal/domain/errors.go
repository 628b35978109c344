package domain

import "errors"

var (
	// ErrInvalidParameters is returned for caller input that violates protocol limits.
	// Nothing is sent over the network when it is returned.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrUnrecognizedValue marks a wire byte that maps to no known enum variant.
	ErrUnrecognizedValue = errors.New("unrecognized value")
)
