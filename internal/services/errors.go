package services

import "errors"

// Shared service-level sentinel errors. Handlers map these onto HTTP
// statuses; more specific sentinels live beside the service that owns them.
var (
	// ErrValidation marks rejected input: missing required fields,
	// quantities below one, unknown enum values.
	ErrValidation = errors.New("validation failed")

	// ErrUnknownClientKey is a validation failure for ticket/project writes
	// whose client_key does not resolve against the client directory.
	ErrUnknownClientKey = errors.New("unknown client_key")
)
