package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Handlers wrap these so the transport layer can decide whether a failed
// event is retryable without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
)
