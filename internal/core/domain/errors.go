package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotInitialized indicates the engine was used before
	// initialization completed. Fatal to the calling request, not to
	// the process.
	ErrNotInitialized = errors.New("engine not initialized")

	// ErrInvalidInput indicates malformed or invalid caller input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyQuery indicates an empty or whitespace-only query or
	// description. Caller-fixable; reported before any external call.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrProvider indicates an embedding or completion call failed.
	// Surfaced to the caller; the core never retries.
	ErrProvider = errors.New("provider call failed")

	// ErrStore indicates the vector store is unreachable or a store
	// query failed. Surfaced, never masked as an empty result.
	ErrStore = errors.New("vector store failure")
)
