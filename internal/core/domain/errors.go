package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors and are mapped to HTTP
// statuses only at the API boundary.
var (
	// ErrValidation indicates malformed or invalid input.
	// User-correctable; mapped to 400.
	ErrValidation = errors.New("validation failed")

	// ErrNotReady indicates the vector index has no documents yet.
	// The caller should retry after uploading bylaws; mapped to 503.
	ErrNotReady = errors.New("knowledge base not ready")

	// ErrIngestion indicates extraction or embedding failed while
	// indexing an upload. No partial index entries remain; the admin
	// may retry by re-uploading.
	ErrIngestion = errors.New("ingestion failed")

	// ErrProvider indicates an external LLM or embedding call failed.
	// Surfaced as a generic failure, never retried automatically.
	ErrProvider = errors.New("provider call failed")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
