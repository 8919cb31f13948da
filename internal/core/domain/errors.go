package domain

import "errors"

// Domain errors represent pipeline failures.
// Adapters wrap these with operation context so callers can both
// log the underlying cause and classify the failure with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, such as an
	// empty question or a chunk overlap not smaller than the chunk size.
	ErrInvalidInput = errors.New("invalid input")

	// ErrFetch indicates the document download failed: a non-success
	// HTTP status or a network failure. Never retried automatically.
	ErrFetch = errors.New("document fetch failed")

	// ErrParse indicates the downloaded bytes could not be decoded
	// into pages of text.
	ErrParse = errors.New("document parse failed")

	// ErrEmbedding indicates the embedding provider failed, returned a
	// mismatched count, a wrong-dimension vector, or non-finite values.
	// Callers must treat this as pipeline failure; there is no silent
	// fallback vector.
	ErrEmbedding = errors.New("embedding failed")

	// ErrStorage indicates an upsert or query against the document
	// store failed. A chunk replacement is all-or-nothing, so this
	// never implies a partially committed batch.
	ErrStorage = errors.New("storage operation failed")
)
