package service

import "errors"

// The service layer speaks in a small, closed error taxonomy so the HTTP
// layer can map outcomes to status codes with errors.Is instead of string
// matching. Store failures are wrapped in ErrStoreUnavailable with the
// cause preserved; retrying is the caller's decision, never ours.
var (
	// ErrInvalidInput covers malformed caller arguments, most commonly a
	// raw URL the normalizer rejected.
	ErrInvalidInput = errors.New("invalid input")

	// ErrGroupNotFound means the referenced access group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrNotFound means the requested entity is absent from the store.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable wraps transient store failures; safe for the
	// caller to retry with backoff.
	ErrStoreUnavailable = errors.New("store unavailable")
)
