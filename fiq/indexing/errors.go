package indexing

import "errors"

var (
	// ErrUnindexable means the pattern has no literal run long enough to
	// query by trigram. Callers fall back to a full walk.
	ErrUnindexable = errors.New("pattern is not indexable")

	ErrMalformedPattern = errors.New("malformed pattern")
	ErrListingFailed    = errors.New("could not list directory")

	// Cache tier outcomes. These never escape the Manager.
	ErrNotFound = errors.New("index cache file not found")
	ErrCorrupt  = errors.New("index cache file is corrupt")
	ErrExpired  = errors.New("index cache file has expired")

	ErrPersistence = errors.New("index storage unavailable")
)
