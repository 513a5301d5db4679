package models

import "errors"

// Error taxonomy surfaced to callers. Commands wrap these with detail; use
// errors.Is to classify.
var (
	// ErrNotFound means a referenced id is absent from the catalog.
	ErrNotFound = errors.New("not found")

	// ErrValidation means malformed or out-of-range input.
	ErrValidation = errors.New("validation failed")

	// ErrConflict means an optimistic write carried a stale version.
	ErrConflict = errors.New("version conflict")
)
