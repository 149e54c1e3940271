package database

import "errors"

// Failure taxonomy shared by every backend. Callers match with errors.Is;
// the HTTP error handler maps each sentinel to a status code.
var (
	// ErrNotInitialized: an operation ran before Initialize() completed.
	ErrNotInitialized = errors.New("storage not initialized")

	// ErrQueryFailed: malformed statement, constraint violation, or a
	// statement issued against a backend without a statement interface.
	ErrQueryFailed = errors.New("query failed")

	// ErrNotFound: a referenced id is absent where the operation cannot
	// degrade to a silent no-op.
	ErrNotFound = errors.New("record not found")

	// ErrUnsupportedFormat: an import snapshot has an unrecognized or
	// version-incompatible encoding for the active backend.
	ErrUnsupportedFormat = errors.New("unsupported data format")

	// ErrInvalidAmount: a negative or non-numeric currency value reached a
	// fee or payment operation.
	ErrInvalidAmount = errors.New("invalid amount")
)
