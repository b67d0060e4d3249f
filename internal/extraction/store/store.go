// Package store persists extraction records, one per ticker, section and
// fiscal year.
package store

import (
	"sectracker/internal/extraction"
	dErrors "sectracker/pkg/domain-errors"
)

// ErrNotFound keeps store-specific 404s consistent across the in-memory and
// postgres implementations.
var ErrNotFound = dErrors.New(dErrors.CodeNotFound, "extraction not found")

// Store is declared on the consumer side in package extraction; the alias
// keeps the store-side name usable without the circular import.
type Store = extraction.Store
