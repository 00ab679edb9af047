/*
errors.go - Centralized error types for the projection engine

PURPOSE:
  All engine error types in one place for consistency and discoverability.
  Store implementations wrap these with additional context.

ERROR CATEGORIES:
  1. Not-found markers - Missing snapshot lookups
  2. Persistence errors - Multi-step writes the store could not complete

PROPAGATION POLICY:
  Aggregation and calculation degrade to zero/unset when optional data is
  missing (no prior-year series for a stream, no override set). Only
  storage-layer failures propagate as hard errors; the failed atomic unit
  is rolled back and all stores stay in their pre-operation state. Read
  paths map not-found to empty/default results rather than errors.

USAGE:
    if errors.Is(err, projection.ErrReplaceFailed) { ... }

SEE ALSO:
  - store.go: Interfaces whose implementations return these
  - engine.go: Maps not-found to defaults on read paths
*/
package projection

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSnapshotNotFound marks the absence of a persisted snapshot.
	// Engine read paths translate it into zero-valued results.
	ErrSnapshotNotFound = errors.New("projection snapshot not found")

	// ErrReplaceFailed is returned when an atomic full-replace could not
	// complete. The prior contents remain intact.
	ErrReplaceFailed = errors.New("full replace failed")
)

// IsNotFound reports whether the error indicates a missing record rather
// than a storage failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}
