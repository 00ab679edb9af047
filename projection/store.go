/*
store.go - Persistence interfaces

PURPOSE:
  Defines the storage contracts the engine depends on. Implementations:
  - projection/store: in-memory (testing/dev)
  - store/sqlite:     SQLite (production)

ATOMICITY CONTRACT:
  ReplaceConfig, ReplaceBase, and SaveSnapshot are each one atomic unit:
  either every sub-write lands or none do, and a failure leaves the prior
  contents intact. Locks are scoped to the duration of the unit and
  released on both success and failure paths. There is no versioning or
  optimistic-concurrency check at this layer; the Engine serializes
  writers above it.

FULL-REPLACE CONTRACT:
  ReplaceConfig and ReplaceBase replace the entire stored state of their
  collection. Anything omitted from the supplied value is deleted, not
  merged. This is deliberate (and dangerous on partial payloads); it is
  documented at the API boundary rather than "fixed" into a merge.

SEE ALSO:
  - engine.go: The single consumer of these interfaces
  - projection/store/memory.go, store/sqlite/sqlite.go: Implementations
*/
package projection

import "context"

// Store persists the projection engine's three collections.
type Store interface {
	// GetConfig returns the stored configuration. An empty configuration
	// is a valid result, not an error.
	GetConfig(ctx context.Context) (Config, error)

	// ReplaceConfig atomically deletes all existing streams/components
	// and inserts the supplied ones. Entries without an id are silently
	// skipped. A failure leaves the prior configuration intact.
	ReplaceConfig(ctx context.Context, cfg Config) error

	// GetBase returns growth, prior-year data, and manual overrides.
	GetBase(ctx context.Context) (BaseYear, error)

	// ReplaceBase atomically full-replaces growth, the flat series, each
	// stream/component series, and every override series. Series for ids
	// absent from the current configuration are still written (orphaned,
	// retained for later reactivation).
	ReplaceBase(ctx context.Context, base BaseYear) error

	// GetSnapshot returns the last persisted snapshot, or
	// ErrSnapshotNotFound when none has been written yet.
	GetSnapshot(ctx context.Context) (*Snapshot, error)

	// SaveSnapshot atomically replaces the persisted snapshot. A failure
	// during the write leaves the previous snapshot untouched.
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}

// TransactionSource is the read side of the transaction collaborator.
type TransactionSource interface {
	ListTransactionsByYear(ctx context.Context, year int) ([]Transaction, error)
}

// TransactionStore extends the source with writes, for implementations
// that also hold the application's transaction records.
type TransactionStore interface {
	TransactionSource
	SaveTransaction(ctx context.Context, tx Transaction) error
	ListTransactions(ctx context.Context, limit int) ([]Transaction, error)
}
