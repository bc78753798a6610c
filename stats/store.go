/*
store.go - Persistence interface for statistics documents

PURPOSE:
  Defines the contract between the synchronization protocol and the document
  store. The interface models the three outcomes a caller has to distinguish
  explicitly - found, not found, conflict - instead of hiding them behind
  status-code control flow.

OPTIMISTIC CONCURRENCY:
  Every read returns a Revision. Replace is conditional on that revision and
  fails with ErrConflict when another writer got there first; Create fails
  with ErrConflict when the document already exists. The service retries the
  whole read-apply-write cycle on conflict. Without this, concurrent writers
  to the same year silently lose updates.

IMPLEMENTATIONS:
  - store/sqlite: production store, revision column + conditional UPDATE
  - store/memory: in-memory store for tests

SEE ALSO:
  - service.go: the retry loop driving this interface
  - errors.go:  ErrNotFound / ErrConflict / ErrInitialization
*/
package stats

import "context"

// Revision is the optimistic-concurrency token attached to a stored
// document. A Replace conditioned on a stale revision fails with ErrConflict.
type Revision int64

// DocumentStore persists YearDocuments keyed by their deterministic id.
// Implementations must not retain references into a stored document's maps;
// Get must return a copy the caller may mutate freely.
type DocumentStore interface {
	// Get returns the document and its current revision.
	// Returns ErrNotFound when no document exists for the key.
	Get(ctx context.Context, key string) (*YearDocument, Revision, error)

	// Create inserts a new document. Returns ErrConflict if the key exists.
	Create(ctx context.Context, doc *YearDocument) (Revision, error)

	// Replace overwrites the document iff rev matches the stored revision.
	// Returns ErrConflict on a stale revision or a vanished document.
	Replace(ctx context.Context, doc *YearDocument, rev Revision) (Revision, error)

	// Delete removes the document. Returns ErrNotFound when absent.
	Delete(ctx context.Context, key string) error
}
