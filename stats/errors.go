/*
errors.go - Error taxonomy for the statistics engine and its stores

PURPOSE:
  Sentinel errors shared by the statistics service and every store
  implementation. Expected outcomes (document absent, stale revision) are
  modeled as values, never as panics or special-cased status handling.

ERROR CATEGORIES:
  1. ErrNotFound       - document/record absent; normal for reads
  2. ErrConflict       - conditional write lost against a concurrent writer
  3. ErrInitialization - store unreachable or misconfigured; fatal, not retried

USAGE:
  doc, rev, err := store.Get(ctx, key)
  if errors.Is(err, stats.ErrNotFound) {
      // lazily create
  }
*/
package stats

import "errors"

var (
	// ErrNotFound is returned when a document or record does not exist.
	// For statistics reads this signals empty-or-never-computed state, not a
	// zero document: absence may also mean the statistics drifted out of sync.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a conditional write was based on a stale
	// read. The caller must re-read, re-apply its delta, and write again.
	ErrConflict = errors.New("concurrent modification detected")

	// ErrInitialization is returned when the backing store cannot be reached
	// or is misconfigured. Never retried.
	ErrInitialization = errors.New("store initialization failed")
)

// IsRetryable reports whether the operation might succeed if repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsNotFound reports whether the error indicates a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
