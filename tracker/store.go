/*
store.go - Persistence interfaces for log entries and absences

PURPOSE:
  Contracts between the tracking service and the backing stores. Log entries
  and absences live in their own stores, independent of the statistics
  documents derived from them.

NOT-FOUND SEMANTICS:
  Lookups return stats.ErrNotFound for missing records; the whole system
  shares one error taxonomy (see stats/errors.go).

IMPLEMENTATIONS:
  - store/sqlite: production store
  - store/memory: in-memory store for tests

SEE ALSO:
  - service.go: orchestration keeping statistics in sync with these stores
*/
package tracker

import (
	"context"

	"github.com/warp/timetracker/model"
)

// EntryStore persists log entries.
type EntryStore interface {
	// CreateEntry inserts a new entry. The ID must already be assigned.
	CreateEntry(ctx context.Context, entry *model.LogEntry) error

	// GetEntry returns the entry or stats.ErrNotFound.
	GetEntry(ctx context.Context, id string) (*model.LogEntry, error)

	// ReplaceEntry overwrites an existing entry. stats.ErrNotFound if absent.
	ReplaceEntry(ctx context.Context, entry *model.LogEntry) error

	// DeleteEntry removes the entry. stats.ErrNotFound if absent.
	DeleteEntry(ctx context.Context, id string) error

	// EntriesByDate returns all entries for one calendar date.
	EntriesByDate(ctx context.Context, date string) ([]*model.LogEntry, error)

	// EntriesByYear returns all entries for one calendar year.
	// Feeds recalculation; the fold result is order-independent.
	EntriesByYear(ctx context.Context, year int) ([]*model.LogEntry, error)

	// FindEntries filters a year's entries by optional project and an
	// optional case-insensitive substring over the description.
	FindEntries(ctx context.Context, year int, project, query string) ([]*model.LogEntry, error)
}

// AbsenceStore persists per-day absence records.
type AbsenceStore interface {
	// UpsertAbsence creates or overwrites the record for its date.
	UpsertAbsence(ctx context.Context, absence *model.Absence) error

	// AbsencesByYear returns all absence records for one calendar year.
	// Feeds recalculation so rebuilt documents keep their absence flags.
	AbsencesByYear(ctx context.Context, year int) ([]*model.Absence, error)
}
