/*
service.go - Statistics synchronization protocol

PURPOSE:
  Keeps the per-year statistics document consistent with the mutable entry
  store. Every entry mutation (add/update/delete) runs one read-modify-write
  cycle against the document store; the same discipline applies absence flag
  updates to the shared days map.

CONSISTENCY MODEL:
  - No cross-store transaction: the entry write and the statistics write are
    independent. Drift is possible and is repaired by RecalculateForYear.
  - Cross-request races on one year are resolved by the store's conditional
    writes: a stale write returns ErrConflict and the whole cycle is retried
    (bounded) after a fresh read.
  - A missing document on the update path is an inconsistency: it is logged
    and repaired by overwriting with the new value's contribution alone. The
    old value was never aggregated, so it must not be retracted.
  - Deleting an entry whose year has no document is a logged no-op.

RECALCULATION:
  Delete-then-recreate is the authoritative repair path. If the create fails
  after the delete, the year is left absent - a safe, detectable state -
  never half-written.

SEE ALSO:
  - document.go: the aggregate the protocol maintains
  - store.go:    the three-way store contract
*/
package stats

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/warp/timetracker/model"
)

// maxRetries bounds the read-apply-write attempts on ErrConflict.
const maxRetries = 3

// Service applies entry-store mutations to the per-year statistics document.
type Service struct {
	store DocumentStore
	log   *zap.Logger
}

// NewService creates a statistics service over the given document store.
func NewService(store DocumentStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// =============================================================================
// SYNCHRONIZATION PROTOCOL
// =============================================================================

// AddLogEntry applies a newly created entry to its year's document,
// creating the document lazily when the year has no statistics yet.
func (s *Service) AddLogEntry(ctx context.Context, entry *model.LogEntry) (*YearDocument, error) {
	doc, err := s.mutate(ctx, entry.Year, func(doc *YearDocument) {
		doc.AddLogEntry(entry)
	})
	if err != nil {
		return nil, fmt.Errorf("add log entry to statistics for %d: %w", entry.Year, err)
	}
	return doc, nil
}

// DeleteLogEntry retracts a deleted entry from its year's document. A year
// without a document is treated as already consistent: logged, no-op.
func (s *Service) DeleteLogEntry(ctx context.Context, entry *model.LogEntry) (*YearDocument, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		doc, rev, err := s.store.Get(ctx, Key(entry.Year))
		if errors.Is(err, ErrNotFound) {
			s.log.Info("no statistics for year, nothing to retract", zap.Int("year", entry.Year))
			return NewYearDocument(entry.Year), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read statistics for %d: %w", entry.Year, err)
		}

		doc.RemoveLogEntry(entry)
		if _, err := s.store.Replace(ctx, doc, rev); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, fmt.Errorf("write statistics for %d: %w", entry.Year, err)
		}
		s.log.Info("statistics updated", zap.Int("year", entry.Year))
		return doc, nil
	}
	return nil, fmt.Errorf("delete log entry from statistics for %d: %w", entry.Year, ErrConflict)
}

// UpdateLogEntry moves the statistics contribution from oldValue to newValue.
// A year change runs as two independent cycles: retract from the old year,
// apply to the new year.
func (s *Service) UpdateLogEntry(ctx context.Context, oldValue, newValue *model.LogEntry) (*YearDocument, error) {
	if oldValue.Year != newValue.Year {
		if _, err := s.DeleteLogEntry(ctx, oldValue); err != nil {
			return nil, err
		}
		return s.AddLogEntry(ctx, newValue)
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		doc, rev, err := s.store.Get(ctx, Key(newValue.Year))
		if errors.Is(err, ErrNotFound) {
			// The entry existed but its statistics did not: statistics have
			// drifted. Repair by overwriting with the new contribution alone;
			// the old value was never aggregated.
			s.log.Warn("statistics missing for existing entry, repairing",
				zap.Int("year", newValue.Year), zap.String("entry", newValue.ID))

			doc = NewYearDocument(newValue.Year)
			doc.AddLogEntry(newValue)
			if _, err := s.store.Create(ctx, doc); err != nil {
				if errors.Is(err, ErrConflict) {
					continue
				}
				return nil, fmt.Errorf("create statistics for %d: %w", newValue.Year, err)
			}
			s.log.Info("statistics created", zap.Int("year", newValue.Year))
			return doc, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read statistics for %d: %w", newValue.Year, err)
		}

		// Remove-then-add on the same in-memory document, persisted once.
		doc.RemoveLogEntry(oldValue)
		doc.AddLogEntry(newValue)
		if _, err := s.store.Replace(ctx, doc, rev); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, fmt.Errorf("write statistics for %d: %w", newValue.Year, err)
		}
		s.log.Info("statistics updated", zap.Int("year", newValue.Year))
		return doc, nil
	}
	return nil, fmt.Errorf("update log entry in statistics for %d: %w", newValue.Year, ErrConflict)
}

// RecalculateForYear rebuilds the year's document from scratch: delete any
// existing document, fold every entry, re-apply absence flags, persist as a
// create. The result is independent of entry order.
func (s *Service) RecalculateForYear(ctx context.Context, entries []*model.LogEntry, absences []*model.Absence, year int) (*YearDocument, error) {
	if err := s.store.Delete(ctx, Key(year)); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("delete statistics for %d: %w", year, err)
	}
	s.log.Info("statistics deleted for recalculation", zap.Int("year", year))

	doc := NewYearDocument(year)
	for _, entry := range entries {
		doc.AddLogEntry(entry)
	}
	for _, absence := range absences {
		doc.SetAbsence(absence)
	}

	if _, err := s.store.Create(ctx, doc); err != nil {
		// The year is left absent, which is detectable and safe.
		return nil, fmt.Errorf("create statistics for %d: %w", year, err)
	}
	s.log.Info("statistics recalculated", zap.Int("year", year), zap.Int("entries", len(entries)))
	return doc, nil
}

// GetByYear returns the year's document or ErrNotFound. Callers must not
// treat absence as a zero document without going through recalculation.
func (s *Service) GetByYear(ctx context.Context, year int) (*YearDocument, error) {
	doc, _, err := s.store.Get(ctx, Key(year))
	if errors.Is(err, ErrNotFound) {
		s.log.Info("no statistics for year", zap.Int("year", year))
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("read statistics for %d: %w", year, err)
	}
	return doc, nil
}

// ApplyAbsence writes a day's absence flags into the year document's days
// map, creating the document lazily. The log-entry path never touches these
// flags.
func (s *Service) ApplyAbsence(ctx context.Context, absence *model.Absence) (*YearDocument, error) {
	doc, err := s.mutate(ctx, absence.Year, func(doc *YearDocument) {
		doc.SetAbsence(absence)
	})
	if err != nil {
		return nil, fmt.Errorf("apply absence to statistics for %d: %w", absence.Year, err)
	}
	return doc, nil
}

// mutate runs one bounded read-apply-write cycle against the year's
// document, creating it when absent.
func (s *Service) mutate(ctx context.Context, year int, apply func(*YearDocument)) (*YearDocument, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		doc, rev, err := s.store.Get(ctx, Key(year))
		switch {
		case errors.Is(err, ErrNotFound):
			doc = NewYearDocument(year)
			apply(doc)
			if _, err := s.store.Create(ctx, doc); err != nil {
				if errors.Is(err, ErrConflict) {
					// Another writer created the document first; re-read.
					continue
				}
				return nil, err
			}
			s.log.Info("statistics created", zap.Int("year", year))
			return doc, nil
		case err != nil:
			return nil, err
		}

		apply(doc)
		if _, err := s.store.Replace(ctx, doc, rev); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}
		s.log.Info("statistics updated", zap.Int("year", year))
		return doc, nil
	}
	return nil, ErrConflict
}
