/*
Package tracker orchestrates log-entry and absence writes and keeps the
derived statistics in sync.

PURPOSE:
  The Service is the unit of work behind every mutation: persist the record
  in its own store, then run the statistics synchronization protocol for the
  affected year(s). There is no cross-store transaction; a statistics write
  that fails after a successful entry write leaves drift that recalculation
  repairs.

READ PATHS:
  - Entries by date / search by year+project+query: straight store reads.
  - Absence range: derived from the days map of the year documents spanning
    the range, with a default view for dates that carry no data.

SEE ALSO:
  - stats/service.go: the synchronization protocol invoked here
  - store.go:         the store contracts
*/
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/warp/timetracker/model"
	"github.com/warp/timetracker/stats"
)

// Service coordinates the entry store, the absence store, and the
// statistics service.
type Service struct {
	entries  EntryStore
	absences AbsenceStore
	stats    *stats.Service
	log      *zap.Logger
}

// NewService wires a tracking service from its collaborators.
func NewService(entries EntryStore, absences AbsenceStore, statistics *stats.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{entries: entries, absences: absences, stats: statistics, log: log}
}

// =============================================================================
// LOG ENTRIES
// =============================================================================

// AddEntry persists a new entry under a server-assigned id and applies it to
// the year's statistics. A failed statistics write is logged, not fatal; the
// entry write stands and recalculation repairs the drift.
func (s *Service) AddEntry(ctx context.Context, entry *model.LogEntry) (*model.LogEntry, error) {
	entry.ID = uuid.NewString()
	if err := s.entries.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("create entry: %w", err)
	}
	s.log.Info("entry created", zap.String("id", entry.ID), zap.String("date", entry.Date))

	if _, err := s.stats.AddLogEntry(ctx, entry); err != nil {
		s.log.Error("statistics update failed after entry create",
			zap.String("id", entry.ID), zap.Error(err))
	}
	return entry, nil
}

// UpdateEntry replaces an existing entry and moves its statistics
// contribution from the stored value to the new one.
func (s *Service) UpdateEntry(ctx context.Context, entry *model.LogEntry) (*model.LogEntry, error) {
	oldValue, err := s.entries.GetEntry(ctx, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("load entry %s: %w", entry.ID, err)
	}

	if err := s.entries.ReplaceEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("replace entry %s: %w", entry.ID, err)
	}
	s.log.Info("entry updated", zap.String("id", entry.ID))

	if _, err := s.stats.UpdateLogEntry(ctx, oldValue, entry); err != nil {
		s.log.Error("statistics update failed after entry update",
			zap.String("id", entry.ID), zap.Error(err))
	}
	return entry, nil
}

// DeleteEntry removes an entry and retracts it from its year's statistics.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	entry, err := s.entries.GetEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("load entry %s: %w", id, err)
	}

	if err := s.entries.DeleteEntry(ctx, id); err != nil {
		return fmt.Errorf("delete entry %s: %w", id, err)
	}
	s.log.Info("entry deleted", zap.String("id", id))

	if _, err := s.stats.DeleteLogEntry(ctx, entry); err != nil {
		s.log.Error("statistics update failed after entry delete",
			zap.String("id", id), zap.Error(err))
	}
	return nil
}

// EntriesByDate returns all entries for one calendar date.
func (s *Service) EntriesByDate(ctx context.Context, date string) ([]*model.LogEntry, error) {
	return s.entries.EntriesByDate(ctx, date)
}

// FindEntries filters a year's entries by project and description text.
func (s *Service) FindEntries(ctx context.Context, year int, project, query string) ([]*model.LogEntry, error) {
	return s.entries.FindEntries(ctx, year, project, query)
}

// =============================================================================
// STATISTICS
// =============================================================================

// Statistics returns the year's document or stats.ErrNotFound.
func (s *Service) Statistics(ctx context.Context, year int) (*stats.YearDocument, error) {
	return s.stats.GetByYear(ctx, year)
}

// Recalculate rebuilds the year's statistics from the authoritative entry
// and absence stores. This is the repair path for any drift.
func (s *Service) Recalculate(ctx context.Context, year int) (*stats.YearDocument, error) {
	entries, err := s.entries.EntriesByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("load entries for %d: %w", year, err)
	}
	absences, err := s.absences.AbsencesByYear(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("load absences for %d: %w", year, err)
	}
	return s.stats.RecalculateForYear(ctx, entries, absences, year)
}

// =============================================================================
// ABSENCES
// =============================================================================

// UpdateAbsence upserts the absence record for its date and mirrors the
// flags into the year document's days map.
func (s *Service) UpdateAbsence(ctx context.Context, absence *model.Absence) (*model.Absence, error) {
	if err := s.absences.UpsertAbsence(ctx, absence); err != nil {
		return nil, fmt.Errorf("upsert absence for %s: %w", absence.Date, err)
	}
	s.log.Info("absence updated", zap.String("date", absence.Date))

	if _, err := s.stats.ApplyAbsence(ctx, absence); err != nil {
		s.log.Error("statistics update failed after absence upsert",
			zap.String("date", absence.Date), zap.Error(err))
	}
	return absence, nil
}

// AbsencesForRange returns one view per date in [from, to], derived from the
// days maps of the year documents spanning the range. Dates with no recorded
// data get a default view.
func (s *Service) AbsencesForRange(ctx context.Context, from, to string) (map[string]*model.AbsenceView, error) {
	fromDay, err := time.Parse(model.DateFormat, from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	toDay, err := time.Parse(model.DateFormat, to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", to, err)
	}
	if toDay.Before(fromDay) {
		return nil, fmt.Errorf("range end %s before start %s", to, from)
	}

	documents := make(map[int]*stats.YearDocument)
	result := make(map[string]*model.AbsenceView)
	for day := fromDay; !day.After(toDay); day = day.AddDate(0, 0, 1) {
		year := day.Year()
		doc, ok := documents[year]
		if !ok {
			doc, err = s.stats.GetByYear(ctx, year)
			if err != nil && !errors.Is(err, stats.ErrNotFound) {
				return nil, err
			}
			documents[year] = doc // nil when the year has no statistics
		}

		date := day.Format(model.DateFormat)
		view := &model.AbsenceView{Date: date, Year: year, Month: int(day.Month())}
		if doc != nil {
			if workingDay := doc.Days[date]; workingDay != nil {
				view.Duration = workingDay.Duration
				view.HomeOffice = workingDay.HomeOffice
				view.PublicHoliday = workingDay.PublicHoliday
				view.SickLeave = workingDay.SickLeave
				view.Vacation = workingDay.Vacation
			}
		}
		result[date] = view
	}
	return result, nil
}
