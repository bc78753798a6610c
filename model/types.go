/*
Package model defines the domain records shared by the entry store, the
absence store, and the statistics engine.

PURPOSE:
  This package contains the persisted record shapes and the small amount of
  derived-field logic that belongs with them:
  - LogEntry: one tracked working interval (date, start/end, project)
  - Absence: per-day absence flags (home office, sick leave, vacation)
  - VacationType: vacation kind enum
  - Key derivation for absence records (fixed-width date-based keys)
  - Duration computation between HH:mm times, wrapping past midnight

DESIGN PRINCIPLES:
  1. Records are plain data. Services own behavior; model owns shape.
  2. Derived fields (year, month, ISO week, duration) are computed once at
     construction, never re-derived downstream.
  3. Key formats are frozen. Stored data depends on them byte-for-byte.

SEE ALSO:
  - request.go: API request types that construct these records
  - stats/: consumes LogEntry and Absence to maintain aggregates
*/
package model

import (
	"fmt"
	"strings"
	"time"
)

// DateFormat is the wire and storage format for calendar dates.
const DateFormat = "2006-01-02"

// =============================================================================
// VACATION TYPE
// =============================================================================

// VacationType distinguishes no vacation, a full day, and a half day.
// Serialized as an integer for storage compatibility.
type VacationType int

const (
	VacationNone VacationType = iota
	VacationFull
	VacationHalf
)

// =============================================================================
// LOG ENTRY
// =============================================================================

// LogEntry is one tracked working interval. Year, Month, Week and Duration
// are derived from Date/Start/End at construction time.
type LogEntry struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Week        int    `json:"week"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Duration    int    `json:"duration"`
	Project     string `json:"project,omitempty"`
	Description string `json:"description,omitempty"`
}

// NewLogEntry builds a LogEntry with all derived fields populated.
// Start and End must already be normalized to HH:mm.
func NewLogEntry(id, date, start, end, project, description string) (*LogEntry, error) {
	day, err := time.Parse(DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	duration, err := DurationMinutes(start, end)
	if err != nil {
		return nil, err
	}

	_, week := day.ISOWeek()
	return &LogEntry{
		ID:          id,
		Date:        date,
		Year:        day.Year(),
		Month:       int(day.Month()),
		Week:        week,
		Start:       start,
		End:         end,
		Duration:    duration,
		Project:     project,
		Description: description,
	}, nil
}

// ProjectKey returns the trimmed project name used as a breakdown key.
// ok is false when the entry has no project.
func (e *LogEntry) ProjectKey() (string, bool) {
	key := strings.TrimSpace(e.Project)
	return key, key != ""
}

// DurationMinutes computes the minutes between two HH:mm times.
// An end before the start is treated as crossing midnight (+24h).
func DurationMinutes(start, end string) (int, error) {
	startMin, err := parseMinutes(start)
	if err != nil {
		return 0, err
	}
	endMin, err := parseMinutes(end)
	if err != nil {
		return 0, err
	}

	duration := endMin - startMin
	if duration < 0 {
		duration += 24 * 60
	}
	return duration, nil
}

func parseMinutes(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", value, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// =============================================================================
// ABSENCE
// =============================================================================

// Absence records per-day absence flags. It is persisted on its own key,
// independent of the statistics document for the same year.
type Absence struct {
	ID            string       `json:"id"`
	Date          string       `json:"date"`
	Year          int          `json:"year"`
	Month         int          `json:"month"`
	HomeOffice    bool         `json:"homeOffice"`
	PublicHoliday bool         `json:"publicHoliday"`
	SickLeave     bool         `json:"sickLeave"`
	Vacation      VacationType `json:"vacation"`
}

// NewAbsence builds an Absence for the given date with its derived key.
func NewAbsence(date string, homeOffice, publicHoliday, sickLeave bool, vacation VacationType) (*Absence, error) {
	day, err := time.Parse(DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	return &Absence{
		ID:            AbsenceKey(date),
		Date:          date,
		Year:          day.Year(),
		Month:         int(day.Month()),
		HomeOffice:    homeOffice,
		PublicHoliday: publicHoliday,
		SickLeave:     sickLeave,
		Vacation:      vacation,
	}, nil
}

// AbsenceKey derives the deterministic record key for a date.
// Format frozen for compatibility with previously stored data.
func AbsenceKey(date string) string {
	return "00000000-0000-0000-0000-0000" + strings.ReplaceAll(date, "-", "")
}

// AbsenceView is the per-day absence result returned by range queries.
// Dates without any recorded data yield a default view.
type AbsenceView struct {
	Date          string       `json:"date"`
	Year          int          `json:"year"`
	Month         int          `json:"month"`
	Duration      int          `json:"duration"`
	HomeOffice    bool         `json:"homeOffice"`
	PublicHoliday bool         `json:"publicHoliday"`
	SickLeave     bool         `json:"sickLeave"`
	Vacation      VacationType `json:"vacation"`
}
