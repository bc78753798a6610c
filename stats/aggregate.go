/*
Package stats provides the incremental statistics aggregation engine.

PURPOSE:
  This package accumulates and retracts log-entry contributions across nested
  time buckets (year -> month/week/day -> project) and keeps the derived
  aggregate synchronized with the mutable entry store.

KEY CONCEPTS IN THIS FILE (aggregate.go):
  - Bucket:         running duration total + entry count for one scope
  - ScopeAggregate: a Bucket plus its per-project breakdown
  - WorkingDay:     per-date worked duration plus same-day absence flags

DESIGN PRINCIPLES:
  1. Commutativity: adds and removes for the same entry cancel exactly, in
     any order relative to other entries.
  2. Compactness: a bucket that drains to zero is pruned from its parent map,
     so sparse years stay small under churn.
  3. Single write path per concern: log entries mutate durations and counts;
     absence updates mutate flags. Neither touches the other's fields.

SEE ALSO:
  - document.go: the per-year root aggregate built from these pieces
  - service.go:  the synchronization protocol against the document store
*/
package stats

import (
	"github.com/warp/timetracker/model"
)

// =============================================================================
// BUCKET - duration + entry count accumulator
// =============================================================================

// Bucket is the smallest accumulator: total worked minutes and the number of
// contributing entries for one scope.
type Bucket struct {
	Duration int `json:"duration"`
	Entries  int `json:"entries"`
}

// Apply adds a signed contribution. Negative totals are possible transiently
// when add/remove pairs interleave; paired calls cancel to exactly zero.
func (b *Bucket) Apply(duration, entries int) {
	b.Duration += duration
	b.Entries += entries
}

// IsEmpty reports whether the bucket carries no contributions and is
// eligible for removal from its parent map.
func (b *Bucket) IsEmpty() bool {
	return b.Duration == 0 && b.Entries == 0
}

// =============================================================================
// SCOPE AGGREGATE - bucket + per-project breakdown for one time scope
// =============================================================================

// ScopeAggregate combines a scope-level Bucket with a breakdown keyed by
// trimmed project name. Used for the year scope, each month, and each week.
type ScopeAggregate struct {
	Bucket
	Projects map[string]*Bucket `json:"projects"`
}

// NewScopeAggregate returns an empty aggregate with an initialized breakdown.
func NewScopeAggregate() *ScopeAggregate {
	return &ScopeAggregate{Projects: make(map[string]*Bucket)}
}

// AddEntry applies the entry to the scope bucket and, when the entry has a
// project, to that project's bucket (created on first use).
func (a *ScopeAggregate) AddEntry(entry *model.LogEntry) {
	a.Apply(entry.Duration, 1)

	key, ok := entry.ProjectKey()
	if !ok {
		return
	}
	if a.Projects == nil {
		a.Projects = make(map[string]*Bucket)
	}
	project := a.Projects[key]
	if project == nil {
		project = &Bucket{}
		a.Projects[key] = project
	}
	project.Apply(entry.Duration, 1)
}

// RemoveEntry retracts the entry's contribution. A project bucket that
// drains to zero is removed from the breakdown.
func (a *ScopeAggregate) RemoveEntry(entry *model.LogEntry) {
	a.Apply(-entry.Duration, -1)

	key, ok := entry.ProjectKey()
	if !ok {
		return
	}
	if project := a.Projects[key]; project != nil {
		project.Apply(-entry.Duration, -1)
		if project.IsEmpty() {
			delete(a.Projects, key)
		}
	}
}

// IsEmpty reports whether the scope bucket is drained. Paired add/remove
// calls drain the breakdown together with the bucket.
func (a *ScopeAggregate) IsEmpty() bool {
	return a.Bucket.IsEmpty()
}

// =============================================================================
// WORKING DAY - per-date duration + absence flags
// =============================================================================

// WorkingDay accumulates worked minutes for one calendar day together with
// that day's absence flags. Log entries mutate only Duration; the absence
// write path mutates only the flags.
type WorkingDay struct {
	Duration      int                `json:"duration"`
	Vacation      model.VacationType `json:"vacation"`
	SickLeave     bool               `json:"sickLeave"`
	HomeOffice    bool               `json:"homeOffice"`
	PublicHoliday bool               `json:"publicHoliday"`
}

// AddEntry adds the entry's worked minutes.
func (d *WorkingDay) AddEntry(entry *model.LogEntry) {
	d.Duration += entry.Duration
}

// RemoveEntry retracts the entry's worked minutes.
func (d *WorkingDay) RemoveEntry(entry *model.LogEntry) {
	d.Duration -= entry.Duration
}

// SetAbsence overwrites the day's absence flags from an absence record.
func (d *WorkingDay) SetAbsence(absence *model.Absence) {
	d.Vacation = absence.Vacation
	d.SickLeave = absence.SickLeave
	d.HomeOffice = absence.HomeOffice
	d.PublicHoliday = absence.PublicHoliday
}

// IsEmpty reports whether the day carries no duration and no absence flags.
func (d *WorkingDay) IsEmpty() bool {
	return d.Duration == 0 &&
		d.Vacation == model.VacationNone &&
		!d.SickLeave && !d.HomeOffice && !d.PublicHoliday
}
