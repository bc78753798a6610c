/*
document.go - The per-year root statistics document

PURPOSE:
  YearDocument is the persisted root aggregate for one calendar year: the
  year-level ScopeAggregate, month and ISO-week breakdowns, and per-day
  WorkingDay entries. One document exists per year containing any data; it is
  created lazily on first write and may be deleted and rebuilt wholesale by
  recalculation.

KEY FORMATS (frozen for storage compatibility):
  - Document id/partition key: "00000000-0000-0000-0000-00000000" + 4-digit year
  - Month and week keys: bare decimal strings ("7", "29"), no zero padding
  - Day keys: full ISO dates ("2023-07-17")

OWNERSHIP:
  The document owns its nested maps outright. Nothing outside this package
  holds references into them; mutation happens only through AddLogEntry,
  RemoveLogEntry, and SetAbsence.

SEE ALSO:
  - aggregate.go: the nested accumulators
  - service.go:   persistence and consistency protocol
*/
package stats

import (
	"fmt"
	"strconv"

	"github.com/warp/timetracker/model"
)

// Key derives the deterministic document id for a year. Both the primary key
// and the partition key of the stored document resolve to this value.
func Key(year int) string {
	return fmt.Sprintf("00000000-0000-0000-0000-00000000%04d", year)
}

// YearDocument is the root statistics record for one calendar year.
type YearDocument struct {
	ID           string                     `json:"id"`
	PartitionKey string                     `json:"partitionKey"`
	Year         *ScopeAggregate            `json:"year"`
	Months       map[string]*ScopeAggregate `json:"months"`
	Weeks        map[string]*ScopeAggregate `json:"weeks"`
	Days         map[string]*WorkingDay     `json:"days"`
}

// NewYearDocument returns an empty document keyed by year.
func NewYearDocument(year int) *YearDocument {
	key := Key(year)
	return &YearDocument{
		ID:           key,
		PartitionKey: key,
		Year:         NewScopeAggregate(),
		Months:       make(map[string]*ScopeAggregate),
		Weeks:        make(map[string]*ScopeAggregate),
		Days:         make(map[string]*WorkingDay),
	}
}

// AddLogEntry applies the entry to the year scope and to the month, week,
// and day aggregates its date falls into, creating them on first use.
func (d *YearDocument) AddLogEntry(entry *model.LogEntry) {
	d.ensure()
	d.Year.AddEntry(entry)

	if entry.Month != 0 {
		d.month(strconv.Itoa(entry.Month)).AddEntry(entry)
	}
	if entry.Week != 0 {
		d.week(strconv.Itoa(entry.Week)).AddEntry(entry)
	}
	if entry.Date != "" {
		d.day(entry.Date).AddEntry(entry)
	}
}

// RemoveLogEntry retracts the entry everywhere AddLogEntry applied it.
// Scopes that drain to zero are pruned from their parent maps.
func (d *YearDocument) RemoveLogEntry(entry *model.LogEntry) {
	d.ensure()
	d.Year.RemoveEntry(entry)

	if entry.Month != 0 {
		key := strconv.Itoa(entry.Month)
		if month := d.Months[key]; month != nil {
			month.RemoveEntry(entry)
			if month.IsEmpty() {
				delete(d.Months, key)
			}
		}
	}
	if entry.Week != 0 {
		key := strconv.Itoa(entry.Week)
		if week := d.Weeks[key]; week != nil {
			week.RemoveEntry(entry)
			if week.IsEmpty() {
				delete(d.Weeks, key)
			}
		}
	}
	if entry.Date != "" {
		if day := d.Days[entry.Date]; day != nil {
			day.RemoveEntry(entry)
			if day.IsEmpty() {
				delete(d.Days, entry.Date)
			}
		}
	}
}

// SetAbsence overwrites the absence flags on the date's WorkingDay, creating
// the day on first use and pruning it when flags and duration are all clear.
func (d *YearDocument) SetAbsence(absence *model.Absence) {
	d.ensure()
	day := d.day(absence.Date)
	day.SetAbsence(absence)
	if day.IsEmpty() {
		delete(d.Days, absence.Date)
	}
}

// IsEmpty reports whether the document carries no contributions at all.
func (d *YearDocument) IsEmpty() bool {
	return d.Year.IsEmpty() && len(d.Months) == 0 && len(d.Weeks) == 0 && len(d.Days) == 0
}

// Clone returns a deep copy. Used by stores that must not alias the
// document's maps.
func (d *YearDocument) Clone() *YearDocument {
	clone := &YearDocument{
		ID:           d.ID,
		PartitionKey: d.PartitionKey,
		Year:         cloneScope(d.Year),
		Months:       make(map[string]*ScopeAggregate, len(d.Months)),
		Weeks:        make(map[string]*ScopeAggregate, len(d.Weeks)),
		Days:         make(map[string]*WorkingDay, len(d.Days)),
	}
	for k, v := range d.Months {
		clone.Months[k] = cloneScope(v)
	}
	for k, v := range d.Weeks {
		clone.Weeks[k] = cloneScope(v)
	}
	for k, v := range d.Days {
		day := *v
		clone.Days[k] = &day
	}
	return clone
}

func cloneScope(a *ScopeAggregate) *ScopeAggregate {
	if a == nil {
		return NewScopeAggregate()
	}
	clone := &ScopeAggregate{
		Bucket:   a.Bucket,
		Projects: make(map[string]*Bucket, len(a.Projects)),
	}
	for k, v := range a.Projects {
		bucket := *v
		clone.Projects[k] = &bucket
	}
	return clone
}

// ensure initializes nested containers on documents decoded from storage,
// where empty maps may come back nil.
func (d *YearDocument) ensure() {
	if d.Year == nil {
		d.Year = NewScopeAggregate()
	}
	if d.Months == nil {
		d.Months = make(map[string]*ScopeAggregate)
	}
	if d.Weeks == nil {
		d.Weeks = make(map[string]*ScopeAggregate)
	}
	if d.Days == nil {
		d.Days = make(map[string]*WorkingDay)
	}
}

func (d *YearDocument) month(key string) *ScopeAggregate {
	month := d.Months[key]
	if month == nil {
		month = NewScopeAggregate()
		d.Months[key] = month
	}
	return month
}

func (d *YearDocument) week(key string) *ScopeAggregate {
	week := d.Weeks[key]
	if week == nil {
		week = NewScopeAggregate()
		d.Weeks[key] = week
	}
	return week
}

func (d *YearDocument) day(key string) *WorkingDay {
	day := d.Days[key]
	if day == nil {
		day = &WorkingDay{}
		d.Days[key] = day
	}
	return day
}
