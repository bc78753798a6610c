/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Response shapes returned to clients, decoupled from the persisted records.
  The statistics response mirrors the stored document and additionally
  reports each bucket's total as decimal hours (minutes / 60, two decimal
  places) so clients don't re-derive display values.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - Request types live in model/request.go (they carry validation tags)

SEE ALSO:
  - handlers.go: builds these from service results
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/timetracker/model"
	"github.com/warp/timetracker/stats"
)

var minutesPerHour = decimal.NewFromInt(60)

// hours renders minutes as decimal hours with two decimal places.
func hours(minutes int) string {
	return decimal.NewFromInt(int64(minutes)).Div(minutesPerHour).Round(2).String()
}

// BucketDTO is one duration/count accumulator with derived hours.
type BucketDTO struct {
	Duration int    `json:"duration"`
	Entries  int    `json:"entries"`
	Hours    string `json:"hours"`
}

func newBucketDTO(b stats.Bucket) BucketDTO {
	return BucketDTO{Duration: b.Duration, Entries: b.Entries, Hours: hours(b.Duration)}
}

// ScopeDTO is a bucket plus its per-project breakdown.
type ScopeDTO struct {
	BucketDTO
	Projects map[string]BucketDTO `json:"projects"`
}

func newScopeDTO(a *stats.ScopeAggregate) ScopeDTO {
	dto := ScopeDTO{Projects: map[string]BucketDTO{}}
	if a == nil {
		return dto
	}
	dto.BucketDTO = newBucketDTO(a.Bucket)
	for name, bucket := range a.Projects {
		dto.Projects[name] = newBucketDTO(*bucket)
	}
	return dto
}

// WorkingDayDTO is one day's worked duration and absence flags.
type WorkingDayDTO struct {
	Duration      int                `json:"duration"`
	Hours         string             `json:"hours"`
	Vacation      model.VacationType `json:"vacation"`
	SickLeave     bool               `json:"sickLeave"`
	HomeOffice    bool               `json:"homeOffice"`
	PublicHoliday bool               `json:"publicHoliday"`
}

// StatisticsDTO is the full statistics response for one year.
type StatisticsDTO struct {
	ID     string                   `json:"id"`
	Year   ScopeDTO                 `json:"year"`
	Months map[string]ScopeDTO      `json:"months"`
	Weeks  map[string]ScopeDTO      `json:"weeks"`
	Days   map[string]WorkingDayDTO `json:"days"`
}

func newStatisticsDTO(doc *stats.YearDocument) StatisticsDTO {
	dto := StatisticsDTO{
		ID:     doc.ID,
		Year:   newScopeDTO(doc.Year),
		Months: map[string]ScopeDTO{},
		Weeks:  map[string]ScopeDTO{},
		Days:   map[string]WorkingDayDTO{},
	}
	for key, month := range doc.Months {
		dto.Months[key] = newScopeDTO(month)
	}
	for key, week := range doc.Weeks {
		dto.Weeks[key] = newScopeDTO(week)
	}
	for key, day := range doc.Days {
		dto.Days[key] = WorkingDayDTO{
			Duration:      day.Duration,
			Hours:         hours(day.Duration),
			Vacation:      day.Vacation,
			SickLeave:     day.SickLeave,
			HomeOffice:    day.HomeOffice,
			PublicHoliday: day.PublicHoliday,
		}
	}
	return dto
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error   string              `json:"error"`
	Details []map[string]string `json:"details,omitempty"`
}
