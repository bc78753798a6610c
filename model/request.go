/*
request.go - API request types and input normalization

PURPOSE:
  Request bodies accepted by the HTTP layer, with validation tags and the
  conversion into domain records. Times arrive in loose form ("9:5") and are
  normalized to zero-padded HH:mm before any duration math.

VALIDATION:
  Struct tags target go-playground/validator. Two custom validators are
  registered by the API layer:
    trackdate  - yyyy-MM-dd calendar date
    tracktime  - H:mm / HH:mm clock time, minutes optional

SEE ALSO:
  - types.go: the records these requests construct
  - api/handlers.go: registers the custom validators and runs validation
*/
package model

import (
	"fmt"
	"regexp"
)

var (
	// DatePattern matches a full ISO calendar date.
	DatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	// TimePattern matches loose clock times: "9:5", "09:05", "23:".
	TimePattern = regexp.MustCompile(`^(\d{1,2}):(\d{0,2})$`)
)

// =============================================================================
// LOG ENTRY REQUESTS
// =============================================================================

// UpsertEntryRequest is the body for creating or updating a log entry.
// ID is ignored on create (the server assigns one).
type UpsertEntryRequest struct {
	ID          string `json:"id,omitempty"`
	Date        string `json:"date" validate:"required,trackdate"`
	Start       string `json:"start" validate:"required,tracktime"`
	End         string `json:"end" validate:"required,tracktime"`
	Project     string `json:"project,omitempty"`
	Description string `json:"description,omitempty"`
}

// ToLogEntry converts the request into a LogEntry with derived fields.
// The caller must have validated the request first.
func (r *UpsertEntryRequest) ToLogEntry(id string) (*LogEntry, error) {
	start, err := NormalizeTime(r.Start)
	if err != nil {
		return nil, err
	}
	end, err := NormalizeTime(r.End)
	if err != nil {
		return nil, err
	}
	return NewLogEntry(id, r.Date, start, end, r.Project, r.Description)
}

// NormalizeTime reformats a loose clock time to zero-padded HH:mm.
// Missing minutes default to "00".
func NormalizeTime(value string) (string, error) {
	match := TimePattern.FindStringSubmatch(value)
	if match == nil {
		return "", fmt.Errorf("invalid time %q", value)
	}

	hours := match[1]
	if len(hours) == 1 {
		hours = "0" + hours
	}
	minutes := match[2]
	if len(minutes) == 0 {
		minutes = "0"
	}
	if len(minutes) == 1 {
		minutes = "0" + minutes
	}
	return hours + ":" + minutes, nil
}

// =============================================================================
// ABSENCE REQUESTS
// =============================================================================

// UpdateAbsenceRequest is the body for upserting a day's absence flags.
type UpdateAbsenceRequest struct {
	Date          string       `json:"date" validate:"required,trackdate"`
	HomeOffice    bool         `json:"homeOffice"`
	PublicHoliday bool         `json:"publicHoliday"`
	SickLeave     bool         `json:"sickLeave"`
	Vacation      VacationType `json:"vacation" validate:"gte=0,lte=2"`
}

// ToAbsence converts the request into an Absence record.
func (r *UpdateAbsenceRequest) ToAbsence() (*Absence, error) {
	return NewAbsence(r.Date, r.HomeOffice, r.PublicHoliday, r.SickLeave, r.Vacation)
}

// =============================================================================
// SEARCH REQUESTS
// =============================================================================

// SearchRequest filters log entries by year, optional project, and an
// optional free-text query over the description.
type SearchRequest struct {
	Year    int    `json:"year" validate:"required,gt=1000,lt=3000"`
	Project string `json:"project,omitempty"`
	Query   string `json:"query,omitempty"`
}
