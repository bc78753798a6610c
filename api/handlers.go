/*
handlers.go - HTTP handlers for the time-tracking API

PURPOSE:
  Exposes log entries, absences, and statistics over REST. Handlers parse
  and validate input, delegate to the tracking service, and shape responses.

ENDPOINTS:
  Log entries:
    POST   /api/logEntries          Create entry
    PUT    /api/logEntries/{id}     Update entry
    DELETE /api/logEntries/{id}     Delete entry
    GET    /api/logEntries/{date}   Entries for a date
    POST   /api/search              Find by year/project/description

  Statistics:
    GET    /api/statistics/{year}   Year statistics (404 when absent)
    POST   /api/statistics/{year}   Recalculate from entries + absences

  Absences:
    GET    /api/absences/{from}/{to}  Per-day absence views for a range
    PUT    /api/absences              Upsert one day's absence flags

ERROR HANDLING:
  - 400: malformed JSON, failed validation, malformed year/date params
  - 404: missing entry or missing statistics document
  - 500: store failures

SEE ALSO:
  - dto.go:    response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/warp/timetracker/model"
	"github.com/warp/timetracker/stats"
	"github.com/warp/timetracker/tracker"
)

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	tracker  *tracker.Service
	validate *validator.Validate
	log      *zap.Logger
}

// NewHandler creates a handler around the tracking service and registers
// the custom request validators.
func NewHandler(service *tracker.Service, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}

	validate := validator.New()
	_ = validate.RegisterValidation("trackdate", func(fl validator.FieldLevel) bool {
		return model.DatePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("tracktime", func(fl validator.FieldLevel) bool {
		return model.TimePattern.MatchString(fl.Field().String())
	})

	return &Handler{tracker: service, validate: validate, log: log}
}

// Healthz is a simple health check endpoint.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// =============================================================================
// LOG ENTRY HANDLERS
// =============================================================================

// AddLogEntry creates a new log entry and updates the year's statistics.
func (h *Handler) AddLogEntry(w http.ResponseWriter, r *http.Request) {
	request, ok := h.decodeEntryRequest(w, r)
	if !ok {
		return
	}

	entry, err := request.ToLogEntry("")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	created, err := h.tracker.AddEntry(r.Context(), entry)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, created)
}

// UpdateLogEntry replaces an existing entry and moves its statistics
// contribution.
func (h *Handler) UpdateLogEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	request, ok := h.decodeEntryRequest(w, r)
	if !ok {
		return
	}

	entry, err := request.ToLogEntry(id)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	updated, err := h.tracker.UpdateEntry(r.Context(), entry)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// DeleteLogEntry removes an entry and retracts it from statistics.
func (h *Handler) DeleteLogEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.tracker.DeleteEntry(r.Context(), id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetLogEntriesForDate lists all entries for one calendar date.
func (h *Handler) GetLogEntriesForDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !model.DatePattern.MatchString(date) {
		h.writeError(w, http.StatusBadRequest, "date must be yyyy-MM-dd", nil)
		return
	}

	entries, err := h.tracker.EntriesByDate(r.Context(), date)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.LogEntry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// FindLogEntries searches a year's entries by project and description text.
func (h *Handler) FindLogEntries(w http.ResponseWriter, r *http.Request) {
	var request model.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request payload", nil)
		return
	}
	if err := h.validate.Struct(request); err != nil {
		h.writeValidationError(w, err)
		return
	}

	entries, err := h.tracker.FindEntries(r.Context(), request.Year, request.Project, request.Query)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []*model.LogEntry{}
	}
	h.writeJSON(w, http.StatusOK, entries)
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// GetStatisticsForYear returns the pre-aggregated statistics document.
// An absent document is a 404, not a zero document: it may mean the year has
// no data, or that statistics drifted and need recalculation.
func (h *Handler) GetStatisticsForYear(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	doc, err := h.tracker.Statistics(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newStatisticsDTO(doc))
}

// RecalculateStatisticsForYear rebuilds the year's statistics from the
// authoritative entry and absence stores.
func (h *Handler) RecalculateStatisticsForYear(w http.ResponseWriter, r *http.Request) {
	year, ok := h.yearParam(w, r)
	if !ok {
		return
	}

	doc, err := h.tracker.Recalculate(r.Context(), year)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, newStatisticsDTO(doc))
}

// =============================================================================
// ABSENCE HANDLERS
// =============================================================================

// UpdateAbsence upserts one day's absence flags.
func (h *Handler) UpdateAbsence(w http.ResponseWriter, r *http.Request) {
	var request model.UpdateAbsenceRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request payload", nil)
		return
	}
	if err := h.validate.Struct(request); err != nil {
		h.writeValidationError(w, err)
		return
	}

	absence, err := request.ToAbsence()
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	updated, err := h.tracker.UpdateAbsence(r.Context(), absence)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, updated)
}

// GetAbsencesForDateRange returns one absence view per date in the range.
func (h *Handler) GetAbsencesForDateRange(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")
	if !model.DatePattern.MatchString(from) || !model.DatePattern.MatchString(to) {
		h.writeError(w, http.StatusBadRequest, "dates must be yyyy-MM-dd", nil)
		return
	}

	views, err := h.tracker.AbsencesForRange(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, stats.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "not found", nil)
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	h.writeJSON(w, http.StatusOK, views)
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) decodeEntryRequest(w http.ResponseWriter, r *http.Request) (*model.UpsertEntryRequest, bool) {
	var request model.UpsertEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request payload", nil)
		return nil, false
	}
	if err := h.validate.Struct(request); err != nil {
		h.writeValidationError(w, err)
		return nil, false
	}
	return &request, true
}

func (h *Handler) yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	param := chi.URLParam(r, "year")
	if !yearPattern.MatchString(param) {
		h.writeError(w, http.StatusBadRequest, "year must be four digits", nil)
		return 0, false
	}
	year, err := strconv.Atoi(param)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "year must be four digits", nil)
		return 0, false
	}
	return year, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log.Error("unable to write response stream", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, details []map[string]string) {
	h.writeJSON(w, status, errorResponse{Error: message, Details: details})
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err error) {
	h.log.Warn("validation failed", zap.Error(err))

	var validationErrs validator.ValidationErrors
	details := make([]map[string]string, 0)
	if errors.As(err, &validationErrs) {
		for _, fieldErr := range validationErrs {
			details = append(details, map[string]string{
				fieldErr.Field(): fieldErr.Field() + " failed " + fieldErr.Tag() + " validation",
			})
		}
	}
	h.writeError(w, http.StatusBadRequest, "validation failed", details)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case stats.IsNotFound(err):
		h.writeError(w, http.StatusNotFound, "not found", nil)
	default:
		h.log.Error("request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}
