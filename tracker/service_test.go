package tracker_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timetracker/model"
	"github.com/warp/timetracker/stats"
	"github.com/warp/timetracker/store/memory"
	"github.com/warp/timetracker/tracker"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestService() (*tracker.Service, *memory.Store) {
	store := memory.New()
	statistics := stats.NewService(store, nil)
	return tracker.NewService(store, store, statistics, nil), store
}

func newEntry(t *testing.T, date, start, end, project string) *model.LogEntry {
	t.Helper()
	e, err := model.NewLogEntry("", date, start, end, project, "")
	require.NoError(t, err)
	return e
}

// =============================================================================
// ENTRY LIFECYCLE
// =============================================================================

func TestService_AddEntry_PersistsAndAggregates(t *testing.T) {
	// GIVEN: an empty system
	service, store := newTestService()
	ctx := context.Background()

	// WHEN: an entry is added
	created, err := service.AddEntry(ctx, newEntry(t, "2023-07-17", "09:00", "11:45", "Learning"))
	require.NoError(t, err)

	// THEN: it got a server-assigned id and landed in both stores
	assert.NotEmpty(t, created.ID)

	stored, err := store.GetEntry(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 165, stored.Duration)

	doc, _, err := store.Get(ctx, stats.Key(2023))
	require.NoError(t, err)
	assert.Equal(t, 165, doc.Year.Duration)
}

func TestService_UpdateEntry_MovesContribution(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	created, err := service.AddEntry(ctx, newEntry(t, "2023-07-17", "09:00", "10:00", "Learning"))
	require.NoError(t, err)

	updated := newEntry(t, "2023-07-17", "09:00", "12:00", "Ops")
	updated.ID = created.ID
	_, err = service.UpdateEntry(ctx, updated)
	require.NoError(t, err)

	doc, _, err := store.Get(ctx, stats.Key(2023))
	require.NoError(t, err)
	assert.Equal(t, 180, doc.Year.Duration)
	assert.Equal(t, 1, doc.Year.Entries)
	assert.NotContains(t, doc.Year.Projects, "Learning")
}

func TestService_UpdateEntry_AcrossYears(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	created, err := service.AddEntry(ctx, newEntry(t, "2023-12-31", "09:00", "10:00", "Learning"))
	require.NoError(t, err)

	moved := newEntry(t, "2024-01-02", "09:00", "10:00", "Learning")
	moved.ID = created.ID
	_, err = service.UpdateEntry(ctx, moved)
	require.NoError(t, err)

	oldDoc, _, err := store.Get(ctx, stats.Key(2023))
	require.NoError(t, err)
	assert.True(t, oldDoc.IsEmpty(), "no residual state in the old year")

	newDoc, _, err := store.Get(ctx, stats.Key(2024))
	require.NoError(t, err)
	assert.Equal(t, 60, newDoc.Year.Duration)
}

func TestService_UpdateEntry_UnknownID(t *testing.T) {
	service, _ := newTestService()

	ghost := newEntry(t, "2023-07-17", "09:00", "10:00", "")
	ghost.ID = "missing"
	_, err := service.UpdateEntry(context.Background(), ghost)
	assert.ErrorIs(t, err, stats.ErrNotFound)
}

func TestService_DeleteEntry_RetractsStatistics(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	created, err := service.AddEntry(ctx, newEntry(t, "2023-07-17", "09:00", "11:45", "Learning"))
	require.NoError(t, err)

	require.NoError(t, service.DeleteEntry(ctx, created.ID))

	_, err = store.GetEntry(ctx, created.ID)
	assert.ErrorIs(t, err, stats.ErrNotFound)

	doc, _, err := store.Get(ctx, stats.Key(2023))
	require.NoError(t, err)
	assert.True(t, doc.IsEmpty())
}

// =============================================================================
// QUERIES
// =============================================================================

func TestService_FindEntries_FiltersByProjectAndQuery(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	learning, err := model.NewLogEntry("", "2023-07-17", "09:00", "10:00", "Learning", "read the chi docs")
	require.NoError(t, err)
	ops, err := model.NewLogEntry("", "2023-07-18", "09:00", "10:00", "Ops", "rotate credentials")
	require.NoError(t, err)

	_, err = service.AddEntry(ctx, learning)
	require.NoError(t, err)
	_, err = service.AddEntry(ctx, ops)
	require.NoError(t, err)

	byProject, err := service.FindEntries(ctx, 2023, "Ops", "")
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, "Ops", byProject[0].Project)

	byQuery, err := service.FindEntries(ctx, 2023, "", "chi docs")
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, "Learning", byQuery[0].Project)

	none, err := service.FindEntries(ctx, 2024, "", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// =============================================================================
// RECALCULATION
// =============================================================================

func TestService_Recalculate_RepairsDriftAndKeepsAbsences(t *testing.T) {
	// GIVEN: entries and an absence, plus a drifted statistics document
	service, store := newTestService()
	ctx := context.Background()

	_, err := service.AddEntry(ctx, newEntry(t, "2023-07-17", "09:00", "11:45", "Learning"))
	require.NoError(t, err)

	absence, err := model.NewAbsence("2023-08-01", true, false, false, model.VacationNone)
	require.NoError(t, err)
	_, err = service.UpdateAbsence(ctx, absence)
	require.NoError(t, err)

	drifted, rev, err := store.Get(ctx, stats.Key(2023))
	require.NoError(t, err)
	drifted.Year.Apply(999, 3)
	_, err = store.Replace(ctx, drifted, rev)
	require.NoError(t, err)

	// WHEN: the year is recalculated
	doc, err := service.Recalculate(ctx, 2023)
	require.NoError(t, err)

	// THEN: entry contributions are rebuilt and absence flags survive
	assert.Equal(t, 165, doc.Year.Duration)
	assert.Equal(t, 1, doc.Year.Entries)
	require.Contains(t, doc.Days, "2023-08-01")
	assert.True(t, doc.Days["2023-08-01"].HomeOffice)
}

// =============================================================================
// ABSENCES
// =============================================================================

func TestService_UpdateAbsence_MirrorsIntoDaysMap(t *testing.T) {
	service, store := newTestService()
	ctx := context.Background()

	absence, err := model.NewAbsence("2023-08-01", false, true, false, model.VacationNone)
	require.NoError(t, err)
	_, err = service.UpdateAbsence(ctx, absence)
	require.NoError(t, err)

	records, err := store.AbsencesByYear(ctx, 2023)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].PublicHoliday)

	doc, _, err := store.Get(ctx, stats.Key(2023))
	require.NoError(t, err)
	require.Contains(t, doc.Days, "2023-08-01")
	assert.True(t, doc.Days["2023-08-01"].PublicHoliday)
}

func TestService_AbsencesForRange_DefaultsForMissingDays(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	absence, err := model.NewAbsence("2023-08-02", false, false, true, model.VacationNone)
	require.NoError(t, err)
	_, err = service.UpdateAbsence(ctx, absence)
	require.NoError(t, err)

	_, err = service.AddEntry(ctx, newEntry(t, "2023-08-03", "09:00", "10:00", ""))
	require.NoError(t, err)

	views, err := service.AbsencesForRange(ctx, "2023-08-01", "2023-08-03")
	require.NoError(t, err)
	require.Len(t, views, 3)

	assert.False(t, views["2023-08-01"].SickLeave, "day without data gets a default view")
	assert.Equal(t, 2023, views["2023-08-01"].Year)
	assert.Equal(t, 8, views["2023-08-01"].Month)

	assert.True(t, views["2023-08-02"].SickLeave)
	assert.Equal(t, 60, views["2023-08-03"].Duration)
}

func TestService_AbsencesForRange_SpansYears(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	decemberAbsence, err := model.NewAbsence("2023-12-31", false, false, false, model.VacationFull)
	require.NoError(t, err)
	_, err = service.UpdateAbsence(ctx, decemberAbsence)
	require.NoError(t, err)

	januaryAbsence, err := model.NewAbsence("2024-01-01", false, true, false, model.VacationNone)
	require.NoError(t, err)
	_, err = service.UpdateAbsence(ctx, januaryAbsence)
	require.NoError(t, err)

	views, err := service.AbsencesForRange(ctx, "2023-12-30", "2024-01-02")
	require.NoError(t, err)
	require.Len(t, views, 4)

	assert.Equal(t, model.VacationFull, views["2023-12-31"].Vacation)
	assert.True(t, views["2024-01-01"].PublicHoliday)
	assert.Equal(t, model.VacationNone, views["2024-01-02"].Vacation)
}

func TestService_AbsencesForRange_InvalidRange(t *testing.T) {
	service, _ := newTestService()

	_, err := service.AbsencesForRange(context.Background(), "2023-08-03", "2023-08-01")
	assert.Error(t, err)
}
