package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timetracker/model"
	"github.com/warp/timetracker/stats"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func entry(t *testing.T, date, start, end, project string) *model.LogEntry {
	t.Helper()
	e, err := model.NewLogEntry("test-"+date+start, date, start, end, project, "")
	require.NoError(t, err)
	return e
}

// =============================================================================
// BUCKET TESTS
// =============================================================================

func TestBucket_ApplyAndCancel(t *testing.T) {
	var b stats.Bucket
	b.Apply(165, 1)
	assert.Equal(t, 165, b.Duration)
	assert.Equal(t, 1, b.Entries)
	assert.False(t, b.IsEmpty())

	b.Apply(-165, -1)
	assert.True(t, b.IsEmpty())
}

func TestBucket_ZeroDurationStillCounts(t *testing.T) {
	// Duration and count are independent signals; a zero-duration entry is
	// valid and counted.
	var b stats.Bucket
	b.Apply(0, 1)
	assert.False(t, b.IsEmpty())
	assert.Equal(t, 0, b.Duration)
	assert.Equal(t, 1, b.Entries)
}

// =============================================================================
// SCOPE AGGREGATE TESTS
// =============================================================================

func TestScopeAggregate_AddThenRemove_ReturnsToEmpty(t *testing.T) {
	// GIVEN: a fresh aggregate
	a := stats.NewScopeAggregate()
	e := entry(t, "2023-07-17", "09:00", "11:45", "Learning")

	// WHEN: adding and removing the same entry
	a.AddEntry(e)
	require.Equal(t, 165, a.Duration)
	require.Equal(t, 1, a.Entries)
	require.Contains(t, a.Projects, "Learning")

	a.RemoveEntry(e)

	// THEN: the aggregate is back to its exact initial empty state
	assert.True(t, a.IsEmpty())
	assert.Empty(t, a.Projects)
}

func TestScopeAggregate_ProjectKeyTrimmed(t *testing.T) {
	a := stats.NewScopeAggregate()
	a.AddEntry(entry(t, "2023-07-17", "09:00", "10:00", "  Learning "))

	assert.Contains(t, a.Projects, "Learning")
	assert.NotContains(t, a.Projects, "  Learning ")
}

func TestScopeAggregate_NoProject_ExcludedFromBreakdown(t *testing.T) {
	a := stats.NewScopeAggregate()
	a.AddEntry(entry(t, "2023-07-17", "09:00", "10:00", ""))

	assert.Equal(t, 60, a.Duration)
	assert.Equal(t, 1, a.Entries)
	assert.Empty(t, a.Projects)
}

func TestScopeAggregate_LastProjectEntryRemoved_PrunesKey(t *testing.T) {
	a := stats.NewScopeAggregate()
	first := entry(t, "2023-07-17", "09:00", "10:00", "Learning")
	second := entry(t, "2023-07-17", "13:00", "14:00", "Learning")
	other := entry(t, "2023-07-17", "15:00", "16:00", "Ops")

	a.AddEntry(first)
	a.AddEntry(second)
	a.AddEntry(other)

	a.RemoveEntry(first)
	assert.Contains(t, a.Projects, "Learning", "project still has one entry")

	a.RemoveEntry(second)
	assert.NotContains(t, a.Projects, "Learning", "empty project bucket must be pruned")
	assert.Contains(t, a.Projects, "Ops")
}

func TestScopeAggregate_OrderIndependence(t *testing.T) {
	// Folding the same set in different orders yields identical state.
	entries := []*model.LogEntry{
		entry(t, "2023-07-17", "09:00", "11:45", "Learning"),
		entry(t, "2023-07-18", "08:00", "12:00", "Ops"),
		entry(t, "2023-07-19", "13:00", "13:30", ""),
		entry(t, "2023-07-20", "23:30", "01:00", "Learning"),
	}

	forward := stats.NewScopeAggregate()
	for _, e := range entries {
		forward.AddEntry(e)
	}

	backward := stats.NewScopeAggregate()
	for i := len(entries) - 1; i >= 0; i-- {
		backward.AddEntry(entries[i])
	}

	assert.Equal(t, forward, backward)
}

// =============================================================================
// WORKING DAY TESTS
// =============================================================================

func TestWorkingDay_EntriesTouchOnlyDuration(t *testing.T) {
	day := &stats.WorkingDay{SickLeave: true}
	e := entry(t, "2023-07-17", "09:00", "10:00", "Learning")

	day.AddEntry(e)
	assert.Equal(t, 60, day.Duration)
	assert.True(t, day.SickLeave, "absence flags are not log-entry driven")

	day.RemoveEntry(e)
	assert.Equal(t, 0, day.Duration)
	assert.False(t, day.IsEmpty(), "sick leave flag keeps the day non-empty")
}

func TestWorkingDay_IsEmpty(t *testing.T) {
	day := &stats.WorkingDay{}
	assert.True(t, day.IsEmpty())

	day.Vacation = model.VacationHalf
	assert.False(t, day.IsEmpty())

	day.Vacation = model.VacationNone
	day.HomeOffice = true
	assert.False(t, day.IsEmpty())
}

func TestWorkingDay_SetAbsenceOverwritesFlags(t *testing.T) {
	day := &stats.WorkingDay{Duration: 60, SickLeave: true}
	absence, err := model.NewAbsence("2023-07-17", true, false, false, model.VacationNone)
	require.NoError(t, err)

	day.SetAbsence(absence)

	assert.Equal(t, 60, day.Duration, "absence updates never touch duration")
	assert.True(t, day.HomeOffice)
	assert.False(t, day.SickLeave)
}
