package stats_test

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/timetracker/model"
	"github.com/warp/timetracker/stats"
)

// =============================================================================
// KEY FORMAT
// =============================================================================

func TestKey_FixedWidthYearSuffix(t *testing.T) {
	// Frozen format: stored data depends on it byte-for-byte.
	assert.Equal(t, "00000000-0000-0000-0000-000000002023", stats.Key(2023))
	assert.Equal(t, "00000000-0000-0000-0000-000000000999", stats.Key(999))
}

// =============================================================================
// DOCUMENT SCENARIOS
// =============================================================================

func TestYearDocument_SingleEntryScenario(t *testing.T) {
	// GIVEN: the reference entry 2023-07-17 09:00-11:45 on project Learning
	doc := stats.NewYearDocument(2023)
	e := entry(t, "2023-07-17", "09:00", "11:45", "Learning")

	// WHEN: adding it to an empty document
	doc.AddLogEntry(e)

	// THEN: 165 minutes land in the year, month "7", week "29", and the day
	assert.Equal(t, 165, doc.Year.Duration)
	assert.Equal(t, 1, doc.Year.Entries)
	assert.Equal(t, 165, doc.Year.Projects["Learning"].Duration)
	assert.Equal(t, 1, doc.Year.Projects["Learning"].Entries)

	require.Contains(t, doc.Months, "7")
	assert.Equal(t, 165, doc.Months["7"].Duration)
	assert.Equal(t, 165, doc.Months["7"].Projects["Learning"].Duration)

	require.Contains(t, doc.Weeks, "29")
	assert.Equal(t, 165, doc.Weeks["29"].Duration)
	assert.Equal(t, 165, doc.Weeks["29"].Projects["Learning"].Duration)

	require.Contains(t, doc.Days, "2023-07-17")
	assert.Equal(t, 165, doc.Days["2023-07-17"].Duration)

	// WHEN: removing it again
	doc.RemoveLogEntry(e)

	// THEN: the document is fully empty, all keys pruned
	assert.True(t, doc.IsEmpty())
	assert.Empty(t, doc.Months)
	assert.Empty(t, doc.Weeks)
	assert.Empty(t, doc.Days)
	assert.Empty(t, doc.Year.Projects)
}

func TestYearDocument_MidnightWrapEntry(t *testing.T) {
	doc := stats.NewYearDocument(2023)
	doc.AddLogEntry(entry(t, "2023-07-20", "23:30", "01:00", ""))

	assert.Equal(t, 90, doc.Year.Duration)
	assert.Equal(t, 90, doc.Days["2023-07-20"].Duration)
}

func TestYearDocument_PermutationIndependence(t *testing.T) {
	entries := []*model.LogEntry{
		entry(t, "2023-01-02", "08:00", "12:00", "Ops"),
		entry(t, "2023-01-02", "13:00", "17:00", "Ops"),
		entry(t, "2023-03-15", "09:00", "09:00", "Learning"),
		entry(t, "2023-07-17", "09:00", "11:45", "Learning"),
		entry(t, "2023-12-30", "23:30", "01:00", ""),
	}

	reference := stats.NewYearDocument(2023)
	for _, e := range entries {
		reference.AddLogEntry(e)
	}

	rng := rand.New(rand.NewSource(29))
	for trial := 0; trial < 10; trial++ {
		shuffled := append([]*model.LogEntry(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		doc := stats.NewYearDocument(2023)
		for _, e := range shuffled {
			doc.AddLogEntry(e)
		}
		assert.Equal(t, reference, doc, "trial %d", trial)
	}
}

func TestYearDocument_RemoveKeepsSiblingScopes(t *testing.T) {
	doc := stats.NewYearDocument(2023)
	july := entry(t, "2023-07-17", "09:00", "10:00", "Learning")
	march := entry(t, "2023-03-01", "09:00", "10:00", "Learning")

	doc.AddLogEntry(july)
	doc.AddLogEntry(march)
	doc.RemoveLogEntry(july)

	assert.NotContains(t, doc.Months, "7")
	assert.Contains(t, doc.Months, "3")
	assert.Equal(t, 60, doc.Year.Duration)
	assert.Equal(t, 1, doc.Year.Entries)
}

// =============================================================================
// ABSENCE MIRRORING
// =============================================================================

func TestYearDocument_SetAbsence_CreatesAndPrunesDay(t *testing.T) {
	doc := stats.NewYearDocument(2023)

	vacation, err := model.NewAbsence("2023-08-01", false, false, false, model.VacationFull)
	require.NoError(t, err)
	doc.SetAbsence(vacation)

	require.Contains(t, doc.Days, "2023-08-01")
	assert.Equal(t, model.VacationFull, doc.Days["2023-08-01"].Vacation)

	// Clearing all flags on a day with no worked time prunes the day.
	cleared, err := model.NewAbsence("2023-08-01", false, false, false, model.VacationNone)
	require.NoError(t, err)
	doc.SetAbsence(cleared)

	assert.NotContains(t, doc.Days, "2023-08-01")
}

func TestYearDocument_SetAbsence_PreservesWorkedDuration(t *testing.T) {
	doc := stats.NewYearDocument(2023)
	doc.AddLogEntry(entry(t, "2023-08-01", "09:00", "10:00", ""))

	homeOffice, err := model.NewAbsence("2023-08-01", true, false, false, model.VacationNone)
	require.NoError(t, err)
	doc.SetAbsence(homeOffice)

	day := doc.Days["2023-08-01"]
	require.NotNil(t, day)
	assert.Equal(t, 60, day.Duration)
	assert.True(t, day.HomeOffice)
}

// =============================================================================
// SERIALIZATION ROUND TRIP
// =============================================================================

func TestYearDocument_MutatesAfterDecode(t *testing.T) {
	// Documents decoded from storage may come back with nil maps; mutation
	// must still work and produce the same state as a fresh document.
	doc := stats.NewYearDocument(2023)
	body, err := json.Marshal(&stats.YearDocument{ID: doc.ID, PartitionKey: doc.PartitionKey})
	require.NoError(t, err)

	var decoded stats.YearDocument
	require.NoError(t, json.Unmarshal(body, &decoded))

	e := entry(t, "2023-07-17", "09:00", "11:45", "Learning")
	decoded.AddLogEntry(e)

	assert.Equal(t, 165, decoded.Year.Duration)
	assert.Contains(t, decoded.Months, "7")
}

func TestYearDocument_CloneIsDeep(t *testing.T) {
	doc := stats.NewYearDocument(2023)
	doc.AddLogEntry(entry(t, "2023-07-17", "09:00", "11:45", "Learning"))

	clone := doc.Clone()
	clone.AddLogEntry(entry(t, "2023-07-18", "09:00", "10:00", "Ops"))

	assert.Equal(t, 165, doc.Year.Duration, "mutating the clone must not touch the original")
	assert.Equal(t, 225, clone.Year.Duration)
	assert.NotContains(t, doc.Year.Projects, "Ops")
}
