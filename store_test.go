package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

func TestAuditStoreRecordAndReadBack(t *testing.T) {
	store, err := OpenAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)

	report := models.CleanReport{
		InputRows:            100,
		OutputRows:           90,
		MissingRequiredField: 6,
		InvalidDuration:      3,
		Duplicates:           1,
		UnmappedChannels:     4,
		WinsorizedRows:       2,
		WinsorizationCeiling: 45.5,
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	runID, err := store.RecordRun(start, end, report, 3.25)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	run, err := store.LastRun()
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, 100, run.RowsFetched)
	assert.Equal(t, 90, run.RowsCleaned)
	assert.InDelta(t, 45.5, run.WinsorizationCeiling, 1e-9)
	assert.InDelta(t, 3.25, run.GlobalMedianDays, 1e-9)
	assert.True(t, start.Equal(run.PeriodStart))

	counts, err := store.StepCounts(runID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		"missing_required_field":   6,
		"invalid_duration":         3,
		"duplicate_unique_key":     1,
		"unmapped_channel_to_web":  4,
		"winsorized_above_ceiling": 2,
	}, counts)
}

func TestAuditStoreLastRunPicksNewest(t *testing.T) {
	store, err := OpenAuditStore(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)

	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.RecordRun(start, start.AddDate(1, 0, 0), models.CleanReport{InputRows: 1}, 1)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := store.RecordRun(start, start.AddDate(1, 0, 0), models.CleanReport{InputRows: 2}, 2)
	require.NoError(t, err)

	run, err := store.LastRun()
	require.NoError(t, err)
	assert.Equal(t, second, run.ID)
	assert.Equal(t, 2, run.RowsFetched)
}

func TestAuditStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	store, err := OpenAuditStore(path)
	require.NoError(t, err)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	runID, err := store.RecordRun(start, start.AddDate(1, 0, 0), models.CleanReport{InputRows: 7, OutputRows: 7}, 1.5)
	require.NoError(t, err)

	reopened, err := OpenAuditStore(path)
	require.NoError(t, err)
	run, err := reopened.LastRun()
	require.NoError(t, err)
	assert.Equal(t, runID, run.ID)
}
