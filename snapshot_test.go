package main

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

func cleanedFixture(n int) []models.ServiceRequest {
	rows := make([]models.ServiceRequest, n)
	for i := range rows {
		created := time.Date(2024, 2, 1+i%27, 9, 30, 0, 0, time.UTC)
		rows[i] = models.ServiceRequest{
			UniqueKey:        fmt.Sprintf("key-%04d", i),
			CreatedAt:        created,
			ClosedAt:         created.Add(36 * time.Hour),
			ResponseTimeDays: 1.5,
			ComplaintType:    "Noise - Residential",
			Descriptor:       "Loud Music/Party",
			Agency:           "NYPD",
			Borough:          models.Boroughs[i%len(models.Boroughs)],
			IncidentZip:      "11201",
			Channel:          models.Channels[i%len(models.Channels)],
			Latitude:         40.6 + float64(i)*0.001,
			Longitude:        -73.9,
			HasCoordinates:   true,
			TopComplaintType: i%2 == 0,
		}
	}
	return rows
}

func TestSnapshotPathSanitizesName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"raw 2024", "raw_2024.csv"},
		{"cleaned: 2024!", "cleaned_2024.csv"},
		{"café data", "cafe_data.csv"},
		{"  spaced  ", "spaced.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, filepath.Join("out", tt.want), SnapshotPath("out", tt.name))
	}
}

func TestCleanedSnapshotRoundTrip(t *testing.T) {
	rows := cleanedFixture(25)
	path := SnapshotPath(t.TempDir(), "cleaned roundtrip")
	require.NoError(t, WriteCleanedSnapshot(path, rows))

	got, err := ReadCleanedSnapshot(path)
	require.NoError(t, err)
	require.Len(t, got, len(rows))

	for i, r := range got {
		want := rows[i]
		assert.Equal(t, want.UniqueKey, r.UniqueKey)
		assert.True(t, want.CreatedAt.Equal(r.CreatedAt))
		assert.True(t, want.ClosedAt.Equal(r.ClosedAt))
		assert.InDelta(t, want.ResponseTimeDays, r.ResponseTimeDays, 1e-6)
		assert.Equal(t, want.Borough, r.Borough)
		assert.Equal(t, want.Channel, r.Channel)
		assert.Equal(t, want.TopComplaintType, r.TopComplaintType)
		assert.InDelta(t, want.Latitude, r.Latitude, 1e-6)
	}
}

func TestRawSnapshotRoundTripCompressed(t *testing.T) {
	raw := make([]models.RawRecord, 10)
	for i := range raw {
		raw[i] = models.RawRecord{
			UniqueKey:     fmt.Sprintf("key-%d", i),
			CreatedDate:   "2024-01-01T00:00:00.000",
			ClosedDate:    "2024-01-03T00:00:00.000",
			ComplaintType: "HEAT/HOT WATER",
			Borough:       "BRONX",
			Channel:       "PHONE",
		}
	}
	path := SnapshotPath(t.TempDir(), "raw 2024")
	final, err := WriteRawSnapshot(path, raw, true)
	require.NoError(t, err)
	assert.Equal(t, path+".lz4", final)

	got, err := ReadRawSnapshot(final)
	require.NoError(t, err)
	require.Len(t, got, len(raw))
	assert.Equal(t, "key-0", got[0].UniqueKey)
	assert.Equal(t, "PHONE", got[0].Channel)
	assert.Equal(t, "2024-01-01T00:00:00.000", got[0].CreatedDate)
}

func TestWriteRawSnapshotUncompressed(t *testing.T) {
	raw := []models.RawRecord{{
		UniqueKey:   "key-1",
		CreatedDate: "2024-01-01T00:00:00.000",
		ClosedDate:  "2024-01-02T00:00:00.000",
		Borough:     "QUEENS",
	}}
	path := SnapshotPath(t.TempDir(), "raw plain")
	final, err := WriteRawSnapshot(path, raw, false)
	require.NoError(t, err)
	assert.Equal(t, path, final)

	got, err := ReadRawSnapshot(final)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWriteSnapshotRejectsEmptyInput(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteRawSnapshot(SnapshotPath(dir, "raw"), nil, false)
	assert.Error(t, err)
	assert.Error(t, WriteCleanedSnapshot(SnapshotPath(dir, "cleaned"), nil))
}

func TestSampleRows(t *testing.T) {
	rows := cleanedFixture(50)
	assert.Len(t, SampleRows(rows, 100), 50) // fewer rows than requested

	big := cleanedFixture(3000)
	sample := SampleRows(big, SampleSnapshotSize)
	require.Len(t, sample, SampleSnapshotSize)

	// without replacement and deterministic
	seen := map[string]bool{}
	for _, r := range sample {
		assert.False(t, seen[r.UniqueKey])
		seen[r.UniqueKey] = true
	}
	again := SampleRows(big, SampleSnapshotSize)
	assert.Equal(t, sample, again)
}

func TestWriteSampleSnapshot(t *testing.T) {
	rows := cleanedFixture(2500)
	path := SnapshotPath(t.TempDir(), "cleaned sample")
	require.NoError(t, WriteSampleSnapshot(path, rows))

	got, err := ReadCleanedSnapshot(path)
	require.NoError(t, err)
	assert.Len(t, got, SampleSnapshotSize)
}

func TestReadCleanedSnapshotGzip(t *testing.T) {
	rows := cleanedFixture(5)
	dir := t.TempDir()
	plain := SnapshotPath(dir, "cleaned")
	require.NoError(t, WriteCleanedSnapshot(plain, rows))

	// archive the snapshot the way an operator would
	src, err := os.Open(plain)
	require.NoError(t, err)
	defer src.Close()
	gzPath := plain + ".gz"
	dst, err := os.Create(gzPath)
	require.NoError(t, err)
	zw := gzip.NewWriter(dst)
	_, err = io.Copy(zw, src)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, dst.Close())

	got, err := ReadCleanedSnapshot(gzPath)
	require.NoError(t, err)
	assert.Len(t, got, len(rows))
}

func TestReadCleanedSnapshotMissingColumn(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	csv := "unique_key,created_at\nkey-1,2024-01-01T00:00:00Z\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	_, err := ReadCleanedSnapshot(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}
