package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/mozillazg/go-unidecode"
	"github.com/pierrec/lz4"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

// SampleSnapshotSize is the fixed size of the sample snapshot written next to
// the full cleaned table.
const SampleSnapshotSize = 1000

// snapshotRow is the flat on-disk shape of a cleaned request. Timestamps are
// RFC3339 strings so the snapshot round-trips without schema sniffing.
type snapshotRow struct {
	UniqueKey        string  `dataframe:"unique_key"`
	CreatedAt        string  `dataframe:"created_at"`
	ClosedAt         string  `dataframe:"closed_at"`
	ResponseTimeDays float64 `dataframe:"response_time_days"`
	ComplaintType    string  `dataframe:"complaint_type"`
	Descriptor       string  `dataframe:"descriptor"`
	Agency           string  `dataframe:"agency"`
	Borough          string  `dataframe:"borough"`
	IncidentZip      string  `dataframe:"incident_zip"`
	Channel          string  `dataframe:"channel"`
	Latitude         float64 `dataframe:"latitude"`
	Longitude        float64 `dataframe:"longitude"`
	HasCoordinates   bool    `dataframe:"has_coordinates"`
	TopComplaintType bool    `dataframe:"top_complaint_type"`
}

// SnapshotPath builds a snapshot file path from a human-readable name,
// folded to a plain ASCII identifier.
func SnapshotPath(dir, name string) string {
	return filepath.Join(dir, sanitizeSnapshotName(name)+".csv")
}

var specialSymbols = regexp.MustCompile(`[^a-zA-Z0-9]+`)

func sanitizeSnapshotName(name string) string {
	s := unidecode.Unidecode(name)
	s = specialSymbols.ReplaceAllString(s, "_")
	return strings.ToLower(strings.Trim(s, "_"))
}

// WriteRawSnapshot persists the fetched records as they came from the API.
// With compress set the file gains a .lz4 suffix; raw yearly pulls run to
// millions of rows.
func WriteRawSnapshot(path string, raw []models.RawRecord, compress bool) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("raw snapshot: no records to write")
	}
	df := dataframe.LoadStructs(raw)
	if df.Err != nil {
		return "", fmt.Errorf("raw snapshot: %w", df.Err)
	}
	if !compress {
		return path, writeCSVFile(path, df)
	}

	path += ".lz4"
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	zw := lz4.NewWriter(f)
	if err := df.WriteCSV(zw); err != nil {
		return "", fmt.Errorf("raw snapshot: %w", err)
	}
	return path, zw.Close()
}

// WriteCleanedSnapshot persists the cleaned table. The file is read-only for
// the rest of the run.
func WriteCleanedSnapshot(path string, rows []models.ServiceRequest) error {
	if len(rows) == 0 {
		return fmt.Errorf("cleaned snapshot: no rows to write")
	}
	flat := make([]snapshotRow, len(rows))
	for i, r := range rows {
		flat[i] = snapshotRow{
			UniqueKey:        r.UniqueKey,
			CreatedAt:        r.CreatedAt.Format(time.RFC3339),
			ClosedAt:         r.ClosedAt.Format(time.RFC3339),
			ResponseTimeDays: r.ResponseTimeDays,
			ComplaintType:    r.ComplaintType,
			Descriptor:       r.Descriptor,
			Agency:           r.Agency,
			Borough:          r.Borough,
			IncidentZip:      r.IncidentZip,
			Channel:          r.Channel,
			Latitude:         r.Latitude,
			Longitude:        r.Longitude,
			HasCoordinates:   r.HasCoordinates,
			TopComplaintType: r.TopComplaintType,
		}
	}
	df := dataframe.LoadStructs(flat)
	if df.Err != nil {
		return fmt.Errorf("cleaned snapshot: %w", df.Err)
	}
	return writeCSVFile(path, df)
}

// WriteSampleSnapshot writes a fixed-size random sample of the cleaned table,
// seeded so the sample is the same on every run over the same data.
func WriteSampleSnapshot(path string, rows []models.ServiceRequest) error {
	sample := SampleRows(rows, SampleSnapshotSize)
	return WriteCleanedSnapshot(path, sample)
}

// SampleRows returns up to n rows drawn without replacement, deterministic
// for a given input.
func SampleRows(rows []models.ServiceRequest, n int) []models.ServiceRequest {
	if len(rows) <= n {
		return rows
	}
	rng := rand.New(rand.NewSource(randomSeed))
	sample := make([]models.ServiceRequest, 0, n)
	for _, i := range rng.Perm(len(rows))[:n] {
		sample = append(sample, rows[i])
	}
	return sample
}

func writeCSVFile(path string, df dataframe.DataFrame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return df.WriteCSV(f)
}

// ReadRawSnapshot loads a previously fetched raw snapshot, decompressing
// archived files transparently. Unknown columns are ignored.
func ReadRawSnapshot(path string) ([]models.RawRecord, error) {
	r, err := openSnapshotReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	df := dataframe.ReadCSV(r, dataframe.HasHeader(true))
	if df.Err != nil {
		return nil, fmt.Errorf("reading raw snapshot %s: %w", path, df.Err)
	}
	records := df.Records()
	if len(records) < 2 {
		return nil, fmt.Errorf("raw snapshot %s is empty", path)
	}
	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	raw := make([]models.RawRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		get := func(name string) string {
			if i, ok := col[name]; ok {
				return rec[i]
			}
			return ""
		}
		raw = append(raw, models.RawRecord{
			UniqueKey:     get("unique_key"),
			CreatedDate:   get("created_date"),
			ClosedDate:    get("closed_date"),
			ComplaintType: get("complaint_type"),
			Descriptor:    get("descriptor"),
			Agency:        get("agency"),
			Borough:       get("borough"),
			IncidentZip:   get("incident_zip"),
			Channel:       get("open_data_channel_type"),
			Latitude:      get("latitude"),
			Longitude:     get("longitude"),
		})
	}
	return raw, nil
}

// ReadCleanedSnapshot restores the cleaned table from disk so analyze, model
// and report runs do not refetch. Archived snapshots (.gz, .lz4, .zip) are
// decompressed transparently.
func ReadCleanedSnapshot(path string) ([]models.ServiceRequest, error) {
	r, err := openSnapshotReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	df := dataframe.ReadCSV(r, dataframe.HasHeader(true))
	if df.Err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, df.Err)
	}
	records := df.Records()
	if len(records) < 2 {
		return nil, fmt.Errorf("snapshot %s is empty", path)
	}

	col := map[string]int{}
	for i, name := range records[0] {
		col[name] = i
	}
	for _, required := range []string{"unique_key", "created_at", "closed_at", "response_time_days", "borough", "channel"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("snapshot %s: missing column %s", path, required)
		}
	}

	rows := make([]models.ServiceRequest, 0, len(records)-1)
	for _, rec := range records[1:] {
		get := func(name string) string {
			if i, ok := col[name]; ok {
				return rec[i]
			}
			return ""
		}
		created, err := time.Parse(time.RFC3339, get("created_at"))
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad created_at %q", path, get("created_at"))
		}
		closed, err := time.Parse(time.RFC3339, get("closed_at"))
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad closed_at %q", path, get("closed_at"))
		}
		days, err := strconv.ParseFloat(get("response_time_days"), 64)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad response_time_days %q", path, get("response_time_days"))
		}
		lat, _ := strconv.ParseFloat(get("latitude"), 64)
		lon, _ := strconv.ParseFloat(get("longitude"), 64)
		hasCoords, _ := strconv.ParseBool(get("has_coordinates"))
		topType, _ := strconv.ParseBool(get("top_complaint_type"))
		rows = append(rows, models.ServiceRequest{
			UniqueKey:        get("unique_key"),
			CreatedAt:        created,
			ClosedAt:         closed,
			ResponseTimeDays: days,
			ComplaintType:    get("complaint_type"),
			Descriptor:       get("descriptor"),
			Agency:           get("agency"),
			Borough:          get("borough"),
			IncidentZip:      get("incident_zip"),
			Channel:          get("channel"),
			Latitude:         lat,
			Longitude:        lon,
			HasCoordinates:   hasCoords,
			TopComplaintType: topType,
		})
	}
	return rows, nil
}
