package main

import (
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pivolan/go_utils"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

const (
	// WinsorPercentile caps response times at the empirical 99th
	// percentile, computed once over the whole cleaned table.
	WinsorPercentile = 0.99
	// TopComplaintTypeCount is how many complaint types (by frequency)
	// the comparative analyses are restricted to.
	TopComplaintTypeCount = 10
)

// channelMapping folds raw open_data_channel_type values into three
// channels. ONLINE, UNKNOWN and OTHER all land on Web, matching the source
// dataset convention; this conflates true unknowns with web submissions and
// is kept on purpose. CleanReport.UnmappedChannels counts the fallback.
var channelMapping = map[string]string{
	"PHONE":   "Phone",
	"ONLINE":  "Web",
	"UNKNOWN": "Web",
	"MOBILE":  "App",
	"OTHER":   "Web",
}

var boroughCanonical = map[string]string{
	"BRONX":         "Bronx",
	"BROOKLYN":      "Brooklyn",
	"MANHATTAN":     "Manhattan",
	"QUEENS":        "Queens",
	"STATEN ISLAND": "Staten Island",
}

// Clean turns raw Socrata records into the analysis table, applying in order:
// timestamp parsing + required-field filtering, response-time derivation,
// non-positive-duration filtering, channel normalization, de-duplication by
// unique_key (first occurrence wins), global 99th-percentile winsorization,
// and top-10 complaint-type tagging. The input is never mutated.
func Clean(raw []models.RawRecord) ([]models.ServiceRequest, models.CleanReport) {
	report := models.CleanReport{InputRows: len(raw)}
	rows := make([]models.ServiceRequest, 0, len(raw))

	seen := map[string]bool{}
	for _, rec := range raw {
		created, createdOK := parseSocrataTime(rec.CreatedDate)
		closed, closedOK := parseSocrataTime(rec.ClosedDate)
		borough, boroughOK := boroughCanonical[strings.ToUpper(strings.TrimSpace(rec.Borough))]
		if !createdOK || !closedOK || !boroughOK {
			report.MissingRequiredField++
			continue
		}

		days := closed.Sub(created).Hours() / 24
		if days <= 0 {
			// data entry error, excluded rather than reported
			report.InvalidDuration++
			continue
		}

		channel, mapped := channelMapping[strings.ToUpper(strings.TrimSpace(rec.Channel))]
		if !mapped {
			channel = "Web"
			report.UnmappedChannels++
		}

		if seen[rec.UniqueKey] {
			report.Duplicates++
			continue
		}
		seen[rec.UniqueKey] = true

		row := models.ServiceRequest{
			UniqueKey:        rec.UniqueKey,
			CreatedAt:        created,
			ClosedAt:         closed,
			ResponseTimeDays: days,
			ComplaintType:    rec.ComplaintType,
			Descriptor:       rec.Descriptor,
			Agency:           rec.Agency,
			Borough:          borough,
			IncidentZip:      strings.TrimSpace(rec.IncidentZip),
			Channel:          channel,
		}
		if lat, err := strconv.ParseFloat(rec.Latitude, 64); err == nil {
			if lon, err := strconv.ParseFloat(rec.Longitude, 64); err == nil {
				row.Latitude = lat
				row.Longitude = lon
				row.HasCoordinates = true
			}
		}
		rows = append(rows, row)
	}

	report.WinsorizationCeiling = winsorize(rows, &report)
	report.TopComplaintTypes = tagTopComplaintTypes(rows)
	report.OutputRows = len(rows)

	if dropped := report.MissingRequiredField + report.InvalidDuration; dropped > 0 {
		log.Printf("removed %d rows (%d missing required fields, %d invalid durations)",
			dropped, report.MissingRequiredField, report.InvalidDuration)
	}
	if report.Duplicates > 0 {
		log.Printf("removed %d duplicate rows by unique_key", report.Duplicates)
	}
	log.Printf("cleaned table: %d of %d rows kept, ceiling %.2f days",
		report.OutputRows, report.InputRows, report.WinsorizationCeiling)

	return rows, report
}

// winsorize clips response times above the global 99th-percentile value,
// computed once from the surviving pre-cap distribution. Returns the ceiling.
func winsorize(rows []models.ServiceRequest, report *models.CleanReport) float64 {
	if len(rows) == 0 {
		return 0
	}
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.ResponseTimeDays
	}
	sort.Float64s(values)
	ceiling := quantileLinear(WinsorPercentile, values)
	for i := range rows {
		if rows[i].ResponseTimeDays > ceiling {
			rows[i].ResponseTimeDays = ceiling
			report.WinsorizedRows++
		}
	}
	if report.WinsorizedRows > 0 {
		log.Printf("winsorized %d values above %.2f days", report.WinsorizedRows, ceiling)
	}
	return ceiling
}

// tagTopComplaintTypes flags rows in the top-10 complaint types by frequency.
// Nothing is dropped: the restriction is applied at analysis boundaries.
// Frequency ties break alphabetically so the set is reproducible.
func tagTopComplaintTypes(rows []models.ServiceRequest) []string {
	counts := map[string]int{}
	for _, r := range rows {
		counts[r.ComplaintType]++
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})
	if len(types) > TopComplaintTypeCount {
		types = types[:TopComplaintTypeCount]
	}
	for i := range rows {
		rows[i].TopComplaintType = go_utils.InArray(rows[i].ComplaintType, types)
	}
	return types
}

var socrataTimeLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseSocrataTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range socrataTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
