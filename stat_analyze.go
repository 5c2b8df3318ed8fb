package main

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

// GroupStats computes response-time aggregates per group. Rows mapping to an
// empty key are skipped, so groups are never emitted with zero rows or NaN.
// The result depends only on row membership, not on input order.
func GroupStats(rows []models.ServiceRequest, key func(models.ServiceRequest) string) map[string]models.AggregateStat {
	grouped := map[string][]float64{}
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		grouped[k] = append(grouped[k], r.ResponseTimeDays)
	}

	stats := make(map[string]models.AggregateStat, len(grouped))
	for k, values := range grouped {
		stats[k] = summarize(values)
	}
	return stats
}

func summarize(values []float64) models.AggregateStat {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	s := models.AggregateStat{
		Count:  int64(len(sorted)),
		Mean:   stat.Mean(sorted, nil),
		Median: quantileLinear(0.5, sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	return s
}

// quantileLinear interpolates linearly between the closest ranks of a sorted
// sample: h = p*(n-1), result between sorted[floor(h)] and sorted[floor(h)+1].
// So the median of [1 2 3 4] is 2.5, not a step of the empirical CDF.
func quantileLinear(p float64, sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	h := p * float64(n-1)
	i := int(math.Floor(h))
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-math.Floor(h))*(sorted[i+1]-sorted[i])
}

// OverallStats summarizes the whole cleaned table as a single group.
func OverallStats(rows []models.ServiceRequest) models.AggregateStat {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.ResponseTimeDays
	}
	return summarize(values)
}

func StatsByBorough(rows []models.ServiceRequest) map[string]models.AggregateStat {
	return GroupStats(rows, func(r models.ServiceRequest) string { return r.Borough })
}

func StatsByChannel(rows []models.ServiceRequest) map[string]models.AggregateStat {
	return GroupStats(rows, func(r models.ServiceRequest) string { return r.Channel })
}

// StatsByComplaintType covers only the top-10 complaint types; rarer types
// have sample sizes too small for reliable comparison.
func StatsByComplaintType(rows []models.ServiceRequest) map[string]models.AggregateStat {
	return GroupStats(rows, func(r models.ServiceRequest) string {
		if !r.TopComplaintType {
			return ""
		}
		return r.ComplaintType
	})
}

// StatsByBoroughChannel aggregates per (borough, channel) pair.
func StatsByBoroughChannel(rows []models.ServiceRequest) map[string]models.AggregateStat {
	return GroupStats(rows, func(r models.ServiceRequest) string {
		return r.Borough + "/" + r.Channel
	})
}

// StatsByZip aggregates per incident ZIP. Per-cell samples are small, so
// consumers should read these with care; empty ZIPs are skipped.
func StatsByZip(rows []models.ServiceRequest) map[string]models.AggregateStat {
	return GroupStats(rows, func(r models.ServiceRequest) string { return r.IncidentZip })
}

// ChannelComparison computes per-channel stats separately for each top-10
// complaint type, so channels are compared within a type instead of across
// types with different baseline durations.
func ChannelComparison(rows []models.ServiceRequest) map[string]map[string]models.AggregateStat {
	byType := map[string][]models.ServiceRequest{}
	for _, r := range rows {
		if !r.TopComplaintType {
			continue
		}
		byType[r.ComplaintType] = append(byType[r.ComplaintType], r)
	}
	result := make(map[string]map[string]models.AggregateStat, len(byType))
	for complaintType, typeRows := range byType {
		result[complaintType] = StatsByChannel(typeRows)
	}
	return result
}

// VolumeSeasonality buckets each borough by calendar month and relates
// monthly complaint volume to the monthly median response time via Spearman
// rank correlation, per borough independently.
func VolumeSeasonality(rows []models.ServiceRequest) []models.BoroughSeasonality {
	byBorough := map[string]map[string][]float64{}
	for _, r := range rows {
		month := r.CreatedAt.Format("2006-01")
		if byBorough[r.Borough] == nil {
			byBorough[r.Borough] = map[string][]float64{}
		}
		byBorough[r.Borough][month] = append(byBorough[r.Borough][month], r.ResponseTimeDays)
	}

	result := make([]models.BoroughSeasonality, 0, len(byBorough))
	for borough, months := range byBorough {
		keys := make([]string, 0, len(months))
		for m := range months {
			keys = append(keys, m)
		}
		sort.Strings(keys)

		entry := models.BoroughSeasonality{Borough: borough, Correlation: math.NaN()}
		volumes := make([]float64, 0, len(keys))
		medians := make([]float64, 0, len(keys))
		for _, m := range keys {
			s := summarize(months[m])
			entry.Series = append(entry.Series, models.MonthlyPoint{
				Month:              m,
				Volume:             int(s.Count),
				MedianResponseDays: s.Median,
			})
			volumes = append(volumes, float64(s.Count))
			medians = append(medians, s.Median)
		}
		if len(keys) >= 3 {
			entry.Correlation = spearman(volumes, medians)
		}
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Borough < result[j].Borough })
	return result
}

// spearman is the Pearson correlation of the two rank vectors, with average
// ranks for ties. NaN when either side has no variance.
func spearman(x, y []float64) float64 {
	return stat.Correlation(rankAverage(x), rankAverage(y), nil)
}

// rankAverage assigns 1-based ranks, averaging over ties.
func rankAverage(values []float64) []float64 {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j+2) / 2 // mean of 1-based positions i+1..j+1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// groupResponseTimes partitions response times by a group column, the input
// shape the hypothesis test works on.
func groupResponseTimes(rows []models.ServiceRequest, key func(models.ServiceRequest) string) map[string][]float64 {
	groups := map[string][]float64{}
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		groups[k] = append(groups[k], r.ResponseTimeDays)
	}
	return groups
}
