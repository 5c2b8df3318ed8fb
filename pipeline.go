package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/config"
	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/plot"
)

// AnalysisResults bundles every derived output the presentation layer needs,
// as plain data structures: nothing downstream has to re-derive a statistic.
type AnalysisResults struct {
	Clean             models.CleanReport
	Overall           models.AggregateStat
	ByBorough         map[string]models.AggregateStat
	ByChannel         map[string]models.AggregateStat
	ByComplaintType   map[string]models.AggregateStat
	BoroughTest       models.HypothesisTestResult
	ChannelComparison map[string]map[string]models.AggregateStat
	Seasonality       []models.BoroughSeasonality
	Classifier        *models.ClassifierArtifact
}

// RunAnalyses executes every analysis over an immutable cleaned table.
// Statistical preconditions surface as errors instead of producing a
// misleading number.
func RunAnalyses(rows []models.ServiceRequest, report models.CleanReport) (*AnalysisResults, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("analysis: cleaned table is empty")
	}
	results := &AnalysisResults{
		Clean:             report,
		Overall:           OverallStats(rows),
		ByBorough:         StatsByBorough(rows),
		ByChannel:         StatsByChannel(rows),
		ByComplaintType:   StatsByComplaintType(rows),
		ChannelComparison: ChannelComparison(rows),
		Seasonality:       VolumeSeasonality(rows),
	}

	test, err := BoroughTest(rows)
	if err != nil {
		return nil, err
	}
	results.BoroughTest = test

	artifact, err := TrainClassifier(rows)
	if err != nil {
		return nil, err
	}
	results.Classifier = artifact
	return results, nil
}

func rawSnapshotName(year int) string     { return fmt.Sprintf("raw %d", year) }
func cleanedSnapshotName(year int) string { return fmt.Sprintf("cleaned %d", year) }
func sampleSnapshotName(year int) string  { return fmt.Sprintf("sample %d", year) }

// runFetch pulls one calendar year from Socrata and writes the raw snapshot.
func runFetch(cfg config.Config, year, pageSize int, compress bool) error {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	fetcher := NewFetcher(cfg)
	if cfg.AppToken == "" {
		log.Println("no app token configured, requests may be throttled")
	}
	raw, err := fetcher.FetchYear(year, pageSize)
	if err != nil {
		return err
	}
	path, err := WriteRawSnapshot(SnapshotPath(cfg.DataDir, rawSnapshotName(year)), raw, compress)
	if err != nil {
		return err
	}
	log.Printf("raw snapshot: %d rows -> %s", len(raw), path)
	return nil
}

// runClean reads the raw snapshot, cleans it, writes the cleaned and sample
// snapshots, and records the run in the audit store.
func runClean(cfg config.Config, year int) error {
	raw, err := ReadRawSnapshot(findRawSnapshot(cfg, year))
	if err != nil {
		return err
	}
	rows, report := Clean(raw)
	if err := WriteCleanedSnapshot(SnapshotPath(cfg.DataDir, cleanedSnapshotName(year)), rows); err != nil {
		return err
	}
	if err := WriteSampleSnapshot(SnapshotPath(cfg.DataDir, sampleSnapshotName(year)), rows); err != nil {
		return err
	}

	store, err := OpenAuditStore(cfg.DBPath)
	if err != nil {
		return err
	}
	periodStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	runID, err := store.RecordRun(periodStart, periodStart.AddDate(1, 0, 0), report, OverallStats(rows).Median)
	if err != nil {
		return err
	}
	log.Printf("cleaned snapshot: %d rows, audit run %s", len(rows), runID)
	return nil
}

func findRawSnapshot(cfg config.Config, year int) string {
	path := SnapshotPath(cfg.DataDir, rawSnapshotName(year))
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return path + ".lz4"
}

func loadCleaned(cfg config.Config, year int) ([]models.ServiceRequest, error) {
	return ReadCleanedSnapshot(SnapshotPath(cfg.DataDir, cleanedSnapshotName(year)))
}

// runReport runs every analysis and writes report.md, the PNG charts and the
// interactive HTML page into the output directory.
func runReport(cfg config.Config, year int) error {
	rows, err := loadCleaned(cfg, year)
	if err != nil {
		return err
	}
	// drop counts come from the audit store; the cleaned snapshot itself
	// no longer carries them
	report := models.CleanReport{InputRows: len(rows), OutputRows: len(rows)}
	if store, err := OpenAuditStore(cfg.DBPath); err == nil {
		if run, err := store.LastRun(); err == nil {
			report = cleanReportFromRun(run, store)
		}
	}

	results, err := RunAnalyses(rows, report)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return err
	}
	if err := WriteMarkdownReport(cfg.OutputDir, results); err != nil {
		return err
	}
	if err := writeCharts(cfg.OutputDir, rows, results); err != nil {
		return err
	}
	log.Printf("report written to %s", cfg.OutputDir)
	return nil
}

func cleanReportFromRun(run AnalysisRun, store *AuditStore) models.CleanReport {
	report := models.CleanReport{
		InputRows:            run.RowsFetched,
		OutputRows:           run.RowsCleaned,
		WinsorizationCeiling: run.WinsorizationCeiling,
	}
	if counts, err := store.StepCounts(run.ID); err == nil {
		report.MissingRequiredField = counts["missing_required_field"]
		report.InvalidDuration = counts["invalid_duration"]
		report.Duplicates = counts["duplicate_unique_key"]
		report.UnmappedChannels = counts["unmapped_channel_to_web"]
		report.WinsorizedRows = counts["winsorized_above_ceiling"]
	}
	return report
}

func writeCharts(outputDir string, rows []models.ServiceRequest, results *AnalysisResults) error {
	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = r.ResponseTimeDays
	}
	histogram, err := plot.HistogramPNG("Response time distribution (days)", values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "response_time_histogram.png"), histogram, 0644); err != nil {
		return err
	}

	boroughs, medians := medianSeries(results.ByBorough)
	bars, err := plot.BarPNG(plot.NewCategoryData(boroughs, medians, "Median days", "Median response time by borough"))
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "median_by_borough.png"), bars, 0644); err != nil {
		return err
	}

	months, volumes := monthlyVolumeSeries(results.Seasonality)
	if len(months) > 0 {
		line, err := plot.LinePNG("Monthly complaint volume by borough", "Requests", months, volumes)
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(outputDir, "monthly_volume.png"), line, 0644); err != nil {
			return err
		}
	}

	sample := SampleRows(rows, SampleSnapshotSize)
	return plot.RenderInteractivePage(outputDir, results.ByBorough, results.Seasonality, coordinates(sample))
}

// monthlyVolumeSeries aligns every borough's volume series onto the union of
// observed months; missing months count zero.
func monthlyVolumeSeries(seasonality []models.BoroughSeasonality) ([]string, map[string][]float64) {
	monthSet := map[string]bool{}
	for _, s := range seasonality {
		for _, p := range s.Series {
			monthSet[p.Month] = true
		}
	}
	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	index := make(map[string]int, len(months))
	for i, m := range months {
		index[m] = i
	}
	series := make(map[string][]float64, len(seasonality))
	for _, s := range seasonality {
		volumes := make([]float64, len(months))
		for _, p := range s.Series {
			volumes[index[p.Month]] = float64(p.Volume)
		}
		series[s.Borough] = volumes
	}
	return months, series
}

func medianSeries(stats map[string]models.AggregateStat) ([]string, []float64) {
	keys := sortedStatKeys(stats)
	medians := make([]float64, len(keys))
	for i, k := range keys {
		medians[i] = stats[k].Median
	}
	return keys, medians
}

func coordinates(rows []models.ServiceRequest) []plot.Coordinate {
	var coords []plot.Coordinate
	for _, r := range rows {
		if r.HasCoordinates {
			coords = append(coords, plot.Coordinate{
				Longitude: r.Longitude,
				Latitude:  r.Latitude,
				Label:     r.ComplaintType,
			})
		}
	}
	return coords
}
