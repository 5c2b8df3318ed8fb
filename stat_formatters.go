package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

var statTableHeader = table.Row{"Group", "Count", "Mean", "Median", "Std", "Min", "Max"}

// GenerateStatTable renders grouped stats as an ASCII table, groups sorted by
// name so the output is stable.
func GenerateStatTable(stats map[string]models.AggregateStat) string {
	t := statTableWriter(stats)
	return t.Render()
}

// GenerateStatTableMarkdown is GenerateStatTable in Markdown, for report.md.
func GenerateStatTableMarkdown(stats map[string]models.AggregateStat) string {
	t := statTableWriter(stats)
	return t.RenderMarkdown()
}

func statTableWriter(stats map[string]models.AggregateStat) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(statTableHeader)
	for _, k := range sortedStatKeys(stats) {
		s := stats[k]
		t.AppendRow(table.Row{
			k, s.Count,
			formatDays(s.Mean), formatDays(s.Median), formatDays(s.Std),
			formatDays(s.Min), formatDays(s.Max),
		})
	}
	t.SetStyle(table.StyleDefault)
	return t
}

// GenerateImportanceTableMarkdown renders the ranked feature importances.
func GenerateImportanceTableMarkdown(importances []models.FeatureImportance) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Rank", "Feature", "AUC drop when permuted"})
	for i, imp := range importances {
		t.AppendRow(table.Row{i + 1, imp.Feature, fmt.Sprintf("%.4f", imp.Importance)})
	}
	t.SetStyle(table.StyleDefault)
	return t.RenderMarkdown()
}

// GenerateSeasonalityTableMarkdown renders per-borough volume vs median
// response-time correlations.
func GenerateSeasonalityTableMarkdown(seasonality []models.BoroughSeasonality) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Borough", "Months", "Spearman (volume vs median)"})
	for _, s := range seasonality {
		corr := "n/a"
		if !math.IsNaN(s.Correlation) {
			corr = fmt.Sprintf("%.3f", s.Correlation)
		}
		t.AppendRow(table.Row{s.Borough, len(s.Series), corr})
	}
	t.SetStyle(table.StyleDefault)
	return t.RenderMarkdown()
}

// FormatTestResult summarizes a hypothesis test outcome in one line.
func FormatTestResult(name string, r models.HypothesisTestResult) string {
	return fmt.Sprintf("%s: H = %.2f, df = %d, p = %.2g", name, r.H, r.DF, r.PValue)
}

func formatDays(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func sortedStatKeys(stats map[string]models.AggregateStat) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
