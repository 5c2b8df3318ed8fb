package main

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

func TestGenerateStatTable(t *testing.T) {
	stats := map[string]models.AggregateStat{
		"Queens":   {Count: 10, Mean: 2.5, Median: 2.0, Std: 0.5, Min: 1, Max: 4},
		"Brooklyn": {Count: 20, Mean: 3.125, Median: 3.0, Std: 1.0, Min: 0.5, Max: 8},
	}
	out := GenerateStatTable(stats)
	assert.Contains(t, out, "GROUP")
	assert.Contains(t, out, "Queens")
	assert.Contains(t, out, "Brooklyn")
	assert.Contains(t, out, "3.125")

	// groups sorted by name regardless of map iteration order
	assert.Less(t, strings.Index(out, "Brooklyn"), strings.Index(out, "Queens"))
	assert.Equal(t, out, GenerateStatTable(stats))
}

func TestGenerateStatTableMarkdown(t *testing.T) {
	stats := map[string]models.AggregateStat{
		"Phone": {Count: 5, Mean: 1.5, Median: 1.5, Min: 1, Max: 2},
	}
	out := GenerateStatTableMarkdown(stats)
	assert.Contains(t, out, "| Phone |")
	assert.Contains(t, out, "1.500")
}

func TestGenerateImportanceTableMarkdown(t *testing.T) {
	out := GenerateImportanceTableMarkdown([]models.FeatureImportance{
		{Feature: "channel", Importance: 0.21},
		{Feature: "borough", Importance: 0.034},
	})
	assert.Contains(t, out, "| 1 | channel | 0.2100 |")
	assert.Contains(t, out, "| 2 | borough | 0.0340 |")
}

func TestGenerateSeasonalityTableMarkdown(t *testing.T) {
	out := GenerateSeasonalityTableMarkdown([]models.BoroughSeasonality{
		{Borough: "Bronx", Correlation: 0.75, Series: make([]models.MonthlyPoint, 12)},
		{Borough: "Queens", Correlation: math.NaN(), Series: make([]models.MonthlyPoint, 2)},
	})
	assert.Contains(t, out, "| Bronx | 12 | 0.750 |")
	assert.Contains(t, out, "| Queens | 2 | n/a |")
}

func TestFormatTestResult(t *testing.T) {
	line := FormatTestResult("borough", models.HypothesisTestResult{H: 52.537, DF: 4, PValue: 1.07e-10})
	assert.Equal(t, "borough: H = 52.54, df = 4, p = 1.1e-10", line)
}

func TestSortedStatKeys(t *testing.T) {
	stats := map[string]models.AggregateStat{"c": {}, "a": {}, "b": {}}
	require.Equal(t, []string{"a", "b", "c"}, sortedStatKeys(stats))
}
