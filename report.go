package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WriteMarkdownReport renders report.md, the narrative skeleton the external
// presentation collaborator builds on. Every number in it comes straight from
// AnalysisResults; nothing is recomputed here.
func WriteMarkdownReport(outputDir string, results *AnalysisResults) error {
	path := filepath.Join(outputDir, "report.md")
	return os.WriteFile(path, []byte(BuildMarkdownReport(results)), 0644)
}

func BuildMarkdownReport(results *AnalysisResults) string {
	var b strings.Builder
	b.WriteString("# NYC 311 Service-Request Response Times\n\n")

	b.WriteString("## Data cleaning\n\n")
	c := results.Clean
	fmt.Fprintf(&b, "- input rows: %d, cleaned rows: %d\n", c.InputRows, c.OutputRows)
	fmt.Fprintf(&b, "- dropped for missing required fields: %d\n", c.MissingRequiredField)
	fmt.Fprintf(&b, "- dropped for non-positive durations: %d\n", c.InvalidDuration)
	fmt.Fprintf(&b, "- duplicate keys removed: %d\n", c.Duplicates)
	fmt.Fprintf(&b, "- raw channels defaulted to Web: %d\n", c.UnmappedChannels)
	fmt.Fprintf(&b, "- winsorized at %.2f days (99th percentile): %d rows clipped\n\n",
		c.WinsorizationCeiling, c.WinsorizedRows)

	b.WriteString("## Overall response time (days)\n\n")
	fmt.Fprintf(&b, "count %d, mean %.2f, median %.2f, std %.2f, min %.2f, max %.2f\n\n",
		results.Overall.Count, results.Overall.Mean, results.Overall.Median,
		results.Overall.Std, results.Overall.Min, results.Overall.Max)

	b.WriteString("## By borough\n\n")
	b.WriteString(GenerateStatTableMarkdown(results.ByBorough))
	b.WriteString("\n\n")
	b.WriteString(FormatTestResult("Kruskal-Wallis across boroughs", results.BoroughTest))
	b.WriteString("\n\n")

	b.WriteString("## By channel\n\n")
	b.WriteString(GenerateStatTableMarkdown(results.ByChannel))
	b.WriteString("\n\n")

	b.WriteString("## Top complaint types\n\n")
	b.WriteString(GenerateStatTableMarkdown(results.ByComplaintType))
	b.WriteString("\n\n")

	b.WriteString("## Channel comparison within top complaint types\n\n")
	types := make([]string, 0, len(results.ChannelComparison))
	for t := range results.ChannelComparison {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "### %s\n\n", t)
		b.WriteString(GenerateStatTableMarkdown(results.ChannelComparison[t]))
		b.WriteString("\n\n")
	}

	b.WriteString("## Volume vs response time by borough\n\n")
	b.WriteString(GenerateSeasonalityTableMarkdown(results.Seasonality))
	b.WriteString("\n\n")

	if results.Classifier != nil {
		a := results.Classifier
		b.WriteString("## Slow-response classifier\n\n")
		fmt.Fprintf(&b, "- slow = response time above the global median of %.2f days\n", a.Threshold)
		fmt.Fprintf(&b, "- train/test rows: %d/%d\n", a.TrainRows, a.TestRows)
		fmt.Fprintf(&b, "- held-out ROC-AUC: %.3f\n\n", a.AUC)
		b.WriteString(GenerateImportanceTableMarkdown(a.Importances))
		b.WriteString("\n")
	}
	return b.String()
}
