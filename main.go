package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("config:", err)
	}

	var (
		year     int
		pageSize int
		compress bool
	)

	rootCmd := &cobra.Command{
		Use:   "nyc311",
		Short: "NYC 311 service-request response-time analysis pipeline",
	}
	rootCmd.PersistentFlags().IntVar(&year, "year", time.Now().Year()-1, "calendar year to analyze")

	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download one year of 311 records and write the raw snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cfg, year, pageSize, compress)
		},
	}
	fetchCmd.Flags().IntVar(&pageSize, "page-size", DefaultPageSize, "rows per API request")
	fetchCmd.Flags().BoolVar(&compress, "compress", false, "lz4-compress the raw snapshot")

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean the raw snapshot into the analysis table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cfg, year)
		},
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print grouped statistics and the borough hypothesis test",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadCleaned(cfg, year)
			if err != nil {
				return err
			}
			fmt.Println("By borough:")
			fmt.Println(GenerateStatTable(StatsByBorough(rows)))
			fmt.Println("\nBy channel:")
			fmt.Println(GenerateStatTable(StatsByChannel(rows)))
			fmt.Println("\nTop complaint types:")
			fmt.Println(GenerateStatTable(StatsByComplaintType(rows)))
			fmt.Println("\nBy borough and channel:")
			fmt.Println(GenerateStatTable(StatsByBoroughChannel(rows)))
			test, err := BoroughTest(rows)
			if err != nil {
				return err
			}
			fmt.Println("\n" + FormatTestResult("Kruskal-Wallis across boroughs", test))
			return nil
		},
	}

	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Train the slow-response classifier and print its evaluation",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadCleaned(cfg, year)
			if err != nil {
				return err
			}
			artifact, err := TrainClassifier(rows)
			if err != nil {
				return err
			}
			fmt.Printf("slow threshold: %.2f days\n", artifact.Threshold)
			fmt.Printf("train/test rows: %d/%d\n", artifact.TrainRows, artifact.TestRows)
			fmt.Printf("held-out ROC-AUC: %.3f\n\n", artifact.AUC)
			fmt.Println(GenerateImportanceTableMarkdown(artifact.Importances))
			return nil
		},
	}

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Run all analyses and write report.md plus charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cfg, year)
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch, clean and report in one pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runFetch(cfg, year, pageSize, compress); err != nil {
				return err
			}
			if err := runClean(cfg, year); err != nil {
				return err
			}
			return runReport(cfg, year)
		},
	}
	runCmd.Flags().IntVar(&pageSize, "page-size", DefaultPageSize, "rows per API request")
	runCmd.Flags().BoolVar(&compress, "compress", false, "lz4-compress the raw snapshot")

	rootCmd.AddCommand(fetchCmd, cleanCmd, analyzeCmd, modelCmd, reportCmd, runCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
