package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	uuid "github.com/satori/go.uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Sagorika28/NYC-311-Service-Request-Exploration/domain/models"
)

// AnalysisRun is one pipeline execution: what period was pulled, how many
// rows survived cleaning, and the two global constants derived from the run.
type AnalysisRun struct {
	ID                   string `gorm:"primaryKey"`
	StartedAt            time.Time
	PeriodStart          time.Time
	PeriodEnd            time.Time
	RowsFetched          int
	RowsCleaned          int
	WinsorizationCeiling float64
	GlobalMedianDays     float64
}

// CleanStepAudit is the persisted drop count of a single cleaning step, so
// exclusions stay countable across runs.
type CleanStepAudit struct {
	ID      uint   `gorm:"primaryKey;autoIncrement"`
	RunID   string `gorm:"index"`
	Step    string
	Dropped int
}

// AuditStore records runs and their cleaning audit trail in a file-backed
// SQLite database.
type AuditStore struct {
	db *gorm.DB
}

func OpenAuditStore(path string) (*AuditStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("opening audit store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&AnalysisRun{}, &CleanStepAudit{}); err != nil {
		return nil, fmt.Errorf("migrating audit store: %w", err)
	}
	return &AuditStore{db: db}, nil
}

// RecordRun stores a run with its per-step drop counts and returns the run ID.
func (s *AuditStore) RecordRun(periodStart, periodEnd time.Time, report models.CleanReport, globalMedian float64) (string, error) {
	run := AnalysisRun{
		ID:                   uuid.NewV4().String(),
		StartedAt:            time.Now().UTC(),
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		RowsFetched:          report.InputRows,
		RowsCleaned:          report.OutputRows,
		WinsorizationCeiling: report.WinsorizationCeiling,
		GlobalMedianDays:     globalMedian,
	}
	steps := []CleanStepAudit{
		{RunID: run.ID, Step: "missing_required_field", Dropped: report.MissingRequiredField},
		{RunID: run.ID, Step: "invalid_duration", Dropped: report.InvalidDuration},
		{RunID: run.ID, Step: "duplicate_unique_key", Dropped: report.Duplicates},
		{RunID: run.ID, Step: "unmapped_channel_to_web", Dropped: report.UnmappedChannels},
		{RunID: run.ID, Step: "winsorized_above_ceiling", Dropped: report.WinsorizedRows},
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&run).Error; err != nil {
			return err
		}
		return tx.Create(&steps).Error
	})
	if err != nil {
		return "", fmt.Errorf("recording run: %w", err)
	}
	return run.ID, nil
}

// LastRun returns the most recently started run.
func (s *AuditStore) LastRun() (AnalysisRun, error) {
	var run AnalysisRun
	err := s.db.Order("started_at DESC").First(&run).Error
	return run, err
}

// StepCounts returns the per-step drop counts of a run.
func (s *AuditStore) StepCounts(runID string) (map[string]int, error) {
	var steps []CleanStepAudit
	if err := s.db.Where("run_id = ?", runID).Find(&steps).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(steps))
	for _, step := range steps {
		counts[step.Step] = step.Dropped
	}
	return counts, nil
}
