package models

import "time"

// Boroughs is the canonical set accepted after cleaning. Rows with any other
// borough value (including "Unspecified") are dropped.
var Boroughs = []string{"Bronx", "Brooklyn", "Manhattan", "Queens", "Staten Island"}

// Channels is the normalized intake-channel set.
var Channels = []string{"Phone", "Web", "App"}

// RawRecord is one 311 row exactly as the Socrata API returns it, all fields
// as strings. Column names follow the erm2-nwe9 dataset schema.
type RawRecord struct {
	UniqueKey     string `json:"unique_key" dataframe:"unique_key"`
	CreatedDate   string `json:"created_date" dataframe:"created_date"`
	ClosedDate    string `json:"closed_date" dataframe:"closed_date"`
	ComplaintType string `json:"complaint_type" dataframe:"complaint_type"`
	Descriptor    string `json:"descriptor" dataframe:"descriptor"`
	Agency        string `json:"agency" dataframe:"agency"`
	Borough       string `json:"borough" dataframe:"borough"`
	IncidentZip   string `json:"incident_zip" dataframe:"incident_zip"`
	Channel       string `json:"open_data_channel_type" dataframe:"open_data_channel_type"`
	Latitude      string `json:"latitude" dataframe:"latitude"`
	Longitude     string `json:"longitude" dataframe:"longitude"`
}

// ServiceRequest is one cleaned 311 complaint. The cleaned table is an
// immutable snapshot: rows are built by the cleaner and never mutated by the
// analyses that consume them.
type ServiceRequest struct {
	UniqueKey        string
	CreatedAt        time.Time
	ClosedAt         time.Time
	ResponseTimeDays float64
	ComplaintType    string
	Descriptor       string
	Agency           string
	Borough          string
	IncidentZip      string
	Channel          string
	Latitude         float64
	Longitude        float64
	HasCoordinates   bool
	// TopComplaintType marks rows whose complaint type is in the global
	// top 10 by frequency. Comparative analyses filter on it; the rows
	// themselves are kept.
	TopComplaintType bool
}

// AggregateStat describes the response-time distribution of one group.
type AggregateStat struct {
	Count  int64
	Mean   float64
	Median float64
	Std    float64
	Min    float64
	Max    float64
}

// HypothesisTestResult is the outcome of a Kruskal-Wallis H-test.
type HypothesisTestResult struct {
	H      float64
	DF     int
	PValue float64
}

type FeatureImportance struct {
	Feature    string
	Importance float64
}

type Prediction struct {
	UniqueKey string
	Actual    bool
	Score     float64
}

// ClassifierArtifact holds everything the modeling analysis produces. It is
// ephemeral: nothing here is persisted beyond the report.
type ClassifierArtifact struct {
	Threshold   float64 // global median response time defining the slow label
	TrainRows   int
	TestRows    int
	AUC         float64
	Importances []FeatureImportance // ranked, largest first
	Predicted   []Prediction        // held-out rows
}

// CleanReport counts what each cleaning step dropped or rewrote, so that
// exclusions stay reproducible instead of silent.
type CleanReport struct {
	InputRows            int
	MissingRequiredField int
	InvalidDuration      int
	Duplicates           int
	UnmappedChannels     int
	WinsorizedRows       int
	WinsorizationCeiling float64
	TopComplaintTypes    []string
	OutputRows           int
}

// MonthlyPoint is one calendar-month bucket of a borough volume series.
type MonthlyPoint struct {
	Month              string // "2006-01"
	Volume             int
	MedianResponseDays float64
}

// BoroughSeasonality relates complaint volume to median response time for a
// single borough across months. Correlation is the Spearman rank correlation
// between the two series, NaN when fewer than three months are available.
type BoroughSeasonality struct {
	Borough     string
	Series      []MonthlyPoint
	Correlation float64
}
