package analytics

import (
	"context"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
)

// AllRegions is the query value selecting the entire dataset
const AllRegions = "All"

// Service defines the read path over the published dataset
type Service interface {
	// Regions returns the regions present in the dataset with record counts
	Regions(ctx context.Context) (*RegionsResult, error)
	// AmountHistogram buckets transaction amounts for the selected region
	AmountHistogram(ctx context.Context, q Query) (*HistogramChart, error)
	// AuthOutcomes returns two-FA shares grouped by OAuth validity
	AuthOutcomes(ctx context.Context, q Query) (*AuthOutcomeChart, error)
	// Records returns scored transactions for the selected region
	Records(ctx context.Context, q Query) ([]*transaction.Transaction, error)
	// ModelSummary returns the published model metadata
	ModelSummary(ctx context.Context) (*store.ModelInfo, error)
	// DatasetSummary returns aggregate statistics for the whole dataset
	DatasetSummary(ctx context.Context) (*transaction.Summary, error)
}

// SnapshotSource provides the frozen dataset snapshot
type SnapshotSource interface {
	// Snapshot returns the published snapshot, or nil before publish
	Snapshot() *store.Snapshot
}

// Query selects the subset a read operation runs over
type Query struct {
	// Region filters to one region; empty or "All" selects everything
	Region string
	// Limit caps the number of records returned; 0 uses the default
	Limit int
}

// RegionCount is one dropdown entry with its record count
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// RegionsResult lists the regions available for filtering
type RegionsResult struct {
	Regions []RegionCount `json:"regions"`
	Total   int           `json:"total"`
}

// HistogramBin is one amount bucket with its fraud-probability colouring
type HistogramBin struct {
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	Count           int     `json:"count"`
	MeanProbability float64 `json:"mean_probability"`
}

// HistogramChart is the amount distribution for one region selection
type HistogramChart struct {
	Region     string         `json:"region"`
	Bins       []HistogramBin `json:"bins"`
	BinWidth   float64        `json:"bin_width"`
	TotalCount int            `json:"total_count"`
}

// AuthOutcomeGroup is the two-FA breakdown for one OAuth validity bucket
type AuthOutcomeGroup struct {
	OAuthValid       bool    `json:"oauth_valid"`
	Count            int     `json:"count"`
	TwoFAPassedCount int     `json:"two_fa_passed_count"`
	TwoFAFailedCount int     `json:"two_fa_failed_count"`
	TwoFAPassedShare float64 `json:"two_fa_passed_share"`
	TwoFAFailedShare float64 `json:"two_fa_failed_share"`
}

// AuthOutcomeChart is the auth outcome proportions for one region selection
type AuthOutcomeChart struct {
	Region     string             `json:"region"`
	Groups     []AuthOutcomeGroup `json:"groups"`
	TotalCount int                `json:"total_count"`
}
