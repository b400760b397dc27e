package analytics

import (
	"context"
	"strings"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
)

const (
	defaultHistogramBins = 20
	defaultRecordsLimit  = 100
	maxRecordsLimit      = 1000
)

// service implements the Service interface
type service struct {
	source       SnapshotSource
	bins         int
	recordsLimit int
}

// NewService creates a new analytics service
func NewService(source SnapshotSource, histogramBins, recordsLimit int) Service {
	if histogramBins <= 0 {
		histogramBins = defaultHistogramBins
	}
	if recordsLimit <= 0 {
		recordsLimit = defaultRecordsLimit
	}

	return &service{
		source:       source,
		bins:         histogramBins,
		recordsLimit: recordsLimit,
	}
}

// Regions returns the regions present in the dataset with record counts
func (s *service) Regions(ctx context.Context) (*RegionsResult, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	summary := snap.Dataset.Summary()
	present := snap.Dataset.Regions()

	regions := make([]RegionCount, 0, len(present))
	for _, r := range present {
		regions = append(regions, RegionCount{
			Region: r.String(),
			Count:  summary.ByRegion[r],
		})
	}

	return &RegionsResult{
		Regions: regions,
		Total:   summary.TotalCount,
	}, nil
}

// AmountHistogram buckets transaction amounts for the selected region
func (s *service) AmountHistogram(ctx context.Context, q Query) (*HistogramChart, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	records, label, err := s.filter(snap, q.Region)
	if err != nil {
		return nil, err
	}

	chart := &HistogramChart{
		Region:     label,
		Bins:       []HistogramBin{},
		TotalCount: len(records),
	}
	if len(records) == 0 {
		return chart, nil
	}

	min, max := records[0].AmountValue(), records[0].AmountValue()
	for _, txn := range records[1:] {
		v := txn.AmountValue()
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	width := (max - min) / float64(s.bins)
	if width <= 0 {
		// All amounts identical; everything lands in the first bin.
		width = 1
	}

	counts := make([]int, s.bins)
	probSums := make([]float64, s.bins)
	for _, txn := range records {
		idx := int((txn.AmountValue() - min) / width)
		if idx >= s.bins {
			idx = s.bins - 1
		}
		counts[idx]++
		probSums[idx] += txn.ProbabilityValue()
	}

	chart.BinWidth = width
	chart.Bins = make([]HistogramBin, s.bins)
	for i := range chart.Bins {
		bin := HistogramBin{
			Min:   min + width*float64(i),
			Max:   min + width*float64(i+1),
			Count: counts[i],
		}
		if counts[i] > 0 {
			bin.MeanProbability = probSums[i] / float64(counts[i])
		}
		chart.Bins[i] = bin
	}

	return chart, nil
}

// AuthOutcomes returns two-FA shares grouped by OAuth validity
func (s *service) AuthOutcomes(ctx context.Context, q Query) (*AuthOutcomeChart, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	records, label, err := s.filter(snap, q.Region)
	if err != nil {
		return nil, err
	}

	type tally struct {
		passed int
		failed int
	}
	var valid, invalid tally

	for _, txn := range records {
		t := &valid
		if !txn.OAuthValid {
			t = &invalid
		}
		if txn.TwoFAPassed {
			t.passed++
		} else {
			t.failed++
		}
	}

	chart := &AuthOutcomeChart{
		Region:     label,
		Groups:     make([]AuthOutcomeGroup, 0, 2),
		TotalCount: len(records),
	}

	for _, g := range []struct {
		oauthValid bool
		t          tally
	}{
		{true, valid},
		{false, invalid},
	} {
		group := AuthOutcomeGroup{
			OAuthValid:       g.oauthValid,
			Count:            g.t.passed + g.t.failed,
			TwoFAPassedCount: g.t.passed,
			TwoFAFailedCount: g.t.failed,
		}
		if group.Count > 0 {
			group.TwoFAPassedShare = float64(g.t.passed) / float64(group.Count)
			group.TwoFAFailedShare = float64(g.t.failed) / float64(group.Count)
		}
		chart.Groups = append(chart.Groups, group)
	}

	return chart, nil
}

// Records returns scored transactions for the selected region
func (s *service) Records(ctx context.Context, q Query) ([]*transaction.Transaction, error) {
	if q.Limit < 0 {
		return nil, errors.NewValidationError("INVALID_LIMIT", "limit must not be negative")
	}

	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	records, _, err := s.filter(snap, q.Region)
	if err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = s.recordsLimit
	}
	if limit > maxRecordsLimit {
		limit = maxRecordsLimit
	}
	if limit > len(records) {
		limit = len(records)
	}

	result := make([]*transaction.Transaction, limit)
	copy(result, records[:limit])
	return result, nil
}

// ModelSummary returns the published model metadata
func (s *service) ModelSummary(ctx context.Context) (*store.ModelInfo, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	model := snap.Model
	return &model, nil
}

// DatasetSummary returns aggregate statistics for the whole dataset
func (s *service) DatasetSummary(ctx context.Context) (*transaction.Summary, error) {
	snap, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	summary := snap.Dataset.Summary()
	return &summary, nil
}

// snapshot fetches the published snapshot, failing when the pipeline has
// not completed yet
func (s *service) snapshot() (*store.Snapshot, error) {
	snap := s.source.Snapshot()
	if snap == nil {
		return nil, errors.ErrDatasetNotFound
	}
	return snap, nil
}

// filter resolves the region query to a record subset and display label.
// An unrecognized region is a validation error; a recognized region with no
// records yields an empty subset.
func (s *service) filter(snap *store.Snapshot, region string) ([]*transaction.Transaction, string, error) {
	trimmed := strings.TrimSpace(region)
	if trimmed == "" || strings.EqualFold(trimmed, AllRegions) {
		return snap.Dataset.Records(), AllRegions, nil
	}

	r, err := transaction.ParseRegion(trimmed)
	if err != nil {
		return nil, "", err
	}

	return snap.Dataset.FilterByRegion(r), r.String(), nil
}
