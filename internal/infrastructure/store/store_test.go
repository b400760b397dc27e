package store_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/testutil/fixtures"
)

func testModelInfo() store.ModelInfo {
	return store.ModelInfo{
		Algorithm:      "gradient_boosted_trees",
		Rounds:         10,
		TreeCount:      10,
		MaxDepth:       3,
		LearningRate:   0.3,
		FeatureNames:   []string{"amount", "oauth_valid", "two_fa_passed", "region_Midwest", "region_South", "region_West"},
		BaseScore:      -2.197,
		TrainLoss:      []float64{0.32, 0.29, 0.27},
		TrainPositives: 100,
		TrainNegatives: 900,
		TrainedAt:      time.Now(),
		Elapsed:        "120ms",
	}
}

func TestDatasetStore_PublishAndSnapshot(t *testing.T) {
	s := store.NewDatasetStore(nil)

	assert.False(t, s.Ready())
	assert.Nil(t, s.Snapshot())

	dataset := fixtures.BuildDataset(t,
		transaction.RegionNortheast,
		transaction.RegionWest,
	)

	require.NoError(t, s.Publish(dataset, testModelInfo()))

	require.True(t, s.Ready())
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Same(t, dataset, snap.Dataset)
	assert.Equal(t, 10, snap.Model.TreeCount)
	assert.False(t, snap.PublishedAt.IsZero())
}

func TestDatasetStore_PublishRejectsNilDataset(t *testing.T) {
	s := store.NewDatasetStore(nil)

	err := s.Publish(nil, testModelInfo())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
	assert.False(t, s.Ready())
}

func TestDatasetStore_PublishIsWriteOnce(t *testing.T) {
	s := store.NewDatasetStore(nil)

	first := fixtures.BuildDataset(t, transaction.RegionSouth)
	require.NoError(t, s.Publish(first, testModelInfo()))

	second := fixtures.BuildDataset(t, transaction.RegionMidwest)
	err := s.Publish(second, testModelInfo())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInternal))

	// The original snapshot is untouched.
	snap := s.Snapshot()
	require.NotNil(t, snap)
	assert.Same(t, first, snap.Dataset)
}

func TestDatasetStore_SnapshotStableAcrossReads(t *testing.T) {
	s := store.NewDatasetStore(nil)

	dataset := fixtures.BuildDataset(t, transaction.RegionNortheast)
	require.NoError(t, s.Publish(dataset, testModelInfo()))

	a := s.Snapshot()
	b := s.Snapshot()
	assert.Same(t, a, b)
}
