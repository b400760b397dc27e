package store

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
)

// ModelInfo summarizes the trained classifier for the read endpoints
type ModelInfo struct {
	Algorithm      string    `json:"algorithm"`
	Rounds         int       `json:"rounds"`
	TreeCount      int       `json:"tree_count"`
	MaxDepth       int       `json:"max_depth"`
	LearningRate   float64   `json:"learning_rate"`
	FeatureNames   []string  `json:"feature_names"`
	BaseScore      float64   `json:"base_score"`
	TrainLoss      []float64 `json:"train_loss"`
	TrainPositives int       `json:"train_positives"`
	TrainNegatives int       `json:"train_negatives"`
	TrainedAt      time.Time `json:"trained_at"`
	Elapsed        string    `json:"elapsed"`
}

// Snapshot is the frozen world the read path serves: one scored dataset and
// the model that scored it
type Snapshot struct {
	Dataset     *transaction.Dataset `json:"-"`
	Model       ModelInfo            `json:"model"`
	PublishedAt time.Time            `json:"published_at"`
}

// DatasetStore holds the single published snapshot. Publish succeeds exactly
// once; afterwards every reader sees the same immutable data, so the read
// path needs no copying.
type DatasetStore struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	logger   *zap.Logger
}

func NewDatasetStore(logger *zap.Logger) *DatasetStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasetStore{logger: logger}
}

// Publish freezes the scored dataset and model metadata
func (s *DatasetStore) Publish(dataset *transaction.Dataset, model ModelInfo) error {
	if dataset == nil {
		return errors.NewValidationError("NIL_DATASET", "dataset is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil {
		return errors.NewInternalError("dataset already published")
	}

	s.snapshot = &Snapshot{
		Dataset:     dataset,
		Model:       model,
		PublishedAt: time.Now(),
	}

	s.logger.Info("dataset published",
		zap.Int("records", dataset.Len()),
		zap.Int("fraud_labels", dataset.FraudCount()),
		zap.Int("model_trees", model.TreeCount),
	)

	return nil
}

// Snapshot returns the published world, or nil before the pipeline finishes
func (s *DatasetStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Ready reports whether a dataset has been published
func (s *DatasetStore) Ready() bool {
	return s.Snapshot() != nil
}
