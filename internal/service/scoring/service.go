package scoring

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/boost"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/synth"
)

// baseFeatureNames are the non-categorical model inputs, in column order.
// Region one-hot columns follow them.
var baseFeatureNames = []string{"amount", "oauth_valid", "two_fa_passed"}

// service implements the Service interface
type service struct {
	generator Generator
	publisher Publisher
	params    synth.Params
	training  boost.Config
	logger    *zap.Logger
}

// NewService creates a new pipeline service
func NewService(generator Generator, publisher Publisher, params synth.Params, training boost.Config, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &service{
		generator: generator,
		publisher: publisher,
		params:    params,
		training:  training,
		logger:    logger,
	}
}

// Run executes the startup pipeline. The dashboard calls this exactly once
// before serving; everything it publishes is immutable afterwards.
func (s *service) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	stageStart := time.Now()
	dataset, err := s.generator.Generate(ctx, s.params)
	if err != nil {
		return nil, err
	}
	result.addStage(StageGenerate, time.Since(stageStart))

	s.logger.Info("dataset generated",
		zap.Int("records", dataset.Len()),
		zap.Int("fraud_labels", dataset.FraudCount()),
	)

	stageStart = time.Now()
	encoder := boost.NewEncoder()
	if err := encoder.Fit(regionVocabulary(s.params)); err != nil {
		return nil, err
	}

	features, labels, err := buildFeatures(dataset, encoder)
	if err != nil {
		return nil, err
	}
	result.addStage(StageEncode, time.Since(stageStart))

	stageStart = time.Now()
	model, err := boost.Train(ctx, features, labels, s.training)
	if err != nil {
		return nil, err
	}
	result.addStage(StageTrain, time.Since(stageStart))

	losses := model.TrainLosses()
	s.logger.Info("model trained",
		zap.Int("trees", len(model.Trees())),
		zap.Float64("base_score", model.BaseScore()),
		zap.Float64("final_loss", losses[len(losses)-1]),
	)

	stageStart = time.Now()
	for i, txn := range dataset.Records() {
		p := model.PredictProba(features.Row(i))
		if err := txn.ApplyScore(p); err != nil {
			return nil, errors.NewInternalError("failed to apply fraud score").WithCause(err)
		}
	}
	result.addStage(StageScore, time.Since(stageStart))

	positives := dataset.FraudCount()
	info := store.ModelInfo{
		Algorithm:      AlgorithmName,
		Rounds:         s.training.Rounds,
		TreeCount:      len(model.Trees()),
		MaxDepth:       s.training.MaxDepth,
		LearningRate:   s.training.LearningRate,
		FeatureNames:   features.Names(),
		BaseScore:      model.BaseScore(),
		TrainLoss:      losses,
		TrainPositives: positives,
		TrainNegatives: dataset.Len() - positives,
		TrainedAt:      time.Now(),
		Elapsed:        time.Since(start).Round(time.Millisecond).String(),
	}

	stageStart = time.Now()
	if err := s.publisher.Publish(dataset, info); err != nil {
		return nil, err
	}
	result.addStage(StagePublish, time.Since(stageStart))

	result.Dataset = dataset
	result.Model = info
	result.Elapsed = time.Since(start)

	s.logger.Info("pipeline complete",
		zap.Int("records", dataset.Len()),
		zap.Int("trees", info.TreeCount),
		zap.Duration("elapsed", result.Elapsed),
	)

	return result, nil
}

// regionVocabulary returns the configured regions as encoder categories.
// The first region is the reference level dropped from the one-hot columns.
func regionVocabulary(params synth.Params) []string {
	vocab := make([]string, len(params.Regions))
	for i, r := range params.Regions {
		vocab[i] = r.String()
	}
	return vocab
}

// buildFeatures assembles the training matrix and label vector from the
// dataset. Row order matches dataset order so scores map back by index.
func buildFeatures(dataset *transaction.Dataset, encoder *boost.Encoder) (*boost.Matrix, []float64, error) {
	names := make([]string, 0, len(baseFeatureNames)+encoder.Width())
	names = append(names, baseFeatureNames...)
	names = append(names, encoder.FeatureNames("region")...)

	features := boost.NewMatrix(names)
	labels := make([]float64, 0, dataset.Len())

	for _, txn := range dataset.Records() {
		regionVec, err := encoder.Transform(txn.Region.String())
		if err != nil {
			return nil, nil, err
		}

		row := make([]float64, 0, len(names))
		row = append(row, txn.AmountValue(), boolToFloat(txn.OAuthValid), boolToFloat(txn.TwoFAPassed))
		row = append(row, regionVec...)

		if err := features.Append(row); err != nil {
			return nil, nil, err
		}
		labels = append(labels, boolToFloat(txn.FraudLabel))
	}

	return features, labels, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
