package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// highRiskThreshold marks scores counted as high risk
const highRiskThreshold = 0.9

// Registry holds all domain-specific metrics for the application
type Registry struct {
	meter metric.Meter

	// Pipeline Metrics
	PipelineStageDuration  metric.Float64Histogram
	PipelineSuccessCounter metric.Int64Counter
	PipelineFailureCounter metric.Int64Counter
	DatasetRecords         metric.Int64ObservableGauge
	DatasetFraudLabels     metric.Int64ObservableGauge

	// Model Metrics
	ScoreDistribution metric.Float64Histogram
	HighRiskCounter   metric.Int64Counter
	TrainLossGauge    metric.Float64ObservableGauge
	ModelTrees        metric.Int64ObservableGauge

	// API Metrics
	APIRequestDuration  metric.Float64Histogram
	APIRequestCounter   metric.Int64Counter
	ChartRequestCounter metric.Int64Counter

	// State for observable metrics
	mu            sync.RWMutex
	datasetSize   int64
	fraudLabels   int64
	lastTrainLoss float64
	treeCount     int64
}

// NewRegistry creates a new metrics registry with all domain metrics
func NewRegistry(meterName string) (*Registry, error) {
	meter := otel.Meter(meterName)
	r := &Registry{
		meter: meter,
	}

	if err := r.initPipelineMetrics(); err != nil {
		return nil, err
	}

	if err := r.initModelMetrics(); err != nil {
		return nil, err
	}

	if err := r.initAPIMetrics(); err != nil {
		return nil, err
	}

	return r, nil
}

// initPipelineMetrics initializes startup pipeline metrics
func (r *Registry) initPipelineMetrics() error {
	var err error

	// Stage duration histogram
	r.PipelineStageDuration, err = r.meter.Float64Histogram(
		"fraud.pipeline.stage_duration",
		metric.WithDescription("Duration of startup pipeline stages in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000, 10000),
	)
	if err != nil {
		return err
	}

	// Run counters
	r.PipelineSuccessCounter, err = r.meter.Int64Counter(
		"fraud.pipeline.success_total",
		metric.WithDescription("Total number of successful pipeline runs"),
	)
	if err != nil {
		return err
	}

	r.PipelineFailureCounter, err = r.meter.Int64Counter(
		"fraud.pipeline.failure_total",
		metric.WithDescription("Total number of failed pipeline runs"),
	)
	if err != nil {
		return err
	}

	// Dataset size gauges
	r.DatasetRecords, err = r.meter.Int64ObservableGauge(
		"fraud.dataset.records",
		metric.WithDescription("Number of records in the published dataset"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.datasetSize)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	r.DatasetFraudLabels, err = r.meter.Int64ObservableGauge(
		"fraud.dataset.fraud_labels",
		metric.WithDescription("Number of fraud-labeled records in the published dataset"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.fraudLabels)
			return nil
		}),
	)

	return err
}

// initModelMetrics initializes model and scoring metrics
func (r *Registry) initModelMetrics() error {
	var err error

	// Score distribution histogram
	r.ScoreDistribution, err = r.meter.Float64Histogram(
		"fraud.model.score",
		metric.WithDescription("Distribution of predicted fraud probabilities"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 0.9, 0.95, 0.99),
	)
	if err != nil {
		return err
	}

	// High risk counter
	r.HighRiskCounter, err = r.meter.Int64Counter(
		"fraud.model.high_risk_total",
		metric.WithDescription("Total number of records scored above the high-risk threshold"),
	)
	if err != nil {
		return err
	}

	// Final training loss
	r.TrainLossGauge, err = r.meter.Float64ObservableGauge(
		"fraud.model.train_loss",
		metric.WithDescription("Training log-loss after the final boosting round"),
		metric.WithFloat64Callback(func(ctx context.Context, o metric.Float64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.lastTrainLoss)
			return nil
		}),
	)
	if err != nil {
		return err
	}

	// Tree count
	r.ModelTrees, err = r.meter.Int64ObservableGauge(
		"fraud.model.trees",
		metric.WithDescription("Number of trees in the trained ensemble"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			r.mu.RLock()
			defer r.mu.RUnlock()
			o.Observe(r.treeCount)
			return nil
		}),
	)

	return err
}

// initAPIMetrics initializes API metrics
func (r *Registry) initAPIMetrics() error {
	var err error

	// API request duration
	r.APIRequestDuration, err = r.meter.Float64Histogram(
		"fraud.api.request_duration",
		metric.WithDescription("API request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 50, 100, 500, 1000, 5000),
	)
	if err != nil {
		return err
	}

	// API request counter
	r.APIRequestCounter, err = r.meter.Int64Counter(
		"fraud.api.request_total",
		metric.WithDescription("Total number of API requests"),
	)
	if err != nil {
		return err
	}

	// Chart request counter
	r.ChartRequestCounter, err = r.meter.Int64Counter(
		"fraud.api.chart_request_total",
		metric.WithDescription("Total number of chart data requests"),
	)

	return err
}

// Helper methods for updating observable metric values

// SetDatasetCounts sets the published dataset size gauges
func (r *Registry) SetDatasetCounts(records, fraudLabels int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasetSize = records
	r.fraudLabels = fraudLabels
}

// SetModelSummary sets the trained model gauges
func (r *Registry) SetModelSummary(trees int64, finalLoss float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.treeCount = trees
	r.lastTrainLoss = finalLoss
}

// Helper methods for recording metrics with common attribute patterns

// RecordPipelineStage records the duration of one pipeline stage
func (r *Registry) RecordPipelineStage(ctx context.Context, stage string, durationMS float64) {
	r.PipelineStageDuration.Record(ctx, durationMS, metric.WithAttributes(
		attribute.String("stage", stage),
	))
}

// RecordPipelineRun records the outcome of a full pipeline run
func (r *Registry) RecordPipelineRun(ctx context.Context, durationMS float64, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
	}

	r.PipelineStageDuration.Record(ctx, durationMS, metric.WithAttributes(
		attribute.String("stage", "total"),
	))

	if success {
		r.PipelineSuccessCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	} else {
		r.PipelineFailureCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordScore records one predicted fraud probability
func (r *Registry) RecordScore(ctx context.Context, probability float64) {
	r.ScoreDistribution.Record(ctx, probability)

	if probability >= highRiskThreshold {
		r.HighRiskCounter.Add(ctx, 1)
	}
}

// RecordAPIRequest records API request metrics
func (r *Registry) RecordAPIRequest(ctx context.Context, durationMS float64, method, path string, statusCode int) {
	attrs := []attribute.KeyValue{
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status_code", statusCode),
	}

	r.APIRequestDuration.Record(ctx, durationMS, metric.WithAttributes(attrs...))
	r.APIRequestCounter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordChartRequest records a chart data request
func (r *Registry) RecordChartRequest(ctx context.Context, chart, region string) {
	r.ChartRequestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("chart", chart),
		attribute.String("region", region),
	))
}
