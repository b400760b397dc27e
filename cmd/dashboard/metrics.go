package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/service/scoring"
)

// Prometheus metrics for the startup pipeline. The pipeline runs exactly once
// per process, so stage timings and dataset shape are gauges rather than
// histograms.

var (
	// Pipeline metrics
	pipelineStageDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fraud",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each startup pipeline stage",
		},
		[]string{"stage"},
	)

	pipelineElapsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraud",
			Subsystem: "pipeline",
			Name:      "elapsed_seconds",
			Help:      "Total startup pipeline duration",
		},
	)

	datasetRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraud",
			Subsystem: "dataset",
			Name:      "records_total",
			Help:      "Number of synthesized transactions",
		},
	)

	datasetFraudLabels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraud",
			Subsystem: "dataset",
			Name:      "fraud_labels_total",
			Help:      "Number of transactions labeled fraudulent",
		},
	)

	// Model metrics
	modelTrees = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraud",
			Subsystem: "model",
			Name:      "trees_total",
			Help:      "Number of trees in the trained ensemble",
		},
	)

	modelFinalTrainLoss = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraud",
			Subsystem: "model",
			Name:      "final_train_loss",
			Help:      "Training log loss after the final boosting round",
		},
	)

	modelScoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "fraud",
			Subsystem: "model",
			Name:      "score_distribution",
			Help:      "Distribution of fraud probabilities over the dataset",
			Buckets:   prometheus.LinearBuckets(0.05, 0.05, 19),
		},
	)
)

// recordPipelineMetrics publishes the one-shot pipeline result to Prometheus
func recordPipelineMetrics(result *scoring.Result) {
	for _, stage := range result.Stages {
		pipelineStageDuration.WithLabelValues(string(stage.Stage)).Set(stage.Duration.Seconds())
	}
	pipelineElapsed.Set(result.Elapsed.Seconds())

	datasetRecords.Set(float64(result.Dataset.Len()))
	datasetFraudLabels.Set(float64(result.Dataset.FraudCount()))

	modelTrees.Set(float64(result.Model.TreeCount))
	if n := len(result.Model.TrainLoss); n > 0 {
		modelFinalTrainLoss.Set(result.Model.TrainLoss[n-1])
	}

	for _, txn := range result.Dataset.Records() {
		modelScoreDistribution.Observe(txn.ProbabilityValue())
	}
}
