package instrumentation

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/errors"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/telemetry"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/metrics"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/service/scoring"
)

// PipelineTracedService wraps the scoring pipeline with OpenTelemetry instrumentation
type PipelineTracedService struct {
	service scoring.Service
	tracer  telemetry.TracerInterface
	metrics *metrics.Registry
}

// NewPipelineTracedService creates a new instrumented pipeline service
func NewPipelineTracedService(service scoring.Service, tracer telemetry.TracerInterface, registry *metrics.Registry) *PipelineTracedService {
	return &PipelineTracedService{
		service: service,
		tracer:  tracer,
		metrics: registry,
	}
}

// Run instruments a full pipeline run
func (s *PipelineTracedService) Run(ctx context.Context) (*scoring.Result, error) {
	ctx, span := s.tracer.StartSpanWithAttributes(ctx, "pipeline.Run", map[string]interface{}{
		"span.kind": "internal",
		"component": "pipeline",
	})
	defer span.End()

	startTime := time.Now()

	result, err := s.service.Run(ctx)

	elapsedMS := float64(time.Since(startTime)) / float64(time.Millisecond)

	if err != nil {
		s.tracer.RecordError(span, err, "Pipeline run failed")
		s.tracer.AddEvent(span, "pipeline_failed", map[string]interface{}{
			"error.type": getErrorType(err),
		})

		s.metrics.RecordPipelineRun(ctx, elapsedMS, false)
		return nil, err
	}

	// Per-stage timings come back on the result, so stage metrics and span
	// events are recorded here rather than inside the service.
	for _, timing := range result.Stages {
		stageMS := float64(timing.Duration) / float64(time.Millisecond)
		s.metrics.RecordPipelineStage(ctx, string(timing.Stage), stageMS)
		s.tracer.AddEvent(span, "stage_complete", map[string]interface{}{
			"stage":       string(timing.Stage),
			"duration_ms": stageMS,
		})
	}

	for _, txn := range result.Dataset.Records() {
		s.metrics.RecordScore(ctx, txn.ProbabilityValue())
	}

	s.metrics.SetDatasetCounts(int64(result.Dataset.Len()), int64(result.Dataset.FraudCount()))

	var finalLoss float64
	if n := len(result.Model.TrainLoss); n > 0 {
		finalLoss = result.Model.TrainLoss[n-1]
	}
	s.metrics.SetModelSummary(int64(result.Model.TreeCount), finalLoss)

	s.metrics.RecordPipelineRun(ctx, elapsedMS, true)

	s.tracer.SetAttributes(span, map[string]interface{}{
		"dataset.records":      result.Dataset.Len(),
		"dataset.fraud_labels": result.Dataset.FraudCount(),
		"model.trees":          result.Model.TreeCount,
		"model.base_score":     result.Model.BaseScore,
		"pipeline.elapsed_ms":  elapsedMS,
	})

	s.tracer.AddEvent(span, "dataset_published", map[string]interface{}{
		"records":    result.Dataset.Len(),
		"elapsed_ms": elapsedMS,
	})

	return result, nil
}

// getErrorType categorizes errors for better observability
func getErrorType(err error) string {
	if err == nil {
		return ""
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return string(appErr.Type)
	}
	return "unknown"
}
