package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"go.uber.org/zap"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/api/rest"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/config"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/instrumentation"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/telemetry"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/metrics"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/service/analytics"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/service/scoring"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/synth"
)

// The process builds its dataset before serving: synthesize, train, score,
// publish, and only then bind the HTTP server. Any pipeline failure aborts
// startup rather than serving an empty dashboard.
func main() {
	var configPath = flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	slog.SetDefault(logger)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create pipeline logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()
	provider, err := telemetry.InitializeOpenTelemetry(ctx, &telemetry.Config{
		ServiceName:    "fraud-dashboard",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
		ExportTimeout:  cfg.Telemetry.ExportTimeout,
		BatchTimeout:   cfg.Telemetry.BatchTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			log.Printf("Failed to shutdown telemetry: %v", err)
		}
	}()

	registry, err := metrics.NewRegistry("fraud-dashboard")
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	params, err := cfg.Pipeline.Params()
	if err != nil {
		log.Fatalf("Invalid pipeline configuration: %v", err)
	}

	datasetStore := store.NewDatasetStore(zapLogger)
	pipeline := scoring.NewService(
		synth.NewGenerator(zapLogger),
		datasetStore,
		params,
		cfg.Model.TrainingConfig(),
		zapLogger,
	)
	traced := instrumentation.NewPipelineTracedService(
		pipeline,
		telemetry.NewOpenTelemetryTracer("pipeline"),
		registry,
	)

	result, err := traced.Run(ctx)
	if err != nil {
		log.Fatalf("Failed to build scored dataset: %v", err)
	}
	recordPipelineMetrics(result)

	logger.Info("scored dataset ready",
		"records", result.Dataset.Len(),
		"fraud_labels", result.Dataset.FraudCount(),
		"model_trees", result.Model.TreeCount,
		"elapsed", result.Elapsed.String(),
	)

	analyticsService := analytics.NewService(datasetStore, cfg.Charts.HistogramBins, cfg.Charts.TransactionsLimit)
	server := rest.NewServer(cfg, logger, analyticsService, datasetStore, registry)

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
