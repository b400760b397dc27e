package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
)

// HealthChecker checks the health of a dependency
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) HealthCheckResult
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       HealthStatus           `json:"status"`
	Message      string                 `json:"message,omitempty"`
	Error        string                 `json:"error,omitempty"`
	ResponseTime time.Duration          `json:"response_time"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	LastChecked  time.Time              `json:"last_checked"`
}

// HealthStatus represents the health status
type HealthStatus string

const (
	HealthStatusPass HealthStatus = "pass"
	HealthStatusWarn HealthStatus = "warn"
	HealthStatusFail HealthStatus = "fail"
)

// HealthConfig configures the health service
type HealthConfig struct {
	// CacheDuration is how long to cache health check results
	CacheDuration time.Duration

	// Timeout is the maximum time for a health check
	Timeout time.Duration

	// ServiceName is the name of the service
	ServiceName string

	// ServiceVersion is the version of the service
	ServiceVersion string

	// Environment is the deployment environment
	Environment string
}

// DefaultHealthConfig returns default configuration
func DefaultHealthConfig() HealthConfig {
	return HealthConfig{
		CacheDuration:  10 * time.Second,
		Timeout:        5 * time.Second,
		ServiceName:    "fraud-dashboard",
		ServiceVersion: "dev",
		Environment:    "development",
	}
}

// HealthService manages health checks
type HealthService struct {
	checkers  map[string]HealthChecker
	cache     sync.Map
	config    HealthConfig
	tracer    trace.Tracer
	startTime time.Time
}

// NewHealthService creates a new health service
func NewHealthService(config HealthConfig) *HealthService {
	return &HealthService{
		checkers:  make(map[string]HealthChecker),
		config:    config,
		tracer:    otel.Tracer("api.rest.health"),
		startTime: time.Now(),
	}
}

// RegisterChecker registers a health checker
func (h *HealthService) RegisterChecker(name string, checker HealthChecker) {
	h.checkers[name] = checker
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status      HealthStatus                 `json:"status"`
	Version     string                       `json:"version"`
	ServiceID   string                       `json:"service_id"`
	ServiceName string                       `json:"service_name"`
	Description string                       `json:"description,omitempty"`
	Checks      map[string]HealthCheckResult `json:"checks,omitempty"`
	Metadata    map[string]interface{}       `json:"metadata,omitempty"`
}

// LivenessHandler returns a simple liveness check handler
func (h *HealthService) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := h.tracer.Start(r.Context(), "health.liveness")
		defer span.End()

		response := HealthResponse{
			Status:      HealthStatusPass,
			Version:     h.config.ServiceVersion,
			ServiceID:   uuid.New().String(),
			ServiceName: h.config.ServiceName,
			Metadata: map[string]interface{}{
				"uptime_seconds": time.Since(h.startTime).Seconds(),
				"timestamp":      time.Now().UTC(),
			},
		}

		w.Header().Set("Content-Type", "application/health+json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response)

		span.SetAttributes(
			attribute.String("health.status", string(response.Status)),
			attribute.Float64("health.uptime", time.Since(h.startTime).Seconds()),
		)
	}
}

// ReadinessHandler returns a readiness check handler. The server is ready
// only once every registered dependency passes, which here means the scored
// dataset has been published.
func (h *HealthService) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := h.tracer.Start(r.Context(), "health.readiness")
		defer span.End()

		checks := h.runChecks(ctx)

		status := HealthStatusPass
		statusCode := http.StatusOK
		for _, result := range checks {
			if result.Status == HealthStatusFail {
				status = HealthStatusFail
				statusCode = http.StatusServiceUnavailable
				break
			} else if result.Status == HealthStatusWarn && status == HealthStatusPass {
				status = HealthStatusWarn
			}
		}

		response := HealthResponse{
			Status:      status,
			Version:     h.config.ServiceVersion,
			ServiceID:   uuid.New().String(),
			ServiceName: h.config.ServiceName,
			Description: h.config.ServiceName + " readiness check",
			Checks:      checks,
			Metadata: map[string]interface{}{
				"uptime_seconds": time.Since(h.startTime).Seconds(),
				"timestamp":      time.Now().UTC(),
				"environment":    h.config.Environment,
			},
		}

		w.Header().Set("Content-Type", "application/health+json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(response)

		span.SetAttributes(
			attribute.String("health.status", string(response.Status)),
			attribute.Int("health.checks_count", len(checks)),
			attribute.Int("http.status_code", statusCode),
		)
	}
}

// runChecks runs all registered health checks concurrently
func (h *HealthService) runChecks(ctx context.Context) map[string]HealthCheckResult {
	results := make(map[string]HealthCheckResult)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range h.checkers {
		wg.Add(1)
		go func(n string, c HealthChecker) {
			defer wg.Done()

			if cached, ok := h.getCachedResult(n); ok {
				mu.Lock()
				results[n] = cached
				mu.Unlock()
				return
			}

			checkCtx, cancel := context.WithTimeout(ctx, h.config.Timeout)
			defer cancel()

			result := c.Check(checkCtx)
			result.LastChecked = time.Now()

			h.cacheResult(n, result)

			mu.Lock()
			results[n] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()
	return results
}

// getCachedResult gets a cached health check result
func (h *HealthService) getCachedResult(name string) (HealthCheckResult, bool) {
	if val, ok := h.cache.Load(name); ok {
		cached := val.(cachedHealthResult)
		if time.Since(cached.timestamp) < h.config.CacheDuration {
			return cached.result, true
		}
	}
	return HealthCheckResult{}, false
}

// cacheResult caches a health check result
func (h *HealthService) cacheResult(name string, result HealthCheckResult) {
	h.cache.Store(name, cachedHealthResult{
		result:    result,
		timestamp: time.Now(),
	})
}

type cachedHealthResult struct {
	result    HealthCheckResult
	timestamp time.Time
}

// DatasetHealthChecker reports whether the scored dataset has been published
type DatasetHealthChecker struct {
	store *store.DatasetStore
}

// NewDatasetHealthChecker creates a checker over the dataset store
func NewDatasetHealthChecker(datasetStore *store.DatasetStore) *DatasetHealthChecker {
	return &DatasetHealthChecker{store: datasetStore}
}

func (c *DatasetHealthChecker) Name() string {
	return "dataset"
}

func (c *DatasetHealthChecker) Check(ctx context.Context) HealthCheckResult {
	start := time.Now()

	if !c.store.Ready() {
		return HealthCheckResult{
			Status:       HealthStatusFail,
			Error:        "dataset has not been published",
			ResponseTime: time.Since(start),
		}
	}

	snap := c.store.Snapshot()
	summary := snap.Dataset.Summary()

	return HealthCheckResult{
		Status:       HealthStatusPass,
		Message:      "dataset published and scored",
		ResponseTime: time.Since(start),
		Metadata: map[string]interface{}{
			"records":      summary.TotalCount,
			"fraud_labels": summary.FraudCount,
			"model_trees":  snap.Model.TreeCount,
			"published_at": snap.PublishedAt,
		},
	}
}
