package rest_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emcdo411/Schwab-Fraud-Detection/internal/api/rest"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/domain/transaction"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/config"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/infrastructure/store"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/service/analytics"
	"github.com/emcdo411/Schwab-Fraud-Detection/internal/testutil/fixtures"
)

func testConfig() *config.Config {
	return &config.Config{
		Version:     "test",
		Environment: "test",
		Server: config.ServerConfig{
			Port:            0,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: time.Second,
			RateLimit: config.RateLimitConfig{
				RequestsPerSecond: 1000,
				BurstSize:         2000,
			},
		},
		Charts: config.ChartsConfig{
			HistogramBins:     4,
			TransactionsLimit: 100,
		},
	}
}

// publishedStore builds a store with three Northeast records and one West
// fraud record, leaving South and Midwest empty.
func publishedStore(t *testing.T) *store.DatasetStore {
	t.Helper()

	records := []*transaction.Transaction{
		fixtures.NewTransactionBuilder(t).
			WithAmount(10).WithRegion(transaction.RegionNortheast).
			WithProbability(0.1).Build(),
		fixtures.NewTransactionBuilder(t).
			WithAmount(20).WithRegion(transaction.RegionNortheast).
			WithTwoFAPassed(false).WithProbability(0.2).Build(),
		fixtures.NewTransactionBuilder(t).
			WithAmount(30).WithRegion(transaction.RegionNortheast).
			WithOAuthValid(false).WithTwoFAPassed(false).WithProbability(0.3).Build(),
		fixtures.NewTransactionBuilder(t).
			WithAmount(100).WithRegion(transaction.RegionWest).
			WithOAuthValid(false).WithFraudLabel(true).WithProbability(0.9).Build(),
	}

	datasetStore := store.NewDatasetStore(nil)
	require.NoError(t, datasetStore.Publish(transaction.NewDataset(records), store.ModelInfo{
		Algorithm:    "gradient_boosted_trees",
		Rounds:       10,
		TreeCount:    10,
		MaxDepth:     3,
		LearningRate: 0.3,
		FeatureNames: []string{"amount", "oauth_valid", "two_fa_passed"},
		TrainedAt:    time.Now(),
	}))
	return datasetStore
}

func newTestServer(t *testing.T, datasetStore *store.DatasetStore) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig()
	analyticsService := analytics.NewService(datasetStore, cfg.Charts.HistogramBins, cfg.Charts.TransactionsLimit)

	srv := rest.NewServer(cfg, logger, analyticsService, datasetStore, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
		Version   string `json:"version"`
	} `json:"meta"`
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, envelope) {
	t.Helper()

	res, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	return res, env
}

func TestServer_Regions(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	res, env := get(t, ts, "/api/v1/regions")

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, env.Success)
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
	assert.Equal(t, "test", env.Meta.Version)

	var result analytics.RegionsResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 4, result.Total)
	require.Len(t, result.Regions, 2)
	assert.Equal(t, "Northeast", result.Regions[0].Region)
	assert.Equal(t, 3, result.Regions[0].Count)
	assert.Equal(t, "West", result.Regions[1].Region)
	assert.Equal(t, 1, result.Regions[1].Count)
}

func TestServer_AmountHistogram(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	t.Run("whole dataset", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/charts/amount-histogram")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.True(t, env.Success)

		var chart analytics.HistogramChart
		require.NoError(t, json.Unmarshal(env.Data, &chart))
		assert.Equal(t, analytics.AllRegions, chart.Region)
		assert.Equal(t, 4, chart.TotalCount)
		assert.Len(t, chart.Bins, 4)
	})

	t.Run("filtered region", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/charts/amount-histogram?region=West")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.True(t, env.Success)

		var chart analytics.HistogramChart
		require.NoError(t, json.Unmarshal(env.Data, &chart))
		assert.Equal(t, "West", chart.Region)
		assert.Equal(t, 1, chart.TotalCount)
	})

	t.Run("region casing is normalized", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/charts/amount-histogram?region=west")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.True(t, env.Success)

		var chart analytics.HistogramChart
		require.NoError(t, json.Unmarshal(env.Data, &chart))
		assert.Equal(t, "West", chart.Region)
	})

	t.Run("known region without records", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/charts/amount-histogram?region=South")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.True(t, env.Success)

		var chart analytics.HistogramChart
		require.NoError(t, json.Unmarshal(env.Data, &chart))
		assert.Equal(t, "South", chart.Region)
		assert.Zero(t, chart.TotalCount)
		assert.Empty(t, chart.Bins)
	})

	t.Run("unknown region", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/charts/amount-histogram?region=Atlantis")

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, "UNKNOWN_REGION", env.Error.Code)
	})
}

func TestServer_AuthOutcomes(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	t.Run("whole dataset", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/charts/auth-outcomes")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.True(t, env.Success)

		var chart analytics.AuthOutcomeChart
		require.NoError(t, json.Unmarshal(env.Data, &chart))
		assert.Equal(t, 4, chart.TotalCount)
		require.Len(t, chart.Groups, 2)
		assert.True(t, chart.Groups[0].OAuthValid)
		assert.Equal(t, 2, chart.Groups[0].Count)
		assert.False(t, chart.Groups[1].OAuthValid)
		assert.Equal(t, 2, chart.Groups[1].Count)
	})

	t.Run("filtered region", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/charts/auth-outcomes?region=Northeast")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.True(t, env.Success)

		var chart analytics.AuthOutcomeChart
		require.NoError(t, json.Unmarshal(env.Data, &chart))
		assert.Equal(t, "Northeast", chart.Region)
		assert.Equal(t, 3, chart.TotalCount)
	})

	t.Run("unknown region", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/charts/auth-outcomes?region=Midlands")

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.False(t, env.Success)
	})
}

func TestServer_Transactions(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	type listing struct {
		Transactions []*transaction.Transaction `json:"transactions"`
		Count        int                        `json:"count"`
	}

	t.Run("default limit", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/transactions")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.True(t, env.Success)

		var body listing
		require.NoError(t, json.Unmarshal(env.Data, &body))
		assert.Equal(t, 4, body.Count)
		require.Len(t, body.Transactions, 4)
		assert.True(t, body.Transactions[0].Scored())
	})

	t.Run("explicit limit preserves order", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/transactions?limit=2")

		assert.Equal(t, http.StatusOK, res.StatusCode)
		require.True(t, env.Success)

		var body listing
		require.NoError(t, json.Unmarshal(env.Data, &body))
		require.Equal(t, 2, body.Count)
		assert.InDelta(t, 10.0, body.Transactions[0].AmountValue(), 0.001)
		assert.InDelta(t, 20.0, body.Transactions[1].AmountValue(), 0.001)
	})

	t.Run("negative limit", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/transactions?limit=-1")

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_QUERY", env.Error.Code)
	})

	t.Run("limit above cap", func(t *testing.T) {
		res, _ := get(t, ts, "/api/v1/transactions?limit=5000")

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("non-numeric limit", func(t *testing.T) {
		res, env := get(t, ts, "/api/v1/transactions?limit=abc")

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		require.NotNil(t, env.Error)
		assert.Equal(t, "INVALID_PARAMETER", env.Error.Code)
	})
}

func TestServer_ModelAndDataset(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	res, env := get(t, ts, "/api/v1/model")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.True(t, env.Success)

	var model store.ModelInfo
	require.NoError(t, json.Unmarshal(env.Data, &model))
	assert.Equal(t, "gradient_boosted_trees", model.Algorithm)
	assert.Equal(t, 10, model.TreeCount)

	res, env = get(t, ts, "/api/v1/dataset")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.True(t, env.Success)

	var summary transaction.Summary
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 4, summary.TotalCount)
	assert.Equal(t, 1, summary.FraudCount)
	assert.InDelta(t, 100.0, summary.MaxAmount, 0.001)
}

func TestServer_Dashboard(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	res, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	page := string(body)
	assert.Contains(t, page, "Fraud Detection Dashboard")
	assert.Contains(t, page, "region-select")
	assert.Contains(t, page, "Northeast")
	assert.Contains(t, page, "West")
	assert.Contains(t, page, "/api/v1/charts/amount-histogram")
	assert.Contains(t, page, "/api/v1/charts/auth-outcomes")
}

func TestServer_HealthEndpoints(t *testing.T) {
	t.Run("ready once published", func(t *testing.T) {
		ts := newTestServer(t, publishedStore(t))

		res, err := http.Get(ts.URL + "/healthz")
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		res, err = http.Get(ts.URL + "/ready")
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusOK, res.StatusCode)

		body, err := io.ReadAll(res.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"dataset"`)
	})

	t.Run("not ready before publish", func(t *testing.T) {
		ts := newTestServer(t, store.NewDatasetStore(nil))

		res, err := http.Get(ts.URL + "/ready")
		require.NoError(t, err)
		res.Body.Close()
		assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

		apiRes, env := get(t, ts, "/api/v1/regions")
		assert.Equal(t, http.StatusNotFound, apiRes.StatusCode)
		assert.False(t, env.Success)
		require.NotNil(t, env.Error)
		assert.Equal(t, "RESOURCE_NOT_FOUND", env.Error.Code)
	})
}

func TestServer_RequestIDPropagation(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/regions", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "req-12345")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, "req-12345", res.Header.Get("X-Request-ID"))

	var env envelope
	require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	assert.Equal(t, "req-12345", env.Meta.RequestID)
}

func TestServer_SecurityHeaders(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	res, err := http.Get(ts.URL + "/api/v1/regions")
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, "nosniff", res.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", res.Header.Get("X-Frame-Options"))
	assert.True(t, strings.HasPrefix(res.Header.Get("Content-Security-Policy"), "default-src 'self'"))
}

func TestServer_RoutingErrors(t *testing.T) {
	ts := newTestServer(t, publishedStore(t))

	res, err := http.Get(ts.URL + "/api/v1/nope")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	postRes, err := http.Post(ts.URL+"/api/v1/regions", "application/json", nil)
	require.NoError(t, err)
	postRes.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, postRes.StatusCode)
}
